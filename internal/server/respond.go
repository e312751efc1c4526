package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/matzehuels/flowedit/pkg/connect"
	"github.com/matzehuels/flowedit/pkg/diagram"
	"github.com/matzehuels/flowedit/pkg/editor"
	ferrors "github.com/matzehuels/flowedit/pkg/errors"
)

type graphBody struct {
	Nodes []diagram.Node `json:"nodes"`
	Edges []diagram.Edge `json:"edges"`
}

type stateResponse struct {
	ID       string           `json:"id"`
	State    graphBody        `json:"state"`
	Viewport diagram.Viewport `json:"viewport"`
	CanUndo  bool             `json:"can_undo"`
	CanRedo  bool             `json:"can_redo"`
	Notice   string           `json:"notice,omitempty"`
	NodeID   diagram.NodeID   `json:"node_id,omitempty"`
	Branch   diagram.Branch   `json:"branch,omitempty"`
}

type errorBody struct {
	Code    ferrors.Code `json:"code"`
	Message string       `json:"message"`
	Rule    connect.Rule `json:"rule,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func newStateResponse(snap editor.Snapshot) stateResponse {
	body := graphBody{Nodes: snap.Graph.Nodes(), Edges: snap.Graph.Edges()}
	if body.Nodes == nil {
		body.Nodes = []diagram.Node{}
	}
	if body.Edges == nil {
		body.Edges = []diagram.Edge{}
	}
	return stateResponse{
		ID:       snap.ID,
		State:    body,
		Viewport: snap.Viewport,
		CanUndo:  snap.CanUndo,
		CanRedo:  snap.CanRedo,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error code to the HTTP status it is reported with.
func statusFor(code ferrors.Code) int {
	switch code {
	case ferrors.ErrCodeValidationRejected:
		return http.StatusUnprocessableEntity
	case ferrors.ErrCodeCycleDetected:
		return http.StatusConflict
	case ferrors.ErrCodeInvalidInput, ferrors.ErrCodeInvalidKind:
		return http.StatusBadRequest
	case ferrors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case ferrors.ErrCodePreconditionUnmet:
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}

// writeError reports err. Codes without an *Error are internal errors and
// their text is not exposed.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := ferrors.GetCode(err)
	status := statusFor(code)

	body := errorBody{Code: code, Message: ferrors.UserMessage(err)}
	var rej *connect.Rejection
	if errors.As(err, &rej) {
		body.Rule = rej.Rule
	}
	if code == "" {
		body.Code = ferrors.ErrCodeInternal
		body.Message = "internal error"
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorResponse{Error: body})
}

// writeResult answers a session operation. A nil error or a no-op error is
// reported as 200 with the current state; anything else goes to writeError.
func (s *Server) writeResult(w http.ResponseWriter, r *http.Request, sess *editor.Session, err error, decorate func(*stateResponse)) {
	if err != nil && !ferrors.IsNoOp(err) {
		s.writeError(w, r, err)
		return
	}
	resp := newStateResponse(sess.Snapshot())
	if err != nil {
		resp.Notice = ferrors.UserMessage(err)
	}
	if decorate != nil {
		decorate(&resp)
	}
	writeJSON(w, http.StatusOK, resp)
}
