package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/flowedit/pkg/diagram"
	"github.com/matzehuels/flowedit/pkg/editor"
	ferrors "github.com/matzehuels/flowedit/pkg/errors"
)

type addNodeRequest struct {
	Kind string `json:"kind" validate:"required,oneof=circular iconNode imageNode default input output custom"`
}

type positionRequest struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
}

type connectRequest struct {
	Source string `json:"source" validate:"required,nodeid"`
	Target string `json:"target" validate:"required,nodeid"`
}

type viewportRequest struct {
	Width  float64 `json:"width" validate:"gt=0,lte=100000"`
	Height float64 `json:"height" validate:"gt=0,lte=100000"`
}

type historyEntry struct {
	Action string `json:"action"`
	Nodes  int    `json:"nodes"`
	Edges  int    `json:"edges"`
}

type historyResponse struct {
	Index   int            `json:"index"`
	Entries []historyEntry `json:"entries"`
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *editor.Session)

// withSession resolves the {sid} URL parameter before calling h.
func (s *Server) withSession(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.registry.Get(chi.URLParam(r, "sid"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		h(w, r, sess)
	}
}

// maxBodyBytes caps request bodies. Every request is a handful of fields.
const maxBodyBytes = 64 << 10

// decode reads a JSON body of at most maxBodyBytes into req and validates it.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, req any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ferrors.Wrap(ferrors.ErrCodeInvalidInput, err, "request body too large (max %d bytes)", maxBodyBytes)
		}
		return ferrors.Wrap(ferrors.ErrCodeInvalidInput, err, "invalid JSON body")
	}
	return s.validateRequest(req)
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	sess := s.registry.Create(r.Context())
	writeJSON(w, http.StatusCreated, newStateResponse(sess.Snapshot()))
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request, sess *editor.Session) {
	s.writeResult(w, r, sess, nil, nil)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.Delete(r.Context(), chi.URLParam(r, "sid")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request, sess *editor.Session) {
	entries, idx := sess.History()
	resp := historyResponse{Index: idx, Entries: make([]historyEntry, len(entries))}
	for i, e := range entries {
		resp.Entries[i] = historyEntry{
			Action: string(e.Action),
			Nodes:  e.Graph.NodeCount(),
			Edges:  e.Graph.EdgeCount(),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) addNode(w http.ResponseWriter, r *http.Request, sess *editor.Session) {
	var req addNodeRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := sess.AddNode(r.Context(), diagram.Kind(req.Kind))
	s.writeResult(w, r, sess, err, func(resp *stateResponse) { resp.NodeID = id })
}

func (s *Server) moveNode(w http.ResponseWriter, r *http.Request, sess *editor.Session) {
	nid := chi.URLParam(r, "nid")
	if err := ferrors.ValidateNodeID(nid); err != nil {
		s.writeError(w, r, err)
		return
	}
	var req positionRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	err := sess.MoveNode(r.Context(), diagram.NodeID(nid), diagram.Position{X: *req.X, Y: *req.Y})
	s.writeResult(w, r, sess, err, nil)
}

func (s *Server) addEdge(w http.ResponseWriter, r *http.Request, sess *editor.Session) {
	var req connectRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := sess.Connect(r.Context(), diagram.NodeID(req.Source), diagram.NodeID(req.Target))
	s.writeResult(w, r, sess, err, func(resp *stateResponse) {
		resp.Branch = out.Assigned
		if out.Duplicate {
			resp.Notice = "edge already exists"
		}
	})
}

func (s *Server) autoLayout(w http.ResponseWriter, r *http.Request, sess *editor.Session) {
	s.writeResult(w, r, sess, sess.AutoLayout(r.Context()), nil)
}

func (s *Server) undo(w http.ResponseWriter, r *http.Request, sess *editor.Session) {
	_, moved := sess.Undo(r.Context())
	s.writeResult(w, r, sess, nil, func(resp *stateResponse) {
		if !moved {
			resp.Notice = "nothing to undo"
		}
	})
}

func (s *Server) redo(w http.ResponseWriter, r *http.Request, sess *editor.Session) {
	_, moved := sess.Redo(r.Context())
	s.writeResult(w, r, sess, nil, func(resp *stateResponse) {
		if !moved {
			resp.Notice = "nothing to redo"
		}
	})
}

func (s *Server) setViewport(w http.ResponseWriter, r *http.Request, sess *editor.Session) {
	var req viewportRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	err := sess.SetViewport(r.Context(), diagram.Viewport{Width: req.Width, Height: req.Height})
	s.writeResult(w, r, sess, err, nil)
}
