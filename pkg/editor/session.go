package editor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/flowedit/pkg/connect"
	"github.com/matzehuels/flowedit/pkg/diagram"
	ferrors "github.com/matzehuels/flowedit/pkg/errors"
	"github.com/matzehuels/flowedit/pkg/history"
	"github.com/matzehuels/flowedit/pkg/layout"
	"github.com/matzehuels/flowedit/pkg/observability"
)

// Options configures a [Session].
type Options struct {
	// Logger receives diagnostics. Defaults to log.Default().
	Logger *log.Logger

	// Viewport is the initial drawing area.
	Viewport diagram.Viewport

	// Seed makes initial node placement reproducible.
	Seed uint64

	// ImageURL is attached to image nodes.
	ImageURL string

	Layout  layout.Options
	Connect connect.Options
}

// Snapshot is a consistent view of a session for rendering.
type Snapshot struct {
	ID       string
	Graph    diagram.Graph
	Viewport diagram.Viewport
	CanUndo  bool
	CanRedo  bool
	Index    int
	Len      int
}

// Session is one editing session. All methods are safe for concurrent use;
// operations are serialized by a single lock.
type Session struct {
	mu        sync.Mutex
	id        string
	created   time.Time
	logger    *log.Logger
	store     *diagram.Store
	validator *connect.Validator
	engine    *layout.Engine
	history   *history.Manager
}

// NewSession starts a session with an empty diagram. The node counter starts
// at 1 and the history holds only the empty seed state.
func NewSession(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	id := uuid.NewString()
	return &Session{
		id:      id,
		created: time.Now(),
		logger:  logger.With("session", shortID(id)),
		store: diagram.NewStore(diagram.StoreOptions{
			Viewport: opts.Viewport,
			Seed:     opts.Seed,
			ImageURL: opts.ImageURL,
		}),
		validator: connect.New(opts.Connect),
		engine:    layout.New(opts.Layout),
		history:   history.New(diagram.Graph{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Created returns when the session was started.
func (s *Session) Created() time.Time { return s.created }

// AddNode creates a node of the given kind and commits it.
func (s *Session) AddNode(ctx context.Context, kind diagram.Kind) (diagram.NodeID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, id, err := s.store.AddNode(s.current(), kind)
	if err != nil {
		return "", ferrors.Wrap(ferrors.ErrCodeInvalidKind, err, "unknown node kind %q", kind)
	}
	s.commit(ctx, g, history.ActionAddNode)
	s.logger.Debug("node added", "id", id, "kind", kind)
	return id, nil
}

// Connect adds the edge source -> target if the connection rules allow it.
//
// A rejected edge returns a VALIDATION_REJECTED error and leaves the session
// untouched. An edge that already exists is not an error; the outcome is
// marked Duplicate and nothing is committed.
func (s *Session) Connect(ctx context.Context, source, target diagram.NodeID) (connect.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out, err := s.validator.TryConnect(s.current(), source, target)
	if err != nil {
		var rej *connect.Rejection
		switch {
		case errors.As(err, &rej):
			observability.Editor().OnReject(ctx, string(rej.Rule))
			s.logger.Warn("connection rejected", "source", source, "target", target, "rule", rej.Rule)
		case ferrors.IsNoOp(err):
			observability.Editor().OnNoOp(ctx, string(history.ActionConnect))
			s.logger.Debug("connect skipped", "reason", ferrors.UserMessage(err))
		}
		return out, err
	}
	if out.Duplicate {
		s.logger.Debug("edge already exists", "edge", out.Edge.ID)
		return out, nil
	}

	s.commit(ctx, out.Graph, history.ActionConnect)
	if out.Assigned != "" {
		s.logger.Debug("branch assigned", "node", target, "branch", out.Assigned)
	}
	return out, nil
}

// MoveNode sets the position of node id and commits the result.
// Non-finite coordinates return INVALID_INPUT. An unknown id returns
// PRECONDITION_UNMET and commits nothing.
func (s *Session) MoveNode(ctx context.Context, id diagram.NodeID, pos diagram.Position) error {
	if err := ferrors.ValidatePosition(pos.X, pos.Y); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.store.MoveNode(s.current(), id, pos)
	if !ok {
		observability.Editor().OnNoOp(ctx, string(history.ActionMoveNode))
		s.logger.Debug("move skipped", "id", id, "reason", "unknown node")
		return ferrors.Wrap(ferrors.ErrCodePreconditionUnmet, diagram.ErrUnknownNode, "node %s not found", id)
	}
	s.commit(ctx, g, history.ActionMoveNode)
	return nil
}

// AutoLayout repositions every node reachable from the root and commits the
// result. Without a root it returns PRECONDITION_UNMET; with a cycle
// reachable from the root it returns CYCLE_DETECTED. Neither commits.
func (s *Session) AutoLayout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	g := s.current()
	plan, err := s.engine.Plan(g, s.store.Viewport().Width)
	observability.Editor().OnLayout(ctx, len(plan.Positions), time.Since(start), err)

	switch {
	case errors.Is(err, layout.ErrNoRoot):
		s.logger.Debug("layout skipped", "reason", err)
		return ferrors.Wrap(ferrors.ErrCodePreconditionUnmet, err, "nothing to lay out: every node has an incoming edge")
	case errors.Is(err, layout.ErrCycleDetected):
		s.logger.Warn("layout failed", "err", err)
		return ferrors.Wrap(ferrors.ErrCodeCycleDetected, err, "the diagram contains a cycle")
	case err != nil:
		return ferrors.Wrap(ferrors.ErrCodeInternal, err, "layout")
	}

	s.commit(ctx, g.WithPositions(plan.Positions), history.ActionLayout)
	s.logger.Debug("layout applied", "root", plan.Root, "placed", len(plan.Positions),
		"proposals", plan.Proposals, "elapsed", time.Since(start).Round(time.Microsecond))
	return nil
}

// Undo steps back one commit. It returns the state to render and whether
// the history moved.
func (s *Session) Undo(ctx context.Context) (diagram.Graph, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	action, _ := s.history.UndoAction()
	e, ok := s.history.Undo()
	if ok {
		observability.Editor().OnUndo(ctx, string(action))
		s.logger.Debug("undo", "action", action, "index", s.history.Index())
	}
	return e.Graph, ok
}

// Redo reapplies the last undone commit. It returns the state to render and
// whether the history moved.
func (s *Session) Redo(ctx context.Context) (diagram.Graph, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.history.Redo()
	if ok {
		observability.Editor().OnRedo(ctx, string(e.Action))
		s.logger.Debug("redo", "action", e.Action, "index", s.history.Index())
	}
	return e.Graph, ok
}

// State returns the current diagram.
func (s *Session) State() diagram.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current()
}

// Viewport returns the current viewport.
func (s *Session) Viewport() diagram.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Viewport()
}

// SetViewport records a new viewport size. It does not touch history.
func (s *Session) SetViewport(ctx context.Context, v diagram.Viewport) error {
	if err := ferrors.ValidateViewport(v.Width, v.Height); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.SetViewport(v)
	s.logger.Debug("viewport changed", "width", v.Width, "height", v.Height)
	return nil
}

// CanUndo reports whether Undo would move.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

// CanRedo reports whether Redo would move.
func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo()
}

// History returns a copy of the timeline and the current index.
func (s *Session) History() ([]history.Entry, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Entries(), s.history.Index()
}

// Snapshot returns the current state together with the history flags, read
// under one lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:       s.id,
		Graph:    s.current(),
		Viewport: s.store.Viewport(),
		CanUndo:  s.history.CanUndo(),
		CanRedo:  s.history.CanRedo(),
		Index:    s.history.Index(),
		Len:      s.history.Len(),
	}
}

func (s *Session) current() diagram.Graph {
	return s.history.Current().Graph
}

func (s *Session) commit(ctx context.Context, g diagram.Graph, action history.Action) {
	s.history.Commit(g, action)
	observability.Editor().OnCommit(ctx, string(action), g.NodeCount(), g.EdgeCount())
	s.logger.Debug("committed", "action", action, "nodes", g.NodeCount(), "edges", g.EdgeCount(),
		"index", s.history.Index())
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
