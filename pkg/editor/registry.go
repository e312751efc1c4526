package editor

import (
	"context"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	ferrors "github.com/matzehuels/flowedit/pkg/errors"
	"github.com/matzehuels/flowedit/pkg/observability"
)

// Registry holds the live sessions of a multi-client shell.
// Sessions live in memory only and disappear with the process.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	opts     Options
}

// NewRegistry creates an empty registry. Every session it creates is
// configured with opts.
func NewRegistry(opts Options) *Registry {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Registry{sessions: make(map[string]*Session), opts: opts}
}

// Create starts a new session and registers it.
func (r *Registry) Create(ctx context.Context) *Session {
	s := NewSession(r.opts)

	r.mu.Lock()
	r.sessions[s.ID()] = s
	n := len(r.sessions)
	r.mu.Unlock()

	observability.Session().OnSessionCreated(ctx, s.ID())
	r.opts.Logger.Info("session created", "id", s.ID(), "active", n)
	return s
}

// Get returns the session with the given id, or a SESSION_NOT_FOUND error.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ferrors.New(ferrors.ErrCodeSessionNotFound, "session %q not found", id)
	}
	return s, nil
}

// Delete removes a session. Deleting an unknown id returns SESSION_NOT_FOUND.
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return ferrors.New(ferrors.ErrCodeSessionNotFound, "session %q not found", id)
	}
	observability.Session().OnSessionClosed(ctx, id)
	r.opts.Logger.Info("session closed", "id", id, "active", n)
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// IDs returns the ids of all live sessions in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	slices.Sort(ids)
	return ids
}
