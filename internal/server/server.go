// Package server exposes editing sessions over HTTP for browser-based shells.
//
// Every mutating endpoint answers with the session's current state and its
// undo/redo flags, so a client can re-render from any response. Operations
// that had nothing to do (unknown node, no layout root, nothing to undo)
// succeed with the unchanged state and a notice.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/flowedit/pkg/editor"
)

// Options configures a [Server].
type Options struct {
	Registry       *editor.Registry
	Logger         *log.Logger
	AllowedOrigins []string

	// Gatherer backs /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// Server routes HTTP requests to editing sessions.
type Server struct {
	registry *editor.Registry
	logger   *log.Logger
	validate *validator.Validate
	origins  []string
	gatherer prometheus.Gatherer
}

// New creates a server. Registry is required.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	return &Server{
		registry: opts.Registry,
		logger:   opts.Logger,
		validate: newValidator(),
		origins:  opts.AllowedOrigins,
		gatherer: opts.Gatherer,
	}
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1/sessions", func(r chi.Router) {
		r.Post("/", s.createSession)
		r.Route("/{sid}", func(r chi.Router) {
			r.Get("/", s.withSession(s.getSession))
			r.Delete("/", s.deleteSession)
			r.Get("/history", s.withSession(s.getHistory))
			r.Post("/nodes", s.withSession(s.addNode))
			r.Put("/nodes/{nid}/position", s.withSession(s.moveNode))
			r.Post("/edges", s.withSession(s.addEdge))
			r.Post("/layout", s.withSession(s.autoLayout))
			r.Post("/undo", s.withSession(s.undo))
			r.Post("/redo", s.withSession(s.redo))
			r.Put("/viewport", s.withSession(s.setViewport))
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.registry.Len()})
}
