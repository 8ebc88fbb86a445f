// Package server exposes the diagram pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz                     liveness probe
//	GET  /version                     build information
//	POST /v1/layout                   document JSON -> drawing JSON
//	POST /v1/render?format=svg        document or drawing JSON -> artifact
//	POST /v1/nodelink?format=svg      AST document -> Graphviz (svg, png, pdf or dot)
//	GET  /v1/typing?expression=...    inference engine proxy, one panel per view
//
// Errors are JSON objects carrying a machine-readable code from pkg/errors.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/typediagram/pkg/config"
	"github.com/matzehuels/typediagram/pkg/infer"
	"github.com/matzehuels/typediagram/pkg/pipeline"
)

// shutdownTimeout bounds graceful shutdown once the serve context ends.
const shutdownTimeout = 10 * time.Second

// Server serves the HTTP API.
type Server struct {
	runner   *pipeline.Runner
	typer    infer.Typer
	defaults pipeline.Options
	cfg      config.ServerConfig
	logger   *log.Logger
	handler  http.Handler
}

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

// WithDefaults sets the pipeline options requests start from.
func WithDefaults(opts pipeline.Options) Option { return func(s *Server) { s.defaults = opts } }

// New builds a server. typer may be nil, in which case /v1/typing answers
// ENGINE_UNAVAILABLE.
func New(runner *pipeline.Runner, typer infer.Typer, cfg config.ServerConfig, opts ...Option) *Server {
	s := &Server{
		runner: runner,
		typer:  typer,
		cfg:    cfg,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg.RequestTimeout <= 0 {
		s.cfg.RequestTimeout = config.DefaultRequestTimeout
	}
	if s.cfg.MaxBodyBytes <= 0 {
		s.cfg.MaxBodyBytes = config.DefaultMaxBodyBytes
	}
	s.handler = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)

	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.limitBody)
			r.Post("/layout", s.handleLayout)
			r.Post("/render", s.handleRender)
			r.Post("/nodelink", s.handleNodelink)
		})
		r.Get("/typing", s.handleTyping)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errNotFound(r.URL.Path))
	})
	return r
}

// ListenAndServe serves on cfg.Addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return ctx.Err()
}
