// Package server exposes the contraction engine over HTTP.
//
// Routes:
//
//	GET  /healthz          liveness probe
//	POST /v1/determinant   {"matrix": [[...]]}
//	POST /v1/project       {"graph": {...}, "used": [...]}
//	POST /v1/blowdown      {"graph": {...}, "used": [...], "order": [...]}
//	POST /v1/analyze       {"graph": {...}, "used": [...], "order": [...]}
//	                       or {"graph": {...}, "example": {...}}
//
// Graphs and examples use the JSONL record format of package record.
// Failures are answered with {"error": {"code", "message"}, "request_id"}
// and the status of errors.HTTPStatus. Every response carries an
// X-Request-ID header.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/jereyes4/Wahl-Chains/pkg/analysis"
)

const (
	// DefaultMaxBodyBytes bounds request bodies.
	DefaultMaxBodyBytes = 8 << 20

	// DefaultMaxCurves bounds the curves of a request graph and the size of
	// a determinant matrix. Projection allocates a full N×N matrix.
	DefaultMaxCurves = 2048
)

// Options configures a [Server].
type Options struct {
	MaxBodyBytes int64
	MaxCurves    int
	Version      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server serves the HTTP API.
type Server struct {
	runner *analysis.Runner
	logger *log.Logger
	opts   Options
}

// New creates a server backed by runner.
func New(runner *analysis.Runner, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.MaxCurves <= 0 {
		opts.MaxCurves = DefaultMaxCurves
	}
	return &Server{runner: runner, logger: logger, opts: opts}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()

	router.Use(requestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(s.logRequests)

	router.Get("/healthz", s.health)

	router.Route("/v1", func(r chi.Router) {
		r.Use(chimiddleware.AllowContentType("application/json"))
		r.Post("/determinant", s.determinant)
		r.Post("/project", s.project)
		r.Post("/blowdown", s.blowdown)
		r.Post("/analyze", s.analyze)
	})
	return router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
