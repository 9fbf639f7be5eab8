// Package server exposes the registered nodes over HTTP.
//
// Routes:
//
//	GET  /healthz            build information
//	GET  /nodes              every node with its schema
//	GET  /nodes/{name}       one node with its schema
//	POST /nodes/{name}/run   run a node: {"params": {...}, "no_cache": false}
//	POST /nodes/{name}/plan  describe the invocation without running it
//
// Runs go through a shared [pipeline.Runner], so the server behaves exactly
// like the CLI. Errors are reported as JSON with the machine-readable code
// from pkg/errors and an HTTP status derived from it.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/vpypenode/pkg/pipeline"
)

// Defaults applied by New when an option is left zero.
const (
	DefaultMaxBodyBytes = 32 << 20
	DefaultReadTimeout  = 30 * time.Second
	shutdownTimeout     = 10 * time.Second
)

// Server serves node runs over HTTP.
type Server struct {
	Runner       *pipeline.Runner
	Logger       *log.Logger
	MaxBodyBytes int64
	ReadTimeout  time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithMaxBodyBytes limits the size of request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.MaxBodyBytes = n
		}
	}
}

// WithReadTimeout bounds how long reading a request may take.
func WithReadTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.ReadTimeout = d
		}
	}
}

// New creates a server for runner. A nil logger discards output.
func New(runner *pipeline.Runner, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	s := &Server{
		Runner:       runner,
		Logger:       logger,
		MaxBodyBytes: DefaultMaxBodyBytes,
		ReadTimeout:  DefaultReadTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the router with all middleware installed.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(serverHeader)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" not allowed on "+r.URL.Path)
	})

	r.Get("/healthz", s.handleHealth)
	r.Route("/nodes", func(r chi.Router) {
		r.Get("/", s.handleListNodes)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.handleGetNode)
			r.With(s.limitBody).Post("/run", s.handleRun)
			r.With(s.limitBody).Post("/plan", s.handlePlan)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully, letting in-flight runs finish within a short deadline.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is like ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	// Requests outlive ctx; they are cancelled only when Shutdown gives up.
	baseCtx, cancelRequests := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelRequests()

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.ReadTimeout,
		ReadHeaderTimeout: s.ReadTimeout,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		cancelRequests()
		srv.Close()
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
