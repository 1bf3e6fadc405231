// Package server serves the navigation snapshot over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"git.home.luguber.info/inful/docnav/internal/eventstore"
	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/logfields"
	"git.home.luguber.info/inful/docnav/internal/metrics"
	"git.home.luguber.info/inful/docnav/internal/site"
)

// Source yields the snapshot in service and the error of the latest build.
type Source interface {
	Current() *site.Snapshot
	LastError() error
}

// Options configures the server.
type Options struct {
	Addr            string
	CacheSize       int // 0 disables the response cache
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// MCPEndpoint and MCPHandler mount the MCP server; both must be set.
	MCPEndpoint string
	MCPHandler  http.Handler
	// Metrics serves /metrics when set.
	Metrics  http.Handler
	Recorder metrics.Recorder
	Events   eventstore.Store
}

// Server is the HTTP query API.
type Server struct {
	opts     Options
	src      Source
	router   chi.Router
	cache    *responseCache
	errs     *ferrors.HTTPErrorAdapter
	recorder metrics.Recorder
}

// New wires the routes. The server does not listen until Run.
func New(src Source, opts Options) (*Server, error) {
	rec := opts.Recorder
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	cache, err := newResponseCache(opts.CacheSize)
	if err != nil {
		return nil, err
	}
	s := &Server{
		opts:     opts,
		src:      src,
		cache:    cache,
		errs:     ferrors.NewHTTPErrorAdapter(slog.Default()),
		recorder: rec,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(slog.Default()))
	r.Use(recoverer(s.errs))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Get("/docs", s.query("list", s.listDocs))
		r.Get("/docs/*", s.query("get", s.getDoc))
		r.Get("/nav/neighbors/*", s.query("neighbors", s.neighbors))
		r.Get("/nav/path/*", s.query("path", s.path))
		r.Get("/sidebars", s.query("sidebars", s.sidebars))
		r.Get("/sidebars/{name}", s.query("sidebar", s.sidebar))
		r.Get("/version", s.query("version", s.version))
		r.Get("/builds", s.handleBuilds)
	})

	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics)
	}
	if s.opts.MCPEndpoint != "" && s.opts.MCPHandler != nil {
		r.Handle(s.opts.MCPEndpoint, s.opts.MCPHandler)
	}
	return r
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run listens on opts.Addr and serves until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.opts.Addr)
	if err != nil {
		return ferrors.NetworkError("failed to listen").
			WithContext("addr", s.opts.Addr).
			WithCause(err).
			Build()
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadTimeout:       s.opts.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.opts.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", logfields.Addr(ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	slog.Info("Shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
