// Package server is the HTTP surface of the dev server: content resolution, static
// assets, live reload and the status and reload endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	prom "github.com/prometheus/client_golang/prometheus"

	derrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/hotreload"
	"git.home.luguber.info/inful/docserve/internal/metrics"
	docrender "git.home.luguber.info/inful/docserve/internal/render"
	"git.home.luguber.info/inful/docserve/internal/router"
	smw "git.home.luguber.info/inful/docserve/internal/server/middleware"
)

const shutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	Logger   *slog.Logger
	Renderer docrender.Renderer
	// LiveReload is nil when live reload is disabled.
	LiveReload *hotreload.LiveReloadHub
	// Registry is nil when metrics are disabled.
	Registry *prom.Registry
	Recorder metrics.Recorder
}

// Server serves the site held by a hot-reload cache.
type Server struct {
	cache      *hotreload.Cache
	resolver   *router.Resolver
	renderer   docrender.Renderer
	liveReload *hotreload.LiveReloadHub
	registry   *prom.Registry
	logger     *slog.Logger
	adapter    *derrors.HTTPErrorAdapter
}

// New wires a server around cache.
func New(cache *hotreload.Cache, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Renderer == nil {
		opts.Renderer = docrender.NewHTMLRenderer()
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	return &Server{
		cache:      cache,
		resolver:   router.NewResolver(opts.Logger).WithRecorder(opts.Recorder),
		renderer:   opts.Renderer,
		liveReload: opts.LiveReload,
		registry:   opts.Registry,
		logger:     opts.Logger,
		adapter:    derrors.NewHTTPErrorAdapter(opts.Logger),
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(smw.Chain(s.logger, s.adapter))

	if s.liveReload != nil {
		r.Handle("/livereload", s.liveReload)
		r.Get("/livereload.js", s.handleLiveReloadScript)
	}
	if s.registry != nil {
		r.Handle("/metrics", metrics.HTTPHandler(s.registry))
	}
	r.Get("/_docserve/status", s.handleStatus)
	r.Post("/_docserve/reload", s.handleReload)

	r.Group(func(r chi.Router) {
		r.Use(smw.NoCache)
		r.Get("/*", s.handleContent)
		r.Head("/*", s.handleContent)
	})
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryRuntime, fmt.Sprintf("failed to listen on %s", addr)).Build()
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	// no write timeout: live reload streams stay open
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second, IdleTimeout: 300 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("Dev server listening", slog.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return derrors.WrapError(err, derrors.CategoryRuntime, "http server failed").Build()
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down dev server...")
	if s.liveReload != nil {
		s.liveReload.Shutdown()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("HTTP server shutdown error", slog.Any("error", err))
		return err
	}
	return nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.cache.Status())
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.cache.Reload(r.Context(), "manual"); err != nil {
		s.adapter.WriteErrorResponse(w, r, err)
		return
	}
	render.JSON(w, r, s.cache.Status())
}

func (s *Server) handleLiveReloadScript(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write([]byte(hotreload.LiveReloadScript)); err != nil {
		s.logger.Error("failed to write livereload script", slog.Any("error", err))
	}
}
