package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/docserve/internal/hotreload"
	"git.home.luguber.info/inful/docserve/internal/metrics"
	"git.home.luguber.info/inful/docserve/internal/server"
	"git.home.luguber.info/inful/docserve/internal/snapshot"
)

// ServeCmd runs the dev server until SIGINT or SIGTERM.
type ServeCmd struct {
	Host         string        `name:"host" default:"" help:"Interface to listen on (all when empty)."`
	Port         int           `name:"port" default:"3000" help:"HTTP port."`
	NoLiveReload bool          `name:"no-live-reload" help:"Disable the live reload stream and script injection."`
	NoWatch      bool          `name:"no-watch" help:"Do not watch the content directories for changes."`
	PollInterval time.Duration `name:"poll-interval" default:"0s" help:"Also reload on a fixed interval (0 disables)."`
	Metrics      bool          `name:"metrics" help:"Expose Prometheus metrics on /metrics."`
}

func (s *ServeCmd) Run(g *Global, cli *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return s.run(ctx, g, cli.Dir)
}

func (s *ServeCmd) run(ctx context.Context, g *Global, dir string) error {
	logger := g.logger()

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var registry *prom.Registry
	if s.Metrics {
		registry = prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(registry)
	}

	cache := hotreload.NewCache(dir, hotreload.WithLogger(logger), hotreload.WithRecorder(recorder))
	// A broken site at startup is fatal; later failures keep the last good snapshot.
	if err := cache.Reload(ctx, "startup"); err != nil {
		return err
	}
	snap := cache.Current()

	var hub *hotreload.LiveReloadHub
	if !s.NoLiveReload {
		hub = hotreload.NewLiveReloadHub(recorder)
		cache.OnSwap(func(next *snapshot.Snapshot) { hub.Broadcast(next.ID) })
	}

	group, gctx := errgroup.WithContext(ctx)

	if !s.NoWatch {
		watcher, err := hotreload.NewWatcher(cache, logger)
		if err != nil {
			return err
		}
		watcher.Watch(snap)
		// New roots (e.g. a changed custom_docs_path) are picked up on swap.
		cache.OnSwap(watcher.Watch)
		group.Go(func() error { return watcher.Run(gctx) })
	}

	if s.PollInterval > 0 {
		poller, err := hotreload.NewPoller(gctx, cache, s.PollInterval, logger)
		if err != nil {
			return err
		}
		poller.Start()
		defer func() {
			if err := poller.Stop(); err != nil {
				logger.Warn("Failed to stop poller", slog.Any("error", err))
			}
		}()
	}

	srv := server.New(cache, server.Options{
		Logger:     logger,
		LiveReload: hub,
		Registry:   registry,
		Recorder:   recorder,
	})
	group.Go(func() error { return srv.ListenAndServe(gctx, fmt.Sprintf("%s:%d", s.Host, s.Port)) })

	logger.Info("Serving site",
		slog.String("dir", dir),
		slog.String("title", snap.Site.Title),
		slog.String("url", fmt.Sprintf("http://localhost:%d%s", s.Port, snap.Site.BaseURL)),
		slog.Bool("live_reload", hub != nil),
		slog.Duration("poll_interval", s.PollInterval))

	return group.Wait()
}
