package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/docnav/internal/config"
	"git.home.luguber.info/inful/docnav/internal/eventstore"
	"git.home.luguber.info/inful/docnav/internal/logfields"
	"git.home.luguber.info/inful/docnav/internal/mcp"
	"git.home.luguber.info/inful/docnav/internal/metrics"
	"git.home.luguber.info/inful/docnav/internal/notify"
	"git.home.luguber.info/inful/docnav/internal/scheduler"
	"git.home.luguber.info/inful/docnav/internal/server"
	"git.home.luguber.info/inful/docnav/internal/site"
	"git.home.luguber.info/inful/docnav/internal/watch"
)

// ServeCmd serves the navigation API and keeps the snapshot current.
type ServeCmd struct {
	Addr    string `help:"Listen address; overrides server.addr"`
	NoWatch bool   `name:"no-watch" help:"Disable rebuilding on file changes"`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if s.Addr != "" {
		cfg.Server.Addr = s.Addr
	}
	if s.NoWatch {
		cfg.Watch.Enabled = false
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return serve(ctx, cfg)
}

// serve runs the HTTP server, the watcher and the scheduler until ctx is
// canceled or one of them fails.
func serve(ctx context.Context, cfg *config.Config) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rec := metrics.NewPrometheusRecorder(reg)

	storeOpts := []site.StoreOption{site.WithRecorder(rec)}
	var events eventstore.Store
	if cfg.Events.Path != "" {
		es, err := eventstore.NewSQLiteStore(cfg.EventsPath())
		if err != nil {
			return err
		}
		defer func() { _ = es.Close() }()
		events = es
		storeOpts = append(storeOpts, site.WithEvents(es))
	}
	if cfg.Notify.NATSURL != "" {
		pub, err := notify.NewNATSPublisher(cfg.Notify.NATSURL, cfg.Notify.Subject)
		if err != nil {
			slog.Warn("Snapshot notifications disabled", logfields.Error(err))
		} else {
			defer func() { _ = pub.Close() }()
			storeOpts = append(storeOpts, site.WithNotifier(pub))
		}
	}

	bopts := site.OptionsFromConfig(cfg)
	bopts.Recorder = rec
	store := site.NewStore(site.NewBuilder(bopts), storeOpts...)

	// A failed startup build leaves the server unready; a later rebuild can
	// still bring it up.
	if _, err := store.Rebuild(ctx, site.TriggerStartup); err != nil {
		slog.Error("Initial build failed", logfields.Error(err))
	}

	srv, err := server.New(store, server.Options{
		Addr:            cfg.Server.Addr,
		CacheSize:       cfg.Server.CacheSize,
		ReadTimeout:     cfg.Server.ReadTimeout.Std(),
		WriteTimeout:    cfg.Server.WriteTimeout.Std(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout.Std(),
		MCPEndpoint:     cfg.Server.MCPEndpoint,
		MCPHandler:      mcp.NewHTTPHandler(mcp.NewServer(store, rec), cfg.Server.MCPEndpoint),
		Metrics:         metrics.HTTPHandler(reg),
		Recorder:        rec,
		Events:          events,
	})
	if err != nil {
		return err
	}

	var watcher *watch.Watcher
	if cfg.Watch.Enabled {
		watcher, err = watch.New(watch.Options{
			Dir:      cfg.DocsDir(),
			Files:    []string{cfg.SidebarsFile()},
			Debounce: cfg.Watch.Debounce.Std(),
		}, rebuildFunc(store, site.TriggerWatch))
		if err != nil {
			return err
		}
	}
	var sched *scheduler.Scheduler
	if interval := cfg.Schedule.RebuildInterval.Std(); interval > 0 {
		sched, err = scheduler.New()
		if err != nil {
			return err
		}
		if _, err := sched.Every("rebuild", interval, scheduler.Task(rebuildFunc(store, site.TriggerSchedule))); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	if watcher != nil {
		g.Go(func() error { return watcher.Run(gctx) })
	}
	if sched != nil {
		g.Go(func() error { return sched.Run(gctx) })
	}
	return g.Wait()
}

// rebuildFunc adapts Store.Rebuild to the watcher and scheduler callbacks.
// Build failures are logged by the store and never stop the loop.
func rebuildFunc(store *site.Store, trigger string) func(context.Context) error {
	return func(ctx context.Context) error {
		if _, err := store.Rebuild(ctx, trigger); err != nil && ctx.Err() == nil {
			slog.Debug("Rebuild did not publish a snapshot", logfields.Op(trigger), logfields.Error(err))
		}
		return nil
	}
}
