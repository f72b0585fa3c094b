// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/ManuGH/smsmanager/internal/api"
	"github.com/ManuGH/smsmanager/internal/api/middleware"
	"github.com/ManuGH/smsmanager/internal/cache"
	"github.com/ManuGH/smsmanager/internal/client"
	"github.com/ManuGH/smsmanager/internal/config"
	"github.com/ManuGH/smsmanager/internal/daemon"
	"github.com/ManuGH/smsmanager/internal/dashboard"
	"github.com/ManuGH/smsmanager/internal/events"
	"github.com/ManuGH/smsmanager/internal/health"
	smslog "github.com/ManuGH/smsmanager/internal/log"
	"github.com/ManuGH/smsmanager/internal/persistence"
	"github.com/ManuGH/smsmanager/internal/platform/httpx"
	"github.com/ManuGH/smsmanager/internal/producer"
	"github.com/ManuGH/smsmanager/internal/producer/random"
	"github.com/ManuGH/smsmanager/internal/sender"
	"github.com/ManuGH/smsmanager/internal/version"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// roles selects which servers a process runs.
type roles struct {
	api       bool
	dashboard bool
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the producer REST backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDaemon(cmd.Context(), opts, roles{api: true})
		},
	}
}

func newWebCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "web",
		Short: "Run the dashboard against a backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDaemon(cmd.Context(), opts, roles{dashboard: true})
		},
	}
}

func newAllCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run the backend and the dashboard in one process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDaemon(cmd.Context(), opts, roles{api: true, dashboard: true})
		},
	}
}

func runDaemon(ctx context.Context, opts *rootOptions, r roles) error {
	cfg, loader, err := opts.load(nil)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := smslog.WithComponent("daemon")

	ctx, stop := daemon.WaitForShutdown(ctx)
	defer stop()

	logger.Info().
		Str("event", "startup").
		Str("version", version.Version).
		Str("commit", version.Commit).
		Str("build_date", version.Date).
		Bool("api", r.api).
		Bool("dashboard", r.dashboard).
		Str("config_path", loader.Path()).
		Msg("starting smsmanager")

	w := &wiring{cfg: cfg, logger: logger}
	if err := w.build(ctx, r); err != nil {
		w.cleanup()
		return err
	}

	mgr, err := daemon.NewManager(daemon.Deps{
		Logger:          logger,
		Servers:         w.servers,
		ShutdownTimeout: cfg.ShutdownTimeout,
	})
	if err != nil {
		w.cleanup()
		return err
	}
	for _, h := range w.hooks {
		mgr.RegisterShutdownHook(h.name, h.fn)
	}

	holder := config.NewHolder(cfg, loader)
	app := daemon.NewApp(logger, mgr, holder)
	app.OnReload(func(next config.Config) {
		level := next.Log.Level
		if opts.logLevel != "" {
			level = opts.logLevel
		}
		if err := smslog.SetLevel(level); err != nil {
			logger.Warn().Err(err).Str("level", level).Msg("ignoring invalid log level")
		}
	})
	if w.dashboard != nil {
		dash := w.dashboard
		app.OnReload(func(next config.Config) {
			dash.SetDefaultRefreshRate(next.Dashboard.RefreshRate)
		})
	}

	if err := app.Run(ctx); err != nil {
		logger.Error().Err(err).Str("event", "shutdown.failed").Msg("daemon stopped with error")
		return err
	}
	logger.Info().Str("event", "shutdown").Msg("smsmanager stopped")
	return nil
}

type shutdownHook struct {
	name string
	fn   daemon.ShutdownHook
}

// wiring builds the components for the selected roles and remembers how to
// release them. Hooks are registered in build order and run in reverse.
type wiring struct {
	cfg    config.Config
	logger zerolog.Logger

	servers   []daemon.Server
	hooks     []shutdownHook
	dashboard *dashboard.Server
}

func (w *wiring) addHook(name string, fn daemon.ShutdownHook) {
	w.hooks = append(w.hooks, shutdownHook{name: name, fn: fn})
}

// cleanup runs the collected hooks when startup fails before the manager
// owns them.
func (w *wiring) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), w.cfg.ShutdownTimeout)
	defer cancel()
	for i := len(w.hooks) - 1; i >= 0; i-- {
		if err := w.hooks[i].fn(ctx); err != nil {
			w.logger.Warn().Err(err).Str("hook", w.hooks[i].name).Msg("cleanup failed")
		}
	}
	w.hooks = nil
}

func (w *wiring) build(ctx context.Context, r roles) error {
	tracing := ""
	if w.cfg.Telemetry.Enabled {
		tracing = serviceName
	}
	provider, err := daemon.InitTelemetry(ctx, w.cfg.Telemetry, serviceName, version.Version, w.logger)
	if err != nil {
		w.logger.Warn().Err(err).Msg("Telemetry initialization failed, continuing without tracing")
		tracing = ""
	} else {
		w.addHook("telemetry", provider.Shutdown)
	}

	if r.api {
		if err := w.buildAPI(ctx, tracing); err != nil {
			return err
		}
	}
	if r.dashboard {
		if err := w.buildDashboard(tracing); err != nil {
			return err
		}
	}
	if len(w.servers) == 0 {
		return errors.New("no server selected")
	}
	return nil
}

func (w *wiring) buildAPI(ctx context.Context, tracing string) error {
	cfg := w.cfg
	store, err := persistence.OpenStore(cfg.Store.Backend, cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}
	w.addHook("store", func(context.Context) error { return store.Close() })
	w.logger.Info().Str("backend", cfg.Store.Backend).Str("path", cfg.Store.Path).Msg("store opened")

	pub, err := events.Open(cfg.Events.Backend, cfg.Events.NSQAddr, smslog.WithComponent("events"))
	if err != nil {
		return fmt.Errorf("open events publisher: %w", err)
	}
	w.addHook("events", func(context.Context) error { return pub.Close() })

	rnd := random.NewTimeSeeded()
	if cfg.Sender.Seed != 0 {
		rnd = random.New(cfg.Sender.Seed)
	}
	pool := sender.New(store, sender.Config{
		MaxWorkers:    cfg.Sender.MaxWorkers,
		RatePerSecond: cfg.Sender.RatePerSecond,
		Burst:         cfg.Sender.Burst,
		TimeUnit:      cfg.Sender.TimeUnit,
	}, sender.WithRand(rnd), sender.WithLogger(smslog.WithComponent("sender")))

	svcLogger := smslog.WithComponent("producer")
	svc := producer.NewService(producer.Options{
		Store:      store,
		Dispatcher: pool,
		Events:     pub,
		Rand:       rnd,
		Logger:     &svcLogger,
	})
	w.addHook("producer-service", svc.Shutdown)

	hm := health.NewManager(version.Version)
	hm.RegisterChecker(health.NewPingChecker("store", svc.Ping))

	srv, err := api.New(ctx, svc, hm, api.Config{
		Stack: middleware.StackConfig{
			EnableCORS:            true,
			AllowedOrigins:        cfg.API.AllowedOrigins,
			EnableSecurityHeaders: true,
			EnableMetrics:         true,
			TracingService:        tracing,
			EnableLogging:         true,
			RateLimitPerMinute:    cfg.API.RateLimitPerMinute,
		},
		MaxBodyBytes: cfg.API.MaxBodyBytes,
	})
	if err != nil {
		return fmt.Errorf("build api server: %w", err)
	}
	w.servers = append(w.servers, daemon.APIServer(cfg.API, srv.Handler()))
	return nil
}

func (w *wiring) buildDashboard(tracing string) error {
	cfg := w.cfg
	c, err := cache.Open(cache.Options{
		Backend:         cfg.Cache.Backend,
		CleanupInterval: cfg.Cache.CleanupInterval,
		Redis: cache.RedisConfig{
			Addr:      cfg.Cache.Redis.Addr,
			Password:  cfg.Cache.Redis.Password,
			DB:        cfg.Cache.Redis.DB,
			Namespace: cfg.Cache.Redis.Namespace,
		},
	}, smslog.WithComponent("cache"))
	if err != nil {
		return fmt.Errorf("open %s cache: %w", cfg.Cache.Backend, err)
	}
	w.addHook("cache", func(context.Context) error { return c.Close() })

	backend := client.New(cfg.Dashboard.BackendURL, httpx.NewClient(cfg.Dashboard.BackendTimeout))
	backend.Wait = httpx.NewWaitClient()

	hm := health.NewManager(version.Version)
	hm.RegisterChecker(health.NewOptionalPingChecker("backend", backend.Healthy))
	if rc, ok := c.(*cache.RedisCache); ok {
		hm.RegisterChecker(health.NewPingChecker("cache", rc.HealthCheck))
	}

	logger := smslog.WithComponent("dashboard")
	queries := dashboard.NewQueries(backend, c, cfg.Dashboard.StaleTime, logger)
	dash, err := dashboard.New(queries, hm, dashboard.Config{
		Stack: middleware.StackConfig{
			EnableSecurityHeaders: true,
			EnableMetrics:         true,
			TracingService:        tracing,
			EnableLogging:         true,
			RateLimitPerMinute:    cfg.Dashboard.RateLimitPerMinute,
		},
		RefreshRate: cfg.Dashboard.RefreshRate,
		WaitForSend: cfg.Dashboard.WaitForSend,
	}, logger)
	if err != nil {
		return fmt.Errorf("build dashboard: %w", err)
	}
	w.dashboard = dash
	w.servers = append(w.servers, daemon.DashboardServer(cfg.Dashboard, dash.Handler()))
	w.logger.Info().
		Str("backend_url", cfg.Dashboard.BackendURL).
		Str("cache", cfg.Cache.Backend).
		Msg("dashboard wired")
	return nil
}
