package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	checklistHandler "checklist/internal/checklist/handler"
	"checklist/internal/connectivity"
	jwttoken "checklist/internal/jwt_token"
	"checklist/internal/platform/config"
	"checklist/internal/platform/health"
	"checklist/internal/platform/logger"
	"checklist/internal/platform/metrics"
	"checklist/internal/platform/redis"
	sessionHandler "checklist/internal/session/handler"
	sessionService "checklist/internal/session/service"
	settingsHandler "checklist/internal/settings/handler"
	settingsService "checklist/internal/settings/service"
	settingsStore "checklist/internal/settings/store"
	"checklist/internal/transition"
	httptransport "checklist/internal/transport/http"
	"checklist/internal/upstream"
	vehicleHandler "checklist/internal/vehicle/handler"
	vehicleService "checklist/internal/vehicle/service"
	request "checklist/pkg/platform/middleware/request"
)

const (
	sessionIssuer   = "checklist-gateway"
	shutdownTimeout = 10 * time.Second
	poolStatsEvery  = 15 * time.Second
)

// main wires dependencies and runs the HTTP server, the connectivity monitor
// and redis pool stats until SIGINT/SIGTERM.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("gateway stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("gateway stopped")
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	log.Info("initializing checklist gateway",
		"addr", cfg.Addr,
		"env", cfg.Environment,
		"upstream", cfg.Upstream.BaseURL,
		"settings_store", cfg.Settings.Store,
		"vehicle_source", cfg.VehicleSource,
	)

	m := metrics.New()
	healthHandler := health.New(cfg.Environment)

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck // shutdown path
		healthHandler.RegisterCheck("redis", redisClient.Health)
	}

	store, err := buildSettingsStore(ctx, cfg, redisClient, healthHandler)
	if err != nil {
		return err
	}
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}
	settings := settingsService.New(ctx, store,
		settingsService.WithLogger(log),
		settingsService.WithMetrics(m),
	)

	backend := upstream.New(cfg.Upstream,
		upstream.WithLogger(log),
		upstream.WithMetrics(m),
	)

	monitor := connectivity.New(backend, cfg.Connectivity,
		connectivity.WithLogger(log),
		connectivity.WithMetrics(m),
	)
	if monitor.Enabled() {
		healthHandler.SetUpstream(monitor.Online)
	}

	var primary vehicleService.Provider = vehicleService.StaticProvider{}
	if cfg.VehicleSource == config.VehiclesUpstream {
		primary = vehicleService.NewUpstreamProvider(backend)
	}
	vehicleOpts := []vehicleService.Option{
		vehicleService.WithOnline(monitor.Online),
		vehicleService.WithLogger(log),
		vehicleService.WithMetrics(m),
	}
	// Request failures may only open the breaker when the poller runs to close it.
	if monitor.Enabled() {
		vehicleOpts = append(vehicleOpts, vehicleService.WithReporter(monitor))
	}
	vehicles := vehicleService.New(primary, vehicleOpts...)

	tokens := jwttoken.NewJWTService(cfg.Session.SigningKey, sessionIssuer, cfg.Session.TTL)
	sessions := sessionService.New(tokens, backend, cfg.Session.TTL,
		sessionService.WithLogger(log),
		sessionService.WithMetrics(m),
		sessionService.WithHydrationWait(cfg.Session.HydrationWait),
		sessionService.WithCookies(sessionService.CookieConfig{Secure: cfg.Session.SecureCookies}),
	)

	tracker := transition.NewTracker([]transition.Clearer{vehicles},
		transition.WithLogger(log),
		transition.WithMetrics(m),
		transition.WithSecureCookies(cfg.Session.SecureCookies),
	)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:         log,
		Metrics:        m,
		RequestMetrics: request.NewMetrics(),
		Health:         healthHandler,
		Sessions:       sessions,
		LoginPath:      cfg.Session.LoginPath,
		Tracker:        tracker,
		Auth:           sessionHandler.New(backend, sessions, settings, monitor.Online, log),
		Settings:       settingsHandler.New(settings, log),
		Vehicles:       vehicleHandler.New(vehicles, log),
		Checklists:     checklistHandler.New(backend, log),
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return monitor.Run(gctx)
	})

	if redisClient != nil {
		g.Go(func() error {
			return redisClient.RunPoolStats(gctx, poolStatsEvery)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func buildSettingsStore(ctx context.Context, cfg config.Server, redisClient *redis.Client, h *health.Handler) (settingsService.Store, error) {
	switch cfg.Settings.Store {
	case config.StoreMemory:
		return settingsStore.NewInMemory(), nil
	case config.StoreFile:
		fs := settingsStore.NewFile(cfg.Settings.FilePath)
		h.RegisterCheck("settings_file", fs.Health)
		return fs, nil
	case config.StoreRedis:
		if redisClient == nil {
			return nil, errors.New("redis settings store configured without a redis connection")
		}
		return settingsStore.NewRedis(redisClient), nil
	case config.StoreSQLite:
		db, err := settingsStore.OpenSQLite(ctx, cfg.Settings.SQLitePath)
		if err != nil {
			return nil, err
		}
		h.RegisterCheck("settings_sqlite", db.Health)
		return db, nil
	default:
		return nil, fmt.Errorf("unknown settings store %q", cfg.Settings.Store)
	}
}
