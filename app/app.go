package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Black-And-White-Club/league-scheduler/app/modules/schedule"
	scheduleevents "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/events"
	schedulecache "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/infrastructure/cache"
	"github.com/Black-And-White-Club/league-scheduler/config"
	"github.com/Black-And-White-Club/league-scheduler/pkg/authjwt"
	"github.com/Black-And-White-Club/league-scheduler/pkg/eventbus"
	"github.com/Black-And-White-Club/league-scheduler/pkg/observability"
	"github.com/Black-And-White-Club/league-scheduler/pkg/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// App holds the shared resources and the schedule module.
type App struct {
	Config         *config.Config
	Observability  observability.Observability
	DB             *bun.DB
	EventBus       eventbus.EventBus
	Router         *message.Router
	Redis          *redis.Client
	Tokens         authjwt.Provider
	ScheduleModule *schedule.Module

	httpServer    *http.Server
	metricsServer *http.Server
	wg            sync.WaitGroup
}

// OpenDB opens a bun handle over pgdriver.
func OpenDB(dsn string) *bun.DB {
	pgdb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(pgdb, pgdialect.New())
}

// NewApp connects every dependency and builds the schedule module.
func NewApp(ctx context.Context, cfg *config.Config, obs observability.Observability) (*App, error) {
	logger := obs.Logger
	app := &App{Config: cfg, Observability: obs}

	if cfg.JWT.Secret == "" {
		return nil, errors.New("JWT secret is not configured")
	}
	tokens, err := authjwt.NewProvider(cfg.JWT.Secret)
	if err != nil {
		return nil, fmt.Errorf("failed to create token provider: %w", err)
	}
	app.Tokens = tokens

	app.DB = OpenDB(cfg.Postgres.DSN)
	if err := app.DB.PingContext(ctx); err != nil {
		app.DB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	bus, err := eventbus.NewNATS(ctx, eventbus.Config{
		URL:     cfg.NATS.URL,
		Durable: cfg.NATS.Durable,
		AckWait: cfg.NATS.AckWait,
	}, logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}
	app.EventBus = bus
	if err := bus.EnsureStream(ctx, scheduleevents.StreamName, scheduleevents.StreamSubjects); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to provision stream: %w", err)
	}

	if cfg.Redis.URL != "" {
		client, err := schedulecache.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.Redis = client
	}

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 30 * time.Second}, watermill.NewSlogLogger(logger))
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to create watermill router: %w", err)
	}
	app.Router = router

	module, err := schedule.NewScheduleModule(ctx, cfg, obs, schedule.Dependencies{
		DB:        app.DB,
		EventBus:  bus,
		Router:    router,
		Redis:     app.Redis,
		WithQueue: true,
	})
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize schedule module: %w", err)
	}
	app.ScheduleModule = module

	checks := []HealthCheck{
		{Name: "postgres", Check: app.DB.PingContext},
		{Name: "queue", Check: module.Queue.HealthCheck},
	}
	if app.Redis != nil {
		checks = append(checks, HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
			return app.Redis.Ping(ctx).Err()
		}})
	}

	app.httpServer = &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           module.HTTPHandler(tokens, NewHealthHandler(checks...)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if cfg.Observability.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(obs.Registry, promhttp.HandlerOpts{}))
		app.metricsServer = &http.Server{
			Addr:              cfg.Observability.MetricsAddress,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	logger.InfoContext(ctx, "Application initialized",
		attr.String("http_address", cfg.HTTP.Address),
		attr.Bool("redis", app.Redis != nil),
	)
	return app, nil
}

// Run starts the router, the module and the HTTP servers, and blocks until
// ctx is canceled or a server fails.
func (app *App) Run(ctx context.Context) error {
	logger := app.Observability.Logger
	errCh := make(chan error, 3)

	go func() {
		if err := app.Router.Run(ctx); err != nil {
			errCh <- fmt.Errorf("watermill router stopped: %w", err)
		}
	}()
	select {
	case <-app.Router.Running():
	case <-ctx.Done():
		return ctx.Err()
	}

	app.wg.Add(1)
	go app.ScheduleModule.Run(ctx, &app.wg)

	serve := func(name string, srv *http.Server) {
		logger.InfoContext(ctx, "HTTP server listening", attr.String("server", name), attr.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("%s server: %w", name, err)
		}
	}
	go serve("api", app.httpServer)
	if app.metricsServer != nil {
		go serve("metrics", app.metricsServer)
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Close shuts everything down in reverse order of construction.
func (app *App) Close() error {
	logger := app.Observability.Logger
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var errs []error
	for _, srv := range []*http.Server{app.httpServer, app.metricsServer} {
		if srv == nil {
			continue
		}
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown %s: %w", srv.Addr, err))
		}
	}
	if app.ScheduleModule != nil {
		if err := app.ScheduleModule.Close(); err != nil {
			errs = append(errs, err)
		}
		app.wg.Wait()
	}
	if app.Router != nil {
		if err := app.Router.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close router: %w", err))
		}
	}
	if app.EventBus != nil {
		if err := app.EventBus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close event bus: %w", err))
		}
	}
	if app.Redis != nil {
		if err := app.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		logger.Error("Shutdown finished with errors", attr.Error(err))
	} else {
		logger.Info("Application shut down gracefully")
	}
	return err
}
