package schedule

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	scheduleservice "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/application"
	schedulecache "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/infrastructure/cache"
	schedulehandlers "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/infrastructure/handlers"
	schedulequeue "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/infrastructure/queue"
	scheduledb "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/infrastructure/repositories"
	schedulerouter "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/infrastructure/router"
	"github.com/Black-And-White-Club/league-scheduler/config"
	"github.com/Black-And-White-Club/league-scheduler/pkg/authjwt"
	"github.com/Black-And-White-Club/league-scheduler/pkg/dateparse"
	"github.com/Black-And-White-Club/league-scheduler/pkg/eventbus"
	"github.com/Black-And-White-Club/league-scheduler/pkg/observability"
	"github.com/Black-And-White-Club/league-scheduler/pkg/observability/attr"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
)

// Module represents the schedule module.
type Module struct {
	EventBus        eventbus.EventBus
	ScheduleService scheduleservice.Service
	Handlers        *schedulehandlers.ScheduleHandlers
	ScheduleRouter  *schedulerouter.ScheduleRouter
	Queue           *schedulequeue.Service
	Lock            scheduleservice.BuildLock
	config          *config.Config
	observability   observability.Observability
	cancelFunc      context.CancelFunc
}

// Dependencies are the shared resources the module is built on. Redis may be
// nil, which disables the analysis cache and keeps the build lock in-process.
// WithQueue false leaves async requests unsupported.
type Dependencies struct {
	DB        *bun.DB
	EventBus  eventbus.EventBus
	Router    *message.Router
	Redis     *redis.Client
	WithQueue bool
}

// NewScheduleModule creates a new instance of the schedule module.
func NewScheduleModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	deps Dependencies,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "schedule.NewScheduleModule called")

	normalizer, err := cfg.Schedule.Normalizer()
	if err != nil {
		return nil, fmt.Errorf("invalid schedule configuration: %w", err)
	}
	location, err := cfg.Schedule.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid schedule configuration: %w", err)
	}

	var (
		cache scheduleservice.AnalysisCache
		lock  scheduleservice.BuildLock
	)
	if deps.Redis != nil {
		cache = schedulecache.NewAnalysisCache(deps.Redis, cfg.Schedule.AnalysisCacheTTL, logger)
		lock = schedulecache.NewSeasonLock(deps.Redis, cfg.Schedule.BuildLockTTL)
	} else {
		logger.WarnContext(ctx, "Redis not configured; analysis cache disabled and build lock is process-local")
		lock = schedulecache.NewLocalLock()
	}

	service := scheduleservice.NewScheduleService(
		scheduledb.NewRepository(deps.DB),
		logger,
		obs.Metrics,
		obs.Tracer,
		deps.DB,
		cache,
		scheduleservice.Settings{
			Normalizer:      normalizer,
			DefaultMinGap:   cfg.Schedule.DefaultMinGap(),
			DefaultLocation: location,
		},
	)

	module := &Module{
		EventBus:        deps.EventBus,
		ScheduleService: service,
		Lock:            lock,
		config:          cfg,
		observability:   obs,
	}

	var queue schedulehandlers.Queue
	if deps.WithQueue {
		q, err := schedulequeue.NewService(ctx, schedulequeue.Config{
			DSN:        cfg.Postgres.DSN,
			MaxWorkers: cfg.Postgres.MaxWorkers,
		}, schedulequeue.Dependencies{
			Service:   service,
			Lock:      lock,
			Publisher: deps.EventBus,
		}, logger, obs.Metrics)
		if err != nil {
			return nil, fmt.Errorf("failed to create schedule queue: %w", err)
		}
		module.Queue = q
		queue = q
	}

	module.Handlers = schedulehandlers.NewScheduleHandlers(
		service, queue, lock, dateparse.New(), logger, obs.Tracer, obs.Metrics,
	)

	if deps.Router != nil {
		module.ScheduleRouter = schedulerouter.NewScheduleRouter(
			logger, deps.Router, deps.EventBus, deps.EventBus, obs.Tracer, obs.Metrics,
		)
		if err := module.ScheduleRouter.Configure(ctx, module.Handlers); err != nil {
			return nil, fmt.Errorf("failed to configure schedule router: %w", err)
		}
	}

	return module, nil
}

// HTTPHandler builds the admin API around the module's handlers.
func (m *Module) HTTPHandler(tokens authjwt.Provider, health http.HandlerFunc) http.Handler {
	return schedulerouter.NewHTTPRouter(schedulerouter.HTTPConfig{
		AllowedOrigins: m.config.HTTP.AllowedOrigins,
		RateLimit:      m.config.HTTP.RateLimit,
		RateBurst:      m.config.HTTP.RateBurst,
		RequestTimeout: m.config.HTTP.RequestTimeout,
	}, m.Handlers, tokens, health, m.observability.Logger)
}

// Run starts the job queue and blocks until ctx is canceled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting schedule module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if m.Queue != nil {
		if err := m.Queue.Start(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to start schedule queue", attr.Error(err))
		}
	}

	<-ctx.Done()
	logger.Info("Schedule module goroutine stopped")
}

// Close stops the schedule module and cleans up resources.
func (m *Module) Close() error {
	logger := m.observability.Logger
	logger.Info("Stopping schedule module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	var firstErr error
	if m.Queue != nil {
		if err := m.Queue.Stop(context.Background()); err != nil {
			logger.Error("Error stopping schedule queue", attr.Error(err))
			firstErr = fmt.Errorf("error stopping schedule queue: %w", err)
		}
	}
	if m.ScheduleRouter != nil {
		if err := m.ScheduleRouter.Close(); err != nil {
			logger.Error("Error closing ScheduleRouter from module", attr.Error(err))
			if firstErr == nil {
				firstErr = fmt.Errorf("error closing ScheduleRouter: %w", err)
			}
		}
	}

	logger.Info("Schedule module stopped")
	return firstErr
}
