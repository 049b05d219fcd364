package schedulequeue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	scheduleservice "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/application"
	scheduledomain "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/domain"
	"github.com/Black-And-White-Club/league-scheduler/pkg/observability/attr"
	"github.com/Black-And-White-Club/league-scheduler/pkg/observability/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
)

const queueService = "river"

// QueueService enqueues the schedule module's background jobs.
type QueueService interface {
	EnqueueAutoBuild(ctx context.Context, seasonID uuid.UUID, req scheduledomain.AutoBuildRequest, requestedBy string) (EnqueueResult, error)
	EnqueueQaValidation(ctx context.Context, seasonID uuid.UUID) (EnqueueResult, error)
	HealthCheck(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

var _ QueueService = (*Service)(nil)

// Config sizes the worker pool.
type Config struct {
	DSN        string
	MaxWorkers int
}

// Dependencies are what the workers call into.
type Dependencies struct {
	Service   scheduleservice.Service
	Lock      scheduleservice.BuildLock
	Publisher message.Publisher
}

// Service runs River against its own pgx pool.
type Service struct {
	pool    *pgxpool.Pool
	client  *river.Client[pgx.Tx]
	logger  *slog.Logger
	metrics metrics.OperationMetrics
}

// NewService opens a pgx pool for River and registers the schedule workers.
func NewService(ctx context.Context, cfg Config, deps Dependencies, logger *slog.Logger, m metrics.OperationMetrics) (*Service, error) {
	logger = logger.With(attr.String("component", "river_queue"))
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 4
	}

	pool, err := openPool(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewAutoBuildWorker(deps.Service, deps.Lock, deps.Publisher, logger))
	river.AddWorker(workers, NewQaValidationWorker(deps.Service, deps.Publisher, logger))

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Logger: logger,
		Queues: map[string]river.QueueConfig{
			QueueName: {MaxWorkers: cfg.MaxWorkers},
		},
		Workers: workers,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	logger.InfoContext(ctx, "Schedule queue service initialized", attr.Int("max_workers", cfg.MaxWorkers))
	return &Service{pool: pool, client: client, logger: logger, metrics: m}, nil
}

func openPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// Migrate brings River's tables up to date.
func Migrate(ctx context.Context, dsn string) error {
	pool, err := openPool(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{}); err != nil {
		return fmt.Errorf("failed to run River migrations: %w", err)
	}
	return nil
}

func (s *Service) Start(ctx context.Context) error {
	if err := s.client.Start(ctx); err != nil {
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.logger.InfoContext(ctx, "Schedule queue service started")
	return nil
}

// Stop waits for running jobs and closes the pool.
func (s *Service) Stop(ctx context.Context) error {
	err := s.client.Stop(ctx)
	s.pool.Close()
	if err != nil {
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.logger.InfoContext(ctx, "Schedule queue service stopped")
	return nil
}

func (s *Service) EnqueueAutoBuild(ctx context.Context, seasonID uuid.UUID, req scheduledomain.AutoBuildRequest, requestedBy string) (EnqueueResult, error) {
	return s.insert(ctx, "enqueue_auto_build", seasonID, AutoBuildJob{
		SeasonID:      seasonID,
		Request:       req,
		RequestedBy:   requestedBy,
		CorrelationID: attr.CorrelationIDFrom(ctx),
	})
}

func (s *Service) EnqueueQaValidation(ctx context.Context, seasonID uuid.UUID) (EnqueueResult, error) {
	return s.insert(ctx, "enqueue_qa_validation", seasonID, QaValidationJob{
		SeasonID:      seasonID,
		CorrelationID: attr.CorrelationIDFrom(ctx),
	})
}

func (s *Service) insert(ctx context.Context, operation string, seasonID uuid.UUID, args river.JobArgs) (EnqueueResult, error) {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, operation, queueService)
	defer func() { s.metrics.RecordOperationDuration(ctx, operation, queueService, time.Since(start)) }()

	res, err := s.client.Insert(ctx, args, &river.InsertOpts{
		Queue: QueueName,
		UniqueOpts: river.UniqueOpts{
			ByArgs:  true,
			ByState: activeStates,
		},
	})
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, operation, queueService)
		s.logger.ErrorContext(ctx, "Failed to enqueue job",
			attr.ExtractCorrelationID(ctx),
			attr.String("kind", args.Kind()),
			attr.SeasonID(seasonID),
			attr.Error(err),
		)
		return EnqueueResult{}, fmt.Errorf("failed to enqueue %s: %w", args.Kind(), err)
	}

	s.metrics.RecordOperationSuccess(ctx, operation, queueService)
	s.logger.InfoContext(ctx, "Job enqueued",
		attr.ExtractCorrelationID(ctx),
		attr.String("kind", args.Kind()),
		attr.SeasonID(seasonID),
		attr.Int64("job_id", res.Job.ID),
		attr.Bool("duplicate", res.UniqueSkippedAsDuplicate),
	)
	return EnqueueResult{
		JobID:     res.Job.ID,
		Duplicate: res.UniqueSkippedAsDuplicate,
		QueuedAt:  res.Job.CreatedAt,
	}, nil
}

// HealthCheck pings the queue's pool.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.client == nil || s.pool == nil {
		return errors.New("river client is not initialized")
	}
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("queue health check failed: %w", err)
	}
	return nil
}
