package schedulequeue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	scheduleservice "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/application"
	scheduledomain "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/domain"
	scheduleevents "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/events"
	"github.com/Black-And-White-Club/league-scheduler/pkg/handlerwrapper"
	"github.com/Black-And-White-Club/league-scheduler/pkg/observability/attr"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

const (
	// buildTimeout bounds a single build attempt.
	buildTimeout = 10 * time.Minute
	// lockedSnooze is how long a build waits when another holds the season.
	lockedSnooze = 30 * time.Second
)

// AutoBuildWorker runs AutoBuildJob.
type AutoBuildWorker struct {
	river.WorkerDefaults[AutoBuildJob]

	service   scheduleservice.Service
	lock      scheduleservice.BuildLock
	publisher message.Publisher
	logger    *slog.Logger
}

func NewAutoBuildWorker(service scheduleservice.Service, lock scheduleservice.BuildLock, publisher message.Publisher, logger *slog.Logger) *AutoBuildWorker {
	return &AutoBuildWorker{service: service, lock: lock, publisher: publisher, logger: logger}
}

func (w *AutoBuildWorker) Timeout(*river.Job[AutoBuildJob]) time.Duration { return buildTimeout }

// Work builds under the season lock, validates the result and publishes
// completed or failed. Configuration errors cancel the job; a held lock
// snoozes it.
func (w *AutoBuildWorker) Work(ctx context.Context, job *river.Job[AutoBuildJob]) error {
	args := job.Args
	ctx = attr.WithCorrelationID(ctx, args.CorrelationID)
	logger := w.logger.With(
		attr.ExtractCorrelationID(ctx),
		attr.SeasonID(args.SeasonID),
		attr.Int64("job_id", job.ID),
		attr.Int("attempt", job.Attempt),
	)
	logger.InfoContext(ctx, "Auto-build job started")

	var (
		result *scheduledomain.AutoBuildResult
		qa     *scheduledomain.AutoBuildQaResult
	)
	err := scheduleservice.WithBuildLock(ctx, w.lock, logger, args.SeasonID, func(ctx context.Context) error {
		var err error
		result, err = w.service.Build(ctx, args.SeasonID, args.Request)
		if err != nil {
			return err
		}
		qa, err = w.service.Validate(ctx, args.SeasonID)
		if err != nil {
			// The games are committed; report the build without QA counts.
			logger.WarnContext(ctx, "Validation after build failed", attr.Error(err))
			qa = nil
		}
		return nil
	})

	switch {
	case err == nil:
		logger.InfoContext(ctx, "Auto-build job completed",
			attr.Int("games_placed", result.TotalGamesPlaced),
			attr.Int("games_failed", result.GamesFailedToPlace),
		)
		return w.publish(ctx, scheduleevents.AutoBuildCompletedV1, scheduleevents.AutoBuildCompletedPayloadV1{
			SeasonID: args.SeasonID,
			Result:   *result,
			Qa:       scheduleevents.NewQaCounts(qa),
		})

	case errors.Is(err, scheduleservice.ErrBuildInProgress):
		logger.InfoContext(ctx, "Season is locked, snoozing auto-build job")
		return river.JobSnooze(lockedSnooze)

	case scheduleservice.IsConfigurationError(err) || errors.Is(err, scheduleservice.ErrSeasonNotFound):
		logger.WarnContext(ctx, "Auto-build job rejected", attr.Error(err))
		if pubErr := w.publishFailed(ctx, scheduleevents.AutoBuildFailedV1, args.SeasonID, err, false); pubErr != nil {
			return pubErr
		}
		return river.JobCancel(err)

	default:
		logger.ErrorContext(ctx, "Auto-build job failed", attr.Error(err))
		if job.Attempt >= job.MaxAttempts {
			if pubErr := w.publishFailed(ctx, scheduleevents.AutoBuildFailedV1, args.SeasonID, err, false); pubErr != nil {
				logger.ErrorContext(ctx, "Failed to publish final failure", attr.Error(pubErr))
			}
		}
		return err
	}
}

func (w *AutoBuildWorker) publish(ctx context.Context, topic string, payload any) error {
	return publish(ctx, w.publisher, topic, payload)
}

func (w *AutoBuildWorker) publishFailed(ctx context.Context, topic string, seasonID uuid.UUID, cause error, retryable bool) error {
	return publish(ctx, w.publisher, topic, scheduleevents.FailedPayloadV1{
		SeasonID:  seasonID,
		Reason:    cause.Error(),
		Retryable: retryable,
	})
}

// QaValidationWorker runs QaValidationJob.
type QaValidationWorker struct {
	river.WorkerDefaults[QaValidationJob]

	service   scheduleservice.Service
	publisher message.Publisher
	logger    *slog.Logger
}

func NewQaValidationWorker(service scheduleservice.Service, publisher message.Publisher, logger *slog.Logger) *QaValidationWorker {
	return &QaValidationWorker{service: service, publisher: publisher, logger: logger}
}

func (w *QaValidationWorker) Work(ctx context.Context, job *river.Job[QaValidationJob]) error {
	args := job.Args
	ctx = attr.WithCorrelationID(ctx, args.CorrelationID)

	qa, err := w.service.Validate(ctx, args.SeasonID)
	if err != nil {
		if errors.Is(err, scheduleservice.ErrSeasonNotFound) {
			w.logger.WarnContext(ctx, "QA job for unknown season", attr.SeasonID(args.SeasonID))
			if pubErr := publish(ctx, w.publisher, scheduleevents.QaFailedV1, scheduleevents.FailedPayloadV1{
				SeasonID: args.SeasonID,
				Reason:   err.Error(),
			}); pubErr != nil {
				return pubErr
			}
			return river.JobCancel(err)
		}
		return err
	}

	counts := scheduleevents.NewQaCounts(qa)
	w.logger.InfoContext(ctx, "QA job completed",
		attr.ExtractCorrelationID(ctx),
		attr.SeasonID(args.SeasonID),
		attr.Int("critical", counts.Critical),
		attr.Int("warnings", counts.Warnings),
	)
	return publish(ctx, w.publisher, scheduleevents.QaCompletedV1, scheduleevents.QaCompletedPayloadV1{
		SeasonID: args.SeasonID,
		Counts:   counts,
		Result:   qa,
	})
}

func publish(ctx context.Context, publisher message.Publisher, topic string, payload any) error {
	msg, err := handlerwrapper.NewMessage(ctx, topic, payload)
	if err != nil {
		return err
	}
	if err := publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", topic, err)
	}
	return nil
}
