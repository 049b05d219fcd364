package schedulehandlers

import (
	"context"
	"errors"

	scheduleservice "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/application"
	scheduleevents "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/events"
	"github.com/Black-And-White-Club/league-scheduler/pkg/handlerwrapper"
	"github.com/Black-And-White-Club/league-scheduler/pkg/observability/attr"
	"github.com/google/uuid"
)

var (
	errNilPayload    = errors.New("payload is nil")
	errMissingSeason = errors.New("season_id is required")
)

// errQueueUnavailable is returned for async work when no queue is wired.
var errQueueUnavailable = errors.New("background queue is not configured")

// HandleAutoBuildRequested enqueues a build job and acknowledges it.
func (h *ScheduleHandlers) HandleAutoBuildRequested(ctx context.Context, payload *scheduleevents.AutoBuildRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	if payload == nil {
		return nil, errNilPayload
	}
	if payload.SeasonID == uuid.Nil {
		return rejected(scheduleevents.AutoBuildFailedV1, payload.SeasonID, errMissingSeason), nil
	}
	if h.queue == nil {
		return nil, errQueueUnavailable
	}

	res, err := h.queue.EnqueueAutoBuild(ctx, payload.SeasonID, payload.Request, payload.RequestedBy)
	if err != nil {
		return nil, err
	}
	if res.Duplicate {
		h.logger.InfoContext(ctx, "Auto-build already queued",
			attr.ExtractCorrelationID(ctx),
			attr.SeasonID(payload.SeasonID),
			attr.Int64("job_id", res.JobID),
		)
	}

	return []handlerwrapper.Result{{
		Topic: scheduleevents.AutoBuildQueuedV1,
		Payload: scheduleevents.AutoBuildQueuedPayloadV1{
			SeasonID:  payload.SeasonID,
			JobID:     res.JobID,
			Duplicate: res.Duplicate,
			QueuedAt:  res.QueuedAt,
		},
	}}, nil
}

// HandleUndoRequested deletes the season's games under the build lock.
func (h *ScheduleHandlers) HandleUndoRequested(ctx context.Context, payload *scheduleevents.SeasonRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	if payload == nil {
		return nil, errNilPayload
	}
	if payload.SeasonID == uuid.Nil {
		return rejected(scheduleevents.UndoFailedV1, payload.SeasonID, errMissingSeason), nil
	}

	var deleted int
	err := scheduleservice.WithBuildLock(ctx, h.lock, h.logger, payload.SeasonID, func(ctx context.Context) error {
		var err error
		deleted, err = h.service.Undo(ctx, payload.SeasonID)
		return err
	})
	if err != nil {
		if final(err) {
			return rejected(scheduleevents.UndoFailedV1, payload.SeasonID, err), nil
		}
		return nil, err
	}

	return []handlerwrapper.Result{{
		Topic:   scheduleevents.UndoCompletedV1,
		Payload: scheduleevents.UndoCompletedPayloadV1{SeasonID: payload.SeasonID, Deleted: deleted},
	}}, nil
}

// HandleQaRequested hands validation to the queue when one is wired and
// validates inline otherwise.
func (h *ScheduleHandlers) HandleQaRequested(ctx context.Context, payload *scheduleevents.SeasonRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	if payload == nil {
		return nil, errNilPayload
	}
	if payload.SeasonID == uuid.Nil {
		return rejected(scheduleevents.QaFailedV1, payload.SeasonID, errMissingSeason), nil
	}

	if h.queue != nil {
		if _, err := h.queue.EnqueueQaValidation(ctx, payload.SeasonID); err != nil {
			return nil, err
		}
		// The worker publishes qa.completed.
		return nil, nil
	}

	qa, err := h.service.Validate(ctx, payload.SeasonID)
	if err != nil {
		if final(err) {
			return rejected(scheduleevents.QaFailedV1, payload.SeasonID, err), nil
		}
		return nil, err
	}
	return []handlerwrapper.Result{{
		Topic: scheduleevents.QaCompletedV1,
		Payload: scheduleevents.QaCompletedPayloadV1{
			SeasonID: payload.SeasonID,
			Counts:   scheduleevents.NewQaCounts(qa),
			Result:   qa,
		},
	}}, nil
}

// final reports whether retrying err cannot succeed.
func final(err error) bool {
	return scheduleservice.IsConfigurationError(err) || errors.Is(err, scheduleservice.ErrSeasonNotFound)
}

func rejected(topic string, seasonID uuid.UUID, err error) []handlerwrapper.Result {
	return []handlerwrapper.Result{{
		Topic: topic,
		Payload: scheduleevents.FailedPayloadV1{
			SeasonID:  seasonID,
			Reason:    err.Error(),
			Retryable: false,
		},
	}}
}
