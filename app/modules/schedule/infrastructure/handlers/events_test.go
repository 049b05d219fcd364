package schedulehandlers

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	scheduleservice "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/application"
	scheduledomain "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/domain"
	scheduleevents "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/events"
	schedulequeue "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/infrastructure/queue"
	"github.com/Black-And-White-Club/league-scheduler/pkg/observability/metrics"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func newTestHandlers(svc *FakeScheduleService, queue Queue, lock scheduleservice.BuildLock) *ScheduleHandlers {
	return NewScheduleHandlers(
		svc,
		queue,
		lock,
		nil,
		slog.New(slog.DiscardHandler),
		noop.NewTracerProvider().Tracer("test"),
		metrics.NewNoop(),
	)
}

func TestScheduleHandlers_HandleAutoBuildRequested(t *testing.T) {
	seasonID := uuid.New()

	tests := []struct {
		name      string
		payload   *scheduleevents.AutoBuildRequestedPayloadV1
		noQueue   bool
		setupFake func(*FakeQueue)
		wantErr   bool
		wantTopic string
		wantLen   int
		wantTrace []string
	}{
		{
			name:      "success - job queued",
			payload:   &scheduleevents.AutoBuildRequestedPayloadV1{SeasonID: seasonID, RequestedBy: "director-1"},
			wantTopic: scheduleevents.AutoBuildQueuedV1,
			wantLen:   1,
			wantTrace: []string{"EnqueueAutoBuild"},
		},
		{
			name:    "success - duplicate still acknowledged",
			payload: &scheduleevents.AutoBuildRequestedPayloadV1{SeasonID: seasonID},
			setupFake: func(q *FakeQueue) {
				q.EnqueueAutoBuildFunc = func(context.Context, uuid.UUID, scheduledomain.AutoBuildRequest, string) (schedulequeue.EnqueueResult, error) {
					return schedulequeue.EnqueueResult{JobID: 9, Duplicate: true}, nil
				}
			},
			wantTopic: scheduleevents.AutoBuildQueuedV1,
			wantLen:   1,
			wantTrace: []string{"EnqueueAutoBuild"},
		},
		{
			name:      "failure - missing season",
			payload:   &scheduleevents.AutoBuildRequestedPayloadV1{},
			wantTopic: scheduleevents.AutoBuildFailedV1,
			wantLen:   1,
		},
		{
			name:    "error - nil payload",
			payload: nil,
			wantErr: true,
		},
		{
			name:    "error - enqueue fails",
			payload: &scheduleevents.AutoBuildRequestedPayloadV1{SeasonID: seasonID},
			setupFake: func(q *FakeQueue) {
				q.EnqueueAutoBuildFunc = func(context.Context, uuid.UUID, scheduledomain.AutoBuildRequest, string) (schedulequeue.EnqueueResult, error) {
					return schedulequeue.EnqueueResult{}, context.DeadlineExceeded
				}
			},
			wantErr:   true,
			wantTrace: []string{"EnqueueAutoBuild"},
		},
		{
			name:    "error - no queue",
			payload: &scheduleevents.AutoBuildRequestedPayloadV1{SeasonID: seasonID},
			noQueue: true,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &FakeQueue{}
			if tt.setupFake != nil {
				tt.setupFake(q)
			}
			var queue Queue = q
			if tt.noQueue {
				queue = nil
			}
			h := newTestHandlers(NewFakeScheduleService(), queue, nil)

			res, err := h.HandleAutoBuildRequested(context.Background(), tt.payload)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.Len(t, res, tt.wantLen)
			if tt.wantLen > 0 {
				assert.Equal(t, tt.wantTopic, res[0].Topic)
			}
			assert.Equal(t, tt.wantTrace, q.Trace())
		})
	}
}

func TestScheduleHandlers_HandleAutoBuildRequested_Payload(t *testing.T) {
	seasonID := uuid.New()
	q := &FakeQueue{EnqueueAutoBuildFunc: func(_ context.Context, id uuid.UUID, _ scheduledomain.AutoBuildRequest, by string) (schedulequeue.EnqueueResult, error) {
		assert.Equal(t, seasonID, id)
		assert.Equal(t, "director-1", by)
		return schedulequeue.EnqueueResult{JobID: 77, Duplicate: true}, nil
	}}
	h := newTestHandlers(NewFakeScheduleService(), q, nil)

	res, err := h.HandleAutoBuildRequested(context.Background(), &scheduleevents.AutoBuildRequestedPayloadV1{
		SeasonID:    seasonID,
		RequestedBy: "director-1",
	})
	require.NoError(t, err)
	require.Len(t, res, 1)

	payload, ok := res[0].Payload.(scheduleevents.AutoBuildQueuedPayloadV1)
	require.True(t, ok)
	assert.Equal(t, int64(77), payload.JobID)
	assert.True(t, payload.Duplicate)
}

func TestScheduleHandlers_HandleUndoRequested(t *testing.T) {
	seasonID := uuid.New()

	tests := []struct {
		name      string
		payload   *scheduleevents.SeasonRequestedPayloadV1
		held      bool
		setupFake func(*FakeScheduleService)
		wantErr   bool
		wantTopic string
		wantLen   int
	}{
		{
			name:    "success - games deleted",
			payload: &scheduleevents.SeasonRequestedPayloadV1{SeasonID: seasonID},
			setupFake: func(f *FakeScheduleService) {
				f.UndoFunc = func(context.Context, uuid.UUID) (int, error) { return 14, nil }
			},
			wantTopic: scheduleevents.UndoCompletedV1,
			wantLen:   1,
		},
		{
			name:    "failure - unknown season",
			payload: &scheduleevents.SeasonRequestedPayloadV1{SeasonID: seasonID},
			setupFake: func(f *FakeScheduleService) {
				f.UndoFunc = func(context.Context, uuid.UUID) (int, error) { return 0, scheduleservice.ErrSeasonNotFound }
			},
			wantTopic: scheduleevents.UndoFailedV1,
			wantLen:   1,
		},
		{
			name:    "error - build running",
			payload: &scheduleevents.SeasonRequestedPayloadV1{SeasonID: seasonID},
			held:    true,
			wantErr: true,
		},
		{
			name:    "error - database down",
			payload: &scheduleevents.SeasonRequestedPayloadV1{SeasonID: seasonID},
			setupFake: func(f *FakeScheduleService) {
				f.UndoFunc = func(context.Context, uuid.UUID) (int, error) { return 0, errors.New("connection refused") }
			},
			wantErr: true,
		},
		{
			name:      "failure - missing season",
			payload:   &scheduleevents.SeasonRequestedPayloadV1{},
			wantTopic: scheduleevents.UndoFailedV1,
			wantLen:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewFakeScheduleService()
			if tt.setupFake != nil {
				tt.setupFake(svc)
			}
			h := newTestHandlers(svc, nil, &FakeBuildLock{Held: tt.held})

			res, err := h.HandleUndoRequested(context.Background(), tt.payload)
			if (err != nil) != tt.wantErr {
				t.Errorf("got error %v, want error %v", err, tt.wantErr)
			}
			require.Len(t, res, tt.wantLen)
			if tt.wantLen > 0 {
				assert.Equal(t, tt.wantTopic, res[0].Topic)
			}
			if tt.held {
				assert.Empty(t, svc.Trace(), "undo must not run while a build holds the season")
			}
		})
	}
}

func TestScheduleHandlers_HandleQaRequested(t *testing.T) {
	seasonID := uuid.New()

	t.Run("queued when a queue is wired", func(t *testing.T) {
		q := &FakeQueue{}
		svc := NewFakeScheduleService()
		h := newTestHandlers(svc, q, nil)

		res, err := h.HandleQaRequested(context.Background(), &scheduleevents.SeasonRequestedPayloadV1{SeasonID: seasonID})
		require.NoError(t, err)
		assert.Empty(t, res)
		assert.Equal(t, []string{"EnqueueQaValidation"}, q.Trace())
		assert.Empty(t, svc.Trace())
	})

	t.Run("inline without a queue", func(t *testing.T) {
		svc := NewFakeScheduleService()
		svc.ValidateFunc = func(_ context.Context, id uuid.UUID) (*scheduledomain.AutoBuildQaResult, error) {
			return &scheduledomain.AutoBuildQaResult{SeasonID: id, TotalGames: 3}, nil
		}
		h := newTestHandlers(svc, nil, nil)

		res, err := h.HandleQaRequested(context.Background(), &scheduleevents.SeasonRequestedPayloadV1{SeasonID: seasonID})
		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.Equal(t, scheduleevents.QaCompletedV1, res[0].Topic)
		payload := res[0].Payload.(scheduleevents.QaCompletedPayloadV1)
		assert.Equal(t, 3, payload.Counts.TotalGames)
	})

	t.Run("unknown season fails without retry", func(t *testing.T) {
		svc := NewFakeScheduleService()
		svc.ValidateFunc = func(context.Context, uuid.UUID) (*scheduledomain.AutoBuildQaResult, error) {
			return nil, scheduleservice.ErrSeasonNotFound
		}
		h := newTestHandlers(svc, nil, nil)

		res, err := h.HandleQaRequested(context.Background(), &scheduleevents.SeasonRequestedPayloadV1{SeasonID: seasonID})
		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.Equal(t, scheduleevents.QaFailedV1, res[0].Topic)
		assert.False(t, res[0].Payload.(scheduleevents.FailedPayloadV1).Retryable)
	})
}
