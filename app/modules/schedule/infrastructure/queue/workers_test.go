package schedulequeue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"reflect"
	"testing"

	scheduleservice "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/application"
	scheduledomain "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/domain"
	scheduleevents "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/events"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func autoBuildJob(seasonID uuid.UUID, attempt, maxAttempts int) *river.Job[AutoBuildJob] {
	return &river.Job[AutoBuildJob]{
		JobRow: &rivertype.JobRow{ID: 42, Attempt: attempt, MaxAttempts: maxAttempts},
		Args: AutoBuildJob{
			SeasonID:      seasonID,
			Request:       scheduledomain.AutoBuildRequest{SourceSeasonID: uuid.New()},
			CorrelationID: "corr-1",
		},
	}
}

// riverErrorKind names the control error River's helpers return.
func riverErrorKind(err error) string {
	if err == nil {
		return ""
	}
	t := reflect.TypeOf(err)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

func TestAutoBuildWorker_Work(t *testing.T) {
	seasonID := uuid.New()
	boom := errors.New("connection reset")

	tests := []struct {
		name        string
		attempt     int
		held        bool
		setup       func(f *FakeScheduleService)
		wantErr     bool
		wantCancel  bool
		wantSnooze  bool
		wantTopics  []string
		wantTrace   []string
		wantUnlocks int
	}{
		{
			name: "build and validate",
			setup: func(f *FakeScheduleService) {
				f.BuildFunc = func(_ context.Context, id uuid.UUID, _ scheduledomain.AutoBuildRequest) (*scheduledomain.AutoBuildResult, error) {
					return &scheduledomain.AutoBuildResult{SeasonID: id, TotalGamesPlaced: 12}, nil
				}
			},
			attempt:     1,
			wantTopics:  []string{scheduleevents.AutoBuildCompletedV1},
			wantTrace:   []string{"Build", "Validate"},
			wantUnlocks: 1,
		},
		{
			name: "validation failure still completes",
			setup: func(f *FakeScheduleService) {
				f.ValidateFunc = func(context.Context, uuid.UUID) (*scheduledomain.AutoBuildQaResult, error) {
					return nil, boom
				}
			},
			attempt:     1,
			wantTopics:  []string{scheduleevents.AutoBuildCompletedV1},
			wantTrace:   []string{"Build", "Validate"},
			wantUnlocks: 1,
		},
		{
			name: "configuration error cancels",
			setup: func(f *FakeScheduleService) {
				f.BuildFunc = func(context.Context, uuid.UUID, scheduledomain.AutoBuildRequest) (*scheduledomain.AutoBuildResult, error) {
					return nil, scheduleservice.ErrNoStartDate
				}
			},
			attempt:     1,
			wantErr:     true,
			wantCancel:  true,
			wantTopics:  []string{scheduleevents.AutoBuildFailedV1},
			wantTrace:   []string{"Build"},
			wantUnlocks: 1,
		},
		{
			name:       "locked season snoozes",
			held:       true,
			attempt:    1,
			wantErr:    true,
			wantSnooze: true,
		},
		{
			name: "infrastructure error retries silently",
			setup: func(f *FakeScheduleService) {
				f.BuildFunc = func(context.Context, uuid.UUID, scheduledomain.AutoBuildRequest) (*scheduledomain.AutoBuildResult, error) {
					return nil, boom
				}
			},
			attempt:     1,
			wantErr:     true,
			wantTrace:   []string{"Build"},
			wantUnlocks: 1,
		},
		{
			name: "infrastructure error on last attempt reports failure",
			setup: func(f *FakeScheduleService) {
				f.BuildFunc = func(context.Context, uuid.UUID, scheduledomain.AutoBuildRequest) (*scheduledomain.AutoBuildResult, error) {
					return nil, boom
				}
			},
			attempt:     5,
			wantErr:     true,
			wantTopics:  []string{scheduleevents.AutoBuildFailedV1},
			wantTrace:   []string{"Build"},
			wantUnlocks: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &FakeScheduleService{}
			if tt.setup != nil {
				tt.setup(svc)
			}
			lock := &FakeBuildLock{Held: tt.held}
			pub := NewFakePublisher()
			w := NewAutoBuildWorker(svc, lock, pub, slog.New(slog.DiscardHandler))

			err := w.Work(context.Background(), autoBuildJob(seasonID, tt.attempt, 5))
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, tt.wantCancel, riverErrorKind(err) == "JobCancelError")
			assert.Equal(t, tt.wantSnooze, riverErrorKind(err) == "JobSnoozeError")

			assert.ElementsMatch(t, tt.wantTopics, pub.Topics())
			assert.Equal(t, tt.wantTrace, svc.Trace())
			assert.Equal(t, tt.wantUnlocks, lock.unlocked)
		})
	}
}

func TestAutoBuildWorker_CompletedPayload(t *testing.T) {
	seasonID := uuid.New()
	svc := &FakeScheduleService{
		BuildFunc: func(_ context.Context, id uuid.UUID, _ scheduledomain.AutoBuildRequest) (*scheduledomain.AutoBuildResult, error) {
			return &scheduledomain.AutoBuildResult{SeasonID: id, TotalGamesPlaced: 6, GamesFailedToPlace: 1}, nil
		},
		ValidateFunc: func(_ context.Context, id uuid.UUID) (*scheduledomain.AutoBuildQaResult, error) {
			return &scheduledomain.AutoBuildQaResult{SeasonID: id, TotalGames: 6}, nil
		},
	}
	pub := NewFakePublisher()
	w := NewAutoBuildWorker(svc, nil, pub, slog.New(slog.DiscardHandler))

	require.NoError(t, w.Work(context.Background(), autoBuildJob(seasonID, 1, 5)))

	msgs := pub.Messages[scheduleevents.AutoBuildCompletedV1]
	require.Len(t, msgs, 1)
	assert.Equal(t, "corr-1", middleware.MessageCorrelationID(msgs[0]))

	var payload scheduleevents.AutoBuildCompletedPayloadV1
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &payload))
	assert.Equal(t, seasonID, payload.SeasonID)
	assert.Equal(t, 6, payload.Result.TotalGamesPlaced)
	assert.Equal(t, 1, payload.Result.GamesFailedToPlace)
	assert.Equal(t, 6, payload.Qa.TotalGames)
}

func TestQaValidationWorker_Work(t *testing.T) {
	seasonID := uuid.New()
	job := &river.Job[QaValidationJob]{
		JobRow: &rivertype.JobRow{ID: 7, Attempt: 1, MaxAttempts: 3},
		Args:   QaValidationJob{SeasonID: seasonID},
	}

	t.Run("publishes counts", func(t *testing.T) {
		pub := NewFakePublisher()
		w := NewQaValidationWorker(&FakeScheduleService{}, pub, slog.New(slog.DiscardHandler))
		require.NoError(t, w.Work(context.Background(), job))
		assert.Equal(t, []string{scheduleevents.QaCompletedV1}, pub.Topics())
	})

	t.Run("unknown season cancels", func(t *testing.T) {
		pub := NewFakePublisher()
		svc := &FakeScheduleService{ValidateFunc: func(context.Context, uuid.UUID) (*scheduledomain.AutoBuildQaResult, error) {
			return nil, scheduleservice.ErrSeasonNotFound
		}}
		w := NewQaValidationWorker(svc, pub, slog.New(slog.DiscardHandler))
		err := w.Work(context.Background(), job)
		assert.Equal(t, "JobCancelError", riverErrorKind(err))
		assert.Equal(t, []string{scheduleevents.QaFailedV1}, pub.Topics())
	})

	t.Run("publish failure is returned", func(t *testing.T) {
		pub := NewFakePublisher()
		pub.PublishErr = errors.New("nats down")
		w := NewQaValidationWorker(&FakeScheduleService{}, pub, slog.New(slog.DiscardHandler))
		assert.Error(t, w.Work(context.Background(), job))
	})
}

func TestJobArgs(t *testing.T) {
	assert.Equal(t, "schedule_auto_build", AutoBuildJob{}.Kind())
	assert.Equal(t, "schedule_qa_validation", QaValidationJob{}.Kind())

	field, ok := reflect.TypeOf(AutoBuildJob{}).FieldByName("SeasonID")
	require.True(t, ok)
	assert.Equal(t, "unique", field.Tag.Get("river"))
	assert.NotContains(t, activeStates, rivertype.JobStateCompleted)
}
