package schedulerouter

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	scheduleevents "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/events"
	"github.com/Black-And-White-Club/league-scheduler/pkg/eventbus"
	"github.com/Black-And-White-Club/league-scheduler/pkg/handlerwrapper"
	"github.com/Black-And-White-Club/league-scheduler/pkg/observability/attr"
	"github.com/Black-And-White-Club/league-scheduler/pkg/observability/metrics"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

// stubHandlers answers every request with a fixed result.
type stubHandlers struct{}

func (stubHandlers) HandleAutoBuildRequested(_ context.Context, p *scheduleevents.AutoBuildRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	return []handlerwrapper.Result{{
		Topic:   scheduleevents.AutoBuildQueuedV1,
		Payload: scheduleevents.AutoBuildQueuedPayloadV1{SeasonID: p.SeasonID, JobID: 3},
	}}, nil
}

func (stubHandlers) HandleUndoRequested(_ context.Context, p *scheduleevents.SeasonRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	return []handlerwrapper.Result{{
		Topic:   scheduleevents.UndoCompletedV1,
		Payload: scheduleevents.UndoCompletedPayloadV1{SeasonID: p.SeasonID, Deleted: 4},
	}}, nil
}

func (stubHandlers) HandleQaRequested(_ context.Context, p *scheduleevents.SeasonRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	return []handlerwrapper.Result{{
		Topic:   scheduleevents.QaFailedV1,
		Payload: scheduleevents.FailedPayloadV1{SeasonID: p.SeasonID, Reason: "no games"},
	}}, nil
}

func startRouter(t *testing.T, bus eventbus.EventBus) {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	wmRouter, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
	require.NoError(t, err)

	r := NewScheduleRouter(logger, wmRouter, bus, bus, noop.NewTracerProvider().Tracer("test"), metrics.NewNoop())
	require.NoError(t, r.Configure(context.Background(), stubHandlers{}))

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = wmRouter.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		_ = r.Close()
	})

	select {
	case <-wmRouter.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("router did not start")
	}
}

func TestScheduleRouter_RoutesRequestsToReplySubjects(t *testing.T) {
	tests := []struct {
		name      string
		topic     string
		payload   any
		wantTopic string
	}{
		{
			name:      "auto-build requested",
			topic:     scheduleevents.AutoBuildRequestedV1,
			payload:   scheduleevents.AutoBuildRequestedPayloadV1{SeasonID: uuid.New()},
			wantTopic: scheduleevents.AutoBuildQueuedV1,
		},
		{
			name:      "undo requested",
			topic:     scheduleevents.UndoRequestedV1,
			payload:   scheduleevents.SeasonRequestedPayloadV1{SeasonID: uuid.New()},
			wantTopic: scheduleevents.UndoCompletedV1,
		},
		{
			name:      "qa requested",
			topic:     scheduleevents.QaRequestedV1,
			payload:   scheduleevents.SeasonRequestedPayloadV1{SeasonID: uuid.New()},
			wantTopic: scheduleevents.QaFailedV1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := eventbus.NewInMemory(slog.New(slog.DiscardHandler))
			t.Cleanup(func() { _ = bus.Close() })

			replies, err := bus.Subscribe(context.Background(), tt.wantTopic)
			require.NoError(t, err)
			startRouter(t, bus)

			ctx := attr.WithCorrelationID(context.Background(), "corr-"+tt.name)
			msg, err := handlerwrapper.NewMessage(ctx, tt.topic, tt.payload)
			require.NoError(t, err)
			require.NoError(t, bus.Publish(tt.topic, msg))

			select {
			case got := <-replies:
				got.Ack()
				assert.Equal(t, "corr-"+tt.name, middleware.MessageCorrelationID(got))
				assert.Equal(t, tt.wantTopic, got.Metadata.Get(handlerwrapper.MetadataTopic))
				var body map[string]any
				require.NoError(t, json.Unmarshal(got.Payload, &body))
				assert.Contains(t, body, "season_id")
			case <-time.After(5 * time.Second):
				t.Fatalf("no reply on %s", tt.wantTopic)
			}
		})
	}
}
