package handlerwrapper

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/Black-And-White-Club/league-scheduler/pkg/observability/attr"
	"github.com/Black-And-White-Club/league-scheduler/pkg/observability/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

type ping struct {
	Name string `json:"name"`
}

type pong struct {
	Greeting string `json:"greeting"`
}

func wrap(handler func(context.Context, *ping) ([]Result, error)) message.HandlerFunc {
	return WrapTransformingTyped("test.ping", slog.New(slog.DiscardHandler), noop.NewTracerProvider().Tracer("test"), metrics.NewNoop(), handler)
}

func TestWrapTransformingTyped(t *testing.T) {
	var seenCorrelation string
	fn := wrap(func(ctx context.Context, p *ping) ([]Result, error) {
		seenCorrelation = attr.CorrelationIDFrom(ctx)
		return []Result{{
			Topic:    "pong.v1",
			Payload:  pong{Greeting: "hello " + p.Name},
			Metadata: map[string]string{"season_id": "s-1"},
		}}, nil
	})

	in := message.NewMessage("in-1", []byte(`{"name":"gold"}`))
	middleware.SetCorrelationID("corr-1", in)

	out, err := fn(in)
	require.NoError(t, err)
	require.Len(t, out, 1)

	assert.Equal(t, "corr-1", seenCorrelation)
	assert.Equal(t, "pong.v1", out[0].Metadata.Get(MetadataTopic))
	assert.Equal(t, "corr-1", middleware.MessageCorrelationID(out[0]))
	assert.Equal(t, "s-1", out[0].Metadata.Get("season_id"))
	assert.JSONEq(t, `{"greeting":"hello gold"}`, string(out[0].Payload))
}

func TestWrapTransformingTyped_Errors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		handler func(context.Context, *ping) ([]Result, error)
		wantErr string
	}{
		{
			name:    "bad json",
			payload: `{"name":`,
			handler: func(context.Context, *ping) ([]Result, error) {
				t.Fatal("handler must not run")
				return nil, nil
			},
			wantErr: "failed to decode payload",
		},
		{
			name:    "handler error",
			payload: `{"name":"x"}`,
			handler: func(context.Context, *ping) ([]Result, error) {
				return nil, errors.New("db down")
			},
			wantErr: "db down",
		},
		{
			name:    "unencodable result",
			payload: `{"name":"x"}`,
			handler: func(context.Context, *ping) ([]Result, error) {
				return []Result{{Topic: "pong.v1", Payload: make(chan int)}}, nil
			},
			wantErr: "failed to encode pong.v1 payload",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := wrap(tt.handler)(message.NewMessage("in", []byte(tt.payload)))
			require.Error(t, err)
			assert.Nil(t, out)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

type recordingPublisher struct {
	topics []string
}

func (r *recordingPublisher) Publish(topic string, msgs ...*message.Message) error {
	for range msgs {
		r.topics = append(r.topics, topic)
	}
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func TestTopicPublisher(t *testing.T) {
	rec := &recordingPublisher{}
	pub := NewTopicPublisher(rec)

	a, err := NewMessage(context.Background(), "a.v1", pong{})
	require.NoError(t, err)
	b := message.NewMessage("b", nil)

	require.NoError(t, pub.Publish("fallback.v1", a, b))
	assert.Equal(t, []string{"a.v1", "fallback.v1"}, rec.topics)

	err = pub.Publish("", message.NewMessage("c", nil))
	assert.Error(t, err)
}
