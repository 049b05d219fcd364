package eventbus

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemory_RoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewInMemory(slog.New(slog.DiscardHandler))
	defer bus.Close()

	require.NoError(t, bus.EnsureStream(ctx, "schedule", "schedule.>"))

	msgs, err := bus.Subscribe(ctx, "schedule.qa.requested.v1")
	require.NoError(t, err)

	sent := message.NewMessage("msg-1", []byte(`{"season_id":"x"}`))
	require.NoError(t, bus.Publish("schedule.qa.requested.v1", sent))

	select {
	case got := <-msgs:
		assert.Equal(t, "msg-1", got.UUID)
		assert.JSONEq(t, `{"season_id":"x"}`, string(got.Payload))
		got.Ack()
	case <-time.After(2 * time.Second):
		t.Fatal("message not delivered")
	}
}
