package eventbus

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type memoryEventBus struct {
	*gochannel.GoChannel
}

// NewInMemory returns a process-local bus for tests and single-node runs
// without NATS. Messages are not persisted.
func NewInMemory(logger *slog.Logger) EventBus {
	return &memoryEventBus{
		GoChannel: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 64,
		}, watermill.NewSlogLogger(logger)),
	}
}

func (m *memoryEventBus) EnsureStream(context.Context, string, ...string) error {
	return nil
}
