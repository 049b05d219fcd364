// Package eventbus connects the service to NATS JetStream through watermill.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// EventBus publishes and subscribes to subjects and owns the streams behind them.
type EventBus interface {
	Publish(topic string, messages ...*message.Message) error
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
	EnsureStream(ctx context.Context, name string, subjects ...string) error
	Close() error
}

// Config configures the NATS event bus.
type Config struct {
	URL string
	// Durable names the JetStream consumers; instances sharing it share work.
	Durable string
	// AckWait is how long JetStream waits before redelivering.
	AckWait time.Duration
	Breaker BreakerSettings
}

type natsEventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	js         jetstream.JetStream
	conn       *nc.Conn
	logger     *slog.Logger

	mu      sync.Mutex
	streams map[string]bool
}

// NewNATS connects to NATS and builds a JetStream publisher and subscriber.
// Streams are not provisioned per topic; call EnsureStream at startup.
func NewNATS(ctx context.Context, cfg Config, logger *slog.Logger) (EventBus, error) {
	if cfg.Durable == "" {
		cfg.Durable = "league-scheduler"
	}
	if cfg.AckWait <= 0 {
		cfg.AckWait = 30 * time.Second
	}

	natsOptions := []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.Timeout(30 * time.Second),
		nc.ReconnectWait(1 * time.Second),
	}

	conn, err := nc.Connect(cfg.URL, natsOptions...)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to connect to NATS", "error", err)
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize JetStream: %w", err)
	}

	wmLogger := watermill.NewSlogLogger(logger)
	marshaler := &wmnats.NATSMarshaler{}

	publisher, err := wmnats.NewPublisher(
		wmnats.PublisherConfig{
			URL:         cfg.URL,
			NatsOptions: natsOptions,
			Marshaler:   marshaler,
			JetStream: wmnats.JetStreamConfig{
				Disabled:      false,
				AutoProvision: false,
				TrackMsgId:    true,
			},
			SubjectCalculator: wmnats.DefaultSubjectCalculator,
		},
		wmLogger,
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create watermill publisher: %w", err)
	}

	subscriber, err := wmnats.NewSubscriber(
		wmnats.SubscriberConfig{
			URL:              cfg.URL,
			QueueGroupPrefix: cfg.Durable,
			CloseTimeout:     30 * time.Second,
			AckWaitTimeout:   cfg.AckWait,
			NatsOptions:      natsOptions,
			Unmarshaler:      marshaler,
			JetStream: wmnats.JetStreamConfig{
				Disabled:      false,
				AutoProvision: false,
				DurablePrefix: cfg.Durable,
				SubscribeOptions: []nc.SubOpt{
					nc.DeliverAll(),
					nc.AckExplicit(),
				},
			},
			SubjectCalculator: wmnats.DefaultSubjectCalculator,
		},
		wmLogger,
	)
	if err != nil {
		publisher.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to create watermill subscriber: %w", err)
	}

	return &natsEventBus{
		publisher:  NewBreakerPublisher(publisher, cfg.Breaker, logger),
		subscriber: subscriber,
		js:         js,
		conn:       conn,
		logger:     logger,
		streams:    make(map[string]bool),
	}, nil
}

func (b *natsEventBus) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		if msg.UUID == "" {
			msg.UUID = watermill.NewUUID()
		}
	}
	return b.publisher.Publish(topic, messages...)
}

func (b *natsEventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	b.logger.InfoContext(ctx, "Subscribing to subject", "subject", topic)
	return b.subscriber.Subscribe(ctx, topic)
}

// EnsureStream creates the stream or adds missing subjects to it.
func (b *natsEventBus) EnsureStream(ctx context.Context, name string, subjects ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.streams[name] {
		return nil
	}

	stream, err := b.js.Stream(ctx, name)
	switch {
	case errors.Is(err, jetstream.ErrStreamNotFound):
		if _, err := b.js.CreateStream(ctx, jetstream.StreamConfig{
			Name:     name,
			Subjects: subjects,
			Storage:  jetstream.FileStorage,
		}); err != nil {
			return fmt.Errorf("failed to create stream %s: %w", name, err)
		}
		b.logger.InfoContext(ctx, "Stream created", "stream", name, "subjects", subjects)
	case err != nil:
		return fmt.Errorf("failed to look up stream %s: %w", name, err)
	default:
		info, err := stream.Info(ctx)
		if err != nil {
			return fmt.Errorf("failed to get stream info: %w", err)
		}
		missing := false
		for _, s := range subjects {
			if !slices.Contains(info.Config.Subjects, s) {
				info.Config.Subjects = append(info.Config.Subjects, s)
				missing = true
			}
		}
		if missing {
			if _, err := b.js.UpdateStream(ctx, info.Config); err != nil {
				return fmt.Errorf("failed to update stream %s: %w", name, err)
			}
			b.logger.InfoContext(ctx, "Stream updated", "stream", name, "subjects", info.Config.Subjects)
		}
	}

	b.streams[name] = true
	return nil
}

// Close closes the watermill publisher and subscriber and the NATS connection.
func (b *natsEventBus) Close() error {
	var errs []error
	if err := b.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close publisher: %w", err))
	}
	if err := b.subscriber.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close subscriber: %w", err))
	}
	b.conn.Close()
	return errors.Join(errs...)
}
