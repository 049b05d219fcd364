// Package handlerwrapper adapts typed event handlers to watermill handler
// functions.
package handlerwrapper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/league-scheduler/pkg/observability/attr"
	"github.com/Black-And-White-Club/league-scheduler/pkg/observability/metrics"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MetadataTopic is the metadata key carrying an outgoing message's topic.
const MetadataTopic = "topic"

const handlerService = "EventHandlers"

// Result is one message a handler wants published.
type Result struct {
	Topic    string
	Payload  any
	Metadata map[string]string
}

// WrapTransformingTyped decodes the JSON payload into T, runs handler and
// encodes its results as outgoing messages. Each outgoing message carries the
// incoming correlation id and its destination in MetadataTopic.
func WrapTransformingTyped[T any](
	handlerName string,
	logger *slog.Logger,
	tracer trace.Tracer,
	m metrics.OperationMetrics,
	handler func(context.Context, *T) ([]Result, error),
) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		correlationID := middleware.MessageCorrelationID(msg)
		ctx := attr.WithCorrelationID(msg.Context(), correlationID)

		var span trace.Span
		if tracer != nil {
			ctx, span = tracer.Start(ctx, handlerName, trace.WithAttributes(
				attribute.String("message.uuid", msg.UUID),
				attribute.String("correlation_id", correlationID),
			))
			defer span.End()
		}
		if m != nil {
			m.RecordOperationAttempt(ctx, handlerName, handlerService)
			start := time.Now()
			defer func() { m.RecordOperationDuration(ctx, handlerName, handlerService, time.Since(start)) }()
		}

		fail := func(err error) ([]*message.Message, error) {
			logger.ErrorContext(ctx, "Handler failed",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.String("message_id", msg.UUID),
				attr.Error(err),
			)
			if span != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			if m != nil {
				m.RecordOperationFailure(ctx, handlerName, handlerService)
			}
			return nil, err
		}

		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			return fail(fmt.Errorf("%s: failed to decode payload: %w", handlerName, err))
		}

		results, err := handler(ctx, payload)
		if err != nil {
			return fail(err)
		}

		out := make([]*message.Message, 0, len(results))
		for _, r := range results {
			outMsg, err := NewMessage(ctx, r.Topic, r.Payload)
			if err != nil {
				return fail(err)
			}
			for k, v := range r.Metadata {
				outMsg.Metadata.Set(k, v)
			}
			out = append(out, outMsg)
		}

		logger.InfoContext(ctx, "Handler completed",
			attr.ExtractCorrelationID(ctx),
			attr.String("handler", handlerName),
			attr.Int("published", len(out)),
		)
		if m != nil {
			m.RecordOperationSuccess(ctx, handlerName, handlerService)
		}
		return out, nil
	}
}

// NewMessage JSON-encodes payload into a message addressed to topic.
func NewMessage(ctx context.Context, topic string, payload any) (*message.Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", topic, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.Metadata.Set(MetadataTopic, topic)
	if id := attr.CorrelationIDFrom(ctx); id != "" {
		middleware.SetCorrelationID(id, msg)
	}
	return msg, nil
}

// TopicPublisher publishes each message to the topic in its metadata. It
// lets one watermill handler emit to success and failure subjects.
type TopicPublisher struct {
	next message.Publisher
}

func NewTopicPublisher(next message.Publisher) *TopicPublisher {
	return &TopicPublisher{next: next}
}

func (p *TopicPublisher) Publish(fallback string, messages ...*message.Message) error {
	for _, msg := range messages {
		topic := msg.Metadata.Get(MetadataTopic)
		if topic == "" {
			topic = fallback
		}
		if topic == "" {
			return fmt.Errorf("message %s has no topic", msg.UUID)
		}
		if err := p.next.Publish(topic, msg); err != nil {
			return err
		}
	}
	return nil
}

func (p *TopicPublisher) Close() error {
	return nil
}
