package eventbus

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/sony/gobreaker"
)

// BreakerSettings tunes the publish circuit breaker.
type BreakerSettings struct {
	// ConsecutiveFailures trips the breaker. Zero means 5.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open. Zero means 30s.
	OpenTimeout time.Duration
}

// BreakerPublisher fails fast while the broker keeps rejecting publishes.
type BreakerPublisher struct {
	next message.Publisher
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerPublisher wraps next with a gobreaker circuit breaker.
func NewBreakerPublisher(next message.Publisher, settings BreakerSettings, logger *slog.Logger) *BreakerPublisher {
	threshold := settings.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}
	timeout := settings.OpenTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "eventbus-publish",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger != nil {
				logger.Warn("Publish circuit breaker state changed",
					"breaker", name,
					"from_state", from.String(),
					"to_state", to.String(),
				)
			}
		},
	})
	return &BreakerPublisher{next: next, cb: cb}
}

func (p *BreakerPublisher) Publish(topic string, messages ...*message.Message) error {
	_, err := p.cb.Execute(func() (interface{}, error) {
		return nil, p.next.Publish(topic, messages...)
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func (p *BreakerPublisher) Close() error {
	return p.next.Close()
}

// State reports the breaker state.
func (p *BreakerPublisher) State() gobreaker.State {
	return p.cb.State()
}
