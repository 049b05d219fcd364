package schedulerouter

import (
	"context"
	"log/slog"

	scheduleevents "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/events"
	schedulehandlers "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/infrastructure/handlers"
	"github.com/Black-And-White-Club/league-scheduler/pkg/handlerwrapper"
	"github.com/Black-And-White-Club/league-scheduler/pkg/observability/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel/trace"
)

// ScheduleRouter wires the schedule event handlers into a watermill router.
type ScheduleRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	tracer     trace.Tracer
	metrics    metrics.OperationMetrics
}

// NewScheduleRouter creates a new ScheduleRouter. Outgoing messages are
// published to the topic in their metadata.
func NewScheduleRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	tracer trace.Tracer,
	m metrics.OperationMetrics,
) *ScheduleRouter {
	return &ScheduleRouter{
		logger:     logger,
		Router:     router,
		subscriber: subscriber,
		publisher:  handlerwrapper.NewTopicPublisher(publisher),
		tracer:     tracer,
		metrics:    m,
	}
}

// Configure adds the middleware and registers the handlers.
func (r *ScheduleRouter) Configure(_ context.Context, handlers schedulehandlers.Handlers) error {
	r.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
	)
	r.RegisterHandlers(handlers)
	return nil
}

type handlerDeps struct {
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	logger     *slog.Logger
	tracer     trace.Tracer
	metrics    metrics.OperationMetrics
}

func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "schedule." + topic

	deps.router.AddHandler(
		handlerName,
		topic,
		deps.subscriber,
		"", // the publisher routes on message metadata
		deps.publisher,
		handlerwrapper.WrapTransformingTyped(
			handlerName,
			deps.logger,
			deps.tracer,
			deps.metrics,
			handler,
		),
	)
}

// RegisterHandlers subscribes each handler to its request subject.
func (r *ScheduleRouter) RegisterHandlers(handlers schedulehandlers.Handlers) {
	deps := handlerDeps{
		router:     r.Router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
		metrics:    r.metrics,
	}

	registerHandler(deps, scheduleevents.AutoBuildRequestedV1, handlers.HandleAutoBuildRequested)
	registerHandler(deps, scheduleevents.UndoRequestedV1, handlers.HandleUndoRequested)
	registerHandler(deps, scheduleevents.QaRequestedV1, handlers.HandleQaRequested)
}

// Close stops the router.
func (r *ScheduleRouter) Close() error {
	return r.Router.Close()
}
