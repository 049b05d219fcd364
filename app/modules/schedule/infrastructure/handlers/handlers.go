package schedulehandlers

import (
	"log/slog"

	scheduleservice "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/application"
	"github.com/Black-And-White-Club/league-scheduler/pkg/dateparse"
	"github.com/Black-And-White-Club/league-scheduler/pkg/observability/metrics"
	"go.opentelemetry.io/otel/trace"
)

// ScheduleHandlers implements Handlers and HTTPHandlers.
type ScheduleHandlers struct {
	service scheduleservice.Service
	queue   Queue
	lock    scheduleservice.BuildLock
	dates   *dateparse.Parser
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics metrics.OperationMetrics
}

var (
	_ Handlers     = (*ScheduleHandlers)(nil)
	_ HTTPHandlers = (*ScheduleHandlers)(nil)
)

// NewScheduleHandlers creates the handlers. queue may be nil, in which case
// asynchronous requests are refused.
func NewScheduleHandlers(
	service scheduleservice.Service,
	queue Queue,
	lock scheduleservice.BuildLock,
	dates *dateparse.Parser,
	logger *slog.Logger,
	tracer trace.Tracer,
	metrics metrics.OperationMetrics,
) *ScheduleHandlers {
	if dates == nil {
		dates = dateparse.New()
	}
	return &ScheduleHandlers{
		service: service,
		queue:   queue,
		lock:    lock,
		dates:   dates,
		logger:  logger,
		tracer:  tracer,
		metrics: metrics,
	}
}
