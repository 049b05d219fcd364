// Package observability bundles the logger, tracer and metrics used by the
// application modules.
package observability

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Black-And-White-Club/league-scheduler/pkg/observability/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const serviceName = "league-scheduler"

// Config selects the log format and level.
type Config struct {
	Environment string
	LogLevel    string
}

// Observability is handed to every module constructor.
type Observability struct {
	Logger   *slog.Logger
	Tracer   trace.Tracer
	Metrics  metrics.OperationMetrics
	Registry *prometheus.Registry
}

// Init builds the logger, a registry with process collectors and the
// operation metrics. Development environments get a text handler.
func Init(cfg Config) (Observability, error) {
	logger := NewLogger(os.Stdout, cfg)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m, err := metrics.NewPrometheus(reg, "scheduler")
	if err != nil {
		return Observability{}, fmt.Errorf("failed to register metrics: %w", err)
	}

	return Observability{
		Logger:   logger,
		Tracer:   otel.Tracer(serviceName),
		Metrics:  m,
		Registry: reg,
	}, nil
}

// NewNoop returns an Observability that discards everything.
func NewNoop() Observability {
	return Observability{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tracer:   noop.NewTracerProvider().Tracer("noop"),
		Metrics:  metrics.NewNoop(),
		Registry: prometheus.NewRegistry(),
	}
}

// NewLogger creates the process logger.
func NewLogger(w io.Writer, cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}

	var handler slog.Handler
	switch strings.ToLower(cfg.Environment) {
	case "", "development", "dev", "local":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler).With(slog.String("service", serviceName))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
