package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// GenerationMetrics records the outcome of recurring job generation runs.
type GenerationMetrics struct {
	tracer    trace.Tracer
	instances metric.Int64Counter
	runs      metric.Int64Counter
	duration  metric.Float64Histogram
}

// NewGenerationMetrics registers the generation instruments on the global
// meter provider. Instruments that fail to register fall back to no-ops.
func NewGenerationMetrics() *GenerationMetrics {
	meter := otel.Meter(tracerName)

	instances, _ := meter.Int64Counter(
		"recurrence_instances_total",
		metric.WithDescription("Recurring job instances by outcome"),
		metric.WithUnit("{job}"),
	)
	runs, _ := meter.Int64Counter(
		"recurrence_runs_total",
		metric.WithDescription("Recurring job generation runs"),
		metric.WithUnit("{run}"),
	)
	duration, _ := meter.Float64Histogram(
		"recurrence_run_duration_ms",
		metric.WithDescription("Recurring job generation duration in milliseconds"),
		metric.WithUnit("ms"),
	)

	return &GenerationMetrics{
		tracer:    otel.Tracer(tracerName),
		instances: instances,
		runs:      runs,
		duration:  duration,
	}
}

// Start opens a span for one generation run triggered by source.
func (m *GenerationMetrics) Start(ctx context.Context, source string) (context.Context, trace.Span) {
	if m == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return m.tracer.Start(ctx, "recurrence.generate",
		trace.WithAttributes(attribute.String("recurrence.source", source)),
	)
}

// Record adds one finished run. A nil receiver records nothing.
func (m *GenerationMetrics) Record(ctx context.Context, source string, generated, skipped, failed int, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	src := attribute.String("recurrence.source", source)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	if m.runs != nil {
		m.runs.Add(ctx, 1, metric.WithAttributes(src, attribute.String("outcome", outcome)))
	}
	if m.duration != nil {
		m.duration.Record(ctx, float64(elapsed.Microseconds())/1000, metric.WithAttributes(src))
	}
	if m.instances == nil {
		return
	}
	for result, n := range map[string]int{"generated": generated, "skipped": skipped, "failed": failed} {
		if n > 0 {
			m.instances.Add(ctx, int64(n), metric.WithAttributes(src, attribute.String("result", result)))
		}
	}
}
