package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestGenerationMetricsRecord(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	t.Cleanup(func() { otel.SetMeterProvider(prev) })

	m := NewGenerationMetrics()
	ctx, span := m.Start(context.Background(), "http")
	m.Record(ctx, "http", 3, 1, 0, 12*time.Millisecond, nil)
	m.Record(ctx, "nats", 0, 0, 2, time.Millisecond, errors.New("db down"))
	span.End()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if data, ok := md.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range data.DataPoints {
					sums[md.Name] += dp.Value
				}
			}
		}
	}
	if sums["recurrence_instances_total"] != 6 {
		t.Errorf("instances = %d, want 6", sums["recurrence_instances_total"])
	}
	if sums["recurrence_runs_total"] != 2 {
		t.Errorf("runs = %d, want 2", sums["recurrence_runs_total"])
	}
}

func TestNilGenerationMetrics(t *testing.T) {
	var m *GenerationMetrics
	ctx, span := m.Start(context.Background(), "cli")
	m.Record(ctx, "cli", 1, 0, 0, time.Second, nil)
	span.End()
}
