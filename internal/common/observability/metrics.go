package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"

	"appointment-workers/internal/common/logger"
)

// Observability records pipeline runs through the OpenTelemetry metric SDK,
// exported on the default Prometheus registry.
type Observability struct {
	meterProvider   *metric.MeterProvider
	meter           otelmetric.Meter
	pipelineRuns    otelmetric.Int64Counter
	pipelineLatency otelmetric.Float64Histogram
}

func New(serviceName string, log logger.Logger) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		if log != nil {
			log.Error("failed to create prometheus exporter", map[string]interface{}{"error": err})
		}
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	runs, _ := meter.Int64Counter(
		"pipeline.runs",
		otelmetric.WithDescription("Number of sheet pipeline runs"),
	)
	latency, _ := meter.Float64Histogram(
		"pipeline.duration",
		otelmetric.WithDescription("Sheet pipeline duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:   provider,
		meter:           meter,
		pipelineRuns:    runs,
		pipelineLatency: latency,
	}
}

// Nop returns an Observability that records nothing.
func Nop() *Observability {
	return &Observability{}
}

func (o *Observability) RecordPipelineRun(ctx context.Context, operation, status string, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
	if o.pipelineRuns != nil {
		o.pipelineRuns.Add(ctx, 1, attrs)
	}
	if o.pipelineLatency != nil {
		o.pipelineLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.meterProvider == nil {
		return nil
	}
	return o.meterProvider.Shutdown(ctx)
}
