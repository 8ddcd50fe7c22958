package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"appointment-workers/internal/common/config"
	"appointment-workers/internal/common/logger"
)

const tracerName = "appointment-workers"

// Tracing owns the process tracer provider. A nil *Tracing is valid and
// starts non-recording spans.
type Tracing struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// NewTracing installs a global tracer provider exporting to the Jaeger
// collector at cfg.Endpoint. Disabled tracing returns nil.
func NewTracing(cfg config.TracingConfig, serviceName string, log logger.Logger) *Tracing {
	if !cfg.Enabled {
		return nil
	}

	var exporter sdktrace.SpanExporter
	if cfg.Endpoint != "" {
		exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(cfg.Endpoint)))
		if err != nil {
			if log != nil {
				log.Warn("jaeger exporter init failed, spans will not be exported", map[string]interface{}{"error": err})
			}
		} else {
			exporter = exp
		}
	}

	t := newTracing(serviceName, cfg.SampleRatio, exporter)
	otel.SetTracerProvider(t.provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	if log != nil {
		log.Info("tracing initialized", map[string]interface{}{
			"endpoint":    cfg.Endpoint,
			"sampleRatio": cfg.SampleRatio,
		})
	}
	return t
}

func newTracing(serviceName string, ratio float64, exporter sdktrace.SpanExporter) *Tracing {
	if ratio <= 0 || ratio > 1 {
		ratio = 1
	}
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
	}
	if exporter != nil {
		opts = append(opts, sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)))
	}
	provider := sdktrace.NewTracerProvider(opts...)
	return &Tracing{provider: provider, tracer: provider.Tracer(tracerName)}
}

func (t *Tracing) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if t == nil || t.tracer == nil {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records err on the span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (t *Tracing) Shutdown(ctx context.Context) error {
	if t == nil || t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}
