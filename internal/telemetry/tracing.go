package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// TracingConfig selects the OTLP/HTTP collector.
type TracingConfig struct {
	// Endpoint is the collector URL, e.g. http://localhost:4318. Empty
	// disables export.
	Endpoint    string
	Insecure    bool
	ServiceName string
}

// Tracer bundles a provider with its shutdown hook.
type Tracer struct {
	Provider trace.TracerProvider
	shutdown func(context.Context) error
}

// Shutdown flushes pending spans. Safe on a disabled Tracer.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.shutdown == nil {
		return nil
	}
	return t.shutdown(ctx)
}

// NewTracer builds a batching SDK provider exporting over OTLP/HTTP. With no
// endpoint it returns a no-op provider.
func NewTracer(ctx context.Context, cfg TracingConfig) (*Tracer, error) {
	if cfg.Endpoint == "" {
		return &Tracer{Provider: noop.NewTracerProvider()}, nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("telemetry: creating OTLP exporter: %w", err)
	}

	return newSDKTracer(sdktrace.WithBatcher(exporter), cfg.ServiceName), nil
}

func newSDKTracer(processor sdktrace.TracerProviderOption, serviceName string) *Tracer {
	if serviceName == "" {
		serviceName = "botctl"
	}
	tp := sdktrace.NewTracerProvider(
		processor,
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
	)
	return &Tracer{Provider: tp, shutdown: tp.Shutdown}
}
