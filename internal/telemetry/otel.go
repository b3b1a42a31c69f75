// Package telemetry configures OpenTelemetry tracing.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
)

// DefaultServiceName identifies the dashboard server in traces
const DefaultServiceName = "taskly-dashboard"

// Settings configures the tracer provider
type Settings struct {
	ServiceName    string
	ServiceVersion string
	// Endpoint is the OTLP HTTP collector host:port; empty uses the
	// exporter's default or OTEL_EXPORTER_OTLP_ENDPOINT
	Endpoint string
}

// InitTracer creates and installs the global tracer provider and the W3C
// trace context propagator
func InitTracer(ctx context.Context, s Settings) (*sdktrace.TracerProvider, error) {
	if s.ServiceName == "" {
		s.ServiceName = DefaultServiceName
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithInsecure()}
	if s.Endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(s.Endpoint))
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	res, err := newResource(ctx, s)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp, nil
}

func newResource(ctx context.Context, s Settings) (*resource.Resource, error) {
	attrs := []resource.Option{
		resource.WithAttributes(semconv.ServiceName(s.ServiceName)),
	}
	if s.ServiceVersion != "" {
		attrs = append(attrs, resource.WithAttributes(semconv.ServiceVersion(s.ServiceVersion)))
	}
	res, err := resource.New(ctx, attrs...)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// Shutdown flushes and stops the tracer provider
func Shutdown(ctx context.Context, tp *sdktrace.TracerProvider) error {
	if tp == nil {
		return nil
	}
	return tp.Shutdown(ctx)
}
