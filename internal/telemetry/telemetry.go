// Package telemetry wires optional OpenTelemetry trace export for the
// customers API client. Export is disabled unless an OTLP endpoint is
// configured, either in the config file or via OTEL_EXPORTER_OTLP_ENDPOINT;
// with no endpoint the client's spans go nowhere and cost nothing.
package telemetry

import (
	"context"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

// ServiceName identifies this client in exported traces.
const ServiceName = "backoffice"

// Setup installs a global tracer provider exporting to the given OTLP/HTTP
// endpoint. When endpoint is empty, OTEL_EXPORTER_OTLP_ENDPOINT is consulted;
// if that is also empty, tracing stays disabled and the returned shutdown
// function is a no-op.
func Setup(ctx context.Context, endpoint string) (func(context.Context) error, error) {
	if endpoint == "" {
		endpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	}
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(), // Local collectors; TLS endpoints go through the env config
	)
	if err != nil {
		return nil, err
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(ServiceName),
	)

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	return provider.Shutdown, nil
}
