// ABOUTME: OpenTelemetry tracer provider setup
// ABOUTME: Exports spans over OTLP gRPC when an endpoint is configured

package telemetry

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// ServiceName identifies this client in traces
const ServiceName = "inventory-admin"

// Shutdown flushes and stops the tracer provider
type Shutdown func(context.Context) error

func noop(context.Context) error { return nil }

// Setup installs a global tracer provider exporting to endpoint. With an empty
// endpoint the global no-op provider stays in place. Exporter failures are
// logged and leave tracing disabled; they never stop the client.
func Setup(ctx context.Context, endpoint string) Shutdown {
	if endpoint == "" {
		return noop
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(endpoint)}
	if os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true" {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		slog.Warn("OTLP exporter unavailable", "endpoint", endpoint, "error", err)
		return noop
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(ServiceName)))
	if err != nil {
		slog.Warn("OTel resource incomplete", "error", err)
	}

	provider := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	slog.Debug("Tracing enabled", "endpoint", endpoint)

	return provider.Shutdown
}

// Tracer returns the client's tracer from the global provider
func Tracer() oteltrace.Tracer {
	return otel.Tracer(ServiceName)
}
