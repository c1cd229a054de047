package configs

import (
	"context"
	"fmt"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// InitTracing installs an OTLP/HTTP tracer provider when an endpoint is
// configured. Without one the global no-op provider stays in place and the
// spans opened by repositories and the OpenLibrary client cost nothing.
// The returned func flushes and stops the provider.
func InitTracing(ctx context.Context, cfg AppConfig) (func(context.Context) error, error) {
	if cfg.OTLPEndpoint == "" {
		log.Println("[INFO] OTEL_EXPORTER_OTLP_ENDPOINT not set, tracing disabled")
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.OTLPEndpoint))
	if err != nil {
		return nil, fmt.Errorf("otlp exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", cfg.ServiceName),
		)),
	)
	otel.SetTracerProvider(tp)
	log.Printf("✅ Tracing enabled, exporting to %s", cfg.OTLPEndpoint)

	return tp.Shutdown, nil
}
