// Package telemetry configures OpenTelemetry tracing.
//
// Tracing is off unless OTEL_EXPORTER_OTLP_ENDPOINT is set. When off, Setup
// installs nothing and the global no-op provider stays in place, so
// instrumented code pays almost nothing.
package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/authflow/pkg/logger"
)

var ErrSetup = errors.New("telemetry.setup_failed")

type Config struct {
	Endpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	Insecure    bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"false"`
	ServiceName string  `env:"OTEL_SERVICE_NAME" envDefault:"authflow"`
	SampleRatio float64 `env:"OTEL_TRACES_SAMPLER_RATIO" envDefault:"1"`
}

// Enabled reports whether an exporter endpoint is configured.
func (c Config) Enabled() bool {
	return c.Endpoint != ""
}

// Provider is the configured tracer provider plus its shutdown hook.
type Provider struct {
	trace.TracerProvider
	shutdown func(context.Context) error
}

// Shutdown flushes pending spans. Safe to call on a disabled provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.shutdown == nil {
		return nil
	}
	return p.shutdown(ctx)
}

// Setup installs a global tracer provider exporting over OTLP/gRPC. With no
// endpoint it returns the current global provider and a no-op shutdown.
func Setup(ctx context.Context, cfg Config, log *slog.Logger) (*Provider, error) {
	if !cfg.Enabled() {
		log.DebugContext(ctx, "tracing disabled", logger.Component("telemetry"))
		return &Provider{TracerProvider: otel.GetTracerProvider()}, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, errors.Join(ErrSetup, err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)),
		resource.WithProcessRuntimeName(),
	)
	if err != nil {
		return nil, errors.Join(ErrSetup, err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.InfoContext(ctx, "tracing enabled",
		slog.String("endpoint", cfg.Endpoint),
		logger.Component("telemetry"),
	)

	return &Provider{TracerProvider: tp, shutdown: tp.Shutdown}, nil
}

// Middleware starts a server span per request using the global provider.
func Middleware(operation string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, operation)
	}
}
