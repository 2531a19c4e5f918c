// Package observability wires the logger, metrics registry, and tracer
// handed to every module.
package observability

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/sideout-club/sideout-backend/config"
)

// Observability bundles the components modules receive at construction.
type Observability struct {
	Logger   *slog.Logger
	Registry *prometheus.Registry

	tracerProvider trace.TracerProvider
	shutdown       func(context.Context) error
}

// Init builds the observability stack from config. Tracing is disabled
// (noop provider) when no OTLP endpoint is configured.
func Init(ctx context.Context, cfg config.ObservabilityConfig) (*Observability, error) {
	logger := newLogger(cfg.LogLevel)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	obs := &Observability{
		Logger:         logger,
		Registry:       registry,
		tracerProvider: noop.NewTracerProvider(),
		shutdown:       func(context.Context) error { return nil },
	}

	if cfg.OTLPEndpoint != "" {
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
		if cfg.OTLPInsecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exporter, err := otlptracegrpc.New(ctx, opts...)
		if err != nil {
			return nil, err
		}

		res, err := resource.New(ctx,
			resource.WithAttributes(
				semconv.ServiceName(cfg.ServiceName),
				semconv.DeploymentEnvironment(cfg.Environment),
			),
		)
		if err != nil {
			return nil, err
		}

		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.TraceSampleRate))),
		)
		obs.tracerProvider = tp
		obs.shutdown = tp.Shutdown
	}

	return obs, nil
}

// Tracer returns a named tracer from the configured provider.
func (o *Observability) Tracer(name string) trace.Tracer {
	return o.tracerProvider.Tracer(name)
}

// Shutdown flushes any pending telemetry.
func (o *Observability) Shutdown(ctx context.Context) error {
	return o.shutdown(ctx)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// NoOpLogger discards everything; used by tests.
var NoOpLogger = slog.New(slog.DiscardHandler)
