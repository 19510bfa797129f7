package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

const (
	serviceName          = "cinema-storefront"
	instrumentationScope = "github.com/metinatakli/cinema-storefront"
	metricExportInterval = 15 * time.Second
	telemetryStopTimeout = 5 * time.Second
)

// InitTelemetry exports spans (chi routes, backend calls, Redis, Postgres),
// checkout metrics and logs to the collector. Without a collector URL it
// installs nothing and the returned stop function is a no-op.
func InitTelemetry(cfg Config, logger *slog.Logger) (func(context.Context), error) {
	if cfg.OtelCollectorUrl == "" {
		logger.Info("no OpenTelemetry collector configured, telemetry is disabled")
		return func(context.Context) {}, nil
	}

	ctx := context.Background()

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(version),
		semconv.DeploymentEnvironment(cfg.Env),
	))
	if err != nil {
		return nil, fmt.Errorf("telemetry resource: %w", err)
	}

	var stops []func(context.Context) error

	stop := func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, telemetryStopTimeout)
		defer cancel()

		var errs []error
		for _, fn := range stops {
			errs = append(errs, fn(ctx))
		}

		if err := errors.Join(errs...); err != nil {
			logger.Error("failed to stop telemetry", "error", err)
		}
	}

	spanExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithInsecure(), otlptracegrpc.WithEndpoint(cfg.OtelCollectorUrl))
	if err != nil {
		return nil, fmt.Errorf("trace exporter: %w", err)
	}

	tracers := sdktrace.NewTracerProvider(sdktrace.WithResource(res), sdktrace.WithBatcher(spanExporter))
	stops = append(stops, tracers.Shutdown)

	otel.SetTracerProvider(tracers)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	metricExporter, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithInsecure(), otlpmetricgrpc.WithEndpoint(cfg.OtelCollectorUrl))
	if err != nil {
		stop(ctx)
		return nil, fmt.Errorf("metric exporter: %w", err)
	}

	meters := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(metricExportInterval))),
	)
	stops = append(stops, meters.Shutdown)

	otel.SetMeterProvider(meters)

	logExporter, err := otlploggrpc.New(ctx, otlploggrpc.WithInsecure(), otlploggrpc.WithEndpoint(cfg.OtelCollectorUrl))
	if err != nil {
		stop(ctx)
		return nil, fmt.Errorf("log exporter: %w", err)
	}

	loggers := sdklog.NewLoggerProvider(sdklog.WithResource(res), sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)))
	stops = append(stops, loggers.Shutdown)

	global.SetLoggerProvider(loggers)

	return stop, nil
}

// newLogger writes text logs to w and, with a collector configured, mirrors
// every record into the OTel log bridge.
func newLogger(cfg Config, w io.Writer) *slog.Logger {
	text := slog.NewTextHandler(w, nil)

	if cfg.OtelCollectorUrl == "" {
		return slog.New(text)
	}

	return slog.New(fanoutHandler{text, otelslog.NewHandler(instrumentationScope)})
}

// fanoutHandler hands each record to every member enabled for its level.
// Member errors are dropped so one broken sink never silences the other.
type fanoutHandler []slog.Handler

func (h fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, member := range h {
		if member.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

func (h fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, member := range h {
		if member.Enabled(ctx, record.Level) {
			_ = member.Handle(ctx, record.Clone())
		}
	}

	return nil
}

func (h fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.each(func(member slog.Handler) slog.Handler { return member.WithAttrs(attrs) })
}

func (h fanoutHandler) WithGroup(name string) slog.Handler {
	return h.each(func(member slog.Handler) slog.Handler { return member.WithGroup(name) })
}

func (h fanoutHandler) each(fn func(slog.Handler) slog.Handler) fanoutHandler {
	out := make(fanoutHandler, len(h))
	for i, member := range h {
		out[i] = fn(member)
	}

	return out
}
