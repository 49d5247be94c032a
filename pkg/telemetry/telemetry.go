// Package telemetry provides OpenTelemetry instrumentation for device
// exchanges. It implements interaction.Hook to add a span and metrics to
// every exchange.
//
// Usage:
//
//	hook := telemetry.NewHook(telemetry.DefaultConfig())
//	s := odrive.NewSession(tr, odrive.WithHook(hook))
package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/odrive-host/odrive-go/pkg/interaction"
)

const instrumentationName = "odrive"

// Config configures exchange instrumentation.
type Config struct {
	// TracerProvider supplies the tracer. Defaults to otel.GetTracerProvider().
	TracerProvider trace.TracerProvider
	// MeterProvider supplies the meter. Defaults to otel.GetMeterProvider().
	MeterProvider metric.MeterProvider
	// EnableTracing enables span creation. Default true.
	EnableTracing bool
	// EnableMetrics enables counter and histogram recording. Default true.
	EnableMetrics bool
	// Serial is added to every span and metric as odrive.serial.
	Serial string
}

// DefaultConfig returns a Config using the global providers.
func DefaultConfig() Config {
	return Config{
		EnableTracing: true,
		EnableMetrics: true,
	}
}

// Hook records exchanges. It implements interaction.Hook.
type Hook struct {
	cfg               Config
	tracer            trace.Tracer
	exchangeCounter   metric.Int64Counter
	durationHistogram metric.Float64Histogram
}

var _ interaction.Hook = (*Hook)(nil)

// NewHook creates a hook from cfg.
func NewHook(cfg Config) *Hook {
	if cfg.TracerProvider == nil {
		cfg.TracerProvider = otel.GetTracerProvider()
	}
	if cfg.MeterProvider == nil {
		cfg.MeterProvider = otel.GetMeterProvider()
	}

	h := &Hook{
		cfg:    cfg,
		tracer: cfg.TracerProvider.Tracer(instrumentationName),
	}

	if cfg.EnableMetrics {
		meter := cfg.MeterProvider.Meter(instrumentationName)
		h.exchangeCounter, _ = meter.Int64Counter("odrive.exchange.count",
			metric.WithUnit("{exchange}"),
			metric.WithDescription("Number of device exchanges"),
		)
		h.durationHistogram, _ = meter.Float64Histogram("odrive.exchange.duration",
			metric.WithUnit("s"),
			metric.WithDescription("Duration of device exchanges"),
		)
	}
	return h
}

// spanKey carries the span started by OnExchangeStart.
type spanKey struct{}

// OnExchangeStart starts a client span for the exchange.
func (h *Hook) OnExchangeStart(ctx context.Context, info interaction.ExchangeInfo) context.Context {
	if !h.cfg.EnableTracing {
		return ctx
	}

	attrs := []attribute.KeyValue{
		attribute.Int("odrive.endpoint", int(info.EndpointID)),
		attribute.Int("odrive.sequence", int(info.Sequence)),
		attribute.Bool("odrive.await_reply", info.AwaitReply),
		attribute.Bool("odrive.read_request", info.ReadRequest),
		attribute.Int("odrive.request_size", info.RequestSize),
	}
	if h.cfg.Serial != "" {
		attrs = append(attrs, attribute.String("odrive.serial", h.cfg.Serial))
	}

	ctx, span := h.tracer.Start(ctx, fmt.Sprintf("odrive/endpoint/%d", info.EndpointID),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	return context.WithValue(ctx, spanKey{}, span)
}

// OnExchangeEnd records metrics and ends the span.
func (h *Hook) OnExchangeEnd(ctx context.Context, info interaction.ExchangeInfo, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}

	if h.cfg.EnableMetrics {
		kvs := []attribute.KeyValue{
			attribute.String("status", status),
			attribute.String("odrive.error_kind", errorKind(err)),
		}
		if h.cfg.Serial != "" {
			kvs = append(kvs, attribute.String("odrive.serial", h.cfg.Serial))
		}
		metricAttrs := metric.WithAttributes(kvs...)
		if h.exchangeCounter != nil {
			h.exchangeCounter.Add(ctx, 1, metricAttrs)
		}
		if h.durationHistogram != nil {
			h.durationHistogram.Record(ctx, info.Duration.Seconds(), metricAttrs)
		}
	}

	// Only end the span this hook started, never a caller's.
	span, ok := ctx.Value(spanKey{}).(trace.Span)
	if !ok {
		return
	}
	defer span.End()
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(attribute.Int("odrive.reply_size", info.ReplySize))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		span.SetAttributes(attribute.String("odrive.error_kind", errorKind(err)))
	} else {
		span.SetStatus(codes.Ok, "")
	}
}

// errorKind buckets err for low-cardinality attributes.
func errorKind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, interaction.ErrOutOfOrderReply):
		return "out_of_order"
	case errors.Is(err, interaction.ErrTransportWrite):
		return "transport_write"
	case errors.Is(err, interaction.ErrTransportRead):
		return "transport_read"
	default:
		return "other"
	}
}
