package telemetry

import (
	"context"
	"errors"
	"io"

	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Providers holds SDK providers that export to a writer.
type Providers struct {
	Tracer *sdktrace.TracerProvider
	Meter  *sdkmetric.MeterProvider
}

// NewStdoutProviders creates providers that print spans and metrics to w
// as JSON. Metrics are exported on Shutdown.
func NewStdoutProviders(w io.Writer) (*Providers, error) {
	traceExp, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, err
	}
	metricExp, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
	if err != nil {
		return nil, err
	}

	return &Providers{
		Tracer: sdktrace.NewTracerProvider(sdktrace.WithSyncer(traceExp)),
		Meter: sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp)),
		),
	}, nil
}

// Config returns a hook configuration using these providers.
func (p *Providers) Config(serial string) Config {
	cfg := DefaultConfig()
	cfg.TracerProvider = p.Tracer
	cfg.MeterProvider = p.Meter
	cfg.Serial = serial
	return cfg
}

// Shutdown flushes and stops both providers.
func (p *Providers) Shutdown(ctx context.Context) error {
	return errors.Join(p.Tracer.Shutdown(ctx), p.Meter.Shutdown(ctx))
}
