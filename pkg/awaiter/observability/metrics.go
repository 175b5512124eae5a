package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records wait-manager metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordDispatch records one delivered event and how many subscriptions
	// accepted it.
	RecordDispatch(ctx context.Context, event string, matched int)

	// RecordWait records a completed wait with its duration and error status.
	RecordWait(ctx context.Context, event string, duration time.Duration, err error)

	// RecordSubscription records a registry size change. delta is +1 on
	// register and -1 on deregister.
	RecordSubscription(ctx context.Context, event string, delta int)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	dispatches    metric.Int64Counter
	matches       metric.Int64Counter
	waitLatency   metric.Float64Histogram
	waitErrors    metric.Int64Counter
	subscriptions metric.Int64UpDownCounter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("awaiter")

	dispatches, err := meter.Int64Counter("awaiter.dispatches",
		metric.WithDescription("Number of dispatched events"),
	)
	if err != nil {
		return nil, err
	}

	matches, err := meter.Int64Counter("awaiter.matches",
		metric.WithDescription("Number of subscription matches"),
	)
	if err != nil {
		return nil, err
	}

	waitLatency, err := meter.Float64Histogram("awaiter.wait.latency_ms",
		metric.WithDescription("Wait duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	waitErrors, err := meter.Int64Counter("awaiter.wait.errors",
		metric.WithDescription("Number of waits ended by timeout or cancellation"),
	)
	if err != nil {
		return nil, err
	}

	subscriptions, err := meter.Int64UpDownCounter("awaiter.subscriptions.active",
		metric.WithDescription("Number of live subscriptions"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		dispatches:    dispatches,
		matches:       matches,
		waitLatency:   waitLatency,
		waitErrors:    waitErrors,
		subscriptions: subscriptions,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordDispatch records a delivered event.
func (m *otelMetrics) RecordDispatch(ctx context.Context, event string, matched int) {
	attrs := []attribute.KeyValue{
		attribute.String("event", event),
	}

	m.dispatches.Add(ctx, 1, metric.WithAttributes(attrs...))
	if matched > 0 {
		m.matches.Add(ctx, int64(matched), metric.WithAttributes(attrs...))
	}
}

// RecordWait records a completed wait.
func (m *otelMetrics) RecordWait(ctx context.Context, event string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("event", event),
	}

	m.waitLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if err != nil {
		m.waitErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordSubscription records a registry size change.
func (m *otelMetrics) RecordSubscription(ctx context.Context, event string, delta int) {
	attrs := []attribute.KeyValue{
		attribute.String("event", event),
	}
	m.subscriptions.Add(ctx, int64(delta), metric.WithAttributes(attrs...))
}
