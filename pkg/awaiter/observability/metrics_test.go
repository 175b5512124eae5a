package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupMetricsTest creates a test meter provider and returns a function to collect metrics.
func setupMetricsTest(t *testing.T) (*sdkmetric.ManualReader, func()) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	originalProvider := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)

	cleanup := func() {
		otel.SetMeterProvider(originalProvider)
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down meter provider: %v", err)
		}
	}

	return reader, cleanup
}

// collectMetrics collects all metrics from the reader.
func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	var rm metricdata.ResourceMetrics
	err := reader.Collect(context.Background(), &rm)
	require.NoError(t, err)
	return &rm
}

// findMetric finds a metric by name in the collected data.
func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestNewMetricsRecorder(t *testing.T) {
	_, cleanup := setupMetricsTest(t)
	defer cleanup()

	recorder := NewMetricsRecorder()
	require.NotNil(t, recorder)

	_, isNoop := recorder.(NoopMetrics)
	assert.False(t, isNoop, "Expected real metrics recorder, got noop")
}

func TestRecordDispatch(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("records dispatch count", func(t *testing.T) {
		m.RecordDispatch(ctx, "on_ready", 2)

		rm := collectMetrics(t, reader)
		metric := findMetric(rm, "awaiter.dispatches")
		require.NotNil(t, metric)

		sum, ok := metric.Data.(metricdata.Sum[int64])
		require.True(t, ok, "Expected Sum type")
		require.NotEmpty(t, sum.DataPoints)

		found := false
		for _, dp := range sum.DataPoints {
			for _, attr := range dp.Attributes.ToSlice() {
				if attr.Key == "event" && attr.Value.AsString() == "on_ready" {
					found = true
					assert.GreaterOrEqual(t, dp.Value, int64(1))
				}
			}
		}
		assert.True(t, found, "Expected to find datapoint for event=on_ready")
	})

	t.Run("records matches", func(t *testing.T) {
		m.RecordDispatch(ctx, "on_matched", 3)

		rm := collectMetrics(t, reader)
		metric := findMetric(rm, "awaiter.matches")
		require.NotNil(t, metric)

		sum, ok := metric.Data.(metricdata.Sum[int64])
		require.True(t, ok, "Expected Sum type")

		found := false
		for _, dp := range sum.DataPoints {
			for _, attr := range dp.Attributes.ToSlice() {
				if attr.Key == "event" && attr.Value.AsString() == "on_matched" {
					found = true
					assert.GreaterOrEqual(t, dp.Value, int64(3))
				}
			}
		}
		assert.True(t, found, "Expected to find match datapoint")
	})

	t.Run("does not record matches for unmatched dispatch", func(t *testing.T) {
		m.RecordDispatch(ctx, "on_unmatched", 0)

		rm := collectMetrics(t, reader)
		metric := findMetric(rm, "awaiter.matches")
		if metric == nil {
			return
		}
		sum, ok := metric.Data.(metricdata.Sum[int64])
		if !ok {
			return
		}
		for _, dp := range sum.DataPoints {
			for _, attr := range dp.Attributes.ToSlice() {
				if attr.Key == "event" && attr.Value.AsString() == "on_unmatched" {
					assert.Equal(t, int64(0), dp.Value, "Expected no matches for on_unmatched")
				}
			}
		}
	})
}

func TestRecordWait(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("records latency", func(t *testing.T) {
		m.RecordWait(ctx, "on_ready", 50*time.Millisecond, nil)

		rm := collectMetrics(t, reader)
		metric := findMetric(rm, "awaiter.wait.latency_ms")
		require.NotNil(t, metric)

		hist, ok := metric.Data.(metricdata.Histogram[float64])
		require.True(t, ok, "Expected Histogram type")
		require.NotEmpty(t, hist.DataPoints)
	})

	t.Run("records errors when present", func(t *testing.T) {
		m.RecordWait(ctx, "on_failing", 10*time.Millisecond, errors.New("wait timed out"))

		rm := collectMetrics(t, reader)
		metric := findMetric(rm, "awaiter.wait.errors")
		require.NotNil(t, metric)

		sum, ok := metric.Data.(metricdata.Sum[int64])
		require.True(t, ok, "Expected Sum type")

		found := false
		for _, dp := range sum.DataPoints {
			for _, attr := range dp.Attributes.ToSlice() {
				if attr.Key == "event" && attr.Value.AsString() == "on_failing" {
					found = true
					assert.GreaterOrEqual(t, dp.Value, int64(1))
				}
			}
		}
		assert.True(t, found, "Expected to find error datapoint")
	})
}

func TestRecordSubscription(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()

	m.RecordSubscription(ctx, "on_ready", 1)
	m.RecordSubscription(ctx, "on_ready", 1)
	m.RecordSubscription(ctx, "on_ready", -1)

	rm := collectMetrics(t, reader)
	metric := findMetric(rm, "awaiter.subscriptions.active")
	require.NotNil(t, metric)

	sum, ok := metric.Data.(metricdata.Sum[int64])
	require.True(t, ok, "Expected Sum type")

	found := false
	for _, dp := range sum.DataPoints {
		for _, attr := range dp.Attributes.ToSlice() {
			if attr.Key == "event" && attr.Value.AsString() == "on_ready" {
				found = true
				assert.Equal(t, int64(1), dp.Value, "up/down counter should net to one live subscription")
			}
		}
	}
	assert.True(t, found, "Expected to find subscription datapoint")
}

func TestOtelMetrics_Creation(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.NotNil(t, m.dispatches)
	assert.NotNil(t, m.matches)
	assert.NotNil(t, m.waitLatency)
	assert.NotNil(t, m.waitErrors)
	assert.NotNil(t, m.subscriptions)

	_ = reader
}
