package awaiter

import (
	"log/slog"
	"time"

	"github.com/randalmurphal/awaiter/pkg/awaiter/observability"
)

// managerConfig holds configuration for a Manager.
type managerConfig struct {
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager

	waitTimeout      time.Duration
	iterationTimeout time.Duration
	loopTimeout      time.Duration
	warnThreshold    int
}

// defaultManagerConfig returns the default Manager configuration: no
// logging, no-op observability, unbounded default timeouts.
func defaultManagerConfig() managerConfig {
	return managerConfig{
		metrics:          observability.NoopMetrics{},
		spans:            observability.NoopSpanManager{},
		waitTimeout:      NoTimeout,
		iterationTimeout: NoTimeout,
		loopTimeout:      NoTimeout,
	}
}

// Option configures a Manager.
type Option func(*managerConfig)

// WithLogger sets the structured logger. A nil logger disables logging
// (the default).
func WithLogger(logger *slog.Logger) Option {
	return func(c *managerConfig) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
// Default: observability.NoopMetrics{}
func WithMetrics(recorder observability.MetricsRecorder) Option {
	return func(c *managerConfig) {
		if recorder != nil {
			c.metrics = recorder
		}
	}
}

// WithSpanManager sets the trace span manager.
// Default: observability.NoopSpanManager{}
func WithSpanManager(spans observability.SpanManager) Option {
	return func(c *managerConfig) {
		if spans != nil {
			c.spans = spans
		}
	}
}

// WithDefaultWaitTimeout sets the bound used by Wait.
// Default: NoTimeout
func WithDefaultWaitTimeout(d time.Duration) Option {
	return func(c *managerConfig) {
		c.waitTimeout = d
	}
}

// WithDefaultIterationTimeout sets the per-iteration bound used by Loop.
// Default: NoTimeout
func WithDefaultIterationTimeout(d time.Duration) Option {
	return func(c *managerConfig) {
		c.iterationTimeout = d
	}
}

// WithDefaultLoopTimeout sets the overall bound used by Loop.
// Default: NoTimeout
func WithDefaultLoopTimeout(d time.Duration) Option {
	return func(c *managerConfig) {
		c.loopTimeout = d
	}
}

// WithSubscriptionWarnThreshold makes the manager log a warning whenever the
// registry grows past n entries, usually a sign of leaked or stuck waits.
// Default: 0 (disabled)
func WithSubscriptionWarnThreshold(n int) Option {
	return func(c *managerConfig) {
		if n > 0 {
			c.warnThreshold = n
		}
	}
}
