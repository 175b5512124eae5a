// Package observability provides production-grade observability for awaiter:
// structured logging, metrics, and distributed tracing.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds wait-manager context to a logger.
// Returns a new logger with subscription_id and event fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "sub-1a2b3c4d", "on_message")
//	enriched.Debug("waiting") // includes subscription_id, event
func EnrichLogger(logger *slog.Logger, subscriptionID, event string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("subscription_id", subscriptionID),
		slog.String("event", event),
	)
}

// LogDispatch logs one delivered event and how many subscriptions it matched.
func LogDispatch(logger *slog.Logger, event string, matched int) {
	if logger == nil {
		return
	}
	logger.Debug("event dispatched",
		slog.String("event", event),
		slog.Int("matched", matched),
	)
}

// LogRegister logs a subscription entering the registry.
func LogRegister(logger *slog.Logger, subscriptionID, event string, active int) {
	if logger == nil {
		return
	}
	logger.Debug("subscription registered",
		slog.String("subscription_id", subscriptionID),
		slog.String("event", event),
		slog.Int("active", active),
	)
}

// LogDeregister logs a subscription leaving the registry.
func LogDeregister(logger *slog.Logger, subscriptionID, event string, active int) {
	if logger == nil {
		return
	}
	logger.Debug("subscription deregistered",
		slog.String("subscription_id", subscriptionID),
		slog.String("event", event),
		slog.Int("active", active),
	)
}

// LogWaitStart logs the start of a suspended wait.
func LogWaitStart(logger *slog.Logger, subscriptionID, event string, timeout time.Duration) {
	if logger == nil {
		return
	}
	logger.Debug("wait starting",
		slog.String("subscription_id", subscriptionID),
		slog.String("event", event),
		slog.Duration("timeout", timeout),
	)
}

// LogWaitResolved logs a wait resumed by a matching event.
func LogWaitResolved(logger *slog.Logger, subscriptionID, event string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("wait resolved",
		slog.String("subscription_id", subscriptionID),
		slog.String("event", event),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogWaitTimeout logs a wait that expired with no match.
func LogWaitTimeout(logger *slog.Logger, subscriptionID, event string, timeout time.Duration) {
	if logger == nil {
		return
	}
	logger.Warn("wait timed out",
		slog.String("subscription_id", subscriptionID),
		slog.String("event", event),
		slog.Duration("timeout", timeout),
	)
}

// LogLoopDrain logs a streaming wait switching to drain mode after its bound
// expired.
func LogLoopDrain(logger *slog.Logger, subscriptionID, event string, queued int) {
	if logger == nil {
		return
	}
	logger.Debug("loop draining after timeout",
		slog.String("subscription_id", subscriptionID),
		slog.String("event", event),
		slog.Int("queued", queued),
	)
}

// LogSubscriptionPressure logs the registry crossing a configured size
// threshold, usually a sign of leaked or stuck waits.
func LogSubscriptionPressure(logger *slog.Logger, active, threshold int) {
	if logger == nil {
		return
	}
	logger.Warn("active subscriptions above threshold",
		slog.Int("active", active),
		slog.Int("threshold", threshold),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
