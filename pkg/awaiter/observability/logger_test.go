package observability

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// testLogger returns a debug-level logger writing to buf.
func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func TestEnrichLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := testLogger(&buf)

	enriched := EnrichLogger(logger, "sub-1a2b3c4d", "on_message")
	enriched.Debug("waiting")

	out := buf.String()
	assert.Contains(t, out, "subscription_id=sub-1a2b3c4d")
	assert.Contains(t, out, "event=on_message")
}

func TestEnrichLogger_NilLogger(t *testing.T) {
	assert.Nil(t, EnrichLogger(nil, "sub-1", "on_x"))
}

func TestLogHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := testLogger(&buf)

	LogDispatch(logger, "on_msg", 3)
	LogRegister(logger, "sub-1", "on_msg", 1)
	LogDeregister(logger, "sub-1", "on_msg", 0)
	LogWaitStart(logger, "sub-1", "on_msg", time.Second)
	LogWaitResolved(logger, "sub-1", "on_msg", 12.5)
	LogWaitTimeout(logger, "sub-1", "on_msg", time.Second)
	LogLoopDrain(logger, "sub-1", "on_msg", 2)
	LogSubscriptionPressure(logger, 1001, 1000)

	out := buf.String()
	assert.Contains(t, out, "event dispatched")
	assert.Contains(t, out, "subscription registered")
	assert.Contains(t, out, "subscription deregistered")
	assert.Contains(t, out, "wait starting")
	assert.Contains(t, out, "wait resolved")
	assert.Contains(t, out, "wait timed out")
	assert.Contains(t, out, "loop draining after timeout")
	assert.Contains(t, out, "active subscriptions above threshold")
}

func TestLogHelpers_NilLogger(t *testing.T) {
	// All helpers must tolerate a nil logger.
	assert.NotPanics(t, func() {
		LogDispatch(nil, "on_msg", 0)
		LogRegister(nil, "sub-1", "on_msg", 1)
		LogDeregister(nil, "sub-1", "on_msg", 0)
		LogWaitStart(nil, "sub-1", "on_msg", 0)
		LogWaitResolved(nil, "sub-1", "on_msg", 0)
		LogWaitTimeout(nil, "sub-1", "on_msg", 0)
		LogLoopDrain(nil, "sub-1", "on_msg", 0)
		LogSubscriptionPressure(nil, 0, 0)
	})
}

func TestTimedOperation(t *testing.T) {
	done := TimedOperation()
	time.Sleep(5 * time.Millisecond)
	elapsed := done()

	assert.GreaterOrEqual(t, elapsed, float64(0))
	assert.Less(t, elapsed, float64(10_000))
}
