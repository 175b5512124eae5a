package awaiter

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/randalmurphal/awaiter/pkg/awaiter/observability"
)

// Loop is the lazy, finite sequence of matched argument tuples produced by
// LoopFor. It is not restartable and must be consumed from a single
// goroutine.
//
// Next yields items until one of two terminals:
//   - ErrLoopDone: the overall loop budget was consumed mid-iteration and
//     the sequence stopped normally.
//   - LoopTimeoutError (wrapping ErrLoopTimeout): a bounded wait expired
//     and every event buffered before the bound has been delivered.
//
// After a terminal, every later Next returns the same result. Close
// abandons the loop early; it is idempotent and safe after a terminal, so
// callers should defer it to guarantee deregistration on every exit path.
type Loop struct {
	mgr  *Manager
	w    *streamingWaiter
	span trace.Span

	iterationTimeout time.Duration
	remaining        time.Duration
	bounded          bool
	started          time.Time

	budgetSpent bool
	draining    bool
	drained     int
	finished    bool
	termErr     error
}

// Next blocks until the next matched event is available, the loop budget
// runs out, or the bounded wait expires. If ctx is cancelled the loop
// terminates with ctx.Err().
func (l *Loop) Next(ctx context.Context) (Args, error) {
	switch {
	case l.finished:
		return nil, l.termErr
	case l.draining:
		return l.drainNext()
	case l.budgetSpent:
		// The previous Next yielded the item that consumed the budget.
		return nil, l.terminate(ErrLoopDone)
	}

	bound := l.iterationTimeout
	if l.bounded {
		bound = lowestBound(l.remaining, l.iterationTimeout)
	}

	start := time.Now()
	args, err := l.take(ctx, bound)
	if err != nil {
		if errors.Is(err, errBoundExpired) {
			// Bounded wait expired: stop accepting new events, then keep
			// yielding what already arrived before failing.
			l.w.close()
			l.draining = true
			observability.LogLoopDrain(l.mgr.logger, l.w.id(), l.w.event(), l.w.pending())
			return l.drainNext()
		}
		return nil, l.terminate(err)
	}

	if l.bounded {
		// The consumer's own processing time between Next calls is not
		// charged; only the time spent waiting here is.
		l.remaining -= time.Since(start)
		if l.remaining <= 0 {
			l.budgetSpent = true
		}
	}
	return args, nil
}

// take waits for the next queued event, bounded by bound (negative means no
// bound): pop when the queue is non-empty, otherwise park on the wake signal
// and retry.
func (l *Loop) take(ctx context.Context, bound time.Duration) (Args, error) {
	var expire <-chan time.Time
	if bound >= 0 {
		timer := time.NewTimer(bound)
		defer timer.Stop()
		expire = timer.C
	}

	for {
		args, ok, err := l.w.tryNext()
		if err != nil {
			return nil, err
		}
		if ok {
			return args, nil
		}

		select {
		case <-l.w.waitCh():
		case <-expire:
			return nil, errBoundExpired
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// drainNext delivers buffered events after the waiter was closed, then
// terminates with the loop-timeout condition once the queue is exhausted.
func (l *Loop) drainNext() (Args, error) {
	args, ok, err := l.w.tryNext()
	if ok {
		l.drained++
		return args, nil
	}
	if err == nil || errors.Is(err, errExhausted) {
		err = &LoopTimeoutError{Event: l.w.event(), Drained: l.drained}
	}
	return nil, l.terminate(err)
}

// Close abandons the loop and deregisters its subscription. Safe to call
// multiple times and after a terminal Next.
func (l *Loop) Close() {
	if l.finished {
		return
	}
	l.terminate(ErrLoopDone)
}

// terminate records the terminal error, deregisters the waiter, and makes
// every later Next return the same result.
func (l *Loop) terminate(err error) error {
	l.finished = true
	l.termErr = err
	l.w.close()
	l.mgr.deregister(l.w)

	duration := time.Since(l.started)
	if errors.Is(err, ErrLoopDone) {
		l.mgr.metrics.RecordWait(context.Background(), l.w.event(), duration, nil)
		l.mgr.spans.EndSpanWithError(l.span, nil)
	} else {
		l.mgr.metrics.RecordWait(context.Background(), l.w.event(), duration, err)
		l.mgr.spans.EndSpanWithError(l.span, err)
	}
	return err
}
