package awaiter

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/randalmurphal/awaiter/pkg/awaiter/observability"
)

// NoTimeout disables a wait bound. Any negative duration is treated the same
// way. A zero duration is a real bound that expires immediately.
const NoTimeout time.Duration = -1

// Manager owns the live set of subscriptions and fans every dispatched event
// out to them. One instance typically serves one client session; create it
// explicitly and pass it to whatever needs to dispatch or await events.
//
// All methods are safe for concurrent use.
type Manager struct {
	mu   sync.Mutex
	subs []subscription

	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager

	defaultWaitTimeout      time.Duration
	defaultIterationTimeout time.Duration
	defaultLoopTimeout      time.Duration
	warnThreshold           int
}

// New creates a Manager. With no options it is silent, unbounded, and
// unobserved; see the With* options.
func New(opts ...Option) *Manager {
	cfg := defaultManagerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Manager{
		logger:                  cfg.logger,
		metrics:                 cfg.metrics,
		spans:                   cfg.spans,
		defaultWaitTimeout:      cfg.waitTimeout,
		defaultIterationTimeout: cfg.iterationTimeout,
		defaultLoopTimeout:      cfg.loopTimeout,
		warnThreshold:           cfg.warnThreshold,
	}
}

// Dispatch broadcasts one named event to every live subscription, in
// registration order. It never blocks and never fails, so it is safe to call
// synchronously from the event source's delivery path. Every subscription
// registered at the time of the call sees the event before Dispatch returns;
// a single event may satisfy any number of independent waits.
func (m *Manager) Dispatch(name string, args ...any) {
	m.mu.Lock()
	subs := make([]subscription, len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	matched := 0
	for _, sub := range subs {
		if sub.process(name, Args(args)) {
			matched++
		}
	}

	m.metrics.RecordDispatch(context.Background(), name, matched)
	observability.LogDispatch(m.logger, name, matched)
}

// WaitFor suspends until a dispatched event matches name and pred, or until
// timeout elapses. A nil pred accepts any event with the right name. Timeout
// semantics: NoTimeout (or any negative duration) waits indefinitely, zero
// expires immediately, positive values bound the wait. On expiry it returns
// a WaitTimeoutError wrapping ErrWaitTimeout; if ctx is cancelled it returns
// ctx.Err(). The subscription is deregistered on every exit path.
func (m *Manager) WaitFor(ctx context.Context, name string, pred Predicate, timeout time.Duration) (Args, error) {
	w := newOneShotWaiter(name, pred)
	m.register(w)
	defer m.deregister(w)

	ctx, span := m.spans.StartWaitSpan(ctx, name, w.id())
	elapsed := observability.TimedOperation()
	observability.LogWaitStart(m.logger, w.id(), name, timeout)

	var expire <-chan time.Time
	if timeout >= 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expire = timer.C
	}

	select {
	case <-w.wait():
		durationMs := elapsed()
		m.metrics.RecordWait(ctx, name, time.Duration(durationMs)*time.Millisecond, nil)
		m.spans.EndSpanWithError(span, nil)
		observability.LogWaitResolved(m.logger, w.id(), name, durationMs)
		return w.args(), nil

	case <-expire:
		err := &WaitTimeoutError{Event: name, Timeout: timeout}
		m.metrics.RecordWait(ctx, name, time.Duration(elapsed())*time.Millisecond, err)
		m.spans.EndSpanWithError(span, err)
		observability.LogWaitTimeout(m.logger, w.id(), name, timeout)
		return nil, err

	case <-ctx.Done():
		err := ctx.Err()
		m.metrics.RecordWait(ctx, name, time.Duration(elapsed())*time.Millisecond, err)
		m.spans.EndSpanWithError(span, err)
		return nil, err
	}
}

// Wait is WaitFor with the manager's configured default timeout.
func (m *Manager) Wait(ctx context.Context, name string, pred Predicate) (Args, error) {
	return m.WaitFor(ctx, name, pred, m.defaultWaitTimeout)
}

// LoopFor registers a streaming subscription and returns the lazy, finite
// sequence of matched argument tuples. Each Next is bounded by the smaller
// of the remaining loopTimeout and iterationTimeout (negative = no bound; if
// both are absent the wait is unbounded, which is legal). Callers should
// defer Close so the subscription is deregistered even if the loop is
// abandoned before a terminal Next.
func (m *Manager) LoopFor(ctx context.Context, name string, pred Predicate, iterationTimeout, loopTimeout time.Duration) *Loop {
	w := newStreamingWaiter(name, pred)
	m.register(w)

	_, span := m.spans.StartLoopSpan(ctx, name, w.id())
	observability.LogWaitStart(m.logger, w.id(), name, lowestBound(iterationTimeout, loopTimeout))

	return &Loop{
		mgr:              m,
		w:                w,
		span:             span,
		iterationTimeout: iterationTimeout,
		remaining:        loopTimeout,
		bounded:          loopTimeout >= 0,
		started:          time.Now(),
	}
}

// Loop is LoopFor with the manager's configured default bounds.
func (m *Manager) Loop(ctx context.Context, name string, pred Predicate) *Loop {
	return m.LoopFor(ctx, name, pred, m.defaultIterationTimeout, m.defaultLoopTimeout)
}

// Len returns the number of live subscriptions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

// register appends sub to the registry, preserving insertion order.
func (m *Manager) register(sub subscription) {
	m.mu.Lock()
	m.subs = append(m.subs, sub)
	active := len(m.subs)
	m.mu.Unlock()

	m.metrics.RecordSubscription(context.Background(), sub.event(), 1)
	observability.LogRegister(m.logger, sub.id(), sub.event(), active)
	if m.warnThreshold > 0 && active > m.warnThreshold {
		observability.LogSubscriptionPressure(m.logger, active, m.warnThreshold)
	}
}

// deregister removes sub from the registry. Removal is idempotent: the match
// path and the timeout path may both try to remove the same entry, and the
// second attempt is a silent no-op.
func (m *Manager) deregister(sub subscription) {
	m.mu.Lock()
	removed := false
	for i, s := range m.subs {
		if s.id() == sub.id() {
			m.subs = append(m.subs[:i], m.subs[i+1:]...)
			removed = true
			break
		}
	}
	active := len(m.subs)
	m.mu.Unlock()

	if !removed {
		return
	}
	m.metrics.RecordSubscription(context.Background(), sub.event(), -1)
	observability.LogDeregister(m.logger, sub.id(), sub.event(), active)
}

// lowestBound returns the smaller of the bounds that are present. A negative
// value means "no bound"; zero is a real bound that expires immediately.
func lowestBound(a, b time.Duration) time.Duration {
	switch {
	case a < 0:
		return b
	case b < 0:
		return a
	case a < b:
		return a
	default:
		return b
	}
}
