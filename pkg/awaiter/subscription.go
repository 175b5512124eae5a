package awaiter

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// subscription is the shared contract between the registry and both waiter
// kinds: decide whether a dispatched event matches, record its arguments,
// and wake any suspended consumer.
type subscription interface {
	// id returns the registry identity, used for logging and for idempotent
	// removal.
	id() string

	// event returns the registered event name.
	event() string

	// process offers one dispatched event to the subscription and reports
	// whether it was accepted. It never blocks; Dispatch calls it
	// synchronously on the delivery path.
	process(name string, args Args) bool
}

// newSubID returns a short unique subscription ID for logs and traces.
func newSubID() string {
	return fmt.Sprintf("sub-%s", uuid.New().String()[:8])
}

// matcher implements the single dispatch-matching rule shared by both waiter
// kinds: strict case-sensitive name equality, then the optional predicate.
// Arguments are captured on every name match before the predicate runs, so
// lastMatch is only meaningful immediately after a true result. The capture
// on predicate-rejected events is a deliberate no-op for callers; nothing may
// read lastMatch after a false result.
type matcher struct {
	name string
	pred Predicate

	lastMatch Args
}

// matches reports whether the event satisfies the subscription. Recording
// args is a side effect of every name match, even a rejected one.
func (m *matcher) matches(name string, args Args) bool {
	if m.name != name {
		return false
	}

	m.lastMatch = args

	if m.pred != nil {
		return m.pred(args)
	}
	return true
}

// oneShotWaiter unblocks exactly one suspended WaitFor caller. The signal
// is a close-once channel; raising an already-raised signal is a no-op, so
// at most one resumption occurs and the arguments captured by the first
// successful match are the ones the caller receives.
type oneShotWaiter struct {
	subID string

	mu     sync.Mutex
	m      matcher
	fired  bool
	result Args
	done   chan struct{}
}

func newOneShotWaiter(name string, pred Predicate) *oneShotWaiter {
	return &oneShotWaiter{
		subID: newSubID(),
		m:     matcher{name: name, pred: pred},
		done:  make(chan struct{}),
	}
}

func (w *oneShotWaiter) id() string    { return w.subID }
func (w *oneShotWaiter) event() string { return w.m.name }

func (w *oneShotWaiter) process(name string, args Args) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fired {
		return false
	}
	if !w.m.matches(name, args) {
		return false
	}

	w.result = w.m.lastMatch
	w.fired = true
	close(w.done)
	return true
}

// wait returns the channel closed on the first successful match.
func (w *oneShotWaiter) wait() <-chan struct{} {
	return w.done
}

// args returns the arguments captured by the first successful match. Only
// meaningful after the signal channel is closed.
func (w *oneShotWaiter) args() Args {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result
}

// streamingWaiter buffers matched events in arrival order until closed, then
// drains what remains. The wake channel holds at most one token: it is
// raised when the queue grows and cleared when a pop empties the queue, so a
// take on an empty open queue always suspends.
type streamingWaiter struct {
	subID string

	mu     sync.Mutex
	m      matcher
	queue  []Args
	closed bool
	wake   chan struct{}
}

func newStreamingWaiter(name string, pred Predicate) *streamingWaiter {
	return &streamingWaiter{
		subID: newSubID(),
		m:     matcher{name: name, pred: pred},
		wake:  make(chan struct{}, 1),
	}
}

func (w *streamingWaiter) id() string    { return w.subID }
func (w *streamingWaiter) event() string { return w.m.name }

func (w *streamingWaiter) process(name string, args Args) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	// Events arriving after close are dropped even when they match.
	if w.closed {
		return false
	}
	if !w.m.matches(name, args) {
		return false
	}

	w.queue = append(w.queue, w.m.lastMatch)
	select {
	case w.wake <- struct{}{}:
	default:
	}
	return true
}

// tryNext pops the front of the queue without suspending. ok reports whether
// an event was returned. Once the waiter is closed and drained it returns
// errExhausted.
func (w *streamingWaiter) tryNext() (args Args, ok bool, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.queue) > 0 {
		args = w.queue[0]
		w.queue = w.queue[1:]
		if len(w.queue) == 0 {
			// Clear the signal so the next empty take suspends.
			select {
			case <-w.wake:
			default:
			}
		}
		return args, true, nil
	}

	if w.closed {
		return nil, false, errExhausted
	}
	return nil, false, nil
}

// waitCh returns the wake signal raised when the queue becomes non-empty.
func (w *streamingWaiter) waitCh() <-chan struct{} {
	return w.wake
}

// close stops the queue from growing. Already-buffered events remain
// drainable via tryNext. Idempotent.
func (w *streamingWaiter) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
}

// pending returns the number of buffered events.
func (w *streamingWaiter) pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.queue)
}
