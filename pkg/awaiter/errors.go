package awaiter

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for wait termination.
var (
	// ErrWaitTimeout indicates a single-shot wait elapsed with no match.
	ErrWaitTimeout = errors.New("wait timed out before a matching event arrived")

	// ErrLoopTimeout indicates a streaming wait hit its bound and every
	// event buffered before the bound expired has been delivered.
	ErrLoopTimeout = errors.New("loop timed out waiting for an event")

	// ErrLoopDone is the normal terminal of Loop.Next: the overall loop
	// budget was consumed mid-iteration and the sequence stopped cleanly.
	ErrLoopDone = errors.New("loop budget exhausted")
)

// errExhausted unwinds the drain phase when a closed streaming waiter has no
// buffered events left. It is never surfaced to callers; the drain loop
// converts it into a LoopTimeoutError.
var errExhausted = errors.New("streaming waiter exhausted")

// errBoundExpired reports that a bounded take expired before an event
// arrived. Internal to the loop state machine.
var errBoundExpired = errors.New("bounded wait expired")

// WaitTimeoutError reports which wait timed out and with what bound.
type WaitTimeoutError struct {
	// Event is the event name the wait was registered for.
	Event string
	// Timeout is the bound that elapsed.
	Timeout time.Duration
}

// Error implements the error interface.
func (e *WaitTimeoutError) Error() string {
	return fmt.Sprintf("wait for %q timed out after %s", e.Event, e.Timeout)
}

// Unwrap returns ErrWaitTimeout for errors.Is support.
func (e *WaitTimeoutError) Unwrap() error {
	return ErrWaitTimeout
}

// LoopTimeoutError reports that a streaming wait timed out after its backlog
// was drained.
type LoopTimeoutError struct {
	// Event is the event name the loop was registered for.
	Event string
	// Drained is the number of buffered events delivered between the bound
	// expiring and the sequence terminating.
	Drained int
}

// Error implements the error interface.
func (e *LoopTimeoutError) Error() string {
	if e.Drained > 0 {
		return fmt.Sprintf("loop for %q timed out after draining %d buffered events", e.Event, e.Drained)
	}
	return fmt.Sprintf("loop for %q timed out waiting for an event", e.Event)
}

// Unwrap returns ErrLoopTimeout for errors.Is support.
func (e *LoopTimeoutError) Unwrap() error {
	return ErrLoopTimeout
}
