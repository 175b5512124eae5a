// Package awaiter provides event correlation and wait management: arbitrary
// call sites suspend until a future, externally delivered event matching a
// name and an optional predicate arrives, either once (WaitFor) or repeatedly
// as a bounded-lifetime stream (LoopFor).
//
// An event source pushes notifications into a Manager via Dispatch; callers
// register interest via WaitFor or LoopFor and receive the matched argument
// tuples. A single dispatched event may satisfy any number of independent
// waits. Subscriptions live exactly as long as the wait that created them:
// they are deregistered on every exit path, including timeouts and caller
// cancellation.
//
// Timeouts are explicit: NoTimeout (or any negative duration) means no bound,
// zero is a real bound that expires immediately, and a streaming wait that
// hits its bound still drains every event that arrived before the bound
// expired ("timeout drains, does not discard").
//
// Design Influences:
//   - Temporal signals (externally injected events into running logic)
//   - Gateway client libraries (wait-for-event with check predicates)
//   - Go channels + select (explicit suspension points)
package awaiter
