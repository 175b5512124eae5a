package awaiter

// Args is the ordered tuple of opaque values delivered with one event.
// The manager never inspects the values; they are captured on a match and
// handed to the waiting caller as-is.
type Args []any

// First returns the leading value of the tuple, or nil if the tuple is
// empty. Most events carry a single payload value, so this is the common
// accessor.
func (a Args) First() any {
	if len(a) == 0 {
		return nil
	}
	return a[0]
}

// Predicate decides whether a name-matching event also satisfies semantic
// criteria. A nil Predicate accepts every event with the right name.
type Predicate func(Args) bool
