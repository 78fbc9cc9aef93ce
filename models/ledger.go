package models

import "errors"

// ErrPositionOutOfRange is returned by RemoveAt when the position does not
// address an existing ledger entry.
var ErrPositionOutOfRange = errors.New("invalid event index")

// Ledger is the ordered sequence of events of one match. Insertion order is
// the only ordering; it is not guaranteed to be monotonic in declared match
// time, since corrections may append an event describing an earlier moment.
// The ledger is mutated exclusively by the match service.
type Ledger []MatchEvent

// Append inserts the event at the end and returns its position.
func (l *Ledger) Append(event MatchEvent) int {
	*l = append(*l, event)
	return len(*l) - 1
}

// RemoveAt deletes the entry at position and shifts every later entry down by
// one. Callers must not reuse positions cached before a mutation.
func (l *Ledger) RemoveAt(position int) (MatchEvent, error) {
	if position < 0 || position >= len(*l) {
		return MatchEvent{}, ErrPositionOutOfRange
	}
	removed := (*l)[position]
	*l = append((*l)[:position], (*l)[position+1:]...)
	return removed, nil
}

// Snapshot returns a copy safe to hand to derivation and serialization while
// the original keeps being mutated.
func (l Ledger) Snapshot() Ledger {
	if l == nil {
		return Ledger{}
	}
	cp := make(Ledger, len(l))
	copy(cp, l)
	return cp
}

// NextEventID returns the next stable event identifier: one past the highest
// ID ever assigned that is still present. IDs of removed events may be reused
// only if they were the highest; positions never feed into IDs.
func (l Ledger) NextEventID() int {
	max := 0
	for _, e := range l {
		if e.ID > max {
			max = e.ID
		}
	}
	return max + 1
}
