package tracked

import "iter"

// Event is one (slot, change) pair produced by an event sequence.
type Event struct {
	ID     Index  `json:"id"`
	Change Change `json:"change"`
}

// ChangeLog is a dense, id-indexed record of the net change applied to every
// slot since the last Clear. It grows on demand and never shrinks.
type ChangeLog struct {
	changes []Change
}

// Record merges event into the entry for id, growing the log when needed.
// A transition the merge table rejects is a caller contract violation and
// panics with the *TransitionError.
func (l *ChangeLog) Record(id Index, event Change) Change {
	l.grow(id)
	next, err := Merge(l.changes[id], event)
	if err != nil {
		panic(withSlot(err, id))
	}
	l.changes[id] = next
	return next
}

func (l *ChangeLog) grow(id Index) {
	need := int(id) + 1
	if need <= len(l.changes) {
		return
	}
	if need <= cap(l.changes) {
		l.changes = l.changes[:need]
		return
	}
	grown := make([]Change, need, max(need, 2*cap(l.changes)))
	copy(grown, l.changes)
	l.changes = grown
}

// At returns the change recorded for id, ChangeNone when id is beyond the log.
func (l *ChangeLog) At(id Index) Change {
	if l == nil || int(id) >= len(l.changes) {
		return ChangeNone
	}
	return l.changes[id]
}

// Len returns the number of entries, including ChangeNone ones.
func (l *ChangeLog) Len() int {
	if l == nil {
		return 0
	}
	return len(l.changes)
}

// Clear sets every entry to ChangeNone without shrinking the log.
func (l *ChangeLog) Clear() {
	clear(l.changes)
}

// Forget resets the entry for id to ChangeNone.
func (l *ChangeLog) Forget(id Index) {
	if int(id) < len(l.changes) {
		l.changes[id] = ChangeNone
	}
}

// Events yields every entry that is not ChangeNone in ascending id order.
// The sequence reads the log lazily and can be ranged over any number of
// times; it sees mutations made between iterations.
func (l *ChangeLog) Events() iter.Seq2[Index, Change] {
	return func(yield func(Index, Change) bool) {
		if l == nil {
			return
		}
		for i, change := range l.changes {
			if change == ChangeNone {
				continue
			}
			if !yield(Index(i), change) {
				return
			}
		}
	}
}

// Count returns how many entries currently hold each change.
func (l *ChangeLog) Count() map[Change]int {
	counts := make(map[Change]int, 3)
	for _, change := range l.Events() {
		counts[change]++
	}
	return counts
}

// CollectEvents drains seq into a slice.
func CollectEvents(seq iter.Seq2[Index, Change]) []Event {
	var out []Event
	for id, change := range seq {
		out = append(out, Event{ID: id, Change: change})
	}
	return out
}

// FilterEvents returns a sequence yielding only the pairs keep accepts.
func FilterEvents(seq iter.Seq2[Index, Change], keep func(Index, Change) bool) iter.Seq2[Index, Change] {
	if keep == nil {
		return seq
	}
	return func(yield func(Index, Change) bool) {
		for id, change := range seq {
			if !keep(id, change) {
				continue
			}
			if !yield(id, change) {
				return
			}
		}
	}
}
