package tracked

import (
	"errors"
	"iter"
)

var (
	errSnapshotMissing = errors.New("live slot has no snapshot")
	errLiveMissing     = errors.New("dirty slot has no live value")
)

// CanMaintain reports whether Maintain can detect in-place modifications.
func (t *Tracked[T]) CanMaintain() bool {
	return t.cfg.equal != nil
}

// Maintain compares the value of every id in live against its snapshot and
// records ChangeModified for those that differ, adding them to the dirty set.
// live must list exactly the ids that hold a value; it usually comes from the
// liveness mask of the owning store. It returns how many ids differed.
//
// Without an equality function Maintain does nothing and returns
// ErrEqualityUnavailable; structural tracking is unaffected.
//
// The cost is linear in the number of live ids, so call it once per epoch
// rather than after each mutation.
func (t *Tracked[T]) Maintain(live iter.Seq[Index]) (int, error) {
	start := t.cfg.now()
	if t.cfg.equal == nil {
		t.logOperation("maintain", 0, 0, start, ErrEqualityUnavailable)
		return 0, ErrEqualityUnavailable
	}
	if live == nil {
		t.logOperation("maintain", 0, 0, start, nil)
		return 0, nil
	}

	scanned, changed := 0, 0
	for id := range live {
		scanned++
		if !t.snapshot.Has(id) {
			panic(&DesyncError{Op: "maintain", ID: id, Err: errSnapshotMissing})
		}
		if t.cfg.equal(t.snapshot.Get(id), t.live.Get(id)) {
			continue
		}
		t.log.Record(id, ChangeModified)
		t.dirty.Add(id)
		changed++
	}
	t.logOperation("maintain", scanned, changed, start, nil)
	return changed, nil
}

// Reset closes the epoch. The snapshot of every dirty id is replaced with a
// copy of its live value, the dirty set is emptied, every log entry goes back
// to ChangeNone and a new epoch opens.
func (t *Tracked[T]) Reset() {
	start := t.cfg.now()
	refreshed := 0
	for id := range t.dirty.All() {
		if !t.live.Has(id) {
			panic(&DesyncError{Op: "reset", ID: id, Err: errLiveMissing})
		}
		t.snapshot.Insert(id, t.cfg.clone(t.live.Get(id)))
		refreshed++
	}
	t.dirty.Clear()
	t.log.Clear()
	closed := t.epoch
	t.epoch = closed.next(t.cfg.now)
	t.cfg.logger.LogOperation(OperationLogEvent{
		Op:       "reset",
		Tracker:  t.cfg.name,
		Epoch:    closed.ID,
		EpochSeq: closed.Seq,
		Scanned:  refreshed,
		Changed:  refreshed,
		Duration: t.cfg.now().Sub(start),
	})
}
