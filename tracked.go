package tracked

import (
	"errors"
	"iter"
	"time"

	"github.com/goliatone/go-tracked/pkg/slots"
)

var errSlotOccupied = errors.New("slot already holds a value")

// Tracked records insert, modify and remove events for the values held in a
// slot backend.
//
// Structural changes (Insert, Remove) are recorded as they happen. In-place
// changes made through GetMut are invisible until Maintain compares every
// live value with the snapshot taken at the last Reset. Reset closes the
// epoch: it re-baselines the snapshots of dirty slots and clears all history.
//
// Tracked does no locking. Insert, Remove, Clean, Maintain and Reset need
// exclusive access; Get, Dirty and Events may run alongside other readers.
type Tracked[T any] struct {
	cfg      config[T]
	live     slots.Backend[T]
	snapshot slots.Backend[T]
	log      ChangeLog
	dirty    Set
	epoch    Epoch
}

// New wraps backend. Modification detection is only available when an
// equality function is configured with WithEqual or WithDeepEqual.
func New[T any](backend slots.Backend[T], opts ...Option[T]) *Tracked[T] {
	cfg := applyOptions(opts)
	if backend == nil {
		backend = slots.NewDenseStore[T]()
	}
	snapshot := cfg.snapshot
	if snapshot == nil {
		snapshot = matchingFactory(backend)
	}
	return &Tracked[T]{
		cfg:      cfg,
		live:     backend,
		snapshot: snapshot(),
		epoch:    newEpoch(1, cfg.now),
	}
}

// NewComparable wraps backend and detects modifications with ==.
func NewComparable[T comparable](backend slots.Backend[T], opts ...Option[T]) *Tracked[T] {
	all := make([]Option[T], 0, len(opts)+1)
	all = append(all, WithEqual(func(a, b T) bool { return a == b }))
	all = append(all, opts...)
	return New(backend, all...)
}

func matchingFactory[T any](backend slots.Backend[T]) slots.Factory[T] {
	switch backend.(type) {
	case *slots.VecStore[T]:
		return slots.Vec[T]
	case *slots.MapStore[T]:
		return slots.Map[T]
	default:
		return slots.Dense[T]
	}
}

// Name returns the label set with WithName.
func (t *Tracked[T]) Name() string {
	return t.cfg.name
}

// Epoch returns the epoch currently open.
func (t *Tracked[T]) Epoch() Epoch {
	return t.epoch
}

// Insert stores value at id and records ChangeInserted. id must not hold a
// value: inserting twice within an epoch panics with a *TransitionError, and
// inserting over a slot that was live before the epoch panics with a
// *DesyncError. A panicking Insert leaves the tracker untouched.
func (t *Tracked[T]) Insert(id Index, value T) {
	if _, err := Merge(t.log.At(id), ChangeInserted); err != nil {
		panic(withSlot(err, id))
	}
	if t.live.Has(id) {
		panic(&DesyncError{Op: "insert", ID: id, Err: errSlotOccupied})
	}
	t.dirty.Add(id)
	t.log.Record(id, ChangeInserted)
	t.snapshot.Insert(id, t.cfg.clone(value))
	t.live.Insert(id, value)
}

// Remove deletes and returns the value at id and records ChangeRemoved. id
// must hold a value.
func (t *Tracked[T]) Remove(id Index) T {
	t.dirty.Remove(id)
	t.log.Record(id, ChangeRemoved)
	t.snapshot.Remove(id)
	return t.live.Remove(id)
}

// Get returns the value at id. id must hold a value.
func (t *Tracked[T]) Get(id Index) T {
	return t.live.Get(id)
}

// GetMut returns a pointer to the value at id. Writes through it are only
// seen by the next Maintain.
func (t *Tracked[T]) GetMut(id Index) *T {
	return t.live.GetMut(id)
}

// Has reports whether id holds a live value.
func (t *Tracked[T]) Has(id Index) bool {
	return t.live.Has(id)
}

// Len returns the number of live values.
func (t *Tracked[T]) Len() int {
	return t.live.Len()
}

// Clean drops every slot for which reclaim returns true from both the live
// backend and the snapshot and returns the reclaimed ids in ascending order.
// reclaim is called once per live id. Reclaimed ids leave the dirty set;
// whether their log entries survive until Reset depends on the CleanPolicy.
func (t *Tracked[T]) Clean(reclaim func(Index) bool) []Index {
	if reclaim == nil {
		return nil
	}
	start := t.cfg.now()
	scanned := 0
	var gone Set
	t.live.Clean(func(id Index) bool {
		scanned++
		if !reclaim(id) {
			return false
		}
		gone.Add(id)
		return true
	})
	if gone.Len() == 0 {
		t.logOperation("clean", scanned, 0, start, nil)
		return nil
	}
	t.snapshot.Clean(gone.Contains)

	reclaimed := gone.Slice()
	for _, id := range reclaimed {
		t.dirty.Remove(id)
		if t.cfg.cleanPolicy == CleanForgetLog {
			t.log.Forget(id)
		}
	}
	t.logOperation("clean", scanned, len(reclaimed), start, nil)
	return reclaimed
}

// CleanFunc is Clean with the recorded change and the live value of each slot
// passed to reclaim.
func (t *Tracked[T]) CleanFunc(reclaim func(id Index, change Change, value T) bool) []Index {
	if reclaim == nil {
		return nil
	}
	return t.Clean(func(id Index) bool {
		return reclaim(id, t.log.At(id), t.live.Get(id))
	})
}

// Dirty returns the ids currently inserted or modified and still live.
func (t *Tracked[T]) Dirty() ReadOnlySet {
	return &t.dirty
}

// Events yields (id, change) for every slot touched this epoch in ascending
// id order. The sequence does not consume anything and replays identically
// until the next mutation.
func (t *Tracked[T]) Events() iter.Seq2[Index, Change] {
	return t.log.Events()
}

// Change returns the change recorded for id this epoch.
func (t *Tracked[T]) Change(id Index) Change {
	return t.log.At(id)
}

func (t *Tracked[T]) logOperation(op string, scanned, changed int, start time.Time, err error) {
	t.cfg.logger.LogOperation(OperationLogEvent{
		Op:       op,
		Tracker:  t.cfg.name,
		Epoch:    t.epoch.ID,
		EpochSeq: t.epoch.Seq,
		Scanned:  scanned,
		Changed:  changed,
		Duration: t.cfg.now().Sub(start),
		Err:      err,
	})
}

// Counts returns the number of events per change kind this epoch.
func (t *Tracked[T]) Counts() map[Change]int {
	return t.log.Count()
}

// DirtyLen returns the size of the dirty set.
func (t *Tracked[T]) DirtyLen() int {
	return t.dirty.Len()
}
