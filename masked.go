package tracked

import (
	"context"
	"iter"
	"sync"

	"github.com/goliatone/go-tracked/pkg/slots"
)

// Masked owns a liveness mask alongside a Tracked store, so callers can insert
// and remove without checking whether a slot holds a value first. It is safe
// for concurrent use.
//
// Inserting over a live slot overwrites the value in place. No structural
// event is recorded; the next Maintain reports the slot as modified when the
// new value differs from the snapshot.
type Masked[T any] struct {
	mu      sync.RWMutex
	mask    Set
	tracked *Tracked[T]
}

// NewMasked returns an empty store over backend. backend must be empty.
func NewMasked[T any](backend slots.Backend[T], opts ...Option[T]) *Masked[T] {
	return &Masked[T]{tracked: New(backend, opts...)}
}

// NewMaskedComparable returns an empty store that detects modifications with ==.
func NewMaskedComparable[T comparable](backend slots.Backend[T], opts ...Option[T]) *Masked[T] {
	return &Masked[T]{tracked: NewComparable(backend, opts...)}
}

// Name returns the label set with WithName.
func (m *Masked[T]) Name() string {
	return m.tracked.Name()
}

// Epoch returns the epoch currently open.
func (m *Masked[T]) Epoch() Epoch {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tracked.Epoch()
}

// Insert stores value at id. When id was live the previous value is returned
// with replaced set to true.
func (m *Masked[T]) Insert(id Index, value T) (old T, replaced bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mask.Contains(id) {
		slot := m.tracked.GetMut(id)
		old, *slot = *slot, value
		return old, true
	}
	m.mask.Add(id)
	m.tracked.Insert(id, value)
	return old, false
}

// Remove deletes the value at id. It reports false when id was not live.
func (m *Masked[T]) Remove(id Index) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.mask.Remove(id) {
		var zero T
		return zero, false
	}
	return m.tracked.Remove(id), true
}

// Get returns the value at id.
func (m *Masked[T]) Get(id Index) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.mask.Contains(id) {
		var zero T
		return zero, false
	}
	return m.tracked.Get(id), true
}

// Modify runs fn on the value at id in place. It reports false when id was not
// live. The change is picked up by the next Maintain.
func (m *Masked[T]) Modify(id Index, fn func(*T)) bool {
	if fn == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.mask.Contains(id) {
		return false
	}
	fn(m.tracked.GetMut(id))
	return true
}

// Contains reports whether id holds a value.
func (m *Masked[T]) Contains(id Index) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mask.Contains(id)
}

// Len returns the number of live slots.
func (m *Masked[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mask.Len()
}

// Mask returns a copy of the liveness mask.
func (m *Masked[T]) Mask() *Set {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mask.Clone()
}

// CanMaintain reports whether Maintain can detect in-place modifications.
func (m *Masked[T]) CanMaintain() bool {
	return m.tracked.CanMaintain()
}

// Maintain compares every live value with its snapshot. See Tracked.Maintain.
func (m *Masked[T]) Maintain() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tracked.Maintain(m.mask.All())
}

// Reset closes the epoch. See Tracked.Reset.
func (m *Masked[T]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracked.Reset()
}

// Clean reclaims every live slot for which reclaim returns true and returns
// the reclaimed ids in ascending order. reclaim runs under the write lock and
// must not call back into m.
func (m *Masked[T]) Clean(reclaim func(Index) bool) []Index {
	if reclaim == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	reclaimed := m.tracked.Clean(reclaim)
	for _, id := range reclaimed {
		m.mask.Remove(id)
	}
	return reclaimed
}

// CleanFunc is Clean with the recorded change and value of each slot passed
// to reclaim. reclaim runs under the write lock and must not call back into m.
func (m *Masked[T]) CleanFunc(reclaim func(id Index, change Change, value T) bool) []Index {
	if reclaim == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	reclaimed := m.tracked.CleanFunc(reclaim)
	for _, id := range reclaimed {
		m.mask.Remove(id)
	}
	return reclaimed
}

// Dirty returns a copy of the dirty set.
func (m *Masked[T]) Dirty() *Set {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tracked.dirty.Clone()
}

// Change returns the change recorded for id this epoch.
func (m *Masked[T]) Change(id Index) Change {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tracked.Change(id)
}

// Events yields the events of the current epoch as they were when iteration
// started. The loop body may mutate the store.
func (m *Masked[T]) Events() iter.Seq2[Index, Change] {
	return func(yield func(Index, Change) bool) {
		m.mu.RLock()
		events := CollectEvents(m.tracked.Events())
		m.mu.RUnlock()
		for _, event := range events {
			if !yield(event.ID, event.Change) {
				return
			}
		}
	}
}

// Changed yields every dirty id with its current value, in ascending id
// order, as they were when iteration started.
func (m *Masked[T]) Changed() iter.Seq2[Index, T] {
	return func(yield func(Index, T) bool) {
		m.mu.RLock()
		ids := m.tracked.dirty.Slice()
		values := make([]T, len(ids))
		for i, id := range ids {
			values[i] = m.tracked.Get(id)
		}
		m.mu.RUnlock()
		for i, id := range ids {
			if !yield(id, values[i]) {
				return
			}
		}
	}
}

// Publish forwards the current events to the configured activity hooks. The
// read lock is held while hooks run, so hooks must not write to the store.
func (m *Masked[T]) Publish(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tracked.Publish(ctx)
}

// Counts returns the number of events per change kind this epoch.
func (m *Masked[T]) Counts() map[Change]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tracked.Counts()
}

// DirtyLen returns the size of the dirty set.
func (m *Masked[T]) DirtyLen() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tracked.DirtyLen()
}
