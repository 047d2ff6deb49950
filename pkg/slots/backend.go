// Package slots provides raw slot-indexed value stores.
//
// A Backend does no bookkeeping beyond holding values: it trusts the caller to
// only read or remove ids it has inserted. Breaking that rule panics with a
// *MissingSlotError rather than returning a zero value, since a missing slot
// means the owning layer lost track of liveness.
//
// Three layouts are provided:
//
//	DenseStore  packed values plus an id->position index (arena + index)
//	VecStore    values indexed directly by id, presence kept in a bitset
//	MapStore    hash map keyed by id, for very sparse id spaces
package slots

import (
	"errors"
	"fmt"
)

// Index addresses one slot.
type Index = uint32

// ErrMissingSlot is wrapped by every *MissingSlotError.
var ErrMissingSlot = errors.New("slots: slot not populated")

// MissingSlotError is the panic value used when a caller reads or removes an
// id that holds no value.
type MissingSlotError struct {
	Op string
	ID Index
}

func (e *MissingSlotError) Error() string {
	return fmt.Sprintf("slots: %s slot %d: not populated", e.Op, e.ID)
}

func (e *MissingSlotError) Unwrap() error {
	return ErrMissingSlot
}

// Backend is the capability a tracking layer needs from a raw store.
type Backend[T any] interface {
	// Get returns the value at id. id must be populated.
	Get(id Index) T
	// GetMut returns a pointer to the value at id for in-place mutation. The
	// pointer is valid until the next Insert, Remove or Clean. id must be
	// populated.
	GetMut(id Index) *T
	// Insert stores value at id, replacing any previous value.
	Insert(id Index, value T)
	// Remove deletes and returns the value at id. id must be populated.
	Remove(id Index) T
	// Clean drops every populated id for which reclaim returns true.
	Clean(reclaim func(Index) bool)
	// Has reports whether id is populated.
	Has(id Index) bool
	// Len returns the number of populated slots.
	Len() int
}

// Factory builds an empty backend.
type Factory[T any] func() Backend[T]

func missing(op string, id Index) {
	panic(&MissingSlotError{Op: op, ID: id})
}
