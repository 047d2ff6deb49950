package tracked

import (
	"iter"

	"github.com/bits-and-blooms/bitset"
)

// ReadOnlySet is the view of a Set handed to consumers.
type ReadOnlySet interface {
	Contains(id Index) bool
	Len() int
	All() iter.Seq[Index]
}

// Set is a sparse set of slot ids backed by a bitset. Iteration is always in
// ascending order. The zero value is an empty set.
type Set struct {
	bits bitset.BitSet
}

// NewSet returns a set holding ids.
func NewSet(ids ...Index) *Set {
	s := &Set{}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id and reports whether it was absent.
func (s *Set) Add(id Index) bool {
	if s.bits.Test(uint(id)) {
		return false
	}
	s.bits.Set(uint(id))
	return true
}

// Remove deletes id and reports whether it was present.
func (s *Set) Remove(id Index) bool {
	if !s.bits.Test(uint(id)) {
		return false
	}
	s.bits.Clear(uint(id))
	return true
}

// Contains reports whether id is in the set.
func (s *Set) Contains(id Index) bool {
	if s == nil {
		return false
	}
	return s.bits.Test(uint(id))
}

// Len returns the number of ids in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return int(s.bits.Count())
}

// Clear empties the set, keeping its capacity.
func (s *Set) Clear() {
	s.bits.ClearAll()
}

// All yields the ids in ascending order.
func (s *Set) All() iter.Seq[Index] {
	return func(yield func(Index) bool) {
		if s == nil {
			return
		}
		for i, ok := s.bits.NextSet(0); ok; i, ok = s.bits.NextSet(i + 1) {
			if !yield(Index(i)) {
				return
			}
		}
	}
}

// Slice returns the ids in ascending order.
func (s *Set) Slice() []Index {
	out := make([]Index, 0, s.Len())
	for id := range s.All() {
		out = append(out, id)
	}
	return out
}

// Clone returns an independent copy of the set.
func (s *Set) Clone() *Set {
	if s == nil {
		return &Set{}
	}
	return &Set{bits: *s.bits.Clone()}
}
