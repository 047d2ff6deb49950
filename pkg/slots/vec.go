package slots

import "github.com/bits-and-blooms/bitset"

// VecStore indexes values directly by id. It suits id spaces that are mostly
// populated; memory grows with the highest id ever inserted.
type VecStore[T any] struct {
	data    []T
	present bitset.BitSet
}

// NewVecStore returns an empty VecStore.
func NewVecStore[T any]() *VecStore[T] {
	return &VecStore[T]{}
}

// Vec is a Factory for VecStore.
func Vec[T any]() Backend[T] {
	return NewVecStore[T]()
}

func (s *VecStore[T]) Has(id Index) bool {
	return s.present.Test(uint(id))
}

func (s *VecStore[T]) Get(id Index) T {
	if !s.Has(id) {
		missing("get", id)
	}
	return s.data[id]
}

func (s *VecStore[T]) GetMut(id Index) *T {
	if !s.Has(id) {
		missing("get_mut", id)
	}
	return &s.data[id]
}

func (s *VecStore[T]) Insert(id Index, value T) {
	if need := int(id) + 1; need > len(s.data) {
		s.data = append(s.data, make([]T, need-len(s.data))...)
	}
	s.data[id] = value
	s.present.Set(uint(id))
}

func (s *VecStore[T]) Remove(id Index) T {
	if !s.Has(id) {
		missing("remove", id)
	}
	value := s.data[id]
	var zero T
	s.data[id] = zero
	s.present.Clear(uint(id))
	return value
}

func (s *VecStore[T]) Clean(reclaim func(Index) bool) {
	if reclaim == nil {
		return
	}
	for i, ok := s.present.NextSet(0); ok; i, ok = s.present.NextSet(i + 1) {
		if reclaim(Index(i)) {
			s.Remove(Index(i))
		}
	}
}

func (s *VecStore[T]) Len() int {
	return int(s.present.Count())
}
