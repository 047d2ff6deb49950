package slots

// DenseStore keeps values packed in insertion order with an id->position
// index, so iteration over values touches no holes. Removal swaps the last
// value into the freed position.
type DenseStore[T any] struct {
	data []T
	ids  []Index
	// pos[id] is the position of id in data plus one; zero means absent.
	pos []uint32
}

// NewDenseStore returns an empty DenseStore.
func NewDenseStore[T any]() *DenseStore[T] {
	return &DenseStore[T]{}
}

// Dense is a Factory for DenseStore.
func Dense[T any]() Backend[T] {
	return NewDenseStore[T]()
}

func (s *DenseStore[T]) position(id Index) (int, bool) {
	if int(id) >= len(s.pos) || s.pos[id] == 0 {
		return 0, false
	}
	return int(s.pos[id] - 1), true
}

func (s *DenseStore[T]) Has(id Index) bool {
	_, ok := s.position(id)
	return ok
}

func (s *DenseStore[T]) Get(id Index) T {
	p, ok := s.position(id)
	if !ok {
		missing("get", id)
	}
	return s.data[p]
}

func (s *DenseStore[T]) GetMut(id Index) *T {
	p, ok := s.position(id)
	if !ok {
		missing("get_mut", id)
	}
	return &s.data[p]
}

func (s *DenseStore[T]) Insert(id Index, value T) {
	if p, ok := s.position(id); ok {
		s.data[p] = value
		return
	}
	if need := int(id) + 1; need > len(s.pos) {
		s.pos = append(s.pos, make([]uint32, need-len(s.pos))...)
	}
	s.data = append(s.data, value)
	s.ids = append(s.ids, id)
	s.pos[id] = uint32(len(s.data))
}

func (s *DenseStore[T]) Remove(id Index) T {
	p, ok := s.position(id)
	if !ok {
		missing("remove", id)
	}
	value := s.data[p]
	last := len(s.data) - 1
	if p != last {
		s.data[p] = s.data[last]
		s.ids[p] = s.ids[last]
		s.pos[s.ids[p]] = uint32(p + 1)
	}
	var zero T
	s.data[last] = zero
	s.data = s.data[:last]
	s.ids = s.ids[:last]
	s.pos[id] = 0
	return value
}

func (s *DenseStore[T]) Clean(reclaim func(Index) bool) {
	if reclaim == nil {
		return
	}
	for p := len(s.ids) - 1; p >= 0; p-- {
		if id := s.ids[p]; reclaim(id) {
			s.Remove(id)
		}
	}
}

func (s *DenseStore[T]) Len() int {
	return len(s.data)
}

// Values returns the packed values. The slice is owned by the store.
func (s *DenseStore[T]) Values() []T {
	return s.data
}
