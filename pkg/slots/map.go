package slots

// MapStore keeps values in a hash map. Values are boxed so GetMut can hand
// out stable pointers.
type MapStore[T any] struct {
	records map[Index]*T
}

// NewMapStore returns an empty MapStore.
func NewMapStore[T any]() *MapStore[T] {
	return &MapStore[T]{records: map[Index]*T{}}
}

// Map is a Factory for MapStore.
func Map[T any]() Backend[T] {
	return NewMapStore[T]()
}

func (s *MapStore[T]) Has(id Index) bool {
	_, ok := s.records[id]
	return ok
}

func (s *MapStore[T]) Get(id Index) T {
	record, ok := s.records[id]
	if !ok {
		missing("get", id)
	}
	return *record
}

func (s *MapStore[T]) GetMut(id Index) *T {
	record, ok := s.records[id]
	if !ok {
		missing("get_mut", id)
	}
	return record
}

func (s *MapStore[T]) Insert(id Index, value T) {
	if s.records == nil {
		s.records = map[Index]*T{}
	}
	if record, ok := s.records[id]; ok {
		*record = value
		return
	}
	s.records[id] = &value
}

func (s *MapStore[T]) Remove(id Index) T {
	record, ok := s.records[id]
	if !ok {
		missing("remove", id)
	}
	delete(s.records, id)
	return *record
}

func (s *MapStore[T]) Clean(reclaim func(Index) bool) {
	if reclaim == nil {
		return
	}
	for id := range s.records {
		if reclaim(id) {
			delete(s.records, id)
		}
	}
}

func (s *MapStore[T]) Len() int {
	return len(s.records)
}
