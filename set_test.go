package tracked

import (
	"slices"
	"testing"
)

func TestSetAddRemoveContains(t *testing.T) {
	var s Set
	if !s.Add(5) || s.Add(5) {
		t.Fatalf("expected first add to report true and second false")
	}
	s.Add(1000)
	s.Add(0)
	if s.Len() != 3 || !s.Contains(1000) || s.Contains(6) {
		t.Fatalf("unexpected membership, len=%d", s.Len())
	}
	if !s.Remove(5) || s.Remove(5) {
		t.Fatalf("expected first remove to report true and second false")
	}
	if got := s.Slice(); !slices.Equal(got, []Index{0, 1000}) {
		t.Fatalf("expected ascending ids, got %v", got)
	}
}

func TestSetIterationAndClone(t *testing.T) {
	s := NewSet(9, 3, 7, 3)
	var seen []Index
	for id := range s.All() {
		seen = append(seen, id)
		if id == 7 {
			break
		}
	}
	if !slices.Equal(seen, []Index{3, 7}) {
		t.Fatalf("expected early stop after 7, got %v", seen)
	}

	clone := s.Clone()
	clone.Add(1)
	if s.Contains(1) || clone.Len() != 4 {
		t.Fatalf("clone must be independent")
	}

	s.Clear()
	if s.Len() != 0 || len(s.Slice()) != 0 {
		t.Fatalf("expected empty set after clear")
	}
}

func TestNilSetReads(t *testing.T) {
	var s *Set
	if s.Contains(1) || s.Len() != 0 {
		t.Fatalf("nil set must read as empty")
	}
	for range s.All() {
		t.Fatalf("nil set must not yield")
	}
	if s.Clone().Len() != 0 {
		t.Fatalf("clone of nil set must be empty")
	}
}
