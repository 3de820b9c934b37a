package handler

import "sync"

// Keyed is implemented by every [State].
type Keyed interface {
	Key() Key
}

// Set tracks states by [State.Key]. Equal states share one slot; the
// slot counts how many of them were added and not yet removed.
type Set struct {
	mu     sync.Mutex
	counts map[Key]int
	total  int
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{counts: make(map[Key]int)}
}

// Add inserts st and reports whether no equal state was present.
func (s *Set) Add(st Keyed) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := st.Key()
	s.counts[k]++
	s.total++

	return s.counts[k] == 1
}

// Remove drops one occurrence of the state equal to st, if any.
func (s *Set) Remove(st Keyed) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := st.Key()
	n, ok := s.counts[k]
	if !ok {
		return
	}

	s.total--
	if n == 1 {
		delete(s.counts, k)
		return
	}
	s.counts[k] = n - 1
}

// Contains reports whether a state equal to st is present.
func (s *Set) Contains(st Keyed) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.counts[st.Key()]

	return ok
}

// Len returns the number of distinct keys held.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.counts)
}

// Count returns the number of states held, equal ones included.
func (s *Set) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.total
}
