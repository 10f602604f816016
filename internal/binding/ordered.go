package binding

// OrderedSet is a set that remembers insertion order. Add reports whether
// the key was new, which is how every first-occurrence-wins rule in the
// engine is expressed.
type OrderedSet[K comparable] struct {
	index map[K]int
	keys  []K
}

// NewOrderedSet creates an empty set.
func NewOrderedSet[K comparable]() *OrderedSet[K] {
	return &OrderedSet[K]{index: make(map[K]int)}
}

// Add inserts k if absent. Returns true if k was not already present.
func (s *OrderedSet[K]) Add(k K) bool {
	if _, ok := s.index[k]; ok {
		return false
	}
	s.index[k] = len(s.keys)
	s.keys = append(s.keys, k)
	return true
}

// Has reports whether k is present.
func (s *OrderedSet[K]) Has(k K) bool {
	_, ok := s.index[k]
	return ok
}

// Position returns the insertion index of k, or -1.
func (s *OrderedSet[K]) Position(k K) int {
	if i, ok := s.index[k]; ok {
		return i
	}
	return -1
}

// Keys returns the keys in insertion order. The slice must not be modified.
func (s *OrderedSet[K]) Keys() []K { return s.keys }

// Len returns the number of keys.
func (s *OrderedSet[K]) Len() int { return len(s.keys) }
