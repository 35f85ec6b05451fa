package physics

// IDSet is a set of topic ids that remembers insertion order, so that
// anything seeded from it iterates deterministically.
type IDSet struct {
	order []string
	has   map[string]struct{}
}

// NewIDSet creates a set holding ids
func NewIDSet(ids ...string) IDSet {
	s := IDSet{has: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id and reports whether it was new
func (s *IDSet) Add(id string) bool {
	if s.has == nil {
		s.has = make(map[string]struct{})
	}
	if _, ok := s.has[id]; ok {
		return false
	}
	s.has[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// Merge adds every id of other
func (s *IDSet) Merge(other IDSet) {
	for _, id := range other.order {
		s.Add(id)
	}
}

// Has reports membership
func (s IDSet) Has(id string) bool {
	_, ok := s.has[id]
	return ok
}

// Len returns the number of ids
func (s IDSet) Len() int { return len(s.order) }

// IDs returns the ids in insertion order
func (s IDSet) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
