package render

import (
	"sort"
	"strconv"
)

// StretchOp sets or clears the stretch styling of one link
type StretchOp struct {
	LinkID string
	Ratio  float64
	Clear  bool
}

// Value is the CSS value of the --stretch property
func (op StretchOp) Value() string {
	return FormatRatio(op.Ratio)
}

// FormatRatio renders a stretch ratio with three decimals
func FormatRatio(r float64) string {
	return strconv.FormatFloat(r, 'f', 3, 64)
}

// StretchStyles remembers which links are styled as stretched and turns
// each new ratio map into the minimal set of style changes.
type StretchStyles struct {
	active map[string]float64
}

// NewStretchStyles creates an empty tracker
func NewStretchStyles() *StretchStyles {
	return &StretchStyles{active: make(map[string]float64)}
}

// Update replaces the tracked map with current. It returns clears for links
// that are no longer stretched, then sets for links whose displayed ratio
// changed, each group in id order.
func (s *StretchStyles) Update(current map[string]float64) []StretchOp {
	var ops []StretchOp

	for _, id := range sortedKeys(s.active) {
		if _, ok := current[id]; !ok {
			ops = append(ops, StretchOp{LinkID: id, Clear: true})
		}
	}
	for _, id := range sortedKeys(current) {
		next := current[id]
		prev, ok := s.active[id]
		if ok && FormatRatio(prev) == FormatRatio(next) {
			continue
		}
		ops = append(ops, StretchOp{LinkID: id, Ratio: next})
	}

	s.active = make(map[string]float64, len(current))
	for id, r := range current {
		s.active[id] = r
	}
	return ops
}

// Ratio returns the tracked ratio of a link
func (s *StretchStyles) Ratio(id string) (float64, bool) {
	r, ok := s.active[id]
	return r, ok
}

// Active returns a copy of the tracked map
func (s *StretchStyles) Active() map[string]float64 {
	out := make(map[string]float64, len(s.active))
	for id, r := range s.active {
		out[id] = r
	}
	return out
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
