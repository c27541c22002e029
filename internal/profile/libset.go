package profile

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// LibrarySet is a deduplicated list of library file names that keeps the
// order in which names were first added.
type LibrarySet struct {
	m *orderedmap.OrderedMap[string, struct{}]
}

// NewLibrarySet returns an empty set.
func NewLibrarySet() *LibrarySet {
	return &LibrarySet{m: orderedmap.New[string, struct{}]()}
}

// Add inserts name and reports whether it was new.
func (s *LibrarySet) Add(name string) bool {
	if name == "" {
		return false
	}
	_, present := s.m.Set(name, struct{}{})
	return !present
}

// Len returns the number of distinct names.
func (s *LibrarySet) Len() int {
	return s.m.Len()
}

// Names returns the entries in insertion order.
func (s *LibrarySet) Names() []string {
	out := make([]string, 0, s.m.Len())
	for pair := s.m.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}
