// Package seen persists the links that have already been notified so that a
// program is announced only once across runs.
package seen

import (
	"context"
)

// SeenSet is an ordered collection of notified links with constant-time
// membership checks. It is not safe for concurrent use.
type SeenSet struct {
	links []string
	index map[string]struct{}
}

// NewSeenSet builds a set from links, keeping their order
func NewSeenSet(links ...string) *SeenSet {
	s := &SeenSet{
		links: make([]string, 0, len(links)),
		index: make(map[string]struct{}, len(links)),
	}
	for _, link := range links {
		s.Record(link)
	}
	return s
}

// Contains reports whether link was already recorded
func (s *SeenSet) Contains(link string) bool {
	_, ok := s.index[link]
	return ok
}

// Record appends link. Callers check Contains first.
func (s *SeenSet) Record(link string) {
	s.links = append(s.links, link)
	s.index[link] = struct{}{}
}

// Links returns a copy of the recorded links in insertion order
func (s *SeenSet) Links() []string {
	out := make([]string, len(s.links))
	copy(out, s.links)
	return out
}

// Len returns the number of recorded links
func (s *SeenSet) Len() int {
	return len(s.links)
}

// Store loads and saves the seen set
type Store interface {
	// Load returns the persisted set. A missing or corrupt store yields an
	// empty set. A store that cannot be reached is an error.
	Load(ctx context.Context) (*SeenSet, error)

	// Save overwrites the persisted state with the full set
	Save(ctx context.Context, set *SeenSet) error
}
