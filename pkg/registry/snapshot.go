package registry

import (
	"sort"

	"github.com/aretw0/strata/pkg/ports"
)

// Snapshot is a point-in-time, read-only view of a Registry.
// The zero value is an empty snapshot.
type Snapshot struct {
	providers map[string]ports.Annotator
	index     map[string]int
	order     []string
}

// Entry describes one registration.
type Entry struct {
	Index         int
	View          string
	Annotator     string
	Prerequisites []string
}

// Lookup returns the annotator producing view.
func (s Snapshot) Lookup(view string) (ports.Annotator, bool) {
	a, ok := s.providers[view]
	return a, ok
}

// Index returns the registration position of view, or -1 when unknown.
func (s Snapshot) Index(view string) int {
	if i, ok := s.index[view]; ok {
		return i
	}
	return -1
}

// Views returns the produced view names in registration order.
func (s Snapshot) Views() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of registrations.
func (s Snapshot) Len() int { return len(s.order) }

// SortByRegistration orders names by registration index. Unknown names go last,
// keeping their relative order.
func (s Snapshot) SortByRegistration(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := s.Index(out[i]), s.Index(out[j])
		if a < 0 {
			return false
		}
		if b < 0 {
			return true
		}
		return a < b
	})
	return out
}

// Entries lists every registration in order.
func (s Snapshot) Entries() []Entry {
	out := make([]Entry, 0, len(s.order))
	for i, view := range s.order {
		a := s.providers[view]
		pre := a.Prerequisites()
		cp := make([]string, len(pre))
		copy(cp, pre)
		out = append(out, Entry{
			Index:         i,
			View:          view,
			Annotator:     a.Name(),
			Prerequisites: cp,
		})
	}
	return out
}
