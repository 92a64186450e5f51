package registry

import (
	"sync"

	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/ports"
)

// Registry maps each produced view name to the single annotator that provides it.
//
// Register enforces that every prerequisite is already registered, so the registration
// order is always a valid topological order and the registry can never hold a cycle.
// Safe for concurrent use; resolution should work on a Snapshot.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]ports.Annotator
	order     []string
}

// New creates a new empty registry.
func New() *Registry {
	return &Registry{
		providers: make(map[string]ports.Annotator),
	}
}

// Register adds an annotator to the registry.
// A failed registration leaves the registry untouched.
func (r *Registry) Register(a ports.Annotator) error {
	if a == nil {
		return &domain.RegistrationError{Kind: domain.ErrInvalidAnnotator, Annotator: "<nil>"}
	}
	view := a.ViewName()
	if view == "" {
		return &domain.RegistrationError{Kind: domain.ErrInvalidAnnotator, Annotator: a.Name()}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.providers[view]; ok {
		return &domain.RegistrationError{
			Kind:      domain.ErrDuplicateProvider,
			View:      view,
			Annotator: a.Name(),
			Existing:  existing.Name(),
		}
	}

	var missing []string
	for _, pre := range a.Prerequisites() {
		if _, ok := r.providers[pre]; !ok {
			missing = append(missing, pre)
		}
	}
	if len(missing) > 0 {
		return &domain.RegistrationError{
			Kind:      domain.ErrUnsatisfiedDependency,
			View:      view,
			Annotator: a.Name(),
			Missing:   missing,
		}
	}

	r.providers[view] = a
	r.order = append(r.order, view)
	return nil
}

// Available returns the produced view names in registration order.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Lookup returns the annotator producing view.
func (r *Registry) Lookup(view string) (ports.Annotator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.providers[view]
	return a, ok
}

// Len returns the number of registered annotators.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Snapshot returns an immutable copy of the registry taken atomically.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := Snapshot{
		providers: make(map[string]ports.Annotator, len(r.providers)),
		index:     make(map[string]int, len(r.order)),
		order:     make([]string, len(r.order)),
	}
	copy(s.order, r.order)
	for i, view := range r.order {
		s.providers[view] = r.providers[view]
		s.index[view] = i
	}
	return s
}

// Entries lists every registration in order, for inspection and graph export.
func (r *Registry) Entries() []Entry {
	return r.Snapshot().Entries()
}
