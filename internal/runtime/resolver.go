package runtime

import (
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/registry"
)

// Step is one annotator invocation in a Plan.
type Step struct {
	View      string `json:"view"`
	Annotator string `json:"annotator"`
	// Requested is the goal whose expansion first pulled this step in.
	Requested string `json:"requested"`
}

// Plan is the ordered list of annotators that makes every requested view present.
type Plan struct {
	Requested []string `json:"requested"`
	Steps     []Step   `json:"steps"`
}

// Views returns the produced view names in execution order.
func (p *Plan) Views() []string {
	out := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		out[i] = s.View
	}
	return out
}

// Empty reports whether there is nothing to run.
func (p *Plan) Empty() bool { return len(p.Steps) == 0 }

// Resolve computes the minimal, dependency-respecting execution order for requested.
//
// Goals and prerequisites are expanded depth first in registration order, so a fixed
// snapshot always yields the same plan. Views for which present returns true are left
// out together with their prerequisites. A nil present treats the document as empty.
func Resolve(snap registry.Snapshot, requested []string, present func(string) bool) (*Plan, error) {
	if present == nil {
		present = func(string) bool { return false }
	}

	goals := dedupe(requested)
	for _, g := range goals {
		if _, ok := snap.Lookup(g); !ok {
			return nil, &domain.ResolutionError{
				Kind:      domain.ErrUnresolvableView,
				View:      g,
				Requested: g,
				Path:      []string{g},
			}
		}
	}
	goals = snap.SortByRegistration(goals)

	r := &resolution{
		snap:    snap,
		present: present,
		planned: make(map[string]bool),
		onStack: make(map[string]bool),
	}
	plan := &Plan{Requested: goals, Steps: []Step{}}
	for _, g := range goals {
		r.goal = g
		if err := r.visit(g); err != nil {
			return nil, err
		}
	}
	plan.Steps = r.steps
	if plan.Steps == nil {
		plan.Steps = []Step{}
	}
	return plan, nil
}

type resolution struct {
	snap    registry.Snapshot
	present func(string) bool

	goal    string
	planned map[string]bool
	onStack map[string]bool
	stack   []string
	steps   []Step
}

func (r *resolution) visit(view string) error {
	if r.planned[view] || r.present(view) {
		return nil
	}
	if r.onStack[view] {
		return &domain.ResolutionError{
			Kind:      domain.ErrCyclicDependency,
			View:      view,
			Requested: r.goal,
			Path:      r.path(view),
		}
	}
	a, ok := r.snap.Lookup(view)
	if !ok {
		return &domain.ResolutionError{
			Kind:      domain.ErrUnresolvableView,
			View:      view,
			Requested: r.goal,
			Path:      r.path(view),
		}
	}

	r.onStack[view] = true
	r.stack = append(r.stack, view)
	for _, pre := range r.snap.SortByRegistration(a.Prerequisites()) {
		if err := r.visit(pre); err != nil {
			return err
		}
	}
	r.stack = r.stack[:len(r.stack)-1]
	r.onStack[view] = false

	r.planned[view] = true
	r.steps = append(r.steps, Step{View: view, Annotator: a.Name(), Requested: r.goal})
	return nil
}

func (r *resolution) path(view string) []string {
	out := make([]string, 0, len(r.stack)+1)
	out = append(out, r.stack...)
	return append(out, view)
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
