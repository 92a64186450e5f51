package registry

import (
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/ports"
)

// Build creates a registry from annotators given in any order.
//
// The annotators are sorted so that every prerequisite comes before its dependents,
// keeping the input order wherever the dependencies allow it, and then registered one
// by one. Duplicates, missing providers and cycles are reported before anything is
// registered.
func Build(annotators ...ports.Annotator) (*Registry, error) {
	byView := make(map[string]ports.Annotator, len(annotators))
	position := make(map[string]int, len(annotators))
	for i, a := range annotators {
		if a == nil || a.ViewName() == "" {
			name := "<nil>"
			if a != nil {
				name = a.Name()
			}
			return nil, &domain.RegistrationError{Kind: domain.ErrInvalidAnnotator, Annotator: name}
		}
		view := a.ViewName()
		if existing, ok := byView[view]; ok {
			return nil, &domain.RegistrationError{
				Kind:      domain.ErrDuplicateProvider,
				View:      view,
				Annotator: a.Name(),
				Existing:  existing.Name(),
			}
		}
		byView[view] = a
		position[view] = i
	}

	for _, a := range annotators {
		var missing []string
		for _, pre := range a.Prerequisites() {
			if _, ok := byView[pre]; !ok {
				missing = append(missing, pre)
			}
		}
		if len(missing) > 0 {
			return nil, &domain.RegistrationError{
				Kind:      domain.ErrUnsatisfiedDependency,
				View:      a.ViewName(),
				Annotator: a.Name(),
				Missing:   missing,
			}
		}
	}

	var (
		order   []string
		done    = make(map[string]bool, len(annotators))
		onStack = make(map[string]bool)
		stack   []string
	)

	var visit func(view string) error
	visit = func(view string) error {
		if done[view] {
			return nil
		}
		if onStack[view] {
			return cycleError(stack, view)
		}
		onStack[view] = true
		stack = append(stack, view)

		pre := append([]string(nil), byView[view].Prerequisites()...)
		sortByPosition(pre, position)
		for _, p := range pre {
			if err := visit(p); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		onStack[view] = false
		done[view] = true
		order = append(order, view)
		return nil
	}

	for _, a := range annotators {
		if err := visit(a.ViewName()); err != nil {
			return nil, err
		}
	}

	r := New()
	for _, view := range order {
		if err := r.Register(byView[view]); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func cycleError(stack []string, view string) error {
	start := 0
	for i, v := range stack {
		if v == view {
			start = i
			break
		}
	}
	path := append(append([]string(nil), stack[start:]...), view)
	return &domain.ResolutionError{
		Kind:      domain.ErrCyclicDependency,
		View:      view,
		Requested: path[0],
		Path:      path,
	}
}

func sortByPosition(views []string, position map[string]int) {
	for i := 1; i < len(views); i++ {
		for j := i; j > 0 && position[views[j]] < position[views[j-1]]; j-- {
			views[j], views[j-1] = views[j-1], views[j]
		}
	}
}
