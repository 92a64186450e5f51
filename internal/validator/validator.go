package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/ports"
)

// Issue is one problem found in a set of annotators.
type Issue struct {
	Kind      error
	View      string
	Annotator string
	Detail    string
}

func (i Issue) String() string {
	return fmt.Sprintf("%v: %s (view %q): %s", i.Kind, i.Annotator, i.View, i.Detail)
}

// ValidateAnnotators checks a set of annotators, given in any order, for invalid
// entries, duplicate providers, missing prerequisites and dependency cycles. Unlike
// registry.Build, which stops at the first problem, it reports all of them.
func ValidateAnnotators(annotators []ports.Annotator) []Issue {
	var issues []Issue
	byView := make(map[string]ports.Annotator, len(annotators))
	var views []string

	for i, a := range annotators {
		if a == nil || a.ViewName() == "" {
			name := fmt.Sprintf("#%d", i)
			if a != nil {
				name = a.Name()
			}
			issues = append(issues, Issue{Kind: domain.ErrInvalidAnnotator, Annotator: name, Detail: "no view name"})
			continue
		}
		view := a.ViewName()
		if existing, ok := byView[view]; ok {
			issues = append(issues, Issue{
				Kind:      domain.ErrDuplicateProvider,
				View:      view,
				Annotator: a.Name(),
				Detail:    "already provided by " + existing.Name(),
			})
			continue
		}
		byView[view] = a
		views = append(views, view)
	}

	for _, view := range views {
		a := byView[view]
		for _, pre := range a.Prerequisites() {
			if _, ok := byView[pre]; !ok {
				issues = append(issues, Issue{
					Kind:      domain.ErrUnsatisfiedDependency,
					View:      view,
					Annotator: a.Name(),
					Detail:    fmt.Sprintf("no provider for prerequisite %q", pre),
				})
			}
		}
	}

	for _, cycle := range findCycles(views, byView) {
		a := byView[cycle[0]]
		issues = append(issues, Issue{
			Kind:      domain.ErrCyclicDependency,
			View:      cycle[0],
			Annotator: a.Name(),
			Detail:    strings.Join(cycle, " -> "),
		})
	}
	return issues
}

// Err folds issues into a single error, or nil when there are none.
func Err(issues []Issue) error {
	if len(issues) == 0 {
		return nil
	}
	lines := make([]string, len(issues))
	for i, is := range issues {
		lines[i] = is.String()
	}
	return fmt.Errorf("found %d errors:\n- %s", len(issues), strings.Join(lines, "\n- "))
}

// findCycles returns each elementary cycle reached by DFS once, rotated to start at
// its smallest view name so the same cycle found from different entry points is
// reported only once.
func findCycles(views []string, byView map[string]ports.Annotator) [][]string {
	const (
		unvisited = iota
		active
		done
	)
	state := make(map[string]int, len(views))
	var stack []string
	seen := make(map[string]bool)
	var cycles [][]string

	var visit func(string)
	visit = func(view string) {
		state[view] = active
		stack = append(stack, view)
		for _, pre := range byView[view].Prerequisites() {
			if _, ok := byView[pre]; !ok {
				continue
			}
			switch state[pre] {
			case unvisited:
				visit(pre)
			case active:
				start := len(stack) - 1
				for stack[start] != pre {
					start--
				}
				cycle := canonical(stack[start:])
				key := strings.Join(cycle, "\x00")
				if !seen[key] {
					seen[key] = true
					cycles = append(cycles, append(cycle, cycle[0]))
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[view] = done
	}

	for _, v := range views {
		if state[v] == unvisited {
			visit(v)
		}
	}
	sort.Slice(cycles, func(i, j int) bool { return strings.Join(cycles[i], ",") < strings.Join(cycles[j], ",") })
	return cycles
}

func canonical(cycle []string) []string {
	first := 0
	for i, v := range cycle {
		if v < cycle[first] {
			first = i
		}
	}
	out := make([]string, 0, len(cycle))
	out = append(out, cycle[first:]...)
	return append(out, cycle[:first]...)
}
