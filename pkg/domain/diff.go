package domain

import "sort"

// ViewDiff represents the changes between two view snapshots of the same document.
// It is designed to be serialized to JSON for clients that track partial updates.
type ViewDiff struct {
	DocumentKey string   `json:"document_key"`
	Added       []string `json:"added,omitempty"`
	Replaced    []string `json:"replaced,omitempty"`
	Removed     []string `json:"removed,omitempty"`
}

// Diff calculates the difference between two snapshots taken with Document.Generations.
// A nil before is treated as empty. It returns nil when nothing changed.
func Diff(key string, before, after ViewSet) *ViewDiff {
	diff := &ViewDiff{DocumentKey: key}

	for name, gen := range after {
		old, ok := before[name]
		switch {
		case !ok:
			diff.Added = append(diff.Added, name)
		case old != gen:
			diff.Replaced = append(diff.Replaced, name)
		}
	}
	for name := range before {
		if _, ok := after[name]; !ok {
			diff.Removed = append(diff.Removed, name)
		}
	}

	if len(diff.Added) == 0 && len(diff.Replaced) == 0 && len(diff.Removed) == 0 {
		return nil
	}

	sort.Strings(diff.Added)
	sort.Strings(diff.Replaced)
	sort.Strings(diff.Removed)
	return diff
}

// Changed lists added and replaced views together, sorted.
func (d *ViewDiff) Changed() []string {
	if d == nil {
		return nil
	}
	out := make([]string, 0, len(d.Added)+len(d.Replaced))
	out = append(out, d.Added...)
	out = append(out, d.Replaced...)
	sort.Strings(out)
	return out
}
