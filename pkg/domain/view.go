package domain

import "time"

// View is one named annotation layer attached to a Document.
// The core never interprets Payload; its structure belongs to the producing annotator.
type View struct {
	Name       string    `json:"name"`
	Producer   string    `json:"producer"`
	Generation uint64    `json:"generation"`
	RunID      string    `json:"run_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	Payload    any       `json:"payload,omitempty"`
}

// ViewSet maps present view names to the generation they were written at.
type ViewSet map[string]uint64

// Has reports whether name is in the set.
func (s ViewSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}
