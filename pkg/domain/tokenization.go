package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidTokenization is returned when a supplied tokenization is inconsistent
// with itself or with the text it claims to describe.
var ErrInvalidTokenization = errors.New("invalid tokenization")

// ErrInvalidText is returned when document text is not valid UTF-8.
var ErrInvalidText = errors.New("text is not valid UTF-8")

// Span is a half-open byte range [Start, End) into a Document's text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Tokenization carries tokens, their character offsets and sentence boundaries.
// SentenceEnds holds exclusive token indexes: sentence i covers tokens
// [SentenceEnds[i-1], SentenceEnds[i]).
type Tokenization struct {
	Tokens       []string `json:"tokens"`
	Offsets      []Span   `json:"offsets"`
	SentenceEnds []int    `json:"sentence_ends"`
}

// Validate checks the internal consistency of the tokenization.
// It does not look at the text; builders do that.
func (t *Tokenization) Validate() error {
	if t == nil {
		return fmt.Errorf("%w: nil tokenization", ErrInvalidTokenization)
	}
	if len(t.Tokens) != len(t.Offsets) {
		return fmt.Errorf("%w: %d tokens but %d offsets", ErrInvalidTokenization, len(t.Tokens), len(t.Offsets))
	}
	prev := 0
	for i, end := range t.SentenceEnds {
		if end <= prev {
			return fmt.Errorf("%w: sentence end %d at position %d is not increasing", ErrInvalidTokenization, end, i)
		}
		prev = end
	}
	if prev != len(t.Tokens) {
		return fmt.Errorf("%w: last sentence ends at %d, expected %d", ErrInvalidTokenization, prev, len(t.Tokens))
	}
	for i, off := range t.Offsets {
		if off.Start < 0 || off.End < off.Start {
			return fmt.Errorf("%w: token %d has bad offsets [%d,%d)", ErrInvalidTokenization, i, off.Start, off.End)
		}
	}
	return nil
}

// Sentences returns the token ranges of each sentence.
func (t *Tokenization) Sentences() []Span {
	out := make([]Span, 0, len(t.SentenceEnds))
	start := 0
	for _, end := range t.SentenceEnds {
		out = append(out, Span{Start: start, End: end})
		start = end
	}
	return out
}
