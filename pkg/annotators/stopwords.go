package annotators

import (
	"context"
	"strings"
	"unicode"

	"github.com/aretw0/strata/pkg/domain"
)

// StopwordTagger produces STOPWORDS from the NORMALIZED view.
// Punctuation, pure numbers, tokens shorter than MinLength and listed terms are stopwords.
type StopwordTagger struct {
	stops     map[string]struct{}
	minLength int
}

// StopwordOptions configures a StopwordTagger. The same keys are accepted per call
// through the runtime config, where Terms extends the configured list.
type StopwordOptions struct {
	Terms     []string `yaml:"terms" mapstructure:"terms"`
	MinLength int      `yaml:"min_length" mapstructure:"min_length"`
}

// NewStopwordTagger creates a StopwordTagger.
func NewStopwordTagger(opts StopwordOptions) *StopwordTagger {
	stops := make(map[string]struct{}, len(opts.Terms))
	for _, w := range opts.Terms {
		stops[strings.ToLower(w)] = struct{}{}
	}
	minLen := opts.MinLength
	if minLen <= 0 {
		minLen = 2
	}
	return &StopwordTagger{stops: stops, minLength: minLen}
}

func (s *StopwordTagger) Name() string            { return "stopword-tagger" }
func (s *StopwordTagger) ViewName() string        { return domain.ViewStopwords }
func (s *StopwordTagger) Prerequisites() []string { return []string{domain.ViewNormalized} }

// Annotate returns a Stopwords payload.
func (s *StopwordTagger) Annotate(ctx context.Context, doc *domain.Document, cfg domain.RuntimeConfig) (any, error) {
	tokens, err := NormalizedTokens(doc)
	if err != nil {
		return nil, err
	}

	var extra StopwordOptions
	if err := cfg.Decode(&extra); err != nil {
		return nil, err
	}
	minLen := s.minLength
	if extra.MinLength > 0 {
		minLen = extra.MinLength
	}
	callStops := make(map[string]struct{}, len(extra.Terms))
	for _, w := range extra.Terms {
		callStops[strings.ToLower(w)] = struct{}{}
	}

	out := Stopwords{Indexes: []int{}}
	for i, tok := range tokens {
		if s.isStop(tok, minLen) {
			out.Indexes = append(out.Indexes, i)
			continue
		}
		if _, ok := callStops[tok]; ok {
			out.Indexes = append(out.Indexes, i)
		}
	}
	return out, nil
}

func (s *StopwordTagger) isStop(tok string, minLen int) bool {
	if len([]rune(tok)) < minLen || !hasLetter(tok) {
		return true
	}
	_, ok := s.stops[tok]
	return ok
}

// hasLetter rejects punctuation and pure-numeric tokens while keeping "gpt-4" or "utf-8".
func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
