package annotators

import (
	"context"
	"sort"
	"strings"

	"github.com/aretw0/strata/pkg/domain"
)

// EntityTagger produces ENTITIES by matching keyword token sequences over NORMALIZED.
type EntityTagger struct {
	patterns []entityPattern
}

type entityPattern struct {
	typ   string
	value string
	words []string
}

// EntityOptions maps entity type -> entity value -> keywords, e.g.
// tickers: {TSLA: [tesla]}.
type EntityOptions struct {
	Entities map[string]map[string][]string `yaml:"entities" mapstructure:"entities"`
}

// NewEntityTagger creates an EntityTagger. Patterns are tried longest first so
// "new york times" beats "new york".
func NewEntityTagger(opts EntityOptions) *EntityTagger {
	var patterns []entityPattern
	for typ, values := range opts.Entities {
		for value, keywords := range values {
			for _, kw := range keywords {
				words := strings.Fields(strings.ToLower(kw))
				if len(words) == 0 {
					continue
				}
				patterns = append(patterns, entityPattern{typ: typ, value: value, words: words})
			}
		}
	}
	sort.Slice(patterns, func(i, j int) bool {
		a, b := patterns[i], patterns[j]
		if len(a.words) != len(b.words) {
			return len(a.words) > len(b.words)
		}
		if a.typ != b.typ {
			return a.typ < b.typ
		}
		if a.value != b.value {
			return a.value < b.value
		}
		return strings.Join(a.words, " ") < strings.Join(b.words, " ")
	})
	return &EntityTagger{patterns: patterns}
}

func (e *EntityTagger) Name() string            { return "entity-tagger" }
func (e *EntityTagger) ViewName() string        { return domain.ViewEntities }
func (e *EntityTagger) Prerequisites() []string { return []string{domain.ViewNormalized} }

// Annotate returns a []Entity ordered by position; overlapping matches are dropped.
func (e *EntityTagger) Annotate(ctx context.Context, doc *domain.Document, cfg domain.RuntimeConfig) (any, error) {
	tokens, err := NormalizedTokens(doc)
	if err != nil {
		return nil, err
	}

	entities := []Entity{}
	for i := 0; i < len(tokens); {
		found := false
		for _, p := range e.patterns {
			if matchAt(tokens, i, p.words) {
				entities = append(entities, Entity{Type: p.typ, Value: p.value, Start: i, End: i + len(p.words)})
				i += len(p.words)
				found = true
				break
			}
		}
		if !found {
			i++
		}
	}
	return entities, nil
}

func matchAt(tokens []string, i int, words []string) bool {
	if i+len(words) > len(tokens) {
		return false
	}
	for k, w := range words {
		if tokens[i+k] != w {
			return false
		}
	}
	return true
}
