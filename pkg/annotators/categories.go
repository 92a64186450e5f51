package annotators

import (
	"context"
	"sort"
	"strings"

	"github.com/aretw0/strata/pkg/domain"
)

// Categorizer produces CATEGORIES from content tokens and recognized phrases.
// A category applies when any of its keywords occurs among the document's content
// tokens or phrase canonical forms.
type Categorizer struct {
	keywords map[string][]string
}

// TaxonomyOptions groups category keywords the way taxonomy files do.
type TaxonomyOptions struct {
	Sectors map[string][]string `yaml:"sectors" mapstructure:"sectors"`
	Events  map[string][]string `yaml:"events" mapstructure:"events"`
	Regions map[string][]string `yaml:"regions" mapstructure:"regions"`
}

// NewCategorizer creates a Categorizer. Category names are shared across groups.
func NewCategorizer(opts TaxonomyOptions) *Categorizer {
	kw := make(map[string][]string)
	for _, group := range []map[string][]string{opts.Sectors, opts.Events, opts.Regions} {
		for cat, words := range group {
			for _, w := range words {
				kw[cat] = append(kw[cat], strings.ToLower(w))
			}
		}
	}
	return &Categorizer{keywords: kw}
}

func (c *Categorizer) Name() string     { return "categorizer" }
func (c *Categorizer) ViewName() string { return domain.ViewCategories }
func (c *Categorizer) Prerequisites() []string {
	return []string{domain.ViewPhrases, domain.ViewStopwords}
}

// Annotate returns the sorted list of matching categories.
func (c *Categorizer) Annotate(ctx context.Context, doc *domain.Document, cfg domain.RuntimeConfig) (any, error) {
	tokens, err := NormalizedTokens(doc)
	if err != nil {
		return nil, err
	}
	stops, err := StopwordSet(doc)
	if err != nil {
		return nil, err
	}
	phrases, err := Phrases(doc)
	if err != nil {
		return nil, err
	}

	isStop := make(map[int]bool, len(stops.Indexes))
	for _, i := range stops.Indexes {
		isStop[i] = true
	}
	terms := make(map[string]struct{})
	for i, tok := range tokens {
		if !isStop[i] {
			terms[tok] = struct{}{}
		}
	}
	for _, p := range phrases {
		terms[strings.ToLower(p.Canonical)] = struct{}{}
	}

	cats := []string{}
	for cat, words := range c.keywords {
		for _, w := range words {
			if _, ok := terms[w]; ok {
				cats = append(cats, cat)
				break
			}
		}
	}
	sort.Strings(cats)
	return cats, nil
}
