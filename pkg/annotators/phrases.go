package annotators

import (
	"context"
	"strings"

	"github.com/aretw0/strata/pkg/domain"
)

// DictEntry is one multi-token dictionary entry.
type DictEntry struct {
	Canonical string   `yaml:"canonical" mapstructure:"canonical"`
	Variants  []string `yaml:"variants" mapstructure:"variants"`
	Category  string   `yaml:"category" mapstructure:"category"`
}

// PhraseRecognizer produces PHRASES: greedy longest-match dictionary spans over NORMALIZED.
type PhraseRecognizer struct {
	dict   map[string]DictEntry
	maxLen int
}

// NewPhraseRecognizer creates a PhraseRecognizer over the given dictionary.
func NewPhraseRecognizer(entries []DictEntry) *PhraseRecognizer {
	p := &PhraseRecognizer{dict: make(map[string]DictEntry), maxLen: 1}
	for _, e := range entries {
		p.add(e.Canonical, e)
		for _, v := range e.Variants {
			p.add(v, e)
		}
	}
	return p
}

func (p *PhraseRecognizer) add(phrase string, e DictEntry) {
	key := strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
	if key == "" {
		return
	}
	p.dict[key] = e
	if n := len(strings.Fields(key)); n > p.maxLen {
		p.maxLen = n
	}
}

func (p *PhraseRecognizer) Name() string            { return "phrase-recognizer" }
func (p *PhraseRecognizer) ViewName() string        { return domain.ViewPhrases }
func (p *PhraseRecognizer) Prerequisites() []string { return []string{domain.ViewNormalized} }

// Annotate returns a []Phrase ordered by position. Longer matches win over shorter ones
// starting at the same token.
func (p *PhraseRecognizer) Annotate(ctx context.Context, doc *domain.Document, cfg domain.RuntimeConfig) (any, error) {
	tokens, err := NormalizedTokens(doc)
	if err != nil {
		return nil, err
	}

	phrases := []Phrase{}
	i := 0
	for i < len(tokens) {
		longest := p.maxLen
		if remaining := len(tokens) - i; longest > remaining {
			longest = remaining
		}
		matched := 0
		for n := longest; n >= 1; n-- {
			key := strings.Join(tokens[i:i+n], " ")
			if entry, ok := p.dict[key]; ok {
				phrases = append(phrases, Phrase{
					Start:     i,
					End:       i + n,
					Canonical: entry.Canonical,
					Category:  entry.Category,
				})
				matched = n
				break
			}
		}
		if matched > 0 {
			i += matched
		} else {
			i++
		}
	}
	return phrases, nil
}
