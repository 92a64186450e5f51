package annotators

import (
	"context"
	"strings"

	"github.com/aretw0/strata/pkg/domain"
)

// Normalizer produces NORMALIZED: one lowercased, cleaned form per token.
// An optional synonym table maps variants to a canonical form ("gaming" -> "game").
type Normalizer struct {
	synonyms map[string]string
}

// NormalizerOptions configures a Normalizer.
type NormalizerOptions struct {
	// Synonyms maps canonical forms to their variants.
	Synonyms map[string][]string `yaml:"synonyms" mapstructure:"synonyms"`
}

// NewNormalizer creates a Normalizer.
func NewNormalizer(opts NormalizerOptions) *Normalizer {
	syn := make(map[string]string)
	for canonical, variants := range opts.Synonyms {
		c := strings.ToLower(canonical)
		for _, v := range variants {
			syn[strings.ToLower(v)] = c
		}
	}
	return &Normalizer{synonyms: syn}
}

func (n *Normalizer) Name() string            { return "normalizer" }
func (n *Normalizer) ViewName() string        { return domain.ViewNormalized }
func (n *Normalizer) Prerequisites() []string { return nil }

// Annotate returns a []string aligned with the document tokens.
func (n *Normalizer) Annotate(ctx context.Context, doc *domain.Document, cfg domain.RuntimeConfig) (any, error) {
	tokens := doc.Tokens()
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = n.normalize(tok)
	}
	return out, nil
}

func (n *Normalizer) normalize(token string) string {
	word := strings.ToLower(token)
	if trimmed := strings.Trim(word, "-"); trimmed != "" {
		word = trimmed
	}
	for strings.Contains(word, "--") {
		word = strings.ReplaceAll(word, "--", "-")
	}
	if canonical, ok := n.synonyms[word]; ok {
		return canonical
	}
	return word
}
