package annotators

import (
	"fmt"

	"github.com/aretw0/strata/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Stopwords is the STOPWORDS payload: indexes of tokens that carry no content.
type Stopwords struct {
	Indexes []int `json:"indexes" mapstructure:"indexes"`
}

// Contains reports whether token i is a stopword.
func (s Stopwords) Contains(i int) bool {
	for _, idx := range s.Indexes {
		if idx == i {
			return true
		}
	}
	return false
}

// Phrase is one PHRASES entry spanning tokens [Start, End).
type Phrase struct {
	Start     int    `json:"start" mapstructure:"start"`
	End       int    `json:"end" mapstructure:"end"`
	Canonical string `json:"canonical" mapstructure:"canonical"`
	Category  string `json:"category,omitempty" mapstructure:"category"`
}

// Entity is one ENTITIES entry spanning tokens [Start, End).
type Entity struct {
	Type  string `json:"type" mapstructure:"type"`
	Value string `json:"value" mapstructure:"value"`
	Start int    `json:"start" mapstructure:"start"`
	End   int    `json:"end" mapstructure:"end"`
}

// NormalizedTokens reads the NORMALIZED view of doc.
func NormalizedTokens(doc *domain.Document) ([]string, error) {
	var out []string
	err := readPayload(doc, domain.ViewNormalized, &out)
	return out, err
}

// StopwordSet reads the STOPWORDS view of doc.
func StopwordSet(doc *domain.Document) (Stopwords, error) {
	var out Stopwords
	err := readPayload(doc, domain.ViewStopwords, &out)
	return out, err
}

// Phrases reads the PHRASES view of doc.
func Phrases(doc *domain.Document) ([]Phrase, error) {
	var out []Phrase
	err := readPayload(doc, domain.ViewPhrases, &out)
	return out, err
}

// Entities reads the ENTITIES view of doc.
func Entities(doc *domain.Document) ([]Entity, error) {
	var out []Entity
	err := readPayload(doc, domain.ViewEntities, &out)
	return out, err
}

// Categories reads the CATEGORIES view of doc.
func Categories(doc *domain.Document) ([]string, error) {
	var out []string
	err := readPayload(doc, domain.ViewCategories, &out)
	return out, err
}

// readPayload copies a view payload into out. Payloads produced in-process are
// assigned directly; payloads that went through JSON are decoded with mapstructure.
func readPayload[T any](doc *domain.Document, view string, out *T) error {
	v, ok := doc.View(view)
	if !ok {
		return fmt.Errorf("view %q not present on %s", view, doc.Key())
	}
	if typed, ok := v.Payload.(T); ok {
		*out = typed
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(v.Payload); err != nil {
		return fmt.Errorf("decode %q payload: %w", view, err)
	}
	return nil
}
