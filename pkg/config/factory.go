package config

import (
	"fmt"

	"github.com/aretw0/strata/pkg/annotators"
	"github.com/aretw0/strata/pkg/ports"
	"github.com/aretw0/strata/pkg/registry"
	"github.com/mitchellh/mapstructure"
)

// Factory builds an annotator from its spec. Options are decoded strictly: unknown
// keys fail so typos do not silently fall back to defaults.
type Factory func(p *Pipeline, spec AnnotatorSpec) (ports.Annotator, error)

// Factories maps kind to factory.
var Factories = map[string]Factory{
	KindNormalizer: newNormalizer,
	KindStopwords:  newStopwords,
	KindPhrases:    newPhrases,
	KindEntities:   newEntities,
	KindCategories: newCategories,
}

// Annotators instantiates every configured annotator, in file order.
func (p *Pipeline) Annotators() ([]ports.Annotator, error) {
	out := make([]ports.Annotator, 0, len(p.AnnotatorSpecs))
	for i, spec := range p.AnnotatorSpecs {
		f := Factories[spec.Kind]
		if f == nil {
			return nil, fmt.Errorf("config: annotators[%d]: kind %q not registered", i, spec.Kind)
		}
		a, err := f(p, spec)
		if err != nil {
			return nil, fmt.Errorf("config: annotators[%d] (%s): %w", i, spec.Kind, err)
		}
		if spec.Name != "" {
			a = named{Annotator: a, name: spec.Name}
		}
		out = append(out, a)
	}
	return out, nil
}

// Registry builds a registry from the configured annotators, sorted by dependency.
func (p *Pipeline) Registry() (*registry.Registry, error) {
	as, err := p.Annotators()
	if err != nil {
		return nil, err
	}
	return registry.Build(as...)
}

// named overrides the reported annotator name.
type named struct {
	ports.Annotator
	name string
}

func (n named) Name() string { return n.name }

func decodeOptions(in map[string]any, out any) error {
	if len(in) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(in); err != nil {
		return fmt.Errorf("options: %w", err)
	}
	return nil
}

type normalizerOptions struct {
	Synonyms map[string][]string `mapstructure:"synonyms"`
}

func newNormalizer(p *Pipeline, spec AnnotatorSpec) (ports.Annotator, error) {
	var o normalizerOptions
	if err := decodeOptions(spec.Options, &o); err != nil {
		return nil, err
	}
	return annotators.NewNormalizer(annotators.NormalizerOptions{Synonyms: o.Synonyms}), nil
}

type stopwordOptions struct {
	Terms        []string `mapstructure:"terms"`
	MinLength    int      `mapstructure:"min_length"`
	StoplistFile string   `mapstructure:"stoplist_file"`
}

// DefaultStopwords is used when a stopwords annotator names neither terms nor a file.
var DefaultStopwords = []string{
	"a", "an", "and", "are", "as", "at", "be", "by", "for", "from", "has", "in", "is",
	"it", "its", "of", "on", "or", "that", "the", "to", "was", "were", "will", "with",
}

func newStopwords(p *Pipeline, spec AnnotatorSpec) (ports.Annotator, error) {
	var o stopwordOptions
	if err := decodeOptions(spec.Options, &o); err != nil {
		return nil, err
	}
	terms := o.Terms
	if o.StoplistFile != "" {
		sl, err := LoadStoplist(p.resolve(o.StoplistFile))
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		terms = append(terms, sl.Terms...)
	}
	if len(terms) == 0 {
		terms = DefaultStopwords
	}
	return annotators.NewStopwordTagger(annotators.StopwordOptions{Terms: terms, MinLength: o.MinLength}), nil
}

type phraseOptions struct {
	Entries  []annotators.DictEntry `mapstructure:"entries"`
	DictFile string                 `mapstructure:"dict_file"`
}

func newPhrases(p *Pipeline, spec AnnotatorSpec) (ports.Annotator, error) {
	var o phraseOptions
	if err := decodeOptions(spec.Options, &o); err != nil {
		return nil, err
	}
	entries := o.Entries
	if o.DictFile != "" {
		loaded, err := LoadDict(p.resolve(o.DictFile))
		if err != nil {
			return nil, fmt.Errorf("load dict: %w", err)
		}
		entries = append(entries, loaded...)
	}
	return annotators.NewPhraseRecognizer(entries), nil
}

type taxonomyOptions struct {
	Sectors      map[string][]string            `mapstructure:"sectors"`
	Events       map[string][]string            `mapstructure:"events"`
	Regions      map[string][]string            `mapstructure:"regions"`
	Entities     map[string]map[string][]string `mapstructure:"entities"`
	TaxonomyFile string                         `mapstructure:"taxonomy_file"`
}

// taxonomy merges inline options over the taxonomy file, if any.
func (o taxonomyOptions) taxonomy(p *Pipeline) (*Taxonomy, error) {
	tax := &Taxonomy{}
	if o.TaxonomyFile != "" {
		loaded, err := LoadTaxonomy(p.resolve(o.TaxonomyFile))
		if err != nil {
			return nil, fmt.Errorf("load taxonomy: %w", err)
		}
		tax = loaded
	}
	tax.Sectors = merge(tax.Sectors, o.Sectors)
	tax.Events = merge(tax.Events, o.Events)
	tax.Regions = merge(tax.Regions, o.Regions)
	if len(o.Entities) > 0 && tax.Entities == nil {
		tax.Entities = make(map[string]map[string][]string)
	}
	for typ, values := range o.Entities {
		tax.Entities[typ] = merge(tax.Entities[typ], values)
	}
	return tax, nil
}

func merge(dst, src map[string][]string) map[string][]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string][]string, len(src))
	}
	for k, v := range src {
		dst[k] = append(dst[k], v...)
	}
	return dst
}

func newEntities(p *Pipeline, spec AnnotatorSpec) (ports.Annotator, error) {
	var o taxonomyOptions
	if err := decodeOptions(spec.Options, &o); err != nil {
		return nil, err
	}
	tax, err := o.taxonomy(p)
	if err != nil {
		return nil, err
	}
	return annotators.NewEntityTagger(annotators.EntityOptions{Entities: tax.Entities}), nil
}

func newCategories(p *Pipeline, spec AnnotatorSpec) (ports.Annotator, error) {
	var o taxonomyOptions
	if err := decodeOptions(spec.Options, &o); err != nil {
		return nil, err
	}
	tax, err := o.taxonomy(p)
	if err != nil {
		return nil, err
	}
	return annotators.NewCategorizer(annotators.TaxonomyOptions{
		Sectors: tax.Sectors,
		Events:  tax.Events,
		Regions: tax.Regions,
	}), nil
}
