package config

import "time"

// Pipeline is the parsed pipeline file. It is read once and not changed afterwards.
type Pipeline struct {
	Name           string          `yaml:"name"`
	Logging        Logging         `yaml:"logging"`
	Lock           Lock            `yaml:"lock"`
	AnnotatorSpecs []AnnotatorSpec `yaml:"annotators"`

	// baseDir resolves relative resource paths.
	baseDir string
}

// Logging selects log level and format ("text" or "json").
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Lock configures the per-document guard.
type Lock struct {
	TTL time.Duration `yaml:"ttl"`
}

// AnnotatorSpec selects a factory by Kind. Options are passed to the factory as-is.
type AnnotatorSpec struct {
	Kind    string         `yaml:"kind"`
	Name    string         `yaml:"name"`
	Options map[string]any `yaml:"options"`
}

// Kinds of built-in annotators.
const (
	KindNormalizer = "normalizer"
	KindStopwords  = "stopwords"
	KindPhrases    = "phrases"
	KindEntities   = "entities"
	KindCategories = "categories"
)
