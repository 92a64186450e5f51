package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a pipeline file.
func Load(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	p.baseDir = filepath.Dir(path)
	return p, nil
}

// Parse decodes a pipeline document. Unknown top-level fields are rejected.
func Parse(data []byte) (*Pipeline, error) {
	p := Defaults()
	p.AnnotatorSpecs = nil

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil {
		return nil, fmt.Errorf("parse pipeline: %w", err)
	}
	if err := Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Defaults returns the built-in pipeline: every kind with its default options.
func Defaults() *Pipeline {
	return &Pipeline{
		Name:    "default",
		Logging: Logging{Level: "info", Format: "text"},
		AnnotatorSpecs: []AnnotatorSpec{
			{Kind: KindNormalizer},
			{Kind: KindStopwords},
			{Kind: KindPhrases},
			{Kind: KindEntities},
			{Kind: KindCategories},
		},
	}
}

// Validate performs static checks that do not need the factories to run.
func Validate(p *Pipeline) error {
	switch strings.ToLower(p.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: logging.format %q must be text or json", p.Logging.Format)
	}
	if p.Lock.TTL < 0 {
		return errors.New("config: lock.ttl must be >= 0")
	}
	if len(p.AnnotatorSpecs) == 0 {
		return errors.New("config: annotators empty")
	}
	for i, spec := range p.AnnotatorSpecs {
		if strings.TrimSpace(spec.Kind) == "" {
			return fmt.Errorf("config: annotators[%d]: kind not set", i)
		}
		if Factories[spec.Kind] == nil {
			return fmt.Errorf("config: annotators[%d]: kind %q not registered", i, spec.Kind)
		}
	}
	return nil
}

func (p *Pipeline) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || p.baseDir == "" {
		return path
	}
	return filepath.Join(p.baseDir, path)
}
