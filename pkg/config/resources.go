package config

import (
	"os"
	"strings"

	"github.com/aretw0/strata/pkg/annotators"
	"gopkg.in/yaml.v3"
)

// Taxonomy represents the taxonomy configuration.
type Taxonomy struct {
	Sectors  map[string][]string            `yaml:"sectors"`
	Events   map[string][]string            `yaml:"events"`
	Regions  map[string][]string            `yaml:"regions"`
	Entities map[string]map[string][]string `yaml:"entities"`
}

// LoadTaxonomy loads taxonomy from a YAML file.
func LoadTaxonomy(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var tax Taxonomy
	if err := yaml.Unmarshal(data, &tax); err != nil {
		return nil, err
	}
	return &tax, nil
}

// Stoplist represents the stopword list configuration.
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file.
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}
	return &sl, nil
}

// LoadDict loads a multi-token dictionary.
// Format: canonical|variant1|variant2|category, one entry per line, # for comments.
func LoadDict(path string) ([]annotators.DictEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseDict(string(data)), nil
}

// ParseDict parses dictionary lines. Lines without a "|" are ignored.
func ParseDict(data string) []annotators.DictEntry {
	entries := []annotators.DictEntry{}
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "|")
		if len(parts) < 2 {
			continue
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		entries = append(entries, annotators.DictEntry{
			Canonical: parts[0],
			Variants:  parts[1 : len(parts)-1],
			Category:  parts[len(parts)-1],
		})
	}
	return entries
}
