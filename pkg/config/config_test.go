package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/strata/pkg/config"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "stoplist.yaml", "terms:\n  - the\n  - a\n")
	writeFile(t, dir, "phrases.dict", "# comment\nmachine learning|ml|tech\nnew york|region\n")
	writeFile(t, dir, "taxonomy.yaml", `sectors:
  ai: [machine learning]
regions:
  us: [new york]
entities:
  tickers:
    TSLA: [tesla]
`)
	path := writeFile(t, dir, "pipeline.yaml", `name: news
logging:
  level: debug
  format: json
lock:
  ttl: 10s
annotators:
  - kind: categories
    options:
      taxonomy_file: taxonomy.yaml
      events:
        launch: [launched]
  - kind: phrases
    options:
      dict_file: phrases.dict
  - kind: entities
    name: tickers
    options:
      taxonomy_file: taxonomy.yaml
  - kind: stopwords
    options:
      stoplist_file: stoplist.yaml
      min_length: 3
  - kind: normalizer
    options:
      synonyms:
        game: [gaming]
`)

	p, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "news", p.Name)
	assert.Equal(t, "debug", p.Logging.Level)
	assert.Equal(t, "json", p.Logging.Format)
	assert.Equal(t, 10*time.Second, p.Lock.TTL)
	require.Len(t, p.AnnotatorSpecs, 5)

	reg, err := p.Registry()
	require.NoError(t, err)
	assert.Equal(t, []string{
		domain.ViewNormalized,
		domain.ViewPhrases,
		domain.ViewStopwords,
		domain.ViewCategories,
		domain.ViewEntities,
	}, reg.Available())

	a, ok := reg.Lookup(domain.ViewEntities)
	require.True(t, ok)
	assert.Equal(t, "tickers", a.Name())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"Unknown Field", "annotators:\n  - kind: normalizer\nbogus: 1\n"},
		{"Empty Annotators", "name: x\nannotators: []\n"},
		{"Missing Kind", "annotators:\n  - name: x\n"},
		{"Unknown Kind", "annotators:\n  - kind: sentiment\n"},
		{"Bad Format", "logging:\n  format: xml\nannotators:\n  - kind: normalizer\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestFactoryOptions(t *testing.T) {
	t.Run("Unknown Option", func(t *testing.T) {
		p, err := config.Parse([]byte("annotators:\n  - kind: stopwords\n    options:\n      term: [x]\n"))
		require.NoError(t, err)
		_, err = p.Annotators()
		assert.ErrorContains(t, err, "stopwords")
	})

	t.Run("Missing Resource File", func(t *testing.T) {
		p, err := config.Parse([]byte("annotators:\n  - kind: phrases\n    options:\n      dict_file: /does/not/exist.dict\n"))
		require.NoError(t, err)
		_, err = p.Annotators()
		assert.Error(t, err)
	})

	t.Run("Missing Prerequisite In Pipeline", func(t *testing.T) {
		p, err := config.Parse([]byte("annotators:\n  - kind: stopwords\n"))
		require.NoError(t, err)
		_, err = p.Registry()
		assert.ErrorIs(t, err, domain.ErrUnsatisfiedDependency)
	})
}

func TestDefaults(t *testing.T) {
	reg, err := config.Defaults().Registry()
	require.NoError(t, err)
	assert.Len(t, reg.Available(), 5)
}

func TestLoadResources(t *testing.T) {
	dir := t.TempDir()

	sl, err := config.LoadStoplist(writeFile(t, dir, "s.yaml", "terms:\n  - the\n  - a\n  - and\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"the", "a", "and"}, sl.Terms)

	tax, err := config.LoadTaxonomy(writeFile(t, dir, "t.yaml", "sectors:\n  ai: [ml]\nevents:\n  release: [launched]\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"ml"}, tax.Sectors["ai"])
	assert.Len(t, tax.Events, 1)

	entries := config.ParseDict("machine learning | ml | machine-learning | tech\n\n# skip\nbroken\nnew york|region")
	require.Len(t, entries, 2)
	assert.Equal(t, "machine learning", entries[0].Canonical)
	assert.Equal(t, []string{"ml", "machine-learning"}, entries[0].Variants)
	assert.Equal(t, "tech", entries[0].Category)
	assert.Empty(t, entries[1].Variants)

	_, err = config.LoadDict(filepath.Join(dir, "missing.dict"))
	assert.Error(t, err)
}
