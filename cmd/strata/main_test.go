package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/strata"
	"github.com/aretw0/strata/pkg/annotators"
	"github.com/aretw0/strata/pkg/config"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "The chip rally continues."

func defaultService(t *testing.T) *strata.Service {
	t.Helper()
	reg, err := config.Defaults().Registry()
	require.NoError(t, err)
	return strata.New(strata.WithRegistry(reg))
}

func annotate(t *testing.T, svc *strata.Service, o annotateOptions) (string, error) {
	t.Helper()
	if o.doc == "" {
		o.doc = "stdin"
	}
	var out bytes.Buffer
	err := runAnnotate(context.Background(), svc, strings.NewReader(sample), &out, o)
	return out.String(), err
}

func TestRunAnnotate_JSON(t *testing.T) {
	out, err := annotate(t, defaultService(t), annotateOptions{format: "json", corpus: "news"})
	require.NoError(t, err)

	var doc domain.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "news/stdin", doc.Key())
	assert.Equal(t, []string{"The", "chip", "rally", "continues", "."}, doc.Tokens())
	assert.Equal(t, []string{
		domain.ViewCategories, domain.ViewEntities, domain.ViewNormalized, domain.ViewPhrases, domain.ViewStopwords,
	}, doc.ViewNames())
}

func TestRunAnnotate_SelectedViews(t *testing.T) {
	out, err := annotate(t, defaultService(t), annotateOptions{format: "json", views: []string{domain.ViewStopwords}})
	require.NoError(t, err)

	var doc domain.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, []string{domain.ViewNormalized, domain.ViewStopwords}, doc.ViewNames())

	_, err = annotate(t, defaultService(t), annotateOptions{format: "json", views: []string{"GHOST"}})
	assert.ErrorIs(t, err, domain.ErrUnresolvableView)
}

func TestRunAnnotate_Formats(t *testing.T) {
	svc := defaultService(t)

	out, err := annotate(t, svc, annotateOptions{format: "summary", corpus: "news", profile: termenv.Ascii})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "news/stdin  5 tokens, 1 sentences\n"), out)
	assert.Contains(t, out, "NORMALIZED")

	out, err = annotate(t, svc, annotateOptions{format: "markdown", corpus: "news"})
	require.NoError(t, err)
	assert.Contains(t, out, "# news/stdin")
	assert.Contains(t, out, "| View | Producer | Generation | Payload |")

	_, err = annotate(t, svc, annotateOptions{format: "xml"})
	assert.ErrorContains(t, err, `unknown format "xml"`)
}

func TestRunAnnotate_HTML(t *testing.T) {
	var out bytes.Buffer
	err := runAnnotate(context.Background(), defaultService(t),
		strings.NewReader("<div>Chips <b>rally</b></div><script>track()</script>"), &out,
		annotateOptions{format: "json", html: true, doc: "page", views: []string{domain.ViewNormalized}})
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"text": "Chips rally"`)
}

func TestRunAnnotate_Latin1Input(t *testing.T) {
	var out bytes.Buffer
	err := runAnnotate(context.Background(), defaultService(t),
		strings.NewReader("caf\xe9 au lait"), &out,
		annotateOptions{format: "json", doc: "latin1"})
	assert.ErrorIs(t, err, domain.ErrInvalidText)
	assert.Empty(t, out.String())
}

func TestRunAnnotate_FailureStillWritesDocument(t *testing.T) {
	svc := strata.New()
	require.NoError(t, svc.AddAnnotator(annotators.NewNormalizer(annotators.NormalizerOptions{})))
	require.NoError(t, svc.AddAnnotator(annotators.NewFunc("broken", "BROKEN", []string{domain.ViewNormalized},
		func(ctx context.Context, doc *domain.Document, cfg domain.RuntimeConfig) (any, error) {
			return nil, errors.New("model offline")
		})))

	out, err := annotate(t, svc, annotateOptions{format: "json"})
	var execErr *domain.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "broken", execErr.Annotator)
	assert.Contains(t, out, `"NORMALIZED"`)
}

func TestRunPlan(t *testing.T) {
	svc := defaultService(t)

	var out bytes.Buffer
	require.NoError(t, runPlan(context.Background(), &out, svc, []string{domain.ViewCategories}, nil, false))
	assert.Equal(t, `1. NORMALIZED (normalizer) for CATEGORIES
2. STOPWORDS (stopword-tagger) for CATEGORIES
3. PHRASES (phrase-recognizer) for CATEGORIES
4. CATEGORIES (categorizer)
`, out.String())

	out.Reset()
	present := []string{domain.ViewNormalized, domain.ViewStopwords, domain.ViewPhrases, domain.ViewCategories}
	require.NoError(t, runPlan(context.Background(), &out, svc, []string{domain.ViewCategories}, present, false))
	assert.Equal(t, "Nothing to do.\n", out.String())

	out.Reset()
	require.NoError(t, runPlan(context.Background(), &out, svc, []string{domain.ViewStopwords}, nil, true))
	var plan strata.Plan
	require.NoError(t, json.Unmarshal(out.Bytes(), &plan))
	assert.Equal(t, []string{domain.ViewNormalized, domain.ViewStopwords}, plan.Views())
}

func TestRunValidate(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runValidate(&out, ""))
	assert.Contains(t, out.String(), `Pipeline "default" is valid!`)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`name: broken
annotators:
  - kind: normalizer
  - kind: normalizer
    name: second
  - kind: categories
`), 0o644))

	out.Reset()
	err := runValidate(&out, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "found 3 errors")
	assert.Contains(t, out.String(), "already provided by normalizer")
	assert.Contains(t, out.String(), `no provider for prerequisite "PHRASES"`)
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	st, err := openStore(ctx, storeConfig{kind: "memory"})
	require.NoError(t, err)
	assert.Nil(t, st.locker)
	require.NoError(t, st.Close())

	st, err = openStore(ctx, storeConfig{kind: "sqlite", sqlitePath: filepath.Join(t.TempDir(), "s.db")})
	require.NoError(t, err)
	require.NoError(t, st.Save(ctx, domain.NewDocument("c", "d", "x", domain.Tokenization{})))
	require.NoError(t, st.Close())

	mr := miniredis.RunT(t)
	st, err = openStore(ctx, storeConfig{kind: "redis", redisAddr: mr.Addr(), redisPrefix: "t:"})
	require.NoError(t, err)
	assert.NotNil(t, st.locker)
	require.NoError(t, st.Save(ctx, domain.NewDocument("c", "d", "x", domain.Tokenization{})))
	assert.True(t, mr.Exists("t:doc:c/d"))
	require.NoError(t, st.Close())

	_, err = openStore(ctx, storeConfig{kind: "etcd"})
	assert.ErrorContains(t, err, `unknown store "etcd"`)
}

func TestRootCommand(t *testing.T) {
	run := func(args ...string) string {
		var out bytes.Buffer
		rootCmd.SetArgs(args)
		rootCmd.SetOut(&out)
		rootCmd.SetErr(io.Discard)
		require.NoError(t, rootCmd.Execute())
		return out.String()
	}

	out := run("views")
	assert.True(t, strings.HasPrefix(out, "VIEW"), out)
	assert.Contains(t, out, "CATEGORIES  categorizer")

	out = run("version")
	assert.Equal(t, "strata version "+strings.TrimSpace(strata.Version)+"\n", out)

	out = run("graph", domain.ViewStopwords)
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "class STOPWORDS planned")
}
