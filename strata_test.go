package strata_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/pkg/annotators"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type trace struct{ calls []string }

func (tr *trace) annotator(name, view string, fail error, prereqs ...string) *annotators.Func {
	return annotators.NewFunc(name, view, prereqs, func(ctx context.Context, doc *domain.Document, cfg domain.RuntimeConfig) (any, error) {
		tr.calls = append(tr.calls, view)
		if fail != nil {
			return nil, fail
		}
		return len(doc.Tokens()), nil
	})
}

func newService(t *testing.T, posErr error) (*strata.Service, *trace) {
	t.Helper()
	tr := &trace{}
	svc := strata.New()
	require.NoError(t, svc.AddAnnotator(tr.annotator("tokenizer", "TOKENS", nil)))
	require.NoError(t, svc.AddAnnotator(tr.annotator("pos-tagger", "POS", posErr, "TOKENS")))
	require.NoError(t, svc.AddAnnotator(tr.annotator("chunker", "CHUNK", nil, "POS")))
	return svc, tr
}

func TestService_AvailableViews(t *testing.T) {
	svc, _ := newService(t, nil)
	assert.Equal(t, []string{"TOKENS", "POS", "CHUNK"}, svc.AvailableViews())

	err := svc.AddAnnotator(annotators.NewFunc("ner", "NER", []string{"ENTITIES"}, nil))
	assert.ErrorIs(t, err, domain.ErrUnsatisfiedDependency)
	assert.Equal(t, []string{"TOKENS", "POS", "CHUNK"}, svc.AvailableViews())

	err = svc.AddAnnotator(annotators.NewFunc("other", "POS", nil, nil))
	assert.ErrorIs(t, err, domain.ErrDuplicateProvider)
}

func TestService_AddView(t *testing.T) {
	svc, tr := newService(t, nil)
	ctx := context.Background()

	doc, err := svc.CreateBasicDocument(ctx, "c", "d", "The cat sat.", nil)
	require.NoError(t, err)
	assert.Empty(t, doc.ViewNames())

	changed, err := svc.AddView(ctx, doc, "CHUNK", nil)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"TOKENS", "POS", "CHUNK"}, tr.calls)

	before, _ := doc.MarshalJSON()
	changed, err = svc.AddView(ctx, doc, "CHUNK", nil)
	require.NoError(t, err)
	assert.False(t, changed)
	after, _ := doc.MarshalJSON()
	assert.JSONEq(t, string(before), string(after))
	assert.Len(t, tr.calls, 3)
}

func TestService_FailureAttribution(t *testing.T) {
	svc, _ := newService(t, errors.New("tagger down"))
	ctx := context.Background()
	doc, err := svc.CreateBasicDocument(ctx, "c", "d", "x", nil)
	require.NoError(t, err)

	_, err = svc.AddView(ctx, doc, "CHUNK", nil)
	var execErr *domain.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "pos-tagger", execErr.Annotator)
	assert.Equal(t, "CHUNK", execErr.Requested)
	assert.Equal(t, []string{"TOKENS"}, doc.ViewNames())
}

func TestService_CreateAnnotatedDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("All Views", func(t *testing.T) {
		svc, _ := newService(t, nil)
		doc, err := svc.CreateAnnotatedDocument(ctx, "c", "d", "x y", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"CHUNK", "POS", "TOKENS"}, doc.ViewNames())
	})

	t.Run("Subset", func(t *testing.T) {
		svc, _ := newService(t, nil)
		doc, err := svc.CreateAnnotatedDocument(ctx, "c", "d", "x y", nil, []string{"POS"})
		require.NoError(t, err)
		assert.Equal(t, []string{"POS", "TOKENS"}, doc.ViewNames())
	})

	t.Run("None", func(t *testing.T) {
		svc, tr := newService(t, nil)
		doc, err := svc.CreateAnnotatedDocument(ctx, "c", "d", "x y", nil, []string{})
		require.NoError(t, err)
		assert.Empty(t, doc.ViewNames())
		assert.Empty(t, tr.calls)
	})

	t.Run("Unknown View", func(t *testing.T) {
		svc, tr := newService(t, nil)
		_, err := svc.CreateAnnotatedDocument(ctx, "c", "d", "x y", nil, []string{"POS", "SENTIMENT"})
		assert.ErrorIs(t, err, domain.ErrUnresolvableView)
		assert.Empty(t, tr.calls)
	})

	t.Run("Tokenizer Error Surfaces Unmodified", func(t *testing.T) {
		svc, _ := newService(t, nil)
		_, err := svc.CreateAnnotatedDocument(ctx, "c", "d", "abc", &domain.Tokenization{Tokens: []string{"zzz"}}, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidTokenization)
	})
}

func TestService_AnnotateDocument(t *testing.T) {
	svc, tr := newService(t, nil)
	ctx := context.Background()
	doc, err := svc.CreateBasicDocument(ctx, "c", "d", "x", nil)
	require.NoError(t, err)

	_, err = svc.AddView(ctx, doc, "TOKENS", nil)
	require.NoError(t, err)
	tokensGen := doc.Generations()["TOKENS"]
	tr.calls = nil

	_, err = svc.AnnotateDocument(ctx, doc, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"POS", "CHUNK"}, tr.calls)
	assert.Equal(t, tokensGen, doc.Generations()["TOKENS"])

	tr.calls = nil
	before := doc.Generations()
	out, err := svc.AnnotateDocument(ctx, doc, true)
	require.NoError(t, err)
	assert.Same(t, doc, out)
	assert.Equal(t, []string{"TOKENS", "POS", "CHUNK"}, tr.calls)
	for name, gen := range doc.Generations() {
		assert.Greater(t, gen, before[name], name)
	}
}

func TestService_WithRegistry(t *testing.T) {
	tr := &trace{}
	reg, err := registry.Build(
		tr.annotator("chunker", "CHUNK", nil, "POS"),
		tr.annotator("pos-tagger", "POS", nil, "TOKENS"),
		tr.annotator("tokenizer", "TOKENS", nil),
	)
	require.NoError(t, err)

	svc := strata.New(strata.WithRegistry(reg), strata.WithName("test"))
	plan, err := svc.Plan(context.Background(), nil, "CHUNK")
	require.NoError(t, err)
	assert.Equal(t, []string{"TOKENS", "POS", "CHUNK"}, plan.Views())
	assert.Same(t, reg, svc.Registry())
}

func TestService_Hooks(t *testing.T) {
	var finished []string
	svc := strata.New(strata.WithLifecycleHooks(domain.LifecycleHooks{
		OnAnnotatorFinish: func(ctx context.Context, e *domain.AnnotatorEvent) {
			finished = append(finished, e.View)
		},
	}))
	tr := &trace{}
	require.NoError(t, svc.AddAnnotator(tr.annotator("tokenizer", "TOKENS", nil)))

	doc, err := svc.CreateAnnotatedDocument(context.Background(), "c", "d", "x", nil, nil)
	require.NoError(t, err)
	assert.True(t, doc.HasView("TOKENS"))
	assert.Equal(t, []string{"TOKENS"}, finished)
}
