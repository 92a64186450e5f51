package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/strata/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunDocumentStoreContract runs a suite of tests to verify that a DocumentStore implementation
// adheres to the defined interface contract.
func RunDocumentStoreContract(t *testing.T, store DocumentStore) {
	ctx := context.Background()
	corpus := "contract-" + time.Now().Format("20060102150405")

	newDoc := func(docID string) *domain.Document {
		tok := domain.Tokenization{
			Tokens:       []string{"Hello", "world", "."},
			Offsets:      []domain.Span{{Start: 0, End: 5}, {Start: 6, End: 11}, {Start: 11, End: 12}},
			SentenceEnds: []int{3},
		}
		doc := domain.NewDocument(corpus, docID, "Hello world.", tok)
		doc.PutView(&domain.View{Name: "NORMALIZED", Producer: "normalizer", Payload: []string{"hello", "world", "."}})
		return doc
	}

	t.Run("Save and Load", func(t *testing.T) {
		doc := newDoc("doc-1")
		require.NoError(t, store.Save(ctx, doc), "Save should not return error")

		loaded, err := store.Load(ctx, corpus, "doc-1")
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, doc.Key(), loaded.Key())
		assert.Equal(t, doc.Text, loaded.Text)
		assert.Equal(t, doc.Tokenization, loaded.Tokenization)
		assert.Equal(t, []string{"NORMALIZED"}, loaded.ViewNames())
		assert.Equal(t, doc.Generations(), loaded.Generations())

		v, ok := loaded.View("NORMALIZED")
		require.True(t, ok)
		assert.Equal(t, "normalizer", v.Producer)
		// Payload types may be reshaped by serialization; only presence is part of the contract.
		assert.NotNil(t, v.Payload)
	})

	t.Run("Save Isolates Caller", func(t *testing.T) {
		doc := newDoc("doc-2")
		require.NoError(t, store.Save(ctx, doc))

		doc.PutView(&domain.View{Name: "LATE"})

		loaded, err := store.Load(ctx, corpus, "doc-2")
		require.NoError(t, err)
		assert.False(t, loaded.HasView("LATE"), "mutations after Save must not leak into the store")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, corpus, "missing")
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	})

	t.Run("List", func(t *testing.T) {
		ids, err := store.List(ctx, corpus)
		require.NoError(t, err)
		assert.Equal(t, []string{"doc-1", "doc-2"}, ids)

		other, err := store.List(ctx, corpus+"-other")
		require.NoError(t, err)
		assert.Empty(t, other)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, corpus, "doc-1"))

		_, err := store.Load(ctx, corpus, "doc-1")
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound)

		require.NoError(t, store.Delete(ctx, corpus, "doc-1"), "deleting twice is not an error")
	})
}
