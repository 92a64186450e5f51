package ports

import (
	"context"

	"github.com/aretw0/strata/pkg/domain"
)

// DocumentStore persists annotated documents for serving layers.
// The engine itself never calls it; adapters (HTTP, CLI) do.
type DocumentStore interface {
	// Save persists the document under its (corpus, doc) key, replacing any previous copy.
	Save(ctx context.Context, doc *domain.Document) error

	// Load retrieves a document.
	// Returns domain.ErrDocumentNotFound if the document does not exist.
	Load(ctx context.Context, corpusID, docID string) (*domain.Document, error)

	// Delete removes a document. Deleting an unknown document is not an error.
	Delete(ctx context.Context, corpusID, docID string) error

	// List returns the doc IDs stored for a corpus, sorted.
	List(ctx context.Context, corpusID string) ([]string, error)
}
