package ports

import (
	"context"

	"github.com/aretw0/strata/pkg/domain"
)

// TokenizationBuilder creates the structural part of a Document.
type TokenizationBuilder interface {
	// Build returns a Document with no views. When tok is non-nil the builder must
	// respect it instead of computing its own tokenization.
	Build(ctx context.Context, corpusID, docID, text string, tok *domain.Tokenization) (*domain.Document, error)
}
