package ports

import (
	"context"

	"github.com/aretw0/strata/pkg/domain"
)

// Annotator produces one named view over a Document.
//
// Prerequisites lists the views that must already be present on the document when
// Annotate is called. Implementations must not mutate the document; the executor
// stores the returned payload as a View on their behalf.
type Annotator interface {
	// Name identifies the component in logs and errors.
	Name() string

	// ViewName is the single view this annotator produces.
	ViewName() string

	// Prerequisites returns the view names this annotator reads.
	Prerequisites() []string

	// Annotate computes the view payload. cfg may be nil.
	Annotate(ctx context.Context, doc *domain.Document, cfg domain.RuntimeConfig) (any, error)
}
