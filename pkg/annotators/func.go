package annotators

import (
	"context"

	"github.com/aretw0/strata/pkg/domain"
)

// AnnotateFunc is the signature of Func's callback.
type AnnotateFunc func(ctx context.Context, doc *domain.Document, cfg domain.RuntimeConfig) (any, error)

// Func adapts a function into a ports.Annotator.
type Func struct {
	name    string
	view    string
	prereqs []string
	fn      AnnotateFunc
}

// NewFunc creates an annotator named name that produces view from fn.
func NewFunc(name, view string, prereqs []string, fn AnnotateFunc) *Func {
	return &Func{
		name:    name,
		view:    view,
		prereqs: append([]string(nil), prereqs...),
		fn:      fn,
	}
}

func (f *Func) Name() string            { return f.name }
func (f *Func) ViewName() string        { return f.view }
func (f *Func) Prerequisites() []string { return f.prereqs }

// Annotate calls the wrapped function.
func (f *Func) Annotate(ctx context.Context, doc *domain.Document, cfg domain.RuntimeConfig) (any, error) {
	return f.fn(ctx, doc, cfg)
}
