package runtime_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/registry"
	"github.com/stretchr/testify/require"
)

// recorder is a configurable annotator that logs every invocation.
type recorder struct {
	name    string
	view    string
	prereqs []string
	err     error
	panics  bool
	log     *callLog
}

func (r *recorder) Name() string            { return r.name }
func (r *recorder) ViewName() string        { return r.view }
func (r *recorder) Prerequisites() []string { return r.prereqs }

func (r *recorder) Annotate(ctx context.Context, doc *domain.Document, cfg domain.RuntimeConfig) (any, error) {
	r.log.add(r.view)
	if r.panics {
		panic("kaboom")
	}
	if r.err != nil {
		return nil, r.err
	}
	for _, pre := range r.prereqs {
		if !doc.HasView(pre) {
			panic("prerequisite " + pre + " missing when running " + r.view)
		}
	}
	return r.view + "-payload", nil
}

type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(view string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, view)
}

func (l *callLog) get() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

func (l *callLog) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = nil
}

// chain registers TOKENS <- POS <- CHUNK and returns the recorders by view.
func chain(t *testing.T) (*registry.Registry, map[string]*recorder, *callLog) {
	t.Helper()
	log := &callLog{}
	recs := map[string]*recorder{
		"TOKENS": {name: "tokenizer", view: "TOKENS", log: log},
		"POS":    {name: "pos-tagger", view: "POS", prereqs: []string{"TOKENS"}, log: log},
		"CHUNK":  {name: "chunker", view: "CHUNK", prereqs: []string{"POS"}, log: log},
	}
	reg := registry.New()
	for _, v := range []string{"TOKENS", "POS", "CHUNK"} {
		require.NoError(t, reg.Register(recs[v]))
	}
	return reg, recs, log
}

func emptyDoc() *domain.Document {
	return domain.NewDocument("corpus", "doc", "", domain.Tokenization{})
}
