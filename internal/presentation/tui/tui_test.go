package tui_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/strata/internal/presentation/tui"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDoc() *domain.Document {
	doc := domain.NewDocument("news", "a1", "Chips rally.", domain.Tokenization{
		Tokens:       []string{"Chips", "rally", "."},
		Offsets:      []domain.Span{{Start: 0, End: 5}, {Start: 6, End: 11}, {Start: 11, End: 12}},
		SentenceEnds: []int{3},
	})
	doc.PutView(&domain.View{Name: "NORMALIZED", Producer: "normalizer", Payload: []string{"chips", "rally", "."}})
	doc.PutView(&domain.View{Name: "CATEGORIES", Producer: "categorizer", Payload: []string{"a|b"}})
	return doc
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	tui.RenderSummary(&buf, sampleDoc(), termenv.Ascii)
	out := buf.String()

	assert.Contains(t, out, "news/a1  3 tokens, 1 sentences")
	assert.Contains(t, out, "CATEGORIES  gen 2 by categorizer")
	assert.Contains(t, out, `NORMALIZED  gen 1 by normalizer  ["chips","rally","."]`)

	buf.Reset()
	tui.RenderSummary(&buf, domain.NewDocument("c", "d", "", domain.Tokenization{}), termenv.Ascii)
	assert.Contains(t, buf.String(), "(no views)")
}

func TestPreview(t *testing.T) {
	assert.Equal(t, `{"a":1}`, tui.Preview(map[string]int{"a": 1}, 0))
	got := tui.Preview(strings.Repeat("x", 100), 10)
	assert.Equal(t, 10, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.Equal(t, "<chan int>", tui.Preview(make(chan int), 10))
}

func TestMarkdown(t *testing.T) {
	md := tui.Markdown(sampleDoc())
	assert.Contains(t, md, "# news/a1")
	assert.Contains(t, md, "> Chips rally.")
	assert.Contains(t, md, "| CATEGORIES | categorizer | 2 | `[\"a\\|b\"]` |")

	render, err := tui.NewRenderer(80)
	require.NoError(t, err)
	out, err := render(md)
	require.NoError(t, err)
	assert.Contains(t, out, "news/a1")
}
