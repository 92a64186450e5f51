package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/strata/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// It detects a light or dark background; width 0 keeps glamour's default wrap.
func NewRenderer(width int) (func(string) (string, error), error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, err
	}
	return r.Render, nil
}

// Markdown describes doc as a Markdown report: the text, then a table of views.
func Markdown(doc *domain.Document) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", doc.Key())
	if doc.Text != "" {
		for _, line := range strings.Split(strings.TrimSpace(doc.Text), "\n") {
			fmt.Fprintf(&sb, "> %s\n", line)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "%d tokens in %d sentences.\n\n", len(doc.Tokenization.Tokens), len(doc.Tokenization.SentenceEnds))

	views := doc.Views()
	if len(views) == 0 {
		sb.WriteString("_No views._\n")
		return sb.String()
	}
	sb.WriteString("| View | Producer | Generation | Payload |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, v := range views {
		payload := strings.ReplaceAll(Preview(v.Payload, 60), "|", "\\|")
		fmt.Fprintf(&sb, "| %s | %s | %d | `%s` |\n", v.Name, v.Producer, v.Generation, payload)
	}
	return sb.String()
}
