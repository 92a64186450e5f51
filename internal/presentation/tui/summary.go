package tui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/strata/pkg/domain"
	"github.com/muesli/termenv"
)

const previewLimit = 72

// RenderSummary writes a compact, colored overview of doc: its key, token and sentence
// counts, then one line per view with producer, generation and a payload preview.
// Use termenv.Ascii as profile to disable colors.
func RenderSummary(w io.Writer, doc *domain.Document, profile termenv.Profile) {
	title := profile.String(doc.Key()).Bold().Foreground(profile.Color("#a78bfa"))
	fmt.Fprintf(w, "%s  %d tokens, %d sentences\n", title,
		len(doc.Tokenization.Tokens), len(doc.Tokenization.SentenceEnds))

	views := doc.Views()
	if len(views) == 0 {
		fmt.Fprintln(w, profile.String("  (no views)").Faint())
		return
	}

	width := 0
	for _, v := range views {
		if len(v.Name) > width {
			width = len(v.Name)
		}
	}
	for _, v := range views {
		name := profile.String(fmt.Sprintf("%-*s", width, v.Name)).Foreground(profile.Color("#34d399"))
		meta := profile.String(fmt.Sprintf("gen %d by %s", v.Generation, v.Producer)).Faint()
		fmt.Fprintf(w, "  %s  %s  %s\n", name, meta, Preview(v.Payload, previewLimit))
	}
}

// Preview renders a payload as single-line JSON, truncated to limit runes.
func Preview(payload any, limit int) string {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("<%T>", payload)
	}
	s := strings.ReplaceAll(string(data), "\n", " ")
	r := []rune(s)
	if limit > 0 && len(r) > limit {
		return string(r[:limit-1]) + "…"
	}
	return s
}
