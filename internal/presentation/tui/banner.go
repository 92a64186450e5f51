package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Strata ASCII banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct{ text, color string }{
		{"   ___ _            _        ", "#818cf8"},
		{"  / __| |_ _ _ __ _| |_ __ _ ", "#a78bfa"},
		{"  \\__ \\  _| '_/ _` |  _/ _` |", "#c084fc"},
		{"  |___/\\__|_| \\__,_|\\__\\__,_|", "#e879f9"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
