// Package tui renders documents for terminals: a colored summary (termenv) and a
// Markdown report rendered with glamour.
package tui
