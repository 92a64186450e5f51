// Package mcp exposes a strata Service as a Model Context Protocol server, letting
// agents discover views, preview plans and annotate text.
package mcp
