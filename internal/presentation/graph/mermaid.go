package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/strata/pkg/registry"
)

// GraphOverlay contains document state to visualize on the graph.
type GraphOverlay struct {
	PresentViews []string
	PlannedViews []string
}

// GenerateMermaid produces a Mermaid flowchart of the annotator dependency graph.
// Edges point from a prerequisite to the view that needs it. It applies semantic styling:
// - Root views (no prerequisites): ((Circle))
// - Default: [Rectangle] labeled with the view and its annotator
// Overlay styles (present/planned) are applied if provided.
func GenerateMermaid(entries []registry.Entry, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, e := range entries {
		safeID := sanitizeMermaidID(e.View)

		opener, closer := "[", "]"
		if len(e.Prerequisites) == 0 {
			opener, closer = "((", "))"
		}
		label := strings.ReplaceAll(e.View, "\"", "'")
		sb.WriteString(fmt.Sprintf("    %s%s\"%s <br/> %s\"%s\n", safeID, opener, label, e.Annotator, closer))

		for _, pre := range e.Prerequisites {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", sanitizeMermaidID(pre), safeID))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef present fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef planned fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		writeClass(&sb, overlay.PresentViews, "present")
		writeClass(&sb, overlay.PlannedViews, "planned")
	}

	return sb.String()
}

func writeClass(sb *strings.Builder, views []string, class string) {
	seen := make(map[string]bool)
	for _, v := range views {
		safeID := sanitizeMermaidID(v)
		if safeID == "" || seen[safeID] {
			continue
		}
		seen[safeID] = true
		sb.WriteString(fmt.Sprintf("    class %s %s;\n", safeID, class))
	}
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
