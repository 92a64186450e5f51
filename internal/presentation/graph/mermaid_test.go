package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/strata/internal/presentation/graph"
	"github.com/aretw0/strata/pkg/registry"
)

func TestGenerateMermaid(t *testing.T) {
	entries := []registry.Entry{
		{Index: 0, View: "TOKENS", Annotator: "tokenizer"},
		{Index: 1, View: "POS", Annotator: "pos-tagger", Prerequisites: []string{"TOKENS"}},
		{Index: 2, View: "named.entities", Annotator: "ner", Prerequisites: []string{"TOKENS", "POS"}},
	}

	tests := []struct {
		name     string
		overlay  *graph.GraphOverlay
		contains []string
		excludes []string
	}{
		{
			name: "Shapes And Edges",
			contains: []string{
				"graph TD\n",
				`TOKENS(("TOKENS <br/> tokenizer"))`,
				`POS["POS <br/> pos-tagger"]`,
				"TOKENS --> POS",
				"POS --> named_entities",
			},
			excludes: []string{"classDef"},
		},
		{
			name: "Overlay",
			overlay: &graph.GraphOverlay{
				PresentViews: []string{"TOKENS", "TOKENS"},
				PlannedViews: []string{"POS", "named.entities"},
			},
			contains: []string{
				"class TOKENS present;",
				"class POS planned;",
				"class named_entities planned;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(entries, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("GenerateMermaid() = \n%v\nUnexpected substring: %v", got, unwanted)
				}
			}
			if n := strings.Count(got, "class TOKENS present;"); n > 1 {
				t.Errorf("present class applied %d times", n)
			}
		})
	}
}
