package main

import (
	"fmt"

	"github.com/aretw0/strata/internal/presentation/graph"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [VIEW...]",
	Short: "Export the annotator dependency graph",
	Long: `Outputs a Mermaid diagram (graph TD) of the pipeline. Edges point from a prerequisite
to the view that needs it. Naming views highlights the annotators their plan would run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, nil)
		if err != nil {
			return err
		}

		var overlay *graph.GraphOverlay
		present, _ := cmd.Flags().GetStringSlice("present")
		if len(args) > 0 || len(present) > 0 {
			doc := domain.NewDocument(domain.DefaultCorpus, "graph", "", domain.Tokenization{})
			for _, v := range present {
				doc.PutView(&domain.View{Name: v})
			}
			overlay = &graph.GraphOverlay{PresentViews: present}
			if len(args) > 0 {
				plan, err := a.service.Plan(cmd.Context(), doc, args...)
				if err != nil {
					return err
				}
				overlay.PlannedViews = plan.Views()
			}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(a.service.Registry().Entries(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().StringSlice("present", nil, "Views to highlight as already present")
}
