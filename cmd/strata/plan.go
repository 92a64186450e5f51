package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan [VIEW...]",
	Short: "Show which annotators would run to produce views",
	Long: `Resolves the requested views (every view by default) against an empty document,
or one that already holds the --present views, and prints the execution order.
Nothing is executed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		present, _ := cmd.Flags().GetStringSlice("present")
		asJSON, _ := cmd.Flags().GetBool("json")
		return runPlan(cmd.Context(), cmd.OutOrStdout(), a.service, args, present, asJSON)
	},
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringSlice("present", nil, "Views to treat as already present")
	planCmd.Flags().Bool("json", false, "Print the plan as JSON")
}

func runPlan(ctx context.Context, out io.Writer, svc *strata.Service, views, present []string, asJSON bool) error {
	doc := domain.NewDocument(domain.DefaultCorpus, "plan", "", domain.Tokenization{})
	for _, v := range present {
		doc.PutView(&domain.View{Name: v})
	}

	plan, err := svc.Plan(ctx, doc, views...)
	if err != nil {
		return err
	}
	return writePlan(out, plan, asJSON)
}

func writePlan(out io.Writer, plan *strata.Plan, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	}
	if plan.Empty() {
		fmt.Fprintln(out, "Nothing to do.")
		return nil
	}
	for i, s := range plan.Steps {
		fmt.Fprintf(out, "%d. %s (%s)", i+1, s.View, s.Annotator)
		if s.Requested != s.View {
			fmt.Fprintf(out, " for %s", s.Requested)
		}
		fmt.Fprintln(out)
	}
	return nil
}
