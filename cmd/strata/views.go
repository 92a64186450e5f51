package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/aretw0/strata/pkg/registry"
	"github.com/spf13/cobra"
)

var viewsCmd = &cobra.Command{
	Use:   "views",
	Short: "List the views the pipeline can produce",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		return writeViews(cmd.OutOrStdout(), a.service.Registry().Entries())
	},
}

func init() {
	rootCmd.AddCommand(viewsCmd)
}

func writeViews(out io.Writer, entries []registry.Entry) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VIEW\tANNOTATOR\tPREREQUISITES")
	for _, e := range entries {
		pre := "-"
		if len(e.Prerequisites) > 0 {
			pre = strings.Join(e.Prerequisites, ", ")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.View, e.Annotator, pre)
	}
	return tw.Flush()
}
