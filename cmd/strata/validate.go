package main

import (
	"fmt"
	"io"

	"github.com/aretw0/strata/internal/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [FILE]",
	Short: "Check a pipeline file for consistency",
	Long: `Loads the pipeline, builds every annotator and reports duplicate providers,
missing prerequisites and dependency cycles. FILE defaults to --config.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		if len(args) > 0 {
			path = args[0]
		}
		if err := runValidate(cmd.OutOrStdout(), path); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(out io.Writer, path string) error {
	p, err := loadPipeline(path)
	if err != nil {
		return err
	}
	as, err := p.Annotators()
	if err != nil {
		return err
	}
	if issues := validator.ValidateAnnotators(as); len(issues) > 0 {
		for _, i := range issues {
			fmt.Fprintf(out, "✗ %s\n", i)
		}
		return validator.Err(issues)
	}
	fmt.Fprintf(out, "Pipeline %q is valid! ✅ (%d annotators)\n", p.Name, len(as))
	return nil
}
