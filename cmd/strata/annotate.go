package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/internal/presentation/tui"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/tokenize"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var annotateCmd = &cobra.Command{
	Use:   "annotate [FILE]",
	Short: "Annotate a text file (or stdin)",
	Long: `Reads text from FILE, or from stdin when FILE is omitted or "-", builds a document
and computes the requested views (every view by default).

Output formats:
- summary: one colored line per view (default on a terminal)
- json: the full document (default when piped)
- markdown: a report rendered for the terminal`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, nil)
		if err != nil {
			return err
		}

		in := cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		o := annotateOptions{profile: termenv.Ascii}
		o.views, _ = cmd.Flags().GetStringSlice("views")
		o.html, _ = cmd.Flags().GetBool("html")
		o.corpus, _ = cmd.Flags().GetString("corpus")
		o.doc, _ = cmd.Flags().GetString("doc")
		o.format, _ = cmd.Flags().GetString("format")

		if isTerminal(os.Stdout) {
			o.profile = termenv.EnvColorProfile()
			o.width = terminalWidth(os.Stdout)
			o.render = true
			if o.format == "" {
				o.format = "summary"
			}
		}
		if o.format == "" {
			o.format = "json"
		}

		return runAnnotate(cmd.Context(), a.service, in, cmd.OutOrStdout(), o)
	},
}

func init() {
	rootCmd.AddCommand(annotateCmd)

	annotateCmd.Flags().StringSlice("views", nil, "Views to compute (default: all)")
	annotateCmd.Flags().Bool("html", false, "Extract visible text from HTML input")
	annotateCmd.Flags().String("corpus", domain.DefaultCorpus, "Corpus identifier")
	annotateCmd.Flags().String("doc", "stdin", "Document identifier")
	annotateCmd.Flags().StringP("format", "f", "", "Output format: summary, json or markdown")
}

type annotateOptions struct {
	views   []string
	html    bool
	corpus  string
	doc     string
	format  string
	profile termenv.Profile
	width   int
	// render passes markdown through the terminal renderer.
	render bool
}

// runAnnotate writes the document even when an annotator fails, so the views computed
// before the failure are visible, then returns the error.
func runAnnotate(ctx context.Context, svc *strata.Service, in io.Reader, out io.Writer, o annotateOptions) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	text := string(data)
	if o.html {
		if text, err = tokenize.ExtractHTMLText(text); err != nil {
			return fmt.Errorf("extract html: %w", err)
		}
	}

	doc, err := svc.CreateBasicDocument(ctx, o.corpus, o.doc, text, nil)
	if err != nil {
		return err
	}

	var runErr error
	if len(o.views) == 0 {
		_, runErr = svc.AnnotateDocument(ctx, doc, false)
	} else {
		_, runErr = svc.AddViews(ctx, doc, o.views, nil)
	}

	var execErr *domain.ExecutionError
	if runErr != nil && !errors.As(runErr, &execErr) {
		return runErr
	}

	if err := writeDocument(out, doc, o); err != nil {
		return err
	}
	return runErr
}

func writeDocument(out io.Writer, doc *domain.Document, o annotateOptions) error {
	switch strings.ToLower(o.format) {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "summary":
		tui.RenderSummary(out, doc, o.profile)
		return nil
	case "markdown", "md":
		md := tui.Markdown(doc)
		if o.render {
			render, err := tui.NewRenderer(o.width)
			if err != nil {
				return err
			}
			if md, err = render(md); err != nil {
				return err
			}
		}
		_, err := io.WriteString(out, md)
		return err
	default:
		return fmt.Errorf("unknown format %q (want summary, json or markdown)", o.format)
	}
}
