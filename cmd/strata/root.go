package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/internal/logging"
	"github.com/aretw0/strata/pkg/config"
	"github.com/aretw0/strata/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var rootCmd = &cobra.Command{
	Use:   "strata",
	Short: "Strata computes layered annotations over text",
	Long: `Strata runs a pipeline of annotators over documents. Each annotator produces one
named view and declares the views it needs; asking for a view runs only the
annotators required to make it present.

The pipeline comes from a YAML file (--config) or the built-in default.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Pipeline file (YAML); the built-in pipeline is used when empty")
	rootCmd.PersistentFlags().String("log-level", "", "Override logging.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "Override logging.format (text, json)")
}

// app bundles what every command builds from the pipeline file.
type app struct {
	pipeline *config.Pipeline
	logger   *slog.Logger
	service  *strata.Service
}

// loadPipeline reads path, or returns the built-in pipeline when path is empty.
func loadPipeline(path string) (*config.Pipeline, error) {
	if path == "" {
		return config.Defaults(), nil
	}
	return config.Load(path)
}

// newApp builds the service from the persistent flags. A non-nil reg receives the
// executor metrics.
func newApp(cmd *cobra.Command, reg prometheus.Registerer, opts ...strata.Option) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	p, err := loadPipeline(path)
	if err != nil {
		return nil, err
	}

	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		p.Logging.Level = v
	}
	if v, _ := cmd.Flags().GetString("log-format"); v != "" {
		p.Logging.Format = v
	}
	level, err := logging.ParseLevel(p.Logging.Level)
	if err != nil {
		return nil, err
	}
	logger := logging.New(level, p.Logging.Format, cmd.ErrOrStderr())

	views, err := p.Registry()
	if err != nil {
		return nil, err
	}

	hooks := observability.LogHooks(logger)
	if reg != nil {
		hooks = observability.Combine(hooks, observability.NewMetrics(reg).Hooks())
	}

	base := []strata.Option{
		strata.WithRegistry(views),
		strata.WithLogger(logger),
		strata.WithName(p.Name),
		strata.WithLifecycleHooks(hooks),
		strata.WithLockTTL(p.Lock.TTL),
	}
	svc := strata.New(append(base, opts...)...)

	return &app{pipeline: p, logger: logger, service: svc}, nil
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of f, or 0 when unknown.
func terminalWidth(f *os.File) int {
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return w
}
