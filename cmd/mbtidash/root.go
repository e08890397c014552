package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mbtidash/internal/config"
	applog "mbtidash/internal/log"
)

// Global flag values.
var (
	verbose bool
	quiet   bool
	noColor bool
)

// logger is configured by the root command before any subcommand runs.
var logger = applog.New(applog.DefaultConfig())

// rootCmd is the base command for mbtidash.
var rootCmd = &cobra.Command{
	Use:   "mbtidash",
	Short: "Browse personality-type scores as tables and charts",
	Long: `mbtidash serves a small dashboard over a fixed table of sixteen
personality-type scores. Pick one type to see its score highlighted in a
donut chart, or all types to compare them in a bar chart.

All scores are fictional sample data.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		setupLogging(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

// setupLogging resolves the level from LOG_LEVEL and the verbosity flags.
// An invalid LOG_LEVEL falls back to info here; serve rejects it.
// LOG_FORMAT=json switches to JSON lines.
func setupLogging(cmd *cobra.Command) {
	cfg := config.Load()
	fallback, _ := applog.ParseLevel(cfg.LogLevel)
	logger = applog.New(applog.Config{
		Level:     applog.LevelFromFlags(verbose, quiet, fallback),
		Component: applog.ComponentCLI,
		Output:    cmd.ErrOrStderr(),
		JSON:      cfg.JSONLogs(),
	})
	applog.SetDefault(logger)

	if noColor {
		color.NoColor = true
	}
}
