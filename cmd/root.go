package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/MyCarrier-DevOps/go-versionist/internal/logger"
	"github.com/MyCarrier-DevOps/go-versionist/internal/output"
)

// Global flags shared across commands.
var (
	flagPath      string
	flagConfig    string
	flagCurrent   string
	flagDry       bool
	flagOutput    string
	flagExplain   bool
	flagVerbosity string
)

// rootCmd is the top-level command for versionist.
var rootCmd = &cobra.Command{
	Use:   "versionist",
	Short: "Changelog and version management from annotated commits",
	Long: `versionist reads the commits since the last documented release, works out
the next semantic version from their annotations, prepends a changelog entry
and updates the project's version files.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.Configure(flagVerbosity)
	},
	// Default action is a full run.
	RunE: runRunE,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagPath, "path", "p", ".", "path to the git repository")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (default: auto-detect)")
	rootCmd.PersistentFlags().StringVar(&flagCurrent, "current", "", "current version, instead of the latest documented one")
	rootCmd.PersistentFlags().BoolVar(&flagDry, "dry", false, "show the entry and the changelog diff without writing anything")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "", "output format: json, env, or empty for text")
	rootCmd.PersistentFlags().BoolVar(&flagExplain, "explain", false, "show how the version was calculated")
	rootCmd.PersistentFlags().StringVarP(&flagVerbosity, "verbosity", "v", "info", "log verbosity: quiet, info, debug")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		output.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}
