// Package main provides the litsurvey CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/matsen/litsurvey/internal/config"
	"github.com/matsen/litsurvey/internal/logging"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	logLevel    string

	settings config.Settings
	log      *logrus.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "litsurvey",
	Short: "Aggregate and analyze literature search exports",
	Long: `litsurvey normalizes search results exported from literature databases
(IEEE Xplore CSV, BibTeX, Paperpile JSON, canonical CSV) into one tabular schema, reports
statistics, finds papers shared between searches and backfills missing
citation counts from Semantic Scholar, Crossref, Scopus and Google Scholar.

All commands output JSON by default; use --human for readable text.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides config")
	rootCmd.Version = Version
}

// setup loads the global config and builds the logger before any command.
func setup(cmd *cobra.Command, args []string) error {
	s, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if logLevel != "" {
		s.LogLevel = logLevel
	}

	l, err := logging.New(s.LogLevel, os.Stderr)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	settings = s
	log = l
	return nil
}
