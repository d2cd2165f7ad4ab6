package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/litsurvey/internal/importer"
	"github.com/matsen/litsurvey/internal/stats"
)

var trendsCmd = &cobra.Command{
	Use:   "trends <table>",
	Short: "Citations per publication year",
	Long: `Sum citation counts by publication year. Papers without a year are left out.

Examples:
  litsurvey trends 20250307_ieee_graph.csv --human`,
	Args: cobra.ExactArgs(1),
	RunE: runTrends,
}

func init() {
	rootCmd.AddCommand(trendsCmd)
}

// TrendsResult is the JSON output for the trends command.
type TrendsResult struct {
	Tag    string                `json:"tag"`
	Trends []stats.YearCitations `json:"trends"`
}

func runTrends(cmd *cobra.Command, args []string) error {
	table, err := importer.LoadFile(args[0], importer.KindAuto)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	result := TrendsResult{Tag: table.Tag, Trends: stats.CitationTrends(table)}

	if !humanOutput {
		return outputJSON(result)
	}
	outputHuman("%s\n", result.Tag)
	for _, yc := range result.Trends {
		outputHuman("  %d  %d\n", yc.Year, yc.Citations)
	}
	return nil
}
