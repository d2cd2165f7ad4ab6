package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/litsurvey/internal/stats"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <table-or-dir>...",
	Short: "Summarize search result tables",
	Long: `Report paper count, year range, citation totals and the five most cited
papers for each table, along with the search engine and terms encoded in its
file name.

Examples:
  litsurvey analyze csv_results/processed_results
  litsurvey analyze scholar_deep_AND_learning.csv --human`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	tables := loadTables(args)
	if len(tables) == 0 {
		exitWithError(ExitDataError, "no readable tables")
	}

	summaries := make([]stats.Summary, len(tables))
	for i, t := range tables {
		summaries[i] = stats.Summarize(t)
	}

	if !humanOutput {
		return outputJSON(summaries)
	}
	for _, s := range summaries {
		printSummaryHuman(s)
	}
	return nil
}

func printSummaryHuman(s stats.Summary) {
	outputHuman("%s\n", s.Tag)
	outputHuman("  Engine: %s\n", s.SearchInfo.Engine)
	if len(s.SearchInfo.Terms) > 0 {
		outputHuman("  Terms: %s\n", strings.Join(s.SearchInfo.Terms, ", "))
	}
	if len(s.SearchInfo.ExcludeTerms) > 0 {
		outputHuman("  Excluded: %s\n", strings.Join(s.SearchInfo.ExcludeTerms, ", "))
	}
	outputHuman("  Papers: %d\n", s.TotalPapers)
	if s.YearRange != nil {
		outputHuman("  Years: %d-%d\n", s.YearRange.Min, s.YearRange.Max)
	}
	outputHuman("  Citations: %d (avg %.1f)\n", s.TotalCitations, s.AvgCitations)
	if len(s.TopCited) > 0 {
		outputHuman("  Top cited:\n")
		for i, r := range s.TopCited {
			outputHuman("    %d. [%d] %s\n", i+1, r.Cites, truncateString(r.Title, TitleMaxLen))
		}
	}
	outputHuman("\n")
}
