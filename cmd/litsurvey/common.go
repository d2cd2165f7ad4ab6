package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matsen/litsurvey/internal/stats"
	"github.com/matsen/litsurvey/internal/storage"
)

var (
	commonThreshold float64
	commonSave      bool
	commonOutDir    string
)

var commonCmd = &cobra.Command{
	Use:   "common <table-or-dir>...",
	Short: "Find papers that appear in more than one table",
	Long: `Compare every pair of tables and report papers whose titles match.

Similarity is the fraction of the first title's distinct words that also
appear in the second, after lowercasing and dropping punctuation. A paper is
reported when the similarity reaches --threshold.

Examples:
  litsurvey common csv_results/processed_results
  litsurvey common ieee.csv scholar.csv --threshold 0.9 --save`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCommon,
}

func init() {
	commonCmd.Flags().Float64Var(&commonThreshold, "threshold", 0, "Minimum title similarity (default from config, 0.8)")
	commonCmd.Flags().BoolVar(&commonSave, "save", false, "Save the duplicates as a dated CSV")
	commonCmd.Flags().StringVar(&commonOutDir, "out", "", "Output directory for --save (default from config)")
	rootCmd.AddCommand(commonCmd)
}

// CommonResult is the JSON output for the common command.
type CommonResult struct {
	Tables     int               `json:"tables"`
	Threshold  float64           `json:"threshold"`
	Duplicates []stats.Duplicate `json:"duplicates"`
	Path       string            `json:"path,omitempty"`
}

func runCommon(cmd *cobra.Command, args []string) error {
	threshold := commonThreshold
	if threshold == 0 {
		threshold = settings.Threshold
	}
	if threshold <= 0 || threshold > 1 {
		exitWithError(ExitError, "--threshold must be in (0, 1], got %v", threshold)
	}

	tables := loadTables(args)
	if len(tables) < 2 {
		exitWithError(ExitDataError, "need at least two readable tables, got %d", len(tables))
	}

	dups := stats.FindCommonPapers(tables, threshold)
	result := CommonResult{Tables: len(tables), Threshold: threshold, Duplicates: dups}

	if commonSave {
		outDir := commonOutDir
		if outDir == "" {
			outDir = settings.OutputDir
		}
		path, err := storage.SaveResults(stats.DuplicatesTable(dups), stats.CommonPapersTag, outDir, time.Now())
		if path == "" {
			log.WithError(err).Error("duplicates not saved")
		}
		result.Path = path
	}

	if !humanOutput {
		return outputJSON(result)
	}
	outputHuman("%d papers found in more than one of %d tables\n", len(dups), len(tables))
	for _, d := range dups {
		outputHuman("  [%d] %s\n", d.Cites, truncateString(d.Title, TitleMaxLen))
	}
	if result.Path != "" {
		outputHuman("Saved to %s\n", result.Path)
	}
	return nil
}
