package main

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/matsen/litsurvey/internal/importer"
	"github.com/matsen/litsurvey/internal/storage"
)

var convertOutDir string

var convertCmd = &cobra.Command{
	Use:   "convert <ieee|bibtex|paperpile|auto> <file>...",
	Short: "Normalize search exports into canonical CSV",
	Long: `Normalize search exports into the canonical schema
(Title, Authors, Year, Cites, Abstract, DOI, Journal) and save each as
<YYYYMMDD>_<kind>_<name>.csv in the output directory.

A file that cannot be read is reported and skipped; the others are still
converted.

Examples:
  litsurvey convert ieee exports/ieee_deep_AND_learning.csv
  litsurvey convert bibtex refs/*.bib --out csv_results/processed_results
  litsurvey convert paperpile library.json`,
	Args: cobra.MinimumNArgs(2),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVar(&convertOutDir, "out", "", "Output directory (default from config)")
	rootCmd.AddCommand(convertCmd)
}

// ConvertResult is the JSON output for one converted file.
type ConvertResult struct {
	Source  string `json:"source"`
	Records int    `json:"records"`
	Path    string `json:"path,omitempty"`
	Error   string `json:"error,omitempty"`
}

func runConvert(cmd *cobra.Command, args []string) error {
	kind, err := importer.ParseKind(args[0])
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	outDir := convertOutDir
	if outDir == "" {
		outDir = settings.OutputDir
	}

	results, failed := convertFiles(args[1:], kind, outDir)

	if humanOutput {
		for _, r := range results {
			if r.Error != "" {
				outputHuman("%s: %s\n", r.Source, r.Error)
				continue
			}
			outputHuman("%s: %d records -> %s\n", r.Source, r.Records, r.Path)
		}
	} else {
		outputJSON(results)
	}

	if failed == len(results) {
		exitWithError(ExitDataError, "no files converted")
	}
	return nil
}

// convertFiles converts each path independently; a file that cannot be
// read or saved is reported in its result and counted in failed.
func convertFiles(paths []string, kind importer.Kind, outDir string) (results []ConvertResult, failed int) {
	results = make([]ConvertResult, 0, len(paths))
	for _, path := range paths {
		res := convertFile(path, kind, outDir)
		if res.Error != "" {
			failed++
		}
		results = append(results, res)
	}
	return results, failed
}

func convertFile(path string, kind importer.Kind, outDir string) ConvertResult {
	res := ConvertResult{Source: path}
	flog := log.WithField("path", path)

	table, err := importer.LoadFile(path, kind)
	if err != nil {
		flog.WithError(err).Error("skipping unreadable file")
		res.Error = err.Error()
		return res
	}
	res.Records = table.Len()

	prefix := string(kind)
	if kind == importer.KindAuto {
		prefix = ""
	}
	saved, err := storage.SaveResults(table, storage.OutputName(prefix, path), outDir, time.Now())
	if saved == "" {
		flog.WithError(err).Error("results not saved")
		res.Error = err.Error()
		return res
	}

	flog.WithFields(logrus.Fields{"records": res.Records, "saved": saved}).Info("converted")
	res.Path = saved
	return res
}
