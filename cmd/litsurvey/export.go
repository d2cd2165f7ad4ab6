package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/litsurvey/internal/export"
	"github.com/matsen/litsurvey/internal/importer"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export tables to other bibliography formats",
}

var exportBibtexCmd = &cobra.Command{
	Use:   "bibtex <table>",
	Short: "Export a table to BibTeX",
	Long: `Export a table to BibTeX. Cite keys are generated from the first author,
year and title (e.g. Zhang2018-vi) and made unique within the file.

Examples:
  litsurvey export bibtex common_papers.csv > shared.bib
  litsurvey export bibtex ieee.csv -o ieee.bib`,
	Args: cobra.ExactArgs(1),
	RunE: runExportBibtex,
}

func init() {
	exportBibtexCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to file instead of stdout")
	exportCmd.AddCommand(exportBibtexCmd)
	rootCmd.AddCommand(exportCmd)
}

func runExportBibtex(cmd *cobra.Command, args []string) error {
	table, err := importer.LoadFile(args[0], importer.KindAuto)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	// Note: BibTeX is always text output, never JSON
	bib := export.ToBibTeXList(table)

	if exportOutput == "" {
		fmt.Print(bib)
		return nil
	}
	if err := os.WriteFile(exportOutput, []byte(bib), 0644); err != nil {
		exitWithError(ExitError, "writing %s: %v", exportOutput, err)
	}
	log.WithField("path", exportOutput).WithField("entries", table.Len()).Info("exported")
	return nil
}
