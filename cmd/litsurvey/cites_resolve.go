package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/litsurvey/internal/citation"
	"github.com/matsen/litsurvey/internal/pdf"
)

var citesResolvePDF string

var citesResolveCmd = &cobra.Command{
	Use:   "resolve [doi]",
	Short: "Look up the citation count for one DOI",
	Long: `Look up the citation count for one DOI and report which provider answered.

With --pdf, the DOI is read from the first pages of the PDF instead.

Examples:
  litsurvey cites resolve 10.1038/nature14539
  litsurvey cites resolve https://doi.org/10.1145/3292500.3330701 --human
  litsurvey cites resolve --pdf paper.pdf`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCitesResolve,
}

func init() {
	citesResolveCmd.Flags().StringVar(&citesResolvePDF, "pdf", "", "Read the DOI from this PDF")
	citesCmd.AddCommand(citesResolveCmd)
}

// ResolveResult is the JSON output for the resolve command.
type ResolveResult struct {
	citation.Result
	Providers []string  `json:"providers"`
	PDF       *pdf.Info `json:"pdf,omitempty"`
}

func runCitesResolve(cmd *cobra.Command, args []string) error {
	var doi string
	var info *pdf.Info

	switch {
	case citesResolvePDF != "" && len(args) > 0:
		exitWithError(ExitError, "give either a DOI or --pdf, not both")
	case citesResolvePDF != "":
		i, err := pdf.Inspect(citesResolvePDF)
		if err != nil {
			exitWithError(ExitDataError, "reading PDF: %v", err)
		}
		if i.DOI == "" {
			exitWithError(ExitDataError, "no DOI found in %s", citesResolvePDF)
		}
		doi = i.DOI
		info = &i
	case len(args) == 1:
		doi = args[0]
	default:
		exitWithError(ExitError, "a DOI or --pdf is required")
	}

	if strings.TrimSpace(citation.NormalizeDOI(doi)) == "" {
		exitWithError(ExitError, "empty DOI")
	}

	resolver := newResolver()
	res, err := resolver.ResolveDetailed(context.Background(), doi)
	if err != nil {
		exitWithError(ExitError, "resolving %s: %v", doi, err)
	}

	result := ResolveResult{Result: res, Providers: resolver.Providers(), PDF: info}

	if !humanOutput {
		return outputJSON(result)
	}
	if info != nil && info.Title != "" {
		outputHuman("%s\n", truncateString(info.Title, TitleMaxLen))
	}
	if res.Provider == "" {
		outputHuman("%s: no citations found (tried %s)\n", res.DOI, strings.Join(result.Providers, ", "))
		return nil
	}
	outputHuman("%s: %d citations (%s)\n", res.DOI, res.Count, res.Provider)
	return nil
}
