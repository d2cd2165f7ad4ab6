package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matsen/litsurvey/internal/citation"
	"github.com/matsen/litsurvey/internal/storage"
)

var (
	fillJournalPath string
	fillNoJournal   bool
	fillUseCache    bool
	fillEvery       int
)

var citesFillCmd = &cobra.Command{
	Use:   "fill <table>",
	Short: "Fill missing citation counts in a table, in place",
	Long: `Resolve citation counts for rows that have a DOI but no positive count and
write them back into the table.

The table is saved every --every updates and at the end. Rows that already
have a positive count are skipped, so an interrupted run (Ctrl-C saves
progress first) can simply be started again.

Examples:
  litsurvey cites fill 20250307_acm_privacy.csv
  litsurvey cites fill acm.csv --use-cache --every 25`,
	Args: cobra.ExactArgs(1),
	RunE: runCitesFill,
}

func init() {
	citesFillCmd.Flags().StringVar(&fillJournalPath, "journal", "", "Resolution journal path (default from config)")
	citesFillCmd.Flags().BoolVar(&fillNoJournal, "no-journal", false, "Do not record resolutions in the journal")
	citesFillCmd.Flags().BoolVar(&fillUseCache, "use-cache", false, "Reuse positive counts from the journal instead of querying")
	citesFillCmd.Flags().IntVar(&fillEvery, "every", 0, "Updates between checkpoints (default from config, 10)")
	citesCmd.AddCommand(citesFillCmd)
}

// FillResult is the JSON output for the fill command.
type FillResult struct {
	Path        string `json:"path"`
	Interrupted bool   `json:"interrupted"`
	citation.FillStats
}

func runCitesFill(cmd *cobra.Command, args []string) error {
	path := args[0]

	table, err := storage.LoadTable(path)
	if err != nil {
		exitWithError(ExitDataError, "loading %s: %v", path, err)
	}

	if fillUseCache && fillNoJournal {
		exitWithError(ExitError, "--use-cache needs the journal; drop --no-journal")
	}

	opts := citation.FillOptions{
		CheckpointEvery: settings.CheckpointEvery,
		UseCache:        fillUseCache,
		Log:             log,
	}
	if fillEvery > 0 {
		opts.CheckpointEvery = fillEvery
	}
	if !fillNoJournal {
		j := mustOpenJournal(fillJournalPath)
		defer j.Close()
		opts.Journal = j
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fillStats, err := citation.FillMissing(ctx, &table, newResolver(), citation.TableFile(path), opts)
	result := FillResult{Path: path, FillStats: fillStats}

	exitCode := ExitSuccess
	if err != nil {
		if !errors.Is(err, citation.ErrAborted) {
			exitWithError(ExitError, "filling citations: %v", err)
		}
		result.Interrupted = true
		exitCode = ExitInterrupted
	}

	if humanOutput {
		outputHuman("%s: %d updated (%d with citations, %d from cache), %d already cited, %d without DOI\n",
			path, fillStats.Updated, fillStats.Found, fillStats.FromCache, fillStats.AlreadyCited, fillStats.MissingDOI)
		if result.Interrupted {
			outputHuman("Interrupted; progress saved. Run again to continue.\n")
		}
	} else {
		outputJSON(result)
	}

	if exitCode != ExitSuccess {
		os.Exit(exitCode)
	}
	return nil
}
