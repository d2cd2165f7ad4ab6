package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matsen/litsurvey/internal/citation"
	"github.com/matsen/litsurvey/internal/storage"
)

var citesCmd = &cobra.Command{
	Use:   "cites",
	Short: "Backfill and look up citation counts",
	Long: `Look up citation counts by DOI.

Providers are tried in order until one reports a positive count:
  1. Semantic Scholar (S2_API_KEY optional)
  2. Crossref
  3. Scopus (only when SCOPUS_API_KEY is set)
  4. Google Scholar (scraped, 2-5s delay)

Keys are read from the environment, a .env file in the working directory,
or the global config file.`,
}

func init() {
	// Load .env before the config is read so keys in it take effect
	_ = godotenv.Load()
	rootCmd.AddCommand(citesCmd)
}

// newResolver builds the standard provider chain from the loaded settings.
func newResolver() *citation.Resolver {
	return citation.NewResolver(settings.Citation(), log)
}

// mustOpenJournal opens the resolution journal, exits on error.
// The caller is responsible for calling Close() on the returned journal.
func mustOpenJournal(path string) *storage.Journal {
	if path == "" {
		path = settings.JournalPath
	}
	j, err := storage.OpenJournal(path)
	if err != nil {
		exitWithError(ExitError, "opening journal: %v", err)
	}
	return j
}
