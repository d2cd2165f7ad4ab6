package main

import (
	"sort"

	"github.com/spf13/cobra"
)

var citesJournalPath string

var citesJournalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Show which providers answered past lookups",
	Long: `Summarize the resolution journal: how many DOIs were resolved and which
provider supplied each count ("none" when no provider had a positive count).`,
	Args: cobra.NoArgs,
	RunE: runCitesJournal,
}

func init() {
	citesJournalCmd.Flags().StringVar(&citesJournalPath, "journal", "", "Resolution journal path (default from config)")
	citesCmd.AddCommand(citesJournalCmd)
}

// JournalResult is the JSON output for the journal command.
type JournalResult struct {
	Path      string         `json:"path"`
	Total     int            `json:"total"`
	Providers map[string]int `json:"providers"`
}

func runCitesJournal(cmd *cobra.Command, args []string) error {
	path := citesJournalPath
	if path == "" {
		path = settings.JournalPath
	}
	j := mustOpenJournal(path)
	defer j.Close()

	total, err := j.Count()
	if err != nil {
		exitWithError(ExitError, "counting journal entries: %v", err)
	}
	counts, err := j.ProviderCounts()
	if err != nil {
		exitWithError(ExitError, "reading journal: %v", err)
	}

	result := JournalResult{Path: path, Total: total, Providers: counts}
	if !humanOutput {
		return outputJSON(result)
	}

	outputHuman("%s: %d DOIs\n", path, total)
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		outputHuman("  %-16s %d\n", name, counts[name])
	}
	return nil
}
