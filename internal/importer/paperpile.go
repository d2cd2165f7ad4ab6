package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/segmentio/encoding/json"

	"github.com/matsen/litsurvey/internal/record"
)

// FlexibleString can unmarshal from either string or number JSON values.
type FlexibleString string

func (f *FlexibleString) UnmarshalJSON(data []byte) error {
	// Handle null
	if string(data) == "null" {
		*f = ""
		return nil
	}

	// Try string first
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleString(s)
		return nil
	}

	// Try number
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexibleString(n.String())
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into FlexibleString", string(data))
}

func (f FlexibleString) String() string {
	return string(f)
}

// PaperpileEntry represents a single entry from a Paperpile JSON export.
type PaperpileEntry struct {
	Citekey   string `json:"citekey"`
	DOI       string `json:"doi"`
	Title     string `json:"title"`
	Abstract  string `json:"abstract"`
	Journal   string `json:"journal"`
	Published struct {
		Year FlexibleString `json:"year"`
	} `json:"published"`
	Author []struct {
		First string `json:"first"`
		Last  string `json:"last"`
	} `json:"author"`
}

// ParsePaperpile parses a Paperpile JSON export into a canonical table.
//
// Paperpile carries no citation counts, so Cites is always 0. Entries are
// never rejected for missing fields. Authors are joined BibTeX style
// ("Last, First and Last, First").
func ParsePaperpile(r io.Reader, tag string) (record.Table, error) {
	table := record.Table{Tag: tag}

	data, err := io.ReadAll(r)
	if err != nil {
		return table, fmt.Errorf("reading Paperpile export: %w", err)
	}

	var entries []PaperpileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return table, fmt.Errorf("parsing Paperpile JSON: %w", err)
	}

	for _, entry := range entries {
		table.Records = append(table.Records, paperpileEntryToRecord(entry))
	}
	return table, nil
}

func paperpileEntryToRecord(entry PaperpileEntry) record.Record {
	names := make([]string, 0, len(entry.Author))
	for _, a := range entry.Author {
		switch {
		case a.Last == "":
			continue
		case a.First == "":
			names = append(names, a.Last)
		default:
			names = append(names, a.Last+", "+a.First)
		}
	}

	return record.Record{
		Title:    strings.TrimSpace(entry.Title),
		Authors:  strings.Join(names, " and "),
		Year:     record.ParseYear(entry.Published.Year.String()),
		Cites:    0,
		Abstract: entry.Abstract,
		DOI:      entry.DOI,
		Journal:  entry.Journal,
	}
}
