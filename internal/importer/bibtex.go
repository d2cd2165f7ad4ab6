package importer

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/matsen/litsurvey/internal/record"
	"github.com/nickng/bibtex"
)

// atPlaceholder stands in for "@" inside field values while the parser runs.
// The parser rejects a bare "@" in a braced value.
const atPlaceholder = '\uE040'

// bibtex.Parse keeps scanner and result state in package globals, so calls
// are serialized and the scanner is reset around every parse.
var bibParseMu sync.Mutex

// ParseBibTeX parses BibTeX entries into a canonical table.
//
// BibTeX carries no citation counts, so Cites is always 0. A missing or
// non-numeric year is a missing year; absent text fields are "".
//
// The file is parsed as a whole first so @string macros resolve. If that
// fails, each entry is parsed on its own, and an entry the parser still
// rejects is read field by field, so one malformed entry never costs the
// rest of the file.
func ParseBibTeX(r io.Reader, tag string) (record.Table, error) {
	table := record.Table{Tag: tag}

	data, err := io.ReadAll(r)
	if err != nil {
		return table, fmt.Errorf("reading BibTeX: %w", err)
	}
	chunks := splitBibEntries(string(data))

	var text strings.Builder
	for _, c := range chunks {
		text.WriteString(c)
		text.WriteString("\n")
	}

	if bib, err := parseBib(text.String()); err == nil {
		for _, entry := range bib.Entries {
			if entry != nil {
				table.Records = append(table.Records, bibEntryToRecord(entry))
			}
		}
		return table, nil
	}

	for _, chunk := range chunks {
		if rec, ok := parseBibChunk(chunk); ok {
			table.Records = append(table.Records, rec)
		}
	}
	return table, nil
}

// parseBib runs the library parser with its global scanner state reset
// before and after.
func parseBib(text string) (*bibtex.BibTex, error) {
	bibParseMu.Lock()
	defer bibParseMu.Unlock()

	resetBibScanner()
	defer resetBibScanner()
	return bibtex.Parse(strings.NewReader(text))
}

// resetBibScanner clears the scanner's "inside a field value" flag, which
// survives a failed parse. Scanning a lone comma is the only way to clear
// it from outside the package; the resulting syntax error is expected.
func resetBibScanner() {
	_, _ = bibtex.Parse(strings.NewReader(","))
}

// parseBibChunk turns one entry into a record, falling back to field
// extraction when the parser rejects it. ok is false for @comment, @string
// and @preamble blocks.
func parseBibChunk(chunk string) (record.Record, bool) {
	kind, _ := bibEntryHeader(chunk)
	switch strings.ToLower(kind) {
	case "", "comment", "string", "preamble":
		return record.Record{}, false
	}

	if bib, err := parseBib(chunk); err == nil && len(bib.Entries) > 0 && bib.Entries[0] != nil {
		return bibEntryToRecord(bib.Entries[0]), true
	}

	fields := scanBibFields(chunk)
	field := func(name string) string {
		return cleanBibValue(fields[name])
	}
	return record.Record{
		Title:    field("title"),
		Authors:  field("author"),
		Year:     record.ParseYear(field("year")),
		Abstract: field("abstract"),
		DOI:      field("doi"),
		Journal:  field("journal"),
	}, true
}

func bibEntryToRecord(entry *bibtex.BibEntry) record.Record {
	field := func(name string) string {
		return bibField(entry, name)
	}

	return record.Record{
		Title:    field("title"),
		Authors:  field("author"),
		Year:     record.ParseYear(field("year")),
		Cites:    0,
		Abstract: field("abstract"),
		DOI:      field("doi"),
		Journal:  field("journal"),
	}
}

// bibField looks up a field case-insensitively and strips BibTeX grouping
// braces, which only protect capitalization.
func bibField(entry *bibtex.BibEntry, name string) string {
	for key, value := range entry.Fields {
		if !strings.EqualFold(key, name) || value == nil {
			continue
		}
		return cleanBibValue(value.String())
	}
	return ""
}

var braceStripper = strings.NewReplacer("{", "", "}", "", string(atPlaceholder), "@")

func cleanBibValue(s string) string {
	s = braceStripper.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
