// Package export renders canonical tables in other bibliography formats.
package export

import (
	"fmt"
	"strings"

	"github.com/matsen/litsurvey/internal/record"
)

// ToBibTeX converts a record to a BibTeX entry with the given cite key.
func ToBibTeX(rec record.Record, key string) string {
	entryType := determineEntryType(rec.Journal)
	var b strings.Builder

	b.WriteString(fmt.Sprintf("@%s{%s,\n", entryType, key))

	// Authors
	if authors := ParseAuthors(rec.Authors); len(authors) > 0 {
		b.WriteString(fmt.Sprintf("  author = {%s},\n", formatAuthors(authors)))
	}

	// Title
	b.WriteString(fmt.Sprintf("  title = {%s},\n", escapeLatex(rec.Title)))

	// Venue
	if rec.Journal != "" {
		fieldName := "journal"
		if entryType == "inproceedings" {
			fieldName = "booktitle"
		}
		b.WriteString(fmt.Sprintf("  %s = {%s},\n", fieldName, escapeLatex(rec.Journal)))
	}

	// Year (optional)
	if rec.Year != nil {
		b.WriteString(fmt.Sprintf("  year = {%d},\n", *rec.Year))
	}

	// DOI (optional)
	if rec.DOI != "" {
		b.WriteString(fmt.Sprintf("  doi = {%s},\n", rec.DOI))
	}

	// Abstract (optional, if present)
	if rec.Abstract != "" {
		b.WriteString(fmt.Sprintf("  abstract = {%s},\n", escapeLatex(rec.Abstract)))
	}

	b.WriteString("}\n")

	return b.String()
}

// ToBibTeXList converts a table to BibTeX, generating a unique cite key per
// record.
func ToBibTeXList(table record.Table) string {
	taken := make(map[string]bool, table.Len())
	var entries []string
	for _, rec := range table.Records {
		key := uniqueKey(taken, CiteKey(ParseAuthors(rec.Authors), rec.Year, rec.Title))
		taken[key] = true
		entries = append(entries, ToBibTeX(rec, key))
	}
	return strings.Join(entries, "\n")
}

// determineEntryType returns the BibTeX entry type for a venue.
func determineEntryType(venue string) string {
	venue = strings.ToLower(venue)

	// Preprints
	if strings.Contains(venue, "arxiv") ||
		strings.Contains(venue, "biorxiv") ||
		strings.Contains(venue, "medrxiv") {
		return "article"
	}

	// Conference proceedings
	if strings.Contains(venue, "proceedings") ||
		strings.Contains(venue, "conference") ||
		strings.Contains(venue, "workshop") ||
		strings.Contains(venue, "symposium") {
		return "inproceedings"
	}

	return "article"
}

// formatAuthors formats authors in BibTeX style: "Last, First and Last, First"
func formatAuthors(authors []Author) string {
	var formatted []string
	for _, a := range authors {
		if a.First != "" {
			formatted = append(formatted, fmt.Sprintf("%s, %s", a.Last, a.First))
		} else {
			formatted = append(formatted, a.Last)
		}
	}
	return strings.Join(formatted, " and ")
}

var latexReplacer = strings.NewReplacer(
	"&", `\&`,
	"%", `\%`,
	"$", `\$`,
	"#", `\#`,
	"_", `\_`,
	"{", `\{`,
	"}", `\}`,
	"~", `\textasciitilde{}`,
	"^", `\textasciicircum{}`,
)

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	return latexReplacer.Replace(s)
}
