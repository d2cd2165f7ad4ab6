package stats

import (
	"strings"
	"unicode"

	"github.com/matsen/litsurvey/internal/record"
)

// DefaultThreshold is the minimum title similarity for two records to be
// considered the same paper.
const DefaultThreshold = 0.8

// CommonPapersTag names the table produced from duplicate detection.
const CommonPapersTag = "common_papers"

// Duplicate is a record found in more than one table.
type Duplicate struct {
	Title   string `json:"title"`
	Authors string `json:"authors"`
	Year    *int   `json:"year"`
	Cites   int    `json:"cites"`
}

// NormalizeTitle lowercases s and removes every character that is neither a
// word character (letter, digit, mark, underscore) nor whitespace.
func NormalizeTitle(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '_', unicode.IsLetter(r), unicode.IsNumber(r), unicode.IsMark(r):
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return r
		default:
			return -1
		}
	}, s)
}

func titleTokens(s string) map[string]struct{} {
	words := strings.Fields(NormalizeTitle(s))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// TitleSimilarity returns the fraction of a's distinct words that also occur
// in b. It is not symmetric: "cats" against "cats and dogs" is 1.0, the
// reverse is 1/3. ok is false when either title has no words, in which case
// the titles never match.
func TitleSimilarity(a, b string) (sim float64, ok bool) {
	ta, tb := titleTokens(a), titleTokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0, false
	}

	shared := 0
	for w := range ta {
		if _, found := tb[w]; found {
			shared++
		}
	}
	return float64(shared) / float64(len(ta)), true
}

// FindCommonPapers reports records that appear in more than one table.
//
// Every unordered pair of tables (i < j) is compared: each record of table i
// is checked against table j in order, and the first record whose title
// similarity reaches threshold reports the table-i record. The result is
// de-duplicated by full-row equality, keeping first occurrences.
func FindCommonPapers(tables []record.Table, threshold float64) []Duplicate {
	var found []Duplicate

	for i := 0; i < len(tables); i++ {
		for j := i + 1; j < len(tables); j++ {
			found = append(found, commonBetween(tables[i], tables[j], threshold)...)
		}
	}

	return dedupe(found)
}

func commonBetween(a, b record.Table, threshold float64) []Duplicate {
	var found []Duplicate
	for _, ra := range a.Records {
		for _, rb := range b.Records {
			sim, ok := TitleSimilarity(ra.Title, rb.Title)
			if ok && sim >= threshold {
				found = append(found, Duplicate{
					Title:   ra.Title,
					Authors: ra.Authors,
					Year:    ra.Year,
					Cites:   ra.Cites,
				})
				break
			}
		}
	}
	return found
}

type duplicateKey struct {
	title, authors, year string
	cites                int
}

func dedupe(dups []Duplicate) []Duplicate {
	seen := make(map[duplicateKey]bool, len(dups))
	out := make([]Duplicate, 0, len(dups))
	for _, d := range dups {
		k := duplicateKey{d.Title, d.Authors, d.record().YearString(), d.Cites}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, d)
	}
	return out
}

func (d Duplicate) record() record.Record {
	return record.Record{Title: d.Title, Authors: d.Authors, Year: d.Year, Cites: d.Cites}
}

// DuplicatesTable converts duplicates into a canonical table for saving.
func DuplicatesTable(dups []Duplicate) record.Table {
	t := record.Table{Tag: CommonPapersTag, Records: make([]record.Record, len(dups))}
	for i, d := range dups {
		t.Records[i] = d.record()
	}
	return t
}
