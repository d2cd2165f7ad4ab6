// Package record defines the canonical publication record that every search
// export is normalized into.
package record

import (
	"math"
	"strconv"
	"strings"
)

// Header is the canonical column order for delimited files.
var Header = []string{"Title", "Authors", "Year", "Cites", "Abstract", "DOI", "Journal"}

// Record represents one publication in the canonical schema.
type Record struct {
	Title    string `json:"title"`
	Authors  string `json:"authors"` // Free-form, not split into a list
	Year     *int   `json:"year"`    // nil when unknown
	Cites    int    `json:"cites"`   // 0 when unknown
	Abstract string `json:"abstract,omitempty"`
	DOI      string `json:"doi,omitempty"`
	Journal  string `json:"journal,omitempty"`
}

// Table is an ordered set of records loaded from (or destined for) one file.
// Tag carries the originating file's basename and is parsed downstream for
// search engine and search terms.
type Table struct {
	Tag     string   `json:"tag"`
	Records []Record `json:"records"`
}

// Year returns a pointer to y, for populating Record.Year.
func Year(y int) *int {
	return &y
}

// HasYear reports whether the publication year is known.
func (r Record) HasYear() bool {
	return r.Year != nil
}

// YearString formats the year for output, empty when missing.
func (r Record) YearString() string {
	if r.Year == nil {
		return ""
	}
	return strconv.Itoa(*r.Year)
}

// Row returns the record as a canonical delimited row.
func (r Record) Row() []string {
	return []string{
		r.Title,
		r.Authors,
		r.YearString(),
		strconv.Itoa(r.Cites),
		r.Abstract,
		r.DOI,
		r.Journal,
	}
}

// Len returns the number of records.
func (t Table) Len() int {
	return len(t.Records)
}

// Clone returns a deep copy of the table so callers can patch records in
// place without aliasing the source.
func (t Table) Clone() Table {
	out := Table{Tag: t.Tag, Records: make([]Record, len(t.Records))}
	for i, r := range t.Records {
		if r.Year != nil {
			r.Year = Year(*r.Year)
		}
		out.Records[i] = r
	}
	return out
}

// ParseYear coerces a raw cell into a year. Integers and integral floats
// ("2019", "2019.0") are accepted; anything else is missing.
func ParseYear(s string) *int {
	n, ok := parseInt(s)
	if !ok {
		return nil
	}
	return &n
}

// ParseCites coerces a raw cell into a citation count. Non-numeric or
// negative values become 0.
func ParseCites(s string) int {
	n, ok := parseInt(s)
	if !ok || n < 0 {
		return 0
	}
	return n
}

func parseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
