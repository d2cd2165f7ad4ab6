// Package stats computes descriptive statistics over canonical tables and
// detects papers that appear in more than one search result.
package stats

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/matsen/litsurvey/internal/record"
)

// TopCitedCount is the number of records reported in Summary.TopCited.
const TopCitedCount = 5

// Search tag markers.
const (
	markerAND    = "AND"
	markerANDNOT = "ANDNOT"
)

// YearRange is the span of known publication years in a table.
type YearRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// SearchInfo is the search metadata encoded in a table's tag, e.g.
// "scholar_deep_AND_learning_ANDNOT_survey.csv".
type SearchInfo struct {
	Engine       string   `json:"engine"`
	Terms        []string `json:"terms"`
	ExcludeTerms []string `json:"exclude_terms"`
}

// Summary holds the per-table statistics.
type Summary struct {
	Tag            string          `json:"tag"`
	TotalPapers    int             `json:"total_papers"`
	YearRange      *YearRange      `json:"year_range"` // nil when no year is known
	TotalCitations int             `json:"total_citations"`
	AvgCitations   float64         `json:"avg_citations"`
	TopCited       []record.Record `json:"top_cited"`
	SearchInfo     SearchInfo      `json:"search_info"`
}

// YearCitations is the citation total for one publication year.
type YearCitations struct {
	Year      int `json:"year"`
	Citations int `json:"citations"`
}

// Summarize computes the summary statistics for one table.
func Summarize(table record.Table) Summary {
	s := Summary{
		Tag:         table.Tag,
		TotalPapers: table.Len(),
		TopCited:    TopCited(table, TopCitedCount),
		SearchInfo:  ParseSearchInfo(table.Tag),
	}

	for _, r := range table.Records {
		s.TotalCitations += r.Cites
		if !r.HasYear() {
			continue
		}
		y := *r.Year
		if s.YearRange == nil {
			s.YearRange = &YearRange{Min: y, Max: y}
			continue
		}
		s.YearRange.Min = min(s.YearRange.Min, y)
		s.YearRange.Max = max(s.YearRange.Max, y)
	}

	if s.TotalPapers > 0 {
		s.AvgCitations = float64(s.TotalCitations) / float64(s.TotalPapers)
	}
	return s
}

// TopCited returns the n records with the highest citation counts. Records
// with equal counts keep their original row order.
func TopCited(table record.Table, n int) []record.Record {
	sorted := make([]record.Record, len(table.Records))
	copy(sorted, table.Records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Cites > sorted[j].Cites
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// ParseSearchInfo extracts the search engine and terms from a table tag.
//
// The tag (minus extension) is split on underscores. The first token names
// the engine; the rest are search terms, except that "AND" is skipped and
// "ANDNOT" marks the following token as an excluded term. A trailing ANDNOT
// with nothing after it is dropped.
func ParseSearchInfo(tag string) SearchInfo {
	info := SearchInfo{Terms: []string{}, ExcludeTerms: []string{}}

	base := strings.TrimSuffix(tag, filepath.Ext(tag))
	if base == "" {
		return info
	}

	parts := strings.Split(base, "_")
	info.Engine = parts[0]

	for i := 1; i < len(parts); i++ {
		switch parts[i] {
		case markerAND:
		case markerANDNOT:
			if i+1 < len(parts) {
				info.ExcludeTerms = append(info.ExcludeTerms, parts[i+1])
				i++
			}
		default:
			info.Terms = append(info.Terms, parts[i])
		}
	}
	return info
}

// CitationTrends sums citations per known publication year, ascending by
// year. Records without a year are left out.
func CitationTrends(table record.Table) []YearCitations {
	totals := make(map[int]int)
	for _, r := range table.Records {
		if r.HasYear() {
			totals[*r.Year] += r.Cites
		}
	}

	trends := make([]YearCitations, 0, len(totals))
	for y, c := range totals {
		trends = append(trends, YearCitations{Year: y, Citations: c})
	}
	sort.Slice(trends, func(i, j int) bool {
		return trends[i].Year < trends[j].Year
	})
	return trends
}
