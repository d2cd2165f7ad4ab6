package stats

import (
	"math"
	"reflect"
	"testing"

	"github.com/matsen/litsurvey/internal/record"
)

func TestSummarize(t *testing.T) {
	table := record.Table{
		Tag: "scholar_graph_AND_neural.csv",
		Records: []record.Record{
			{Title: "A", Year: record.Year(2018), Cites: 10},
			{Title: "B", Cites: 5},
			{Title: "C", Year: record.Year(2021), Cites: 0},
			{Title: "D", Year: record.Year(2012), Cites: 30},
		},
	}

	got := Summarize(table)

	if got.TotalPapers != 4 {
		t.Errorf("TotalPapers = %d, want 4", got.TotalPapers)
	}
	if got.TotalCitations != 45 {
		t.Errorf("TotalCitations = %d, want 45", got.TotalCitations)
	}
	if math.Abs(got.AvgCitations-11.25) > 1e-9 {
		t.Errorf("AvgCitations = %v, want 11.25", got.AvgCitations)
	}
	if got.YearRange == nil || got.YearRange.Min != 2012 || got.YearRange.Max != 2021 {
		t.Errorf("YearRange = %+v, want 2012-2021", got.YearRange)
	}
	if len(got.TopCited) != 4 || got.TopCited[0].Title != "D" {
		t.Errorf("TopCited = %+v", got.TopCited)
	}
	if got.SearchInfo.Engine != "scholar" {
		t.Errorf("Engine = %q, want scholar", got.SearchInfo.Engine)
	}
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(record.Table{Tag: "ieee.csv"})
	if got.TotalPapers != 0 || got.AvgCitations != 0 {
		t.Errorf("empty summary = %+v", got)
	}
	if got.YearRange != nil {
		t.Errorf("YearRange = %+v, want nil", got.YearRange)
	}
}

func TestSummarize_AllYearsMissing(t *testing.T) {
	got := Summarize(record.Table{Records: []record.Record{{Title: "x"}, {Title: "y"}}})
	if got.YearRange != nil {
		t.Errorf("YearRange = %+v, want nil", got.YearRange)
	}
}

func TestTopCited_StableUnderTies(t *testing.T) {
	table := record.Table{}
	for _, title := range []string{"E", "D", "C", "B", "A"} {
		table.Records = append(table.Records, record.Record{Title: title, Cites: 10})
	}

	got := TopCited(table, TopCitedCount)

	var titles []string
	for _, r := range got {
		titles = append(titles, r.Title)
	}
	want := []string{"E", "D", "C", "B", "A"}
	if !reflect.DeepEqual(titles, want) {
		t.Errorf("TopCited order = %v, want %v", titles, want)
	}
}

func TestTopCited_LimitsAndOrders(t *testing.T) {
	table := record.Table{}
	for i, c := range []int{3, 9, 1, 9, 7, 2, 8} {
		table.Records = append(table.Records, record.Record{Title: string(rune('a' + i)), Cites: c})
	}

	got := TopCited(table, 5)

	var titles []string
	for _, r := range got {
		titles = append(titles, r.Title)
	}
	want := []string{"b", "d", "g", "e", "a"}
	if !reflect.DeepEqual(titles, want) {
		t.Errorf("TopCited = %v, want %v", titles, want)
	}
}

func TestParseSearchInfo(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		want SearchInfo
	}{
		{
			name: "terms joined by AND",
			tag:  "scholar_deep_AND_learning.csv",
			want: SearchInfo{Engine: "scholar", Terms: []string{"deep", "learning"}, ExcludeTerms: []string{}},
		},
		{
			name: "excluded term",
			tag:  "ieee_graph_ANDNOT_survey_networks.csv",
			want: SearchInfo{Engine: "ieee", Terms: []string{"graph", "networks"}, ExcludeTerms: []string{"survey"}},
		},
		{
			name: "trailing ANDNOT dropped",
			tag:  "acm_privacy_ANDNOT",
			want: SearchInfo{Engine: "acm", Terms: []string{"privacy"}, ExcludeTerms: []string{}},
		},
		{
			name: "engine only",
			tag:  "scopus.csv",
			want: SearchInfo{Engine: "scopus", Terms: []string{}, ExcludeTerms: []string{}},
		},
		{
			name: "empty tag",
			tag:  "",
			want: SearchInfo{Terms: []string{}, ExcludeTerms: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSearchInfo(tt.tag)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSearchInfo(%q) = %+v, want %+v", tt.tag, got, tt.want)
			}
		})
	}
}

func TestCitationTrends(t *testing.T) {
	table := record.Table{Records: []record.Record{
		{Year: record.Year(2020), Cites: 4},
		{Year: record.Year(2018), Cites: 1},
		{Cites: 100},
		{Year: record.Year(2020), Cites: 6},
	}}

	got := CitationTrends(table)
	want := []YearCitations{{Year: 2018, Citations: 1}, {Year: 2020, Citations: 10}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CitationTrends() = %+v, want %+v", got, want)
	}
}
