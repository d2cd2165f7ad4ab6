package importer

import (
	"strings"
	"testing"

	"github.com/segmentio/encoding/json"
)

func TestFlexibleString_String(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"string year", `"2026"`, "2026"},
		{"number year", `2026`, "2026"},
		{"null value", `null`, ""},
		{"float number", `2026.0`, "2026.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexibleString
			if err := json.Unmarshal([]byte(tt.input), &f); err != nil {
				t.Fatalf("UnmarshalJSON() error = %v", err)
			}
			if got := f.String(); got != tt.want {
				t.Errorf("String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFlexibleString_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"array", `[1,2,3]`},
		{"object", `{"key": "value"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexibleString
			if err := json.Unmarshal([]byte(tt.input), &f); err == nil {
				t.Errorf("UnmarshalJSON() expected error for input %s", tt.input)
			}
		})
	}
}

func TestParsePaperpile_ValidEntry(t *testing.T) {
	data := `[{
		"_id": "abc123",
		"citekey": "Smith2026-ab",
		"doi": "10.1234/test",
		"title": "Test Paper",
		"abstract": "This is a test abstract",
		"journal": "Test Journal",
		"published": {"year": "2026", "month": "3", "day": "15"},
		"author": [
			{"first": "John", "last": "Smith", "orcid": "0000-0001-2345-6789"},
			{"first": "", "last": "Consortium"}
		]
	}]`

	table, err := ParsePaperpile(strings.NewReader(data), "library.json")
	if err != nil {
		t.Fatalf("ParsePaperpile() error = %v", err)
	}
	if table.Len() != 1 || table.Tag != "library.json" {
		t.Fatalf("ParsePaperpile() = %+v", table)
	}

	got := table.Records[0]
	if got.Title != "Test Paper" || got.DOI != "10.1234/test" || got.Journal != "Test Journal" {
		t.Errorf("record = %+v", got)
	}
	if got.Authors != "Smith, John and Consortium" {
		t.Errorf("Authors = %q", got.Authors)
	}
	if got.Year == nil || *got.Year != 2026 {
		t.Errorf("Year = %v, want 2026", got.Year)
	}
	if got.Cites != 0 {
		t.Errorf("Cites = %d, want 0", got.Cites)
	}
}

func TestParsePaperpile_MissingFieldsStillYieldRows(t *testing.T) {
	data := `[{"title": "No year"}, {"published": {"year": 2019}}]`

	table, err := ParsePaperpile(strings.NewReader(data), "x.json")
	if err != nil {
		t.Fatalf("ParsePaperpile() error = %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("ParsePaperpile() returned %d records, want 2", table.Len())
	}
	if table.Records[0].Year != nil {
		t.Errorf("missing year should be nil")
	}
	if y := table.Records[1].Year; y == nil || *y != 2019 {
		t.Errorf("numeric year = %v, want 2019", y)
	}
}

func TestParsePaperpile_InvalidJSON(t *testing.T) {
	if _, err := ParsePaperpile(strings.NewReader(`{not json`), "x.json"); err == nil {
		t.Error("ParsePaperpile() expected error for invalid JSON")
	}
}
