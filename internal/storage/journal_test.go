package storage

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := OpenJournal(filepath.Join(t.TempDir(), "cache", "journal.db"))
	if err != nil {
		t.Fatalf("OpenJournal() error = %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournal_RecordAndLookup(t *testing.T) {
	j := openTestJournal(t)

	at := time.Unix(1700000000, 0)
	if err := j.Record(Resolution{DOI: "10.1/a", Cites: 7, Provider: "crossref", RunID: "run-1", ResolvedAt: at}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	got, err := j.Lookup("10.1/a")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if got == nil {
		t.Fatal("Lookup() returned nil")
	}
	if got.Cites != 7 || got.Provider != "crossref" || got.RunID != "run-1" {
		t.Errorf("Lookup() = %+v", got)
	}
	if !got.ResolvedAt.Equal(at) {
		t.Errorf("ResolvedAt = %v, want %v", got.ResolvedAt, at)
	}
}

func TestJournal_LookupMissing(t *testing.T) {
	j := openTestJournal(t)

	got, err := j.Lookup("10.1/none")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if got != nil {
		t.Errorf("Lookup() = %+v, want nil", got)
	}
}

func TestJournal_RecordReplaces(t *testing.T) {
	j := openTestJournal(t)

	j.Record(Resolution{DOI: "10.1/a", Cites: 0})
	j.Record(Resolution{DOI: "10.1/a", Cites: 4, Provider: "scholar"})

	count, err := j.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}

	got, _ := j.Lookup("10.1/a")
	if got.Cites != 4 {
		t.Errorf("Cites = %d, want 4", got.Cites)
	}
}

func TestJournal_ProviderCounts(t *testing.T) {
	j := openTestJournal(t)

	j.Record(Resolution{DOI: "10.1/a", Cites: 3, Provider: "semanticscholar"})
	j.Record(Resolution{DOI: "10.1/b", Cites: 5, Provider: "semanticscholar"})
	j.Record(Resolution{DOI: "10.1/c", Cites: 1, Provider: "crossref"})
	j.Record(Resolution{DOI: "10.1/d", Cites: 0})

	counts, err := j.ProviderCounts()
	if err != nil {
		t.Fatalf("ProviderCounts() error = %v", err)
	}

	want := map[string]int{"semanticscholar": 2, "crossref": 1, "none": 1}
	for k, v := range want {
		if counts[k] != v {
			t.Errorf("counts[%q] = %d, want %d", k, counts[k], v)
		}
	}
}
