package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/matsen/litsurvey/internal/importer"
	"github.com/matsen/litsurvey/internal/storage"
)

const ieeeExport = `"Document Title","Authors","Publication Title","Publication Year","DOI","Article Citation Count"
"Deep Residual Learning","K. He; X. Zhang","CVPR","2016","10.1109/CVPR.2016.90","150000"
"A Survey","A. Author","IEEE Access","n/a","",""
`

const goodBib = `@article{lecun2015,
  title = {Deep Learning},
  author = {LeCun, Yann and Bengio, Yoshua},
  year = {2015}
}

@misc{contact,
  title = {Reach us @ the lab},
  note = {mail someone@example.org}
}
`

const brokenBib = `@article{junk,
  title = {Recovered} stray words,
  year = 2020
}

@article{ok,
  title = {Parsed Anyway}
}
`

func quietLog(t *testing.T) {
	t.Helper()
	prev := log
	l := logrus.New()
	l.SetOutput(io.Discard)
	log = l
	t.Cleanup(func() { log = prev })
}

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConvertFiles_SkipsUnreadableAndKeepsGoing(t *testing.T) {
	quietLog(t)
	in := t.TempDir()
	out := t.TempDir()

	paths := []string{
		filepath.Join(in, "missing.bib"),
		writeInput(t, in, "corrupt.csv.gz", "not gzip at all"),
		writeInput(t, in, "broken.bib", brokenBib),
		writeInput(t, in, "ieee_export.csv", ieeeExport),
		writeInput(t, in, "lecun.bib", goodBib),
	}

	results, failed := convertFiles(paths, importer.KindAuto, out)

	if len(results) != len(paths) {
		t.Fatalf("convertFiles() returned %d results, want %d", len(results), len(paths))
	}
	if failed != 2 {
		t.Errorf("failed = %d, want 2", failed)
	}
	for _, i := range []int{0, 1} {
		if results[i].Error == "" || results[i].Path != "" {
			t.Errorf("result %d = %+v, want an error and no output", i, results[i])
		}
	}

	wantRecords := map[int]int{2: 2, 3: 2, 4: 2}
	for i, want := range wantRecords {
		res := results[i]
		if res.Error != "" {
			t.Errorf("%s: unexpected error %q", res.Source, res.Error)
			continue
		}
		if res.Records != want {
			t.Errorf("%s: %d records, want %d", res.Source, res.Records, want)
		}
		saved, err := storage.LoadTable(res.Path)
		if err != nil {
			t.Errorf("%s: saved output unreadable: %v", res.Source, err)
			continue
		}
		if saved.Len() != want {
			t.Errorf("%s: saved %d records, want %d", res.Source, saved.Len(), want)
		}
	}
}

func TestConvertFiles_AllFailing(t *testing.T) {
	quietLog(t)
	in := t.TempDir()

	_, failed := convertFiles([]string{filepath.Join(in, "a.bib"), filepath.Join(in, "b.csv")}, importer.KindAuto, t.TempDir())
	if failed != 2 {
		t.Errorf("failed = %d, want 2", failed)
	}
}

func TestLoadTables_SkipsUnreadable(t *testing.T) {
	quietLog(t)
	dir := t.TempDir()
	writeInput(t, dir, "scholar_deep.csv", "Title,Cites\nDeep Learning,10\n")
	writeInput(t, dir, "corrupt.csv.gz", "not gzip at all")
	bib := writeInput(t, t.TempDir(), "lecun.bib", goodBib)

	tables := loadTables([]string{filepath.Join(dir, "missing.csv"), dir, bib})

	if len(tables) != 2 {
		t.Fatalf("loadTables() returned %d tables, want 2", len(tables))
	}
	if tables[0].Tag != "scholar_deep.csv" || tables[1].Tag != "lecun.bib" {
		t.Errorf("tags = %q, %q", tables[0].Tag, tables[1].Tag)
	}
	if tables[1].Len() != 2 {
		t.Errorf("lecun.bib: %d records, want 2", tables[1].Len())
	}
}
