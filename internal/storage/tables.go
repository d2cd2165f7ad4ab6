// Package storage persists canonical tables as delimited files and keeps a
// SQLite journal of citation lookups.
package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/pgzip"
	"github.com/matsen/litsurvey/internal/record"
)

// DateLayout is the prefix format for saved result files.
const DateLayout = "20060102"

// DefaultOutputDir is where processed results land when no directory is configured.
const DefaultOutputDir = "csv_results/processed_results"

// ErrMissingColumn is returned when a canonical file lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// gzipReadCloser closes both the decompressor and the underlying file.
type gzipReadCloser struct {
	*pgzip.Reader
	f *os.File
}

func (g *gzipReadCloser) Close() error {
	gerr := g.Reader.Close()
	ferr := g.f.Close()
	if gerr != nil {
		return gerr
	}
	return ferr
}

// IsGzip reports whether path names a gzip-compressed file.
func IsGzip(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".gz")
}

// OpenFile opens path for reading, transparently decompressing .gz files.
func OpenFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !IsGzip(path) {
		return f, nil
	}
	zr, err := pgzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening gzip stream: %w", err)
	}
	return &gzipReadCloser{Reader: zr, f: f}, nil
}

// Tag derives a table tag from a file path: the basename with any .gz suffix removed.
func Tag(path string) string {
	base := filepath.Base(path)
	if IsGzip(base) {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return base
}

// ReadTable parses a canonical delimited table. Columns are located by
// header name so extra columns are ignored; only Title is required.
// Year and Cites are coerced the same way the importers coerce them.
func ReadTable(r io.Reader, tag string) (record.Table, error) {
	table := record.Table{Tag: tag}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return table, nil
		}
		return table, fmt.Errorf("reading header: %w", err)
	}

	cols := IndexHeader(header)
	if _, ok := cols["Title"]; !ok {
		return table, fmt.Errorf("%w: Title", ErrMissingColumn)
	}

	lineNum := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		lineNum++
		if err != nil {
			return table, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}

		cell := Cells(row, cols)
		table.Records = append(table.Records, record.Record{
			Title:    cell("Title"),
			Authors:  cell("Authors"),
			Year:     record.ParseYear(cell("Year")),
			Cites:    record.ParseCites(cell("Cites")),
			Abstract: cell("Abstract"),
			DOI:      cell("DOI"),
			Journal:  cell("Journal"),
		})
	}

	return table, nil
}

// IndexHeader maps column names to their positions. A UTF-8 byte order
// mark on the first column is dropped.
func IndexHeader(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		cols[strings.TrimSpace(name)] = i
	}
	return cols
}

// Cells returns a lookup for named cells of row; absent columns read as "".
func Cells(row []string, cols map[string]int) func(string) string {
	return func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
}

// LoadTable reads a canonical table from path. The table's tag is the file basename.
func LoadTable(path string) (record.Table, error) {
	rc, err := OpenFile(path)
	if err != nil {
		return record.Table{Tag: Tag(path)}, fmt.Errorf("opening table: %w", err)
	}
	defer rc.Close()

	table, err := ReadTable(rc, Tag(path))
	if err != nil {
		return record.Table{Tag: Tag(path)}, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// EncodeTable writes table as canonical CSV to w.
func EncodeTable(w io.Writer, table record.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(record.Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, rec := range table.Records {
		if err := cw.Write(rec.Row()); err != nil {
			return fmt.Errorf("writing record %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTable writes table to path, replacing existing content. The data
// goes to a sibling temp file first and is renamed into place, so a crash
// mid-write leaves the previous checkpoint intact.
func WriteTable(path string, table record.Table) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".wip-*")
	if err != nil {
		return fmt.Errorf("creating table file: %w", err)
	}
	wip := tmp.Name()
	defer os.Remove(wip)

	var w io.Writer = tmp
	var zw *pgzip.Writer
	if IsGzip(path) {
		zw = pgzip.NewWriter(tmp)
		w = zw
	}

	if err := EncodeTable(w, table); err != nil {
		tmp.Close()
		return err
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			tmp.Close()
			return fmt.Errorf("finishing gzip stream: %w", err)
		}
	}
	if err := tmp.Chmod(tableFileMode(path)); err != nil {
		tmp.Close()
		return fmt.Errorf("setting table file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing table file: %w", err)
	}

	if err := os.Rename(wip, path); err != nil {
		return fmt.Errorf("replacing table file: %w", err)
	}
	return nil
}

// tableFileMode keeps the permissions of an existing file at path, and
// uses 0644 for new files.
func tableFileMode(path string) os.FileMode {
	if info, err := os.Stat(path); err == nil {
		return info.Mode().Perm()
	}
	return 0644
}

// ResultPath returns the dated output path for name inside outputDir.
func ResultPath(outputDir, name string, now time.Time) string {
	return filepath.Join(outputDir, fmt.Sprintf("%s_%s.csv", now.Format(DateLayout), name))
}

// SaveResults writes table to <outputDir>/<YYYYMMDD>_<name>.csv, creating the
// directory if needed. It returns the written path, or "" together with the
// error when nothing was persisted.
func SaveResults(table record.Table, name, outputDir string, now time.Time) (string, error) {
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := ResultPath(outputDir, name, now)
	if err := WriteTable(path, table); err != nil {
		return "", fmt.Errorf("saving results to %s: %w", path, err)
	}
	return path, nil
}

// OutputName builds a result name from a source kind prefix and the source
// file's stem, e.g. OutputName("bibtex", "in/HPP.bib") == "bibtex_HPP".
func OutputName(prefix, sourcePath string) string {
	stem := Tag(sourcePath)
	stem = strings.TrimSuffix(stem, filepath.Ext(stem))
	if prefix == "" {
		return stem
	}
	return prefix + "_" + stem
}

// ListTables returns the canonical table files (.csv, .csv.gz) directly
// inside dir, sorted by name.
func ListTables(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.ToLower(e.Name())
		if strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".csv.gz") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
