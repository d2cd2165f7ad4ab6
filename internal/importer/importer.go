// Package importer normalizes search exports from different databases into
// canonical tables.
package importer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/matsen/litsurvey/internal/record"
	"github.com/matsen/litsurvey/internal/storage"
)

// Kind identifies the layout of a source file.
type Kind string

const (
	KindAuto      Kind = "auto"
	KindCanonical Kind = "canonical"
	KindIEEE      Kind = "ieee"
	KindBibTeX    Kind = "bibtex"
	KindPaperpile Kind = "paperpile"
)

// ErrSourceRead indicates a source file could not be read at all.
// Row-level problems never produce it; they degrade to default values.
var ErrSourceRead = errors.New("reading source file")

// ParseKind validates a user-supplied kind name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(s)); k {
	case KindAuto, KindCanonical, KindIEEE, KindBibTeX, KindPaperpile:
		return k, nil
	case "":
		return KindAuto, nil
	default:
		return "", fmt.Errorf("unknown source kind %q (valid: auto, canonical, ieee, bibtex, paperpile)", s)
	}
}

// LoadFile reads path and normalizes it according to kind. The table tag is
// the file's basename. On failure the returned table is empty (but tagged)
// and the error wraps ErrSourceRead.
func LoadFile(path string, kind Kind) (record.Table, error) {
	tag := storage.Tag(path)
	empty := record.Table{Tag: tag}

	rc, err := storage.OpenFile(path)
	if err != nil {
		return empty, fmt.Errorf("%w %s: %v", ErrSourceRead, path, err)
	}
	defer rc.Close()

	br := bufio.NewReader(rc)
	if kind == KindAuto || kind == "" {
		kind = Detect(tag, br)
	}

	var table record.Table
	switch kind {
	case KindIEEE:
		table, err = ParseIEEE(br, tag)
	case KindBibTeX:
		table, err = ParseBibTeX(br, tag)
	case KindPaperpile:
		table, err = ParsePaperpile(br, tag)
	case KindCanonical:
		table, err = ParseCanonical(br, tag)
	default:
		err = fmt.Errorf("unknown source kind %q", kind)
	}
	if err != nil {
		return empty, fmt.Errorf("%w %s: %v", ErrSourceRead, path, err)
	}
	return table, nil
}

// ParseCanonical reads a table already in the canonical schema, coercing Year
// and Cites the same way the other importers do.
func ParseCanonical(r io.Reader, tag string) (record.Table, error) {
	return storage.ReadTable(r, tag)
}

// Detect guesses the source kind from the file name and the first bytes of
// content: .bib is BibTeX; .json or a leading "[" is a Paperpile export; a
// header naming "Document Title" is an IEEE export; anything else is treated
// as canonical.
func Detect(name string, br *bufio.Reader) Kind {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".bib" || ext == ".bibtex" {
		return KindBibTeX
	}

	if ext == ".json" {
		return KindPaperpile
	}

	peek, _ := br.Peek(4096)
	text := string(peek)
	switch trimmed := strings.TrimSpace(text); {
	case strings.HasPrefix(trimmed, "@"):
		return KindBibTeX
	case strings.HasPrefix(trimmed, "["):
		return KindPaperpile
	}
	firstLine, _, _ := strings.Cut(text, "\n")
	if strings.Contains(firstLine, "Document Title") {
		return KindIEEE
	}
	return KindCanonical
}
