package importer

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/matsen/litsurvey/internal/record"
	"github.com/matsen/litsurvey/internal/storage"
)

// IEEE Xplore export column names.
const (
	ieeeTitle    = "Document Title"
	ieeeAuthors  = "Authors"
	ieeeYear     = "Publication Year"
	ieeeCites    = "Article Citation Count"
	ieeeAbstract = "Abstract"
	ieeeDOI      = "DOI"
	ieeeJournal  = "Publication Title"
)

// ParseIEEE parses an IEEE Xplore CSV export into a canonical table.
//
// Publication Year that is not numeric becomes a missing year; an Article
// Citation Count that is missing or not numeric becomes 0. Rows are never
// dropped for bad values.
func ParseIEEE(r io.Reader, tag string) (record.Table, error) {
	table := record.Table{Tag: tag}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return table, nil
		}
		return table, fmt.Errorf("reading IEEE header: %w", err)
	}

	cols := storage.IndexHeader(header)
	if _, ok := cols[ieeeTitle]; !ok {
		return table, fmt.Errorf("%w: %s", storage.ErrMissingColumn, ieeeTitle)
	}

	lineNum := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		lineNum++
		if err != nil {
			return table, fmt.Errorf("parsing IEEE line %d: %w", lineNum, err)
		}

		cell := storage.Cells(row, cols)
		table.Records = append(table.Records, record.Record{
			Title:    cell(ieeeTitle),
			Authors:  cell(ieeeAuthors),
			Year:     record.ParseYear(cell(ieeeYear)),
			Cites:    record.ParseCites(cell(ieeeCites)),
			Abstract: cell(ieeeAbstract),
			DOI:      cell(ieeeDOI),
			Journal:  cell(ieeeJournal),
		})
	}

	return table, nil
}
