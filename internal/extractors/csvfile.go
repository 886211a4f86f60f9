package extractors

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/civictech-labs/corpusctl/internal/core/domain"
	driven "github.com/civictech-labs/corpusctl/internal/core/ports/driven"
)

// CSVFile extracts comma- and tab-separated uploads. The first row is
// treated as the header.
type CSVFile struct{}

var _ driven.Extractor = (*CSVFile)(nil)

// NewCSVFile creates the CSV extractor.
func NewCSVFile() *CSVFile {
	return &CSVFile{}
}

func (e *CSVFile) Name() string { return "csv" }

// Supports matches .csv and .tsv extensions.
func (e *CSVFile) Supports(filename string, _ []byte) bool {
	return hasExt(filename, ".csv") || hasExt(filename, ".tsv")
}

// Extract parses rows into records keyed by header names.
func (e *CSVFile) Extract(ctx context.Context, filename string, data []byte) (*domain.Extraction, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%s: %w", filename, domain.ErrEmptyContent)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	if hasExt(filename, ".tsv") {
		reader.Comma = '\t'
	}
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header %s: %w", filename, err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	var records []domain.Record
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %s: %w", filename, err)
		}
		fields := make(map[string]any, len(columns))
		empty := true
		for i, cell := range row {
			if i >= len(columns) || columns[i] == "" {
				continue
			}
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			fields[columns[i]] = cell
			empty = false
		}
		if empty {
			continue
		}
		records = append(records, domain.Record{Index: len(records), Fields: fields})
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", filename, domain.ErrEmptyContent)
	}

	return &domain.Extraction{
		Records:   records,
		Columns:   columns,
		Structure: refineTableStructure(columns, domain.StructureStandardTable),
	}, nil
}
