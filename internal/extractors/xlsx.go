package extractors

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/civictech-labs/corpusctl/internal/core/domain"
	driven "github.com/civictech-labs/corpusctl/internal/core/ports/driven"
)

// XLSX extracts Excel workbooks. Sheets are read in workbook order,
// the first non-empty row of each sheet is its header, and records
// from every sheet share one ordinal sequence.
type XLSX struct{}

var _ driven.Extractor = (*XLSX)(nil)

// NewXLSX creates the Excel extractor.
func NewXLSX() *XLSX {
	return &XLSX{}
}

func (e *XLSX) Name() string { return "xlsx" }

// Supports matches .xlsx extensions.
func (e *XLSX) Supports(filename string, _ []byte) bool {
	return hasExt(filename, ".xlsx")
}

// Extract opens the workbook as a ZIP archive and parses each
// worksheet's cell XML.
func (e *XLSX) Extract(ctx context.Context, filename string, data []byte) (*domain.Extraction, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open xlsx %s: %w", filename, err)
	}

	shared, err := sharedStrings(reader)
	if err != nil {
		return nil, fmt.Errorf("read shared strings %s: %w", filename, err)
	}

	var sheets []*zip.File
	for _, f := range reader.File {
		if strings.HasPrefix(f.Name, "xl/worksheets/sheet") && strings.HasSuffix(f.Name, ".xml") {
			sheets = append(sheets, f)
		}
	}
	// Lexicographic order would put sheet10 before sheet2.
	sort.Slice(sheets, func(i, j int) bool {
		return sheetNumber(sheets[i].Name) < sheetNumber(sheets[j].Name)
	})
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: %w", filename, domain.ErrEmptyContent)
	}

	var records []domain.Record
	var columns []string
	for _, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := sheetRows(sheet, shared)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s in %s: %w", sheet.Name, filename, err)
		}
		if len(rows) < 2 {
			continue
		}
		header := rows[0]
		if len(columns) == 0 {
			columns = header
		}
		for _, row := range rows[1:] {
			fields := make(map[string]any, len(header))
			empty := true
			for i, cell := range row {
				if i >= len(header) || header[i] == "" || cell == "" {
					continue
				}
				fields[header[i]] = cell
				empty = false
			}
			if empty {
				continue
			}
			records = append(records, domain.Record{Index: len(records), Fields: fields})
		}
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", filename, domain.ErrEmptyContent)
	}

	return &domain.Extraction{
		Records:   records,
		Columns:   columns,
		Structure: refineTableStructure(columns, domain.StructureStandardTable),
		Metadata:  map[string]any{"sheet_count": len(sheets)},
	}, nil
}

// sheetNumber parses the numeric suffix of xl/worksheets/sheetN.xml.
// Unparseable names sort last.
func sheetNumber(name string) int {
	digits := strings.TrimSuffix(strings.TrimPrefix(name, "xl/worksheets/sheet"), ".xml")
	n, err := strconv.Atoi(digits)
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return n
}

// sharedStrings reads xl/sharedStrings.xml, which holds the workbook's
// deduplicated cell texts.
func sharedStrings(reader *zip.Reader) ([]string, error) {
	var file *zip.File
	for _, f := range reader.File {
		if f.Name == "xl/sharedStrings.xml" {
			file = f
			break
		}
	}
	if file == nil {
		return nil, nil
	}
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var sst struct {
		Items []struct {
			Text string `xml:"t"`
			Runs []struct {
				Text string `xml:"t"`
			} `xml:"r"`
		} `xml:"si"`
	}
	if err := xml.NewDecoder(rc).Decode(&sst); err != nil {
		return nil, err
	}
	out := make([]string, len(sst.Items))
	for i, item := range sst.Items {
		if item.Text != "" {
			out[i] = item.Text
			continue
		}
		var b strings.Builder
		for _, r := range item.Runs {
			b.WriteString(r.Text)
		}
		out[i] = b.String()
	}
	return out, nil
}

// xlsx worksheet cell XML
type sheetXML struct {
	Rows []struct {
		Cells []struct {
			Ref    string `xml:"r,attr"`
			Type   string `xml:"t,attr"`
			Value  string `xml:"v"`
			Inline string `xml:"is>t"`
		} `xml:"c"`
	} `xml:"sheetData>row"`
}

// sheetRows parses one worksheet into trimmed string rows.
func sheetRows(file *zip.File, shared []string) ([][]string, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	var sheet sheetXML
	if err := xml.Unmarshal(raw, &sheet); err != nil {
		return nil, err
	}

	var rows [][]string
	for _, row := range sheet.Rows {
		var cells []string
		for _, cell := range row.Cells {
			col := columnIndex(cell.Ref)
			for len(cells) <= col {
				cells = append(cells, "")
			}
			cells[col] = strings.TrimSpace(cellValue(cell.Type, cell.Value, cell.Inline, shared))
		}
		if !rowEmpty(cells) {
			rows = append(rows, cells)
		}
	}
	return rows, nil
}

func cellValue(cellType, value, inline string, shared []string) string {
	switch cellType {
	case "s":
		var idx int
		if _, err := fmt.Sscanf(value, "%d", &idx); err != nil {
			return ""
		}
		if idx < 0 || idx >= len(shared) {
			return ""
		}
		return shared[idx]
	case "inlineStr":
		return inline
	case "b":
		if value == "1" {
			return "yes"
		}
		return "no"
	default:
		return value
	}
}

// columnIndex converts a cell reference like "C12" to a zero-based
// column number.
func columnIndex(ref string) int {
	col := 0
	for _, r := range ref {
		if r < 'A' || r > 'Z' {
			break
		}
		col = col*26 + int(r-'A') + 1
	}
	if col == 0 {
		return 0
	}
	return col - 1
}

func rowEmpty(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
