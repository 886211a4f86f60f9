package extractors

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/civictech-labs/corpusctl/internal/core/domain"
	driven "github.com/civictech-labs/corpusctl/internal/core/ports/driven"
)

// PDFFile extracts text from PDF uploads, page by page. Scanned PDFs
// without a text layer come back empty and fail fast; OCR is out of
// scope.
type PDFFile struct{}

var _ driven.Extractor = (*PDFFile)(nil)

// NewPDFFile creates the PDF extractor.
func NewPDFFile() *PDFFile {
	return &PDFFile{}
}

func (e *PDFFile) Name() string { return "pdf" }

// Supports matches .pdf extensions and the PDF magic bytes.
func (e *PDFFile) Supports(filename string, data []byte) bool {
	if hasExt(filename, ".pdf") {
		return true
	}
	return !hasAnyExt(filename) && bytes.HasPrefix(data, []byte("%PDF"))
}

// Extract concatenates the text of every page.
func (e *PDFFile) Extract(ctx context.Context, filename string, data []byte) (*domain.Extraction, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", filename, err)
	}

	var b strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// pages with broken text streams are skipped, the rest
			// of the document still extracts
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return nil, fmt.Errorf("%s has no text layer: %w", filename, domain.ErrEmptyContent)
	}

	structure := domain.StructureUnknown
	if len(text) >= articleThreshold {
		structure = domain.StructureArticle
	}
	return &domain.Extraction{
		Text:      text,
		Structure: structure,
		Metadata:  map[string]any{"page_count": pages},
	}, nil
}
