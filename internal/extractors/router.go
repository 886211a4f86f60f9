package extractors

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/civictech-labs/corpusctl/internal/core/domain"
	driven "github.com/civictech-labs/corpusctl/internal/core/ports/driven"
)

// Router picks the extractor for a file by extension, falling back to
// content sniffing for extensionless uploads. Registration order is
// the probe order.
type Router struct {
	extractors []driven.Extractor
}

var _ driven.ExtractorRouter = (*Router)(nil)

// NewRouter creates a router over the given extractors.
func NewRouter(extractors ...driven.Extractor) *Router {
	return &Router{extractors: extractors}
}

// DefaultRouter wires every built-in extractor. JSON and PDF sniff
// before text, which accepts any valid UTF-8.
func DefaultRouter() *Router {
	return NewRouter(
		NewJSONFile(),
		NewCSVFile(),
		NewXLSX(),
		NewPDFFile(),
		NewTextFile(),
	)
}

// Route returns the extractor that handles the file.
func (r *Router) Route(filename string, data []byte) (driven.Extractor, error) {
	for _, e := range r.extractors {
		if e.Supports(filename, data) {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", filename, domain.ErrUnsupportedType)
}

// hasExt reports whether the filename has the given extension,
// case-insensitively.
func hasExt(filename, ext string) bool {
	return strings.EqualFold(filepath.Ext(filename), ext)
}

// hasAnyExt reports whether the filename carries any extension at all.
func hasAnyExt(filename string) bool {
	return filepath.Ext(filename) != ""
}
