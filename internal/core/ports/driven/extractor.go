package driven

import (
	"context"

	"github.com/civictech-labs/corpusctl/internal/core/domain"
)

// Extractor turns one file format into normalised records or text.
type Extractor interface {
	// Name identifies the extractor ("json", "csv", "xlsx", ...).
	Name() string

	// Supports reports whether this extractor handles the file,
	// judged by extension and, where ambiguous, a content sniff.
	Supports(filename string, data []byte) bool

	// Extract produces normalised records plus a structure label.
	// Returns domain.ErrEmptyContent when the file has no usable
	// content.
	Extract(ctx context.Context, filename string, data []byte) (*domain.Extraction, error)
}

// ExtractorRouter selects the extractor for a file.
type ExtractorRouter interface {
	// Route returns the extractor that handles the file, or
	// domain.ErrUnsupportedType when none does.
	Route(filename string, data []byte) (Extractor, error)
}
