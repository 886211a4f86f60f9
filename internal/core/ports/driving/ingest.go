package driving

import (
	"context"

	"github.com/civictech-labs/corpusctl/internal/core/domain"
)

// ProgressFunc receives pipeline stage updates during ingestion.
type ProgressFunc func(stage domain.Stage, detail string)

// IngestRequest describes one file to ingest.
type IngestRequest struct {
	// Filename is the upload name, used in source identity.
	Filename string

	// Data is the raw file content.
	Data []byte

	// Category is the admin-assigned content category.
	Category string

	// Language is a declared language code, empty to detect.
	Language string

	// Structure overrides routing detection when set.
	Structure domain.StructureType

	// Importance weights this source's chunks, 0 for default.
	Importance float64

	// ChunkSize selects the token budget: "small", "medium", "large".
	// Empty means medium.
	ChunkSize string

	// Namespace partitions the vectors in the backend.
	Namespace string

	// Progress receives stage updates, may be nil.
	Progress ProgressFunc
}

// IngestOrchestrator runs the full pipeline for uploaded files:
// extract, route, process, validate, enrich, embed, upsert, verify.
type IngestOrchestrator interface {
	// Ingest processes one file end to end and returns its report.
	// Re-ingesting the same file overwrites its previous vectors.
	Ingest(ctx context.Context, req IngestRequest) (*domain.Report, error)
}
