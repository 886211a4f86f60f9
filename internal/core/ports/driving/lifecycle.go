package driving

import (
	"context"

	"github.com/civictech-labs/corpusctl/internal/core/domain"
)

// DeleteRequest targets chunks for deletion by ID, source, or filter.
// Exactly one selector should be populated.
type DeleteRequest struct {
	// ChunkIDs targets specific chunks.
	ChunkIDs []string

	// SourceIDs targets whole documents.
	SourceIDs []string

	// Filter targets chunks by metadata equality.
	Filter map[string]any

	// Namespace partitions the operation.
	Namespace string

	// DryRun previews the deletion without mutating the store.
	DryRun bool
}

// LifecycleManager exposes discovery and deletion over stored vectors.
type LifecycleManager interface {
	// ListDocuments returns per-source aggregates, newest first.
	ListDocuments(ctx context.Context, namespace string, limit, offset int) (*domain.DocumentPage, error)

	// BrowseChunks pages through a document's chunks in order.
	BrowseChunks(ctx context.Context, namespace, sourceID string, limit, offset int) (*domain.ChunkPage, error)

	// SearchByFilename finds documents by upload name. Exact matches
	// score 1.0; fuzzy matches carry their similarity and tier.
	SearchByFilename(ctx context.Context, namespace, filename string) ([]domain.SearchHit, error)

	// SearchByCategory lists documents in a category.
	SearchByCategory(ctx context.Context, namespace, category string, limit, offset int) (*domain.DocumentPage, error)

	// SearchChunksByContent finds chunks by semantic similarity to the
	// query, each hit carrying its confidence tier.
	SearchChunksByContent(ctx context.Context, namespace, query string, topK int) ([]domain.SearchHit, error)

	// FindDuplicates groups sources sharing the same content hash.
	FindDuplicates(ctx context.Context, namespace string) ([]domain.DuplicateGroup, error)

	// PreviewDelete reports what Delete would remove, without
	// mutating anything.
	PreviewDelete(ctx context.Context, req DeleteRequest) (*domain.DeletionPreview, error)

	// Delete removes the targeted chunks. Partial removals report
	// Success=false with per-ID accounting.
	Delete(ctx context.Context, req DeleteRequest) (*domain.DeletionResult, error)

	// CleanupDuplicates removes duplicate uploads, keeping one source
	// per group according to the strategy.
	CleanupDuplicates(ctx context.Context, namespace string, keep domain.KeepStrategy, dryRun bool) (*domain.CleanupResult, error)

	// Stats summarises the backing store.
	Stats(ctx context.Context) (domain.StoreStats, error)
}
