package driven

import (
	"context"

	"github.com/civictech-labs/corpusctl/internal/core/domain"
)

// MetadataFilter selects vectors by exact metadata equality. All keys
// must match. A nil or empty filter matches everything.
type MetadataFilter map[string]any

// VectorStore persists embeddings and their metadata payloads.
// Implementations wrap a concrete backend (in-memory, Qdrant, Pinecone)
// and must treat the namespace parameter as a hard partition: an empty
// namespace means the backend's default partition.
type VectorStore interface {
	// Upsert inserts or overwrites vectors by ID. Batches internally
	// as the backend requires. Reports how many vectors each batch
	// accepted; a batch failure is recorded and processing continues
	// with the next batch.
	Upsert(ctx context.Context, namespace string, records []domain.VectorRecord) (UpsertResult, error)

	// Fetch retrieves vectors by ID. Missing IDs are simply absent
	// from the result, never an error.
	Fetch(ctx context.Context, namespace string, ids []string) (map[string]domain.VectorRecord, error)

	// QueryByVector returns the topK nearest vectors, optionally
	// restricted by a metadata filter.
	QueryByVector(ctx context.Context, namespace string, vector []float32, topK int, filter MetadataFilter) ([]domain.VectorMatch, error)

	// QueryByMetadata scans vectors matching the filter without any
	// similarity ranking. Used by discovery listings.
	QueryByMetadata(ctx context.Context, namespace string, filter MetadataFilter, limit, offset int) ([]domain.VectorRecord, error)

	// CountByMetadata reports how many vectors match the filter.
	CountByMetadata(ctx context.Context, namespace string, filter MetadataFilter) (int, error)

	// DeleteByIDs removes the given vectors. Unknown IDs are ignored
	// by the backend; callers that need missing-ID accounting fetch
	// first.
	DeleteByIDs(ctx context.Context, namespace string, ids []string) error

	// DeleteByFilter removes all vectors matching the filter and
	// reports how many were removed.
	DeleteByFilter(ctx context.Context, namespace string, filter MetadataFilter) (int, error)

	// Stats describes the store's current contents.
	Stats(ctx context.Context) (domain.StoreStats, error)

	// ListCollections names the collections or indexes the backend
	// exposes.
	ListCollections(ctx context.Context) ([]string, error)

	// Ping validates the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// UpsertResult reports a (possibly partially failed) upsert.
type UpsertResult struct {
	// UpsertedCount is how many vectors the backend accepted.
	UpsertedCount int

	// FailedBatches counts batches the backend rejected.
	FailedBatches int

	// Errors holds one message per failed batch.
	Errors []string
}
