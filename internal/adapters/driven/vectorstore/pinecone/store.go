// Package pinecone provides a vector store adapter backed by the
// Pinecone REST data plane.
//
// Pinecone has no list or scroll operation, so metadata-only queries
// run a similarity search with a zero vector and a metadata filter.
// Deletes by ID do not report which IDs existed; callers that need
// that accounting fetch first.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/civictech-labs/corpusctl/internal/core/domain"
	"github.com/civictech-labs/corpusctl/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultControllerURL = "https://api.pinecone.io"
	DefaultTimeout       = 30 * time.Second
	DefaultBatchSize     = 100

	// scanTopK is the result cap Pinecone places on a single query.
	// Metadata scans cannot see past it.
	scanTopK = 10000
)

// Config holds configuration for the Pinecone vector store.
type Config struct {
	// APIKey is the Pinecone API key (required).
	APIKey string

	// IndexHost is the index data-plane endpoint, e.g.
	// https://corpus-abc123.svc.us-east-1-aws.pinecone.io (required).
	IndexHost string

	// ControllerURL is the control-plane endpoint used to list
	// indexes (default: https://api.pinecone.io).
	ControllerURL string

	// Dimensions is the index vector size (required).
	Dimensions int

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// BatchSize caps how many vectors go into one upsert call
	// (default: 100).
	BatchSize int
}

// Store talks to a Pinecone index over REST.
type Store struct {
	client        *http.Client
	apiKey        string
	indexHost     string
	controllerURL string
	dimensions    int
	batchSize     int
}

// NewStore creates a Pinecone-backed vector store.
func NewStore(cfg Config) (*Store, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("pinecone: API key is required")
	}
	if cfg.IndexHost == "" {
		return nil, fmt.Errorf("pinecone: index host is required")
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("pinecone: dimensions are required")
	}
	if cfg.ControllerURL == "" {
		cfg.ControllerURL = DefaultControllerURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	return &Store{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		apiKey:        cfg.APIKey,
		indexHost:     cfg.IndexHost,
		controllerURL: cfg.ControllerURL,
		dimensions:    cfg.Dimensions,
		batchSize:     cfg.BatchSize,
	}, nil
}

// vector is the Pinecone wire representation.
type vector struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// match is a query result with similarity score.
type match struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata"`
}

// buildFilter converts a metadata filter into Pinecone's $eq syntax.
// Multiple keys are an implicit conjunction. Returns nil when empty.
func buildFilter(filter driven.MetadataFilter) map[string]any {
	if len(filter) == 0 {
		return nil
	}
	conditions := make(map[string]any, len(filter))
	for key, value := range filter {
		conditions[key] = map[string]any{"$eq": value}
	}
	return conditions
}

// do sends a JSON request against the given base URL and decodes the
// response into result.
func (s *Store) do(ctx context.Context, method, base, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, base+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pinecone error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// Upsert writes vectors in batches, continuing past failed batches.
// Cancellation is checked at batch boundaries and stops the loop.
func (s *Store) Upsert(ctx context.Context, namespace string, records []domain.VectorRecord) (driven.UpsertResult, error) {
	var result driven.UpsertResult
	for start := 0; start < len(records); start += s.batchSize {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		end := min(start+s.batchSize, len(records))
		batch := records[start:end]

		vectors := make([]vector, 0, len(batch))
		for _, record := range batch {
			vectors = append(vectors, vector{
				ID:       record.ID,
				Values:   record.Values,
				Metadata: record.Metadata,
			})
		}

		body := map[string]any{
			"vectors":   vectors,
			"namespace": namespace,
		}
		var resp struct {
			UpsertedCount int `json:"upsertedCount"`
		}
		if err := s.do(ctx, http.MethodPost, s.indexHost, "/vectors/upsert", body, &resp); err != nil {
			result.FailedBatches++
			result.Errors = append(result.Errors, fmt.Sprintf("batch %d-%d: %v", start, end-1, err))
			continue
		}
		result.UpsertedCount += resp.UpsertedCount
	}
	return result, nil
}

// Fetch retrieves vectors by ID. Missing IDs are absent from the
// result.
func (s *Store) Fetch(ctx context.Context, namespace string, chunkIDs []string) (map[string]domain.VectorRecord, error) {
	if len(chunkIDs) == 0 {
		return map[string]domain.VectorRecord{}, nil
	}

	query := url.Values{}
	for _, id := range chunkIDs {
		query.Add("ids", id)
	}
	if namespace != "" {
		query.Set("namespace", namespace)
	}

	var resp struct {
		Vectors map[string]vector `json:"vectors"`
	}
	if err := s.do(ctx, http.MethodGet, s.indexHost, "/vectors/fetch?"+query.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch vectors: %w", err)
	}

	found := make(map[string]domain.VectorRecord, len(resp.Vectors))
	for id, v := range resp.Vectors {
		found[id] = domain.VectorRecord{
			ID:       id,
			Values:   v.Values,
			Metadata: v.Metadata,
		}
	}
	return found, nil
}

// query runs the /query endpoint and returns raw matches.
func (s *Store) query(ctx context.Context, namespace string, queryVector []float32, topK int, filter driven.MetadataFilter) ([]match, error) {
	body := map[string]any{
		"vector":          queryVector,
		"topK":            topK,
		"namespace":       namespace,
		"includeMetadata": true,
	}
	if f := buildFilter(filter); f != nil {
		body["filter"] = f
	}

	var resp struct {
		Matches []match `json:"matches"`
	}
	if err := s.do(ctx, http.MethodPost, s.indexHost, "/query", body, &resp); err != nil {
		return nil, fmt.Errorf("query vectors: %w", err)
	}
	return resp.Matches, nil
}

// QueryByVector runs a similarity search.
func (s *Store) QueryByVector(ctx context.Context, namespace string, queryVector []float32, topK int, filter driven.MetadataFilter) ([]domain.VectorMatch, error) {
	matches, err := s.query(ctx, namespace, queryVector, topK, filter)
	if err != nil {
		return nil, err
	}

	results := make([]domain.VectorMatch, 0, len(matches))
	for _, m := range matches {
		results = append(results, domain.VectorMatch{
			ID:       m.ID,
			Score:    m.Score,
			Metadata: m.Metadata,
		})
	}
	return results, nil
}

// QueryByMetadata scans vectors matching the filter with a zero-vector
// query. Results beyond Pinecone's query cap are unreachable.
func (s *Store) QueryByMetadata(ctx context.Context, namespace string, filter driven.MetadataFilter, limit, offset int) ([]domain.VectorRecord, error) {
	topK := scanTopK
	if limit > 0 && offset+limit < topK {
		topK = offset + limit
	}

	matches, err := s.query(ctx, namespace, make([]float32, s.dimensions), topK, filter)
	if err != nil {
		return nil, err
	}

	if offset >= len(matches) {
		return nil, nil
	}
	matches = matches[offset:]
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	records := make([]domain.VectorRecord, 0, len(matches))
	for _, m := range matches {
		records = append(records, domain.VectorRecord{
			ID:       m.ID,
			Metadata: m.Metadata,
		})
	}
	return records, nil
}

// CountByMetadata reports how many vectors match the filter. Without a
// filter the namespace totals from index stats are used; with one, a
// zero-vector query counts matches up to the query cap.
func (s *Store) CountByMetadata(ctx context.Context, namespace string, filter driven.MetadataFilter) (int, error) {
	if len(filter) == 0 {
		stats, err := s.Stats(ctx)
		if err != nil {
			return 0, err
		}
		if namespace == "" {
			return stats.VectorCount, nil
		}
		return stats.Namespaces[namespace], nil
	}

	matches, err := s.query(ctx, namespace, make([]float32, s.dimensions), scanTopK, filter)
	if err != nil {
		return 0, err
	}
	return len(matches), nil
}

// DeleteByIDs removes vectors by ID. Pinecone ignores unknown IDs.
func (s *Store) DeleteByIDs(ctx context.Context, namespace string, chunkIDs []string) error {
	if len(chunkIDs) == 0 {
		return nil
	}

	body := map[string]any{
		"ids":       chunkIDs,
		"namespace": namespace,
	}
	if err := s.do(ctx, http.MethodPost, s.indexHost, "/vectors/delete", body, nil); err != nil {
		return fmt.Errorf("delete vectors: %w", err)
	}
	return nil
}

// DeleteByFilter removes all vectors matching the filter and reports
// how many were removed. The count is taken before deleting because
// Pinecone's delete response is empty.
func (s *Store) DeleteByFilter(ctx context.Context, namespace string, filter driven.MetadataFilter) (int, error) {
	count, err := s.CountByMetadata(ctx, namespace, filter)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}

	body := map[string]any{
		"namespace": namespace,
	}
	if f := buildFilter(filter); f != nil {
		body["filter"] = f
	} else {
		body["deleteAll"] = true
	}
	if err := s.do(ctx, http.MethodPost, s.indexHost, "/vectors/delete", body, nil); err != nil {
		return 0, fmt.Errorf("delete by filter: %w", err)
	}
	return count, nil
}

// Stats describes the index contents.
func (s *Store) Stats(ctx context.Context) (domain.StoreStats, error) {
	var resp struct {
		Dimension        int `json:"dimension"`
		TotalVectorCount int `json:"totalVectorCount"`
		Namespaces       map[string]struct {
			VectorCount int `json:"vectorCount"`
		} `json:"namespaces"`
	}
	if err := s.do(ctx, http.MethodPost, s.indexHost, "/describe_index_stats", map[string]any{}, &resp); err != nil {
		return domain.StoreStats{}, fmt.Errorf("index stats: %w", err)
	}

	stats := domain.StoreStats{
		VectorCount: resp.TotalVectorCount,
		Dimensions:  resp.Dimension,
	}
	if len(resp.Namespaces) > 0 {
		stats.Namespaces = make(map[string]int, len(resp.Namespaces))
		for name, ns := range resp.Namespaces {
			stats.Namespaces[name] = ns.VectorCount
		}
	}
	return stats, nil
}

// ListCollections names the indexes on the control plane.
func (s *Store) ListCollections(ctx context.Context) ([]string, error) {
	var resp struct {
		Indexes []struct {
			Name string `json:"name"`
		} `json:"indexes"`
	}
	if err := s.do(ctx, http.MethodGet, s.controllerURL, "/indexes", nil, &resp); err != nil {
		return nil, fmt.Errorf("list indexes: %w", err)
	}

	names := make([]string, 0, len(resp.Indexes))
	for _, index := range resp.Indexes {
		names = append(names, index.Name)
	}
	return names, nil
}

// Ping validates the index is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.Stats(ctx); err != nil {
		return fmt.Errorf("pinecone: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *Store) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
