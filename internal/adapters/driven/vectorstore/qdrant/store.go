// Package qdrant provides a vector store adapter backed by the Qdrant
// REST API.
//
// Qdrant requires point IDs to be UUIDs or unsigned integers, so chunk
// IDs are converted to deterministic UUIDs and the original ID is kept
// in the payload under "_original_id". Qdrant has no native namespace
// partition, so the namespace participates in the point UUID and is
// mirrored as a payload field for metadata filters. The same chunk ID
// stored in two namespaces yields two distinct points.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/civictech-labs/corpusctl/internal/core/domain"
	"github.com/civictech-labs/corpusctl/internal/core/ids"
	"github.com/civictech-labs/corpusctl/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:6333"
	DefaultCollection = "corpus"
	DefaultTimeout    = 30 * time.Second
	DefaultBatchSize  = 100

	// scrollPageSize is the page size used when walking points with
	// the scroll API.
	scrollPageSize = 256

	// payloadOriginalID holds the chunk ID before UUID conversion.
	payloadOriginalID = "_original_id"

	// payloadNamespace partitions points within the collection.
	payloadNamespace = "namespace"
)

// Config holds configuration for the Qdrant vector store.
type Config struct {
	// BaseURL is the Qdrant REST endpoint (default: http://localhost:6333).
	BaseURL string

	// APIKey is sent as the api-key header when set (Qdrant Cloud).
	APIKey string

	// Collection is the collection name (default: corpus).
	Collection string

	// Dimensions is the vector size used when the collection has to
	// be created (required).
	Dimensions int

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// BatchSize caps how many points go into one upsert call
	// (default: 100).
	BatchSize int
}

// Store talks to a Qdrant collection over REST.
type Store struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	collection string
	dimensions int
	batchSize  int
}

// NewStore creates a Qdrant-backed vector store and makes sure the
// collection exists.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("qdrant: dimensions are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	s := &Store{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		dimensions: cfg.Dimensions,
		batchSize:  cfg.BatchSize,
	}

	if err := s.ensureCollection(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// pointID derives the point UUID from namespace and chunk ID so that
// namespaces stay a hard partition.
func pointID(namespace, chunkID string) string {
	if namespace == "" {
		return ids.ToUUID(chunkID)
	}
	return ids.ToUUID(namespace + "/" + chunkID)
}

// point is the Qdrant wire representation of a stored vector.
type point struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}

// scoredPoint is a search result with similarity score.
type scoredPoint struct {
	ID      string         `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}

// apiResponse is the Qdrant REST envelope.
type apiResponse struct {
	Status any             `json:"status"`
	Result json.RawMessage `json:"result"`
}

// fieldCondition matches a payload field by exact value.
type fieldCondition struct {
	Key   string `json:"key"`
	Match struct {
		Value any `json:"value"`
	} `json:"match"`
}

// qdrantFilter is a conjunction of field conditions.
type qdrantFilter struct {
	Must []fieldCondition `json:"must"`
}

// buildFilter converts a metadata filter plus namespace into Qdrant's
// filter format. Returns nil when there is nothing to filter on.
func buildFilter(namespace string, filter driven.MetadataFilter) *qdrantFilter {
	var conditions []fieldCondition
	if namespace != "" {
		c := fieldCondition{Key: payloadNamespace}
		c.Match.Value = namespace
		conditions = append(conditions, c)
	}
	for key, value := range filter {
		c := fieldCondition{Key: key}
		c.Match.Value = value
		conditions = append(conditions, c)
	}
	if len(conditions) == 0 {
		return nil
	}
	return &qdrantFilter{Must: conditions}
}

// do sends a JSON request and decodes the Qdrant response envelope.
func (s *Store) do(ctx context.Context, method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("qdrant error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		var envelope apiResponse
		if err := json.Unmarshal(respBody, &envelope); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
	}
	return nil
}

// ensureCollection creates the collection if it does not exist yet.
func (s *Store) ensureCollection(ctx context.Context) error {
	err := s.do(ctx, http.MethodGet, "/collections/"+s.collection, nil, nil)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("check collection: %w", err)
	}

	create := map[string]any{
		"vectors": map[string]any{
			"size":     s.dimensions,
			"distance": "Cosine",
		},
	}
	if err := s.do(ctx, http.MethodPut, "/collections/"+s.collection, create, nil); err != nil {
		return fmt.Errorf("create collection: %w", err)
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

		points := make([]point, 0, len(batch))
		for _, record := range batch {
			payload := make(map[string]any, len(record.Metadata)+2)
			for k, v := range record.Metadata {
				payload[k] = v
			}
			payload[payloadOriginalID] = record.ID
			if namespace != "" {
				payload[payloadNamespace] = namespace
			}
			points = append(points, point{
				ID:      pointID(namespace, record.ID),
				Vector:  record.Values,
				Payload: payload,
			})
		}

		body := map[string]any{"points": points}
		if err := s.do(ctx, http.MethodPut, "/collections/"+s.collection+"/points?wait=true", body, nil); err != nil {
			result.FailedBatches++
			result.Errors = append(result.Errors, fmt.Sprintf("batch %d-%d: %v", start, end-1, err))
			continue
		}
		result.UpsertedCount += len(batch)
	}
	return result, nil
}

// Fetch retrieves vectors by chunk ID. IDs the backend does not know
// are absent from the result.
func (s *Store) Fetch(ctx context.Context, namespace string, chunkIDs []string) (map[string]domain.VectorRecord, error) {
	if len(chunkIDs) == 0 {
		return map[string]domain.VectorRecord{}, nil
	}

	pointIDs := make([]string, len(chunkIDs))
	for i, id := range chunkIDs {
		pointIDs[i] = pointID(namespace, id)
	}

	body := map[string]any{
		"ids":          pointIDs,
		"with_payload": true,
		"with_vector":  true,
	}
	var points []point
	if err := s.do(ctx, http.MethodPost, "/collections/"+s.collection+"/points", body, &points); err != nil {
		return nil, fmt.Errorf("fetch points: %w", err)
	}

	found := make(map[string]domain.VectorRecord, len(points))
	for _, p := range points {
		record := recordFromPayload(p.ID, p.Payload)
		record.Values = p.Vector
		found[record.ID] = record
	}
	return found, nil
}

// QueryByVector runs a similarity search.
func (s *Store) QueryByVector(ctx context.Context, namespace string, vector []float32, topK int, filter driven.MetadataFilter) ([]domain.VectorMatch, error) {
	body := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	if f := buildFilter(namespace, filter); f != nil {
		body["filter"] = f
	}

	var scored []scoredPoint
	if err := s.do(ctx, http.MethodPost, "/collections/"+s.collection+"/points/search", body, &scored); err != nil {
		return nil, fmt.Errorf("search points: %w", err)
	}

	matches := make([]domain.VectorMatch, 0, len(scored))
	for _, p := range scored {
		record := recordFromPayload(p.ID, p.Payload)
		matches = append(matches, domain.VectorMatch{
			ID:       record.ID,
			Score:    p.Score,
			Metadata: record.Metadata,
		})
	}
	return matches, nil
}

// scrollResult is the scroll API result shape.
type scrollResult struct {
	Points         []point `json:"points"`
	NextPageOffset any     `json:"next_page_offset"`
}

// QueryByMetadata walks matching points with the scroll API. Qdrant
// paginates scroll by point ID, so the numeric offset is applied by
// skipping while walking.
func (s *Store) QueryByMetadata(ctx context.Context, namespace string, filter driven.MetadataFilter, limit, offset int) ([]domain.VectorRecord, error) {
	body := map[string]any{
		"limit":        scrollPageSize,
		"with_payload": true,
		"with_vector":  false,
	}
	if f := buildFilter(namespace, filter); f != nil {
		body["filter"] = f
	}

	var (
		records []domain.VectorRecord
		skipped int
	)
	for {
		var page scrollResult
		if err := s.do(ctx, http.MethodPost, "/collections/"+s.collection+"/points/scroll", body, &page); err != nil {
			return nil, fmt.Errorf("scroll points: %w", err)
		}

		for _, p := range page.Points {
			if skipped < offset {
				skipped++
				continue
			}
			if limit > 0 && len(records) >= limit {
				return records, nil
			}
			records = append(records, recordFromPayload(p.ID, p.Payload))
		}

		if page.NextPageOffset == nil {
			return records, nil
		}
		body["offset"] = page.NextPageOffset
	}
}

// CountByMetadata reports how many points match the filter.
func (s *Store) CountByMetadata(ctx context.Context, namespace string, filter driven.MetadataFilter) (int, error) {
	body := map[string]any{"exact": true}
	if f := buildFilter(namespace, filter); f != nil {
		body["filter"] = f
	}

	var result struct {
		Count int `json:"count"`
	}
	if err := s.do(ctx, http.MethodPost, "/collections/"+s.collection+"/points/count", body, &result); err != nil {
		return 0, fmt.Errorf("count points: %w", err)
	}
	return result.Count, nil
}

// DeleteByIDs removes points by chunk ID. Unknown IDs are ignored.
func (s *Store) DeleteByIDs(ctx context.Context, namespace string, chunkIDs []string) error {
	if len(chunkIDs) == 0 {
		return nil
	}

	pointIDs := make([]string, len(chunkIDs))
	for i, id := range chunkIDs {
		pointIDs[i] = pointID(namespace, id)
	}

	body := map[string]any{"points": pointIDs}
	if err := s.do(ctx, http.MethodPost, "/collections/"+s.collection+"/points/delete?wait=true", body, nil); err != nil {
		return fmt.Errorf("delete points: %w", err)
	}
	return nil
}

// DeleteByFilter removes all points matching the filter and reports
// how many were removed. The count is taken before deleting because
// Qdrant's delete response does not include it.
func (s *Store) DeleteByFilter(ctx context.Context, namespace string, filter driven.MetadataFilter) (int, error) {
	count, err := s.CountByMetadata(ctx, namespace, filter)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}

	body := map[string]any{}
	if f := buildFilter(namespace, filter); f != nil {
		body["filter"] = f
	} else {
		// An empty filter would be rejected; match everything instead.
		body["filter"] = map[string]any{"must": []any{}}
	}
	if err := s.do(ctx, http.MethodPost, "/collections/"+s.collection+"/points/delete?wait=true", body, nil); err != nil {
		return 0, fmt.Errorf("delete by filter: %w", err)
	}
	return count, nil
}

// Stats describes the collection contents.
func (s *Store) Stats(ctx context.Context) (domain.StoreStats, error) {
	var info struct {
		PointsCount int `json:"points_count"`
	}
	if err := s.do(ctx, http.MethodGet, "/collections/"+s.collection, nil, &info); err != nil {
		return domain.StoreStats{}, fmt.Errorf("collection info: %w", err)
	}
	return domain.StoreStats{
		VectorCount: info.PointsCount,
		Dimensions:  s.dimensions,
	}, nil
}

// ListCollections names the collections on the server.
func (s *Store) ListCollections(ctx context.Context) ([]string, error) {
	var result struct {
		Collections []struct {
			Name string `json:"name"`
		} `json:"collections"`
	}
	if err := s.do(ctx, http.MethodGet, "/collections", nil, &result); err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}

	names := make([]string, 0, len(result.Collections))
	for _, c := range result.Collections {
		names = append(names, c.Name)
	}
	return names, nil
}

// Ping validates the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, http.MethodGet, "/collections", nil, nil); err != nil {
		return fmt.Errorf("qdrant: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *Store) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

// recordFromPayload rebuilds a VectorRecord from a point payload,
// restoring the original chunk ID and stripping adapter-internal keys.
func recordFromPayload(pointID string, payload map[string]any) domain.VectorRecord {
	record := domain.VectorRecord{
		ID:       pointID,
		Metadata: make(map[string]any, len(payload)),
	}
	for k, v := range payload {
		switch k {
		case payloadOriginalID:
			if original, ok := v.(string); ok {
				record.ID = original
			}
		case payloadNamespace:
			// internal partition key
		default:
			record.Metadata[k] = v
		}
	}
	return record
}
