// Package memory provides an in-memory vector store. It is the
// reference implementation of the store contract and the default
// backend for tests and local experiments.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/civictech-labs/corpusctl/internal/core/domain"
	"github.com/civictech-labs/corpusctl/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store is an in-memory implementation of driven.VectorStore.
// Namespaces partition records; the empty namespace is the default.
type Store struct {
	mu         sync.RWMutex
	namespaces map[string]map[string]domain.VectorRecord
	dimensions int
}

// NewStore creates an empty in-memory vector store.
func NewStore() *Store {
	return &Store{namespaces: make(map[string]map[string]domain.VectorRecord)}
}

// Upsert inserts or overwrites records by ID.
func (s *Store) Upsert(_ context.Context, namespace string, records []domain.VectorRecord) (driven.UpsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.namespaces[namespace]
	if !ok {
		ns = make(map[string]domain.VectorRecord, len(records))
		s.namespaces[namespace] = ns
	}
	for _, r := range records {
		ns[r.ID] = r
		if s.dimensions == 0 {
			s.dimensions = len(r.Values)
		}
	}
	return driven.UpsertResult{UpsertedCount: len(records)}, nil
}

// Fetch retrieves records by ID. Missing IDs are absent from the result.
func (s *Store) Fetch(_ context.Context, namespace string, ids []string) (map[string]domain.VectorRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.VectorRecord)
	ns := s.namespaces[namespace]
	for _, id := range ids {
		if r, ok := ns[id]; ok {
			out[id] = r
		}
	}
	return out, nil
}

// QueryByVector ranks records by cosine similarity.
func (s *Store) QueryByVector(_ context.Context, namespace string, vector []float32, topK int, filter driven.MetadataFilter) ([]domain.VectorMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matches []domain.VectorMatch
	for _, r := range s.namespaces[namespace] {
		if !matchesFilter(r.Metadata, filter) {
			continue
		}
		matches = append(matches, domain.VectorMatch{
			ID:       r.ID,
			Score:    cosineSimilarity(vector, r.Values),
			Metadata: r.Metadata,
		})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// QueryByMetadata scans records matching the filter, ordered by ID for
// stable pagination.
func (s *Store) QueryByMetadata(_ context.Context, namespace string, filter driven.MetadataFilter, limit, offset int) ([]domain.VectorRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.VectorRecord
	for _, r := range s.namespaces[namespace] {
		if matchesFilter(r.Metadata, filter) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CountByMetadata reports how many records match the filter.
func (s *Store) CountByMetadata(_ context.Context, namespace string, filter driven.MetadataFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, r := range s.namespaces[namespace] {
		if matchesFilter(r.Metadata, filter) {
			count++
		}
	}
	return count, nil
}

// DeleteByIDs removes records, ignoring unknown IDs.
func (s *Store) DeleteByIDs(_ context.Context, namespace string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns := s.namespaces[namespace]
	for _, id := range ids {
		delete(ns, id)
	}
	return nil
}

// DeleteByFilter removes matching records and reports the count.
func (s *Store) DeleteByFilter(_ context.Context, namespace string, filter driven.MetadataFilter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns := s.namespaces[namespace]
	var doomed []string
	for id, r := range ns {
		if matchesFilter(r.Metadata, filter) {
			doomed = append(doomed, id)
		}
	}
	for _, id := range doomed {
		delete(ns, id)
	}
	return len(doomed), nil
}

// Stats summarises the store contents.
func (s *Store) Stats(_ context.Context) (domain.StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := domain.StoreStats{Dimensions: s.dimensions, Namespaces: make(map[string]int)}
	for name, ns := range s.namespaces {
		stats.Namespaces[name] = len(ns)
		stats.VectorCount += len(ns)
	}
	return stats, nil
}

// ListCollections names the namespaces in use.
func (s *Store) ListCollections(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var names []string
	for name := range s.namespaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Ping always succeeds for the in-memory store.
func (s *Store) Ping(_ context.Context) error {
	return nil
}

// Close releases nothing.
func (s *Store) Close() error {
	return nil
}

func matchesFilter(metadata map[string]any, filter driven.MetadataFilter) bool {
	for k, want := range filter {
		if metadata[k] != want {
			return false
		}
	}
	return true
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
