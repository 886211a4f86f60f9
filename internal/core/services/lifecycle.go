package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/civictech-labs/corpusctl/internal/core/domain"
	"github.com/civictech-labs/corpusctl/internal/core/ports/driven"
	"github.com/civictech-labs/corpusctl/internal/core/ports/driving"
	"github.com/civictech-labs/corpusctl/internal/enrichers"
	"github.com/civictech-labs/corpusctl/internal/logger"
)

// Ensure LifecycleManager implements the interface.
var _ driving.LifecycleManager = (*LifecycleManager)(nil)

const (
	// previewWarnChunks and previewWarnDocs flag deletions large
	// enough to deserve a second look before committing.
	previewWarnChunks = 1000
	previewWarnDocs   = 50

	// previewSampleIDs caps the example IDs shown in a preview.
	previewSampleIDs = 10

	// filenameScoreFloor drops fuzzy filename matches too weak to be
	// useful.
	filenameScoreFloor = 0.5
)

// LifecycleManager implements discovery and deletion over the vector
// store.
type LifecycleManager struct {
	store      driven.VectorStore
	embedder   driven.EmbeddingService
	thresholds domain.ConfidenceThresholds
}

// LifecycleOption configures the manager.
type LifecycleOption func(*LifecycleManager)

// WithThresholds overrides the confidence tier cutoffs.
func WithThresholds(t domain.ConfidenceThresholds) LifecycleOption {
	return func(m *LifecycleManager) {
		m.thresholds = t
	}
}

// NewLifecycleManager creates the lifecycle service. The embedder is
// only needed for content search and may be nil otherwise.
func NewLifecycleManager(store driven.VectorStore, embedder driven.EmbeddingService, opts ...LifecycleOption) *LifecycleManager {
	m := &LifecycleManager{
		store:      store,
		embedder:   embedder,
		thresholds: domain.DefaultConfidenceThresholds,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// documentAggregate accumulates per-source facts while scanning.
type documentAggregate struct {
	info      domain.DocumentInfo
	hash      string
	languages map[string]bool
}

// scanDocuments walks all vectors matching the filter and aggregates
// them per source, newest first.
func (m *LifecycleManager) scanDocuments(ctx context.Context, namespace string, filter driven.MetadataFilter) ([]documentAggregate, error) {
	records, err := m.store.QueryByMetadata(ctx, namespace, filter, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("scan vectors: %w", err)
	}

	bySource := make(map[string]*documentAggregate)
	for _, record := range records {
		sourceID := metaString(record.Metadata, enrichers.KeySourceID)
		if sourceID == "" {
			continue
		}

		agg, ok := bySource[sourceID]
		if !ok {
			agg = &documentAggregate{
				info: domain.DocumentInfo{
					SourceID: sourceID,
					Filename: metaString(record.Metadata, enrichers.KeyFilename),
					Category: metaString(record.Metadata, enrichers.KeyCategory),
				},
				hash:      metaString(record.Metadata, enrichers.KeyFileHash),
				languages: make(map[string]bool),
			}
			bySource[sourceID] = agg
		}

		agg.info.ChunkCount++
		if lang := metaString(record.Metadata, enrichers.KeyLanguage); lang != "" {
			agg.languages[lang] = true
		}
		if uploaded := metaTime(record.Metadata, enrichers.KeyUploadedAt); uploaded.After(agg.info.UploadedAt) {
			agg.info.UploadedAt = uploaded
		}
	}

	aggregates := make([]documentAggregate, 0, len(bySource))
	for _, agg := range bySource {
		for lang := range agg.languages {
			agg.info.Languages = append(agg.info.Languages, lang)
		}
		sort.Strings(agg.info.Languages)
		aggregates = append(aggregates, *agg)
	}

	// Newest first, source ID as tiebreaker for stable pages.
	sort.Slice(aggregates, func(i, j int) bool {
		if !aggregates[i].info.UploadedAt.Equal(aggregates[j].info.UploadedAt) {
			return aggregates[i].info.UploadedAt.After(aggregates[j].info.UploadedAt)
		}
		return aggregates[i].info.SourceID < aggregates[j].info.SourceID
	})
	return aggregates, nil
}

// pageDocuments slices aggregates into a DocumentPage.
func pageDocuments(aggregates []documentAggregate, limit, offset int) *domain.DocumentPage {
	page := &domain.DocumentPage{
		Total:  len(aggregates),
		Offset: offset,
		Limit:  limit,
	}
	if offset >= len(aggregates) {
		return page
	}
	aggregates = aggregates[offset:]
	if limit > 0 && len(aggregates) > limit {
		aggregates = aggregates[:limit]
		page.HasMore = true
	}
	for _, agg := range aggregates {
		page.Documents = append(page.Documents, agg.info)
	}
	return page
}

// ListDocuments returns per-source aggregates, newest first.
func (m *LifecycleManager) ListDocuments(ctx context.Context, namespace string, limit, offset int) (*domain.DocumentPage, error) {
	aggregates, err := m.scanDocuments(ctx, namespace, nil)
	if err != nil {
		return nil, err
	}
	return pageDocuments(aggregates, limit, offset), nil
}

// BrowseChunks pages through a document's chunks in order.
func (m *LifecycleManager) BrowseChunks(ctx context.Context, namespace, sourceID string, limit, offset int) (*domain.ChunkPage, error) {
	records, err := m.store.QueryByMetadata(ctx, namespace, driven.MetadataFilter{enrichers.KeySourceID: sourceID}, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("scan chunks: %w", err)
	}

	chunks := make([]domain.ChunkInfo, 0, len(records))
	for _, record := range records {
		chunks = append(chunks, chunkInfo(record.ID, record.Metadata))
	}
	sort.Slice(chunks, func(i, j int) bool {
		if chunks[i].Index != chunks[j].Index {
			return chunks[i].Index < chunks[j].Index
		}
		return chunks[i].ID < chunks[j].ID
	})

	page := &domain.ChunkPage{
		Total:  len(chunks),
		Offset: offset,
		Limit:  limit,
	}
	if offset >= len(chunks) {
		return page, nil
	}
	chunks = chunks[offset:]
	if limit > 0 && len(chunks) > limit {
		chunks = chunks[:limit]
		page.HasMore = true
	}
	page.Chunks = chunks
	return page, nil
}

// SearchByFilename finds documents by upload name. Exact matches score
// 1.0; fuzzy matches carry their bigram similarity.
func (m *LifecycleManager) SearchByFilename(ctx context.Context, namespace, filename string) ([]domain.SearchHit, error) {
	aggregates, err := m.scanDocuments(ctx, namespace, nil)
	if err != nil {
		return nil, err
	}

	var hits []domain.SearchHit
	for _, agg := range aggregates {
		score := filenameSimilarity(filename, agg.info.Filename)
		if score < filenameScoreFloor {
			continue
		}
		hits = append(hits, domain.SearchHit{
			Chunk: domain.ChunkInfo{
				SourceID: agg.info.SourceID,
				Metadata: map[string]any{
					enrichers.KeyFilename: agg.info.Filename,
					enrichers.KeyCategory: agg.info.Category,
					"chunk_count":         agg.info.ChunkCount,
				},
			},
			Score:      score,
			Confidence: m.thresholds.Tier(score),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Chunk.SourceID < hits[j].Chunk.SourceID
	})
	return hits, nil
}

// SearchByCategory lists documents in a category, newest first.
func (m *LifecycleManager) SearchByCategory(ctx context.Context, namespace, category string, limit, offset int) (*domain.DocumentPage, error) {
	aggregates, err := m.scanDocuments(ctx, namespace, driven.MetadataFilter{enrichers.KeyCategory: category})
	if err != nil {
		return nil, err
	}
	return pageDocuments(aggregates, limit, offset), nil
}

// SearchChunksByContent finds chunks by semantic similarity to the
// query.
func (m *LifecycleManager) SearchChunksByContent(ctx context.Context, namespace, query string, topK int) ([]domain.SearchHit, error) {
	if m.embedder == nil {
		return nil, fmt.Errorf("%w: no embedding service configured", domain.ErrEmbeddingUnavailable)
	}
	if topK <= 0 {
		topK = 10
	}

	vector, err := m.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}

	matches, err := m.store.QueryByVector(ctx, namespace, vector, topK, nil)
	if err != nil {
		return nil, fmt.Errorf("query vectors: %w", err)
	}

	hits := make([]domain.SearchHit, 0, len(matches))
	for _, match := range matches {
		hits = append(hits, domain.SearchHit{
			Chunk:      chunkInfo(match.ID, match.Metadata),
			Score:      match.Score,
			Confidence: m.thresholds.Tier(match.Score),
		})
	}
	return hits, nil
}

// FindDuplicates groups sources sharing the same content hash.
func (m *LifecycleManager) FindDuplicates(ctx context.Context, namespace string) ([]domain.DuplicateGroup, error) {
	aggregates, err := m.scanDocuments(ctx, namespace, nil)
	if err != nil {
		return nil, err
	}

	byHash := make(map[string][]documentAggregate)
	for _, agg := range aggregates {
		if agg.hash == "" {
			continue
		}
		byHash[agg.hash] = append(byHash[agg.hash], agg)
	}

	var groups []domain.DuplicateGroup
	for hash, members := range byHash {
		if len(members) < 2 {
			continue
		}
		// Aggregates arrive newest first already.
		group := domain.DuplicateGroup{
			Key:      hash,
			Filename: members[0].info.Filename,
		}
		for _, member := range members {
			group.SourceIDs = append(group.SourceIDs, member.info.SourceID)
		}
		groups = append(groups, group)
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups, nil
}

// deletionTarget is the resolved set of chunks a delete request covers.
type deletionTarget struct {
	chunkIDs   []string
	missingIDs []string
	sourceIDs  map[string]bool
}

// resolveTarget expands a delete request into concrete chunk IDs with
// missing-ID accounting.
func (m *LifecycleManager) resolveTarget(ctx context.Context, req driving.DeleteRequest) (*deletionTarget, error) {
	target := &deletionTarget{sourceIDs: make(map[string]bool)}

	switch {
	case len(req.ChunkIDs) > 0:
		found, err := m.store.Fetch(ctx, req.Namespace, req.ChunkIDs)
		if err != nil {
			return nil, fmt.Errorf("fetch chunks: %w", err)
		}
		for _, id := range req.ChunkIDs {
			record, ok := found[id]
			if !ok {
				target.missingIDs = append(target.missingIDs, id)
				continue
			}
			target.chunkIDs = append(target.chunkIDs, id)
			if sourceID := metaString(record.Metadata, enrichers.KeySourceID); sourceID != "" {
				target.sourceIDs[sourceID] = true
			}
		}

	case len(req.SourceIDs) > 0:
		for _, sourceID := range req.SourceIDs {
			records, err := m.store.QueryByMetadata(ctx, req.Namespace, driven.MetadataFilter{enrichers.KeySourceID: sourceID}, 0, 0)
			if err != nil {
				return nil, fmt.Errorf("scan source %s: %w", sourceID, err)
			}
			if len(records) == 0 {
				target.missingIDs = append(target.missingIDs, sourceID)
				continue
			}
			target.sourceIDs[sourceID] = true
			for _, record := range records {
				target.chunkIDs = append(target.chunkIDs, record.ID)
			}
		}

	case len(req.Filter) > 0:
		records, err := m.store.QueryByMetadata(ctx, req.Namespace, req.Filter, 0, 0)
		if err != nil {
			return nil, fmt.Errorf("scan filter: %w", err)
		}
		for _, record := range records {
			target.chunkIDs = append(target.chunkIDs, record.ID)
			if sourceID := metaString(record.Metadata, enrichers.KeySourceID); sourceID != "" {
				target.sourceIDs[sourceID] = true
			}
		}

	default:
		return nil, fmt.Errorf("%w: no deletion selector given", domain.ErrInvalidInput)
	}

	return target, nil
}

// PreviewDelete reports what Delete would remove, without mutating
// anything.
func (m *LifecycleManager) PreviewDelete(ctx context.Context, req driving.DeleteRequest) (*domain.DeletionPreview, error) {
	target, err := m.resolveTarget(ctx, req)
	if err != nil {
		return nil, err
	}

	preview := &domain.DeletionPreview{
		ChunkCount:    len(target.chunkIDs),
		DocumentCount: len(target.sourceIDs),
		MissingIDs:    target.missingIDs,
	}
	sample := target.chunkIDs
	if len(sample) > previewSampleIDs {
		sample = sample[:previewSampleIDs]
	}
	preview.SampleIDs = append(preview.SampleIDs, sample...)

	if preview.ChunkCount > previewWarnChunks {
		preview.Warnings = append(preview.Warnings, fmt.Sprintf("deletion covers %d chunks", preview.ChunkCount))
	}
	if preview.DocumentCount > previewWarnDocs {
		preview.Warnings = append(preview.Warnings, fmt.Sprintf("deletion covers %d documents", preview.DocumentCount))
	}
	if len(preview.MissingIDs) > 0 {
		preview.Warnings = append(preview.Warnings, fmt.Sprintf("%d requested IDs not found", len(preview.MissingIDs)))
	}
	return preview, nil
}

// Delete removes the targeted chunks. Partial removals report
// Success=false with per-ID accounting.
func (m *LifecycleManager) Delete(ctx context.Context, req driving.DeleteRequest) (*domain.DeletionResult, error) {
	started := time.Now()

	target, err := m.resolveTarget(ctx, req)
	if err != nil {
		return nil, err
	}

	result := &domain.DeletionResult{
		RequestedCount: len(target.chunkIDs) + len(target.missingIDs),
		MissingIDs:     target.missingIDs,
		DryRun:         req.DryRun,
	}

	if req.DryRun {
		result.DeletedCount = len(target.chunkIDs)
		result.Status, result.Success = deletionStatus(result)
		result.Duration = time.Since(started)
		return result, nil
	}

	if len(target.chunkIDs) > 0 {
		if err := m.store.DeleteByIDs(ctx, req.Namespace, target.chunkIDs); err != nil {
			result.Errors = append(result.Errors, err.Error())
		}

		// Verify: anything still fetchable was not deleted.
		remaining, err := m.store.Fetch(ctx, req.Namespace, target.chunkIDs)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("verification fetch failed: %v", err))
			result.DeletedCount = len(target.chunkIDs)
		} else {
			result.DeletedCount = len(target.chunkIDs) - len(remaining)
			if len(remaining) > 0 {
				result.Errors = append(result.Errors, fmt.Sprintf("%d chunks survived deletion", len(remaining)))
			}
		}
	}

	result.Status, result.Success = deletionStatus(result)
	result.Duration = time.Since(started)
	logger.Debug("Deleted %d/%d chunks (%s)", result.DeletedCount, result.RequestedCount, result.Status)
	return result, nil
}

// deletionStatus derives the outcome from the accounting: success only
// when everything requested was removed without backend errors.
func deletionStatus(result *domain.DeletionResult) (domain.DeletionStatus, bool) {
	switch {
	case result.RequestedCount == 0:
		return domain.DeletionSuccess, true
	case result.DeletedCount == 0 && result.RequestedCount > 0 && !result.DryRun && len(result.Errors) > 0:
		return domain.DeletionFailed, false
	case result.DeletedCount == result.RequestedCount && len(result.Errors) == 0:
		return domain.DeletionSuccess, true
	default:
		return domain.DeletionPartial, false
	}
}

// CleanupDuplicates removes duplicate uploads, keeping one source per
// group according to the strategy.
func (m *LifecycleManager) CleanupDuplicates(ctx context.Context, namespace string, keep domain.KeepStrategy, dryRun bool) (*domain.CleanupResult, error) {
	if keep != domain.KeepLatest && keep != domain.KeepFirst {
		return nil, fmt.Errorf("%w: unknown keep strategy %q", domain.ErrInvalidInput, keep)
	}

	groups, err := m.FindDuplicates(ctx, namespace)
	if err != nil {
		return nil, err
	}

	result := &domain.CleanupResult{DryRun: dryRun}
	for _, group := range groups {
		// SourceIDs are newest first: latest keeps the head, first
		// keeps the tail.
		switch keep {
		case domain.KeepLatest:
			group.Keep = group.SourceIDs[0]
			group.Remove = group.SourceIDs[1:]
		case domain.KeepFirst:
			group.Keep = group.SourceIDs[len(group.SourceIDs)-1]
			group.Remove = group.SourceIDs[:len(group.SourceIDs)-1]
		}

		for _, sourceID := range group.Remove {
			if dryRun {
				count, err := m.store.CountByMetadata(ctx, namespace, driven.MetadataFilter{enrichers.KeySourceID: sourceID})
				if err != nil {
					result.Errors = append(result.Errors, fmt.Sprintf("count %s: %v", sourceID, err))
					continue
				}
				result.RemovedChunks += count
				continue
			}

			removed, err := m.store.DeleteByFilter(ctx, namespace, driven.MetadataFilter{enrichers.KeySourceID: sourceID})
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("delete %s: %v", sourceID, err))
				continue
			}
			result.RemovedChunks += removed
		}
		result.Groups = append(result.Groups, group)
	}
	return result, nil
}

// Stats summarises the backing store.
func (m *LifecycleManager) Stats(ctx context.Context) (domain.StoreStats, error) {
	return m.store.Stats(ctx)
}

// chunkInfo rebuilds a ChunkInfo from stored metadata.
func chunkInfo(id string, metadata map[string]any) domain.ChunkInfo {
	return domain.ChunkInfo{
		ID:       id,
		SourceID: metaString(metadata, enrichers.KeySourceID),
		Content:  metaString(metadata, enrichers.KeyText),
		Index:    metaInt(metadata, enrichers.KeyChunkIndex),
		Metadata: metadata,
	}
}

// metaString reads a string metadata value, empty when absent.
func metaString(metadata map[string]any, key string) string {
	if s, ok := metadata[key].(string); ok {
		return s
	}
	return ""
}

// metaInt reads a numeric metadata value. Backends deserialise JSON
// numbers as float64.
func metaInt(metadata map[string]any, key string) int {
	switch v := metadata[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// metaTime parses an RFC3339 metadata value, zero when absent or
// malformed.
func metaTime(metadata map[string]any, key string) time.Time {
	s := metaString(metadata, key)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// filenameSimilarity scores two filenames in [0, 1] using character
// bigram overlap. Case-insensitive; identical names score 1.0.
func filenameSimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0
	}

	bigramsA := bigrams(a)
	bigramsB := bigrams(b)
	if len(bigramsA) == 0 || len(bigramsB) == 0 {
		return 0
	}

	shared := 0
	for gram, count := range bigramsA {
		if other, ok := bigramsB[gram]; ok {
			shared += min(count, other)
		}
	}
	return 2.0 * float64(shared) / float64(totalGrams(bigramsA)+totalGrams(bigramsB))
}

func bigrams(s string) map[string]int {
	runes := []rune(s)
	grams := make(map[string]int)
	for i := 0; i+1 < len(runes); i++ {
		grams[string(runes[i:i+2])]++
	}
	return grams
}

func totalGrams(grams map[string]int) int {
	total := 0
	for _, count := range grams {
		total += count
	}
	return total
}
