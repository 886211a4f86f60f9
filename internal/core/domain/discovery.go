package domain

import "time"

// Confidence tiers a similarity score for human review.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ConfidenceThresholds holds the tier cutoffs. Scores at or above High
// are high, at or above Medium are medium, everything else is low.
type ConfidenceThresholds struct {
	High   float64
	Medium float64
}

// DefaultConfidenceThresholds are the standard tier cutoffs.
var DefaultConfidenceThresholds = ConfidenceThresholds{High: 0.95, Medium: 0.80}

// Tier maps a similarity score to a confidence tier.
func (t ConfidenceThresholds) Tier(score float64) Confidence {
	switch {
	case score >= t.High:
		return ConfidenceHigh
	case score >= t.Medium:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// DocumentInfo is the per-source aggregate shown by discovery listings.
type DocumentInfo struct {
	// SourceID identifies the source file.
	SourceID string

	// Filename is the original upload name.
	Filename string

	// Category is the assigned content category.
	Category string

	// Languages are the distinct chunk languages seen for this source.
	Languages []string

	// ChunkCount is the number of stored chunks.
	ChunkCount int

	// UploadedAt is the recorded upload time, zero when unknown.
	UploadedAt time.Time
}

// ChunkInfo is a stored chunk as returned by discovery.
type ChunkInfo struct {
	// ID is the chunk identifier.
	ID string

	// SourceID identifies the owning source file.
	SourceID string

	// Content is the stored chunk text, may be truncated for listings.
	Content string

	// Index is the chunk's ordinal position within its source.
	Index int

	// Metadata is the stored payload.
	Metadata map[string]any
}

// DocumentPage is one page of a document listing.
type DocumentPage struct {
	Documents []DocumentInfo
	Total     int
	Offset    int
	Limit     int
	HasMore   bool
}

// ChunkPage is one page of a chunk listing.
type ChunkPage struct {
	Chunks  []ChunkInfo
	Total   int
	Offset  int
	Limit   int
	HasMore bool
}

// SearchHit is a discovery search result with its confidence tier.
type SearchHit struct {
	Chunk      ChunkInfo
	Score      float64
	Confidence Confidence
}
