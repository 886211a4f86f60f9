package enrichers

import (
	"strings"
	"time"

	"github.com/civictech-labs/corpusctl/internal/analyzers"
	"github.com/civictech-labs/corpusctl/internal/core/domain"
)

// Metadata keys written by the enricher. Discovery and deletion filter
// on these, so the names are part of the stored contract.
const (
	KeySourceID    = "source_id"
	KeyFilename    = "source_filename"
	KeyFileHash    = "file_hash"
	KeyCategory    = "category"
	KeyStructure   = "structure"
	KeyContentType = "content_type"
	KeyProcessor   = "processor"
	KeyLanguage    = "language"
	KeyBilingual   = "is_bilingual"
	KeyChunkIndex  = "chunk_index"
	KeyRecordIndex = "record_index"
	KeyQuality     = "quality_score"
	KeyVariant     = "variant"
	KeyWordCount   = "word_count"
	KeyImportance  = "importance"
	KeyPriority    = "priority_score"
	KeyText        = "text"
	KeyUploadedAt  = "uploaded_at"
	KeyHasURLs     = "has_urls"
	KeyHasEmails   = "has_emails"
	KeyHasPhones   = "has_phone_numbers"
	KeyURLs        = "urls"
	KeyEmails      = "emails"
	KeyPhones      = "phone_numbers"
)

// contact-bearing chunks get a priority bump so retrieval favours them
const contactBoost = 0.1

// Enricher builds the stored metadata payload for validated chunks.
type Enricher struct{}

// NewEnricher creates a metadata enricher.
func NewEnricher() *Enricher {
	return &Enricher{}
}

// Enrich fills the chunk's metadata from its source, processing context
// and content. Processor-supplied metadata keys are preserved; enriched
// keys win on collision.
func (e *Enricher) Enrich(chunk *domain.Chunk, src domain.SourceFile, structure domain.StructureType, processor, contentType string) {
	meta := make(map[string]any, len(chunk.Metadata)+20)
	for k, v := range chunk.Metadata {
		meta[k] = v
	}

	elements := ExtractElements(chunk.Content)
	importance := src.Importance
	if importance == 0 {
		importance = 1.0
	}
	priority := importance
	if len(elements.URLs) > 0 || len(elements.Emails) > 0 || len(elements.Phones) > 0 {
		priority += contactBoost
	}

	meta[KeySourceID] = chunk.SourceID
	meta[KeyFilename] = src.Filename
	meta[KeyFileHash] = src.Hash
	meta[KeyCategory] = src.Category
	meta[KeyStructure] = string(structure)
	meta[KeyContentType] = contentType
	meta[KeyProcessor] = processor
	meta[KeyLanguage] = chunk.Language
	meta[KeyBilingual] = analyzers.IsBilingual(chunk.Language)
	meta[KeyChunkIndex] = chunk.Index
	meta[KeyQuality] = chunk.QualityScore
	meta[KeyWordCount] = len(strings.Fields(chunk.Content))
	if chunk.RecordIndex >= 0 {
		meta[KeyRecordIndex] = chunk.RecordIndex
	}
	meta[KeyImportance] = importance
	meta[KeyPriority] = priority
	meta[KeyText] = chunk.Content
	meta[KeyUploadedAt] = src.UploadedAt.UTC().Format(time.RFC3339)
	meta[KeyHasURLs] = len(elements.URLs) > 0
	meta[KeyHasEmails] = len(elements.Emails) > 0
	meta[KeyHasPhones] = len(elements.Phones) > 0
	if chunk.Variant != "" {
		meta[KeyVariant] = chunk.Variant
	}
	if len(elements.URLs) > 0 {
		meta[KeyURLs] = elements.URLs
	}
	if len(elements.Emails) > 0 {
		meta[KeyEmails] = elements.Emails
	}
	if len(elements.Phones) > 0 {
		meta[KeyPhones] = elements.Phones
	}

	chunk.Metadata = meta
}
