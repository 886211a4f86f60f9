package domain

// ChunkDraft is a chunk as produced by a processor, before identity
// assignment, quality validation and metadata enrichment.
type ChunkDraft struct {
	// Content is the chunk text.
	Content string

	// Language is the language code for this draft ("en", "mr",
	// "bilingual", "other").
	Language string

	// Variant labels search-optimised restatements of the same record
	// (for example "question_style"). Empty for the primary rendering.
	Variant string

	// RecordIndex links back to the source record, -1 for text inputs.
	RecordIndex int

	// Metadata carries processor-specific keys merged into the final
	// chunk metadata.
	Metadata map[string]any
}

// Chunk is a validated, enriched unit ready for embedding and upsert.
type Chunk struct {
	// ID is the deterministic chunk identifier.
	ID string

	// SourceID links to the source file that produced this chunk.
	SourceID string

	// Content is the chunk text.
	Content string

	// Index is the ordinal position within the source output.
	Index int

	// Language is the language code.
	Language string

	// Variant labels search-optimised restatements, empty for primary.
	Variant string

	// RecordIndex links back to the source record, -1 for text inputs.
	RecordIndex int

	// QualityScore is the quality gate's averaged score in [0,1].
	QualityScore float64

	// Embedding is the vector representation, nil until embedded.
	Embedding []float32

	// Metadata is the enriched key set persisted to the vector store.
	Metadata map[string]any
}

// VectorRecord is the wire-level unit a vector store persists.
type VectorRecord struct {
	// ID is the chunk identifier, converted if the backend requires a
	// different ID shape.
	ID string

	// Values is the embedding vector.
	Values []float32

	// Metadata is the payload stored alongside the vector.
	Metadata map[string]any
}

// VectorMatch is a similarity search hit.
type VectorMatch struct {
	// ID is the stored vector identifier.
	ID string

	// Score is the similarity in [0, 1], higher is closer.
	Score float64

	// Metadata is the stored payload.
	Metadata map[string]any
}

// StoreStats summarises a vector store collection.
type StoreStats struct {
	// VectorCount is the total number of stored vectors.
	VectorCount int

	// Dimensions is the vector dimensionality, 0 when unknown.
	Dimensions int

	// Namespaces maps namespace name to vector count where the backend
	// reports it.
	Namespaces map[string]int
}
