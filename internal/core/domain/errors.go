package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyContent indicates a file or record with no usable text.
	// Ingestion fails fast on empty content rather than emitting
	// zero chunks silently.
	ErrEmptyContent = errors.New("empty content")

	// ErrUnsupportedType indicates a file type no extractor handles.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrBackendUnavailable indicates the vector store cannot be
	// reached at all. Distinct from partial failures, which are
	// reported in result structs.
	ErrBackendUnavailable = errors.New("vector backend unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured or not reachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrNoProcessor indicates routing found no processor for the
	// content. The universal fallback makes this unreachable in
	// practice; it guards registry misconfiguration.
	ErrNoProcessor = errors.New("no processor for content")

	// ErrJobNotFound indicates an unknown job identifier.
	ErrJobNotFound = errors.New("job not found")
)
