package domain

import "time"

// DeletionStatus summarises the outcome of a deletion request.
type DeletionStatus string

const (
	DeletionSuccess DeletionStatus = "success"
	DeletionPartial DeletionStatus = "partial"
	DeletionFailed  DeletionStatus = "failed"
)

// DeletionPreview describes what a deletion would remove. Producing a
// preview never mutates the store.
type DeletionPreview struct {
	// ChunkCount is the number of chunks that would be deleted.
	ChunkCount int

	// DocumentCount is the number of distinct sources affected.
	DocumentCount int

	// SampleIDs holds up to ten example chunk IDs.
	SampleIDs []string

	// MissingIDs are requested IDs that do not exist in the store.
	MissingIDs []string

	// Warnings flag large or suspicious deletions for the operator.
	Warnings []string
}

// DeletionResult reports a committed (or dry-run) deletion.
type DeletionResult struct {
	// Status is success only when everything requested was deleted.
	Status DeletionStatus

	// Success mirrors Status == DeletionSuccess.
	Success bool

	// RequestedCount is how many chunks the request targeted.
	RequestedCount int

	// DeletedCount is how many chunks were actually removed.
	DeletedCount int

	// MissingIDs are requested IDs that did not exist.
	MissingIDs []string

	// Errors holds per-batch backend error messages.
	Errors []string

	// DryRun marks results that previewed without mutating.
	DryRun bool

	// Duration is the wall-clock time of the operation.
	Duration time.Duration
}

// KeepStrategy selects which duplicate survives cleanup.
type KeepStrategy string

const (
	// KeepLatest retains the most recently uploaded duplicate.
	KeepLatest KeepStrategy = "latest"

	// KeepFirst retains the earliest uploaded duplicate.
	KeepFirst KeepStrategy = "first"
)

// DuplicateGroup is a set of sources sharing the same content hash.
type DuplicateGroup struct {
	// Key is the shared file hash.
	Key string

	// Filename is a representative upload name.
	Filename string

	// SourceIDs are all sources in the group, newest first.
	SourceIDs []string

	// Keep is the source retained by the chosen strategy.
	Keep string

	// Remove are the sources scheduled for deletion.
	Remove []string
}

// CleanupResult reports a duplicate cleanup run.
type CleanupResult struct {
	Groups        []DuplicateGroup
	RemovedChunks int
	DryRun        bool
	Errors        []string
}
