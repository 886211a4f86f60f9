package domain

import "time"

// JobStatus is the lifecycle state of an ingestion job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Stage names a pipeline phase and its nominal progress percentage.
type Stage struct {
	Name    string
	Percent int
}

// Pipeline stages in execution order.
var (
	StageExtracting = Stage{Name: "extracting", Percent: 10}
	StageProcessing = Stage{Name: "processing", Percent: 30}
	StageEmbedding  = Stage{Name: "embedding", Percent: 50}
	StagePreparing  = Stage{Name: "preparing", Percent: 70}
	StageUpserting  = Stage{Name: "upserting", Percent: 85}
	StageVerifying  = Stage{Name: "verifying", Percent: 95}
	StageDone       = Stage{Name: "done", Percent: 100}
)

// Job is a tracked ingestion run.
type Job struct {
	// ID is the job identifier (job_TIMESTAMP_xxxxxxxx).
	ID string

	// Filename is the ingested file's upload name.
	Filename string

	// Category is the assigned content category.
	Category string

	// SourceID is set once identity is computed.
	SourceID string

	// Status is the current lifecycle state.
	Status JobStatus

	// Stage is the name of the last reported pipeline stage.
	Stage string

	// Progress is the last reported percentage.
	Progress int

	// Error holds the failure message for failed jobs.
	Error string

	// CreatedAt is when the job was accepted.
	CreatedAt time.Time

	// UpdatedAt is when the job last changed.
	UpdatedAt time.Time
}

// Report summarises a completed ingestion.
type Report struct {
	// JobID links to the tracked job.
	JobID string

	// SourceID identifies the ingested source.
	SourceID string

	// Filename is the upload name.
	Filename string

	// RecordCount is how many records extraction produced.
	RecordCount int

	// ChunksCreated is how many chunks passed validation.
	ChunksCreated int

	// ChunksRejected is how many drafts the quality gate refused.
	ChunksRejected int

	// VectorsUpserted is how many vectors the store accepted.
	VectorsUpserted int

	// VectorsVerified is how many sampled vectors were confirmed
	// present after upsert.
	VectorsVerified int

	// Processor is the name of the processor that handled the file.
	Processor string

	// Structure is the routed structure label.
	Structure StructureType

	// Warnings collects non-fatal issues.
	Warnings []string

	// Duration is the wall-clock pipeline time.
	Duration time.Duration

	// CompletedAt is when the pipeline finished.
	CompletedAt time.Time
}
