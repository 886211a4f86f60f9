package driven

import (
	"context"

	"github.com/civictech-labs/corpusctl/internal/core/domain"
)

// JobStore persists ingestion jobs and their reports.
type JobStore interface {
	// CreateJob records a newly accepted job.
	CreateJob(ctx context.Context, job *domain.Job) error

	// UpdateJob overwrites the stored job state.
	UpdateJob(ctx context.Context, job *domain.Job) error

	// GetJob retrieves a job by ID. Returns domain.ErrJobNotFound
	// for unknown IDs.
	GetJob(ctx context.Context, id string) (*domain.Job, error)

	// ListJobs returns jobs newest first, up to limit.
	ListJobs(ctx context.Context, limit int) ([]*domain.Job, error)

	// SaveReport persists a completed ingestion report.
	SaveReport(ctx context.Context, report *domain.Report) error

	// GetReport retrieves the report for a job. Returns
	// domain.ErrNotFound when the job has no report.
	GetReport(ctx context.Context, jobID string) (*domain.Report, error)

	// Close releases resources.
	Close() error
}
