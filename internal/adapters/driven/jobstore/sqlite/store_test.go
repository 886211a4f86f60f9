package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civictech-labs/corpusctl/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_CreateAndGetJob(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	job := &domain.Job{
		ID:       "job_20260829120000_ab12cd34",
		Filename: "officials.xlsx",
		Category: "government_officials",
		Status:   domain.JobPending,
	}
	require.NoError(t, store.CreateJob(ctx, job))
	assert.False(t, job.CreatedAt.IsZero())

	got, err := store.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, "officials.xlsx", got.Filename)
	assert.Equal(t, domain.JobPending, got.Status)
	assert.Empty(t, got.Error)
}

func TestStore_GetJob_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetJob(context.Background(), "job_unknown")
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestStore_UpdateJob(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	job := &domain.Job{
		ID:       "job_20260829120000_ab12cd34",
		Filename: "faq.json",
		Status:   domain.JobPending,
	}
	require.NoError(t, store.CreateJob(ctx, job))

	job.Status = domain.JobRunning
	job.Stage = domain.StageEmbedding.Name
	job.Progress = domain.StageEmbedding.Percent
	job.SourceID = "src_1234567890abcdef"
	require.NoError(t, store.UpdateJob(ctx, job))

	got, err := store.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobRunning, got.Status)
	assert.Equal(t, "embedding", got.Stage)
	assert.Equal(t, 50, got.Progress)
	assert.Equal(t, "src_1234567890abcdef", got.SourceID)
}

func TestStore_UpdateJob_NotFound(t *testing.T) {
	store := newTestStore(t)

	err := store.UpdateJob(context.Background(), &domain.Job{ID: "job_unknown", Status: domain.JobRunning})
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestStore_ListJobs_NewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"job_a", "job_b", "job_c"} {
		job := &domain.Job{
			ID:        id,
			Filename:  "file.json",
			Status:    domain.JobCompleted,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, store.CreateJob(ctx, job))
	}

	jobs, err := store.ListJobs(ctx, 2)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "job_c", jobs[0].ID)
	assert.Equal(t, "job_b", jobs[1].ID)
}

func TestStore_SaveAndGetReport(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	job := &domain.Job{ID: "job_x", Filename: "faq.json", Status: domain.JobCompleted}
	require.NoError(t, store.CreateJob(ctx, job))

	report := &domain.Report{
		JobID:           "job_x",
		SourceID:        "src_1234567890abcdef",
		Filename:        "faq.json",
		RecordCount:     12,
		ChunksCreated:   30,
		ChunksRejected:  2,
		VectorsUpserted: 30,
		VectorsVerified: 5,
		Processor:       "faq_table",
		Structure:       domain.StructureFAQTable,
		Warnings:        []string{"2 drafts rejected by quality gate"},
		Duration:        3200 * time.Millisecond,
	}
	require.NoError(t, store.SaveReport(ctx, report))

	got, err := store.GetReport(ctx, "job_x")
	require.NoError(t, err)
	assert.Equal(t, report.SourceID, got.SourceID)
	assert.Equal(t, 30, got.ChunksCreated)
	assert.Equal(t, domain.StructureFAQTable, got.Structure)
	assert.Equal(t, []string{"2 drafts rejected by quality gate"}, got.Warnings)
	assert.Equal(t, 3200*time.Millisecond, got.Duration)
}

func TestStore_GetReport_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetReport(context.Background(), "job_unknown")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store1, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store1.CreateJob(ctx, &domain.Job{ID: "job_x", Filename: "f.csv", Status: domain.JobCompleted}))
	require.NoError(t, store1.Close())

	store2, err := NewStore(dir)
	require.NoError(t, err)
	defer store2.Close()

	got, err := store2.GetJob(ctx, "job_x")
	require.NoError(t, err)
	assert.Equal(t, "f.csv", got.Filename)
}
