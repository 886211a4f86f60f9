package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civictech-labs/corpusctl/internal/adapters/driven/vectorstore/memory"
	"github.com/civictech-labs/corpusctl/internal/core/domain"
	"github.com/civictech-labs/corpusctl/internal/core/ports/driven"
	"github.com/civictech-labs/corpusctl/internal/core/ports/driving"
	"github.com/civictech-labs/corpusctl/internal/enrichers"
	"github.com/civictech-labs/corpusctl/internal/extractors"
	"github.com/civictech-labs/corpusctl/internal/validators"
)

// officesJSON renders records long enough to clear the quality gate.
const officesJSON = `[
  {"topic": "Office hours", "details": "The citizen service center operates Monday through Friday from nine in the morning until five in the evening and remains closed on public holidays. Citizens can visit the help desk on the ground floor for passport verification, property tax payments and birth certificate applications without a prior appointment."},
  {"topic": "Grievance portal", "details": "Complaints about road maintenance, street lighting and waste collection can be filed through the municipal grievance portal. Each complaint receives a tracking number within one working day and an officer from the concerned ward is assigned to resolve the matter within fifteen days."},
  {"topic": "Water supply", "details": "New water connections require a copy of the property registration, a recent tax receipt and an application form available at the ward office. The engineering department inspects the site within a week of application and connections are sanctioned at the monthly committee meeting."}
]`

func newTestOrchestrator(store *memory.Store, jobs *memJobStore, embedder *stubEmbedder) *IngestOrchestrator {
	// A nil *memJobStore must become a nil interface, not a typed nil,
	// so the orchestrator's optional-jobstore check applies.
	var jobStore driven.JobStore
	if jobs != nil {
		jobStore = jobs
	}
	return NewIngestOrchestrator(
		extractors.DefaultRouter(),
		validators.NewValidator(),
		enrichers.NewEnricher(),
		embedder,
		store,
		jobStore,
	)
}

// TestIngestOrchestrator_JSONFile tests the full pipeline over a JSON
// upload: extraction, routing, chunking, embedding, upsert and
// verification.
func TestIngestOrchestrator_JSONFile(t *testing.T) {
	store := memory.NewStore()
	jobs := newMemJobStore()
	orchestrator := newTestOrchestrator(store, jobs, newStubEmbedder())

	var stages []string
	report, err := orchestrator.Ingest(context.Background(), driving.IngestRequest{
		Filename: "services.json",
		Data:     []byte(officesJSON),
		Category: "general",
		Progress: func(stage domain.Stage, _ string) {
			stages = append(stages, stage.Name)
		},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(report.SourceID, "src_"), "source ID %q", report.SourceID)
	assert.Equal(t, 3, report.RecordCount)
	assert.Positive(t, report.ChunksCreated)
	assert.Equal(t, report.ChunksCreated, report.VectorsUpserted)
	assert.Equal(t, min(report.ChunksCreated, verifySampleSize), report.VectorsVerified)
	assert.NotEmpty(t, report.Processor)
	assert.Positive(t, report.Duration)

	// Stage progression runs in pipeline order.
	assert.Equal(t, "extracting", stages[0])
	assert.Equal(t, "done", stages[len(stages)-1])

	// Vectors landed with enriched metadata.
	count, err := store.CountByMetadata(context.Background(), "", map[string]any{enrichers.KeySourceID: report.SourceID})
	require.NoError(t, err)
	assert.Equal(t, report.ChunksCreated, count)

	// Every stored chunk carries its quality gate score and the index
	// of the record it came from.
	stored, err := store.QueryByMetadata(context.Background(), "", map[string]any{enrichers.KeySourceID: report.SourceID}, 0, 0)
	require.NoError(t, err)
	for _, record := range stored {
		score, ok := record.Metadata[enrichers.KeyQuality].(float64)
		require.True(t, ok, "chunk %s has no quality score", record.ID)
		assert.GreaterOrEqual(t, score, 0.5, "passing chunks score at or above the gate")
		assert.LessOrEqual(t, score, 1.0)
		assert.Contains(t, record.Metadata, enrichers.KeyRecordIndex)
	}

	// Job tracked to completion with a saved report.
	job, err := jobs.GetJob(context.Background(), report.JobID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobCompleted, job.Status)
	assert.Equal(t, 100, job.Progress)

	saved, err := jobs.GetReport(context.Background(), report.JobID)
	require.NoError(t, err)
	assert.Equal(t, report.SourceID, saved.SourceID)
}

// TestIngestOrchestrator_EmptyInput tests the empty-content fail-fast
// paths.
func TestIngestOrchestrator_EmptyInput(t *testing.T) {
	orchestrator := newTestOrchestrator(memory.NewStore(), nil, newStubEmbedder())

	_, err := orchestrator.Ingest(context.Background(), driving.IngestRequest{
		Filename: "empty.json",
		Data:     nil,
	})
	assert.ErrorIs(t, err, domain.ErrEmptyContent)

	_, err = orchestrator.Ingest(context.Background(), driving.IngestRequest{
		Filename: "empty.json",
		Data:     []byte(`[]`),
	})
	assert.ErrorIs(t, err, domain.ErrEmptyContent)
}

// TestIngestOrchestrator_Reingest tests that ingesting the same file
// twice does not duplicate vectors.
func TestIngestOrchestrator_Reingest(t *testing.T) {
	store := memory.NewStore()
	orchestrator := newTestOrchestrator(store, nil, newStubEmbedder())
	ctx := context.Background()

	req := driving.IngestRequest{
		Filename: "services.json",
		Data:     []byte(officesJSON),
		Category: "general",
	}
	first, err := orchestrator.Ingest(ctx, req)
	require.NoError(t, err)

	second, err := orchestrator.Ingest(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first.SourceID, second.SourceID)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.VectorsUpserted, stats.VectorCount, "re-ingest must overwrite, not accumulate")
}

// TestIngestOrchestrator_EmbedderFailure tests that embedding outages
// fail the job with the sentinel error.
func TestIngestOrchestrator_EmbedderFailure(t *testing.T) {
	jobs := newMemJobStore()
	embedder := newStubEmbedder()
	embedder.failWith = errors.New("connection refused")
	orchestrator := newTestOrchestrator(memory.NewStore(), jobs, embedder)

	_, err := orchestrator.Ingest(context.Background(), driving.IngestRequest{
		Filename: "services.json",
		Data:     []byte(officesJSON),
	})
	require.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	// The tracked job records the failure.
	listed, err := jobs.ListJobs(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, domain.JobFailed, listed[0].Status)
	assert.Contains(t, listed[0].Error, "connection refused")
}

// TestIngestOrchestrator_UnsupportedType tests extension routing
// failures.
func TestIngestOrchestrator_UnsupportedType(t *testing.T) {
	orchestrator := newTestOrchestrator(memory.NewStore(), nil, newStubEmbedder())

	_, err := orchestrator.Ingest(context.Background(), driving.IngestRequest{
		Filename: "archive.tar.gz",
		Data:     []byte{0x1f, 0x8b, 0x08, 0x00},
	})
	assert.Error(t, err)
}

// TestIngestOrchestrator_Namespace tests that vectors land in the
// requested namespace only.
func TestIngestOrchestrator_Namespace(t *testing.T) {
	store := memory.NewStore()
	orchestrator := newTestOrchestrator(store, nil, newStubEmbedder())
	ctx := context.Background()

	report, err := orchestrator.Ingest(ctx, driving.IngestRequest{
		Filename:  "services.json",
		Data:      []byte(officesJSON),
		Namespace: "staging",
	})
	require.NoError(t, err)

	inNamespace, err := store.CountByMetadata(ctx, "staging", nil)
	require.NoError(t, err)
	assert.Equal(t, report.VectorsUpserted, inNamespace)

	inDefault, err := store.CountByMetadata(ctx, "", nil)
	require.NoError(t, err)
	assert.Zero(t, inDefault)
}
