package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/civictech-labs/corpusctl/internal/adapters/driven/vectorstore/memory"
	"github.com/civictech-labs/corpusctl/internal/core/domain"
	"github.com/civictech-labs/corpusctl/internal/core/ports/driven"
	"github.com/civictech-labs/corpusctl/internal/core/services"
	"github.com/civictech-labs/corpusctl/internal/enrichers"
	"github.com/civictech-labs/corpusctl/internal/extractors"
	"github.com/civictech-labs/corpusctl/internal/validators"
)

// fixedEmbedder returns the same unit vector for every text so command
// tests never need a live embedding backend.
type fixedEmbedder struct{}

func (fixedEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return []float32{1, 0, 0, 0}, nil
}

func (e fixedEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1, 0, 0, 0}
	}
	return vectors, nil
}

func (fixedEmbedder) Dimensions() int              { return 4 }
func (fixedEmbedder) ModelName() string            { return "fixed" }
func (fixedEmbedder) Ping(_ context.Context) error { return nil }
func (fixedEmbedder) Close() error                 { return nil }

// fakeJobStore is an in-memory driven.JobStore for command tests.
type fakeJobStore struct {
	jobs    map[string]*domain.Job
	reports map[string]*domain.Report
	order   []string
}

var _ driven.JobStore = (*fakeJobStore)(nil)

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{
		jobs:    make(map[string]*domain.Job),
		reports: make(map[string]*domain.Report),
	}
}

func (s *fakeJobStore) CreateJob(_ context.Context, job *domain.Job) error {
	copied := *job
	s.jobs[job.ID] = &copied
	s.order = append([]string{job.ID}, s.order...)
	return nil
}

func (s *fakeJobStore) UpdateJob(_ context.Context, job *domain.Job) error {
	if _, ok := s.jobs[job.ID]; !ok {
		return domain.ErrJobNotFound
	}
	copied := *job
	s.jobs[job.ID] = &copied
	return nil
}

func (s *fakeJobStore) GetJob(_ context.Context, id string) (*domain.Job, error) {
	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	copied := *job
	return &copied, nil
}

func (s *fakeJobStore) ListJobs(_ context.Context, limit int) ([]*domain.Job, error) {
	jobs := make([]*domain.Job, 0, len(s.order))
	for _, id := range s.order {
		if limit > 0 && len(jobs) >= limit {
			break
		}
		copied := *s.jobs[id]
		jobs = append(jobs, &copied)
	}
	return jobs, nil
}

func (s *fakeJobStore) SaveReport(_ context.Context, report *domain.Report) error {
	copied := *report
	s.reports[report.JobID] = &copied
	return nil
}

func (s *fakeJobStore) GetReport(_ context.Context, jobID string) (*domain.Report, error) {
	report, ok := s.reports[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *report
	return &copied, nil
}

func (s *fakeJobStore) Close() error { return nil }

// setupTestServices wires all commands to in-memory backends and seeds
// a few documents. The returned cleanup restores the previous wiring.
func setupTestServices() func() {
	oldStore := vectorStore
	oldEmbedder := embedder
	oldJobs := jobStore
	oldIngest := ingestService
	oldLifecycle := lifecycleService
	oldReady := servicesReady

	store := memory.NewStore()
	seedTestDocuments(store)

	emb := fixedEmbedder{}
	jobs := newFakeJobStore()

	vectorStore = store
	embedder = emb
	jobStore = jobs
	ingestService = services.NewIngestOrchestrator(
		extractors.DefaultRouter(),
		validators.NewValidator(),
		enrichers.NewEnricher(),
		emb,
		store,
		jobs,
	)
	lifecycleService = services.NewLifecycleManager(store, emb)
	servicesReady = true

	return func() {
		vectorStore = oldStore
		embedder = oldEmbedder
		jobStore = oldJobs
		ingestService = oldIngest
		lifecycleService = oldLifecycle
		servicesReady = oldReady
	}
}

// nilEmbedderLifecycle rebuilds the lifecycle service without an
// embedding provider so content search fails.
func nilEmbedderLifecycle() *services.LifecycleManager {
	store := memory.NewStore()
	seedTestDocuments(store)
	return services.NewLifecycleManager(store, nil)
}

// seedTestDocuments stores two documents: three chunks of wards.json
// and two of budget.csv.
func seedTestDocuments(store *memory.Store) {
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	sources := []struct {
		sourceID string
		filename string
		hash     string
		category string
		chunks   int
		uploaded time.Time
	}{
		{"src_wards", "wards.json", "hash-wards", "government_officials", 3, base.Add(time.Hour)},
		{"src_budget", "budget.csv", "hash-budget", "finance", 2, base},
	}

	for _, src := range sources {
		records := make([]domain.VectorRecord, src.chunks)
		for i := range records {
			records[i] = domain.VectorRecord{
				ID:     fmt.Sprintf("%s_chunk%04d", src.sourceID, i),
				Values: []float32{1, 0, 0, 0},
				Metadata: map[string]any{
					enrichers.KeySourceID:   src.sourceID,
					enrichers.KeyFilename:   src.filename,
					enrichers.KeyFileHash:   src.hash,
					enrichers.KeyCategory:   src.category,
					enrichers.KeyLanguage:   "en",
					enrichers.KeyChunkIndex: i,
					enrichers.KeyText:       fmt.Sprintf("chunk %d of %s", i, src.filename),
					enrichers.KeyUploadedAt: src.uploaded.Format(time.RFC3339),
				},
			}
		}
		//nolint:errcheck // In-memory seed cannot fail
		store.Upsert(context.Background(), "", records)
	}
}
