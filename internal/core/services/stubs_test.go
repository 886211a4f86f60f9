package services

import (
	"context"
	"sync"

	"github.com/civictech-labs/corpusctl/internal/core/domain"
	"github.com/civictech-labs/corpusctl/internal/core/ports/driven"
)

// stubEmbedder returns fixed vectors: texts listed in vectors get their
// assigned embedding, everything else gets the fallback. Lets tests
// arrange exact similarity scores.
type stubEmbedder struct {
	vectors  map[string][]float32
	fallback []float32
	failWith error
}

var _ driven.EmbeddingService = (*stubEmbedder)(nil)

func newStubEmbedder() *stubEmbedder {
	return &stubEmbedder{
		vectors:  make(map[string][]float32),
		fallback: []float32{1, 0, 0, 0},
	}
}

func (e *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.failWith != nil {
		return nil, e.failWith
	}
	if vec, ok := e.vectors[text]; ok {
		return vec, nil
	}
	return e.fallback, nil
}

func (e *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (e *stubEmbedder) Dimensions() int              { return 4 }
func (e *stubEmbedder) ModelName() string            { return "stub" }
func (e *stubEmbedder) Ping(_ context.Context) error { return nil }
func (e *stubEmbedder) Close() error                 { return nil }

// memJobStore keeps jobs in memory for orchestrator tests.
type memJobStore struct {
	mu      sync.Mutex
	jobs    map[string]domain.Job
	reports map[string]domain.Report
}

var _ driven.JobStore = (*memJobStore)(nil)

func newMemJobStore() *memJobStore {
	return &memJobStore{
		jobs:    make(map[string]domain.Job),
		reports: make(map[string]domain.Report),
	}
}

func (s *memJobStore) CreateJob(_ context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = *job
	return nil
}

func (s *memJobStore) UpdateJob(_ context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; !ok {
		return domain.ErrJobNotFound
	}
	s.jobs[job.ID] = *job
	return nil
}

func (s *memJobStore) GetJob(_ context.Context, id string) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return &job, nil
}

func (s *memJobStore) ListJobs(_ context.Context, limit int) ([]*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Job, 0, len(s.jobs))
	for id := range s.jobs {
		job := s.jobs[id]
		out = append(out, &job)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *memJobStore) SaveReport(_ context.Context, report *domain.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.JobID] = *report
	return nil
}

func (s *memJobStore) GetReport(_ context.Context, jobID string) (*domain.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	report, ok := s.reports[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &report, nil
}

func (s *memJobStore) Close() error { return nil }
