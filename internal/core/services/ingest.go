package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/civictech-labs/corpusctl/internal/analyzers"
	"github.com/civictech-labs/corpusctl/internal/core/domain"
	"github.com/civictech-labs/corpusctl/internal/core/ids"
	"github.com/civictech-labs/corpusctl/internal/core/ports/driven"
	"github.com/civictech-labs/corpusctl/internal/core/ports/driving"
	"github.com/civictech-labs/corpusctl/internal/enrichers"
	"github.com/civictech-labs/corpusctl/internal/extractors"
	"github.com/civictech-labs/corpusctl/internal/logger"
	"github.com/civictech-labs/corpusctl/internal/processors"
	"github.com/civictech-labs/corpusctl/internal/routing"
	"github.com/civictech-labs/corpusctl/internal/validators"
)

// Ensure IngestOrchestrator implements the interface.
var _ driving.IngestOrchestrator = (*IngestOrchestrator)(nil)

// verifySampleSize is how many upserted vectors are fetched back to
// confirm the write landed.
const verifySampleSize = 5

// IngestOrchestrator runs the ingestion pipeline: extract, route,
// process, validate, enrich, embed, upsert, verify.
type IngestOrchestrator struct {
	extractorRouter *extractors.Router
	validator       *validators.Validator
	enricher        *enrichers.Enricher
	embedder        driven.EmbeddingService
	store           driven.VectorStore
	jobs            driven.JobStore
}

// NewIngestOrchestrator creates the ingestion service. The job store
// is optional; when nil, jobs are not tracked.
func NewIngestOrchestrator(
	extractorRouter *extractors.Router,
	validator *validators.Validator,
	enricher *enrichers.Enricher,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	jobs driven.JobStore,
) *IngestOrchestrator {
	return &IngestOrchestrator{
		extractorRouter: extractorRouter,
		validator:       validator,
		enricher:        enricher,
		embedder:        embedder,
		store:           store,
		jobs:            jobs,
	}
}

// Ingest processes one file end to end and returns its report.
// Re-ingesting the same file overwrites its previous vectors.
//
//nolint:gocyclo // Pipeline orchestration with sequential steps
func (o *IngestOrchestrator) Ingest(ctx context.Context, req driving.IngestRequest) (*domain.Report, error) {
	started := time.Now()

	if req.Filename == "" {
		return nil, fmt.Errorf("%w: filename is required", domain.ErrInvalidInput)
	}
	if len(req.Data) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyContent, req.Filename)
	}

	job := &domain.Job{
		ID:       ids.JobID(started),
		Filename: req.Filename,
		Category: req.Category,
		Status:   domain.JobRunning,
	}
	o.trackCreate(ctx, job)

	report, err := o.run(ctx, req, job, started)
	if err != nil {
		job.Status = domain.JobFailed
		job.Error = err.Error()
		o.trackUpdate(ctx, job)
		return nil, err
	}

	job.Status = domain.JobCompleted
	job.SourceID = report.SourceID
	o.stage(ctx, req, job, domain.StageDone, fmt.Sprintf("%d vectors stored", report.VectorsUpserted))
	o.trackUpdate(ctx, job)
	o.trackReport(ctx, report)
	return report, nil
}

// run executes the pipeline stages. Split out so Ingest can record the
// failure on the job uniformly.
//
//nolint:gocognit,gocyclo // Pipeline orchestration with sequential steps
func (o *IngestOrchestrator) run(ctx context.Context, req driving.IngestRequest, job *domain.Job, started time.Time) (*domain.Report, error) {
	report := &domain.Report{
		JobID:    job.ID,
		Filename: req.Filename,
	}

	// 1. EXTRACT
	o.stage(ctx, req, job, domain.StageExtracting, req.Filename)
	extractor, err := o.extractorRouter.Route(req.Filename, req.Data)
	if err != nil {
		return nil, fmt.Errorf("route extractor: %w", err)
	}
	extraction, err := extractor.Extract(ctx, req.Filename, req.Data)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", req.Filename, err)
	}
	if extraction.Empty() {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyContent, req.Filename)
	}
	report.RecordCount = len(extraction.Records)

	// 2. IDENTITY
	src := domain.SourceFile{
		Filename:   req.Filename,
		Hash:       ids.FileHash(req.Data),
		Category:   req.Category,
		Language:   req.Language,
		Structure:  req.Structure,
		Importance: req.Importance,
		UploadedAt: started.UTC(),
	}
	if src.Language == "" {
		src.Language = analyzers.DetectLanguage(sampleText(extraction))
	}
	sourceID := ids.SourceID(src.Filename, src.Hash, src.Category)
	job.SourceID = sourceID
	report.SourceID = sourceID

	// 3. ROUTE AND PROCESS
	o.stage(ctx, req, job, domain.StageProcessing, "")
	engine := newEngine(processors.ChunkTokens(req.ChunkSize))
	decision := engine.Route(src, extraction)
	report.Processor = decision.Processor.Name()
	report.Structure = decision.Structure
	logger.Debug("Routed %s to %s (%s)", req.Filename, decision.Processor.Name(), decision.Reason)

	drafts, err := decision.Processor.Process(ctx, src, extraction)
	if err != nil {
		return nil, fmt.Errorf("process %s: %w", req.Filename, err)
	}
	if len(drafts) == 0 {
		return nil, fmt.Errorf("%w: %s produced no chunks", domain.ErrEmptyContent, req.Filename)
	}

	// 4. VALIDATE AND ENRICH
	// Rejection by the quality gate is expected behaviour, not an
	// error: rejected drafts are counted and reported.
	chunks := make([]domain.Chunk, 0, len(drafts))
	for _, draft := range drafts {
		verdict := o.validator.Validate(draft.Content)
		if !verdict.Passed {
			report.ChunksRejected++
			logger.Debug("Rejected draft (%s): %s", strings.Join(verdict.Reasons, ","), snippet(draft.Content))
			continue
		}

		chunk := domain.Chunk{
			SourceID:     sourceID,
			Content:      draft.Content,
			Index:        len(chunks),
			Language:     draft.Language,
			Variant:      draft.Variant,
			RecordIndex:  draft.RecordIndex,
			QualityScore: verdict.Score,
			Metadata:     draft.Metadata,
		}
		chunk.ID = ids.ChunkID(sourceID, chunk.Index, chunk.Content, chunk.Language, chunk.Variant)
		o.enricher.Enrich(&chunk, src, decision.Structure, decision.Processor.Name(), decision.Processor.ContentType())
		chunks = append(chunks, chunk)
	}
	report.ChunksCreated = len(chunks)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: all %d chunks rejected by quality gate", domain.ErrEmptyContent, report.ChunksRejected)
	}
	if report.ChunksRejected > 0 {
		report.Warnings = append(report.Warnings, fmt.Sprintf("%d drafts rejected by quality gate", report.ChunksRejected))
	}

	// 5. EMBED
	o.stage(ctx, req, job, domain.StageEmbedding, fmt.Sprintf("%d chunks", len(chunks)))
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}
	embeddings, err := o.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}
	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("embed: got %d embeddings for %d chunks", len(embeddings), len(chunks))
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}

	// 6. PREPARE
	o.stage(ctx, req, job, domain.StagePreparing, "")
	records := make([]domain.VectorRecord, len(chunks))
	for i, chunk := range chunks {
		records[i] = domain.VectorRecord{
			ID:       chunk.ID,
			Values:   chunk.Embedding,
			Metadata: chunk.Metadata,
		}
	}

	// Re-ingest overwrites: clear any previous vectors for this source
	// so stale chunks from a shorter earlier upload cannot linger.
	removed, err := o.store.DeleteByFilter(ctx, req.Namespace, driven.MetadataFilter{enrichers.KeySourceID: sourceID})
	if err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("clearing previous vectors: %v", err))
	} else if removed > 0 {
		logger.Debug("Replaced %d existing vectors for %s", removed, sourceID)
	}

	// 7. UPSERT
	o.stage(ctx, req, job, domain.StageUpserting, fmt.Sprintf("%d vectors", len(records)))
	upsert, err := o.store.Upsert(ctx, req.Namespace, records)
	if err != nil {
		return nil, fmt.Errorf("upsert vectors: %w", err)
	}
	report.VectorsUpserted = upsert.UpsertedCount
	if upsert.FailedBatches > 0 {
		report.Warnings = append(report.Warnings, upsert.Errors...)
	}

	// 8. VERIFY
	o.stage(ctx, req, job, domain.StageVerifying, "")
	sample := records
	if len(sample) > verifySampleSize {
		sample = sample[:verifySampleSize]
	}
	sampleIDs := make([]string, len(sample))
	for i, record := range sample {
		sampleIDs[i] = record.ID
	}
	found, err := o.store.Fetch(ctx, req.Namespace, sampleIDs)
	if err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("verification fetch failed: %v", err))
	} else {
		report.VectorsVerified = len(found)
		if len(found) < len(sampleIDs) {
			report.Warnings = append(report.Warnings, fmt.Sprintf("verified %d of %d sampled vectors", len(found), len(sampleIDs)))
		}
	}

	report.Duration = time.Since(started)
	report.CompletedAt = time.Now().UTC()
	return report, nil
}

// stage reports progress to the caller and the job store.
func (o *IngestOrchestrator) stage(ctx context.Context, req driving.IngestRequest, job *domain.Job, stage domain.Stage, detail string) {
	job.Stage = stage.Name
	job.Progress = stage.Percent
	o.trackUpdate(ctx, job)
	if req.Progress != nil {
		req.Progress(stage, detail)
	}
}

func (o *IngestOrchestrator) trackCreate(ctx context.Context, job *domain.Job) {
	if o.jobs == nil {
		return
	}
	if err := o.jobs.CreateJob(ctx, job); err != nil {
		logger.Warn("Failed to record job %s: %v", job.ID, err)
	}
}

func (o *IngestOrchestrator) trackUpdate(ctx context.Context, job *domain.Job) {
	if o.jobs == nil {
		return
	}
	if err := o.jobs.UpdateJob(ctx, job); err != nil {
		logger.Debug("Failed to update job %s: %v", job.ID, err)
	}
}

func (o *IngestOrchestrator) trackReport(ctx context.Context, report *domain.Report) {
	if o.jobs == nil {
		return
	}
	if err := o.jobs.SaveReport(ctx, report); err != nil {
		logger.Warn("Failed to save report for %s: %v", report.JobID, err)
	}
}

// newEngine builds a routing engine whose text processors honour the
// requested chunk budget.
func newEngine(budget int) *routing.Engine {
	opts := []processors.SplitterOption{processors.WithBudget(budget)}
	return routing.NewEngine(
		processors.NewFAQTable(),
		processors.NewDirectory(),
		processors.NewTabular(),
		processors.NewWebContent(opts...),
		processors.NewUniversal(opts...),
	)
}

// sampleText gathers a representative slice of the extraction for
// language detection.
func sampleText(ex *domain.Extraction) string {
	if ex.Text != "" {
		return ex.Text
	}

	var b strings.Builder
	for i, record := range ex.Records {
		if i >= 10 || b.Len() > 2000 {
			break
		}
		for _, v := range record.Fields {
			if s, ok := v.(string); ok {
				b.WriteString(s)
				b.WriteString(" ")
			}
		}
	}
	return b.String()
}

// snippet truncates text for log lines.
func snippet(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	runes := []rune(text)
	if len(runes) > 60 {
		return string(runes[:60]) + "..."
	}
	return text
}
