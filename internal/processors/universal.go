package processors

import (
	"context"

	"github.com/civictech-labs/corpusctl/internal/core/domain"
)

// Universal is the fallback processor. It accepts anything: records go
// through the plain tabular rendering, free text goes through the
// splitter. Routing guarantees every file lands somewhere by ending
// its chain here.
type Universal struct {
	splitter *Splitter
}

// NewUniversal creates the universal fallback processor.
func NewUniversal(opts ...SplitterOption) *Universal {
	return &Universal{splitter: NewSplitter(opts...)}
}

func (p *Universal) Name() string        { return "universal" }
func (p *Universal) ContentType() string { return "general" }

// CanProcess always accepts.
func (p *Universal) CanProcess(_ domain.SourceFile, _ *domain.Extraction) bool {
	return true
}

// Process renders whatever shape the extraction has.
func (p *Universal) Process(ctx context.Context, src domain.SourceFile, ex *domain.Extraction) ([]domain.ChunkDraft, error) {
	if ex.Empty() {
		return nil, domain.ErrEmptyContent
	}

	var drafts []domain.ChunkDraft
	for _, rec := range ex.Records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text := renderRecord(rec, ex.Columns)
		if text == "" {
			continue
		}
		drafts = append(drafts, domain.ChunkDraft{
			Content:     text,
			Language:    language(src, text),
			RecordIndex: rec.Index,
		})
	}
	for _, piece := range p.splitter.Split(ex.Text) {
		drafts = append(drafts, domain.ChunkDraft{
			Content:     piece,
			Language:    language(src, piece),
			RecordIndex: -1,
		})
	}
	if len(drafts) == 0 {
		return nil, domain.ErrEmptyContent
	}
	return drafts, nil
}
