package processors

import (
	"context"

	"github.com/civictech-labs/corpusctl/internal/analyzers"
	"github.com/civictech-labs/corpusctl/internal/core/domain"
)

// rows per grouped chunk when individual rows are too small to stand
// alone
const tabularGroupSize = 5

// Tabular renders row/column data into per-row chunks. Small rows are
// grouped so chunks stay above the quality floor.
type Tabular struct{}

// NewTabular creates the tabular processor.
func NewTabular() *Tabular {
	return &Tabular{}
}

func (p *Tabular) Name() string        { return "tabular" }
func (p *Tabular) ContentType() string { return "table" }

// CanProcess accepts any extraction with records.
func (p *Tabular) CanProcess(_ domain.SourceFile, ex *domain.Extraction) bool {
	return ex != nil && len(ex.Records) > 0
}

// Process renders each record as labelled field lines. Rows whose text
// is below the minimum split size are grouped with their neighbours,
// preserving source order either way.
func (p *Tabular) Process(ctx context.Context, src domain.SourceFile, ex *domain.Extraction) ([]domain.ChunkDraft, error) {
	if ex.Empty() {
		return nil, domain.ErrEmptyContent
	}

	rendered := make([]string, 0, len(ex.Records))
	for _, rec := range ex.Records {
		rendered = append(rendered, renderRecord(rec, ex.Columns))
	}

	group := groupSize(rendered)
	var drafts []domain.ChunkDraft
	for start := 0; start < len(rendered); start += group {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+group, len(rendered))
		text := joinNonEmpty(rendered[start:end])
		if text == "" {
			continue
		}
		drafts = append(drafts, domain.ChunkDraft{
			Content:     text,
			Language:    language(src, text),
			RecordIndex: ex.Records[start].Index,
			Metadata: map[string]any{
				"row_start": ex.Records[start].Index,
				"row_end":   ex.Records[end-1].Index,
			},
		})
	}
	if len(drafts) == 0 {
		return nil, domain.ErrEmptyContent
	}
	return drafts, nil
}

// groupSize decides how many rows share a chunk: one when rows are
// substantial, a small group when they are short.
func groupSize(rendered []string) int {
	if len(rendered) == 0 {
		return 1
	}
	total := 0
	for _, r := range rendered {
		total += approxTokens(r)
	}
	if total/len(rendered) >= MinSplitTokens {
		return 1
	}
	return tabularGroupSize
}

// language prefers the declared source language over detection.
func language(src domain.SourceFile, text string) string {
	if src.Language != "" {
		return src.Language
	}
	return analyzers.DetectLanguage(text)
}

func joinNonEmpty(parts []string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return ""
	}
	result := out[0]
	for _, p := range out[1:] {
		result += "\n\n" + p
	}
	return result
}
