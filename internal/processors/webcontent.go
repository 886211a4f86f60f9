package processors

import (
	"context"

	"github.com/civictech-labs/corpusctl/internal/core/domain"
)

// field name candidates for scraped page records
var (
	pageURLFields     = []string{"url", "source_url", "link", "page_url"}
	pageTitleFields   = []string{"title", "page_title", "heading"}
	pageContentFields = []string{"content", "text", "body", "page_content", "article"}
)

// WebContent renders scraped pages and articles. Page text is split on
// paragraph boundaries within the token budget, and the page URL and
// title travel in chunk metadata.
type WebContent struct {
	splitter *Splitter
}

// NewWebContent creates the web content processor.
func NewWebContent(opts ...SplitterOption) *WebContent {
	return &WebContent{splitter: NewSplitter(opts...)}
}

func (p *WebContent) Name() string        { return "web_content" }
func (p *WebContent) ContentType() string { return "document" }

// CanProcess accepts extractions with page-shaped records or plain
// article text.
func (p *WebContent) CanProcess(_ domain.SourceFile, ex *domain.Extraction) bool {
	if ex == nil {
		return false
	}
	if len(ex.Records) == 0 {
		return ex.Text != ""
	}
	matches := 0
	probe := ex.Records
	if len(probe) > 10 {
		probe = probe[:10]
	}
	for _, rec := range probe {
		if fieldByNames(rec, pageContentFields...) != "" {
			matches++
		}
	}
	return matches*2 > len(probe)
}

// Process splits each page's content, prefixing the first piece with
// the page title.
func (p *WebContent) Process(ctx context.Context, src domain.SourceFile, ex *domain.Extraction) ([]domain.ChunkDraft, error) {
	if ex.Empty() {
		return nil, domain.ErrEmptyContent
	}

	var drafts []domain.ChunkDraft
	if len(ex.Records) == 0 {
		for _, piece := range p.splitter.Split(ex.Text) {
			drafts = append(drafts, domain.ChunkDraft{
				Content:     piece,
				Language:    language(src, piece),
				RecordIndex: -1,
			})
		}
	}
	for _, rec := range ex.Records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content := fieldByNames(rec, pageContentFields...)
		if content == "" {
			continue
		}
		title := fieldByNames(rec, pageTitleFields...)
		url := fieldByNames(rec, pageURLFields...)

		for i, piece := range p.splitter.Split(content) {
			if i == 0 && title != "" {
				piece = title + "\n\n" + piece
			}
			meta := map[string]any{}
			if url != "" {
				meta["page_url"] = url
			}
			if title != "" {
				meta["page_title"] = title
			}
			drafts = append(drafts, domain.ChunkDraft{
				Content:     piece,
				Language:    language(src, piece),
				RecordIndex: rec.Index,
				Metadata:    meta,
			})
		}
	}
	if len(drafts) == 0 {
		return nil, domain.ErrEmptyContent
	}
	return drafts, nil
}
