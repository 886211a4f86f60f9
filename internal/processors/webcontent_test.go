package processors

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civictech-labs/corpusctl/internal/core/domain"
)

// TestWebContent_PageRecords tests scraped page records
func TestWebContent_PageRecords(t *testing.T) {
	p := NewWebContent()
	ex := &domain.Extraction{
		Structure: domain.StructureWebScrapingOutput,
		Records: []domain.Record{
			{Index: 0, Fields: map[string]any{
				"url":     "https://example.gov/water",
				"title":   "Water supply services",
				"content": strings.Repeat("The water department maintains supply lines across all wards of the city. ", 8),
			}},
		},
	}

	drafts, err := p.Process(context.Background(), domain.SourceFile{}, ex)
	require.NoError(t, err)
	require.NotEmpty(t, drafts)

	first := drafts[0]
	assert.True(t, strings.HasPrefix(first.Content, "Water supply services"))
	assert.Equal(t, "https://example.gov/water", first.Metadata["page_url"])
	assert.Equal(t, "Water supply services", first.Metadata["page_title"])
	assert.Equal(t, 0, first.RecordIndex)
}

// TestWebContent_PlainText tests article text without records
func TestWebContent_PlainText(t *testing.T) {
	p := NewWebContent(WithBudget(40), WithOverlap(0))
	text := strings.Repeat("One more sentence about the city budget and where the money goes each year. ", 12)

	drafts, err := p.Process(context.Background(), domain.SourceFile{}, &domain.Extraction{Text: text, Structure: domain.StructureArticle})
	require.NoError(t, err)
	assert.Greater(t, len(drafts), 1)
	for i, d := range drafts {
		assert.Equal(t, -1, d.RecordIndex, "draft %d", i)
	}
}

// TestWebContent_CanProcess tests shape detection
func TestWebContent_CanProcess(t *testing.T) {
	p := NewWebContent()

	assert.True(t, p.CanProcess(domain.SourceFile{}, &domain.Extraction{Text: "prose"}))
	assert.False(t, p.CanProcess(domain.SourceFile{}, &domain.Extraction{}))
	assert.False(t, p.CanProcess(domain.SourceFile{}, rosterExtraction()))
}

// TestUniversal_AcceptsAnything tests the fallback contract
func TestUniversal_AcceptsAnything(t *testing.T) {
	p := NewUniversal()

	assert.True(t, p.CanProcess(domain.SourceFile{}, nil))
	assert.True(t, p.CanProcess(domain.SourceFile{}, &domain.Extraction{}))
}

// TestUniversal_MixedContent tests records plus free text
func TestUniversal_MixedContent(t *testing.T) {
	p := NewUniversal()
	ex := &domain.Extraction{
		Structure: domain.StructureMixedContent,
		Records: []domain.Record{
			{Index: 0, Fields: map[string]any{"note": "A record-shaped fragment with useful words."}},
		},
		Text: "A trailing free-text fragment about something else entirely.",
	}

	drafts, err := p.Process(context.Background(), domain.SourceFile{}, ex)
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.Equal(t, 0, drafts[0].RecordIndex)
	assert.Equal(t, -1, drafts[1].RecordIndex)
	assert.Contains(t, drafts[0].Content, "Note: A record-shaped fragment")
}

// TestUniversal_EmptyExtraction tests the fail-fast on empty content
func TestUniversal_EmptyExtraction(t *testing.T) {
	p := NewUniversal()

	_, err := p.Process(context.Background(), domain.SourceFile{}, &domain.Extraction{})
	assert.ErrorIs(t, err, domain.ErrEmptyContent)
}
