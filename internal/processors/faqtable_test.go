package processors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civictech-labs/corpusctl/internal/core/domain"
)

func bilingualFAQ() *domain.Extraction {
	return &domain.Extraction{
		Structure: domain.StructureFAQTable,
		Columns:   []string{"question", "answer", "प्रश्न", "उत्तर"},
		Records: []domain.Record{
			{Index: 0, Fields: map[string]any{
				"question": "How do I pay property tax?",
				"answer":   "Online at the portal or at any ward office.",
				"प्रश्न":   "मालमत्ता कर कसा भरावा?",
				"उत्तर":    "पोर्टलवर ऑनलाइन किंवा कोणत्याही प्रभाग कार्यालयात.",
			}},
		},
	}
}

// TestFAQTable_CanProcess tests question/answer column detection
func TestFAQTable_CanProcess(t *testing.T) {
	p := NewFAQTable()

	assert.True(t, p.CanProcess(domain.SourceFile{}, bilingualFAQ()))
	assert.False(t, p.CanProcess(domain.SourceFile{}, rosterExtraction()))
	assert.False(t, p.CanProcess(domain.SourceFile{}, &domain.Extraction{}))
}

// TestFAQTable_BilingualRowEmitsThreeChunks tests en + mr + combined
func TestFAQTable_BilingualRowEmitsThreeChunks(t *testing.T) {
	p := NewFAQTable()

	drafts, err := p.Process(context.Background(), domain.SourceFile{}, bilingualFAQ())
	require.NoError(t, err)
	require.Len(t, drafts, 3)

	combined := drafts[0]
	assert.Equal(t, "bilingual", combined.Language)
	assert.Empty(t, combined.Variant)
	assert.Contains(t, combined.Content, "Question: How do I pay property tax?")
	assert.Contains(t, combined.Content, "प्रश्न: मालमत्ता कर कसा भरावा?")

	english := drafts[1]
	assert.Equal(t, "en", english.Language)
	assert.Equal(t, VariantEnglish, english.Variant)
	assert.Contains(t, english.Content, "Answer: Online at the portal")
	assert.NotContains(t, english.Content, "उत्तर")

	marathi := drafts[2]
	assert.Equal(t, "mr", marathi.Language)
	assert.Equal(t, VariantMarathi, marathi.Variant)
	assert.Contains(t, marathi.Content, "उत्तर: पोर्टलवर")
	assert.NotContains(t, marathi.Content, "Answer")
}

// TestFAQTable_MonolingualRow tests single-chunk output
func TestFAQTable_MonolingualRow(t *testing.T) {
	p := NewFAQTable()
	ex := &domain.Extraction{
		Records: []domain.Record{
			{Index: 0, Fields: map[string]any{
				"question": "What are office hours?",
				"answer":   "Ten to five, Monday to Saturday.",
			}},
		},
	}

	drafts, err := p.Process(context.Background(), domain.SourceFile{}, ex)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "en", drafts[0].Language)
	assert.Empty(t, drafts[0].Variant)
}

// TestFAQTable_MarathiInGenericColumns tests reclassification of
// marathi text under english column names
func TestFAQTable_MarathiInGenericColumns(t *testing.T) {
	p := NewFAQTable()
	ex := &domain.Extraction{
		Records: []domain.Record{
			{Index: 0, Fields: map[string]any{
				"question": "मालमत्ता कर कसा भरावा?",
				"answer":   "पोर्टलवर ऑनलाइन भरता येतो.",
			}},
		},
	}

	drafts, err := p.Process(context.Background(), domain.SourceFile{}, ex)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "mr", drafts[0].Language)
	assert.Contains(t, drafts[0].Content, "प्रश्न: मालमत्ता कर कसा भरावा?")
}

// TestFAQTable_SkipsIncompleteRows tests rows missing answers
func TestFAQTable_SkipsIncompleteRows(t *testing.T) {
	p := NewFAQTable()
	ex := &domain.Extraction{
		Records: []domain.Record{
			{Index: 0, Fields: map[string]any{"question": "Orphan question?"}},
		},
	}

	_, err := p.Process(context.Background(), domain.SourceFile{}, ex)
	assert.ErrorIs(t, err, domain.ErrEmptyContent)
}
