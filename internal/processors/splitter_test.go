package processors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSplitter_ShortTextSinglePiece tests that text within budget is untouched
func TestSplitter_ShortTextSinglePiece(t *testing.T) {
	s := NewSplitter()

	text := "A short paragraph about office hours."
	pieces := s.Split(text)

	require.Len(t, pieces, 1)
	assert.Equal(t, text, pieces[0])
}

// TestSplitter_EmptyText tests empty input
func TestSplitter_EmptyText(t *testing.T) {
	s := NewSplitter()

	assert.Nil(t, s.Split(""))
	assert.Nil(t, s.Split("   \n\n  "))
}

// TestSplitter_ParagraphBoundaries tests splitting on blank lines
func TestSplitter_ParagraphBoundaries(t *testing.T) {
	s := NewSplitter(WithBudget(60), WithOverlap(0))

	para := strings.Repeat("Sentence about civic services. ", 6)
	text := para + "\n\n" + para + "\n\n" + para

	pieces := s.Split(text)

	require.Greater(t, len(pieces), 1)
	for _, p := range pieces {
		assert.NotEmpty(t, strings.TrimSpace(p))
	}
}

// TestSplitter_OrderPreserved tests that pieces appear in source order
func TestSplitter_OrderPreserved(t *testing.T) {
	s := NewSplitter(WithBudget(50), WithOverlap(0))

	var parts []string
	for _, marker := range []string{"alpha", "bravo", "charlie", "delta", "echo"} {
		parts = append(parts, "Marker "+marker+" paragraph with enough words to carry some weight in the budget calculation here.")
	}
	pieces := s.Split(strings.Join(parts, "\n\n"))

	joined := strings.Join(pieces, " ")
	last := -1
	for _, marker := range []string{"alpha", "bravo", "charlie", "delta", "echo"} {
		idx := strings.Index(joined, marker)
		require.GreaterOrEqual(t, idx, 0, "marker %s missing", marker)
		assert.Greater(t, idx, last, "marker %s out of order", marker)
		last = idx
	}
}

// TestSplitter_OversizedParagraphFallsToSentences tests sentence fallback
func TestSplitter_OversizedParagraphFallsToSentences(t *testing.T) {
	s := NewSplitter(WithBudget(40), WithOverlap(0))

	para := strings.Repeat("This sentence talks about the municipal office and its many public services. ", 10)
	pieces := s.Split(para)

	require.Greater(t, len(pieces), 1)
	for _, p := range pieces {
		assert.LessOrEqual(t, approxTokens(p), 80, "piece should stay near budget")
	}
}

// TestSplitter_OverlapSeedsNextPiece tests the sentence overlap
func TestSplitter_OverlapSeedsNextPiece(t *testing.T) {
	s := NewSplitter(WithBudget(30), WithOverlap(10))

	para := "First sentence about water supply in the city area. " +
		"Second sentence about property tax collection deadlines there. " +
		"Third sentence about birth certificate application process steps. " +
		"Fourth sentence about trade licence renewals and their fees."
	pieces := s.Split(para)

	require.Greater(t, len(pieces), 1)
	overlapFound := false
	for _, sentence := range splitSentences(pieces[0]) {
		if strings.Contains(pieces[1], sentence) {
			overlapFound = true
			break
		}
	}
	assert.True(t, overlapFound, "no overlap carried into second piece")
}

// TestChunkTokens tests named size resolution
func TestChunkTokens(t *testing.T) {
	assert.Equal(t, SmallChunkTokens, ChunkTokens("small"))
	assert.Equal(t, MediumChunkTokens, ChunkTokens("medium"))
	assert.Equal(t, LargeChunkTokens, ChunkTokens("large"))
	assert.Equal(t, MediumChunkTokens, ChunkTokens(""))
	assert.Equal(t, MediumChunkTokens, ChunkTokens("huge"))
}
