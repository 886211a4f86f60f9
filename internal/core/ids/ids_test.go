package ids

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSourceID_Deterministic tests that identical inputs yield identical IDs
func TestSourceID_Deterministic(t *testing.T) {
	a := SourceID("contacts.xlsx", "abc123", "government_officials")
	b := SourceID("contacts.xlsx", "abc123", "government_officials")

	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "src_"))
	assert.Len(t, a, len("src_")+16)
}

// TestSourceID_InputSensitivity tests that each identity input changes the ID
func TestSourceID_InputSensitivity(t *testing.T) {
	base := SourceID("contacts.xlsx", "abc123", "general")

	tests := []struct {
		name     string
		filename string
		hash     string
		category string
	}{
		{"different filename", "other.xlsx", "abc123", "general"},
		{"different hash", "contacts.xlsx", "def456", "general"},
		{"different category", "contacts.xlsx", "abc123", "faq"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, base, SourceID(tt.filename, tt.hash, tt.category))
		})
	}
}

// TestChunkID_Format tests the chunk ID layout
func TestChunkID_Format(t *testing.T) {
	sourceID := SourceID("faq.csv", "hash", "faq")

	id := ChunkID(sourceID, 3, "Question: How do I apply?", "en", "")

	require.True(t, strings.HasPrefix(id, sourceID+"_chunk0003_"))
	assert.True(t, strings.HasSuffix(id, "_en"))

	withVariant := ChunkID(sourceID, 3, "Question: How do I apply?", "en", "question_style")
	assert.True(t, strings.HasSuffix(withVariant, "_en_question_style"))
}

// TestChunkID_Deterministic tests stability across regeneration
func TestChunkID_Deterministic(t *testing.T) {
	sourceID := "src_0123456789abcdef"

	first := ChunkID(sourceID, 0, "same content", "en", "")
	second := ChunkID(sourceID, 0, "same content", "en", "")

	assert.Equal(t, first, second)
}

// TestChunkID_ContentSensitivity tests that content beyond the hash
// prefix does not change the ID while content within it does
func TestChunkID_ContentSensitivity(t *testing.T) {
	sourceID := "src_0123456789abcdef"
	long := strings.Repeat("a", 200)

	same := ChunkID(sourceID, 0, long+"tail one", "en", "")
	alsoSame := ChunkID(sourceID, 0, long+"tail two", "en", "")
	assert.Equal(t, same, alsoSame)

	different := ChunkID(sourceID, 0, "b"+long, "en", "")
	assert.NotEqual(t, same, different)
}

// TestChunkID_MultibyteContent tests rune-safe prefix truncation
func TestChunkID_MultibyteContent(t *testing.T) {
	sourceID := "src_0123456789abcdef"
	marathi := strings.Repeat("प्रश्न ", 60)

	id := ChunkID(sourceID, 0, marathi, "mr", "")
	assert.NotEmpty(t, id)
	assert.Equal(t, id, ChunkID(sourceID, 0, marathi, "mr", ""))
}

// TestJobID_Format tests the job ID layout and uniqueness
func TestJobID_Format(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

	a := JobID(now)
	b := JobID(now)

	assert.True(t, strings.HasPrefix(a, "job_20260314150926_"))
	assert.Len(t, a, len("job_20260314150926_")+8)
	assert.NotEqual(t, a, b)
}

// TestToUUID_Deterministic tests stable UUID conversion
func TestToUUID_Deterministic(t *testing.T) {
	id := "src_abc_chunk0001_def456789012_en"

	first := ToUUID(id)
	second := ToUUID(id)

	assert.Equal(t, first, second)
	assert.Len(t, first, 36)
	assert.NotEqual(t, first, ToUUID(id+"_variant"))
}
