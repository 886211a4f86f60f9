package cli

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civictech-labs/corpusctl/internal/adapters/driven/vectorstore/memory"
	"github.com/civictech-labs/corpusctl/internal/core/domain"
	"github.com/civictech-labs/corpusctl/internal/enrichers"
)

// Cleanup Command Tests

func TestCleanupCmd_Use(t *testing.T) {
	assert.Equal(t, "cleanup", cleanupCmd.Use)
}

func TestCleanupCmd_NoDuplicates(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetCleanupFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"cleanup", "--yes"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No duplicate uploads found")
}

func TestCleanupCmd_RemovesDuplicates(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetCleanupFlags()
	seedDuplicatePair()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"cleanup", "--keep", "latest", "--yes"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Keep:   src_dup_new")
	assert.Contains(t, buf.String(), "Remove: src_dup_old")
	assert.Contains(t, buf.String(), "Removed 2 chunks")

	count, err := vectorStore.CountByMetadata(context.Background(), "",
		map[string]any{enrichers.KeySourceID: "src_dup_old"})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCleanupCmd_DryRun(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetCleanupFlags()
	seedDuplicatePair()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"cleanup", "--dry-run"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Dry run: 2 chunks would be removed")

	count, err := vectorStore.CountByMetadata(context.Background(), "",
		map[string]any{enrichers.KeySourceID: "src_dup_old"})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCleanupCmd_InvalidStrategy(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetCleanupFlags()
	seedDuplicatePair()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"cleanup", "--keep", "newest", "--yes"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown keep strategy")
}

// seedDuplicatePair adds two sources sharing one content hash to the
// already-wired test store.
func seedDuplicatePair() {
	store, ok := vectorStore.(*memory.Store)
	if !ok {
		panic("seedDuplicatePair needs the in-memory test store")
	}

	base := time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC)
	for _, src := range []struct {
		sourceID string
		uploaded time.Time
	}{
		{"src_dup_old", base},
		{"src_dup_new", base.Add(time.Hour)},
	} {
		records := make([]domain.VectorRecord, 2)
		for i := range records {
			records[i] = domain.VectorRecord{
				ID:     fmt.Sprintf("%s_chunk%04d", src.sourceID, i),
				Values: []float32{1, 0, 0, 0},
				Metadata: map[string]any{
					enrichers.KeySourceID:   src.sourceID,
					enrichers.KeyFilename:   "roster.json",
					enrichers.KeyFileHash:   "hash-dup",
					enrichers.KeyCategory:   "general",
					enrichers.KeyChunkIndex: i,
					enrichers.KeyText:       fmt.Sprintf("chunk %d", i),
					enrichers.KeyUploadedAt: src.uploaded.Format(time.RFC3339),
				},
			}
		}
		//nolint:errcheck // In-memory seed cannot fail
		store.Upsert(context.Background(), "", records)
	}
}

func resetCleanupFlags() {
	cleanupKeep = "latest"
	cleanupDryRun = false
	cleanupYes = false
}
