package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Delete Command Tests

func TestDeleteCmd_Use(t *testing.T) {
	assert.Equal(t, "delete", deleteCmd.Use)
}

func TestDeleteCmd_DryRun(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetDeleteFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"delete", "--document", "src_budget", "--dry-run"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Deletion preview:")
	assert.Contains(t, buf.String(), "Dry run: 2 chunks would be deleted")

	// Nothing removed.
	count, err := vectorStore.CountByMetadata(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestDeleteCmd_DeletesDocument(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetDeleteFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"delete", "--document", "src_budget", "--yes"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Deleted 2 of 2 chunks (success)")

	count, err := vectorStore.CountByMetadata(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestDeleteCmd_PartialMissingChunks(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetDeleteFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{
		"delete", "--yes",
		"--chunk", "src_wards_chunk0000",
		"--chunk", "src_wards_chunk0001",
		"--chunk", "src_wards_chunk9998",
		"--chunk", "src_wards_chunk9999",
	})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	// Two of four IDs exist: partial deletion is reported as a failure.
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "partial")
	assert.Contains(t, buf.String(), "Deleted 2 of 4 chunks (partial)")
	assert.Contains(t, buf.String(), "src_wards_chunk9999")
}

func TestDeleteCmd_ByCategory(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetDeleteFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"delete", "--category", "finance", "--yes"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)

	count, err := vectorStore.CountByMetadata(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestDeleteCmd_NoSelector(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetDeleteFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"delete", "--yes"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no deletion selector")
}

func TestDeleteCmd_NothingToDelete(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetDeleteFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"delete", "--category", "nonexistent", "--yes"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Nothing to delete")
}

func resetDeleteFlags() {
	deleteChunkIDs = nil
	deleteSourceIDs = nil
	deleteCategory = ""
	deleteFilename = ""
	deleteDryRun = false
	deleteYes = false
}
