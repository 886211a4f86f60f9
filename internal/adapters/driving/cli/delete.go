package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/civictech-labs/corpusctl/internal/core/domain"
	"github.com/civictech-labs/corpusctl/internal/core/ports/driving"
	"github.com/civictech-labs/corpusctl/internal/enrichers"
)

var (
	deleteChunkIDs  []string
	deleteSourceIDs []string
	deleteCategory  string
	deleteFilename  string
	deleteDryRun    bool
	deleteYes       bool
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete stored chunks or documents",
	Long: `Deletes vectors by chunk ID, source ID or metadata filter.

A preview of what would be removed is always shown first. The deletion
only proceeds after confirmation (or with --yes). Use --dry-run to see
the preview without deleting anything.`,
	Args: cobra.NoArgs,
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().StringSliceVar(&deleteChunkIDs, "chunk", nil, "chunk ID to delete (repeatable)")
	deleteCmd.Flags().StringSliceVar(&deleteSourceIDs, "document", nil, "source ID whose chunks to delete (repeatable)")
	deleteCmd.Flags().StringVar(&deleteCategory, "category", "", "delete all chunks in this category")
	deleteCmd.Flags().StringVar(&deleteFilename, "filename", "", "delete all chunks of this upload name")
	deleteCmd.Flags().BoolVar(&deleteDryRun, "dry-run", false, "preview only, delete nothing")
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, _ []string) error {
	if lifecycleService == nil {
		return errors.New("lifecycle service not configured")
	}

	req := driving.DeleteRequest{
		ChunkIDs:  deleteChunkIDs,
		SourceIDs: deleteSourceIDs,
		Namespace: namespace(),
		DryRun:    deleteDryRun,
	}
	filter := make(map[string]any)
	if deleteCategory != "" {
		filter[enrichers.KeyCategory] = deleteCategory
	}
	if deleteFilename != "" {
		filter[enrichers.KeyFilename] = deleteFilename
	}
	if len(filter) > 0 {
		req.Filter = filter
	}

	ctx := context.Background()

	preview, err := lifecycleService.PreviewDelete(ctx, req)
	if err != nil {
		return fmt.Errorf("preview failed: %w", err)
	}
	printPreview(cmd, preview)

	if preview.ChunkCount == 0 && len(preview.MissingIDs) == 0 {
		cmd.Println("Nothing to delete.")
		return nil
	}

	if deleteDryRun {
		result, err := lifecycleService.Delete(ctx, req)
		if err != nil {
			return fmt.Errorf("dry run failed: %w", err)
		}
		cmd.Printf("Dry run: %s would be deleted.\n", formatCount(result.DeletedCount, "chunk"))
		return nil
	}

	if !deleteYes && !confirm(cmd, "delete") {
		cmd.Println("Aborted.")
		return nil
	}

	result, err := lifecycleService.Delete(ctx, req)
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	printDeletionResult(cmd, result)

	if !result.Success {
		return fmt.Errorf("deletion %s: %d of %d chunks removed", result.Status, result.DeletedCount, result.RequestedCount)
	}
	return nil
}

func printPreview(cmd *cobra.Command, preview *domain.DeletionPreview) {
	cmd.Println("Deletion preview:")
	cmd.Printf("  Chunks:    %d\n", preview.ChunkCount)
	cmd.Printf("  Documents: %d\n", preview.DocumentCount)
	if len(preview.SampleIDs) > 0 {
		cmd.Printf("  Sample:    %s\n", strings.Join(preview.SampleIDs, ", "))
	}
	if len(preview.MissingIDs) > 0 {
		cmd.Printf("  Missing:   %s\n", strings.Join(preview.MissingIDs, ", "))
	}
	for _, warning := range preview.Warnings {
		cmd.Printf("  Warning:   %s\n", warning)
	}
	cmd.Println()
}

func printDeletionResult(cmd *cobra.Command, result *domain.DeletionResult) {
	cmd.Printf("Deleted %d of %d chunks (%s).\n", result.DeletedCount, result.RequestedCount, result.Status)
	if len(result.MissingIDs) > 0 {
		cmd.Printf("Not found: %s\n", strings.Join(result.MissingIDs, ", "))
	}
	for _, msg := range result.Errors {
		cmd.Printf("Error: %s\n", msg)
	}
}
