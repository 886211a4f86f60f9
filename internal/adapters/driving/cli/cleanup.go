package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/civictech-labs/corpusctl/internal/core/domain"
)

var (
	cleanupKeep   string
	cleanupDryRun bool
	cleanupYes    bool
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove duplicate uploads",
	Long: `Finds documents sharing the same content hash and deletes all but
one per group.

  --keep latest   keep the most recently uploaded copy (default)
  --keep first    keep the earliest uploaded copy`,
	Args: cobra.NoArgs,
	RunE: runCleanup,
}

func init() {
	cleanupCmd.Flags().StringVar(&cleanupKeep, "keep", "latest", "which duplicate to keep: latest or first")
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "preview only, delete nothing")
	cleanupCmd.Flags().BoolVarP(&cleanupYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, _ []string) error {
	if lifecycleService == nil {
		return errors.New("lifecycle service not configured")
	}

	keep := domain.KeepStrategy(cleanupKeep)
	ctx := context.Background()

	groups, err := lifecycleService.FindDuplicates(ctx, namespace())
	if err != nil {
		return fmt.Errorf("failed to find duplicates: %w", err)
	}
	if len(groups) == 0 {
		cmd.Println("No duplicate uploads found.")
		return nil
	}

	cmd.Printf("Found %s.\n\n", formatCount(len(groups), "duplicate group"))

	if !cleanupDryRun && !cleanupYes && !confirm(cmd, "cleanup") {
		cmd.Println("Aborted.")
		return nil
	}

	result, err := lifecycleService.CleanupDuplicates(ctx, namespace(), keep, cleanupDryRun)
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}

	for _, group := range result.Groups {
		cmd.Printf("  %s (%s)\n", group.Filename, group.Key)
		cmd.Printf("    Keep:   %s\n", group.Keep)
		cmd.Printf("    Remove: %s\n", strings.Join(group.Remove, ", "))
		cmd.Println()
	}

	if result.DryRun {
		cmd.Printf("Dry run: %s would be removed.\n", formatCount(result.RemovedChunks, "chunk"))
	} else {
		cmd.Printf("Removed %s.\n", formatCount(result.RemovedChunks, "chunk"))
	}
	for _, msg := range result.Errors {
		cmd.Printf("Error: %s\n", msg)
	}
	return nil
}
