package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show vector store statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if lifecycleService == nil {
		return errors.New("lifecycle service not configured")
	}

	ctx := context.Background()

	stats, err := lifecycleService.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	cmd.Println("Vector Store")
	cmd.Printf("  Vectors:    %d\n", stats.VectorCount)
	if stats.Dimensions > 0 {
		cmd.Printf("  Dimensions: %d\n", stats.Dimensions)
	}

	if len(stats.Namespaces) > 0 {
		cmd.Println("\n  Namespaces:")
		names := make([]string, 0, len(stats.Namespaces))
		for name := range stats.Namespaces {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			label := name
			if label == "" {
				label = "(default)"
			}
			cmd.Printf("    %-16s %d\n", label, stats.Namespaces[name])
		}
	}
	return nil
}
