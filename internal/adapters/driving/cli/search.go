package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/civictech-labs/corpusctl/internal/core/domain"
	"github.com/civictech-labs/corpusctl/internal/enrichers"
)

var (
	searchCategoryLimit  int
	searchCategoryOffset int
	searchTopK           int
	searchJSON           bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search stored documents and chunks",
	Long: `Find documents by filename or category, or chunks by semantic
similarity. Every hit carries a confidence tier (high, medium, low).`,
}

var searchFileCmd = &cobra.Command{
	Use:   "file [filename]",
	Short: "Find documents by filename",
	Long: `Finds documents whose upload name matches the query. Exact matches
score 1.0; close names are matched fuzzily.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearchFile,
}

var searchCategoryCmd = &cobra.Command{
	Use:   "category [category]",
	Short: "List documents in a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearchCategory,
}

var searchContentCmd = &cobra.Command{
	Use:   "content [query]",
	Short: "Find chunks by semantic similarity",
	Long:  `Embeds the query and returns the most similar stored chunks. Requires a configured embedding provider.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSearchContent,
}

func init() {
	searchCategoryCmd.Flags().IntVar(&searchCategoryLimit, "limit", 20, "maximum documents per page")
	searchCategoryCmd.Flags().IntVar(&searchCategoryOffset, "offset", 0, "number of documents to skip")
	searchContentCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 10, "maximum number of results")
	searchContentCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")

	searchCmd.AddCommand(searchFileCmd)
	searchCmd.AddCommand(searchCategoryCmd)
	searchCmd.AddCommand(searchContentCmd)
	rootCmd.AddCommand(searchCmd)
}

func runSearchFile(cmd *cobra.Command, args []string) error {
	if lifecycleService == nil {
		return errors.New("lifecycle service not configured")
	}

	ctx := context.Background()

	hits, err := lifecycleService.SearchByFilename(ctx, namespace(), args[0])
	if err != nil {
		return fmt.Errorf("filename search failed: %w", err)
	}

	if len(hits) == 0 {
		cmd.Println("No matching documents found.")
		return nil
	}

	cmd.Printf("Found %s:\n\n", formatCount(len(hits), "document"))
	for i, hit := range hits {
		filename, _ := hit.Chunk.Metadata[enrichers.KeyFilename].(string)
		cmd.Printf("  [%d] %s (%.2f, %s)\n", i+1, filename, hit.Score, hit.Confidence)
		cmd.Printf("      Source: %s\n", hit.Chunk.SourceID)
		cmd.Println()
	}
	return nil
}

func runSearchCategory(cmd *cobra.Command, args []string) error {
	if lifecycleService == nil {
		return errors.New("lifecycle service not configured")
	}

	category := args[0]
	ctx := context.Background()

	page, err := lifecycleService.SearchByCategory(ctx, namespace(), category, searchCategoryLimit, searchCategoryOffset)
	if err != nil {
		return fmt.Errorf("category search failed: %w", err)
	}

	if page.Total == 0 {
		cmd.Printf("No documents found in category: %s\n", category)
		return nil
	}

	cmd.Printf("Documents in %s (%d):\n\n", category, page.Total)
	for i := range page.Documents {
		doc := &page.Documents[i]
		cmd.Printf("  %s\n", doc.SourceID)
		cmd.Printf("    File:   %s\n", doc.Filename)
		cmd.Printf("    Chunks: %d\n", doc.ChunkCount)
		cmd.Println()
	}

	if page.HasMore {
		cmd.Printf("More documents available, use --offset %d.\n", page.Offset+len(page.Documents))
	}
	return nil
}

func runSearchContent(cmd *cobra.Command, args []string) error {
	if lifecycleService == nil {
		return errors.New("lifecycle service not configured")
	}

	ctx := context.Background()

	hits, err := lifecycleService.SearchChunksByContent(ctx, namespace(), args[0], searchTopK)
	if err != nil {
		if errors.Is(err, domain.ErrEmbeddingUnavailable) {
			return fmt.Errorf("content search needs an embedding provider, run 'corpusctl config set %s openai': %w",
				"embedding.provider", err)
		}
		return fmt.Errorf("content search failed: %w", err)
	}

	if searchJSON {
		data, err := json.MarshalIndent(hits, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(hits) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, hit := range hits {
		cmd.Printf("  [%d] %s (%.2f, %s)\n", i+1, hit.Chunk.ID, hit.Score, hit.Confidence)
		if content := truncate(hit.Chunk.Content, 120); content != "" {
			cmd.Printf("      %s\n", content)
		}
		cmd.Println()
	}
	return nil
}
