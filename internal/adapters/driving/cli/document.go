package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	documentLimit  int
	documentOffset int
	chunksLimit    int
	chunksOffset   int
	chunksFull     bool
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage stored documents",
	Long:  `List stored documents, browse their chunks, or find duplicate uploads.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentChunksCmd = &cobra.Command{
	Use:   "chunks [source-id]",
	Short: "Browse a document's chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentChunks,
}

var documentDuplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "Find duplicate uploads",
	Long:  `Groups documents sharing the same content hash. Use 'corpusctl cleanup' to remove them.`,
	Args:  cobra.NoArgs,
	RunE:  runDocumentDuplicates,
}

func init() {
	documentListCmd.Flags().IntVar(&documentLimit, "limit", 20, "maximum documents per page")
	documentListCmd.Flags().IntVar(&documentOffset, "offset", 0, "number of documents to skip")
	documentChunksCmd.Flags().IntVar(&chunksLimit, "limit", 10, "maximum chunks per page")
	documentChunksCmd.Flags().IntVar(&chunksOffset, "offset", 0, "number of chunks to skip")
	documentChunksCmd.Flags().BoolVar(&chunksFull, "full", false, "print full chunk content")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentChunksCmd)
	documentCmd.AddCommand(documentDuplicatesCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if lifecycleService == nil {
		return errors.New("lifecycle service not configured")
	}

	ctx := context.Background()

	page, err := lifecycleService.ListDocuments(ctx, namespace(), documentLimit, documentOffset)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if page.Total == 0 {
		cmd.Println("No documents stored.")
		return nil
	}

	cmd.Printf("Documents (%d-%d of %d):\n\n", page.Offset+1, page.Offset+len(page.Documents), page.Total)
	for i := range page.Documents {
		doc := &page.Documents[i]
		cmd.Printf("  %s\n", doc.SourceID)
		cmd.Printf("    File:      %s\n", doc.Filename)
		if doc.Category != "" {
			cmd.Printf("    Category:  %s\n", doc.Category)
		}
		cmd.Printf("    Chunks:    %d\n", doc.ChunkCount)
		if len(doc.Languages) > 0 {
			cmd.Printf("    Languages: %s\n", strings.Join(doc.Languages, ", "))
		}
		if !doc.UploadedAt.IsZero() {
			cmd.Printf("    Uploaded:  %s\n", doc.UploadedAt.Format("2006-01-02 15:04:05"))
		}
		cmd.Println()
	}

	if page.HasMore {
		cmd.Printf("More documents available, use --offset %d.\n", page.Offset+len(page.Documents))
	}
	return nil
}

func runDocumentChunks(cmd *cobra.Command, args []string) error {
	if lifecycleService == nil {
		return errors.New("lifecycle service not configured")
	}

	sourceID := args[0]
	ctx := context.Background()

	page, err := lifecycleService.BrowseChunks(ctx, namespace(), sourceID, chunksLimit, chunksOffset)
	if err != nil {
		return fmt.Errorf("failed to browse chunks: %w", err)
	}

	if page.Total == 0 {
		cmd.Printf("No chunks found for source: %s\n", sourceID)
		return nil
	}

	cmd.Printf("Chunks for %s (%d-%d of %d):\n\n", sourceID, page.Offset+1, page.Offset+len(page.Chunks), page.Total)
	for i := range page.Chunks {
		chunk := &page.Chunks[i]
		cmd.Printf("  [%d] %s\n", chunk.Index, chunk.ID)
		content := chunk.Content
		if !chunksFull {
			content = truncate(content, 120)
		}
		if content != "" {
			cmd.Printf("      %s\n", content)
		}
		cmd.Println()
	}

	if page.HasMore {
		cmd.Printf("More chunks available, use --offset %d.\n", page.Offset+len(page.Chunks))
	}
	return nil
}

func runDocumentDuplicates(cmd *cobra.Command, _ []string) error {
	if lifecycleService == nil {
		return errors.New("lifecycle service not configured")
	}

	ctx := context.Background()

	groups, err := lifecycleService.FindDuplicates(ctx, namespace())
	if err != nil {
		return fmt.Errorf("failed to find duplicates: %w", err)
	}

	if len(groups) == 0 {
		cmd.Println("No duplicate uploads found.")
		return nil
	}

	cmd.Printf("Found %s:\n\n", formatCount(len(groups), "duplicate group"))
	for _, group := range groups {
		cmd.Printf("  %s (%s)\n", group.Filename, group.Key)
		for i, sourceID := range group.SourceIDs {
			marker := "  "
			if i == 0 {
				marker = "* " // newest
			}
			cmd.Printf("    %s%s\n", marker, sourceID)
		}
		cmd.Println()
	}

	cmd.Println("Run 'corpusctl cleanup' to remove duplicates.")
	return nil
}

// truncate shortens text to at most n runes for listings.
func truncate(text string, n int) string {
	text = strings.ReplaceAll(text, "\n", " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
