package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/civictech-labs/corpusctl/internal/core/domain"
	"github.com/civictech-labs/corpusctl/internal/core/ports/driving"
)

var (
	ingestCategory   string
	ingestLanguage   string
	ingestStructure  string
	ingestChunkSize  string
	ingestImportance float64
	ingestJSON       bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Ingest files into the vector store",
	Long: `Runs the full ingestion pipeline for each file: extract, route,
process, validate, enrich, embed, upsert, verify.

Supported formats: JSON, Excel (.xlsx), CSV, plain text and PDF.
Re-ingesting a file overwrites its previous vectors.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestCategory, "category", "c", "", "content category assigned to all chunks")
	ingestCmd.Flags().StringVarP(&ingestLanguage, "language", "l", "", "declared language code (detected when empty)")
	ingestCmd.Flags().StringVar(&ingestStructure, "structure", "", "structure override (skips detection)")
	ingestCmd.Flags().StringVar(&ingestChunkSize, "chunk-size", "", "chunk budget: small, medium or large")
	ingestCmd.Flags().Float64Var(&ingestImportance, "importance", 0, "importance weight for this source's chunks")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output the ingestion report as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx := context.Background()
	failed := 0

	for _, path := range args {
		if err := ingestFile(ctx, cmd, path); err != nil {
			cmd.Printf("FAILED %s: %v\n", path, err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%s failed", formatCount(failed, "file"))
	}
	return nil
}

func ingestFile(ctx context.Context, cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	var progress func(stage domain.Stage, detail string)
	if !ingestJSON {
		cmd.Printf("Ingesting %s...\n", path)
		progress = func(stage domain.Stage, detail string) {
			cmd.Printf("  [%3d%%] %-12s %s\n", stage.Percent, stage.Name, detail)
		}
	}

	report, err := ingestService.Ingest(ctx, driving.IngestRequest{
		Filename:   filepath.Base(path),
		Data:       data,
		Category:   ingestCategory,
		Language:   ingestLanguage,
		Structure:  domain.StructureType(ingestStructure),
		Importance: ingestImportance,
		ChunkSize:  ingestChunkSize,
		Namespace:  namespace(),
		Progress:   progress,
	})
	if err != nil {
		return err
	}

	if ingestJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printReport(cmd, report)
	return nil
}

func printReport(cmd *cobra.Command, report *domain.Report) {
	cmd.Println()
	cmd.Printf("Ingested %s\n", report.Filename)
	cmd.Printf("  Source ID:  %s\n", report.SourceID)
	cmd.Printf("  Structure:  %s (%s processor)\n", report.Structure, report.Processor)
	cmd.Printf("  Records:    %d\n", report.RecordCount)
	cmd.Printf("  Chunks:     %d created, %d rejected\n", report.ChunksCreated, report.ChunksRejected)
	cmd.Printf("  Vectors:    %d upserted, %d verified\n", report.VectorsUpserted, report.VectorsVerified)
	cmd.Printf("  Duration:   %s\n", report.Duration.Round(time.Millisecond))

	for _, warning := range report.Warnings {
		cmd.Printf("  Warning:    %s\n", warning)
	}
	cmd.Println()
}
