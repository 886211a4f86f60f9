package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/civictech-labs/corpusctl/internal/core/domain"
)

var jobsLimit int

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect ingestion jobs",
	Long:  `List tracked ingestion jobs and their reports.`,
	Args:  cobra.NoArgs,
	RunE:  runJobsList,
}

var jobsShowCmd = &cobra.Command{
	Use:   "show [job-id]",
	Short: "Show one job and its report",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsShow,
}

func init() {
	jobsCmd.Flags().IntVar(&jobsLimit, "limit", 20, "maximum jobs to list")
	jobsCmd.AddCommand(jobsShowCmd)
	rootCmd.AddCommand(jobsCmd)
}

func runJobsList(cmd *cobra.Command, _ []string) error {
	if jobStore == nil {
		return errors.New("job store not configured")
	}

	ctx := context.Background()

	jobs, err := jobStore.ListJobs(ctx, jobsLimit)
	if err != nil {
		return fmt.Errorf("failed to list jobs: %w", err)
	}

	if len(jobs) == 0 {
		cmd.Println("No jobs recorded.")
		return nil
	}

	cmd.Printf("Jobs (%d):\n\n", len(jobs))
	for _, job := range jobs {
		cmd.Printf("  %s  %-9s  %3d%%  %s\n", job.ID, job.Status, job.Progress, job.Filename)
		if job.Error != "" {
			cmd.Printf("    Error: %s\n", job.Error)
		}
	}
	return nil
}

func runJobsShow(cmd *cobra.Command, args []string) error {
	if jobStore == nil {
		return errors.New("job store not configured")
	}

	jobID := args[0]
	ctx := context.Background()

	job, err := jobStore.GetJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to get job: %w", err)
	}

	cmd.Printf("Job: %s\n\n", job.ID)
	cmd.Printf("  File:     %s\n", job.Filename)
	if job.Category != "" {
		cmd.Printf("  Category: %s\n", job.Category)
	}
	if job.SourceID != "" {
		cmd.Printf("  Source:   %s\n", job.SourceID)
	}
	cmd.Printf("  Status:   %s\n", job.Status)
	cmd.Printf("  Stage:    %s (%d%%)\n", job.Stage, job.Progress)
	if job.Error != "" {
		cmd.Printf("  Error:    %s\n", job.Error)
	}
	cmd.Printf("  Created:  %s\n", job.CreatedAt.Format("2006-01-02 15:04:05"))

	report, err := jobStore.GetReport(ctx, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get report: %w", err)
	}

	cmd.Println("\n  Report:")
	cmd.Printf("    Records:  %d\n", report.RecordCount)
	cmd.Printf("    Chunks:   %d created, %d rejected\n", report.ChunksCreated, report.ChunksRejected)
	cmd.Printf("    Vectors:  %d upserted, %d verified\n", report.VectorsUpserted, report.VectorsVerified)
	cmd.Printf("    Pipeline: %s via %s\n", report.Structure, report.Processor)
	for _, warning := range report.Warnings {
		cmd.Printf("    Warning:  %s\n", warning)
	}
	return nil
}
