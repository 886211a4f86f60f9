package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/civictech-labs/corpusctl/internal/core/ports/driving"
	"github.com/civictech-labs/corpusctl/internal/logger"
)

// watchSettle is how long a file must be quiet before it is ingested.
// Uploads and editors write in several bursts.
const watchSettle = 2 * time.Second

var watchCategory string

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch a directory and ingest new files",
	Long: `Watches a directory and ingests every supported file that is
created or modified in it. Files are ingested once they stop changing.
Press Ctrl+C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchCategory, "category", "c", "", "content category assigned to ingested files")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck // Best-effort cleanup

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", dir)
	return watchLoop(ctx, cmd, watcher)
}

// watchLoop debounces filesystem events per path and ingests files once
// they settle.
func watchLoop(ctx context.Context, cmd *cobra.Command, watcher *fsnotify.Watcher) error {
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			cmd.Println("\nStopped.")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !watchable(event.Name) {
				continue
			}
			pending[event.Name] = time.Now()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case <-ticker.C:
			for path, touched := range pending {
				if time.Since(touched) < watchSettle {
					continue
				}
				delete(pending, path)
				if err := watchIngest(ctx, cmd, path); err != nil {
					cmd.Printf("FAILED %s: %v\n", path, err)
				}
			}
		}
	}
}

func watchIngest(ctx context.Context, cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	report, err := ingestService.Ingest(ctx, driving.IngestRequest{
		Filename:  filepath.Base(path),
		Data:      data,
		Category:  watchCategory,
		Namespace: namespace(),
	})
	if err != nil {
		return err
	}

	cmd.Printf("Ingested %s: %d chunks, %d vectors (%s)\n",
		report.Filename, report.ChunksCreated, report.VectorsUpserted, report.SourceID)
	return nil
}

// watchable reports whether the path has a supported extension. Hidden
// and temporary files are skipped.
func watchable(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".xlsx", ".csv", ".tsv", ".txt", ".md", ".markdown", ".pdf":
		return true
	default:
		return false
	}
}
