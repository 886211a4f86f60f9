// Package sqlite provides a SQLite-backed implementation of the job store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. The schema is managed
// through versioned migrations embedded in the migrations/ directory.
//
// By default, the database is stored at ~/.corpusctl/data/jobs.db. All
// operations are thread-safe; the store relies on SQLite's database-level
// locking in WAL mode.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/civictech-labs/corpusctl/internal/adapters/driven/jobstore/sqlite/migrations"
	"github.com/civictech-labs/corpusctl/internal/core/domain"
	"github.com/civictech-labs/corpusctl/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.JobStore = (*Store)(nil)

// Store is a SQLite-backed job store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite job store at the specified data directory.
// If dataDir is empty, defaults to ~/.corpusctl/data/jobs.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".corpusctl", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "jobs.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// CreateJob records a newly accepted job.
func (s *Store) CreateJob(ctx context.Context, job *domain.Job) error {
	if job == nil || job.ID == "" {
		return domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO jobs (id, filename, category, source_id, status, stage, progress, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, job.ID, job.Filename, job.Category, job.SourceID, string(job.Status),
		job.Stage, job.Progress, nullString(job.Error), job.CreatedAt, job.UpdatedAt)

	if err != nil {
		return fmt.Errorf("creating job: %w", err)
	}
	return nil
}

// UpdateJob overwrites the stored job state.
func (s *Store) UpdateJob(ctx context.Context, job *domain.Job) error {
	if job == nil || job.ID == "" {
		return domain.ErrInvalidInput
	}

	job.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE jobs SET
			filename = ?,
			category = ?,
			source_id = ?,
			status = ?,
			stage = ?,
			progress = ?,
			error = ?,
			updated_at = ?
		WHERE id = ?
	`, job.Filename, job.Category, job.SourceID, string(job.Status),
		job.Stage, job.Progress, nullString(job.Error), job.UpdatedAt, job.ID)

	if err != nil {
		return fmt.Errorf("updating job: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

// GetJob retrieves a job by ID.
func (s *Store) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, filename, category, source_id, status, stage, progress, error, created_at, updated_at
		FROM jobs WHERE id = ?
	`, id)

	job, err := scanJob(row)
	if err != nil {
		return nil, err
	}
	return job, nil
}

// ListJobs returns jobs newest first, up to limit.
func (s *Store) ListJobs(ctx context.Context, limit int) ([]*domain.Job, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, filename, category, source_id, status, stage, progress, error, created_at, updated_at
		FROM jobs
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*domain.Job //nolint:prealloc // size unknown from query
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating jobs: %w", err)
	}
	return jobs, nil
}

// SaveReport persists a completed ingestion report.
func (s *Store) SaveReport(ctx context.Context, report *domain.Report) error {
	if report == nil || report.JobID == "" {
		return domain.ErrInvalidInput
	}

	warningsJSON, err := json.Marshal(report.Warnings)
	if err != nil {
		return fmt.Errorf("marshalling warnings: %w", err)
	}

	if report.CompletedAt.IsZero() {
		report.CompletedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reports (job_id, source_id, filename, record_count, chunks_created, chunks_rejected,
			vectors_upserted, vectors_verified, processor, structure, warnings, duration_ms, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(job_id) DO UPDATE SET
			source_id = excluded.source_id,
			filename = excluded.filename,
			record_count = excluded.record_count,
			chunks_created = excluded.chunks_created,
			chunks_rejected = excluded.chunks_rejected,
			vectors_upserted = excluded.vectors_upserted,
			vectors_verified = excluded.vectors_verified,
			processor = excluded.processor,
			structure = excluded.structure,
			warnings = excluded.warnings,
			duration_ms = excluded.duration_ms,
			completed_at = excluded.completed_at
	`, report.JobID, report.SourceID, report.Filename, report.RecordCount,
		report.ChunksCreated, report.ChunksRejected, report.VectorsUpserted,
		report.VectorsVerified, report.Processor, string(report.Structure),
		string(warningsJSON), report.Duration.Milliseconds(), report.CompletedAt)

	if err != nil {
		return fmt.Errorf("saving report: %w", err)
	}
	return nil
}

// GetReport retrieves the report for a job.
func (s *Store) GetReport(ctx context.Context, jobID string) (*domain.Report, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT job_id, source_id, filename, record_count, chunks_created, chunks_rejected,
			vectors_upserted, vectors_verified, processor, structure, warnings, duration_ms, completed_at
		FROM reports WHERE job_id = ?
	`, jobID)

	var (
		report       domain.Report
		structure    string
		warningsJSON string
		durationMS   int64
	)
	err := row.Scan(&report.JobID, &report.SourceID, &report.Filename,
		&report.RecordCount, &report.ChunksCreated, &report.ChunksRejected,
		&report.VectorsUpserted, &report.VectorsVerified, &report.Processor,
		&structure, &warningsJSON, &durationMS, &report.CompletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning report: %w", err)
	}

	report.Structure = domain.StructureType(structure)
	report.Duration = time.Duration(durationMS) * time.Millisecond
	if err := json.Unmarshal([]byte(warningsJSON), &report.Warnings); err != nil {
		return nil, fmt.Errorf("unmarshalling warnings: %w", err)
	}
	return &report, nil
}

// scanner abstracts sql.Row and sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...any) error
}

// scanJob reads one job row.
func scanJob(row scanner) (*domain.Job, error) {
	var (
		job     domain.Job
		status  string
		jobErr  sql.NullString
		created time.Time
		updated time.Time
	)
	err := row.Scan(&job.ID, &job.Filename, &job.Category, &job.SourceID,
		&status, &job.Stage, &job.Progress, &jobErr, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning job: %w", err)
	}

	job.Status = domain.JobStatus(status)
	job.Error = jobErr.String
	job.CreatedAt = created.UTC()
	job.UpdatedAt = updated.UTC()
	return &job, nil
}

// nullString converts an empty string to NULL for storage.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
