package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_run_store.go -package=mocks codebase-ai/internal/storage RunStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// RunStore defines the interface for indexing run bookkeeping.
type RunStore interface {
	// Start inserts a new run in the running state. A missing ID is generated.
	Start(ctx context.Context, run *RunRecord) error
	// Finish stores the final counters, status and error of a run.
	Finish(ctx context.Context, run *RunRecord) error
	// Latest returns the most recently started run for a collection.
	// Returns ErrNotFound if the collection was never indexed.
	Latest(ctx context.Context, collection string) (*RunRecord, error)
}

// RunRepo provides methods for run operations.
// It implements the RunStore interface.
type RunRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewRunRepo creates a new RunRepo.
func NewRunRepo(db *sql.DB) *RunRepo {
	return &RunRepo{db: db, now: time.Now}
}

// Start inserts a new run in the running state.
func (r *RunRepo) Start(ctx context.Context, run *RunRecord) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = r.now().UTC()
	}
	run.Status = RunStatusRunning

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO index_runs (id, collection, root_path, status, files, chunks, started_at,
		   blank_files, annotated_chunks, tokens_max, tokens_p95, index_version)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Collection, run.RootPath, run.Status, run.Files, run.Chunks, run.StartedAt.UTC().Format(timeLayout),
		run.BlankFiles, run.AnnotatedChunks, run.TokensMax, run.TokensP95, run.IndexVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// Finish stores the final state of a run.
func (r *RunRepo) Finish(ctx context.Context, run *RunRecord) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = r.now().UTC()
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE index_runs
		 SET status = ?, files = ?, chunks = ?, persisted = ?, failed_key = ?, error = ?, finished_at = ?
		 WHERE id = ?`,
		run.Status, run.Files, run.Chunks, run.Persisted, run.FailedKey, run.Error, run.FinishedAt.UTC().Format(timeLayout), run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Latest returns the most recently started run for a collection.
func (r *RunRepo) Latest(ctx context.Context, collection string) (*RunRecord, error) {
	var run RunRecord
	var startedAt, finishedAt string

	err := r.db.QueryRowContext(ctx,
		`SELECT id, collection, root_path, status, files, chunks, persisted, failed_key, error, started_at, finished_at,
		   blank_files, annotated_chunks, tokens_max, tokens_p95, index_version
		 FROM index_runs WHERE collection = ? ORDER BY started_at DESC, rowid DESC LIMIT 1`,
		collection,
	).Scan(&run.ID, &run.Collection, &run.RootPath, &run.Status, &run.Files, &run.Chunks,
		&run.Persisted, &run.FailedKey, &run.Error, &startedAt, &finishedAt,
		&run.BlankFiles, &run.AnnotatedChunks, &run.TokensMax, &run.TokensP95, &run.IndexVersion)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	if run.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return nil, fmt.Errorf("failed to parse started_at: %w", err)
	}
	if finishedAt != "" {
		if run.FinishedAt, err = time.Parse(timeLayout, finishedAt); err != nil {
			return nil, fmt.Errorf("failed to parse finished_at: %w", err)
		}
	}

	return &run, nil
}
