package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chunk_store.go -package=mocks codebase-ai/internal/storage ChunkStore

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ChunkStore tracks which chunk keys have been upserted into a collection.
type ChunkStore interface {
	// Record inserts or replaces the bookkeeping row for a chunk key.
	Record(ctx context.Context, chunk *IndexedChunkRecord) error
	// CountStale returns how many keys of the collection were last written by a run other than runID.
	CountStale(ctx context.Context, collection, runID string) (int, error)
	// ListByRun returns the keys recorded by a run, in the order they were written.
	ListByRun(ctx context.Context, runID string) ([]string, error)
}

// ChunkRepo provides methods for indexed chunk operations.
// It implements the ChunkStore interface.
type ChunkRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewChunkRepo creates a new ChunkRepo.
func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db, now: time.Now}
}

// Record inserts or replaces the row for (collection, key).
func (r *ChunkRepo) Record(ctx context.Context, chunk *IndexedChunkRecord) error {
	if chunk.IndexedAt.IsZero() {
		chunk.IndexedAt = r.now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO indexed_chunks (collection, key, run_id, document_name, sequence_number, rel_path, indexed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (collection, key) DO UPDATE SET
			run_id = excluded.run_id,
			document_name = excluded.document_name,
			sequence_number = excluded.sequence_number,
			rel_path = excluded.rel_path,
			indexed_at = excluded.indexed_at`,
		chunk.Collection, chunk.Key, chunk.RunID, chunk.DocumentName, chunk.SequenceNumber, chunk.RelPath,
		chunk.IndexedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to record chunk: %w", err)
	}
	return nil
}

// CountStale returns how many keys of the collection were not rewritten by runID.
// These are chunks from files that were edited or removed since they were indexed;
// they remain in the vector store because there is no chunk-level delete path.
func (r *ChunkRepo) CountStale(ctx context.Context, collection, runID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM indexed_chunks WHERE collection = ? AND run_id <> ?",
		collection, runID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count stale chunks: %w", err)
	}
	return n, nil
}

// ListByRun returns the keys recorded by a run, ordered by write time.
func (r *ChunkRepo) ListByRun(ctx context.Context, runID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT key FROM indexed_chunks WHERE run_id = ? ORDER BY indexed_at, rowid",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk keys: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan chunk key: %w", err)
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return keys, nil
}
