package storage

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// timeLayout is used for every timestamp column. Fixed-width fractions keep
// lexical order equal to time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// New opens a SQLite database connection at the given path.
// It enables foreign keys and sets connection pool settings.
func New(path string) (*sql.DB, error) {
	// Pragmas go in the DSN so that every pooled connection gets them.
	db, err := sql.Open("sqlite3", "file:"+path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate runs database migrations to create the required tables.
// It is idempotent and can be run multiple times safely.
func Migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS index_runs (
			id TEXT PRIMARY KEY,
			collection TEXT NOT NULL,
			root_path TEXT NOT NULL,
			status TEXT NOT NULL,
			files INTEGER NOT NULL DEFAULT 0,
			chunks INTEGER NOT NULL DEFAULT 0,
			persisted INTEGER NOT NULL DEFAULT 0,
			failed_key TEXT NOT NULL DEFAULT '',
			error TEXT NOT NULL DEFAULT '',
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL DEFAULT '',
			blank_files INTEGER NOT NULL DEFAULT 0,
			annotated_chunks INTEGER NOT NULL DEFAULT 0,
			tokens_max INTEGER NOT NULL DEFAULT 0,
			tokens_p95 INTEGER NOT NULL DEFAULT 0,
			index_version TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_index_runs_collection ON index_runs (collection, started_at);`,
		`CREATE TABLE IF NOT EXISTS indexed_chunks (
			collection TEXT NOT NULL,
			key TEXT NOT NULL,
			run_id TEXT NOT NULL,
			document_name TEXT NOT NULL,
			sequence_number INTEGER NOT NULL,
			rel_path TEXT NOT NULL,
			indexed_at TEXT NOT NULL,
			PRIMARY KEY (collection, key),
			FOREIGN KEY (run_id) REFERENCES index_runs(id)
		);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
