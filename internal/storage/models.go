package storage

import "time"

// Run status values.
const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// RunRecord is one indexing run over a root directory.
type RunRecord struct {
	ID         string // UUID
	Collection string
	RootPath   string
	Status     string
	Files      int
	Chunks     int       // chunks produced by the chunker
	Persisted  int       // chunks upserted before the run ended
	FailedKey  string    // key of the chunk that aborted the run, if any
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time // zero while running

	// Chunking coverage, known when the run starts.
	BlankFiles      int    // files that produced no chunks
	AnnotatedChunks int    // chunks carrying a method signature
	TokensMax       int    // largest estimated chunk size in tokens
	TokensP95       int    // 95th percentile estimated chunk size in tokens
	IndexVersion    string // hash of chunker version, extension filter and vector size
}

// IndexedChunkRecord records that a chunk key was upserted into a collection by a run.
type IndexedChunkRecord struct {
	Collection     string
	Key            string
	RunID          string
	DocumentName   string
	SequenceNumber int
	RelPath        string
	IndexedAt      time.Time
}
