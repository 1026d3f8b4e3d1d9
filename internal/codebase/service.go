// Package codebase exposes the two operations offered to orchestration hosts:
// ingesting a source tree and asking questions about it.
package codebase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"codebase-ai/internal/contextutil"
	"codebase-ai/internal/indexer"
	"codebase-ai/internal/llm"
	"codebase-ai/internal/rag"
	"codebase-ai/internal/service"
	"codebase-ai/internal/storage"
	"codebase-ai/internal/vectorstore"
)

const (
	// CollectionName is the vector collection holding every indexed chunk.
	CollectionName = "codebase"
	// DefaultTopK is the number of chunks returned by Ask.
	DefaultTopK = rag.DefaultTopK
)

// SourceExtensions are the file extensions ingested by IngestCodebase.
var SourceExtensions = []string{".cs"}

// Indexer indexes a directory tree.
type Indexer interface {
	Index(ctx context.Context, root string) (*indexer.Result, error)
}

// Service implements the codebase operations.
type Service struct {
	indexer   Indexer
	engine    rag.Engine
	runRepo   storage.RunStore   // optional
	chunkRepo storage.ChunkStore // optional
}

// NewService creates a new Service. runRepo and chunkRepo may be nil.
func NewService(idx Indexer, engine rag.Engine, runRepo storage.RunStore, chunkRepo storage.ChunkStore) *Service {
	return &Service{
		indexer:   idx,
		engine:    engine,
		runRepo:   runRepo,
		chunkRepo: chunkRepo,
	}
}

// Deps are the components a Service is assembled from.
type Deps struct {
	Embedder         llm.Embedder
	VectorStore      vectorstore.VectorStore
	RunRepo          storage.RunStore   // optional
	ChunkRepo        storage.ChunkStore // optional
	VectorSize       int
	EmbedConcurrency int
	SkipDirs         []string // directory names skipped besides .git
}

// New wires an indexing pipeline and a retriever over CollectionName.
func New(deps Deps) *Service {
	pipeline := indexer.NewPipeline(
		deps.Embedder,
		deps.VectorStore,
		deps.RunRepo,
		deps.ChunkRepo,
		CollectionName,
		deps.VectorSize,
		indexer.WithExtensions(SourceExtensions...),
		indexer.WithConcurrency(deps.EmbedConcurrency),
		indexer.WithSkippedDirs(deps.SkipDirs...),
	)
	retriever := rag.NewRetriever(deps.Embedder, deps.VectorStore, CollectionName, deps.VectorSize)
	return NewService(pipeline, retriever, deps.RunRepo, deps.ChunkRepo)
}

// IngestCodebase indexes every source file under path and returns a status line such as
// "Indexed 12 chunks from 3 files.".
func (s *Service) IngestCodebase(ctx context.Context, path string) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	path = strings.TrimSpace(path)
	if path == "" {
		return "", &service.ValidationError{Field: "path", Message: "must not be empty"}
	}

	result, err := s.indexer.Index(ctx, path)
	if err != nil {
		logger.ErrorContext(ctx, "ingest failed", "path", path, "error", err)
		return "", err
	}

	return StatusMessage(result), nil
}

// StatusMessage renders the outcome of a successful run.
func StatusMessage(result *indexer.Result) string {
	msg := fmt.Sprintf("Indexed %d chunks from %d files.", result.Chunks, result.Files)
	if result.Stale > 0 {
		msg += fmt.Sprintf(" %d previously indexed chunks were not refreshed.", result.Stale)
	}
	return msg
}

// Ask returns the DefaultTopK chunks closest to query, formatted, or rag.NoResultsMessage.
func (s *Service) Ask(ctx context.Context, query string) (string, error) {
	return s.engine.Ask(ctx, query, DefaultTopK)
}

// Retrieve is Ask with references and a caller-chosen k.
func (s *Service) Retrieve(ctx context.Context, req rag.AskRequest) (rag.AskResponse, error) {
	if req.K <= 0 {
		req.K = DefaultTopK
	}
	return s.engine.Retrieve(ctx, req)
}

// LastRun returns the most recent indexing run of CollectionName.
// It returns service.ErrNotFound when nothing was indexed or no ledger is configured.
func (s *Service) LastRun(ctx context.Context) (*storage.RunRecord, error) {
	if s.runRepo == nil {
		return nil, fmt.Errorf("%w: no run ledger configured", service.ErrNotFound)
	}

	run, err := s.runRepo.Latest(ctx, CollectionName)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: collection %s was never indexed", service.ErrNotFound, CollectionName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load last run: %w", err)
	}
	return run, nil
}

// RunKeys returns the chunk keys written by a run, in write order.
func (s *Service) RunKeys(ctx context.Context, runID string) ([]string, error) {
	if s.chunkRepo == nil {
		return nil, fmt.Errorf("%w: no chunk ledger configured", service.ErrNotFound)
	}

	keys, err := s.chunkRepo.ListByRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys of run %s: %w", runID, err)
	}
	return keys, nil
}

// Describe renders err as a short message for humans and tool hosts.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var notFound *indexer.DirectoryNotFoundError
	if errors.As(err, &notFound) {
		return fmt.Sprintf("Directory not found: %s", notFound.Path)
	}

	var indexErr *indexer.IndexError
	if errors.As(err, &indexErr) {
		return fmt.Sprintf("Indexing failed at chunk %s after %d chunks were stored: %v", indexErr.Key, indexErr.Persisted, indexErr.Err)
	}

	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		return fmt.Sprintf("Invalid %s: %s", validationErr.Field, validationErr.Message)
	}

	switch {
	case errors.Is(err, service.ErrEmbedding):
		return fmt.Sprintf("Embedding service error: %v", err)
	case errors.Is(err, service.ErrStore):
		return fmt.Sprintf("Vector store error: %v", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Request canceled."
	}
	return err.Error()
}
