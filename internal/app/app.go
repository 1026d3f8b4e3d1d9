// Package app assembles the codebase service from configuration.
// Both binaries share it.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"codebase-ai/internal/codebase"
	"codebase-ai/internal/config"
	"codebase-ai/internal/llm"
	"codebase-ai/internal/storage"
	"codebase-ai/internal/vectorstore"
)

// App holds the long-lived components of a running process.
type App struct {
	Service     *codebase.Service
	VectorStore vectorstore.VectorStore
	Embedder    llm.Embedder
	DB          *sql.DB

	closers []func() error
}

// NewLogger builds the process logger from the configured level and format.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// NewVectorStore opens the configured vector store backend.
func NewVectorStore(cfg *config.Config) (vectorstore.VectorStore, func() error, error) {
	switch cfg.VectorStore {
	case config.VectorStoreQdrant:
		store, err := vectorstore.NewQdrantStore(cfg.QdrantURL, vectorstore.QdrantOptions{
			APIKey: cfg.QdrantAPIKey,
			UseTLS: cfg.QdrantUseTLS,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Qdrant client: %w", err)
		}
		return store, store.Close, nil
	case config.VectorStoreMemory:
		store, err := vectorstore.NewMemoryStore(cfg.MemoryStorePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create memory vector store: %w", err)
		}
		return store, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown vector store %q", cfg.VectorStore)
	}
}

// New opens the ledger database and vector store and wires the codebase service.
// The embedder may be nil, in which case the HTTP embeddings client is used.
func New(cfg *config.Config, embedder llm.Embedder) (*App, error) {
	a := &App{}

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a.DB = db
	a.closers = append(a.closers, db.Close)

	if err := storage.Migrate(db); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	store, closeStore, err := NewVectorStore(cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.VectorStore = store
	if closeStore != nil {
		a.closers = append(a.closers, closeStore)
	}
	slog.Info("Vector store ready", "backend", cfg.VectorStore, "vector_size", cfg.VectorSize)

	if embedder == nil {
		embedder = llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, cfg.VectorSize)
	}
	a.Embedder = embedder

	a.Service = codebase.New(codebase.Deps{
		Embedder:         embedder,
		VectorStore:      store,
		RunRepo:          storage.NewRunRepo(db),
		ChunkRepo:        storage.NewChunkRepo(db),
		VectorSize:       cfg.VectorSize,
		EmbedConcurrency: cfg.EmbedConcurrency,
		SkipDirs:         cfg.SkipDirs,
	})

	return a, nil
}

// ValidateEmbedder embeds a probe text and checks the vector size.
func (a *App) ValidateEmbedder(ctx context.Context, vectorSize int) error {
	vec, err := a.Embedder.EmbedText(ctx, "test")
	if err != nil {
		return fmt.Errorf("failed to validate embedding client: %w", err)
	}
	if len(vec) != vectorSize {
		return fmt.Errorf("embedding vector size mismatch: expected %d, got %d", vectorSize, len(vec))
	}
	return nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}
