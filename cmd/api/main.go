package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codebase-ai/internal/app"
	"codebase-ai/internal/codebase"
	"codebase-ai/internal/config"
	"codebase-ai/internal/http"
	"codebase-ai/internal/mcp"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API indexes C# source trees into a vector store and returns the code chunks most relevant to a question.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: Codebase AI API
//   description: |
//     Semantic code search over locally indexed source trees.
//     Ingest a directory, then ask questions to retrieve the closest chunks.
//   version: 1.0.0
// schemes:
//   - http
// consumes:
//   - application/json
// produces:
//   - application/json

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := app.NewLogger(cfg, os.Stdout)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	a, err := app.New(cfg, nil)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer func() {
		_ = a.Close()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Fail fast on a misconfigured embedding model
	if err := a.ValidateEmbedder(ctx, cfg.VectorSize); err != nil {
		log.Fatalf("Embedding client check failed: %v", err)
	}
	slog.Info("Embedding client validated", "model", cfg.EmbeddingModelName, "vector_size", cfg.VectorSize)

	mcpServer := mcp.CreateServer(mcp.ServerConfig{
		Name:    "codebase-ai",
		Version: "1.0.0",
		Service: a.Service,
	})

	router := http.NewRouter(&http.Deps{
		Service:        a.Service,
		VectorStore:    a.VectorStore,
		DB:             a.DB,
		CollectionName: codebase.CollectionName,
		MCPHandler:     mcp.NewHTTPHandler(mcpServer),
	})

	srv := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting API server", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			slog.Error("API server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Graceful shutdown failed", "error", err)
		}
	}
}
