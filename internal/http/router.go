// Package http assembles the chi router of the codebase API.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"codebase-ai/internal/handlers"
	"codebase-ai/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Service        handlers.CodebaseService
	VectorStore    vectorstore.VectorStore
	DB             handlers.Pinger // optional
	CollectionName string
	// MCPHandler, when set, is mounted at /mcp.
	MCPHandler http.Handler
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/ingest", handlers.NewIngestHandler(deps.Service))
		r.Method(http.MethodPost, "/ask", handlers.NewAskHandler(deps.Service))
		r.Method(http.MethodGet, "/index/status", handlers.NewStatusHandler(deps.Service))
		r.Method(http.MethodGet, "/health", handlers.NewHealthHandler(deps.VectorStore, deps.DB, deps.CollectionName))
	})

	if deps.MCPHandler != nil {
		r.Handle("/mcp", deps.MCPHandler)
	}

	return r
}
