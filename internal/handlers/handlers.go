// Package handlers implements the HTTP endpoints of the codebase API.
package handlers

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_codebase_service.go -package=mocks codebase-ai/internal/handlers CodebaseService

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"codebase-ai/internal/codebase"
	"codebase-ai/internal/contextutil"
	"codebase-ai/internal/rag"
	"codebase-ai/internal/service"
	"codebase-ai/internal/storage"
)

// CodebaseService is the part of codebase.Service the handlers depend on.
type CodebaseService interface {
	IngestCodebase(ctx context.Context, path string) (string, error)
	Retrieve(ctx context.Context, req rag.AskRequest) (rag.AskResponse, error)
	LastRun(ctx context.Context) (*storage.RunRecord, error)
	RunKeys(ctx context.Context, runID string) ([]string, error)
}

// ErrorResponse represents an error response.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	// Error message
	Error string `json:"error"`
}

// statusForError maps service errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrEmbedding), errors.Is(err, service.ErrStore):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// handleServiceError logs err and writes it with the mapped status code.
func handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	logger := contextutil.LoggerFromContext(ctx)

	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, "request failed", "status", status, "error", err)
	} else {
		logger.WarnContext(ctx, "request rejected", "status", status, "error", err)
	}
	writeError(w, status, codebase.Describe(err))
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}
