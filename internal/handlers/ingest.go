package handlers

import (
	"encoding/json"
	"net/http"

	"codebase-ai/internal/contextutil"
)

// IngestHandler handles HTTP requests that index a directory tree.
type IngestHandler struct {
	service CodebaseService
}

// NewIngestHandler creates a new IngestHandler.
func NewIngestHandler(service CodebaseService) *IngestHandler {
	return &IngestHandler{service: service}
}

// IngestRequest represents the HTTP request payload for indexing.
//
// swagger:model IngestRequest
type IngestRequest struct {
	// Path of the directory to index, on the server's filesystem
	Path string `json:"path"`
}

// IngestResponse represents the HTTP response payload for indexing.
//
// swagger:model IngestResponse
type IngestResponse struct {
	// Status line, e.g. "Indexed 12 chunks from 3 files."
	Status string `json:"status"`
}

// ServeHTTP handles HTTP requests for indexing.
//
// Index every source file under a directory.
// Indexing runs synchronously; the response is sent when the run has finished.
//
// swagger:route POST /api/ingest ingestCodebase
//
// # Index a codebase
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Indexing finished
//	  schema:
//	    "$ref": "#/definitions/IngestResponse"
//	'400':
//	  description: Invalid request
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'404':
//	  description: Directory not found
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'502':
//	  description: Embedding service or vector store failure
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	logger.InfoContext(ctx, "ingest requested", "path", req.Path)

	status, err := h.service.IngestCodebase(ctx, req.Path)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, IngestResponse{Status: status})
}
