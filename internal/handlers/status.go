package handlers

import (
	"net/http"
	"strconv"
	"time"

	"codebase-ai/internal/contextutil"
)

// StatusHandler reports the most recent indexing run.
type StatusHandler struct {
	service CodebaseService
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(service CodebaseService) *StatusHandler {
	return &StatusHandler{service: service}
}

// RunResponse describes one indexing run.
//
// swagger:model RunResponse
type RunResponse struct {
	ID       string `json:"id"`
	RootPath string `json:"root_path"`
	// One of "running", "succeeded", "failed"
	Status    string `json:"status"`
	Files     int    `json:"files"`
	Chunks    int    `json:"chunks"`
	Persisted int    `json:"persisted"`
	// Key of the chunk that aborted a failed run
	FailedKey  string `json:"failed_key,omitempty"`
	Error      string `json:"error,omitempty"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at,omitempty"`

	// Chunking coverage of the run
	BlankFiles      int    `json:"blank_files"`
	AnnotatedChunks int    `json:"annotated_chunks"`
	TokensMax       int    `json:"tokens_max"`
	TokensP95       int    `json:"tokens_p95"`
	IndexVersion    string `json:"index_version,omitempty"`

	// Keys written by the run, only with ?keys=true
	Keys []string `json:"keys,omitempty"`
}

// ServeHTTP handles HTTP requests for the index status.
//
// swagger:route GET /api/index/status indexStatus
//
// # Last indexing run
//
// ---
// produces:
// - application/json
// parameters:
//   - name: keys
//     in: query
//     type: boolean
//     description: Include the chunk keys written by the run
//
// responses:
//
//	'200':
//	  description: Most recent run
//	  schema:
//	    "$ref": "#/definitions/RunResponse"
//	'404':
//	  description: Nothing was indexed yet
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	withKeys := false
	if v := r.URL.Query().Get("keys"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			logger.WarnContext(ctx, "invalid keys parameter", "keys", v)
			writeError(w, http.StatusBadRequest, "keys must be a boolean")
			return
		}
		withKeys = b
	}

	run, err := h.service.LastRun(ctx)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	resp := RunResponse{
		ID:        run.ID,
		RootPath:  run.RootPath,
		Status:    run.Status,
		Files:     run.Files,
		Chunks:    run.Chunks,
		Persisted: run.Persisted,
		FailedKey: run.FailedKey,
		Error:     run.Error,
		StartedAt: run.StartedAt.UTC().Format(time.RFC3339),

		BlankFiles:      run.BlankFiles,
		AnnotatedChunks: run.AnnotatedChunks,
		TokensMax:       run.TokensMax,
		TokensP95:       run.TokensP95,
		IndexVersion:    run.IndexVersion,
	}
	if !run.FinishedAt.IsZero() {
		resp.FinishedAt = run.FinishedAt.UTC().Format(time.RFC3339)
	}

	if withKeys {
		keys, err := h.service.RunKeys(ctx, run.ID)
		if err != nil {
			handleServiceError(ctx, w, err)
			return
		}
		resp.Keys = keys
	}

	writeJSON(w, http.StatusOK, resp)
}
