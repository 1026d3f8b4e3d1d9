package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"codebase-ai/internal/contextutil"
	"codebase-ai/internal/vectorstore"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	vectorStore        vectorstore.VectorStore
	db                 Pinger // optional
	collectionName     string
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler. db may be nil.
func NewHealthHandler(vectorStore vectorstore.VectorStore, db Pinger, collectionName string) *HealthHandler {
	return &HealthHandler{
		vectorStore:        vectorStore,
		db:                 db,
		collectionName:     collectionName,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
//
// swagger:model HealthResponse
type HealthResponse struct {
	// Overall health status: "healthy", "degraded", or "unhealthy"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`

	// Number of chunks stored in the collection (only present if it exists)
	Records *int `json:"records,omitempty"`

	// List of issues (only present if status is degraded or unhealthy)
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP handles HTTP requests for health checks.
//
// Returns 200 OK if healthy or degraded, 503 Service Unavailable if unhealthy.
// A collection that was never indexed only degrades the status.
//
// swagger:route GET /api/health healthCheck
//
// # Health check endpoint
//
// ---
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: System is healthy or degraded
//	  schema:
//	    "$ref": "#/definitions/HealthResponse"
//	'503':
//	  description: System is unhealthy
//	  schema:
//	    "$ref": "#/definitions/HealthResponse"
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string)
	var issues []string
	var records *int
	unhealthy := false

	switch h.checkVectorStore(checkCtx, logger) {
	case checkOK:
		checks["vector_store"] = "ok"
		n, err := h.vectorStore.Count(checkCtx, h.collectionName)
		if err != nil {
			logger.WarnContext(ctx, "failed to count collection records", "collection", h.collectionName, "error", err)
			checks["records"] = "error"
			issues = append(issues, "record_count_unavailable")
		} else {
			records = &n
		}
	case checkMissing:
		checks["vector_store"] = "ok"
		checks["collection"] = "missing"
		issues = append(issues, "collection_not_indexed")
	default:
		checks["vector_store"] = "error"
		issues = append(issues, "vector_store_unavailable")
		unhealthy = true
	}

	if h.db != nil {
		if err := h.db.PingContext(checkCtx); err != nil {
			logger.WarnContext(ctx, "database health check failed", "error", err)
			checks["database"] = "error"
			issues = append(issues, "database_unavailable")
			unhealthy = true
		} else {
			checks["database"] = "ok"
		}
	}

	status := "healthy"
	httpStatus := http.StatusOK
	switch {
	case unhealthy:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	case len(issues) > 0:
		status = "degraded"
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Records:   records,
		Issues:    issues,
	})
}

type checkResult int

const (
	checkOK checkResult = iota
	checkMissing
	checkFailed
)

// checkVectorStore checks if the vector store is accessible and holds the collection.
func (h *HealthHandler) checkVectorStore(ctx context.Context, logger *slog.Logger) checkResult {
	exists, err := h.vectorStore.CollectionExists(ctx, h.collectionName)
	if err != nil {
		logger.WarnContext(ctx, "vector store health check failed", "error", err)
		return checkFailed
	}
	if !exists {
		logger.WarnContext(ctx, "vector store collection does not exist", "collection", h.collectionName)
		return checkMissing
	}
	return checkOK
}
