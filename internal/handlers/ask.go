package handlers

import (
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/yuin/goldmark"

	"codebase-ai/internal/contextutil"
	"codebase-ai/internal/rag"
)

// AskHandler handles HTTP requests for code retrieval queries.
type AskHandler struct {
	service  CodebaseService
	markdown goldmark.Markdown
	template *template.Template
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(service CodebaseService) *AskHandler {
	return &AskHandler{
		service:  service,
		markdown: newMarkdown(),
		template: answerTemplate,
	}
}

// AskRequest represents the HTTP request payload for retrieval queries.
//
// swagger:model AskRequest
type AskRequest struct {
	// Natural-language question about the indexed code
	Question string `json:"question"`

	// Number of chunks to return; 0 means the default of 5
	K int `json:"k,omitempty"`
}

// AskResponse represents the HTTP response payload for retrieval queries.
//
// swagger:model AskResponse
type AskResponse struct {
	// The retrieved chunks formatted as "{document} (chunk {n}):\n{text}\n", best first
	Answer string `json:"answer"`

	// The chunks the answer was built from, in answer order
	References []ReferenceResponse `json:"references"`
}

// ReferenceResponse represents a reference in the HTTP response.
//
// swagger:model ReferenceResponse
type ReferenceResponse struct {
	Key            string  `json:"key"`
	DocumentName   string  `json:"document_name"`
	SequenceNumber int     `json:"sequence_number"`
	RelPath        string  `json:"rel_path,omitempty"`
	Score          float32 `json:"score"`
}

// ServeHTTP handles HTTP requests for retrieval queries.
//
// Return the indexed chunks most similar to a question.
// With ?format=html the chunks are rendered as an HTML page instead of JSON.
//
// swagger:route POST /api/ask askQuestion
//
// # Ask a question about the indexed codebase
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// - text/html
// responses:
//
//	'200':
//	  description: Retrieved chunks
//	  schema:
//	    "$ref": "#/definitions/AskResponse"
//	'400':
//	  description: Invalid request
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'502':
//	  description: Embedding service or vector store failure
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.K < 0 {
		writeError(w, http.StatusBadRequest, "k must not be negative")
		return
	}

	ragResp, err := h.service.Retrieve(ctx, rag.AskRequest{Question: req.Question, K: req.K})
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	logger.InfoContext(ctx, "ask completed", "references", len(ragResp.References))

	if r.URL.Query().Get("format") == "html" {
		h.writeHTML(w, r, req.Question, ragResp)
		return
	}

	resp := AskResponse{
		Answer:     ragResp.Answer,
		References: make([]ReferenceResponse, 0, len(ragResp.References)),
	}
	for _, ref := range ragResp.References {
		resp.References = append(resp.References, ReferenceResponse{
			Key:            ref.Key,
			DocumentName:   ref.DocumentName,
			SequenceNumber: ref.SequenceNumber,
			RelPath:        ref.RelPath,
			Score:          ref.Score,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *AskHandler) writeHTML(w http.ResponseWriter, r *http.Request, question string, resp rag.AskResponse) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	content, err := renderMarkdown(h.markdown, answerMarkdown(resp))
	if err != nil {
		logger.ErrorContext(ctx, "failed to render answer", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to render answer")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = h.template.Execute(w, answerPageData{
		Question: question,
		Content:  template.HTML(content),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to execute answer template", "error", err)
	}
}
