package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"codebase-ai/internal/codebase"
	"codebase-ai/internal/contextutil"
)

// IngestArgument defines ingest parameters.
type IngestArgument struct {
	Path string `json:"path" jsonschema:"Absolute path of the directory whose source files should be indexed"`
}

// AskArgument defines ask parameters.
type AskArgument struct {
	Query string `json:"query" jsonschema:"Natural-language question about the indexed code"`
}

// IngestHandler handles the ingest_codebase tool.
type IngestHandler struct {
	service Service
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(service Service) *IngestHandler {
	return &IngestHandler{service: service}
}

// GetToolDefinition returns the MCP tool definition.
func (h *IngestHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        "ingest_codebase",
		Description: "Index every C# source file under a directory so it can be searched with ask_codebase",
	}
}

// Handle indexes args.Path and returns the status line.
func (h *IngestHandler) Handle(ctx context.Context, _ *mcp.CallToolRequest, args IngestArgument) (*mcp.CallToolResult, any, error) {
	logger := contextutil.LoggerFromContext(ctx).With("tool", "ingest_codebase")
	ctx = contextutil.WithLogger(ctx, logger)

	status, err := h.service.IngestCodebase(ctx, args.Path)
	if err != nil {
		logger.WarnContext(ctx, "tool call failed", "error", err)
		return errorResult(err), nil, nil
	}
	return textResult(status), nil, nil
}

// AskHandler handles the ask_codebase tool.
type AskHandler struct {
	service Service
}

// NewAskHandler creates a new ask handler.
func NewAskHandler(service Service) *AskHandler {
	return &AskHandler{service: service}
}

// GetToolDefinition returns the MCP tool definition.
func (h *AskHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        "ask_codebase",
		Description: "Return the indexed code chunks most relevant to a question, each prefixed with its file name and chunk number",
	}
}

// Handle retrieves the chunks closest to args.Query.
func (h *AskHandler) Handle(ctx context.Context, _ *mcp.CallToolRequest, args AskArgument) (*mcp.CallToolResult, any, error) {
	logger := contextutil.LoggerFromContext(ctx).With("tool", "ask_codebase")
	ctx = contextutil.WithLogger(ctx, logger)

	answer, err := h.service.Ask(ctx, args.Query)
	if err != nil {
		logger.WarnContext(ctx, "tool call failed", "error", err)
		return errorResult(err), nil, nil
	}
	return textResult(answer), nil, nil
}

// RegisterIngestTool registers the ingest tool with an MCP server.
func RegisterIngestTool(server *mcp.Server, handler *IngestHandler) {
	mcp.AddTool(server, handler.GetToolDefinition(), handler.Handle)
}

// RegisterAskTool registers the ask tool with an MCP server.
func RegisterAskTool(server *mcp.Server, handler *AskHandler) {
	mcp.AddTool(server, handler.GetToolDefinition(), handler.Handle)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(err error) *mcp.CallToolResult {
	result := textResult(codebase.Describe(err))
	result.IsError = true
	return result
}
