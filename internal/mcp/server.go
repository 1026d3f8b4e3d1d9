// Package mcp exposes the codebase operations as MCP tools.
package mcp

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Service is the part of codebase.Service exposed as tools.
type Service interface {
	IngestCodebase(ctx context.Context, path string) (string, error)
	Ask(ctx context.Context, query string) (string, error)
}

// ServerConfig contains configuration for creating an MCP server.
type ServerConfig struct {
	Name    string
	Version string
	Service Service
}

// CreateServer creates the MCP server with the ingest and ask tools registered.
func CreateServer(cfg ServerConfig) *mcp.Server {
	s := mcp.NewServer(&mcp.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	RegisterIngestTool(s, NewIngestHandler(cfg.Service))
	RegisterAskTool(s, NewAskHandler(cfg.Service))

	return s
}

// NewHTTPHandler serves s over the streamable HTTP transport.
func NewHTTPHandler(s *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s
	}, nil)
}
