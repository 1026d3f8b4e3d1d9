package llm

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks codebase-ai/internal/llm Embedder

import "context"

// Embedder converts text into a fixed-dimension vector.
// Implementations must return vectors of the same length for every call.
type Embedder interface {
	// EmbedText returns the embedding for a single text.
	EmbedText(ctx context.Context, text string) ([]float32, error)
}
