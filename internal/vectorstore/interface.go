package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks codebase-ai/internal/vectorstore VectorStore

import "context"

// Payload field names stored alongside every vector.
const (
	FieldKey            = "key"
	FieldDocumentName   = "document_name"
	FieldSequenceNumber = "sequence_number"
	FieldText           = "text"
	FieldRelPath        = "rel_path"
)

// Point represents a keyed vector with metadata.
// ID is the caller's record key; backends that need a different ID format
// derive one deterministically from it.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// SearchResult represents a search result from vector search.
type SearchResult struct {
	PointID string
	Score   float32
	Meta    map[string]any
}

// VectorStore defines the interface for vector storage operations.
type VectorStore interface {
	// EnsureCollection creates the collection if it does not exist. It is idempotent
	// and does not validate the schema of an existing collection.
	EnsureCollection(ctx context.Context, collection string, vectorSize int) error

	// CollectionExists reports whether the collection exists.
	CollectionExists(ctx context.Context, collection string) (bool, error)

	// Upsert inserts or replaces points by ID.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search returns up to k nearest points, best first.
	Search(ctx context.Context, collection string, query []float32, k int) ([]SearchResult, error)

	// Count returns the number of points stored in the collection.
	Count(ctx context.Context, collection string) (int, error)
}
