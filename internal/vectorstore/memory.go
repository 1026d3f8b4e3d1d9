package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/philippgille/chromem-go"

	"codebase-ai/internal/contextutil"
)

// errNoEmbeddingFunc is returned by the chromem embedding hook. Every document and
// query carries a precomputed vector, so chromem must never compute one itself.
var errNoEmbeddingFunc = errors.New("memory store requires precomputed embeddings")

// MemoryStore implements VectorStore with chromem-go, an in-process vector database.
// With an empty path everything lives in memory; otherwise collections are persisted
// under path and reloaded on startup.
type MemoryStore struct {
	db *chromem.DB

	mu    sync.Mutex
	sizes map[string]int // configured vector size per collection
}

// NewMemoryStore creates a chromem-backed store. An empty persistPath keeps data in memory only.
func NewMemoryStore(persistPath string) (*MemoryStore, error) {
	var db *chromem.DB
	if persistPath == "" {
		db = chromem.NewDB()
	} else {
		var err error
		db, err = chromem.NewPersistentDB(persistPath, false)
		if err != nil {
			return nil, fmt.Errorf("failed to open persistent vector database: %w", err)
		}
	}

	return &MemoryStore{
		db:    db,
		sizes: make(map[string]int),
	}, nil
}

func noEmbedding(context.Context, string) ([]float32, error) {
	return nil, errNoEmbeddingFunc
}

// collection returns an existing collection or nil.
func (s *MemoryStore) collection(name string) *chromem.Collection {
	return s.db.GetCollection(name, noEmbedding)
}

// EnsureCollection creates the collection if it does not exist.
func (s *MemoryStore) EnsureCollection(ctx context.Context, collection string, vectorSize int) error {
	logger := contextutil.LoggerFromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collection(collection) != nil {
		if _, ok := s.sizes[collection]; !ok && vectorSize > 0 {
			s.sizes[collection] = vectorSize
		}
		return nil
	}

	metadata := map[string]string{}
	if vectorSize > 0 {
		metadata["vector_size"] = strconv.Itoa(vectorSize)
	}
	if _, err := s.db.CreateCollection(collection, metadata, noEmbedding); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	if vectorSize > 0 {
		s.sizes[collection] = vectorSize
	}

	logger.InfoContext(ctx, "creating collection", "collection", collection, "vector_size", vectorSize)
	return nil
}

// CollectionExists checks if a collection exists.
func (s *MemoryStore) CollectionExists(_ context.Context, collection string) (bool, error) {
	return s.collection(collection) != nil, nil
}

// Upsert inserts or replaces documents by ID.
func (s *MemoryStore) Upsert(ctx context.Context, collection string, points []Point) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(points) == 0 {
		return nil
	}

	c := s.collection(collection)
	if c == nil {
		return fmt.Errorf("collection %s does not exist", collection)
	}

	s.mu.Lock()
	size := s.sizes[collection]
	s.mu.Unlock()

	for _, point := range points {
		if point.ID == "" {
			return fmt.Errorf("point ID must not be empty")
		}
		if len(point.Vec) == 0 {
			return fmt.Errorf("point %s has no vector", point.ID)
		}
		if size > 0 && len(point.Vec) != size {
			return fmt.Errorf("point %s has vector size %d, expected %d", point.ID, len(point.Vec), size)
		}

		meta := stringifyMeta(point.Meta)
		meta[FieldKey] = point.ID
		content := meta[FieldText]
		if content == "" {
			content = point.ID
		}

		// chromem normalizes vectors in place; hand it a copy.
		vec := make([]float32, len(point.Vec))
		copy(vec, point.Vec)

		err := c.AddDocument(ctx, chromem.Document{
			ID:        point.ID,
			Metadata:  meta,
			Embedding: vec,
			Content:   content,
		})
		if err != nil {
			logger.ErrorContext(ctx, "failed to upsert points", "collection", collection, "id", point.ID, "error", err)
			return fmt.Errorf("failed to upsert point %s: %w", point.ID, err)
		}
	}

	logger.DebugContext(ctx, "upserted points", "collection", collection, "count", len(points))
	return nil
}

// Search returns up to k nearest documents by cosine similarity, best first.
func (s *MemoryStore) Search(ctx context.Context, collection string, query []float32, k int) ([]SearchResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	c := s.collection(collection)
	if c == nil {
		return nil, fmt.Errorf("collection %s does not exist", collection)
	}

	// chromem rejects nResults larger than the collection.
	n := c.Count()
	if n == 0 {
		return []SearchResult{}, nil
	}
	if k < n {
		n = k
	}

	q := make([]float32, len(query))
	copy(q, query)

	docs, err := c.QueryEmbedding(ctx, q, n, nil, nil)
	if err != nil {
		logger.ErrorContext(ctx, "failed to search points", "collection", collection, "k", k, "error", err)
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	results := make([]SearchResult, 0, len(docs))
	for _, doc := range docs {
		meta := make(map[string]any, len(doc.Metadata)+1)
		for key, value := range doc.Metadata {
			meta[key] = value
		}
		if _, ok := meta[FieldText]; !ok {
			meta[FieldText] = doc.Content
		}
		results = append(results, SearchResult{
			PointID: doc.ID,
			Score:   doc.Similarity,
			Meta:    meta,
		})
	}

	logger.DebugContext(ctx, "search completed", "collection", collection, "k", k, "results", len(results))
	return results, nil
}

// Count returns the number of documents in the collection (0 if it does not exist).
func (s *MemoryStore) Count(_ context.Context, collection string) (int, error) {
	c := s.collection(collection)
	if c == nil {
		return 0, nil
	}
	return c.Count(), nil
}

// stringifyMeta converts metadata values to strings, as chromem only stores string metadata.
func stringifyMeta(meta map[string]any) map[string]string {
	out := make(map[string]string, len(meta)+1)
	for k, v := range meta {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			out[k] = val
		case int:
			out[k] = strconv.Itoa(val)
		case int64:
			out[k] = strconv.FormatInt(val, 10)
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}
