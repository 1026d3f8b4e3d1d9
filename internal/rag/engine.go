package rag

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"codebase-ai/internal/contextutil"
	"codebase-ai/internal/llm"
	"codebase-ai/internal/service"
	"codebase-ai/internal/vectorstore"
)

const (
	// DefaultTopK is the number of chunks retrieved when no k is given.
	DefaultTopK = 5
	// NoResultsMessage is returned instead of an empty answer when nothing matches.
	NoResultsMessage = "No relevant information found."
)

// Engine answers questions from an indexed collection.
type Engine interface {
	// Ask returns the formatted top-k chunks for query, or NoResultsMessage.
	Ask(ctx context.Context, query string, topK int) (string, error)
	// Retrieve is Ask with the retrieved chunks attached as references.
	Retrieve(ctx context.Context, req AskRequest) (AskResponse, error)
}

// Retriever implements Engine with nearest-neighbor search over a vector collection.
type Retriever struct {
	embedder    llm.Embedder
	vectorStore vectorstore.VectorStore
	collection  string
	vectorSize  int
}

// NewRetriever creates a new Retriever.
func NewRetriever(embedder llm.Embedder, vectorStore vectorstore.VectorStore, collection string, vectorSize int) *Retriever {
	return &Retriever{
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
		vectorSize:  vectorSize,
	}
}

// Ask embeds query, searches the collection for the topK closest chunks and formats them.
// A collection that was never indexed is created empty and yields NoResultsMessage.
func (r *Retriever) Ask(ctx context.Context, query string, topK int) (string, error) {
	hits, err := r.Search(ctx, query, topK)
	if err != nil {
		return "", err
	}
	return Format(hits), nil
}

// Retrieve answers req and lists the chunks used.
func (r *Retriever) Retrieve(ctx context.Context, req AskRequest) (AskResponse, error) {
	hits, err := r.Search(ctx, req.Question, req.K)
	if err != nil {
		return AskResponse{}, err
	}

	references := make([]Reference, 0, len(hits))
	for _, hit := range hits {
		references = append(references, Reference{
			Key:            hit.Key,
			DocumentName:   hit.DocumentName,
			SequenceNumber: hit.SequenceNumber,
			RelPath:        hit.RelPath,
			Score:          hit.Score,
			Text:           hit.Text,
		})
	}

	return AskResponse{
		Answer:     Format(hits),
		References: references,
	}, nil
}

// Search returns up to topK hits for query, best first. topK <= 0 means DefaultTopK.
func (r *Retriever) Search(ctx context.Context, query string, topK int) ([]Hit, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(query) == "" {
		return nil, &service.ValidationError{Field: "query", Message: "must not be empty"}
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	logger.InfoContext(ctx, "retrieval started", "query_length", len(query), "k", topK, "collection", r.collection)

	queryVector, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed query", "error", err)
		return nil, service.Classify(service.ErrEmbedding, fmt.Errorf("failed to embed query: %w", err))
	}

	if err := r.vectorStore.EnsureCollection(ctx, r.collection, r.vectorSize); err != nil {
		logger.ErrorContext(ctx, "failed to ensure collection", "error", err)
		return nil, service.Classify(service.ErrStore, fmt.Errorf("failed to ensure collection %s: %w", r.collection, err))
	}

	results, err := r.vectorStore.Search(ctx, r.collection, queryVector, topK)
	if err != nil {
		logger.ErrorContext(ctx, "failed to search vector store", "error", err)
		return nil, service.Classify(service.ErrStore, fmt.Errorf("failed to search collection %s: %w", r.collection, err))
	}

	hits := make([]Hit, 0, len(results))
	for _, result := range results {
		hits = append(hits, hitFromResult(result))
	}

	// Backends already return nearest first; sorting keeps the contract independent of them.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}

	logger.InfoContext(ctx, "retrieval completed", "results", len(hits), "k", topK)
	if len(hits) > 0 {
		logger.DebugContext(ctx, "top hit", "key", hits[0].Key, "score", hits[0].Score)
	}

	return hits, nil
}

// Format renders hits as "{document} (chunk {n}):\n{text}\n" blocks in order.
// An empty slice renders as NoResultsMessage.
func Format(hits []Hit) string {
	if len(hits) == 0 {
		return NoResultsMessage
	}

	var b strings.Builder
	for _, hit := range hits {
		fmt.Fprintf(&b, "%s (chunk %d):\n%s\n", hit.DocumentName, hit.SequenceNumber, hit.Text)
	}
	return b.String()
}

func hitFromResult(result vectorstore.SearchResult) Hit {
	hit := Hit{
		Key:            result.PointID,
		DocumentName:   metaString(result.Meta[vectorstore.FieldDocumentName]),
		SequenceNumber: metaInt(result.Meta[vectorstore.FieldSequenceNumber]),
		RelPath:        metaString(result.Meta[vectorstore.FieldRelPath]),
		Text:           metaString(result.Meta[vectorstore.FieldText]),
		Score:          result.Score,
	}
	if key := metaString(result.Meta[vectorstore.FieldKey]); key != "" {
		hit.Key = key
	}
	return hit
}

func metaString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

// metaInt reads a payload integer. Backends return int64 (Qdrant),
// float64 (JSON) or string (chromem metadata).
func metaInt(v any) int {
	switch val := v.(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(val)
	case float32:
		return int(val)
	case string:
		n, err := strconv.Atoi(val)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}
