package indexer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	// ChunkerVersion identifies the chunking rules. Update it when they change.
	ChunkerVersion = "decl-v1"
	// TokensPerRune is an approximation for token counting (4 chars per token).
	TokensPerRune = 4.0
)

// IndexingCoverageStats describes what a run produced.
type IndexingCoverageStats struct {
	// DocsProcessed is the number of files that matched the extension filter.
	DocsProcessed int `json:"docs_processed"`
	// DocsWith0Chunks is the number of blank files.
	DocsWith0Chunks int `json:"docs_with_0_chunks"`
	// ChunksEmbedded is the number of chunks embedded and stored.
	ChunksEmbedded int `json:"chunks_embedded"`
	// AnnotatedChunks is the number of chunks carrying a method signature.
	AnnotatedChunks int `json:"annotated_chunks"`
	// ChunkTokenStats contains statistics about estimated token counts per chunk.
	ChunkTokenStats ChunkTokenStats `json:"chunk_token_stats"`
	// ChunkerVersion is the version of the chunker used.
	ChunkerVersion string `json:"chunker_version"`
	// IndexVersion is a hash of the chunker version, extension filter and vector size.
	IndexVersion string `json:"index_version"`
}

// ChunkTokenStats contains statistics about token counts in chunks.
type ChunkTokenStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
	P95  int     `json:"p95"`
}

// ComputeCoverageStats summarizes the chunks produced from docs files.
// Oversized chunks show up in Max/P95, which is the usual sign that the
// embedding model truncated input.
func ComputeCoverageStats(docs, blankDocs int, chunks []Chunk, extensions []string, vectorSize int) *IndexingCoverageStats {
	stats := &IndexingCoverageStats{
		DocsProcessed:   docs,
		DocsWith0Chunks: blankDocs,
		ChunksEmbedded:  len(chunks),
		ChunkerVersion:  ChunkerVersion,
		IndexVersion:    indexVersion(extensions, vectorSize),
	}

	tokenCounts := make([]int, 0, len(chunks))
	for _, chunk := range chunks {
		if strings.HasPrefix(chunk.Text, MethodAnnotationPrefix) {
			stats.AnnotatedChunks++
		}
		tokenCounts = append(tokenCounts, EstimateTokens(chunk.Text))
	}
	stats.ChunkTokenStats = computeTokenStats(tokenCounts)

	return stats
}

// EstimateTokens approximates the token count of text (minimum 1).
func EstimateTokens(text string) int {
	n := int(math.Round(float64(utf8.RuneCountInString(text)) / TokensPerRune))
	if n < 1 {
		return 1
	}
	return n
}

func indexVersion(extensions []string, vectorSize int) string {
	exts := make([]string, len(extensions))
	for i, ext := range extensions {
		exts[i] = strings.ToLower(ext)
	}
	sort.Strings(exts)

	input := fmt.Sprintf("%s|ext=%s|vectorSize=%d", ChunkerVersion, strings.Join(exts, ","), vectorSize)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])[:16] // 16 hex chars = 64 bits
}

// computeTokenStats computes min, max, mean, and p95 from token counts.
func computeTokenStats(tokenCounts []int) ChunkTokenStats {
	if len(tokenCounts) == 0 {
		return ChunkTokenStats{}
	}

	sorted := make([]int, len(tokenCounts))
	copy(sorted, tokenCounts)
	sort.Ints(sorted)

	sum := 0
	for _, count := range sorted {
		sum += count
	}
	mean := float64(sum) / float64(len(sorted))

	p95Index := int(math.Ceil(float64(len(sorted)) * 0.95))
	if p95Index >= len(sorted) {
		p95Index = len(sorted) - 1
	}

	return ChunkTokenStats{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: math.Round(mean*100) / 100, // Round to 2 decimal places
		P95:  sorted[p95Index],
	}
}
