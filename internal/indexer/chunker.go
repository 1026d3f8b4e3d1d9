package indexer

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// MethodAnnotationPrefix starts the first line of a chunk that follows a declaration.
const MethodAnnotationPrefix = "// METHOD: "

// declarationModifiers are the access modifiers that can open a method-like declaration.
var declarationModifiers = []string{"public ", "private ", "protected ", "internal "}

// IsDeclaration reports whether line looks like the start of a method-like declaration:
// an access modifier, both parentheses, and no trailing statement terminator.
// It is a textual heuristic, not a parser.
func IsDeclaration(line string) bool {
	trimmed := strings.TrimSpace(line)

	hasModifier := false
	for _, m := range declarationModifiers {
		if strings.HasPrefix(trimmed, m) {
			hasModifier = true
			break
		}
	}
	if !hasModifier {
		return false
	}

	return strings.Contains(trimmed, "(") &&
		strings.Contains(trimmed, ")") &&
		!strings.HasSuffix(trimmed, ";")
}

// Chunker splits the lines of one document into chunks at declaration boundaries.
// It is a left fold over lines: Step consumes one line and may emit the chunk that
// the line closed; Flush emits whatever is left once input ends.
//
// A Chunker owns the sequence counter of its document and must not be shared
// between documents or goroutines.
type Chunker struct {
	documentName string
	buffer       []string
	signature    string // declaration that opened the buffered chunk, if any
	sequence     int    // last emitted sequence number
}

// NewChunker creates a chunker for the document with the given name.
func NewChunker(documentName string) *Chunker {
	return &Chunker{documentName: documentName}
}

// Step feeds one line to the chunker. When the line is a declaration and lines are
// already buffered, the buffer is emitted first and the declaration becomes the
// signature of the chunk that starts with it. A declaration on an empty buffer
// opens an unannotated chunk.
func (c *Chunker) Step(line string) (Chunk, bool) {
	var (
		chunk   Chunk
		emitted bool
	)

	if IsDeclaration(line) && len(c.buffer) > 0 {
		chunk, emitted = c.Flush()
		c.signature = strings.TrimSpace(line)
	}

	c.buffer = append(c.buffer, line)
	return chunk, emitted
}

// Flush emits the buffered lines as a chunk and resets the buffer and signature.
// Buffers that trim to nothing are dropped without consuming a sequence number.
func (c *Chunker) Flush() (Chunk, bool) {
	text := strings.TrimSpace(strings.Join(c.buffer, "\n"))
	signature := c.signature

	c.buffer = c.buffer[:0]
	c.signature = ""

	if text == "" {
		return Chunk{}, false
	}

	c.sequence++
	if signature != "" {
		text = MethodAnnotationPrefix + signature + "\n" + text
	}

	return Chunk{
		Key:            ChunkKey(c.documentName, c.sequence),
		DocumentName:   c.documentName,
		SequenceNumber: c.sequence,
		Text:           text,
	}, true
}

// ChunkKey builds the vector store key of a chunk.
func ChunkKey(documentName string, sequenceNumber int) string {
	return documentName + "_" + strconv.Itoa(sequenceNumber)
}

// ChunkLines runs a fresh Chunker over lines and returns the chunks in order.
func ChunkLines(documentName string, lines []string) []Chunk {
	c := NewChunker(documentName)

	var chunks []Chunk
	for _, line := range lines {
		if chunk, ok := c.Step(line); ok {
			chunks = append(chunks, chunk)
		}
	}
	if chunk, ok := c.Flush(); ok {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// ChunkFile reads the file at path and chunks it. The document name is the file's base name.
func ChunkFile(path string) ([]Chunk, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return ChunkLines(filepath.Base(path), SplitLines(content)), nil
}

// SplitLines splits content on "\n" and drops a trailing "\r" from each line.
// A final newline does not produce an extra line.
func SplitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	content = bytes.TrimSuffix(content, []byte("\n"))

	raw := strings.Split(string(content), "\n")
	for i, line := range raw {
		raw[i] = strings.TrimSuffix(line, "\r")
	}
	return raw
}
