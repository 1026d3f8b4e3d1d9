package indexer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"codebase-ai/internal/contextutil"
	"codebase-ai/internal/llm"
	"codebase-ai/internal/service"
	"codebase-ai/internal/storage"
	"codebase-ai/internal/vectorstore"
)

// Result summarizes a successful indexing run.
type Result struct {
	RunID  string // empty when the pipeline has no run ledger
	Files  int    // files that matched the extension filter, including those yielding no chunks
	Chunks int    // chunks embedded and upserted
	Stale  int    // keys from earlier runs that this run did not rewrite
	Stats  *IndexingCoverageStats
}

// DirectoryNotFoundError is returned when the root to index is missing or not a directory.
type DirectoryNotFoundError struct {
	Path string
}

func (e *DirectoryNotFoundError) Error() string {
	return fmt.Sprintf("directory not found: %s", e.Path)
}

// Unwrap returns ErrNotFound so errors.Is works.
func (e *DirectoryNotFoundError) Unwrap() error {
	return service.ErrNotFound
}

// IndexError reports the chunk at which a run stopped.
// Chunks upserted before it stay in the collection.
type IndexError struct {
	Key       string // key of the chunk that failed
	Persisted int    // chunks upserted before the failure
	Err       error
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("indexing stopped at chunk %s after %d chunks were stored: %v", e.Key, e.Persisted, e.Err)
}

func (e *IndexError) Unwrap() error {
	return e.Err
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithExtensions sets the file extensions to index (e.g. ".cs").
func WithExtensions(extensions ...string) Option {
	return func(p *Pipeline) {
		p.extensions = extensions
	}
}

// WithSkippedDirs adds directory names that are not descended into, on top of
// DefaultSkippedDirs (e.g. "bin", "obj").
func WithSkippedDirs(names ...string) Option {
	return func(p *Pipeline) {
		p.skipDirs = append(p.skipDirs, names...)
	}
}

// WithConcurrency lets up to n embedding requests run ahead of the upserts.
// Upserts still happen one at a time in chunk order. Values below 2 keep the
// run strictly sequential.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n < 1 {
			n = 1
		}
		p.concurrency = n
	}
}

// Pipeline indexes a source tree into a vector store collection.
type Pipeline struct {
	embedder    llm.Embedder
	vectorStore vectorstore.VectorStore
	runRepo     storage.RunStore   // optional
	chunkRepo   storage.ChunkStore // optional
	collection  string
	vectorSize  int
	extensions  []string
	skipDirs    []string
	concurrency int
}

// NewPipeline creates a new indexing pipeline. runRepo and chunkRepo may be nil,
// in which case runs are not recorded and stale keys are not counted.
func NewPipeline(
	embedder llm.Embedder,
	vectorStore vectorstore.VectorStore,
	runRepo storage.RunStore,
	chunkRepo storage.ChunkStore,
	collection string,
	vectorSize int,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		embedder:    embedder,
		vectorStore: vectorStore,
		runRepo:     runRepo,
		chunkRepo:   chunkRepo,
		collection:  collection,
		vectorSize:  vectorSize,
		extensions:  []string{".cs"},
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Index chunks every matching file under root, embeds each chunk and upserts it
// into the collection keyed by chunk key. Any embedding or store failure stops the
// run and is returned as *IndexError.
func (p *Pipeline) Index(ctx context.Context, root string) (*Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	dir, err := resolveRoot(root)
	if err != nil {
		return nil, err
	}

	files, err := ScanSourceFiles(ctx, dir, p.extensions, p.skipDirs)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	chunks, blankFiles, err := p.chunkFiles(ctx, files)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "starting indexing", "root", root, "files", len(files), "chunks", len(chunks), "collection", p.collection)

	if err := p.vectorStore.EnsureCollection(ctx, p.collection, p.vectorSize); err != nil {
		return nil, service.Classify(service.ErrStore, fmt.Errorf("failed to ensure collection %s: %w", p.collection, err))
	}

	stats := ComputeCoverageStats(len(files), blankFiles, chunks, p.extensions, p.vectorSize)
	run := &storage.RunRecord{
		Collection: p.collection,
		RootPath:   root,
		Files:      len(files),
		Chunks:     len(chunks),

		BlankFiles:      stats.DocsWith0Chunks,
		AnnotatedChunks: stats.AnnotatedChunks,
		TokensMax:       stats.ChunkTokenStats.Max,
		TokensP95:       stats.ChunkTokenStats.P95,
		IndexVersion:    stats.IndexVersion,
	}
	if p.runRepo != nil {
		if err := p.runRepo.Start(ctx, run); err != nil {
			return nil, fmt.Errorf("failed to start run: %w", err)
		}
	}

	var persisted int
	if p.concurrency > 1 {
		persisted, err = p.processPipelined(ctx, run.ID, chunks)
	} else {
		persisted, err = p.processSequential(ctx, run.ID, chunks)
	}
	run.Persisted = persisted

	if err != nil {
		var indexErr *IndexError
		if errors.As(err, &indexErr) {
			run.FailedKey = indexErr.Key
		}
		run.Status = storage.RunStatusFailed
		run.Error = err.Error()
		p.finishRun(ctx, run)

		logger.ErrorContext(ctx, "indexing failed", "root", root, "persisted", persisted, "failed_key", run.FailedKey, "error", err)
		return nil, err
	}

	run.Status = storage.RunStatusSucceeded
	p.finishRun(ctx, run)

	result := &Result{
		RunID:  run.ID,
		Files:  len(files),
		Chunks: len(chunks),
		Stats:  stats,
	}
	if p.chunkRepo != nil && p.runRepo != nil {
		stale, err := p.chunkRepo.CountStale(ctx, p.collection, run.ID)
		if err != nil {
			logger.WarnContext(ctx, "failed to count stale chunks", "error", err)
		} else {
			result.Stale = stale
		}
	}

	logger.InfoContext(ctx, "indexing completed",
		"root", root,
		"files", result.Files,
		"chunks", result.Chunks,
		"stale", result.Stale,
		"blank_files", stats.DocsWith0Chunks,
		"annotated_chunks", stats.AnnotatedChunks,
		"tokens_mean", stats.ChunkTokenStats.Mean,
		"tokens_p95", stats.ChunkTokenStats.P95,
		"tokens_max", stats.ChunkTokenStats.Max,
		"index_version", stats.IndexVersion,
	)
	return result, nil
}

// resolveRoot follows symlinks in root and checks that it names a directory.
// Only a missing path or a non-directory is reported as DirectoryNotFoundError.
func resolveRoot(root string) (string, error) {
	dir, err := filepath.EvalSymlinks(root)
	if err != nil {
		if isMissingDir(err) {
			return "", &DirectoryNotFoundError{Path: root}
		}
		return "", fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		if isMissingDir(err) {
			return "", &DirectoryNotFoundError{Path: root}
		}
		return "", fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return "", &DirectoryNotFoundError{Path: root}
	}
	return dir, nil
}

func isMissingDir(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}

// chunkFiles chunks files in discovery order. Files sharing a base name produce
// colliding keys; that is logged and left as is. It also returns the number of
// files that produced no chunks.
func (p *Pipeline) chunkFiles(ctx context.Context, files []SourceFile) ([]Chunk, int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	seen := make(map[string]string, len(files))
	var chunks []Chunk
	blank := 0

	for _, file := range files {
		fileChunks, err := ChunkFile(file.AbsPath)
		if err != nil {
			return nil, 0, err
		}

		if len(fileChunks) > 0 {
			name := fileChunks[0].DocumentName
			if prev, ok := seen[name]; ok {
				logger.WarnContext(ctx, "document name collision, later chunks overwrite earlier ones",
					"document_name", name, "rel_path", file.RelPath, "previous_rel_path", prev)
			} else {
				seen[name] = file.RelPath
			}
		} else {
			blank++
			logger.DebugContext(ctx, "no chunks generated", "rel_path", file.RelPath)
		}

		for i := range fileChunks {
			fileChunks[i].RelPath = file.RelPath
		}
		chunks = append(chunks, fileChunks...)
	}

	return chunks, blank, nil
}

func (p *Pipeline) processSequential(ctx context.Context, runID string, chunks []Chunk) (int, error) {
	for i := range chunks {
		chunk := &chunks[i]

		select {
		case <-ctx.Done():
			return i, &IndexError{Key: chunk.Key, Persisted: i, Err: ctx.Err()}
		default:
		}

		vec, err := p.embed(ctx, chunk.Text)
		if err != nil {
			return i, &IndexError{Key: chunk.Key, Persisted: i, Err: err}
		}
		chunk.Embedding = vec

		if err := p.store(ctx, runID, chunk); err != nil {
			return i, &IndexError{Key: chunk.Key, Persisted: i, Err: err}
		}
	}
	return len(chunks), nil
}

type embedResult struct {
	vec []float32
	err error
}

// processPipelined embeds up to p.concurrency chunks ahead of the upsert loop.
// Each chunk's embedding completes before its upsert, upserts follow chunk order,
// and the first failure in chunk order is the one reported.
func (p *Pipeline) processPipelined(ctx context.Context, runID string, chunks []Chunk) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	// cancel runs first so a producer blocked on the semaphore can exit before Wait.
	defer wg.Wait()
	defer cancel()

	results := make([]chan embedResult, len(chunks))
	for i := range results {
		results[i] = make(chan embedResult, 1)
	}

	sem := make(chan struct{}, p.concurrency)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range chunks {
			select {
			case sem <- struct{}{}: // Acquire
			case <-ctx.Done():
				return
			}

			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				vec, err := p.embed(ctx, chunks[i].Text)
				results[i] <- embedResult{vec: vec, err: err}
			}(i)
		}
	}()

	for i := range chunks {
		chunk := &chunks[i]

		var res embedResult
		select {
		case <-ctx.Done():
			return i, &IndexError{Key: chunk.Key, Persisted: i, Err: ctx.Err()}
		case res = <-results[i]:
		}
		<-sem // Release

		if res.err != nil {
			return i, &IndexError{Key: chunk.Key, Persisted: i, Err: res.err}
		}
		chunk.Embedding = res.vec

		if err := p.store(ctx, runID, chunk); err != nil {
			return i, &IndexError{Key: chunk.Key, Persisted: i, Err: err}
		}
	}
	return len(chunks), nil
}

// embed requests an embedding and checks its dimension.
func (p *Pipeline) embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := p.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, service.Classify(service.ErrEmbedding, err)
	}
	if p.vectorSize > 0 && len(vec) != p.vectorSize {
		return nil, fmt.Errorf("%w: embedding has %d dimensions, expected %d", service.ErrEmbedding, len(vec), p.vectorSize)
	}
	return vec, nil
}

// store upserts one chunk and records its key in the ledger.
func (p *Pipeline) store(ctx context.Context, runID string, chunk *Chunk) error {
	point := vectorstore.Point{
		ID:  chunk.Key,
		Vec: chunk.Embedding,
		Meta: map[string]any{
			vectorstore.FieldDocumentName:   chunk.DocumentName,
			vectorstore.FieldSequenceNumber: chunk.SequenceNumber,
			vectorstore.FieldText:           chunk.Text,
			vectorstore.FieldRelPath:        chunk.RelPath,
		},
	}
	if err := p.vectorStore.Upsert(ctx, p.collection, []vectorstore.Point{point}); err != nil {
		return service.Classify(service.ErrStore, err)
	}

	if p.chunkRepo == nil || runID == "" {
		return nil
	}
	err := p.chunkRepo.Record(ctx, &storage.IndexedChunkRecord{
		Collection:     p.collection,
		Key:            chunk.Key,
		RunID:          runID,
		DocumentName:   chunk.DocumentName,
		SequenceNumber: chunk.SequenceNumber,
		RelPath:        chunk.RelPath,
	})
	if err != nil {
		// The vector store already holds the chunk; the ledger only loses a stale count.
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to record indexed chunk", "key", chunk.Key, "error", err)
	}
	return nil
}

// finishRun records the final state of a run, even when ctx was canceled.
func (p *Pipeline) finishRun(ctx context.Context, run *storage.RunRecord) {
	if p.runRepo == nil {
		return
	}
	if err := p.runRepo.Finish(context.WithoutCancel(ctx), run); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to finish run", "run_id", run.ID, "error", err)
	}
}
