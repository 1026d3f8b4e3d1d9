package indexer

// Chunk is a keyed unit of source text produced by the chunker.
type Chunk struct {
	Key            string    // "{DocumentName}_{SequenceNumber}"
	DocumentName   string    // base name of the source file
	SequenceNumber int       // 1-based, per document
	Text           string    // trimmed text, prefixed with "// METHOD: ..." when a signature applies
	Embedding      []float32 // filled in by the pipeline
	RelPath        string    // slash-separated path relative to the indexed root; not part of Key
}
