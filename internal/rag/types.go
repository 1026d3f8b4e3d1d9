package rag

// AskRequest represents a retrieval query.
type AskRequest struct {
	// Question is the natural-language question about the indexed code.
	Question string `json:"question"`
	// K is the number of chunks to retrieve. Zero means DefaultTopK.
	K int `json:"k,omitempty"`
}

// Reference identifies a chunk that contributed to the answer.
type Reference struct {
	// Key is the chunk key ("{document_name}_{sequence_number}").
	Key string `json:"key"`
	// DocumentName is the base name of the source file.
	DocumentName string `json:"document_name"`
	// SequenceNumber is the 1-based chunk number within the document.
	SequenceNumber int `json:"sequence_number"`
	// RelPath is the path of the source file relative to the indexed root, when known.
	RelPath string `json:"rel_path,omitempty"`
	// Score is the vector similarity score.
	Score float32 `json:"score"`
	// Text is the chunk text as stored.
	Text string `json:"text"`
}

// AskResponse is the formatted answer together with the chunks it was built from.
type AskResponse struct {
	// Answer is the concatenation of the retrieved chunks, best first,
	// or NoResultsMessage when nothing was found.
	Answer string `json:"answer"`
	// References lists the retrieved chunks in answer order.
	References []Reference `json:"references"`
}

// Hit is one retrieved chunk.
type Hit struct {
	Key            string
	DocumentName   string
	SequenceNumber int
	RelPath        string
	Text           string
	Score          float32
}
