package domain

// Chunk represents a bounded contiguous slice of a document's text.
// It is the unit of embedding and retrieval, immutable once created.
type Chunk struct {
	// Text is the chunk content, including any overlap prefix carried
	// over from the preceding chunk.
	Text string

	// StartOffset is the byte offset of Text within the source document.
	StartOffset int

	// EndOffset is the byte offset one past the last byte of Text.
	EndOffset int

	// Metadata carries source information (file name, source kind, ...).
	Metadata map[string]string
}

// ScoredChunk pairs a retrieved chunk with its similarity score.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// RetrievedSource is a citation returned alongside a generated answer.
type RetrievedSource struct {
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata"`
}

// IngestOptions overrides the default chunking parameters for one ingestion.
// Zero values fall back to the configured defaults.
type IngestOptions struct {
	ChunkSize    int
	ChunkOverlap int
}

// IngestStats reports the outcome of a single document ingestion.
type IngestStats struct {
	// ChunksCount is the number of chunks created and indexed.
	ChunksCount int
}

// FileResult reports the per-file outcome of a batch ingestion.
// Err is nil for files that were ingested successfully.
type FileResult struct {
	File   string
	Chunks int
	Err    error
}

// BatchResult aggregates a multi-file ingestion.
// A failing file never aborts the remaining files.
type BatchResult struct {
	Results     []FileResult
	TotalChunks int
}
