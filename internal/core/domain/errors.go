package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidChunkConfig indicates bad chunking parameters.
	// The overlap must be smaller than the chunk size and both must be positive.
	ErrInvalidChunkConfig = errors.New("invalid chunking configuration")

	// ErrEmptyDocument indicates a document with no extractable text.
	// Such documents are rejected rather than ingested as zero chunks.
	ErrEmptyDocument = errors.New("document is empty")

	// ErrUnsupportedFileType indicates an upload with an unknown extension.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrIndexNotInitialized indicates a query against a vector index
	// that has never received a record.
	ErrIndexNotInitialized = errors.New("vector index not initialized")

	// ErrNoCorpus indicates a chat request before any document was ingested.
	// The caller should upload documents first.
	ErrNoCorpus = errors.New("no documents ingested yet")

	// Provider errors.

	// ErrEmbeddingProvider indicates the embedding service failed.
	// The core does not retry; retry policy belongs to the caller.
	ErrEmbeddingProvider = errors.New("embedding provider failure")

	// ErrGenerationProvider indicates the generation service failed.
	ErrGenerationProvider = errors.New("generation provider failure")
)
