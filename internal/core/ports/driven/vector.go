package driven

import (
	"context"

	"github.com/resumind/ragserver/internal/core/domain"
)

// VectorEntry is a (vector, chunk) pair handed to the index for storage.
// The index owns the resulting record and assigns its identifier.
type VectorEntry struct {
	Vector []float32
	Chunk  domain.Chunk
}

// VectorIndex stores embedded chunks and serves k-nearest-neighbour
// queries by cosine similarity. The index is append-only: records are
// never removed or reordered, and identifiers are never reused.
//
// Appends from concurrent ingestions are serialized; a batch becomes
// visible to queries atomically. Queries may run concurrently with
// each other.
type VectorIndex interface {
	// Append stores the entries as one atomic batch and marks the
	// index initialized. All vectors must share the index dimension.
	Append(ctx context.Context, entries []VectorEntry) error

	// Search returns the top k records by descending cosine similarity.
	// Ties are broken by insertion order, earlier record first. Fewer
	// than k stored records is not an error; an index that has never
	// been appended to fails with domain.ErrIndexNotInitialized.
	Search(ctx context.Context, query []float32, k int) ([]domain.ScoredChunk, error)

	// Initialized reports whether any record has ever been appended.
	Initialized() bool

	// Len returns the number of stored records.
	Len() int

	// Dimensions returns the vector length, or 0 before the first append.
	Dimensions() int

	// Type identifies the index implementation for operational visibility.
	Type() string
}
