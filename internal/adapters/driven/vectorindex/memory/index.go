// Package memory provides an in-memory, append-only vector index using
// exact brute-force search. O(n*d) per query is acceptable at the target
// scale; a production-scale deployment would substitute an approximate
// nearest-neighbour index behind the same port.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/resumind/ragserver/internal/core/domain"
	"github.com/resumind/ragserver/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// record is an indexed (vector, chunk) pair. Records are owned by the
// index; IDs are assigned monotonically and never reused.
type record struct {
	id     int64
	vector []float32
	chunk  domain.Chunk
}

// Index is a process-wide, append-only vector store. Appends are
// serialized by the write lock and become visible to queries atomically;
// queries run concurrently under the read lock. There is no teardown:
// the index lives for the process lifetime.
type Index struct {
	mu          sync.RWMutex
	records     []record
	nextID      int64
	dimensions  int
	initialized bool
}

// New creates an empty index.
func New() *Index {
	return &Index{}
}

// Append stores entries as one atomic batch and marks the index
// initialized. The first batch fixes the vector dimension; every later
// vector must match it.
func (ix *Index) Append(_ context.Context, entries []driven.VectorEntry) error {
	if len(entries) == 0 {
		return nil
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	dims := ix.dimensions
	if dims == 0 {
		dims = len(entries[0].Vector)
	}
	for i, e := range entries {
		if len(e.Vector) != dims {
			return fmt.Errorf("%w: entry %d has dimension %d, index expects %d",
				domain.ErrInvalidInput, i, len(e.Vector), dims)
		}
	}

	for _, e := range entries {
		ix.records = append(ix.records, record{
			id:     ix.nextID,
			vector: e.Vector,
			chunk:  e.Chunk,
		})
		ix.nextID++
	}
	ix.dimensions = dims
	ix.initialized = true
	return nil
}

// Search returns the top k records by descending cosine similarity.
// Ties are broken by insertion order, earlier record first. Fewer than
// k stored records returns all of them.
func (ix *Index) Search(_ context.Context, query []float32, k int) ([]domain.ScoredChunk, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if !ix.initialized {
		return nil, domain.ErrIndexNotInitialized
	}
	if len(query) != ix.dimensions {
		return nil, fmt.Errorf("%w: query has dimension %d, index expects %d",
			domain.ErrInvalidInput, len(query), ix.dimensions)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}

	scored := make([]domain.ScoredChunk, len(ix.records))
	for i, r := range ix.records {
		scored[i] = domain.ScoredChunk{
			Chunk: r.chunk,
			Score: CosineSimilarity(query, r.vector),
		}
	}

	// Stable sort keeps insertion order for equal scores.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k < len(scored) {
		scored = scored[:k]
	}
	return scored, nil
}

// Initialized reports whether any record has ever been appended.
func (ix *Index) Initialized() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.initialized
}

// Len returns the number of stored records.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.records)
}

// Dimensions returns the vector length, or 0 before the first append.
func (ix *Index) Dimensions() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.dimensions
}

// Type identifies the index implementation for the debug endpoint.
func (ix *Index) Type() string {
	return "memory"
}

// CosineSimilarity computes the cosine of the angle between two vectors:
// dot(a,b) / (||a|| * ||b||). A zero-norm vector has similarity 0 rather
// than dividing by zero. Accumulation happens in float64 for stability.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		av := float64(a[i])
		bv := float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
