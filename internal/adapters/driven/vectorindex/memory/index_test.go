package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resumind/ragserver/internal/core/domain"
	"github.com/resumind/ragserver/internal/core/ports/driven"
)

func entry(text string, vector ...float32) driven.VectorEntry {
	return driven.VectorEntry{
		Vector: vector,
		Chunk:  domain.Chunk{Text: text},
	}
}

func TestSearch_BeforeFirstAppend(t *testing.T) {
	ix := New()

	_, err := ix.Search(context.Background(), []float32{1, 0}, 4)
	assert.ErrorIs(t, err, domain.ErrIndexNotInitialized)
	assert.False(t, ix.Initialized())
}

func TestAppend_MarksInitialized(t *testing.T) {
	ix := New()

	err := ix.Append(context.Background(), []driven.VectorEntry{entry("a", 1, 0)})
	require.NoError(t, err)

	assert.True(t, ix.Initialized())
	assert.Equal(t, 1, ix.Len())
	assert.Equal(t, 2, ix.Dimensions())
	assert.Equal(t, "memory", ix.Type())
}

func TestAppend_EmptyBatchDoesNotInitialize(t *testing.T) {
	ix := New()

	require.NoError(t, ix.Append(context.Background(), nil))
	assert.False(t, ix.Initialized())
	assert.Equal(t, 0, ix.Len())
}

func TestAppend_RejectsDimensionMismatch(t *testing.T) {
	ix := New()
	require.NoError(t, ix.Append(context.Background(), []driven.VectorEntry{entry("a", 1, 0, 0)}))

	err := ix.Append(context.Background(), []driven.VectorEntry{entry("b", 1, 0)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 1, ix.Len())
}

func TestSearch_RejectsBadArguments(t *testing.T) {
	ix := New()
	require.NoError(t, ix.Append(context.Background(), []driven.VectorEntry{entry("a", 1, 0)}))

	_, err := ix.Search(context.Background(), []float32{1, 0, 0}, 4)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = ix.Search(context.Background(), []float32{1, 0}, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearch_RanksByCosineSimilarity(t *testing.T) {
	ix := New()
	require.NoError(t, ix.Append(context.Background(), []driven.VectorEntry{
		entry("orthogonal", 0, 1),
		entry("exact", 1, 0),
		entry("diagonal", 1, 1),
	}))

	got, err := ix.Search(context.Background(), []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "exact", got[0].Chunk.Text)
	assert.InDelta(t, 1.0, got[0].Score, 1e-9)
	assert.Equal(t, "diagonal", got[1].Chunk.Text)
	assert.Equal(t, "orthogonal", got[2].Chunk.Text)
	assert.InDelta(t, 0.0, got[2].Score, 1e-9)
}

func TestSearch_FewerRecordsThanK(t *testing.T) {
	ix := New()
	require.NoError(t, ix.Append(context.Background(), []driven.VectorEntry{
		entry("a", 1, 0),
		entry("b", 0, 1),
	}))

	got, err := ix.Search(context.Background(), []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSearch_TiesKeepInsertionOrder(t *testing.T) {
	ix := New()
	require.NoError(t, ix.Append(context.Background(), []driven.VectorEntry{
		entry("first", 1, 0),
		entry("second", 1, 0),
		entry("third", 2, 0), // same direction, same cosine
	}))

	got, err := ix.Search(context.Background(), []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "first", got[0].Chunk.Text)
	assert.Equal(t, "second", got[1].Chunk.Text)
	assert.Equal(t, "third", got[2].Chunk.Text)
}

func TestSearch_ZeroVectorScoresZero(t *testing.T) {
	ix := New()
	require.NoError(t, ix.Append(context.Background(), []driven.VectorEntry{
		entry("zero", 0, 0),
	}))

	got, err := ix.Search(context.Background(), []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 0.0, got[0].Score)
}

func TestAppend_AssociativeForRetrieval(t *testing.T) {
	ctx := context.Background()
	batchA := []driven.VectorEntry{entry("a", 1, 0), entry("b", 0.9, 0.1)}
	batchB := []driven.VectorEntry{entry("c", 0.5, 0.5), entry("d", 0, 1)}

	sequential := New()
	require.NoError(t, sequential.Append(ctx, batchA))
	require.NoError(t, sequential.Append(ctx, batchB))

	combined := New()
	require.NoError(t, combined.Append(ctx, append(append([]driven.VectorEntry{}, batchA...), batchB...)))

	query := []float32{1, 0.2}
	for _, k := range []int{1, 2, 4} {
		got1, err := sequential.Search(ctx, query, k)
		require.NoError(t, err)
		got2, err := combined.Search(ctx, query, k)
		require.NoError(t, err)
		assert.Equal(t, got1, got2, "k=%d", k)
	}
}

func TestAppend_ConcurrentBatchesAllLand(t *testing.T) {
	ix := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	appendBatch := func(n int, text string) {
		defer wg.Done()
		entries := make([]driven.VectorEntry, n)
		for i := range entries {
			entries[i] = entry(text, 1, 0)
		}
		assert.NoError(t, ix.Append(ctx, entries))
	}

	wg.Add(2)
	go appendBatch(3, "writer-a")
	go appendBatch(5, "writer-b")

	// Readers run while writers append; they must never observe a
	// partial batch, only 0, 3, 5 or 8 records.
	var readers sync.WaitGroup
	for i := 0; i < 4; i++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for j := 0; j < 100; j++ {
				n := ix.Len()
				assert.Contains(t, []int{0, 3, 5, 8}, n)
			}
		}()
	}

	wg.Wait()
	readers.Wait()

	assert.Equal(t, 8, ix.Len())

	got, err := ix.Search(ctx, []float32{1, 0}, 100)
	require.NoError(t, err)
	assert.Len(t, got, 8)
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, want: 1},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "zero norm", a: []float32{0, 0}, b: []float32{1, 1}, want: 0},
		{name: "length mismatch", a: []float32{1}, b: []float32{1, 1}, want: 0},
		{name: "both empty", a: nil, b: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}
