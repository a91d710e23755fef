package services

import (
	"context"
	"fmt"

	"github.com/resumind/ragserver/internal/core/domain"
	"github.com/resumind/ragserver/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Texts found in vectors get their mapped embedding; everything else
// gets fallback.
type mockEmbeddingService struct {
	vectors  map[string][]float32
	fallback []float32
	embedErr error
	calls    int
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.calls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	return m.fallback, nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int              { return len(m.fallback) }
func (m *mockEmbeddingService) ModelName() string            { return "mock-embed" }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error                 { return nil }

// mockGenerationService implements driven.GenerationService for
// testing, recording the messages it was given.
type mockGenerationService struct {
	answer      string
	chatErr     error
	called      bool
	gotMessages []domain.ChatMessage
	gotOpts     driven.GenerateOptions
}

func (m *mockGenerationService) Chat(
	_ context.Context, messages []domain.ChatMessage, opts driven.GenerateOptions,
) (string, error) {
	m.called = true
	m.gotMessages = messages
	m.gotOpts = opts
	if m.chatErr != nil {
		return "", m.chatErr
	}
	return m.answer, nil
}

func (m *mockGenerationService) ModelName() string            { return "mock-llm" }
func (m *mockGenerationService) Ping(_ context.Context) error { return nil }
func (m *mockGenerationService) Close() error                 { return nil }

// failingIndex implements driven.VectorIndex and fails every append,
// for exercising index error paths.
type failingIndex struct{}

func (failingIndex) Append(context.Context, []driven.VectorEntry) error { return fmt.Errorf("disk full") }
func (failingIndex) Search(context.Context, []float32, int) ([]domain.ScoredChunk, error) {
	return nil, fmt.Errorf("disk full")
}
func (failingIndex) Initialized() bool { return true }
func (failingIndex) Len() int          { return 0 }
func (failingIndex) Dimensions() int   { return 2 }
func (failingIndex) Type() string      { return "failing" }
