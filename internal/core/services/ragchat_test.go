package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resumind/ragserver/internal/adapters/driven/vectorindex/memory"
	"github.com/resumind/ragserver/internal/core/domain"
	"github.com/resumind/ragserver/internal/core/ports/driven"
)

const pythonSentence = "Candidate has 5 years of Python experience."

// newRAGFixture builds an orchestrator over a real in-memory index
// seeded with two chunks on different topics. The embedder maps texts
// to fixed directions so retrieval order is deterministic.
func newRAGFixture(t *testing.T, cfg RAGChatConfig) (*RAGChatService, *mockGenerationService, *memory.Index) {
	t.Helper()

	embedder := &mockEmbeddingService{
		fallback: []float32{1, 0},
		vectors: map[string][]float32{
			"What Python experience does the candidate have?": {1, 0},
		},
	}
	generator := &mockGenerationService{answer: "The candidate has 5 years of Python experience."}
	index := memory.New()

	require.NoError(t, index.Append(context.Background(), []driven.VectorEntry{
		{Vector: []float32{1, 0}, Chunk: domain.Chunk{
			Text:     pythonSentence,
			Metadata: map[string]string{"original_name": "resume.txt"},
		}},
		{Vector: []float32{0, 1}, Chunk: domain.Chunk{
			Text: "Hobbies include hiking and chess.",
		}},
	}))

	return NewRAGChatService(embedder, generator, index, cfg), generator, index
}

func TestRAGChat_EmptyQuestion(t *testing.T) {
	svc, generator, _ := newRAGFixture(t, RAGChatConfig{})

	_, err := svc.Chat(context.Background(), "  ", nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.False(t, generator.called)
}

func TestRAGChat_NoCorpusFailsFast(t *testing.T) {
	embedder := &mockEmbeddingService{fallback: []float32{1, 0}}
	generator := &mockGenerationService{answer: "should never be produced"}
	svc := NewRAGChatService(embedder, generator, memory.New(), RAGChatConfig{})

	_, err := svc.Chat(context.Background(), "Anything?", nil, nil)
	assert.ErrorIs(t, err, domain.ErrNoCorpus)
	assert.False(t, generator.called, "generator must not be called without a corpus")
	assert.Equal(t, 0, embedder.calls, "question must not be embedded without a corpus")
}

func TestRAGChat_RetrievesRelevantSource(t *testing.T) {
	svc, _, _ := newRAGFixture(t, RAGChatConfig{})

	result, err := svc.Chat(context.Background(),
		"What Python experience does the candidate have?", nil, &domain.ChatOptions{TopK: 1})
	require.NoError(t, err)

	assert.Equal(t, "The candidate has 5 years of Python experience.", result.Answer)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, pythonSentence, result.Sources[0].Text)
	assert.Equal(t, "resume.txt", result.Sources[0].Metadata["original_name"])
}

func TestRAGChat_DefaultTopK(t *testing.T) {
	svc, _, index := newRAGFixture(t, RAGChatConfig{})

	// Grow the corpus past the default so truncation is observable.
	for i := 0; i < 6; i++ {
		require.NoError(t, index.Append(context.Background(), []driven.VectorEntry{
			{Vector: []float32{1, 1}, Chunk: domain.Chunk{Text: fmt.Sprintf("filler %d", i)}},
		}))
	}

	result, err := svc.Chat(context.Background(),
		"What Python experience does the candidate have?", nil, nil)
	require.NoError(t, err)
	assert.Len(t, result.Sources, DefaultTopK)
}

func TestRAGChat_PromptAssembly(t *testing.T) {
	svc, generator, _ := newRAGFixture(t, RAGChatConfig{})

	history := []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "earlier question"},
		{Role: domain.RoleAssistant, Content: "earlier answer"},
		{Role: "tool", Content: "must be dropped"},
	}
	question := "What Python experience does the candidate have?"

	_, err := svc.Chat(context.Background(), question, history, nil)
	require.NoError(t, err)

	msgs := generator.gotMessages
	require.GreaterOrEqual(t, len(msgs), 4)

	assert.Equal(t, domain.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, pythonSentence)
	assert.NotContains(t, msgs[0].Content, "{context}")

	assert.Equal(t, domain.ChatMessage{Role: domain.RoleUser, Content: "earlier question"}, msgs[1])
	assert.Equal(t, domain.ChatMessage{Role: domain.RoleAssistant, Content: "earlier answer"}, msgs[2])
	assert.Equal(t, domain.ChatMessage{Role: domain.RoleUser, Content: question}, msgs[len(msgs)-1])

	for _, m := range msgs {
		assert.NotEqual(t, "tool", m.Role)
	}
}

func TestRAGChat_CustomSystemPromptWithoutPlaceholder(t *testing.T) {
	svc, generator, _ := newRAGFixture(t, RAGChatConfig{
		SystemPrompt: "You are a sommelier.",
	})

	_, err := svc.Chat(context.Background(),
		"What Python experience does the candidate have?", nil, nil)
	require.NoError(t, err)

	system := generator.gotMessages[0].Content
	assert.True(t, strings.HasPrefix(system, "You are a sommelier."))
	assert.Contains(t, system, "Context:")
	assert.Contains(t, system, pythonSentence)
}

func TestRAGChat_ContextBudgetDropsLowestScoring(t *testing.T) {
	// Budget covers the best chunk only; the off-topic one must go.
	svc, generator, _ := newRAGFixture(t, RAGChatConfig{
		ContextBudget: len(pythonSentence),
	})

	result, err := svc.Chat(context.Background(),
		"What Python experience does the candidate have?", nil, nil)
	require.NoError(t, err)

	system := generator.gotMessages[0].Content
	assert.Contains(t, system, pythonSentence)
	assert.NotContains(t, system, "Hobbies include hiking and chess.")

	// Sources still report everything retrieved, budget or not.
	assert.Len(t, result.Sources, 2)
}

func TestRAGChat_OversizedTopChunkTruncated(t *testing.T) {
	embedder := &mockEmbeddingService{fallback: []float32{1, 0}}
	generator := &mockGenerationService{answer: "ok"}
	index := memory.New()

	long := strings.Repeat("x", 100)
	require.NoError(t, index.Append(context.Background(), []driven.VectorEntry{
		{Vector: []float32{1, 0}, Chunk: domain.Chunk{Text: long}},
	}))

	svc := NewRAGChatService(embedder, generator, index, RAGChatConfig{ContextBudget: 10})
	_, err := svc.Chat(context.Background(), "question", nil, nil)
	require.NoError(t, err)

	system := generator.gotMessages[0].Content
	assert.Contains(t, system, strings.Repeat("x", 10))
	assert.NotContains(t, system, strings.Repeat("x", 11))
}

func TestRAGChat_EmbedderFailure(t *testing.T) {
	svc, generator, _ := newRAGFixture(t, RAGChatConfig{})

	embedder := &mockEmbeddingService{embedErr: fmt.Errorf("connection refused")}
	svc.embedder = embedder

	_, err := svc.Chat(context.Background(), "question", nil, nil)
	assert.ErrorIs(t, err, domain.ErrEmbeddingProvider)
	assert.False(t, generator.called)
}

func TestRAGChat_GeneratorFailure(t *testing.T) {
	svc, generator, _ := newRAGFixture(t, RAGChatConfig{})
	generator.chatErr = fmt.Errorf("model overloaded")

	_, err := svc.Chat(context.Background(),
		"What Python experience does the candidate have?", nil, nil)
	assert.ErrorIs(t, err, domain.ErrGenerationProvider)
}

func TestRAGChat_GenerateOptionsPassedThrough(t *testing.T) {
	svc, generator, _ := newRAGFixture(t, RAGChatConfig{
		Generate: driven.GenerateOptions{MaxTokens: 512, Temperature: 0.2},
	})

	_, err := svc.Chat(context.Background(), "question", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 512, generator.gotOpts.MaxTokens)
	assert.InDelta(t, 0.2, generator.gotOpts.Temperature, 1e-9)
}
