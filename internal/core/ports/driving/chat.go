package driving

import (
	"context"

	"github.com/resumind/ragserver/internal/core/domain"
)

// RAGChatService answers questions grounded in the ingested corpus.
type RAGChatService interface {
	// Chat retrieves the chunks most similar to question, assembles a
	// grounded prompt with the supplied history, and delegates to the
	// generation provider. Fails with domain.ErrNoCorpus before any
	// ingestion. opts may be nil for defaults.
	Chat(ctx context.Context, question string, history []domain.ChatMessage, opts *domain.ChatOptions) (*domain.ChatResult, error)
}

// PlainChatService answers without retrieval, straight from the model.
type PlainChatService interface {
	// Chat sends message with optional history and system prompt.
	// An empty systemPrompt uses the configured default.
	Chat(ctx context.Context, message string, history []domain.ChatMessage, systemPrompt string) (string, error)
}
