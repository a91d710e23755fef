package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/resumind/ragserver/internal/core/domain"
	"github.com/resumind/ragserver/internal/core/ports/driven"
	"github.com/resumind/ragserver/internal/core/ports/driving"
)

// Ensure PlainChatService implements the interface.
var _ driving.PlainChatService = (*PlainChatService)(nil)

// PlainChatService answers directly from the model without retrieval.
// It backs the non-RAG chat endpoint.
type PlainChatService struct {
	generator    driven.GenerationService
	systemPrompt string
	generate     driven.GenerateOptions
}

// NewPlainChatService creates a plain chat service. systemPrompt may be
// empty, in which case no default system message is sent.
func NewPlainChatService(
	generator driven.GenerationService, systemPrompt string, generate driven.GenerateOptions,
) *PlainChatService {
	return &PlainChatService{
		generator:    generator,
		systemPrompt: systemPrompt,
		generate:     generate,
	}
}

// Chat sends message with the supplied history. A non-empty
// systemPrompt overrides the configured one for this call.
func (s *PlainChatService) Chat(
	ctx context.Context, message string, history []domain.ChatMessage, systemPrompt string,
) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("%w: empty message", domain.ErrInvalidInput)
	}

	if systemPrompt == "" {
		systemPrompt = s.systemPrompt
	}

	messages := make([]domain.ChatMessage, 0, len(history)+2)
	if systemPrompt != "" {
		messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: systemPrompt})
	}
	for _, msg := range history {
		if !domain.ValidRole(msg.Role) {
			continue
		}
		messages = append(messages, msg)
	}
	messages = append(messages, domain.ChatMessage{Role: domain.RoleUser, Content: message})

	answer, err := s.generator.Chat(ctx, messages, s.generate)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationProvider, err)
	}
	return answer, nil
}
