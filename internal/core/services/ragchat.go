package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/resumind/ragserver/internal/core/domain"
	"github.com/resumind/ragserver/internal/core/ports/driven"
	"github.com/resumind/ragserver/internal/core/ports/driving"
	"github.com/resumind/ragserver/internal/logger"
)

// Ensure RAGChatService implements the interface.
var _ driving.RAGChatService = (*RAGChatService)(nil)

// Default retrieval parameters.
const (
	// DefaultTopK is the number of chunks retrieved per question.
	DefaultTopK = 4

	// DefaultContextBudget caps the assembled context in bytes.
	// Lowest-scoring chunks are dropped first when the budget is hit.
	DefaultContextBudget = 8000
)

// contextPlaceholder marks where retrieved context goes in the system prompt.
const contextPlaceholder = "{context}"

// DefaultSystemPrompt instructs the model for the resume-screening
// domain. It is configuration: deployments swap it via RAGChatConfig.
const DefaultSystemPrompt = `You are a helpful AI assistant designed for resume filtering.
Your job is to look at the provided resume and the job description and then highlight the following:
1. Match Score (0-100%)
2. Strengths - What makes this candidate a good fit
3. Gaps - What skills or experience are missing
4. Key Insights - Overall assessment

Use the context provided to give specific, detailed answers. If the context doesn't contain relevant information, say so.

Context:
{context}`

// RAGChatConfig configures the orchestrator. Zero values use defaults.
type RAGChatConfig struct {
	// SystemPrompt is the system instruction; "{context}" is replaced
	// with the retrieved context block.
	SystemPrompt string

	// TopK is the default number of chunks to retrieve.
	TopK int

	// ContextBudget is the maximum context size in bytes.
	ContextBudget int

	// Generate tunes the generation call.
	Generate driven.GenerateOptions
}

// RAGChatService answers questions grounded in the ingested corpus:
// embed the question, retrieve the most similar chunks, assemble a
// prompt, generate. Single pass per request, no retries.
type RAGChatService struct {
	embedder  driven.EmbeddingService
	generator driven.GenerationService
	index     driven.VectorIndex
	cfg       RAGChatConfig
}

// NewRAGChatService creates a RAG chat orchestrator.
func NewRAGChatService(
	embedder driven.EmbeddingService,
	generator driven.GenerationService,
	index driven.VectorIndex,
	cfg RAGChatConfig,
) *RAGChatService {
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.ContextBudget <= 0 {
		cfg.ContextBudget = DefaultContextBudget
	}
	return &RAGChatService{
		embedder:  embedder,
		generator: generator,
		index:     index,
		cfg:       cfg,
	}
}

// Chat answers question using only the ingested corpus.
func (s *RAGChatService) Chat(
	ctx context.Context, question string, history []domain.ChatMessage, opts *domain.ChatOptions,
) (*domain.ChatResult, error) {
	logger.Section("RAG Chat")
	logger.Debug("Question: %q", question)

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	// Never answer from general knowledge when nothing was ingested.
	if !s.index.Initialized() {
		logger.Warn("Chat requested before any ingestion")
		return nil, domain.ErrNoCorpus
	}

	queryVector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingProvider, err)
	}
	logger.Debug("Query embedding: %d dimensions", len(queryVector))

	topK := s.cfg.TopK
	if opts != nil && opts.TopK > 0 {
		topK = opts.TopK
	}

	retrieved, err := s.index.Search(ctx, queryVector, topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	logger.Debug("Retrieved %d chunks (topK=%d)", len(retrieved), topK)

	contextBlock, used := s.buildContext(retrieved)
	logger.Debug("Context: %d bytes from %d of %d chunks", len(contextBlock), used, len(retrieved))

	messages := s.buildMessages(contextBlock, history, question)

	answer, err := s.generator.Chat(ctx, messages, s.cfg.Generate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationProvider, err)
	}
	logger.Info("Generated answer (%d bytes)", len(answer))

	sources := make([]domain.RetrievedSource, len(retrieved))
	for i, sc := range retrieved {
		sources[i] = domain.RetrievedSource{
			Text:     sc.Chunk.Text,
			Metadata: sc.Chunk.Metadata,
		}
	}

	return &domain.ChatResult{Answer: answer, Sources: sources}, nil
}

// buildContext joins chunk texts in descending-similarity order,
// separated by blank lines, within the configured budget. Retrieval
// order already sorts best-first, so dropping the tail drops the
// lowest-scoring chunks. Returns the block and how many chunks it used.
func (s *RAGChatService) buildContext(retrieved []domain.ScoredChunk) (string, int) {
	var b strings.Builder
	used := 0
	for _, sc := range retrieved {
		text := sc.Chunk.Text
		if used == 0 && len(text) > s.cfg.ContextBudget {
			// A single oversized chunk is truncated rather than dropped.
			text = text[:s.cfg.ContextBudget]
		}
		add := len(text)
		if used > 0 {
			add += 2 // blank line separator
		}
		if b.Len()+add > s.cfg.ContextBudget {
			break
		}
		if used > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(text)
		used++
	}
	return b.String(), used
}

// buildMessages assembles the prompt: system instruction with the
// context substituted, then the caller's history in order, then the
// current question.
func (s *RAGChatService) buildMessages(
	contextBlock string, history []domain.ChatMessage, question string,
) []domain.ChatMessage {
	system := s.cfg.SystemPrompt
	if strings.Contains(system, contextPlaceholder) {
		system = strings.ReplaceAll(system, contextPlaceholder, contextBlock)
	} else {
		system = system + "\n\nContext:\n" + contextBlock
	}

	messages := make([]domain.ChatMessage, 0, len(history)+2)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: system})
	for _, msg := range history {
		if !domain.ValidRole(msg.Role) {
			continue
		}
		messages = append(messages, msg)
	}
	messages = append(messages, domain.ChatMessage{Role: domain.RoleUser, Content: question})
	return messages
}
