package driven

import (
	"context"

	"github.com/resumind/ragserver/internal/core/domain"
)

// GenerationService turns an assembled prompt into prose.
// The orchestrator performs a single pass per request; retry policy
// belongs to the caller or a surrounding resilience layer.
//
// Implementations may include:
//   - OpenAI (gpt-4o-mini, gpt-4o)
//   - Ollama (local models)
type GenerationService interface {
	// Chat conducts a multi-turn conversation and returns the
	// assistant's reply verbatim.
	Chat(ctx context.Context, messages []domain.ChatMessage, opts GenerateOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
