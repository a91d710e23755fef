// Package config loads server configuration from a TOML file with
// sensible defaults for every field, so an empty or missing file still
// yields a runnable local setup.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Server holds HTTP listener settings.
type Server struct {
	// Addr is the listen address (default: :8080).
	Addr string `toml:"addr"`

	// UploadDir is where uploaded files are saved before ingestion.
	UploadDir string `toml:"upload_dir"`

	// MaxUploadMB caps the size of a single uploaded file.
	MaxUploadMB int64 `toml:"max_upload_mb"`
}

// Chunking holds text splitter settings.
type Chunking struct {
	Size    int `toml:"size"`
	Overlap int `toml:"overlap"`
}

// Retrieval holds RAG retrieval settings.
type Retrieval struct {
	// TopK is the number of chunks retrieved per question.
	TopK int `toml:"top_k"`

	// ContextBudget caps the assembled context size in bytes.
	ContextBudget int `toml:"context_budget"`
}

// Embedding selects and tunes the embedding provider.
type Embedding struct {
	// Provider is "openai" or "ollama".
	Provider string `toml:"provider"`

	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`

	// APIKeyEnv names the environment variable holding the API key.
	// The key itself never lives in the config file.
	APIKeyEnv string `toml:"api_key_env"`

	// RequestsPerSecond throttles provider calls; 0 disables throttling.
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// Generation selects and tunes the chat completion provider.
type Generation struct {
	// Provider is "openai" or "ollama".
	Provider string `toml:"provider"`

	Model     string `toml:"model"`
	BaseURL   string `toml:"base_url"`
	APIKeyEnv string `toml:"api_key_env"`

	Temperature float64 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
}

// Chat holds prompt settings.
type Chat struct {
	// SystemPrompt overrides the built-in system prompt when non-empty.
	SystemPrompt string `toml:"system_prompt"`
}

// Watch holds directory-watcher settings.
type Watch struct {
	// Dir is a directory to watch for dropped files; empty disables it.
	Dir string `toml:"dir"`
}

// Config is the full server configuration.
type Config struct {
	Server     Server     `toml:"server"`
	Chunking   Chunking   `toml:"chunking"`
	Retrieval  Retrieval  `toml:"retrieval"`
	Embedding  Embedding  `toml:"embedding"`
	Generation Generation `toml:"generation"`
	Chat       Chat       `toml:"chat"`
	Watch      Watch      `toml:"watch"`
}

// Default returns the configuration used when no file overrides it.
// Both providers default to a local Ollama instance so the server runs
// without any credentials.
func Default() Config {
	return Config{
		Server: Server{
			Addr:        ":8080",
			UploadDir:   "uploads",
			MaxUploadMB: 20,
		},
		Embedding: Embedding{
			Provider:  "ollama",
			APIKeyEnv: "OPENAI_API_KEY",
		},
		Generation: Generation{
			Provider:  "ollama",
			APIKeyEnv: "OPENAI_API_KEY",
		},
	}
}

// Load reads the TOML file at path over the defaults. A missing file
// is not an error when path is empty; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// APIKey resolves the embedding provider's API key from the
// environment. Empty when unset.
func (e Embedding) APIKey() string {
	if e.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(e.APIKeyEnv)
}

// APIKey resolves the generation provider's API key from the
// environment. Empty when unset.
func (g Generation) APIKey() string {
	if g.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(g.APIKeyEnv)
}
