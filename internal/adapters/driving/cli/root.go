// Package cli wires configuration, adapters and services behind the
// ragserver command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/resumind/ragserver/internal/adapters/driven/embedding/ollama"
	"github.com/resumind/ragserver/internal/adapters/driven/embedding/openai"
	"github.com/resumind/ragserver/internal/adapters/driven/embedding/throttle"
	genollama "github.com/resumind/ragserver/internal/adapters/driven/generation/ollama"
	genopenai "github.com/resumind/ragserver/internal/adapters/driven/generation/openai"
	"github.com/resumind/ragserver/internal/config"
	"github.com/resumind/ragserver/internal/core/ports/driven"
	"github.com/resumind/ragserver/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verbose    bool
	configPath string
)

// rootCmd is the base command; subcommands register themselves in init.
var rootCmd = &cobra.Command{
	Use:   "ragserver",
	Short: "Retrieval-augmented chat over your own documents",
	Long: `ragserver ingests documents (PDF, DOCX, CSV, plain text), indexes
them as embeddings, and answers questions grounded in their content.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to TOML config file")
}

// Execute runs the command tree. v overrides the build version when
// non-empty.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.Execute()
}

// newEmbedder builds the configured embedding service, throttled when
// a request rate is set.
func newEmbedder(cfg config.Config) (driven.EmbeddingService, error) {
	var (
		embedder driven.EmbeddingService
		err      error
	)
	switch cfg.Embedding.Provider {
	case "openai":
		embedder, err = openai.NewEmbeddingService(openai.Config{
			APIKey:  cfg.Embedding.APIKey(),
			BaseURL: cfg.Embedding.BaseURL,
			Model:   cfg.Embedding.Model,
		})
		if err != nil {
			return nil, err
		}
	case "ollama", "":
		embedder = ollama.NewEmbeddingService(ollama.Config{
			BaseURL: cfg.Embedding.BaseURL,
			Model:   cfg.Embedding.Model,
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}
	return throttle.Wrap(embedder, cfg.Embedding.RequestsPerSecond), nil
}

// newGenerator builds the configured generation service.
func newGenerator(cfg config.Config) (driven.GenerationService, error) {
	switch cfg.Generation.Provider {
	case "openai":
		return genopenai.NewGenerationService(genopenai.Config{
			APIKey:  cfg.Generation.APIKey(),
			BaseURL: cfg.Generation.BaseURL,
			Model:   cfg.Generation.Model,
		})
	case "ollama", "":
		return genollama.NewGenerationService(genollama.Config{
			BaseURL: cfg.Generation.BaseURL,
			Model:   cfg.Generation.Model,
		}), nil
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.Generation.Provider)
	}
}
