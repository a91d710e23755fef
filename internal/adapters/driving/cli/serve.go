package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/resumind/ragserver/internal/adapters/driven/vectorindex/memory"
	"github.com/resumind/ragserver/internal/adapters/driving/httpapi"
	"github.com/resumind/ragserver/internal/adapters/driving/watcher"
	"github.com/resumind/ragserver/internal/config"
	"github.com/resumind/ragserver/internal/core/ports/driven"
	"github.com/resumind/ragserver/internal/core/services"
	"github.com/resumind/ragserver/internal/extractors"
	"github.com/resumind/ragserver/internal/logger"
)

// shutdownTimeout bounds how long in-flight requests may run after a
// termination signal.
const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	defer embedder.Close()

	generator, err := newGenerator(cfg)
	if err != nil {
		return err
	}
	defer generator.Close()

	index := memory.New()
	registry := extractors.Defaults()

	ingester := services.NewIngestionService(
		embedder, index, registry, cfg.Chunking.Size, cfg.Chunking.Overlap,
	)
	ragChat := services.NewRAGChatService(embedder, generator, index, services.RAGChatConfig{
		SystemPrompt:  cfg.Chat.SystemPrompt,
		TopK:          cfg.Retrieval.TopK,
		ContextBudget: cfg.Retrieval.ContextBudget,
		Generate: driven.GenerateOptions{
			MaxTokens:   cfg.Generation.MaxTokens,
			Temperature: cfg.Generation.Temperature,
		},
	})
	plainChat := services.NewPlainChatService(generator, "", driven.GenerateOptions{
		MaxTokens:   cfg.Generation.MaxTokens,
		Temperature: cfg.Generation.Temperature,
	})

	handler := httpapi.NewHandler(
		ingester, ragChat, plainChat, index,
		cfg.Server.UploadDir, cfg.Server.MaxUploadMB<<20,
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Watch.Dir != "" {
		w, err := watcher.New(ingester, cfg.Watch.Dir)
		if err != nil {
			return err
		}
		go func() {
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("Watcher stopped: %v", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: httpapi.NewRouter(handler),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening on %s (embedding=%s, generation=%s)",
			cfg.Server.Addr, embedder.ModelName(), generator.ModelName())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
