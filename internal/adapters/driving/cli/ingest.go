package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/resumind/ragserver/internal/adapters/driven/vectorindex/memory"
	"github.com/resumind/ragserver/internal/config"
	"github.com/resumind/ragserver/internal/core/services"
	"github.com/resumind/ragserver/internal/extractors"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest FILE...",
	Short: "Chunk and embed documents, reporting per-file results",
	Long: `Ingest runs the full pipeline (extract, chunk, embed) against each
file and prints per-file outcomes. The index is in-memory, so this is a
dry run of the pipeline: it validates files and provider connectivity
without a running server.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	defer embedder.Close()

	ingester := services.NewIngestionService(
		embedder, memory.New(), extractors.Defaults(),
		cfg.Chunking.Size, cfg.Chunking.Overlap,
	)

	batch, err := ingester.IngestFiles(cmd.Context(), args, nil)
	if err != nil {
		return err
	}

	failed := 0
	for _, result := range batch.Results {
		if result.Err != nil {
			failed++
			cmd.Printf("FAIL %s: %v\n", result.File, result.Err)
			continue
		}
		cmd.Printf("ok   %s: %d chunks\n", result.File, result.Chunks)
	}
	cmd.Printf("%d files, %d chunks, %d failed\n", len(batch.Results), batch.TotalChunks, failed)

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(batch.Results))
	}
	return nil
}
