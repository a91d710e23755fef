// Package services implements the application core: document ingestion
// and retrieval-augmented chat, wired to infrastructure through the
// driven ports.
package services

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/resumind/ragserver/internal/chunker"
	"github.com/resumind/ragserver/internal/core/domain"
	"github.com/resumind/ragserver/internal/core/ports/driven"
	"github.com/resumind/ragserver/internal/core/ports/driving"
	"github.com/resumind/ragserver/internal/extractors"
	"github.com/resumind/ragserver/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// IngestionService coordinates chunking, embedding and index insertion
// for documents. It holds no per-document state; the vector index is
// the only shared resource it mutates.
type IngestionService struct {
	embedder     driven.EmbeddingService
	index        driven.VectorIndex
	registry     *extractors.Registry
	chunkSize    int
	chunkOverlap int
}

// NewIngestionService creates an ingestion service. Zero chunk
// parameters fall back to the chunker defaults (1000/200).
func NewIngestionService(
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	registry *extractors.Registry,
	chunkSize, chunkOverlap int,
) *IngestionService {
	if chunkSize <= 0 {
		chunkSize = chunker.DefaultChunkSize
	}
	if chunkOverlap <= 0 {
		chunkOverlap = chunker.DefaultChunkOverlap
	}
	return &IngestionService{
		embedder:     embedder,
		index:        index,
		registry:     registry,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// IngestText chunks, embeds and indexes already-extracted plain text.
// The full batch of records becomes visible to queries atomically.
func (s *IngestionService) IngestText(
	ctx context.Context, text string, metadata map[string]string, opts *domain.IngestOptions,
) (domain.IngestStats, error) {
	logger.Section("Ingestion")

	if strings.TrimSpace(text) == "" {
		return domain.IngestStats{}, domain.ErrEmptyDocument
	}

	size, overlap := s.chunkSize, s.chunkOverlap
	if opts != nil {
		if opts.ChunkSize > 0 {
			size = opts.ChunkSize
		}
		if opts.ChunkOverlap > 0 {
			overlap = opts.ChunkOverlap
		}
	}

	splitter, err := chunker.New(size, overlap)
	if err != nil {
		return domain.IngestStats{}, err
	}

	chunks := splitter.Split(text)
	if len(chunks) == 0 {
		return domain.IngestStats{}, domain.ErrEmptyDocument
	}
	logger.Debug("Split document into %d chunks (size=%d, overlap=%d)", len(chunks), size, overlap)

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}

	// Embedding happens before the index lock is ever taken; the only
	// blocking external call never holds up readers.
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return domain.IngestStats{}, fmt.Errorf("%w: %v", domain.ErrEmbeddingProvider, err)
	}
	if len(vectors) != len(chunks) {
		return domain.IngestStats{}, fmt.Errorf("%w: got %d embeddings for %d chunks",
			domain.ErrEmbeddingProvider, len(vectors), len(chunks))
	}

	entries := make([]driven.VectorEntry, len(chunks))
	for i := range chunks {
		chunks[i].Metadata = maps.Clone(metadata)
		entries[i] = driven.VectorEntry{Vector: vectors[i], Chunk: chunks[i]}
	}

	if err := s.index.Append(ctx, entries); err != nil {
		return domain.IngestStats{}, fmt.Errorf("append to index: %w", err)
	}

	logger.Info("Ingested %d chunks, index now holds %d records", len(chunks), s.index.Len())
	return domain.IngestStats{ChunksCount: len(chunks)}, nil
}

// IngestFile extracts text from the file at path and ingests it.
func (s *IngestionService) IngestFile(
	ctx context.Context, path string, metadata map[string]string,
) (domain.IngestStats, error) {
	extractor, err := s.registry.ForPath(path)
	if err != nil {
		return domain.IngestStats{}, err
	}

	logger.Debug("Extracting %s as %s", path, extractor.Kind())
	text, err := extractor.Extract(ctx, path)
	if err != nil {
		return domain.IngestStats{}, fmt.Errorf("extract %s: %w", path, err)
	}

	meta := maps.Clone(metadata)
	if meta == nil {
		meta = make(map[string]string)
	}
	meta["document_id"] = uuid.New().String()
	meta["original_name"] = filepath.Base(path)
	meta["source_kind"] = extractor.Kind()

	return s.IngestText(ctx, text, meta, nil)
}

// IngestFiles ingests multiple files with per-file error isolation.
// One failing file never aborts the others; the aggregate reports
// per-file outcomes and a running chunk total.
func (s *IngestionService) IngestFiles(
	ctx context.Context, paths []string, metadata map[string]string,
) (domain.BatchResult, error) {
	var batch domain.BatchResult
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return batch, err
		}

		stats, err := s.IngestFile(ctx, path, metadata)
		result := domain.FileResult{File: filepath.Base(path), Chunks: stats.ChunksCount, Err: err}
		if err != nil {
			logger.Warn("Ingestion of %s failed: %v", path, err)
		} else {
			batch.TotalChunks += stats.ChunksCount
		}
		batch.Results = append(batch.Results, result)
	}
	return batch, nil
}

// IsClientError reports whether err is caused by the caller's input
// rather than by infrastructure, for transport-level status mapping.
func IsClientError(err error) bool {
	return errors.Is(err, domain.ErrEmptyDocument) ||
		errors.Is(err, domain.ErrUnsupportedFileType) ||
		errors.Is(err, domain.ErrInvalidChunkConfig) ||
		errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrNoCorpus) ||
		errors.Is(err, domain.ErrIndexNotInitialized)
}
