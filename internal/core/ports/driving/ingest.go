// Package driving provides interfaces for application entry points (primary/inbound ports).
package driving

import (
	"context"

	"github.com/resumind/ragserver/internal/core/domain"
)

// IngestionService coordinates chunking, embedding and indexing of documents.
type IngestionService interface {
	// IngestText ingests already-extracted plain text.
	// opts may be nil to use the configured defaults.
	IngestText(ctx context.Context, text string, metadata map[string]string, opts *domain.IngestOptions) (domain.IngestStats, error)

	// IngestFile extracts text from the file at path and ingests it.
	// Unsupported extensions fail with domain.ErrUnsupportedFileType.
	IngestFile(ctx context.Context, path string, metadata map[string]string) (domain.IngestStats, error)

	// IngestFiles ingests multiple files with per-file error isolation:
	// one failing file never aborts the others.
	IngestFiles(ctx context.Context, paths []string, metadata map[string]string) (domain.BatchResult, error)
}
