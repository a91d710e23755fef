package driven

import "context"

// Extractor converts an uploaded file into plain text.
// The ingestion pipeline itself only consumes extracted text plus a
// source-kind tag; format parsing lives behind this port.
type Extractor interface {
	// Kind is the source-kind tag recorded in chunk metadata ("pdf", "txt", ...).
	Kind() string

	// Extensions lists the lower-cased file extensions this extractor
	// handles, including the leading dot.
	Extensions() []string

	// Extract reads the file at path and returns its plain text content.
	Extract(ctx context.Context, path string) (string, error)
}
