// Package extractors resolves file extensions to text extractors.
// The ingestion pipeline only ever sees extracted plain text plus a
// source-kind tag; everything format-specific lives in the extractor
// packages below this one.
package extractors

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/resumind/ragserver/internal/core/domain"
	"github.com/resumind/ragserver/internal/core/ports/driven"
	"github.com/resumind/ragserver/internal/extractors/csv"
	"github.com/resumind/ragserver/internal/extractors/docx"
	"github.com/resumind/ragserver/internal/extractors/pdf"
	"github.com/resumind/ragserver/internal/extractors/plaintext"
)

// Registry maps lower-cased file extensions to extractors.
type Registry struct {
	byExt map[string]driven.Extractor
}

// NewRegistry creates a registry containing the given extractors.
func NewRegistry(extractors ...driven.Extractor) *Registry {
	r := &Registry{byExt: make(map[string]driven.Extractor)}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// Defaults returns a registry with the built-in extractors:
// plain text, CSV, DOCX and PDF.
func Defaults() *Registry {
	return NewRegistry(
		plaintext.New(),
		csv.New(),
		docx.New(),
		pdf.New(),
	)
}

// Register adds an extractor. Later registrations win on conflicting
// extensions.
func (r *Registry) Register(e driven.Extractor) {
	for _, ext := range e.Extensions() {
		r.byExt[strings.ToLower(ext)] = e
	}
}

// ForPath resolves the extractor for the file at path by extension.
// Unknown extensions fail with domain.ErrUnsupportedFileType.
func (r *Registry) ForPath(path string) (driven.Extractor, error) {
	ext := strings.ToLower(filepath.Ext(path))
	e, ok := r.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, ext)
	}
	return e, nil
}

// Kinds lists the registered extensions, for logging.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		kinds = append(kinds, ext)
	}
	return kinds
}
