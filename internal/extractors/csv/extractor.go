// Package csv extracts text from CSV files.
//
// Each data row becomes a block of "header: value" lines so that row
// context survives chunking; blocks are separated by blank lines.
package csv

import (
	"context"
	enccsv "encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/resumind/ragserver/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles CSV documents.
type Extractor struct{}

// New creates a new CSV extractor.
func New() *Extractor {
	return &Extractor{}
}

// Kind returns the source-kind tag.
func (e *Extractor) Kind() string {
	return "csv"
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".csv"}
}

// Extract reads the file and renders each record against the header row.
func (e *Extractor) Extract(_ context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := enccsv.NewReader(f)
	reader.FieldsPerRecord = -1 // tolerate ragged rows

	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return "", nil
	}

	header := records[0]

	var out strings.Builder
	for i, row := range records[1:] {
		if i > 0 {
			out.WriteString("\n\n")
		}
		for j, field := range row {
			if j > 0 {
				out.WriteString("\n")
			}
			if j < len(header) {
				out.WriteString(header[j])
				out.WriteString(": ")
			}
			out.WriteString(field)
		}
	}

	// A header-only file still carries the column names.
	if len(records) == 1 {
		out.WriteString(strings.Join(header, ", "))
	}

	return out.String(), nil
}
