// Package pdf extracts text from PDF files by shelling out to the
// poppler pdftotext utility. The command invocation is behind a
// CommandRunner so tests can substitute a fake.
package pdf

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/resumind/ragserver/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// DefaultCommand is the external tool used for extraction.
const DefaultCommand = "pdftotext"

// CommandRunner executes an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands via os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Extractor handles PDF documents.
type Extractor struct {
	runner  CommandRunner
	command string
}

// New creates a PDF extractor using the real pdftotext binary.
func New() *Extractor {
	return &Extractor{runner: execRunner{}, command: DefaultCommand}
}

// NewWithRunner creates a PDF extractor with a custom runner, for tests.
func NewWithRunner(r CommandRunner) *Extractor {
	return &Extractor{runner: r, command: DefaultCommand}
}

// Kind returns the source-kind tag.
func (e *Extractor) Kind() string {
	return "pdf"
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".pdf"}
}

// Extract converts the PDF to text. "-" writes the result to stdout;
// -layout keeps the visual ordering, which matters for resumes and
// other column-heavy documents.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	out, err := e.runner.Run(ctx, e.command, "-layout", path, "-")
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", e.command, path, err)
	}
	return string(out), nil
}
