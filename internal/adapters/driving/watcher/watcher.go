// Package watcher ingests files dropped into a watched directory.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/resumind/ragserver/internal/core/ports/driving"
	"github.com/resumind/ragserver/internal/logger"
)

// settleDelay is how long a new file's size must stay unchanged before
// ingestion, so a writer that is still copying does not get read
// half-done.
const settleDelay = 500 * time.Millisecond

// Watcher ingests files as they appear in a directory. Ingestion
// failures are logged and skipped; the watcher keeps running.
type Watcher struct {
	ingester driving.IngestionService
	dir      string
	settle   time.Duration
}

// New creates a watcher over dir, creating it if needed.
func New(ingester driving.IngestionService, dir string) (*Watcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create watch dir %s: %w", dir, err)
	}
	return &Watcher{ingester: ingester, dir: dir, settle: settleDelay}, nil
}

// Run watches until ctx is cancelled. Files already present at start
// are ingested first.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logger.Info("Watching %s for new documents", w.dir)

	w.ingestExisting(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			go w.ingestWhenSettled(ctx, event.Name)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// ingestExisting picks up files that were dropped while the server was
// down.
func (w *Watcher) ingestExisting(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		logger.Warn("Reading watch dir failed: %v", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w.ingest(ctx, filepath.Join(w.dir, entry.Name()))
	}
}

// ingestWhenSettled polls until the file size stops changing between
// two checks a settle interval apart, then ingests. Runs in its own
// goroutine so a slow copy never delays other events.
func (w *Watcher) ingestWhenSettled(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}
	size := info.Size()

	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(w.settle):
		}

		info, err = os.Stat(path)
		if err != nil {
			return
		}
		if info.Size() == size {
			break
		}
		size = info.Size()
	}

	w.ingest(ctx, path)
}

func (w *Watcher) ingest(ctx context.Context, path string) {
	stats, err := w.ingester.IngestFile(ctx, path, map[string]string{"source": "watcher"})
	if err != nil {
		logger.Warn("Ingesting %s failed: %v", path, err)
		return
	}
	logger.Info("Ingested %s (%d chunks)", filepath.Base(path), stats.ChunksCount)
}
