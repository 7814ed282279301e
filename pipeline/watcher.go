package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce is how long the watcher waits for further writes before
// triggering a rerun. Spreadsheet editors save in several bursts.
const defaultDebounce = 500 * time.Millisecond

// Watcher reruns the pipeline when a configured workbook changes on disk.
type Watcher struct {
	dataDir   string
	filenames map[string]bool
	debounce  time.Duration
	watcher   *fsnotify.Watcher
	logger    *slog.Logger

	pendingMu sync.Mutex
	pending   map[string]struct{}
}

// NewWatcher watches dataDir (recursively) for writes to the named
// workbook files.
func NewWatcher(dataDir string, filenames []string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	names := make(map[string]bool, len(filenames))
	for _, f := range filenames {
		names[f] = true
	}
	return &Watcher{
		dataDir:   dataDir,
		filenames: names,
		debounce:  debounce,
		watcher:   fsw,
		logger:    logger,
		pending:   make(map[string]struct{}),
	}, nil
}

// Run blocks, invoking rerun after each debounced batch of workbook
// changes, until the context is cancelled.
func (w *Watcher) Run(ctx context.Context, rerun func(context.Context)) error {
	if err := w.addWatchesRecursive(w.dataDir); err != nil {
		return err
	}
	defer w.watcher.Close()

	w.logger.Info("watching for workbook changes",
		"data_dir", w.dataDir,
		"debounce", w.debounce)

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)

		case <-ticker.C:
			if w.flushPending() {
				rerun(ctx)
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
		return
	}
	base := filepath.Base(event.Name)
	if !w.filenames[base] {
		// New directories need watches; anything else is noise.
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watcher.Add(event.Name); err != nil {
				w.logger.Warn("failed to watch directory", "path", event.Name, "error", err)
			}
		}
		return
	}
	w.pendingMu.Lock()
	w.pending[base] = struct{}{}
	w.pendingMu.Unlock()
	w.logger.Debug("workbook change detected", "file", base)
}

// flushPending reports whether any workbook changes accumulated since the
// last tick, clearing them.
func (w *Watcher) flushPending() bool {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	if len(w.pending) == 0 {
		return false
	}
	changed := make([]string, 0, len(w.pending))
	for f := range w.pending {
		changed = append(changed, f)
	}
	w.pending = make(map[string]struct{})
	w.logger.Info("workbooks changed, rerunning pipeline", "files", changed)
	return true
}

func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		base := filepath.Base(path)
		if strings.HasPrefix(base, ".") && base != "." && path != root {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}
