package pipeline

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWatcher(t *testing.T, dataDir string, debounce time.Duration) *Watcher {
	t.Helper()
	w, err := NewWatcher(dataDir, []string{"risks.xlsx"}, debounce,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return w
}

func TestWatcherPendingFlush(t *testing.T) {
	w := newTestWatcher(t, t.TempDir(), 0)
	t.Cleanup(func() { w.watcher.Close() })

	assert.False(t, w.flushPending())

	w.handleEvent(fsnotify.Event{Name: "/data/risks.xlsx", Op: fsnotify.Write})
	w.handleEvent(fsnotify.Event{Name: "/data/risks.xlsx", Op: fsnotify.Create})
	w.handleEvent(fsnotify.Event{Name: "/data/unrelated.xlsx", Op: fsnotify.Write})
	w.handleEvent(fsnotify.Event{Name: "/data/risks.xlsx", Op: fsnotify.Remove})

	// One flush per accumulated batch, then the pending set is clear.
	assert.True(t, w.flushPending())
	assert.False(t, w.flushPending())
}

func TestWatcherRerunOnWrite(t *testing.T) {
	dataDir := t.TempDir()
	path := filepath.Join(dataDir, "risks.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	w := newTestWatcher(t, dataDir, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	reran := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(context.Context) {
			select {
			case reran <- struct{}{}:
			default:
			}
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))

	select {
	case <-reran:
	case <-ctx.Done():
		t.Fatal("pipeline was not rerun after workbook write")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatcherStopsOnCancel(t *testing.T) {
	w := newTestWatcher(t, t.TempDir(), time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.Run(ctx, func(context.Context) { t.Error("rerun must not fire") })
	assert.ErrorIs(t, err, context.Canceled)
}
