package detection

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher calls onChange when a file is written or replaced
type Watcher struct {
	path     string
	onChange func()
	debounce time.Duration
	logger   *slog.Logger
}

// NewWatcher creates a watcher for path
func NewWatcher(path string, onChange func(), logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		path:     path,
		onChange: onChange,
		debounce: 500 * time.Millisecond,
		logger:   logger.With("component", "watcher"),
	}
}

// WithDebounce sets the debounce duration
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Watch blocks until ctx is cancelled or the watcher fails.
// The directory is watched so that editors replacing the file are noticed.
// When Watch returns no onChange call is pending or running.
func (w *Watcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	filename := filepath.Base(w.path)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	w.logger.Info("Watching file for changes", "path", w.path)

	var (
		debounceTimer *time.Timer
		running       sync.WaitGroup
	)
	fire := func() {
		defer running.Done()
		if ctx.Err() != nil {
			return
		}
		w.logger.Info("File changed", "path", w.path)
		w.onChange()
	}
	// stopPending cancels a scheduled call that has not started yet
	stopPending := func() {
		if debounceTimer != nil && debounceTimer.Stop() {
			running.Done()
		}
	}
	defer func() {
		stopPending()
		running.Wait()
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			stopPending()
			running.Add(1)
			debounceTimer = time.AfterFunc(w.debounce, fire)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", "error", err)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
