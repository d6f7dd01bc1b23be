// Package watcher monitors the dataset file for changes so refreshes can be
// triggered immediately instead of waiting out the interval.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceWindow = 2 * time.Second

// DataFileWatcher emits a signal whenever the watched dataset file is written,
// created, or removed. Rapid bursts of events (editors, atomic renames)
// collapse into a single signal per debounce window.
type DataFileWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
}

// NewDataFileWatcher creates a watcher for the given dataset file.
func NewDataFileWatcher(path string) (*DataFileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	return &DataFileWatcher{watcher: w, path: filepath.Clean(path), debounce: debounceWindow}, nil
}

// Watch starts monitoring and returns a channel that fires on changes to the
// dataset file. The channel closes when ctx is done.
func (w *DataFileWatcher) Watch(ctx context.Context) (<-chan struct{}, error) {
	// Watch the parent directory: editors and exporters typically replace the
	// file via rename, which drops a watch on the file itself.
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return nil, fmt.Errorf("watch %s: %w", w.path, err)
	}

	changes := make(chan struct{}, 1)

	go func() {
		defer close(changes)

		// The debounce timer is drained in this select so the send into
		// changes always happens from the goroutine that closes it. A timer
		// still armed at shutdown is simply dropped.
		var debounce *time.Timer
		var fire <-chan time.Time
		defer func() {
			if debounce != nil {
				debounce.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case <-fire:
				fire = nil
				select {
				case changes <- struct{}{}:
				default:
				}
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != w.path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.NewTimer(w.debounce)
				fire = debounce.C
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("data file watcher error", "error", err)
			}
		}
	}()

	return changes, nil
}

// Stop stops the watcher.
func (w *DataFileWatcher) Stop() error {
	return w.watcher.Close()
}
