// Package watch reruns a callback whenever a source file is saved.
package watch

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Debounce is how long after one change further changes are ignored.
// Editors often write a file in several steps.
const Debounce = 100 * time.Millisecond

// Watcher calls OnChange each time its file is written or recreated.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	onChange func(path string)
	stderr   io.Writer

	mu         sync.Mutex
	lastChange time.Time
	changes    uint64
}

// New watches path. The parent directory is watched rather than the file so
// that editors which replace the file on save are still seen.
func New(path string, onChange func(path string), stderr io.Writer) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(filepath.Dir(abs)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	if stderr == nil {
		stderr = io.Discard
	}
	return &Watcher{
		watcher:  fsWatcher,
		path:     abs,
		onChange: onChange,
		stderr:   stderr,
	}, nil
}

// Run processes events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}

			w.mu.Lock()
			if time.Since(w.lastChange) < Debounce {
				w.mu.Unlock()
				continue
			}
			w.lastChange = time.Now()
			w.changes++
			w.mu.Unlock()

			w.onChange(w.path)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(w.stderr, "[WATCH ERROR] %v\n", err)
		}
	}
}

// Changes returns how many changes have been handled.
func (w *Watcher) Changes() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.changes
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}
