// Package watch reports changes to a single file, such as the notice
// document, with events debounced so an atomic save fires once.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultQuiet is the debounce window used when none is given.
const DefaultQuiet = 100 * time.Millisecond

// Watcher watches one file through its parent directory. Saves replace the
// file by rename, which would drop a watch on the file itself.
type Watcher struct {
	path    string
	quiet   time.Duration
	watcher *fsnotify.Watcher
}

// New starts watching the directory holding path. Events are only delivered
// once Run is called.
// PRE: the parent directory of path exists
func New(path string, quiet time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	return &Watcher{path: abs, quiet: quiet, watcher: fw}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Run calls onChange once per burst of events on the file and blocks until
// ctx is done. The watcher is closed when Run returns.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	defer w.watcher.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			slog.Debug("watch_event", "path", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.quiet)
			} else {
				timer.Reset(w.quiet)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			onChange()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			slog.Error("watch_error", "path", w.path, "error", err)
		}
	}
}
