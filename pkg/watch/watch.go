// Package watch reports changes to the directories of a schema set,
// batching bursts of filesystem events into one notification.
package watch

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for events to settle.
const DefaultDebounce = 200 * time.Millisecond

// Watcher watches a set of directories, non-recursively.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	ignore   []string
	log      *slog.Logger
}

// New creates a watcher. Editor swap and backup files are ignored.
func New(debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Watcher{
		fsw:      fsw,
		debounce: debounce,
		ignore:   []string{"*.swp", "*.tmp", "*~", ".#*"},
		log:      logger,
	}, nil
}

// Add starts watching dirs. Directories already watched are skipped.
func (w *Watcher) Add(dirs ...string) error {
	watched := make(map[string]bool)
	for _, d := range w.fsw.WatchList() {
		watched[d] = true
	}
	for _, d := range dirs {
		if watched[d] {
			continue
		}
		if err := w.fsw.Add(d); err != nil {
			return err
		}
		watched[d] = true
		w.log.Debug("watching directory", "dir", d)
	}
	return nil
}

// Run delivers each settled batch of changed paths to onChange, sorted
// and without duplicates, until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context, onChange func(paths []string)) error {
	pending := make(map[string]bool)
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.ignored(event.Name) || event.Op == fsnotify.Chmod {
				continue
			}
			pending[event.Name] = true
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			clear(pending)
			w.log.Debug("changes settled", "count", len(paths))
			onChange(paths)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}

// Close stops the watcher; a running Run returns.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) ignored(path string) bool {
	base := filepath.Base(path)
	for _, p := range w.ignore {
		if ok, _ := filepath.Match(p, base); ok {
			return true
		}
	}
	return false
}
