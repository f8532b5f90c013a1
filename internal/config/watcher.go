// ABOUTME: Polling-based file watcher for config and profile hot-reload
// ABOUTME: Compares file mtimes on each tick; Run blocks until its context is done

package config

import (
	"context"
	"os"
	"sync"
	"time"
)

// DefaultWatchInterval is the polling period used when none is given.
const DefaultWatchInterval = 2 * time.Second

// Watcher calls onChange when any watched file is created, modified or
// removed.
type Watcher struct {
	interval time.Duration
	onChange func()

	mu     sync.Mutex
	paths  []string
	mtimes map[string]time.Time
}

// NewWatcher snapshots paths immediately so only later changes fire.
func NewWatcher(paths []string, interval time.Duration, onChange func()) *Watcher {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	w := &Watcher{
		interval: interval,
		onChange: onChange,
		paths:    append([]string(nil), paths...),
		mtimes:   make(map[string]time.Time, len(paths)),
	}
	w.snapshotLocked()
	return w
}

// SetPaths replaces the watched set, e.g. after the config file changed
// its profile_files list.
func (w *Watcher) SetPaths(paths []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.paths = append([]string(nil), paths...)
	w.mtimes = make(map[string]time.Time, len(paths))
	w.snapshotLocked()
}

// Run polls until ctx is done and returns ctx.Err().
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if w.Check() {
				w.onChange()
			}
		}
	}
}

// Check reports whether anything changed since the last snapshot and
// takes a new one.
func (w *Watcher) Check() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.changedLocked() {
		return false
	}
	w.snapshotLocked()
	return true
}

func (w *Watcher) changedLocked() bool {
	for _, path := range w.paths {
		info, err := os.Stat(path)
		prev, known := w.mtimes[path]
		if err != nil {
			if known {
				return true
			}
			continue
		}
		if !known || !info.ModTime().Equal(prev) {
			return true
		}
	}
	return false
}

func (w *Watcher) snapshotLocked() {
	for _, path := range w.paths {
		info, err := os.Stat(path)
		if err != nil {
			delete(w.mtimes, path)
			continue
		}
		w.mtimes[path] = info.ModTime()
	}
}
