// Package watcher refreshes a running viewer when its offline snapshot
// changes on disk. Snapshot writers rewrite whole files, so bursts of
// events are coalesced before the reload callback fires.
package watcher

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultCoalesceWindow is how long after the last event the reload fires.
const DefaultCoalesceWindow = 250 * time.Millisecond

// snapshot files worth reacting to; editors and tools may touch other
// files in the same directory.
var watchedNames = map[string]bool{
	"questions.jsonl": true,
	"answers.jsonl":   true,
	"qa.db":           true,
}

// Watcher observes one snapshot directory and invokes a callback after
// changes settle.
type Watcher struct {
	fsw    *fsnotify.Watcher
	window time.Duration
	done   chan struct{}
}

// Watch starts watching dir and calls onChange (on the watcher goroutine)
// once per settled burst of snapshot writes. A zero window uses the default.
func Watch(dir string, window time.Duration, onChange func()) (*Watcher, error) {
	if window <= 0 {
		window = DefaultCoalesceWindow
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &Watcher{
		fsw:    fsw,
		window: window,
		done:   make(chan struct{}),
	}
	go w.loop(onChange)
	return w, nil
}

func (w *Watcher) loop(onChange func()) {
	// The timer starts stopped; each relevant event rewinds it, so the
	// callback fires once, window after the last write of a burst.
	timer := time.NewTimer(w.window)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !relevant(ev) {
				continue
			}
			if pending && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(w.window)
			pending = true
		case <-timer.C:
			pending = false
			onChange()
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal; the user can still reload manually.
		case <-w.done:
			return
		}
	}
}

func relevant(ev fsnotify.Event) bool {
	if !watchedNames[filepath.Base(ev.Name)] {
		return false
	}
	return ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
