package watcher

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce is how long the watcher waits after the last event before
// delivering a batch. Editors often write a file in several steps.
const debounce = 100 * time.Millisecond

// Event represents a file change detected by the watcher.
type Event struct {
	Path string // Path of the changed file
	Kind string // "template" or "css"
}

// Watcher monitors a templates directory for template and stylesheet changes.
type Watcher struct {
	root     string
	onChange func([]Event)
	fsw      *fsnotify.Watcher
	done     chan struct{}

	mu      sync.Mutex
	pending []Event
	timer   *time.Timer

	deliver sync.Mutex
}

// New creates a Watcher that monitors root for file changes. onChange is
// called with each debounced batch of relevant events. Calls never overlap.
func New(root string, onChange func([]Event)) *Watcher {
	return &Watcher{
		root:     root,
		onChange: onChange,
		done:     make(chan struct{}),
	}
}

// Start begins watching the directory tree. It walks root to add all
// non-ignored directories, then starts a goroutine to process events.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.fsw = fsw

	if err := w.addTree(w.root); err != nil {
		fsw.Close()
		return err
	}

	go w.loop()
	return nil
}

// Stop terminates the watcher. Pending events are dropped.
func (w *Watcher) Stop() {
	if w.fsw != nil {
		w.fsw.Close()
		<-w.done
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pending = nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable dirs
		}
		if !d.IsDir() {
			return nil
		}
		if shouldIgnoreDir(w.root, path) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) loop() {
	defer close(w.done)

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)

		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			// Ignore watcher errors; the next write triggers another event.
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	// New directories are watched along with everything below them.
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			w.addTree(ev.Name)
			return
		}
	}

	kind := fileKind(ev.Name)
	if kind == "" {
		return
	}
	w.enqueue(Event{Path: ev.Name, Kind: kind})
}

func (w *Watcher) enqueue(e Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, p := range w.pending {
		if p.Path == e.Path {
			return
		}
	}
	w.pending = append(w.pending, e)

	if w.timer == nil {
		w.timer = time.AfterFunc(debounce, w.flush)
	} else {
		w.timer.Reset(debounce)
	}
}

func (w *Watcher) flush() {
	w.deliver.Lock()
	defer w.deliver.Unlock()

	w.mu.Lock()
	batch := w.pending
	w.pending = nil
	w.mu.Unlock()

	if len(batch) > 0 {
		w.onChange(batch)
	}
}

// fileKind returns "template" or "css" for watched extensions, "" otherwise.
func fileKind(path string) string {
	switch {
	case strings.HasSuffix(path, ".tmpl"), strings.HasSuffix(path, ".html"):
		return "template"
	case strings.HasSuffix(path, ".css"):
		return "css"
	}
	return ""
}

// shouldIgnoreDir returns true if the directory should not be watched.
func shouldIgnoreDir(root, path string) bool {
	name := filepath.Base(path)

	// Hidden directories (.git, editor swap dirs, etc.)
	if strings.HasPrefix(name, ".") && path != root {
		return true
	}

	return name == "node_modules"
}
