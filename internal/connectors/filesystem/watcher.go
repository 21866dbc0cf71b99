package filesystem

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/axchat/internal/core/ports/driven"
)

// Watcher flags corpus changes between index builds. It only records
// that something changed; rebuilds stay whole-corpus and explicit.
type Watcher struct {
	root string

	mu      sync.Mutex
	dirty   bool
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher creates a corpus watcher rooted at the given directory.
func NewWatcher(root string) *Watcher {
	return &Watcher{root: filepath.Clean(root)}
}

// Watch starts observing the given zones, replacing any previous watch
// and clearing the dirty flag. Zones that do not exist are skipped.
func (w *Watcher) Watch(zones []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.stopLocked(); err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating corpus watcher: %w", err)
	}

	for _, zone := range resolveZones(w.root, zones) {
		zoneDir := filepath.Join(w.root, zone)
		// fsnotify watches are not recursive; register every subdirectory.
		err := filepath.WalkDir(zoneDir, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !entry.IsDir() {
				return nil
			}
			name := entry.Name()
			if path != zoneDir && (strings.HasPrefix(name, ".") || skippedDirs[name]) {
				return filepath.SkipDir
			}
			return fsw.Add(path)
		})
		if err != nil {
			fsw.Close()
			return fmt.Errorf("watching corpus zone %q: %w", zone, err)
		}
	}

	done := make(chan struct{})
	go w.run(fsw, done)

	w.watcher = fsw
	w.done = done
	w.dirty = false
	return nil
}

func (w *Watcher) run(fsw *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			w.markDirty()
			// New directories need their own watch to catch files
			// created inside them later.
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = fsw.Add(event.Name)
				}
			}
		case _, ok := <-fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) markDirty() {
	w.mu.Lock()
	w.dirty = true
	w.mu.Unlock()
}

// Dirty reports whether any corpus change was seen since the last Watch.
func (w *Watcher) Dirty() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dirty
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stopLocked()
}

func (w *Watcher) stopLocked() error {
	if w.watcher == nil {
		return nil
	}
	err := w.watcher.Close()
	<-w.done
	w.watcher = nil
	w.done = nil
	return err
}

var _ driven.CorpusWatcher = (*Watcher)(nil)
