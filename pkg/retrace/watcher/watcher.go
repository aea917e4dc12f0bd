// Package watcher bridges real filesystem events into journal changes.
// It watches one root directory recursively and records every create,
// write and remove as an invertible change on the virtual tree.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/jamesainslie/retrace/pkg/retrace/broadcaster"
	"github.com/jamesainslie/retrace/pkg/retrace/change"
	"github.com/jamesainslie/retrace/pkg/retrace/journal"
	"github.com/jamesainslie/retrace/pkg/retrace/logging"
	"github.com/jamesainslie/retrace/pkg/retrace/vfs"
)

// Watcher translates fsnotify events under a root directory into
// journal changes.
type Watcher struct {
	journal     *journal.Journal
	watcher     *fsnotify.Watcher
	root        string
	paths       map[string]bool
	mu          sync.RWMutex
	closed      bool
	broadcaster *broadcaster.Broadcaster
	maxFileSize int64
	exclude     []string
	log         *logging.Logger
}

// New creates a Watcher recording into j. Root must be an existing
// directory; it maps to the virtual tree's root.
func New(j *journal.Journal, root string) (*Watcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Lstat(absRoot)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch root %s is not a directory", absRoot)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		journal: j,
		watcher: fsw,
		root:    absRoot,
		paths:   make(map[string]bool),
		log:     logging.Get("watcher"),
	}, nil
}

// SetBroadcaster sets the broadcaster notified after each recorded
// change.
func (w *Watcher) SetBroadcaster(b *broadcaster.Broadcaster) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.broadcaster = b
}

// SetMaxFileSize caps the content payload recorded per file; larger
// files are recorded with empty content.
func (w *Watcher) SetMaxFileSize(size int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.maxFileSize = size
}

// SetExclude sets base-name patterns that are never recorded.
func (w *Watcher) SetExclude(patterns []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.exclude = patterns
}

// Watch adds watches for the root and all subdirectories. Symlinks are
// not followed to avoid loops.
func (w *Watcher) Watch() error {
	return filepath.WalkDir(w.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil //nolint:nilerr // Skip entries with errors
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if d.IsDir() {
			return w.addWatch(path)
		}
		return nil
	})
}

// addWatch adds a single directory to the watch list.
func (w *Watcher) addWatch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.paths[path] {
		return nil
	}
	if err := w.watcher.Add(path); err != nil {
		w.log.Warn("failed to add watch", "path", path, "error", err)
		return err
	}
	w.paths[path] = true
	return nil
}

// Run starts the event loop. It blocks until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("watcher error", "error", err)
		}
	}
}

// handleEvent records a single filesystem event as a journal change.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if w.excluded(event.Name) {
		return
	}
	switch {
	case event.Op&fsnotify.Create != 0:
		w.handleCreate(event.Name)
	case event.Op&fsnotify.Write != 0:
		w.handleWrite(event.Name)
	case event.Op&fsnotify.Remove != 0:
		w.handleRemove(event.Name)
	case event.Op&fsnotify.Rename != 0:
		// Rename is treated as a remove - the new name will trigger a create
		w.handleRemove(event.Name)
	}
}

// virtualPath maps an absolute filesystem path to a tree path.
func (w *Watcher) virtualPath(fsPath string) (vfs.Path, bool) {
	rel, err := filepath.Rel(w.root, fsPath)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return nil, false
	}
	return vfs.ParsePath(filepath.ToSlash(rel)), true
}

// excluded reports whether any segment of the path matches an
// exclusion pattern.
func (w *Watcher) excluded(fsPath string) bool {
	w.mu.RLock()
	patterns := w.exclude
	w.mu.RUnlock()

	rel, err := filepath.Rel(w.root, fsPath)
	if err != nil {
		return true
	}
	for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		for _, pattern := range patterns {
			if matched, _ := filepath.Match(pattern, seg); matched {
				return true
			}
		}
	}
	return false
}

// handleCreate records file/directory creation events.
func (w *Watcher) handleCreate(fsPath string) {
	info, err := os.Lstat(fsPath)
	if err != nil {
		return // Gone before we could look at it
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		return
	}

	path, ok := w.virtualPath(fsPath)
	if !ok {
		return
	}

	if info.IsDir() {
		_ = w.addWatch(fsPath)
		// Subdirectories created in one burst arrive as a single event
		// for the top; walk to catch them all.
		_ = filepath.WalkDir(fsPath, func(sub string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return nil //nolint:nilerr // Skip entries with errors
			}
			if d.Type()&fs.ModeSymlink != 0 {
				return nil
			}
			if d.IsDir() && sub != fsPath {
				_ = w.addWatch(sub)
			}
			return nil
		})
		if !w.journal.Has(path) {
			w.ensureParents(path)
			w.record(change.NewCreateDirectory(w.journal.NextID(), path))
		}
		return
	}

	content := w.readContent(fsPath, info.Size())
	if w.journal.Has(path) {
		w.record(change.NewSetContent(path, content))
	} else {
		w.ensureParents(path)
		w.record(change.NewCreateFile(w.journal.NextID(), path, content))
	}
}

// ensureParents records directory creations for any missing ancestors
// of path, shallowest first. Events for nested creations can arrive
// out of order, or the journal may simply never have seen the parent.
func (w *Watcher) ensureParents(path vfs.Path) {
	for i := 1; i < len(path); i++ {
		prefix := vfs.Path(path[:i])
		if !w.journal.Has(prefix) {
			w.record(change.NewCreateDirectory(w.journal.NextID(), prefix))
		}
	}
}

// handleWrite records file modification events.
func (w *Watcher) handleWrite(fsPath string) {
	info, err := os.Stat(fsPath)
	if err != nil || info.IsDir() {
		return
	}
	path, ok := w.virtualPath(fsPath)
	if !ok {
		return
	}

	content := w.readContent(fsPath, info.Size())
	if w.journal.Has(path) {
		w.record(change.NewSetContent(path, content))
	} else {
		w.ensureParents(path)
		w.record(change.NewCreateFile(w.journal.NextID(), path, content))
	}
}

// handleRemove records deletion events.
func (w *Watcher) handleRemove(fsPath string) {
	w.mu.Lock()
	if w.paths[fsPath] {
		_ = w.watcher.Remove(fsPath)
		delete(w.paths, fsPath)
	}
	for childPath := range w.paths {
		if isSubPath(childPath, fsPath) {
			_ = w.watcher.Remove(childPath)
			delete(w.paths, childPath)
		}
	}
	w.mu.Unlock()

	path, ok := w.virtualPath(fsPath)
	if !ok || !w.journal.Has(path) {
		return
	}
	w.record(change.NewDelete(path))
}

// readContent reads a file's payload, subject to the size cap.
func (w *Watcher) readContent(fsPath string, size int64) []byte {
	w.mu.RLock()
	maxSize := w.maxFileSize
	w.mu.RUnlock()

	if maxSize > 0 && size > maxSize {
		w.log.Debug("content above size cap, recording empty", "path", fsPath, "size", size)
		return nil
	}
	content, err := os.ReadFile(fsPath)
	if err != nil {
		return nil
	}
	return content
}

// record applies a change to the journal and notifies subscribers.
func (w *Watcher) record(c change.Change) {
	if err := w.journal.Apply(c); err != nil {
		w.log.Warn("change rejected", "kind", c.Kind(), "path", c.Path(), "error", err)
		return
	}
	w.log.Debug("change recorded", "kind", c.Kind(), "path", c.Path())

	w.mu.RLock()
	b := w.broadcaster
	w.mu.RUnlock()
	if b != nil {
		b.Notify(&broadcaster.Event{
			Seq:  w.journal.Len() - 1,
			Kind: c.Kind(),
			Path: c.Path(),
		})
	}
}

// Close closes the watcher and releases resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	w.paths = make(map[string]bool)
	return w.watcher.Close()
}

// isSubPath checks if path is under parent directory.
func isSubPath(path, parent string) bool {
	return len(path) > len(parent) && path[:len(parent)+1] == parent+string(filepath.Separator)
}
