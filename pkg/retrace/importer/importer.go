// Package importer seeds a journal from an existing on-disk tree.
// Every directory and file under the import root becomes one creation
// change, so the imported state is itself part of the replayable
// history.
package importer

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/jamesainslie/retrace/pkg/retrace/change"
	"github.com/jamesainslie/retrace/pkg/retrace/journal"
	"github.com/jamesainslie/retrace/pkg/retrace/logging"
	"github.com/jamesainslie/retrace/pkg/retrace/vfs"
)

// Stats summarizes an import.
type Stats struct {
	Dirs    int
	Files   int
	Bytes   int64
	Skipped int
}

// Importer walks a directory tree and records creation changes.
type Importer struct {
	journal     *journal.Journal
	maxFileSize int64
	exclude     []string
	log         *logging.Logger
}

// New creates an Importer recording into j. maxFileSize caps recorded
// content (0 means unlimited); exclude lists base-name patterns to
// skip.
func New(j *journal.Journal, maxFileSize int64, exclude []string) *Importer {
	return &Importer{
		journal:     j,
		maxFileSize: maxFileSize,
		exclude:     exclude,
		log:         logging.Get("importer"),
	}
}

type walkedEntry struct {
	rel   string
	isDir bool
	size  int64
}

// Import walks root concurrently, then records the discovered entries
// in deterministic order: ancestors before descendants, siblings by
// name. The walk is parallel; the journal appends are not.
func (imp *Importer) Import(root string) (Stats, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Stats{}, err
	}

	var (
		mu      sync.Mutex
		entries []walkedEntry
		stats   Stats
	)

	conf := fastwalk.Config{Follow: false}
	err = fastwalk.Walk(&conf, absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil //nolint:nilerr // Skip entries with errors
		}
		rel, err := filepath.Rel(absRoot, path)
		if err != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if imp.excluded(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		var size int64
		if !d.IsDir() {
			if info, err := d.Info(); err == nil {
				size = info.Size()
			}
		}

		mu.Lock()
		entries = append(entries, walkedEntry{rel: rel, isDir: d.IsDir(), size: size})
		mu.Unlock()
		return nil
	})
	if err != nil {
		return Stats{}, err
	}

	// Depth-then-name order guarantees every parent directory is
	// created before its children.
	sort.Slice(entries, func(i, j int) bool {
		di := strings.Count(entries[i].rel, "/")
		dj := strings.Count(entries[j].rel, "/")
		if di != dj {
			return di < dj
		}
		return entries[i].rel < entries[j].rel
	})

	for _, e := range entries {
		path := vfs.ParsePath(e.rel)
		if e.isDir {
			if err := imp.journal.Apply(change.NewCreateDirectory(imp.journal.NextID(), path)); err != nil {
				imp.log.Warn("directory skipped", "path", e.rel, "error", err)
				stats.Skipped++
				continue
			}
			stats.Dirs++
			continue
		}

		content := imp.readContent(filepath.Join(absRoot, filepath.FromSlash(e.rel)), e.size)
		if err := imp.journal.Apply(change.NewCreateFile(imp.journal.NextID(), path, content)); err != nil {
			imp.log.Warn("file skipped", "path", e.rel, "error", err)
			stats.Skipped++
			continue
		}
		stats.Files++
		stats.Bytes += int64(len(content))
	}

	imp.log.Info("import complete", "root", absRoot,
		"dirs", stats.Dirs, "files", stats.Files, "skipped", stats.Skipped)
	return stats, nil
}

// excluded reports whether any segment of the relative path matches an
// exclusion pattern.
func (imp *Importer) excluded(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		for _, pattern := range imp.exclude {
			if matched, _ := filepath.Match(pattern, seg); matched {
				return true
			}
		}
	}
	return false
}

// readContent reads a file's payload, subject to the size cap.
func (imp *Importer) readContent(fsPath string, size int64) []byte {
	if imp.maxFileSize > 0 && size > imp.maxFileSize {
		imp.log.Debug("content above size cap, recording empty", "path", fsPath, "size", size)
		return nil
	}
	content, err := os.ReadFile(fsPath)
	if err != nil {
		return nil
	}
	return content
}
