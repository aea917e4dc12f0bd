package importer_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jamesainslie/retrace/pkg/retrace/importer"
	"github.com/jamesainslie/retrace/pkg/retrace/journal"
	"github.com/jamesainslie/retrace/pkg/retrace/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
}

func TestImport(t *testing.T) {
	t.Run("records the whole tree as creation changes", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "src", "a.txt"), []byte("hello"))
		writeFile(t, filepath.Join(dir, "src", "sub", "b.txt"), []byte("world"))
		writeFile(t, filepath.Join(dir, "top.txt"), []byte("top"))

		j := journal.New()
		imp := importer.New(j, 0, nil)

		stats, err := imp.Import(dir)
		require.NoError(t, err)

		assert.Equal(t, 2, stats.Dirs)
		assert.Equal(t, 3, stats.Files)
		assert.Equal(t, int64(13), stats.Bytes)
		assert.Equal(t, 0, stats.Skipped)

		e, err := j.Resolve(vfs.Path{"src", "sub", "b.txt"})
		require.NoError(t, err)
		assert.Equal(t, []byte("world"), e.Content())
		assert.True(t, j.Has(vfs.Path{"top.txt"}))

		// The imported state replays from scratch.
		root, err := j.Replay()
		require.NoError(t, err)
		assert.True(t, root.Has(vfs.Path{"src", "sub", "b.txt"}))
	})

	t.Run("skips excluded directories", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "src", "a.txt"), []byte("keep"))
		writeFile(t, filepath.Join(dir, ".git", "HEAD"), []byte("ref"))
		writeFile(t, filepath.Join(dir, "node_modules", "x", "y.js"), []byte("no"))

		j := journal.New()
		imp := importer.New(j, 0, []string{".git", "node_modules"})

		_, err := imp.Import(dir)
		require.NoError(t, err)

		assert.True(t, j.Has(vfs.Path{"src", "a.txt"}))
		assert.False(t, j.Has(vfs.Path{".git"}))
		assert.False(t, j.Has(vfs.Path{"node_modules"}))
	})

	t.Run("caps recorded content by size", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "big.bin"), make([]byte, 2048))
		writeFile(t, filepath.Join(dir, "small.txt"), []byte("ok"))

		j := journal.New()
		imp := importer.New(j, 1024, nil)

		stats, err := imp.Import(dir)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.Files)

		big, err := j.Resolve(vfs.Path{"big.bin"})
		require.NoError(t, err)
		assert.Empty(t, big.Content())

		small, err := j.Resolve(vfs.Path{"small.txt"})
		require.NoError(t, err)
		assert.Equal(t, []byte("ok"), small.Content())
	})

	t.Run("empty directory imports nothing", func(t *testing.T) {
		j := journal.New()
		imp := importer.New(j, 0, nil)

		stats, err := imp.Import(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, importer.Stats{}, stats)
		assert.Equal(t, 0, j.Len())
	})
}
