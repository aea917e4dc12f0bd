package journal_test

import (
	"testing"

	"github.com/jamesainslie/retrace/pkg/retrace/change"
	"github.com/jamesainslie/retrace/pkg/retrace/journal"
	"github.com/jamesainslie/retrace/pkg/retrace/store"
	"github.com/jamesainslie/retrace/pkg/retrace/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply(t *testing.T) {
	t.Run("appends and mutates the live tree", func(t *testing.T) {
		j := journal.New()

		require.NoError(t, j.Apply(change.NewCreateDirectory(j.NextID(), vfs.Path{"src"})))
		require.NoError(t, j.Apply(change.NewCreateFile(j.NextID(), vfs.Path{"src", "a.txt"}, []byte("hi"))))

		assert.Equal(t, 2, j.Len())
		assert.Equal(t, 2, j.Applied())
		assert.True(t, j.Has(vfs.Path{"src", "a.txt"}))
	})

	t.Run("rejected change does not grow the journal", func(t *testing.T) {
		j := journal.New()
		require.NoError(t, j.Apply(change.NewCreateDirectory(j.NextID(), vfs.Path{"src"})))

		err := j.Apply(change.NewCreateDirectory(j.NextID(), vfs.Path{"src"}))
		assert.ErrorIs(t, err, vfs.ErrNameCollision)
		assert.Equal(t, 1, j.Len())
		assert.True(t, j.Has(vfs.Path{"src"}))
	})
}

func TestNextID(t *testing.T) {
	j := journal.New()
	first := j.NextID()
	second := j.NextID()
	assert.Greater(t, second, first)
}

func TestRevertLast(t *testing.T) {
	t.Run("undoes in reverse order", func(t *testing.T) {
		j := journal.New()
		require.NoError(t, j.Apply(change.NewCreateDirectory(j.NextID(), vfs.Path{"src"})))
		require.NoError(t, j.Apply(change.NewCreateFile(j.NextID(), vfs.Path{"src", "a.txt"}, nil)))
		require.NoError(t, j.Apply(change.NewRename(vfs.Path{"src", "a.txt"}, "b.txt")))

		require.NoError(t, j.RevertLast(2))
		assert.Equal(t, 1, j.Applied())
		assert.Equal(t, 3, j.Len())
		assert.True(t, j.Has(vfs.Path{"src"}))
		assert.False(t, j.Has(vfs.Path{"src", "a.txt"}))
		assert.False(t, j.Has(vfs.Path{"src", "b.txt"}))
	})

	t.Run("rejects more than applied", func(t *testing.T) {
		j := journal.New()
		require.NoError(t, j.Apply(change.NewCreateDirectory(j.NextID(), vfs.Path{"src"})))

		err := j.RevertLast(2)
		assert.ErrorIs(t, err, journal.ErrNothingToRevert)
		assert.Equal(t, 1, j.Applied())
	})

	t.Run("zero is a no-op", func(t *testing.T) {
		j := journal.New()
		require.NoError(t, j.RevertLast(0))
	})
}

func TestApplyTruncatesRevertedTail(t *testing.T) {
	j := journal.New()
	require.NoError(t, j.Apply(change.NewCreateDirectory(j.NextID(), vfs.Path{"src"})))
	require.NoError(t, j.Apply(change.NewCreateDirectory(j.NextID(), vfs.Path{"docs"})))

	require.NoError(t, j.RevertLast(1))
	assert.Equal(t, 2, j.Len())
	assert.Equal(t, 1, j.Applied())

	require.NoError(t, j.Apply(change.NewCreateDirectory(j.NextID(), vfs.Path{"lib"})))
	assert.Equal(t, 2, j.Len())
	assert.Equal(t, 2, j.Applied())
	assert.True(t, j.Has(vfs.Path{"lib"}))
	assert.False(t, j.Has(vfs.Path{"docs"}))
}

func TestReplay(t *testing.T) {
	j := journal.New()
	require.NoError(t, j.Apply(change.NewCreateDirectory(j.NextID(), vfs.Path{"src"})))
	require.NoError(t, j.Apply(change.NewCreateFile(j.NextID(), vfs.Path{"src", "a.txt"}, []byte("v1"))))
	require.NoError(t, j.Apply(change.NewSetContent(vfs.Path{"src", "a.txt"}, []byte("v2"))))

	t.Run("rebuilds the current state", func(t *testing.T) {
		root, err := j.Replay()
		require.NoError(t, err)

		e, err := root.Get(vfs.Path{"src", "a.txt"})
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), e.Content())
	})

	t.Run("rebuilds any prefix", func(t *testing.T) {
		root, err := j.ReplayTo(2)
		require.NoError(t, err)

		e, err := root.Get(vfs.Path{"src", "a.txt"})
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), e.Content())

		empty, err := j.ReplayTo(0)
		require.NoError(t, err)
		assert.Empty(t, empty.Children())
	})

	t.Run("does not disturb the live tree", func(t *testing.T) {
		_, err := j.ReplayTo(1)
		require.NoError(t, err)

		e, err := j.Resolve(vfs.Path{"src", "a.txt"})
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), e.Content())
	})

	t.Run("rejects out-of-range bounds", func(t *testing.T) {
		_, err := j.ReplayTo(99)
		assert.Error(t, err)
	})
}

// The canonical end-to-end walk: build up a small tree, then step the
// history back to empty one change at a time.
func TestHistoryWalkback(t *testing.T) {
	j := journal.New()

	dirID := j.NextID()
	fileID := j.NextID()
	require.NoError(t, j.Apply(change.NewCreateDirectory(dirID, vfs.Path{"src"})))
	require.NoError(t, j.Apply(change.NewCreateFile(fileID, vfs.Path{"src", "a.txt"}, []byte("hello"))))
	require.NoError(t, j.Apply(change.NewRename(vfs.Path{"src", "a.txt"}, "b.txt")))

	assert.True(t, j.Has(vfs.Path{"src", "b.txt"}))

	require.NoError(t, j.RevertLast(1))
	assert.True(t, j.Has(vfs.Path{"src", "a.txt"}))
	e, err := j.Resolve(vfs.Path{"src", "a.txt"})
	require.NoError(t, err)
	assert.Equal(t, fileID, e.ID())
	assert.Equal(t, []byte("hello"), e.Content())

	require.NoError(t, j.RevertLast(1))
	assert.False(t, j.Has(vfs.Path{"src", "a.txt"}))
	assert.True(t, j.Has(vfs.Path{"src"}))

	require.NoError(t, j.RevertLast(1))
	root, err := j.Replay()
	require.NoError(t, err)
	assert.Empty(t, root.Children())
	assert.Equal(t, 0, j.Applied())
}

func TestPersistence(t *testing.T) {
	t.Run("reopen restores tree and history", func(t *testing.T) {
		dir := t.TempDir()

		st, err := store.Open(dir)
		require.NoError(t, err)

		j, err := journal.Open(st)
		require.NoError(t, err)
		require.NoError(t, j.Apply(change.NewCreateDirectory(j.NextID(), vfs.Path{"src"})))
		require.NoError(t, j.Apply(change.NewCreateFile(j.NextID(), vfs.Path{"src", "a.txt"}, []byte("hi"))))
		require.NoError(t, st.Close())

		st, err = store.Open(dir)
		require.NoError(t, err)
		defer st.Close()

		j, err = journal.Open(st)
		require.NoError(t, err)
		assert.Equal(t, 2, j.Len())
		assert.Equal(t, 2, j.Applied())
		assert.True(t, j.Has(vfs.Path{"src", "a.txt"}))
	})

	t.Run("reopen preserves the reverted tail", func(t *testing.T) {
		dir := t.TempDir()

		st, err := store.Open(dir)
		require.NoError(t, err)

		j, err := journal.Open(st)
		require.NoError(t, err)
		require.NoError(t, j.Apply(change.NewCreateDirectory(j.NextID(), vfs.Path{"src"})))
		require.NoError(t, j.Apply(change.NewCreateDirectory(j.NextID(), vfs.Path{"docs"})))
		require.NoError(t, j.RevertLast(1))
		require.NoError(t, st.Close())

		st, err = store.Open(dir)
		require.NoError(t, err)
		defer st.Close()

		j, err = journal.Open(st)
		require.NoError(t, err)
		assert.Equal(t, 2, j.Len())
		assert.Equal(t, 1, j.Applied())
		assert.False(t, j.Has(vfs.Path{"docs"}))
	})

	t.Run("ids are not reused across restarts", func(t *testing.T) {
		dir := t.TempDir()

		st, err := store.Open(dir)
		require.NoError(t, err)

		j, err := journal.Open(st)
		require.NoError(t, err)
		id := j.NextID()
		require.NoError(t, j.Apply(change.NewCreateDirectory(id, vfs.Path{"src"})))
		require.NoError(t, st.Close())

		st, err = store.Open(dir)
		require.NoError(t, err)
		defer st.Close()

		j, err = journal.Open(st)
		require.NoError(t, err)
		assert.Greater(t, j.NextID(), id)
	})
}
