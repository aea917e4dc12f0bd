package broadcaster_test

import (
	"testing"

	"github.com/jamesainslie/retrace/pkg/retrace/broadcaster"
	"github.com/jamesainslie/retrace/pkg/retrace/change"
	"github.com/jamesainslie/retrace/pkg/retrace/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribe(t *testing.T) {
	t.Run("delivers matching events", func(t *testing.T) {
		b := broadcaster.New()
		defer b.Close()

		sub := b.Subscribe(nil)
		require.NotNil(t, sub)

		b.Notify(&broadcaster.Event{
			Seq:  0,
			Kind: change.KindCreateFile,
			Path: vfs.Path{"src", "a.txt"},
		})

		event := <-sub.Events
		assert.Equal(t, 0, event.Seq)
		assert.Equal(t, change.KindCreateFile, event.Kind)
		assert.False(t, event.Time.IsZero())
	})

	t.Run("filters by prefix", func(t *testing.T) {
		b := broadcaster.New()
		defer b.Close()

		srcSub := b.Subscribe(vfs.Path{"src"})
		docsSub := b.Subscribe(vfs.Path{"docs"})

		b.Notify(&broadcaster.Event{Kind: change.KindDelete, Path: vfs.Path{"src", "a.txt"}})
		b.Close()

		var srcEvents, docsEvents int
		for range srcSub.Events {
			srcEvents++
		}
		for range docsSub.Events {
			docsEvents++
		}
		assert.Equal(t, 1, srcEvents)
		assert.Equal(t, 0, docsEvents)
	})

	t.Run("prefix matching is segment-wise", func(t *testing.T) {
		b := broadcaster.New()
		defer b.Close()

		sub := b.Subscribe(vfs.Path{"sr"})
		b.Notify(&broadcaster.Event{Kind: change.KindDelete, Path: vfs.Path{"src"}})
		b.Close()

		var n int
		for range sub.Events {
			n++
		}
		assert.Equal(t, 0, n)
	})
}

func TestUnsubscribe(t *testing.T) {
	b := broadcaster.New()
	defer b.Close()

	sub := b.Subscribe(nil)
	assert.Equal(t, 1, b.SubscriberCount())

	b.Unsubscribe(sub.ID)
	assert.Equal(t, 0, b.SubscriberCount())

	_, open := <-sub.Events
	assert.False(t, open)
}

func TestClose(t *testing.T) {
	b := broadcaster.New()
	sub := b.Subscribe(nil)

	b.Close()
	_, open := <-sub.Events
	assert.False(t, open)

	assert.Nil(t, b.Subscribe(nil))
	// Notify after close must not panic.
	b.Notify(&broadcaster.Event{Path: vfs.Path{"x"}})
}

func TestSlowSubscriberDropsEvents(t *testing.T) {
	b := broadcaster.New()
	defer b.Close()

	sub := b.Subscribe(nil)
	// Overfill the buffered channel; extra events are dropped, not
	// blocking.
	for i := range 150 {
		b.Notify(&broadcaster.Event{Seq: i, Path: vfs.Path{"x"}})
	}

	b.Close()
	var n int
	for range sub.Events {
		n++
	}
	assert.Equal(t, 100, n)
}
