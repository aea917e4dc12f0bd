package vfs_test

import (
	"testing"

	"github.com/jamesainslie/retrace/pkg/retrace/vfs"
	"github.com/stretchr/testify/assert"
)

func TestParsePath(t *testing.T) {
	t.Run("splits on slashes", func(t *testing.T) {
		assert.Equal(t, vfs.Path{"src", "main.go"}, vfs.ParsePath("src/main.go"))
	})

	t.Run("ignores leading trailing and repeated slashes", func(t *testing.T) {
		assert.Equal(t, vfs.Path{"a", "b"}, vfs.ParsePath("/a//b/"))
	})

	t.Run("empty string is the root path", func(t *testing.T) {
		p := vfs.ParsePath("")
		assert.True(t, p.IsRoot())
	})
}

func TestPath(t *testing.T) {
	p := vfs.Path{"src", "pkg", "main.go"}

	t.Run("String joins with slashes", func(t *testing.T) {
		assert.Equal(t, "src/pkg/main.go", p.String())
	})

	t.Run("Name is the last segment", func(t *testing.T) {
		assert.Equal(t, "main.go", p.Name())
		assert.Equal(t, "", vfs.Path{}.Name())
	})

	t.Run("Parent drops the last segment", func(t *testing.T) {
		assert.Equal(t, vfs.Path{"src", "pkg"}, p.Parent())
		assert.True(t, vfs.Path{}.Parent().IsRoot())
	})

	t.Run("Child does not modify the receiver", func(t *testing.T) {
		base := vfs.Path{"src"}
		child := base.Child("a.go")
		other := base.Child("b.go")

		assert.Equal(t, vfs.Path{"src", "a.go"}, child)
		assert.Equal(t, vfs.Path{"src", "b.go"}, other)
		assert.Equal(t, vfs.Path{"src"}, base)
	})

	t.Run("Equal compares segments", func(t *testing.T) {
		assert.True(t, p.Equal(vfs.Path{"src", "pkg", "main.go"}))
		assert.False(t, p.Equal(p.Parent()))
		assert.False(t, p.Equal(vfs.Path{"src", "pkg", "other.go"}))
	})
}

func TestIDPath(t *testing.T) {
	p := vfs.IDPath{1, 4, 9}

	t.Run("ID is the last element", func(t *testing.T) {
		assert.Equal(t, int64(9), p.ID())
		assert.Equal(t, int64(0), vfs.IDPath{}.ID())
	})

	t.Run("Parent drops the last element", func(t *testing.T) {
		assert.Equal(t, vfs.IDPath{1, 4}, p.Parent())
	})

	t.Run("String is slash-joined decimal", func(t *testing.T) {
		assert.Equal(t, "1/4/9", p.String())
	})

	t.Run("Equal compares elements", func(t *testing.T) {
		assert.True(t, p.Equal(vfs.IDPath{1, 4, 9}))
		assert.False(t, p.Equal(vfs.IDPath{1, 4}))
		assert.False(t, p.Equal(vfs.IDPath{1, 4, 8}))
	})
}
