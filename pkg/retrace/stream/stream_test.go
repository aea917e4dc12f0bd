package stream_test

import (
	"bytes"
	"testing"

	"github.com/jamesainslie/retrace/pkg/retrace/stream"
	"github.com/jamesainslie/retrace/pkg/retrace/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := stream.NewWriter(&buf)

	require.NoError(t, w.WriteUint8(7))
	require.NoError(t, w.WriteInt64(-42))
	require.NoError(t, w.WriteString("héllo"))
	require.NoError(t, w.WriteString(""))
	require.NoError(t, w.WriteBytes([]byte{0, 1, 2}))
	require.NoError(t, w.WriteBytes(nil))
	require.NoError(t, w.WritePath(vfs.Path{"src", "a.txt"}))
	require.NoError(t, w.WritePath(nil))
	require.NoError(t, w.WriteIDPath(vfs.IDPath{1, 9}))
	require.NoError(t, w.WriteIDPath(nil))

	r := stream.NewReader(bytes.NewReader(buf.Bytes()))

	b, err := r.ReadUint8("tag")
	require.NoError(t, err)
	assert.Equal(t, uint8(7), b)

	i, err := r.ReadInt64("id")
	require.NoError(t, err)
	assert.Equal(t, int64(-42), i)

	s, err := r.ReadString("name")
	require.NoError(t, err)
	assert.Equal(t, "héllo", s)

	s, err = r.ReadString("empty name")
	require.NoError(t, err)
	assert.Equal(t, "", s)

	blob, err := r.ReadBytes("content")
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2}, blob)

	blob, err = r.ReadBytes("nil content")
	require.NoError(t, err)
	assert.Nil(t, blob)

	p, err := r.ReadPath("path")
	require.NoError(t, err)
	assert.Equal(t, vfs.Path{"src", "a.txt"}, p)

	p, err = r.ReadPath("empty path")
	require.NoError(t, err)
	assert.Nil(t, p)

	ip, err := r.ReadIDPath("id path")
	require.NoError(t, err)
	assert.Equal(t, vfs.IDPath{1, 9}, ip)

	ip, err = r.ReadIDPath("empty id path")
	require.NoError(t, err)
	assert.Nil(t, ip)

	assert.Equal(t, w.Offset(), r.Offset())
}

func TestTruncatedInput(t *testing.T) {
	var buf bytes.Buffer
	w := stream.NewWriter(&buf)
	require.NoError(t, w.WriteInt64(1))
	require.NoError(t, w.WriteString("hello"))

	t.Run("reports field and offset", func(t *testing.T) {
		data := buf.Bytes()[:10] // Cut inside the string's length prefix
		r := stream.NewReader(bytes.NewReader(data))

		_, err := r.ReadInt64("id")
		require.NoError(t, err)

		_, err = r.ReadString("name")
		var decodeErr *stream.DecodeError
		require.ErrorAs(t, err, &decodeErr)
		assert.Equal(t, "name", decodeErr.Field)
		assert.Equal(t, int64(8), decodeErr.Offset)
	})

	t.Run("cut inside the payload", func(t *testing.T) {
		data := buf.Bytes()[:len(buf.Bytes())-2]
		r := stream.NewReader(bytes.NewReader(data))

		_, err := r.ReadInt64("id")
		require.NoError(t, err)

		_, err = r.ReadString("name")
		var decodeErr *stream.DecodeError
		require.ErrorAs(t, err, &decodeErr)
		assert.Equal(t, "name", decodeErr.Field)
	})

	t.Run("empty input", func(t *testing.T) {
		r := stream.NewReader(bytes.NewReader(nil))
		_, err := r.ReadUint8("tag")
		var decodeErr *stream.DecodeError
		require.ErrorAs(t, err, &decodeErr)
		assert.Equal(t, int64(0), decodeErr.Offset)
	})
}

func TestOversizedLength(t *testing.T) {
	// A corrupt length prefix must not cause a huge allocation.
	data := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	r := stream.NewReader(bytes.NewReader(data))

	_, err := r.ReadBytes("content")
	var decodeErr *stream.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "content", decodeErr.Field)
}
