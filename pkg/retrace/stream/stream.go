// Package stream implements the sequential binary codec used for
// persisted change records. It knows nothing about the tree: it reads
// and writes primitive values (integers, strings, byte blobs, paths,
// id-paths) at an implicit position, and writing then reading any value
// yields the value back exactly.
//
// All integers are big-endian. Strings, blobs, paths and id-paths are
// length-prefixed with a uint32; there is no terminator and no index,
// so a record sequence is read by a single forward scan.
package stream

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/jamesainslie/retrace/pkg/retrace/vfs"
)

// maxLen caps length prefixes read from untrusted input so a corrupt
// record cannot force a huge allocation.
const maxLen = 1 << 30

// DecodeError reports malformed or truncated input. It carries the
// byte offset at which decoding failed and the field that was
// expected, so replay can report corruption precisely instead of
// guessing at defaults.
type DecodeError struct {
	Offset int64
	Field  string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s at offset %d: %v", e.Field, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Writer encodes primitive values onto an io.Writer.
type Writer struct {
	w   io.Writer
	off int64
}

// NewWriter returns a Writer positioned at offset 0.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Offset returns the number of bytes written so far.
func (w *Writer) Offset() int64 { return w.off }

func (w *Writer) write(buf []byte) error {
	n, err := w.w.Write(buf)
	w.off += int64(n)
	return err
}

// WriteUint8 writes a single byte, used for variant tags.
func (w *Writer) WriteUint8(v uint8) error {
	return w.write([]byte{v})
}

// WriteInt64 writes an integer as 8 big-endian bytes.
func (w *Writer) WriteInt64(v int64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	return w.write(buf[:])
}

func (w *Writer) writeUint32(v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	return w.write(buf[:])
}

// WriteString writes a length-prefixed UTF-8 string.
func (w *Writer) WriteString(s string) error {
	if err := w.writeUint32(uint32(len(s))); err != nil {
		return err
	}
	return w.write([]byte(s))
}

// WriteBytes writes a length-prefixed byte blob. A nil slice is
// written as length zero.
func (w *Writer) WriteBytes(b []byte) error {
	if err := w.writeUint32(uint32(len(b))); err != nil {
		return err
	}
	return w.write(b)
}

// WritePath writes a path as a count followed by its segments.
func (w *Writer) WritePath(p vfs.Path) error {
	if err := w.writeUint32(uint32(len(p))); err != nil {
		return err
	}
	for _, seg := range p {
		if err := w.WriteString(seg); err != nil {
			return err
		}
	}
	return nil
}

// WriteIDPath writes an id-path as a count followed by its ids.
func (w *Writer) WriteIDPath(p vfs.IDPath) error {
	if err := w.writeUint32(uint32(len(p))); err != nil {
		return err
	}
	for _, id := range p {
		if err := w.WriteInt64(id); err != nil {
			return err
		}
	}
	return nil
}

// Reader decodes primitive values from an io.Reader. Every method
// takes the name of the expected field; failures come back as a
// *DecodeError naming that field and the offset.
type Reader struct {
	r   io.Reader
	off int64
}

// NewReader returns a Reader positioned at offset 0.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int64 { return r.off }

func (r *Reader) read(buf []byte, field string) error {
	start := r.off
	n, err := io.ReadFull(r.r, buf)
	r.off += int64(n)
	if err != nil {
		if err == io.ErrUnexpectedEOF {
			err = fmt.Errorf("truncated input: %w", err)
		}
		return &DecodeError{Offset: start, Field: field, Err: err}
	}
	return nil
}

// ReadUint8 reads a single byte.
func (r *Reader) ReadUint8(field string) (uint8, error) {
	var buf [1]byte
	if err := r.read(buf[:], field); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadInt64 reads an 8-byte big-endian integer.
func (r *Reader) ReadInt64(field string) (int64, error) {
	var buf [8]byte
	if err := r.read(buf[:], field); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(buf[:])), nil
}

func (r *Reader) readLen(field string) (int, error) {
	var buf [4]byte
	if err := r.read(buf[:], field); err != nil {
		return 0, err
	}
	n := binary.BigEndian.Uint32(buf[:])
	if n > maxLen {
		return 0, &DecodeError{
			Offset: r.off - 4,
			Field:  field,
			Err:    fmt.Errorf("length %d out of range", n),
		}
	}
	return int(n), nil
}

// ReadString reads a length-prefixed UTF-8 string.
func (r *Reader) ReadString(field string) (string, error) {
	n, err := r.readLen(field)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if err := r.read(buf, field); err != nil {
		return "", err
	}
	return string(buf), nil
}

// ReadBytes reads a length-prefixed byte blob. A zero length yields
// nil, matching what WriteBytes(nil) produced.
func (r *Reader) ReadBytes(field string) ([]byte, error) {
	n, err := r.readLen(field)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if err := r.read(buf, field); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadPath reads a count-prefixed path.
func (r *Reader) ReadPath(field string) (vfs.Path, error) {
	n, err := r.readLen(field)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	p := make(vfs.Path, n)
	for i := range p {
		seg, err := r.ReadString(field)
		if err != nil {
			return nil, err
		}
		p[i] = seg
	}
	return p, nil
}

// ReadIDPath reads a count-prefixed id-path.
func (r *Reader) ReadIDPath(field string) (vfs.IDPath, error) {
	n, err := r.readLen(field)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	p := make(vfs.IDPath, n)
	for i := range p {
		id, err := r.ReadInt64(field)
		if err != nil {
			return nil, err
		}
		p[i] = id
	}
	return p, nil
}
