// Package change defines the journal's record types: one invertible
// mutation per record. Each variant knows how to apply itself to a
// tree, how to revert itself, and how to serialize its constructor
// fields.
//
// Applying a change captures the id-paths of every entry it touched.
// Reverting uses only those captured id-paths, never the original name
// path, which is what keeps undo correct after later renames and moves
// have made the name path stale. Captured id-paths are apply-time
// state: they are not serialized, and a deserialized change recomputes
// them when it is re-applied during replay.
package change

import (
	"errors"
	"fmt"

	"github.com/jamesainslie/retrace/pkg/retrace/stream"
	"github.com/jamesainslie/retrace/pkg/retrace/vfs"
)

// Kind tags a change variant. The set is closed; codec, apply and
// revert all dispatch on it exhaustively.
type Kind uint8

const (
	KindCreateFile Kind = iota + 1
	KindCreateDirectory
	KindDelete
	KindRename
	KindMove
	KindSetContent
)

// String returns a short lowercase name for the kind.
func (k Kind) String() string {
	switch k {
	case KindCreateFile:
		return "create-file"
	case KindCreateDirectory:
		return "create-dir"
	case KindDelete:
		return "delete"
	case KindRename:
		return "rename"
	case KindMove:
		return "move"
	case KindSetContent:
		return "edit"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ErrNotApplied is returned by RevertOn when the change was never
// applied and therefore has no captured id-paths to revert with.
var ErrNotApplied = errors.New("change has not been applied")

// Change is one recorded, invertible tree mutation.
//
// ApplyTo is single-shot: applying the same instance twice is caller
// error, guarded by the journal. RevertOn must only run after a
// successful ApplyTo. The encode method is unexported, keeping the
// variant set closed to this package; external callers serialize
// through Write.
type Change interface {
	// Kind returns the variant tag.
	Kind() Kind

	// Path returns the construction-time target path. It may be stale
	// relative to the current tree; it is descriptive, not operative,
	// once the change has been applied.
	Path() vfs.Path

	// ApplyTo performs the forward mutation and captures affected
	// id-paths. A tree-mutation error leaves both the tree and the
	// change untouched.
	ApplyTo(root *vfs.RootEntry) error

	// RevertOn performs the exact inverse mutation using the captured
	// id-paths.
	RevertOn(root *vfs.RootEntry) error

	// AffectedIDPaths returns the id-paths captured by ApplyTo, in a
	// fixed per-variant order. Nil before ApplyTo.
	AffectedIDPaths() []vfs.IDPath

	encode(w *stream.Writer) error
}

// Write serializes a change: variant tag first, then the variant's
// constructor fields in fixed order.
func Write(w *stream.Writer, c Change) error {
	if err := w.WriteUint8(uint8(c.Kind())); err != nil {
		return err
	}
	return c.encode(w)
}

// Read deserializes the next change record. Unknown tags and truncated
// fields surface as *stream.DecodeError.
func Read(r *stream.Reader) (Change, error) {
	tag, err := r.ReadUint8("change kind")
	if err != nil {
		return nil, err
	}
	switch Kind(tag) {
	case KindCreateFile:
		return readCreateFile(r)
	case KindCreateDirectory:
		return readCreateDirectory(r)
	case KindDelete:
		return readDelete(r)
	case KindRename:
		return readRename(r)
	case KindMove:
		return readMove(r)
	case KindSetContent:
		return readSetContent(r)
	default:
		return nil, &stream.DecodeError{
			Offset: r.Offset() - 1,
			Field:  "change kind",
			Err:    fmt.Errorf("unknown variant tag %d", tag),
		}
	}
}
