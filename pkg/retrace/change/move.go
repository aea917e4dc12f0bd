package change

import (
	"github.com/jamesainslie/retrace/pkg/retrace/stream"
	"github.com/jamesainslie/retrace/pkg/retrace/vfs"
)

// Move records the re-parenting of an entry. It captures two id-paths:
// the entry's id-path before the move and after it. The after-path is
// what revert resolves; the before-path names the parent to move back
// under. In strict reverse-order undo both always resolve, because any
// later move of the same entry is reverted first.
type Move struct {
	path      vfs.Path
	newParent vfs.Path

	affected []vfs.IDPath
}

// NewMove constructs a move change.
func NewMove(path vfs.Path, newParent vfs.Path) *Move {
	return &Move{path: path, newParent: newParent}
}

func readMove(r *stream.Reader) (*Move, error) {
	path, err := r.ReadPath("move path")
	if err != nil {
		return nil, err
	}
	newParent, err := r.ReadPath("move new parent")
	if err != nil {
		return nil, err
	}
	return &Move{path: path, newParent: newParent}, nil
}

func (c *Move) Kind() Kind          { return KindMove }
func (c *Move) Path() vfs.Path      { return c.path }
func (c *Move) NewParent() vfs.Path { return c.newParent }

func (c *Move) ApplyTo(root *vfs.RootEntry) error {
	e, err := root.Get(c.path)
	if err != nil {
		return err
	}
	before := e.IDPath()
	if err := root.Move(c.path, c.newParent); err != nil {
		return err
	}
	c.affected = []vfs.IDPath{before, e.IDPath()}
	return nil
}

func (c *Move) RevertOn(root *vfs.RootEntry) error {
	if len(c.affected) < 2 {
		return ErrNotApplied
	}
	return root.MoveByID(c.affected[1], c.affected[0].Parent())
}

func (c *Move) AffectedIDPaths() []vfs.IDPath { return c.affected }

func (c *Move) encode(w *stream.Writer) error {
	if err := w.WritePath(c.path); err != nil {
		return err
	}
	return w.WritePath(c.newParent)
}
