package change

import (
	"github.com/jamesainslie/retrace/pkg/retrace/stream"
	"github.com/jamesainslie/retrace/pkg/retrace/vfs"
)

// Delete records the removal of an entry and its subtree. Applying it
// retains a deep copy of the doomed subtree, so reverting can restore
// every name, id and content exactly as observed just before deletion.
type Delete struct {
	path vfs.Path

	affected []vfs.IDPath
	saved    *vfs.Entry
}

// NewDelete constructs a deletion change.
func NewDelete(path vfs.Path) *Delete {
	return &Delete{path: path}
}

func readDelete(r *stream.Reader) (*Delete, error) {
	path, err := r.ReadPath("delete path")
	if err != nil {
		return nil, err
	}
	return &Delete{path: path}, nil
}

func (c *Delete) Kind() Kind     { return KindDelete }
func (c *Delete) Path() vfs.Path { return c.path }

// ApplyTo captures the entry's id-path and subtree snapshot, then
// detaches it. The entry's ids are retired permanently.
func (c *Delete) ApplyTo(root *vfs.RootEntry) error {
	e, err := root.Get(c.path)
	if err != nil {
		return err
	}
	idPath := e.IDPath()
	if len(idPath) == 0 {
		// Root cannot be deleted; let the primitive report it.
		return root.Delete(c.path)
	}
	saved := e.Clone()
	if err := root.Delete(c.path); err != nil {
		return err
	}
	c.affected = []vfs.IDPath{idPath}
	c.saved = saved
	return nil
}

// RevertOn re-creates the deleted subtree under the id-resolved parent.
func (c *Delete) RevertOn(root *vfs.RootEntry) error {
	if len(c.affected) == 0 {
		return ErrNotApplied
	}
	return root.Restore(c.affected[0].Parent(), c.saved.Clone())
}

func (c *Delete) AffectedIDPaths() []vfs.IDPath { return c.affected }

func (c *Delete) encode(w *stream.Writer) error {
	return w.WritePath(c.path)
}
