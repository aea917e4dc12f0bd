package change

import (
	"github.com/jamesainslie/retrace/pkg/retrace/stream"
	"github.com/jamesainslie/retrace/pkg/retrace/vfs"
)

// Rename records an in-place name change; the entry's id and position
// are untouched.
type Rename struct {
	path    vfs.Path
	newName string

	affected []vfs.IDPath
	oldName  string
}

// NewRename constructs a rename change.
func NewRename(path vfs.Path, newName string) *Rename {
	return &Rename{path: path, newName: newName}
}

func readRename(r *stream.Reader) (*Rename, error) {
	path, err := r.ReadPath("rename path")
	if err != nil {
		return nil, err
	}
	newName, err := r.ReadString("rename new name")
	if err != nil {
		return nil, err
	}
	return &Rename{path: path, newName: newName}, nil
}

func (c *Rename) Kind() Kind      { return KindRename }
func (c *Rename) Path() vfs.Path  { return c.path }
func (c *Rename) NewName() string { return c.newName }

// ApplyTo captures the entry's id-path and old name immediately before
// renaming. A rename does not change the id-path.
func (c *Rename) ApplyTo(root *vfs.RootEntry) error {
	e, err := root.Get(c.path)
	if err != nil {
		return err
	}
	idPath := e.IDPath()
	oldName := e.Name()
	if err := root.Rename(c.path, c.newName); err != nil {
		return err
	}
	c.affected = []vfs.IDPath{idPath}
	c.oldName = oldName
	return nil
}

// RevertOn renames the entry back to its original name at its
// id-resolved location, wherever later moves may have put it.
func (c *Rename) RevertOn(root *vfs.RootEntry) error {
	if len(c.affected) == 0 {
		return ErrNotApplied
	}
	return root.RenameByID(c.affected[0], c.oldName)
}

func (c *Rename) AffectedIDPaths() []vfs.IDPath { return c.affected }

func (c *Rename) encode(w *stream.Writer) error {
	if err := w.WritePath(c.path); err != nil {
		return err
	}
	return w.WriteString(c.newName)
}
