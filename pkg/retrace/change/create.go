package change

import (
	"github.com/jamesainslie/retrace/pkg/retrace/stream"
	"github.com/jamesainslie/retrace/pkg/retrace/vfs"
)

// CreateFile records the creation of a file entry with a given
// permanent id and initial content.
type CreateFile struct {
	path    vfs.Path
	id      int64
	content []byte

	affected []vfs.IDPath
}

// NewCreateFile constructs a file-creation change. The id must come
// from the journal's allocator so it is never reused.
func NewCreateFile(id int64, path vfs.Path, content []byte) *CreateFile {
	return &CreateFile{path: path, id: id, content: content}
}

func readCreateFile(r *stream.Reader) (*CreateFile, error) {
	path, err := r.ReadPath("create-file path")
	if err != nil {
		return nil, err
	}
	id, err := r.ReadInt64("create-file id")
	if err != nil {
		return nil, err
	}
	content, err := r.ReadBytes("create-file content")
	if err != nil {
		return nil, err
	}
	return &CreateFile{path: path, id: id, content: content}, nil
}

func (c *CreateFile) Kind() Kind      { return KindCreateFile }
func (c *CreateFile) Path() vfs.Path  { return c.path }
func (c *CreateFile) ID() int64       { return c.id }
func (c *CreateFile) Content() []byte { return c.content }

// ApplyTo creates the file, then resolves the just-created path once
// more to capture the new entry's id-path.
func (c *CreateFile) ApplyTo(root *vfs.RootEntry) error {
	if err := root.CreateFile(c.id, c.path, c.content); err != nil {
		return err
	}
	e, err := root.Get(c.path)
	if err != nil {
		return err
	}
	c.affected = []vfs.IDPath{e.IDPath()}
	return nil
}

// RevertOn deletes the created entry, located by its captured id-path.
func (c *CreateFile) RevertOn(root *vfs.RootEntry) error {
	if len(c.affected) == 0 {
		return ErrNotApplied
	}
	return root.DeleteByID(c.affected[0])
}

func (c *CreateFile) AffectedIDPaths() []vfs.IDPath { return c.affected }

func (c *CreateFile) encode(w *stream.Writer) error {
	if err := w.WritePath(c.path); err != nil {
		return err
	}
	if err := w.WriteInt64(c.id); err != nil {
		return err
	}
	return w.WriteBytes(c.content)
}

// CreateDirectory records the creation of a directory entry.
type CreateDirectory struct {
	path vfs.Path
	id   int64

	affected []vfs.IDPath
}

// NewCreateDirectory constructs a directory-creation change.
func NewCreateDirectory(id int64, path vfs.Path) *CreateDirectory {
	return &CreateDirectory{path: path, id: id}
}

func readCreateDirectory(r *stream.Reader) (*CreateDirectory, error) {
	path, err := r.ReadPath("create-dir path")
	if err != nil {
		return nil, err
	}
	id, err := r.ReadInt64("create-dir id")
	if err != nil {
		return nil, err
	}
	return &CreateDirectory{path: path, id: id}, nil
}

func (c *CreateDirectory) Kind() Kind     { return KindCreateDirectory }
func (c *CreateDirectory) Path() vfs.Path { return c.path }
func (c *CreateDirectory) ID() int64      { return c.id }

func (c *CreateDirectory) ApplyTo(root *vfs.RootEntry) error {
	if err := root.CreateDirectory(c.id, c.path); err != nil {
		return err
	}
	e, err := root.Get(c.path)
	if err != nil {
		return err
	}
	c.affected = []vfs.IDPath{e.IDPath()}
	return nil
}

func (c *CreateDirectory) RevertOn(root *vfs.RootEntry) error {
	if len(c.affected) == 0 {
		return ErrNotApplied
	}
	return root.DeleteByID(c.affected[0])
}

func (c *CreateDirectory) AffectedIDPaths() []vfs.IDPath { return c.affected }

func (c *CreateDirectory) encode(w *stream.Writer) error {
	if err := w.WritePath(c.path); err != nil {
		return err
	}
	return w.WriteInt64(c.id)
}
