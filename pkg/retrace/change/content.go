package change

import (
	"github.com/jamesainslie/retrace/pkg/retrace/stream"
	"github.com/jamesainslie/retrace/pkg/retrace/vfs"
)

// SetContent records a wholesale replacement of a file's payload.
// Content is opaque to the engine; there is no diffing or merging.
type SetContent struct {
	path    vfs.Path
	content []byte

	affected   []vfs.IDPath
	oldContent []byte
}

// NewSetContent constructs a content change.
func NewSetContent(path vfs.Path, content []byte) *SetContent {
	return &SetContent{path: path, content: content}
}

func readSetContent(r *stream.Reader) (*SetContent, error) {
	path, err := r.ReadPath("edit path")
	if err != nil {
		return nil, err
	}
	content, err := r.ReadBytes("edit content")
	if err != nil {
		return nil, err
	}
	return &SetContent{path: path, content: content}, nil
}

func (c *SetContent) Kind() Kind      { return KindSetContent }
func (c *SetContent) Path() vfs.Path  { return c.path }
func (c *SetContent) Content() []byte { return c.content }

// ApplyTo captures the entry's id-path and previous payload before
// swapping in the new one.
func (c *SetContent) ApplyTo(root *vfs.RootEntry) error {
	e, err := root.Get(c.path)
	if err != nil {
		return err
	}
	idPath := e.IDPath()
	old := e.Content()
	if err := root.SetContent(c.path, c.content); err != nil {
		return err
	}
	c.affected = []vfs.IDPath{idPath}
	c.oldContent = old
	return nil
}

// RevertOn restores the previous payload at the id-resolved entry.
func (c *SetContent) RevertOn(root *vfs.RootEntry) error {
	if len(c.affected) == 0 {
		return ErrNotApplied
	}
	return root.SetContentByID(c.affected[0], c.oldContent)
}

func (c *SetContent) AffectedIDPaths() []vfs.IDPath { return c.affected }

func (c *SetContent) encode(w *stream.Writer) error {
	if err := w.WritePath(c.path); err != nil {
		return err
	}
	return w.WriteBytes(c.content)
}
