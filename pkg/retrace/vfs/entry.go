package vfs

import "sort"

// Kind discriminates file entries from directory entries.
type Kind int

const (
	KindFile Kind = iota
	KindDirectory
)

// String returns "file" or "directory".
func (k Kind) String() string {
	if k == KindDirectory {
		return "directory"
	}
	return "file"
}

// Entry is a node in the virtual tree: a file with an opaque content
// payload, or a directory with name-ordered children. Every entry
// carries a permanent id assigned at creation and never reused.
//
// The parent pointer is a back-reference for upward traversal only; the
// directory owns its children, never the reverse, and the pointer is
// never serialized.
type Entry struct {
	id       int64
	name     string
	kind     Kind
	content  []byte
	children []*Entry
	parent   *Entry
}

func newFile(id int64, name string, content []byte) *Entry {
	return &Entry{id: id, name: name, kind: KindFile, content: content}
}

func newDirectory(id int64, name string) *Entry {
	return &Entry{id: id, name: name, kind: KindDirectory}
}

// ID returns the entry's permanent id.
func (e *Entry) ID() int64 { return e.id }

// Name returns the entry's current name.
func (e *Entry) Name() string { return e.name }

// Kind returns whether the entry is a file or a directory.
func (e *Entry) Kind() Kind { return e.kind }

// IsDirectory reports whether the entry is a directory.
func (e *Entry) IsDirectory() bool { return e.kind == KindDirectory }

// Content returns the file payload. It is nil for directories. The
// returned slice must not be modified.
func (e *Entry) Content() []byte { return e.content }

// Parent returns the owning directory, or nil for the root.
func (e *Entry) Parent() *Entry { return e.parent }

// Children returns the directory's children in name order. The
// returned slice is a copy; the entries are shared.
func (e *Entry) Children() []*Entry {
	out := make([]*Entry, len(e.children))
	copy(out, e.children)
	return out
}

// Path returns the entry's current name path from the root.
func (e *Entry) Path() Path {
	if e.parent == nil {
		return nil
	}
	return append(e.parent.Path(), e.name)
}

// IDPath returns the entry's id path from the root. The root itself is
// not part of the id path.
func (e *Entry) IDPath() IDPath {
	if e.parent == nil {
		return nil
	}
	return append(e.parent.IDPath(), e.id)
}

// Clone returns a deep copy of the entry and its subtree, detached
// from any parent. Ids, names and contents are preserved, so a clone
// taken before a deletion can restore the exact prior state.
func (e *Entry) Clone() *Entry {
	c := &Entry{id: e.id, name: e.name, kind: e.kind}
	if e.content != nil {
		c.content = make([]byte, len(e.content))
		copy(c.content, e.content)
	}
	for _, child := range e.children {
		cc := child.Clone()
		cc.parent = c
		c.children = append(c.children, cc)
	}
	return c
}

// child returns the direct child with the given name, or nil.
func (e *Entry) child(name string) *Entry {
	i := sort.Search(len(e.children), func(i int) bool {
		return e.children[i].name >= name
	})
	if i < len(e.children) && e.children[i].name == name {
		return e.children[i]
	}
	return nil
}

// childByID returns the direct child with the given id, or nil.
func (e *Entry) childByID(id int64) *Entry {
	for _, c := range e.children {
		if c.id == id {
			return c
		}
	}
	return nil
}

// attach inserts child at its name-ordered position and sets the
// back-reference. The caller must have checked for name collisions.
func (e *Entry) attach(child *Entry) {
	i := sort.Search(len(e.children), func(i int) bool {
		return e.children[i].name >= child.name
	})
	e.children = append(e.children, nil)
	copy(e.children[i+1:], e.children[i:])
	e.children[i] = child
	child.parent = e
}

// detach removes child from the directory and clears its
// back-reference.
func (e *Entry) detach(child *Entry) {
	for i, c := range e.children {
		if c == child {
			e.children = append(e.children[:i], e.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// isAncestorOf reports whether e is target or an ancestor of target.
func (e *Entry) isAncestorOf(target *Entry) bool {
	for cur := target; cur != nil; cur = cur.parent {
		if cur == e {
			return true
		}
	}
	return false
}
