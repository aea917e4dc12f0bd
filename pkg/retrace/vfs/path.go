// Package vfs implements the virtual file tree underlying the change
// journal. Entries carry permanent numeric ids, so the same node can be
// addressed two ways: by Path (a sequence of names, valid only for the
// current tree shape) or by IDPath (a sequence of ids, stable across
// renames and moves for as long as the entry exists).
package vfs

import (
	"strconv"
	"strings"
)

// Path addresses an entry by the names of its ancestors, root first.
// An empty Path addresses the root itself.
type Path []string

// ParsePath splits a slash-separated string into a Path.
// Leading, trailing and repeated slashes are ignored.
func ParsePath(s string) Path {
	var p Path
	for _, seg := range strings.Split(s, "/") {
		if seg != "" {
			p = append(p, seg)
		}
	}
	return p
}

// String returns the slash-joined form of the path.
func (p Path) String() string {
	return strings.Join(p, "/")
}

// IsRoot reports whether the path addresses the root entry.
func (p Path) IsRoot() bool {
	return len(p) == 0
}

// Name returns the last segment, or "" for the root path.
func (p Path) Name() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Parent returns the path without its last segment.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1]
}

// Child returns a new path with name appended. The receiver is not
// modified.
func (p Path) Child(name string) Path {
	child := make(Path, len(p)+1)
	copy(child, p)
	child[len(p)] = name
	return child
}

// Equal reports whether two paths have identical segments.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// IDPath addresses an entry by the permanent ids of its ancestors, root
// first. Ids never change and are never reused, so an IDPath captured
// at one moment still resolves after renames and moves elsewhere in the
// tree, until one of the referenced entries is deleted.
type IDPath []int64

// ID returns the id of the addressed entry (the last element), or 0
// for the root path.
func (p IDPath) ID() int64 {
	if len(p) == 0 {
		return 0
	}
	return p[len(p)-1]
}

// Parent returns the id-path without its last element.
func (p IDPath) Parent() IDPath {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1]
}

// Equal reports whether two id-paths have identical elements.
func (p IDPath) Equal(other IDPath) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// String returns the slash-joined decimal form, e.g. "1/4/9".
func (p IDPath) String() string {
	segs := make([]string, len(p))
	for i, id := range p {
		segs[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(segs, "/")
}
