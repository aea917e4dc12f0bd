package vfs

import "fmt"

// RootEntry is the directory designated as tree root and the sole
// entry point for resolution and mutation. Every primitive validates
// its preconditions before touching the tree, so a returned error
// guarantees the tree is unchanged.
//
// RootEntry performs no locking of its own; the journal serializes all
// access to a tree instance.
type RootEntry struct {
	Entry
}

// NewRoot returns an empty tree. The root is a directory with id 0 and
// no name; it cannot be deleted, renamed or moved.
func NewRoot() *RootEntry {
	return &RootEntry{Entry: Entry{id: 0, kind: KindDirectory}}
}

// Get resolves a name path by walking child lookups from the root.
func (r *RootEntry) Get(path Path) (*Entry, error) {
	cur := &r.Entry
	for i, name := range path {
		if !cur.IsDirectory() {
			return nil, fmt.Errorf("%w: %s", ErrNoSuchEntry, Path(path[:i+1]))
		}
		next := cur.child(name)
		if next == nil {
			return nil, fmt.Errorf("%w: %s", ErrNoSuchEntry, Path(path[:i+1]))
		}
		cur = next
	}
	return cur, nil
}

// GetByID resolves an id path by walking id lookups from the root.
// Unlike Get, this survives renames and moves of the addressed entry's
// ancestors' names; it fails only if a referenced entry no longer
// exists at the recorded position.
func (r *RootEntry) GetByID(idPath IDPath) (*Entry, error) {
	cur := &r.Entry
	for i, id := range idPath {
		if !cur.IsDirectory() {
			return nil, fmt.Errorf("%w: id path %s", ErrNoSuchEntry, IDPath(idPath[:i+1]))
		}
		next := cur.childByID(id)
		if next == nil {
			return nil, fmt.Errorf("%w: id path %s", ErrNoSuchEntry, IDPath(idPath[:i+1]))
		}
		cur = next
	}
	return cur, nil
}

// Has reports whether a name path currently resolves.
func (r *RootEntry) Has(path Path) bool {
	_, err := r.Get(path)
	return err == nil
}

// PathOf returns the current name path of the entry addressed by an
// id path. Collaborators holding an IDPath use this after reverts to
// find where the entry lives now.
func (r *RootEntry) PathOf(idPath IDPath) (Path, error) {
	e, err := r.GetByID(idPath)
	if err != nil {
		return nil, err
	}
	return e.Path(), nil
}

// resolveParent resolves path.Parent() and verifies it is a directory
// with no child named path.Name().
func (r *RootEntry) resolveParent(path Path) (*Entry, error) {
	if path.IsRoot() {
		return nil, fmt.Errorf("%w: root", ErrInvalidTarget)
	}
	parent, err := r.Get(path.Parent())
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchParent, path.Parent())
	}
	if !parent.IsDirectory() {
		return nil, fmt.Errorf("%w: %s is a file", ErrNoSuchParent, path.Parent())
	}
	if parent.child(path.Name()) != nil {
		return nil, fmt.Errorf("%w: %s", ErrNameCollision, path)
	}
	return parent, nil
}

// CreateFile inserts a new file entry with the given permanent id.
func (r *RootEntry) CreateFile(id int64, path Path, content []byte) error {
	parent, err := r.resolveParent(path)
	if err != nil {
		return err
	}
	parent.attach(newFile(id, path.Name(), content))
	return nil
}

// CreateDirectory inserts a new directory entry with the given
// permanent id.
func (r *RootEntry) CreateDirectory(id int64, path Path) error {
	parent, err := r.resolveParent(path)
	if err != nil {
		return err
	}
	parent.attach(newDirectory(id, path.Name()))
	return nil
}

// Delete detaches the entry at path and its subtree. The ids involved
// are retired; the journal never hands them out again.
func (r *RootEntry) Delete(path Path) error {
	e, err := r.getMutable(path)
	if err != nil {
		return err
	}
	e.parent.detach(e)
	return nil
}

// DeleteByID is Delete addressed by id path; reverts of creation
// changes use it so that intervening renames cannot misdirect the
// deletion.
func (r *RootEntry) DeleteByID(idPath IDPath) error {
	e, err := r.getMutableByID(idPath)
	if err != nil {
		return err
	}
	e.parent.detach(e)
	return nil
}

// Rename updates the entry's name in place; its id is unchanged.
func (r *RootEntry) Rename(path Path, newName string) error {
	e, err := r.getMutable(path)
	if err != nil {
		return err
	}
	return r.rename(e, newName)
}

// RenameByID is Rename addressed by id path.
func (r *RootEntry) RenameByID(idPath IDPath, newName string) error {
	e, err := r.getMutableByID(idPath)
	if err != nil {
		return err
	}
	return r.rename(e, newName)
}

func (r *RootEntry) rename(e *Entry, newName string) error {
	if newName == e.name {
		return nil
	}
	if sibling := e.parent.child(newName); sibling != nil {
		return fmt.Errorf("%w: %s", ErrNameCollision, e.Path().Parent().Child(newName))
	}
	parent := e.parent
	parent.detach(e)
	e.name = newName
	parent.attach(e)
	return nil
}

// Move detaches the entry at path and re-attaches it under the
// directory at newParent. Moving an entry into its own subtree is
// rejected.
func (r *RootEntry) Move(path Path, newParent Path) error {
	e, err := r.getMutable(path)
	if err != nil {
		return err
	}
	target, err := r.Get(newParent)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNoSuchParent, newParent)
	}
	return r.move(e, target)
}

// MoveByID moves the entry at idPath under the directory at
// newParent, both addressed by id path.
func (r *RootEntry) MoveByID(idPath IDPath, newParent IDPath) error {
	e, err := r.getMutableByID(idPath)
	if err != nil {
		return err
	}
	target, err := r.GetByID(newParent)
	if err != nil {
		return fmt.Errorf("%w: id path %s", ErrNoSuchParent, newParent)
	}
	return r.move(e, target)
}

func (r *RootEntry) move(e, target *Entry) error {
	if !target.IsDirectory() {
		return fmt.Errorf("%w: %s is a file", ErrNoSuchParent, target.Path())
	}
	if e.isAncestorOf(target) {
		return fmt.Errorf("%w: cannot move %s into its own subtree", ErrInvalidTarget, e.Path())
	}
	if target == e.parent {
		return nil
	}
	if sibling := target.child(e.name); sibling != nil {
		return fmt.Errorf("%w: %s", ErrNameCollision, target.Path().Child(e.name))
	}
	e.parent.detach(e)
	target.attach(e)
	return nil
}

// SetContent replaces a file's payload wholesale.
func (r *RootEntry) SetContent(path Path, content []byte) error {
	e, err := r.Get(path)
	if err != nil {
		return err
	}
	return r.setContent(e, content)
}

// SetContentByID is SetContent addressed by id path.
func (r *RootEntry) SetContentByID(idPath IDPath, content []byte) error {
	e, err := r.GetByID(idPath)
	if err != nil {
		return err
	}
	return r.setContent(e, content)
}

func (r *RootEntry) setContent(e *Entry, content []byte) error {
	if e.IsDirectory() {
		return fmt.Errorf("%w: %s", ErrNotAFile, e.Path())
	}
	e.content = content
	return nil
}

// Restore reattaches a previously detached subtree under the directory
// addressed by parent. The snapshot keeps its original ids, names and
// contents; reverting a Delete change uses this to reproduce the exact
// pre-deletion state.
func (r *RootEntry) Restore(parent IDPath, snapshot *Entry) error {
	target, err := r.GetByID(parent)
	if err != nil {
		return fmt.Errorf("%w: id path %s", ErrNoSuchParent, parent)
	}
	if !target.IsDirectory() {
		return fmt.Errorf("%w: %s is a file", ErrNoSuchParent, target.Path())
	}
	if target.child(snapshot.name) != nil {
		return fmt.Errorf("%w: %s", ErrNameCollision, target.Path().Child(snapshot.name))
	}
	target.attach(snapshot)
	return nil
}

// getMutable resolves path and rejects the root as a mutation target.
func (r *RootEntry) getMutable(path Path) (*Entry, error) {
	if path.IsRoot() {
		return nil, fmt.Errorf("%w: root", ErrInvalidTarget)
	}
	return r.Get(path)
}

func (r *RootEntry) getMutableByID(idPath IDPath) (*Entry, error) {
	if len(idPath) == 0 {
		return nil, fmt.Errorf("%w: root", ErrInvalidTarget)
	}
	return r.GetByID(idPath)
}
