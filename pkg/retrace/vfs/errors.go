package vfs

import "errors"

// Tree mutation errors. All are recoverable: a failed primitive leaves
// the tree exactly as it was.
var (
	// ErrNoSuchEntry indicates that a path or id-path could not be resolved.
	ErrNoSuchEntry = errors.New("no such entry")

	// ErrNoSuchParent indicates that an intermediate path segment is
	// missing or is not a directory.
	ErrNoSuchParent = errors.New("no such parent directory")

	// ErrNameCollision indicates that a sibling with the same name
	// already exists in the target directory.
	ErrNameCollision = errors.New("name already exists in directory")

	// ErrNotAFile indicates a content operation on a directory entry.
	ErrNotAFile = errors.New("entry is not a file")

	// ErrInvalidTarget indicates an operation that can never succeed on
	// its target: mutating the root entry, or moving a directory into
	// its own subtree.
	ErrInvalidTarget = errors.New("invalid target for operation")
)
