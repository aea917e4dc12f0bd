// Package journal maintains the ordered change list for one virtual
// tree: append-and-apply, reverse-order undo, and replay. One Journal
// plus its RootEntry form a single-writer unit; every public entry
// point holds the journal mutex for its whole duration, so concurrent
// callers can never observe a torn tree.
package journal

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/jamesainslie/retrace/pkg/retrace/change"
	"github.com/jamesainslie/retrace/pkg/retrace/logging"
	"github.com/jamesainslie/retrace/pkg/retrace/store"
	"github.com/jamesainslie/retrace/pkg/retrace/stream"
	"github.com/jamesainslie/retrace/pkg/retrace/vfs"
)

// ErrNothingToRevert is returned when RevertLast asks for more changes
// than are currently applied.
var ErrNothingToRevert = errors.New("nothing to revert")

// Journal is the ordered, append-only sequence of changes applied to
// one tree, optionally persisted to a store.
//
// Reverting does not delete records: it moves the applied watermark
// backwards, leaving the reverted tail in place. Appending a new
// change while such a tail exists truncates it first, linearizing the
// history the way an editor's undo-then-type does.
type Journal struct {
	mu      sync.Mutex
	root    *vfs.RootEntry
	changes []change.Change
	applied int
	nextID  int64
	st      *store.Store
	log     *logging.Logger
}

// New returns an empty in-memory journal over a fresh tree.
func New() *Journal {
	return &Journal{
		root:   vfs.NewRoot(),
		nextID: 1,
		log:    logging.Get("journal"),
	}
}

// Open loads a persisted journal: all stored records are decoded, the
// first head-many are applied to a fresh tree, and any reverted tail
// beyond the head is kept for potential truncation. A decode error
// aborts the load; a corrupted journal is reported, never guessed at.
func Open(st *store.Store) (*Journal, error) {
	j := New()
	j.st = st

	head, err := st.Head()
	if err != nil {
		return nil, fmt.Errorf("reading journal head: %w", err)
	}

	var seqs []uint64
	err = st.ReadAll(func(seq uint64, data []byte) error {
		c, err := decode(data)
		if err != nil {
			return fmt.Errorf("journal record %d: %w", seq, err)
		}
		j.changes = append(j.changes, c)
		seqs = append(seqs, seq)
		return nil
	})
	if err != nil {
		return nil, err
	}
	for i, seq := range seqs {
		if seq != uint64(i) {
			return nil, fmt.Errorf("journal record gap: have seq %d, want %d", seq, i)
		}
	}
	if head > uint64(len(j.changes)) {
		return nil, fmt.Errorf("journal head %d beyond %d stored records", head, len(j.changes))
	}

	for i := 0; i < int(head); i++ {
		if err := j.changes[i].ApplyTo(j.root); err != nil {
			return nil, fmt.Errorf("replaying journal record %d: %w", i, err)
		}
	}
	j.applied = int(head)
	j.bumpIDs(j.changes)

	j.log.Info("journal opened", "records", len(j.changes), "applied", j.applied)
	return j, nil
}

// NextID allocates a permanent entry id. Ids are monotonic and never
// reused, even for entries that have since been deleted.
func (j *Journal) NextID() int64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	id := j.nextID
	j.nextID++
	return id
}

// bumpIDs advances the allocator past every id carried by creation
// changes, so ids stay unique across restarts.
func (j *Journal) bumpIDs(changes []change.Change) {
	for _, c := range changes {
		if carrier, ok := c.(interface{ ID() int64 }); ok {
			if id := carrier.ID(); id >= j.nextID {
				j.nextID = id + 1
			}
		}
	}
}

// Apply appends the change and applies it to the live tree. A
// tree-mutation error rejects the change: the tree is unchanged and
// the journal does not grow. If previously reverted changes remain
// beyond the watermark, they are truncated first.
func (j *Journal) Apply(c change.Change) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.applied < len(j.changes) {
		dropped := len(j.changes) - j.applied
		j.changes = j.changes[:j.applied]
		if j.st != nil {
			if err := j.st.Truncate(uint64(j.applied)); err != nil {
				return fmt.Errorf("truncating reverted tail: %w", err)
			}
		}
		j.log.Debug("truncated reverted tail", "dropped", dropped)
	}

	if err := c.ApplyTo(j.root); err != nil {
		return err
	}

	seq := len(j.changes)
	if j.st != nil {
		data, err := encode(c)
		if err != nil {
			return fmt.Errorf("encoding change: %w", err)
		}
		if err := j.st.Append(uint64(seq), data); err != nil {
			return fmt.Errorf("persisting change: %w", err)
		}
		if err := j.st.SetHead(uint64(seq + 1)); err != nil {
			return fmt.Errorf("advancing journal head: %w", err)
		}
	}

	j.changes = append(j.changes, c)
	j.applied++
	j.bumpIDs(j.changes[seq:])

	j.log.Debug("change applied", "seq", seq, "kind", c.Kind(), "path", c.Path())
	return nil
}

// RevertLast undoes the most recently applied n changes in strict
// reverse order. Records stay in the store; only the watermark moves.
func (j *Journal) RevertLast(n int) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if n <= 0 {
		return nil
	}
	if n > j.applied {
		return fmt.Errorf("%w: %d changes applied, %d requested", ErrNothingToRevert, j.applied, n)
	}

	for i := 0; i < n; i++ {
		c := j.changes[j.applied-1]
		if err := c.RevertOn(j.root); err != nil {
			return fmt.Errorf("reverting change %d (%s %s): %w", j.applied-1, c.Kind(), c.Path(), err)
		}
		j.applied--
		j.log.Debug("change reverted", "seq", j.applied, "kind", c.Kind(), "path", c.Path())
	}

	if j.st != nil {
		if err := j.st.SetHead(uint64(j.applied)); err != nil {
			return fmt.Errorf("moving journal head: %w", err)
		}
	}
	return nil
}

// ReplayTo rebuilds a fresh tree from empty by re-applying the first n
// stored changes in order. The journal's own tree is untouched; the
// whole replay runs inside the exclusive section.
func (j *Journal) ReplayTo(n int) (*vfs.RootEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if n < 0 || n > len(j.changes) {
		return nil, fmt.Errorf("replay bound %d out of range [0, %d]", n, len(j.changes))
	}

	root := vfs.NewRoot()
	for i := 0; i < n; i++ {
		// Re-applying must go through a fresh decode: the stored
		// instances already carry apply-time state and are single-shot.
		data, err := encode(j.changes[i])
		if err != nil {
			return nil, fmt.Errorf("encoding change %d: %w", i, err)
		}
		c, err := decode(data)
		if err != nil {
			return nil, fmt.Errorf("decoding change %d: %w", i, err)
		}
		if err := c.ApplyTo(root); err != nil {
			return nil, fmt.Errorf("replaying change %d: %w", i, err)
		}
	}
	return root, nil
}

// Replay rebuilds a fresh tree from the currently applied prefix.
func (j *Journal) Replay() (*vfs.RootEntry, error) {
	j.mu.Lock()
	n := j.applied
	j.mu.Unlock()
	return j.ReplayTo(n)
}

// Len returns the number of stored changes, including any reverted
// tail.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.changes)
}

// Applied returns the number of changes currently in effect.
func (j *Journal) Applied() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.applied
}

// Changes returns the stored changes in order. The slice is a copy;
// the changes are shared and must be treated as read-only.
func (j *Journal) Changes() []change.Change {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]change.Change, len(j.changes))
	copy(out, j.changes)
	return out
}

// Change returns the stored change at seq.
func (j *Journal) Change(seq int) (change.Change, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if seq < 0 || seq >= len(j.changes) {
		return nil, fmt.Errorf("no change with seq %d", seq)
	}
	return j.changes[seq], nil
}

// Resolve looks up an entry by name path on the live tree.
func (j *Journal) Resolve(path vfs.Path) (*vfs.Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.root.Get(path)
}

// PathOf returns the current name path for a held id-path.
func (j *Journal) PathOf(idPath vfs.IDPath) (vfs.Path, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.root.PathOf(idPath)
}

// Has reports whether a name path currently resolves on the live tree.
func (j *Journal) Has(path vfs.Path) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.root.Has(path)
}

func encode(c change.Change) ([]byte, error) {
	var buf bytes.Buffer
	if err := change.Write(stream.NewWriter(&buf), c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(data []byte) (change.Change, error) {
	return change.Read(stream.NewReader(bytes.NewReader(data)))
}
