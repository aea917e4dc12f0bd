// Package store provides Badger DB-backed persistence for the change
// journal. Records are opaque encoded change payloads keyed by
// sequence number; the only read pattern is an ordered forward scan.
package store

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Key layout.
const (
	prefixChange = "c:" // c:<8-byte big-endian seq> -> encoded change record
	keyHead      = "m:head"
)

// Store is the persisted journal backing.
type Store struct {
	db *badger.DB
}

// Open opens or creates a store at the given directory.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable badger's own logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening journal store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

func changeKey(seq uint64) []byte {
	key := make([]byte, len(prefixChange)+8)
	copy(key, prefixChange)
	binary.BigEndian.PutUint64(key[len(prefixChange):], seq)
	return key
}

// Append stores an encoded change record at the given sequence number.
func (s *Store) Append(seq uint64, data []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(changeKey(seq), data)
	})
}

// ReadAll scans all records in sequence order and calls fn for each.
// A non-nil error from fn aborts the scan.
func (s *Store) ReadAll(fn func(seq uint64, data []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixChange)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			seq := binary.BigEndian.Uint64(item.Key()[len(prefixChange):])
			err := item.Value(func(val []byte) error {
				data := make([]byte, len(val))
				copy(data, val)
				return fn(seq, data)
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Truncate removes all records with sequence >= from.
func (s *Store) Truncate(from uint64) error {
	return s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)

		var keys [][]byte
		for it.Seek(changeKey(from)); it.ValidForPrefix([]byte(prefixChange)); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

// Count returns the number of stored records.
func (s *Store) Count() (uint64, error) {
	var n uint64
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixChange)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Head returns the applied watermark: records below it are in effect
// on the live tree, records at or above it have been reverted. A
// fresh store has head 0.
func (s *Store) Head() (uint64, error) {
	var head uint64
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyHead))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("malformed head value: %d bytes", len(val))
			}
			head = binary.BigEndian.Uint64(val)
			return nil
		})
	})
	return head, err
}

// SetHead records the applied watermark.
func (s *Store) SetHead(head uint64) error {
	val := make([]byte, 8)
	binary.BigEndian.PutUint64(val, head)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyHead), val)
	})
}
