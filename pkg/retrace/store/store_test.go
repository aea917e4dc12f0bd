package store_test

import (
	"bytes"
	"testing"

	"github.com/jamesainslie/retrace/pkg/retrace/store"
)

func TestStoreAppendReadAll(t *testing.T) {
	s, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	records := [][]byte{[]byte("first"), []byte("second"), []byte("third")}
	for i, data := range records {
		if err := s.Append(uint64(i), data); err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
	}

	var got [][]byte
	var seqs []uint64
	err = s.ReadAll(func(seq uint64, data []byte) error {
		seqs = append(seqs, seq)
		got = append(got, data)
		return nil
	})
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	if len(got) != len(records) {
		t.Fatalf("Expected %d records, got %d", len(records), len(got))
	}
	for i := range records {
		if seqs[i] != uint64(i) {
			t.Errorf("Record %d has seq %d", i, seqs[i])
		}
		if !bytes.Equal(got[i], records[i]) {
			t.Errorf("Record %d: expected %q, got %q", i, records[i], got[i])
		}
	}
}

func TestStoreTruncate(t *testing.T) {
	s, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	for i := range 5 {
		if err := s.Append(uint64(i), []byte{byte(i)}); err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
	}

	if err := s.Truncate(2); err != nil {
		t.Fatalf("Truncate failed: %v", err)
	}

	n, err := s.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 records after truncate, got %d", n)
	}

	var maxSeq uint64
	err = s.ReadAll(func(seq uint64, data []byte) error {
		if seq > maxSeq {
			maxSeq = seq
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if maxSeq != 1 {
		t.Errorf("Expected max seq 1, got %d", maxSeq)
	}
}

func TestStoreHead(t *testing.T) {
	s, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	head, err := s.Head()
	if err != nil {
		t.Fatalf("Head failed: %v", err)
	}
	if head != 0 {
		t.Errorf("Fresh store should have head 0, got %d", head)
	}

	if err := s.SetHead(7); err != nil {
		t.Fatalf("SetHead failed: %v", err)
	}

	head, err = s.Head()
	if err != nil {
		t.Fatalf("Head failed: %v", err)
	}
	if head != 7 {
		t.Errorf("Expected head 7, got %d", head)
	}
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := store.Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.Append(0, []byte("payload")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := s.SetHead(1); err != nil {
		t.Fatalf("SetHead failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	s, err = store.Open(dir)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer s.Close()

	n, err := s.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 record after reopen, got %d", n)
	}

	head, err := s.Head()
	if err != nil {
		t.Fatalf("Head failed: %v", err)
	}
	if head != 1 {
		t.Errorf("Expected head 1 after reopen, got %d", head)
	}
}
