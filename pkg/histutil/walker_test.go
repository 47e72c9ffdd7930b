package histutil

import (
	"errors"
	"testing"
)

func TestWalker(t *testing.T) {
	s := NewMemStore("echo a", "ls", "echo b", "echo a", "echo c")
	w := s.Walker("echo")

	if w.Prefix() != "echo" || w.CurrentSeq() != -1 || w.CurrentCmd() != "" {
		t.Errorf("fresh walker not at the edited line")
	}
	// Duplicates are skipped, so "echo a" is only found at seq 3.
	wantSeqs := []int{4, 3, 2}
	for _, seq := range wantSeqs {
		if err := w.Prev(); err != nil {
			t.Fatalf("Prev -> %v", err)
		}
		if w.CurrentSeq() != seq {
			t.Errorf("CurrentSeq -> %d, want %d", w.CurrentSeq(), seq)
		}
	}
	if err := w.Prev(); !errors.Is(err, ErrEndOfHistory) {
		t.Errorf("Prev past the oldest -> %v", err)
	}
	if w.CurrentCmd() != "echo b" {
		t.Errorf("failed Prev moved the walker to %q", w.CurrentCmd())
	}

	if err := w.Next(); err != nil || w.CurrentCmd() != "echo a" {
		t.Errorf("Next -> (%v, %q)", err, w.CurrentCmd())
	}
	// Prev again reuses the stack.
	if err := w.Prev(); err != nil || w.CurrentCmd() != "echo b" {
		t.Errorf("Prev -> (%v, %q)", err, w.CurrentCmd())
	}
	w.Next()
	w.Next()
	if err := w.Next(); !errors.Is(err, ErrEndOfHistory) || w.CurrentSeq() != -1 {
		t.Errorf("Next past the newest -> (%v, %d)", err, w.CurrentSeq())
	}
	if err := w.Next(); !errors.Is(err, ErrEndOfHistory) {
		t.Errorf("Next at the edited line -> %v", err)
	}
}

func TestWalker_Empty(t *testing.T) {
	w := NewMemStore().Walker("")
	if err := w.Prev(); !errors.Is(err, ErrEndOfHistory) {
		t.Errorf("Prev on empty history -> %v", err)
	}
}

func TestWalker_PropagatesErrors(t *testing.T) {
	db := &testDB{cmds: []string{"a"}}
	s := mustNewDBStore(t, db)
	w := s.Walker("")
	db.oneOffError = errMock
	if err := w.Prev(); err != errMock {
		t.Errorf("Prev -> %v, want %v", err, errMock)
	}
}
