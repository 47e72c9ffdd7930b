package histutil

import "src.shline.sh/pkg/store/storedefs"

// Walker walks through the history entries with a given (possibly empty)
// prefix, skipping duplicate entries. It starts at the line being edited,
// before the newest entry.
type Walker struct {
	cursor Cursor
	prefix string

	// Entries visited so far, newest first.
	stack []storedefs.Cmd
	// Number of entries in stack that the walker has moved back through; the
	// current entry is stack[top-1]. Zero means the walker is at the line
	// being edited.
	top     int
	inStack map[string]bool
}

// NewWalker creates a Walker from a Cursor positioned after the newest entry.
func NewWalker(cursor Cursor, prefix string) *Walker {
	return &Walker{cursor: cursor, prefix: prefix, inStack: map[string]bool{}}
}

// Prefix returns the prefix of the commands that the walker walks through.
func (w *Walker) Prefix() string { return w.prefix }

// CurrentSeq returns the sequence number of the current entry, or -1 if the
// walker is at the line being edited.
func (w *Walker) CurrentSeq() int {
	if w.top == 0 {
		return -1
	}
	return w.stack[w.top-1].Seq
}

// CurrentCmd returns the content of the current entry, or "" if the walker is
// at the line being edited.
func (w *Walker) CurrentCmd() string {
	if w.top == 0 {
		return ""
	}
	return w.stack[w.top-1].Text
}

// Prev walks to the previous matching history entry, skipping all duplicates.
// It returns ErrEndOfHistory when there is none, leaving the walker
// unchanged.
func (w *Walker) Prev() error {
	if w.top < len(w.stack) {
		w.top++
		return nil
	}
	for {
		w.cursor.Prev()
		cmd, err := w.cursor.Get()
		if err != nil {
			return err
		}
		if !w.inStack[cmd.Text] {
			w.inStack[cmd.Text] = true
			w.stack = append(w.stack, cmd)
			w.top++
			return nil
		}
	}
}

// Next walks to the next matching history entry. When it walks past the
// newest one, it returns ErrEndOfHistory and the walker is back at the line
// being edited.
func (w *Walker) Next() error {
	if w.top == 0 {
		return ErrEndOfHistory
	}
	w.top--
	if w.top == 0 {
		return ErrEndOfHistory
	}
	return nil
}
