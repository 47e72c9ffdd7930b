package edit

import (
	"errors"
	"fmt"

	"src.shline.sh/pkg/keybind"
	"src.shline.sh/pkg/textbuf"
	"src.shline.sh/pkg/undo"
)

// ErrNothingToYank is returned by the yank actions when there is nothing to
// yank.
var ErrNothingToYank = errors.New("kill ring is empty")

// Editing is the state that a SimpleAction operates on: the buffer, its undo
// stack and the kill ring. Its methods keep the three consistent, and
// actions should use them rather than mutate the buffer directly.
type Editing struct {
	Buffer *textbuf.Buffer
	Undo   *undo.Stack
	Kill   *KillRing
}

// SimpleAction is an action that only edits text.
type SimpleAction func(*Editing) error

// ActionKind implements keybind.Action.
func (SimpleAction) ActionKind() keybind.Kind { return keybind.Simple }

// Dot returns the byte offset of the cursor.
func (e *Editing) Dot() int { return e.Buffer.Dot() }

// Content returns the text being edited.
func (e *Editing) Content() string { return e.Buffer.String() }

// Insert inserts text at the cursor and records the insertion.
func (e *Editing) Insert(text string) error {
	if text == "" {
		return nil
	}
	dot := e.Dot()
	if err := e.Buffer.Insert(dot, text); err != nil {
		return err
	}
	if err := e.Buffer.SetCursor(dot + len(text)); err != nil {
		return err
	}
	return e.Undo.Record(undo.Insert, dot, text, dot)
}

// Delete deletes the span [from, to) and records the deletion. It returns the
// deleted text.
func (e *Editing) Delete(from, to int) (string, error) {
	if from > to {
		from, to = to, from
	}
	if from == to {
		return "", nil
	}
	dot := e.Dot()
	text, err := e.Buffer.Delete(from, to-from)
	if err != nil {
		return "", err
	}
	return text, e.Undo.Record(undo.Delete, from, text, dot)
}

// KillTo deletes the span between the cursor and off and records it in the kill
// ring.
func (e *Editing) KillTo(off int) error {
	dot := e.Dot()
	text, err := e.Delete(dot, off)
	if err != nil {
		return err
	}
	e.Kill.Record(text, off < dot)
	return nil
}

// Replace replaces the span [from, to) with text as one undoable action and
// puts the cursor after the new text.
func (e *Editing) Replace(from, to int, text string) error {
	if from > to {
		from, to = to, from
	}
	old := e.Buffer.Slice(from, to)
	if old == text {
		return e.MoveTo(from + len(text))
	}
	dot := e.Dot()
	if _, err := e.Buffer.Delete(from, to-from); err != nil {
		return err
	}
	if err := e.Buffer.Insert(from, text); err != nil {
		// Put the old text back so that the buffer is unchanged.
		if restoreErr := e.Buffer.Insert(from, old); restoreErr != nil {
			return fmt.Errorf("%w; restoring: %v", err, restoreErr)
		}
		return err
	}
	if err := e.Buffer.SetCursor(from + len(text)); err != nil {
		return err
	}
	return e.Undo.RecordReplace(from, old, text, dot)
}

// ReplaceAll replaces the whole content as one undoable action, with the
// cursor at the end.
func (e *Editing) ReplaceAll(text string) error {
	return e.Replace(0, e.Buffer.Len(), text)
}

// MoveTo moves the cursor. Moving the cursor ends the current group of merged
// insertions.
func (e *Editing) MoveTo(off int) error {
	if off == e.Dot() {
		return nil
	}
	if err := e.Buffer.SetCursor(off); err != nil {
		return err
	}
	e.Undo.Seal()
	return nil
}
