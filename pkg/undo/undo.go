// Package undo implements the undo/redo stack of the line editor.
//
// The stack records reversible actions keyed to byte offsets of a text buffer
// and replays them against a Target. Consecutive insertions typed in quick
// succession are merged into one logical edit according to the following
// policy. A new Insert merges into the top of the stack iff all of these hold:
//
//   - MergeWindow is positive;
//   - the top action is an Insert made by Record, and neither Seal, Undo nor
//     Redo has been called since;
//   - the new text starts where the top action's text ends;
//   - at most MergeWindow has elapsed since the top action was last updated
//     (a gap of exactly MergeWindow still merges);
//   - neither the new text nor the top action contains a newline;
//   - the new text does not start with whitespace while the top action ends
//     with non-whitespace.
//
// The last rule makes "echo hello" undo as "echo" and " hello".
package undo

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Defaults used when the corresponding option is zero.
const (
	DefaultCapacity    = 200
	DefaultMergeWindow = time.Second
)

var (
	// ErrNothingToUndo is returned by Undo when no action precedes the current
	// pointer.
	ErrNothingToUndo = errors.New("nothing to undo")
	// ErrNothingToRedo is returned by Redo when no undone action follows the
	// current pointer.
	ErrNothingToRedo = errors.New("nothing to redo")
	// ErrInvalidParameter is returned for malformed options or actions.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrCorrupt is returned by Validate when the stack's invariants are
	// violated.
	ErrCorrupt = errors.New("undo stack corrupt")
)

// Kind is the kind of a recorded action.
type Kind int

// Possible values for Kind.
const (
	Insert Kind = iota
	Delete
	MoveCursor
	Replace
)

var kindNames = [...]string{"insert", "delete", "move-cursor", "replace"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Action is a recorded reversible action. All text fields are owned copies.
type Action struct {
	Kind Kind
	// Byte offset where the action took place. For MoveCursor, the
	// destination of the cursor.
	Pos int
	// For Insert, the inserted text; for Delete, the removed text; for
	// Replace, the text that replaced Replaced. Empty for MoveCursor.
	Text string
	// Always len(Text).
	Len int
	// For Replace, the text that was replaced.
	Replaced     string
	CursorBefore int
	CursorAfter  int
	// Time of the last update to the action.
	At time.Time
}

// Target is the text buffer that actions are replayed on.
type Target interface {
	Insert(off int, text string) error
	Delete(off, n int) (string, error)
	SetCursor(off int) error
}

// Options configures a Stack.
type Options struct {
	// Maximum number of actions kept. Zero means DefaultCapacity.
	Capacity int
	// Maximum gap between merged insertions. Zero disables merging.
	MergeWindow time.Duration
	// Clock used to timestamp actions. Nil means time.Now.
	Now func() time.Time
}

// Stack is an undo/redo stack. Actions left of the current pointer can be
// undone; actions right of it can be redone.
type Stack struct {
	capacity    int
	mergeWindow time.Duration
	now         func() time.Time

	actions []Action
	current int
	// Set when the top action must not absorb the next insertion.
	sealed bool
}

// New creates a new Stack.
func New(opts Options) (*Stack, error) {
	if opts.Capacity < 0 || opts.MergeWindow < 0 {
		return nil, ErrInvalidParameter
	}
	if opts.Capacity == 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Stack{capacity: opts.Capacity, mergeWindow: opts.MergeWindow, now: opts.Now}, nil
}

// Len returns the number of recorded actions, including undone ones.
func (s *Stack) Len() int { return len(s.actions) }

// Current returns the current pointer.
func (s *Stack) Current() int { return s.current }

// CanUndo reports whether Undo would succeed on a well-behaved target.
func (s *Stack) CanUndo() bool { return s.current > 0 }

// CanRedo reports whether Redo would succeed on a well-behaved target.
func (s *Stack) CanRedo() bool { return s.current < len(s.actions) }

// Actions returns a copy of all recorded actions.
func (s *Stack) Actions() []Action {
	return append([]Action(nil), s.actions...)
}

// Clear removes all actions.
func (s *Stack) Clear() {
	s.actions = nil
	s.current = 0
	s.sealed = false
}

// Seal makes the next Record start a new action even if it could merge.
func (s *Stack) Seal() { s.sealed = true }

// Record records an Insert, Delete or MoveCursor action. For Insert, text is
// what was inserted at pos; for Delete, what was removed from pos. For
// MoveCursor, pos is the destination and text must be empty.
func (s *Stack) Record(kind Kind, pos int, text string, cursorBefore int) error {
	if pos < 0 || cursorBefore < 0 || !utf8.ValidString(text) {
		return ErrInvalidParameter
	}
	a := Action{Kind: kind, Pos: pos, Text: strings.Clone(text), Len: len(text),
		CursorBefore: cursorBefore, At: s.now()}
	switch kind {
	case Insert:
		if text == "" {
			return ErrInvalidParameter
		}
		a.CursorAfter = pos + len(text)
	case Delete:
		if text == "" {
			return ErrInvalidParameter
		}
		a.CursorAfter = pos
	case MoveCursor:
		if text != "" {
			return ErrInvalidParameter
		}
		a.CursorAfter = pos
	default:
		return ErrInvalidParameter
	}
	if kind == Insert && s.mergeable(a) {
		top := &s.actions[s.current-1]
		top.Text += a.Text
		top.Len = len(top.Text)
		top.CursorAfter = a.CursorAfter
		top.At = a.At
		return nil
	}
	s.push(a)
	return nil
}

// RecordReplace records that oldText at pos was replaced by newText. At least
// one of them must be non-empty.
func (s *Stack) RecordReplace(pos int, oldText, newText string, cursorBefore int) error {
	if pos < 0 || cursorBefore < 0 || (oldText == "" && newText == "") ||
		!utf8.ValidString(oldText) || !utf8.ValidString(newText) {
		return ErrInvalidParameter
	}
	s.push(Action{Kind: Replace, Pos: pos, Text: strings.Clone(newText), Len: len(newText),
		Replaced: strings.Clone(oldText), CursorBefore: cursorBefore,
		CursorAfter: pos + len(newText), At: s.now()})
	return nil
}

func (s *Stack) mergeable(a Action) bool {
	if s.mergeWindow <= 0 || s.sealed || s.current == 0 || s.current != len(s.actions) {
		return false
	}
	top := s.actions[s.current-1]
	if top.Kind != Insert || a.Pos != top.Pos+top.Len {
		return false
	}
	if a.At.Sub(top.At) > s.mergeWindow || strings.ContainsRune(a.Text, '\n') ||
		strings.ContainsRune(top.Text, '\n') {
		return false
	}
	first, _ := utf8.DecodeRuneInString(a.Text)
	last, _ := utf8.DecodeLastRuneInString(top.Text)
	return !(unicode.IsSpace(first) && !unicode.IsSpace(last))
}

func (s *Stack) push(a Action) {
	s.actions = append(s.actions[:s.current], a)
	s.current++
	if len(s.actions) > s.capacity {
		evict := len(s.actions) - s.capacity
		// Zero the evicted entries so that their text can be collected.
		for i := 0; i < evict; i++ {
			s.actions[i] = Action{}
		}
		s.actions = s.actions[evict:]
		s.current = max(s.current-evict, 0)
	}
	s.sealed = false
}

// Undo reverts the action left of the current pointer and restores the cursor
// from before it. If the target fails, the pointer is unchanged.
func (s *Stack) Undo(t Target) error {
	if s.current == 0 {
		return ErrNothingToUndo
	}
	a := s.actions[s.current-1]
	if err := revert(t, a); err != nil {
		return fmt.Errorf("undo %s at %d: %w", a.Kind, a.Pos, err)
	}
	if err := t.SetCursor(a.CursorBefore); err != nil {
		return fmt.Errorf("undo %s at %d: %w", a.Kind, a.Pos, err)
	}
	s.current--
	s.sealed = true
	return nil
}

// Redo re-applies the action right of the current pointer and restores the
// cursor from after it. If the target fails, the pointer is unchanged.
func (s *Stack) Redo(t Target) error {
	if s.current == len(s.actions) {
		return ErrNothingToRedo
	}
	a := s.actions[s.current]
	if err := apply(t, a); err != nil {
		return fmt.Errorf("redo %s at %d: %w", a.Kind, a.Pos, err)
	}
	if err := t.SetCursor(a.CursorAfter); err != nil {
		return fmt.Errorf("redo %s at %d: %w", a.Kind, a.Pos, err)
	}
	s.current++
	s.sealed = true
	return nil
}

func apply(t Target, a Action) error {
	switch a.Kind {
	case Insert:
		return t.Insert(a.Pos, a.Text)
	case Delete:
		_, err := t.Delete(a.Pos, a.Len)
		return err
	case Replace:
		return swap(t, a.Pos, a.Replaced, a.Text)
	}
	return nil
}

func revert(t Target, a Action) error {
	switch a.Kind {
	case Insert:
		_, err := t.Delete(a.Pos, a.Len)
		return err
	case Delete:
		return t.Insert(a.Pos, a.Text)
	case Replace:
		return swap(t, a.Pos, a.Text, a.Replaced)
	}
	return nil
}

// Replaces from with to at pos, putting from back if the insertion fails.
func swap(t Target, pos int, from, to string) error {
	if _, err := t.Delete(pos, len(from)); err != nil {
		return err
	}
	if err := t.Insert(pos, to); err != nil {
		if restoreErr := t.Insert(pos, from); restoreErr != nil {
			return errors.Join(err, restoreErr)
		}
		return err
	}
	return nil
}

// Validate checks the invariants of the stack, returning an error wrapping
// ErrCorrupt if any is violated.
func (s *Stack) Validate() error {
	if s.current < 0 || s.current > len(s.actions) {
		return fmt.Errorf("%w: current %d outside [0, %d]", ErrCorrupt, s.current, len(s.actions))
	}
	if len(s.actions) > s.capacity {
		return fmt.Errorf("%w: %d actions exceed capacity %d", ErrCorrupt, len(s.actions), s.capacity)
	}
	for i, a := range s.actions {
		if err := checkAction(a); err != nil {
			return fmt.Errorf("%w: action %d: %v", ErrCorrupt, i, err)
		}
	}
	return nil
}

func checkAction(a Action) error {
	switch {
	case a.Pos < 0 || a.CursorBefore < 0 || a.CursorAfter < 0:
		return errors.New("negative position")
	case a.Len != len(a.Text):
		return fmt.Errorf("length %d does not match text of length %d", a.Len, len(a.Text))
	case (a.Kind == Insert || a.Kind == Delete) && a.Len == 0:
		return fmt.Errorf("%s without text", a.Kind)
	case a.Kind == MoveCursor && a.Len != 0:
		return errors.New("move-cursor with text")
	case a.Kind == Replace && a.Len == 0 && a.Replaced == "":
		return errors.New("empty replace")
	case a.Kind < Insert || a.Kind > Replace:
		return fmt.Errorf("unknown kind %d", int(a.Kind))
	}
	return nil
}
