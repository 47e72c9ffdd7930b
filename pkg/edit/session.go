package edit

import (
	"errors"
	"fmt"
	"io"

	"src.shline.sh/pkg/histutil"
	"src.shline.sh/pkg/keybind"
	"src.shline.sh/pkg/parse/contin"
	"src.shline.sh/pkg/textbuf"
	"src.shline.sh/pkg/ui"
	"src.shline.sh/pkg/undo"
)

// Session is the state of one ReadLine call. ContextActions receive it and
// may end it.
type Session struct {
	Editing
	ed     *Editor
	prompt string
	contin *contin.State

	// History walk in progress, and the line that was being edited when it
	// started.
	walker    *histutil.Walker
	savedLine string
	// Completion in progress.
	compl *completion

	// Set by actions during the current command.
	walked, completed bool

	done   bool
	result string
	err    error
	// Whether the view needs to be redrawn.
	dirty bool
}

// ContextAction is an action that can see the whole session and end it.
type ContextAction func(*Session) error

// ActionKind implements keybind.Action.
func (ContextAction) ActionKind() keybind.Kind { return keybind.Context }

func (ed *Editor) newSession(prompt string) (*Session, error) {
	u, err := undo.New(undo.Options{
		Capacity: ed.spec.UndoCapacity, MergeWindow: ed.spec.UndoMergeWindow, Now: ed.spec.Now})
	if err != nil {
		return nil, err
	}
	if err := ed.keys.SetMode(ed.spec.InitialMode); err != nil {
		return nil, err
	}
	return &Session{
		Editing: Editing{Buffer: &textbuf.Buffer{}, Undo: u, Kill: NewKillRing(ed.spec.KillRingSize)},
		ed:      ed,
		prompt:  prompt,
		contin:  contin.New(),
	}, nil
}

// Accept ends the session with the content of the buffer.
func (s *Session) Accept() {
	s.done, s.result, s.err = true, s.Content(), nil
}

// Abort ends the session without a line.
func (s *Session) Abort() {
	s.done, s.result, s.err = true, "", nil
}

// EOF ends the session with io.EOF.
func (s *Session) EOF() {
	s.done, s.result, s.err = true, "", io.EOF
}

// Done reports whether the session has ended.
func (s *Session) Done() bool { return s.done }

// Notify shows a message to the user.
func (s *Session) Notify(msg string) {
	s.ed.spec.Display.Notify(msg)
}

// Mode returns the active binding mode.
func (s *Session) Mode() keybind.Mode { return s.ed.keys.Mode() }

// SetMode switches the binding mode. It also ends the current group of
// merged insertions.
func (s *Session) SetMode(m keybind.Mode) error {
	if err := s.ed.keys.SetMode(m); err != nil {
		return err
	}
	s.Undo.Seal()
	return nil
}

// Continuation analyzes the whole buffer from a fresh state and returns the
// result.
func (s *Session) Continuation() *contin.State {
	s.contin.Reset()
	s.contin.Feed(s.Content())
	return s.contin
}

// ClearScreen clears the screen.
func (s *Session) ClearScreen() {
	s.ed.spec.Display.Clear()
}

func (s *Session) view() View {
	v := View{Prompt: s.prompt, Content: s.Content(), Cursor: s.Dot()}
	if mode := s.Mode(); mode != keybind.Emacs {
		v.Mode = mode.String()
	}
	return v
}

func (s *Session) dispatch(d keybind.Dispatch) {
	s.dirty = true
	s.Kill.begin()
	s.walked, s.completed = false, false

	name := "self-insert"
	var err error
	if d.Bound() {
		name = d.Binding.Name
		err = s.run(d.Binding.Action)
	} else if k := d.Keys[0]; len(d.Keys) == 1 && k.IsPlain() && s.Mode() != keybind.ViCommand {
		err = s.Insert(string(k.Rune))
	} else {
		s.Notify("Unbound key: " + ui.FormatSeq(d.Keys))
	}
	if err != nil {
		s.report(name, err)
	}

	s.Kill.end()
	if !s.walked {
		s.walker = nil
	}
	if !s.completed {
		s.compl = nil
	}
}

func (s *Session) run(a keybind.Action) error {
	switch a := a.(type) {
	case SimpleAction:
		return a(&s.Editing)
	case ContextAction:
		return a(s)
	}
	return fmt.Errorf("unsupported action type %T", a)
}

// Errors that only need to be shown to the user.
var benignErrors = []error{
	undo.ErrNothingToUndo, undo.ErrNothingToRedo, histutil.ErrEndOfHistory,
	ErrNothingToYank,
}

func (s *Session) report(name string, err error) {
	for _, benign := range benignErrors {
		if errors.Is(err, benign) {
			s.Notify(capitalize(err.Error()))
			return
		}
	}
	logger.Warn("action failed", "action", name, "err", err)
	s.Notify(fmt.Sprintf("%s: %v", name, err))
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

// Inserts pasted text as one undoable action.
func (s *Session) paste(text string) {
	s.Kill.begin()
	defer s.Kill.end()
	s.dirty = true
	s.walker = nil
	s.compl = nil
	s.Undo.Seal()
	if err := s.Insert(text); err != nil {
		s.report("paste", err)
	}
	s.Undo.Seal()
}
