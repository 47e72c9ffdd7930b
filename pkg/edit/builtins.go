package edit

import (
	"errors"
	"sort"
	"strings"

	"src.shline.sh/pkg/keybind"
	"src.shline.sh/pkg/textbuf"
)

// ErrNotAfterYank is returned by yank-pop when the previous command was not a
// yank.
var ErrNotAfterYank = errors.New("previous command was not a yank")

var builtins = map[string]keybind.Action{
	"beginning-of-line": SimpleAction(beginningOfLine),
	"end-of-line":       SimpleAction(endOfLine),
	"backward-char":     SimpleAction(backwardChar),
	"forward-char":      SimpleAction(forwardChar),
	"backward-word":     SimpleAction(backwardWord),
	"forward-word":      SimpleAction(forwardWord),

	"backward-delete-char": SimpleAction(backwardDeleteChar),
	"delete-char":          SimpleAction(deleteChar),
	"delete-char-or-eof":   ContextAction(deleteCharOrEOF),
	"transpose-chars":      SimpleAction(transposeChars),
	"upcase-word":          SimpleAction(upcaseWord),
	"downcase-word":        SimpleAction(downcaseWord),
	"newline":              SimpleAction(newline),

	"kill-line":          SimpleAction(killLine),
	"unix-line-discard":  SimpleAction(unixLineDiscard),
	"unix-word-rubout":   SimpleAction(unixWordRubout),
	"kill-word":          SimpleAction(killWord),
	"backward-kill-word": SimpleAction(backwardKillWord),
	"kill-whole-line":    SimpleAction(killWholeLine),
	"yank":               SimpleAction(yank),
	"yank-pop":           SimpleAction(yankPop),

	"undo": SimpleAction(undoAction),
	"redo": SimpleAction(redoAction),

	"accept-line":  ContextAction(acceptLine),
	"abort-line":   ContextAction(abortLine),
	"clear-screen": ContextAction(clearScreen),
	"complete":     ContextAction((*Session).complete),

	"previous-history":     ContextAction((*Session).previousHistory),
	"next-history":         ContextAction((*Session).nextHistory),
	"beginning-of-history": ContextAction((*Session).beginningOfHistory),
	"end-of-history":       ContextAction((*Session).endOfHistory),

	"vi-command-mode": ContextAction(viCommandMode),
	"vi-insert-mode":  ContextAction(viInsertMode),
	"vi-append":       ContextAction(viAppend),
	"vi-append-eol":   ContextAction(viAppendEOL),
	"vi-insert-bol":   ContextAction(viInsertBOL),
	"vi-change-eol":   ContextAction(viChangeEOL),
	"emacs-mode":      ContextAction(emacsMode),
	"vi-editing-mode": ContextAction(viInsertMode),
}

// Builtin returns the builtin action with the given name.
func Builtin(name string) (keybind.Action, bool) {
	a, ok := builtins[name]
	return a, ok
}

// BuiltinNames returns the names of all builtin actions, sorted.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func beginningOfLine(e *Editing) error {
	return e.MoveTo(e.Buffer.LineStart(e.Dot()))
}

func endOfLine(e *Editing) error {
	return e.MoveTo(e.Buffer.LineEnd(e.Dot()))
}

func backwardChar(e *Editing) error {
	return e.MoveTo(e.Buffer.PrevGrapheme(e.Dot()))
}

func forwardChar(e *Editing) error {
	return e.MoveTo(e.Buffer.NextGrapheme(e.Dot()))
}

func backwardWord(e *Editing) error {
	return e.MoveTo(e.Buffer.BackwardWord(e.Dot(), textbuf.IsAlnum))
}

func forwardWord(e *Editing) error {
	return e.MoveTo(e.Buffer.ForwardWord(e.Dot(), textbuf.IsAlnum))
}

func backwardDeleteChar(e *Editing) error {
	dot := e.Dot()
	_, err := e.Delete(e.Buffer.PrevGrapheme(dot), dot)
	return err
}

func deleteChar(e *Editing) error {
	dot := e.Dot()
	_, err := e.Delete(dot, e.Buffer.NextGrapheme(dot))
	return err
}

func deleteCharOrEOF(s *Session) error {
	if s.Buffer.Len() == 0 {
		s.EOF()
		return nil
	}
	return deleteChar(&s.Editing)
}

// Swaps the clusters before and after the cursor and moves past both. At the
// end of a line, swaps the two clusters before the cursor.
func transposeChars(e *Editing) error {
	b, dot := e.Buffer, e.Dot()
	from, mid, to := b.PrevGrapheme(dot), dot, b.NextGrapheme(dot)
	if dot == b.LineEnd(dot) {
		from, mid, to = b.PrevGrapheme(from), from, dot
	}
	if from == mid || mid == to {
		return nil
	}
	return e.Replace(from, to, b.Slice(mid, to)+b.Slice(from, mid))
}

func upcaseWord(e *Editing) error { return mapWord(e, strings.ToUpper) }

func downcaseWord(e *Editing) error { return mapWord(e, strings.ToLower) }

func mapWord(e *Editing, f func(string) string) error {
	dot := e.Dot()
	end := e.Buffer.ForwardWord(dot, textbuf.IsAlnum)
	return e.Replace(dot, end, f(e.Buffer.Slice(dot, end)))
}

func newline(e *Editing) error { return e.Insert("\n") }

// Kills to the end of the line, or the newline when already there.
func killLine(e *Editing) error {
	dot := e.Dot()
	end := e.Buffer.LineEnd(dot)
	if end == dot && end < e.Buffer.Len() {
		end++
	}
	return e.KillTo(end)
}

func unixLineDiscard(e *Editing) error {
	return e.KillTo(e.Buffer.LineStart(e.Dot()))
}

func unixWordRubout(e *Editing) error {
	return e.KillTo(e.Buffer.BackwardWord(e.Dot(), textbuf.IsNonSpace))
}

func killWord(e *Editing) error {
	return e.KillTo(e.Buffer.ForwardWord(e.Dot(), textbuf.IsAlnum))
}

func backwardKillWord(e *Editing) error {
	return e.KillTo(e.Buffer.BackwardWord(e.Dot(), textbuf.IsAlnum))
}

func killWholeLine(e *Editing) error {
	dot := e.Dot()
	if err := e.MoveTo(e.Buffer.LineStart(dot)); err != nil {
		return err
	}
	return e.KillTo(e.Buffer.LineEnd(dot))
}

func yank(e *Editing) error {
	if e.Kill.Len() == 0 {
		return ErrNothingToYank
	}
	text, start := e.Kill.Top(), e.Dot()
	e.Undo.Seal()
	if err := e.Insert(text); err != nil {
		return err
	}
	e.Undo.Seal()
	e.Kill.recordYank(e.Kill.Len()-1, start, start+len(text))
	return nil
}

// Replaces the text just yanked with the previous kill.
func yankPop(e *Editing) error {
	i, start, end, ok := e.Kill.prevYank()
	if !ok {
		return ErrNotAfterYank
	}
	text := e.Kill.ring[i]
	if err := e.Replace(start, end, text); err != nil {
		return err
	}
	e.Kill.recordYank(i, start, start+len(text))
	return nil
}

func undoAction(e *Editing) error { return e.Undo.Undo(e.Buffer) }

func redoAction(e *Editing) error { return e.Undo.Redo(e.Buffer) }

// Accepts the line if it is a complete statement, and inserts a newline
// otherwise.
func acceptLine(s *Session) error {
	if c := s.Continuation(); !c.IsComplete() {
		logger.Debug("statement incomplete", "reason", c.Reason().String())
		return s.Insert("\n")
	}
	s.Accept()
	return nil
}

func abortLine(s *Session) error {
	s.Abort()
	return nil
}

func clearScreen(s *Session) error {
	s.ClearScreen()
	return nil
}

func viCommandMode(s *Session) error {
	if err := s.SetMode(keybind.ViCommand); err != nil {
		return err
	}
	if dot := s.Dot(); dot > s.Buffer.LineStart(dot) {
		return s.MoveTo(s.Buffer.PrevGrapheme(dot))
	}
	return nil
}

func viInsertMode(s *Session) error { return s.SetMode(keybind.ViInsert) }

func viAppend(s *Session) error {
	if err := forwardChar(&s.Editing); err != nil {
		return err
	}
	return viInsertMode(s)
}

func viAppendEOL(s *Session) error {
	if err := endOfLine(&s.Editing); err != nil {
		return err
	}
	return viInsertMode(s)
}

func viInsertBOL(s *Session) error {
	if err := beginningOfLine(&s.Editing); err != nil {
		return err
	}
	return viInsertMode(s)
}

func viChangeEOL(s *Session) error {
	if err := s.KillTo(s.Buffer.LineEnd(s.Dot())); err != nil {
		return err
	}
	return viInsertMode(s)
}

func emacsMode(s *Session) error { return s.SetMode(keybind.Emacs) }
