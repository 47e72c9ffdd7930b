package edit

import (
	"context"
	"errors"
	"fmt"
	"io"

	"src.shline.sh/pkg/cli/term"
	"src.shline.sh/pkg/keybind"
	"src.shline.sh/pkg/ui"
)

// ReadLine reads a line from the terminal. It returns:
//
//   - the line and nil when a line is accepted;
//
//   - "" and nil when the line is aborted;
//
//   - "" and io.EOF on end of input with an empty buffer;
//
//   - "" and ctx.Err() when ctx is canceled.
//
// Reaching the end of the input with a non-empty buffer accepts the buffer.
func (ed *Editor) ReadLine(ctx context.Context, prompt string) (string, error) {
	restore, err := ed.spec.TTY.Setup()
	if err != nil {
		return "", fmt.Errorf("set up terminal: %w", err)
	}
	defer restore()

	s, err := ed.newSession(prompt)
	if err != nil {
		return "", err
	}
	resize := ed.spec.TTY.NotifyResize()
	display := ed.spec.Display
	display.Refresh(s.view())

	for {
		if err := ctx.Err(); err != nil {
			display.Finish(s.view())
			return "", err
		}
		event, err := ed.spec.TTY.ReadEvent(ed.spec.ReadTimeout)
		switch {
		case err == nil:
			s.handleEvent(event)
		case errors.Is(err, term.ErrTimeout):
			for _, d := range ed.keys.Expire(ed.spec.Now()) {
				s.dispatch(d)
			}
		case errors.Is(err, io.EOF):
			ed.flushChord(s)
			if !s.done {
				if s.Buffer.Len() == 0 {
					s.EOF()
				} else {
					s.Accept()
				}
			}
		case term.IsReadErrorRecoverable(err):
			logger.Debug("ignoring bad input", "err", err)
		default:
			display.Finish(s.view())
			return "", err
		}

		if s.done {
			return ed.finish(s)
		}
		ed.housekeep(s, resize)
		if s.dirty {
			display.Refresh(s.view())
			s.dirty = false
		}
	}
}

func (s *Session) handleEvent(event term.Event) {
	switch event := event.(type) {
	case term.KeyEvent:
		for _, d := range s.ed.keys.Feed(ui.Key(event), s.ed.spec.Now()) {
			s.dispatch(d)
			if s.done {
				return
			}
		}
	case term.PasteEvent:
		s.paste(string(event))
	case term.ResizeEvent:
		s.dirty = true
	}
}

// Resolves any pending chord immediately.
func (ed *Editor) flushChord(s *Session) {
	for _, d := range ed.keys.Expire(ed.spec.Now().Add(ed.keys.Timeout())) {
		s.dispatch(d)
	}
}

// Does the work that the loop polls for between events.
func (ed *Editor) housekeep(s *Session, resize <-chan struct{}) {
	select {
	case <-resize:
		s.dirty = true
	default:
	}
	if ed.spec.ConfigChanged == nil || ed.spec.Reload == nil {
		return
	}
	select {
	case <-ed.spec.ConfigChanged:
		mode := ed.keys.Mode()
		if err := ed.spec.Reload(ed.keys); err != nil {
			logger.Warn("reloading configuration failed", "err", err)
			s.Notify("Reloading configuration failed: " + err.Error())
		} else {
			logger.Info("configuration reloaded")
		}
		// A reload must not switch the mode of a running session.
		ed.restoreMode(mode)
		s.dirty = true
	default:
	}
}

func (ed *Editor) restoreMode(mode keybind.Mode) {
	if err := ed.keys.SetMode(mode); err != nil {
		logger.Warn("cannot restore mode", "mode", mode, "err", err)
	}
}

func (ed *Editor) finish(s *Session) (string, error) {
	ed.keys.Reset()
	ed.spec.Display.Finish(s.view())
	if s.err != nil || s.result == "" {
		return s.result, s.err
	}
	if ed.spec.History != nil {
		if _, err := ed.spec.History.AddCmd(s.result); err != nil {
			logger.Warn("failed to add command to history", "err", err)
		}
	}
	for _, f := range ed.spec.AfterAccept {
		f(s.result)
	}
	return s.result, nil
}
