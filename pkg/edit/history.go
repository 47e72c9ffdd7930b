package edit

import (
	"errors"

	"src.shline.sh/pkg/histutil"
)

// Walking through history uses the content of the buffer when the walk
// starts as the prefix. The walk ends when any other action runs, keeping the
// text loaded from history.

func (s *Session) previousHistory() error {
	if s.ed.spec.History == nil {
		return histutil.ErrEndOfHistory
	}
	s.walked = true
	if s.walker == nil {
		s.savedLine = s.Content()
		s.walker = s.ed.spec.History.Walker(s.savedLine)
	}
	if err := s.walker.Prev(); err != nil {
		return err
	}
	return s.ReplaceAll(s.walker.CurrentCmd())
}

func (s *Session) nextHistory() error {
	if s.walker == nil {
		return histutil.ErrEndOfHistory
	}
	s.walked = true
	err := s.walker.Next()
	if errors.Is(err, histutil.ErrEndOfHistory) {
		s.walked = false
		return s.ReplaceAll(s.savedLine)
	} else if err != nil {
		return err
	}
	return s.ReplaceAll(s.walker.CurrentCmd())
}

func (s *Session) beginningOfHistory() error {
	if s.ed.spec.History == nil {
		return histutil.ErrEndOfHistory
	}
	s.walked = true
	if s.walker == nil {
		s.savedLine = s.Content()
		s.walker = s.ed.spec.History.Walker(s.savedLine)
	}
	moved := false
	for {
		err := s.walker.Prev()
		if errors.Is(err, histutil.ErrEndOfHistory) {
			break
		} else if err != nil {
			return err
		}
		moved = true
	}
	if !moved && s.walker.CurrentSeq() == -1 {
		return histutil.ErrEndOfHistory
	}
	return s.ReplaceAll(s.walker.CurrentCmd())
}

func (s *Session) endOfHistory() error {
	if s.walker == nil {
		return nil
	}
	return s.ReplaceAll(s.savedLine)
}
