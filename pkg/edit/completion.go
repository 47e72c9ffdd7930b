package edit

import (
	"errors"
	"strings"
)

// ErrNoCompleter is returned by the complete action when the editor has no
// Completer.
var ErrNoCompleter = errors.New("completion is not available")

// Maximum number of candidates listed in a notification.
const maxListedCandidates = 20

// A completion in progress. Repeating the complete action cycles through the
// candidates, which replace the span [from, to).
type completion struct {
	from, to int
	cands    []string
	index    int
}

// Completes the word at the cursor. A single candidate replaces the word.
// With several, the word is extended to their longest common prefix and the
// candidates are listed; the following complete actions cycle through them.
func (s *Session) complete() error {
	c := s.ed.spec.Completer
	if c == nil {
		return ErrNoCompleter
	}
	s.completed = true
	if s.compl != nil {
		return s.cycleCompletion()
	}
	dot := s.Dot()
	from, cands, err := c.Complete(s.Content(), dot)
	if err != nil {
		s.completed = false
		s.Notify(err.Error())
		return nil
	}
	if len(cands) == 0 {
		s.completed = false
		return nil
	}
	if len(cands) == 1 {
		text := cands[0]
		if !strings.HasSuffix(text, "/") {
			text += " "
		}
		s.completed = false
		return s.Replace(from, dot, text)
	}

	to := dot
	seed := s.Buffer.Slice(from, dot)
	if prefix := commonPrefix(cands); len(prefix) > len(seed) && strings.HasPrefix(prefix, seed) {
		if err := s.Replace(from, dot, prefix); err != nil {
			return err
		}
		to = from + len(prefix)
	}
	s.compl = &completion{from: from, to: to, cands: cands, index: -1}
	listed := cands
	if len(listed) > maxListedCandidates {
		listed = listed[:maxListedCandidates]
	}
	msg := strings.Join(listed, "  ")
	if len(cands) > len(listed) {
		msg += "  ..."
	}
	s.Notify(msg)
	return nil
}

func (s *Session) cycleCompletion() error {
	cp := s.compl
	cp.index = (cp.index + 1) % len(cp.cands)
	cand := cp.cands[cp.index]
	if err := s.Replace(cp.from, cp.to, cand); err != nil {
		return err
	}
	cp.to = cp.from + len(cand)
	return nil
}

func commonPrefix(ss []string) string {
	prefix := ss[0]
	for _, s := range ss[1:] {
		i := 0
		for i < len(prefix) && i < len(s) && prefix[i] == s[i] {
			i++
		}
		prefix = prefix[:i]
	}
	// Do not end in the middle of a multi-byte character.
	return strings.ToValidUTF8(prefix, "")
}
