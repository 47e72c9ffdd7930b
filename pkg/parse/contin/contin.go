// Package contin decides whether accumulated shell input forms a complete
// statement or needs more lines.
//
// The analysis is a structural scan, not a parse: it tracks quotes, bracket
// depths, control-structure keywords in command position and here-documents,
// which is enough to tell whether pressing Enter should submit the input. It
// never fails; anomalies such as a closer without an opener are clamped so
// that the analyzer stays usable on half-typed input.
package contin

import "strings"

// Reason is the dominant reason that input is incomplete.
type Reason int

// Possible values of Reason, in decreasing order of priority.
const (
	Complete Reason = iota
	InHeredoc
	InSingleQuote
	InDoubleQuote
	InBacktick
	Continued
	InConstruct
	InBracket
)

var reasonNames = [...]string{
	"complete", "here-document", "single quote", "double quote", "backtick",
	"trailing backslash", "control structure", "bracket",
}

func (r Reason) String() string {
	if r < 0 || int(r) >= len(reasonNames) {
		return "unknown"
	}
	return reasonNames[r]
}

type constructKind int

const (
	ctIf constructKind = iota
	ctFor
	ctWhile
	ctUntil
	ctSelect
	ctCase
	// A function name has been seen; waiting for the body.
	ctFunction
)

var constructNames = [...]string{"if", "for", "while", "until", "select", "case", "function"}

type construct struct {
	kind constructKind
	// For ctCase, whether the "in" after the subject has been seen.
	seenIn bool
}

type heredoc struct {
	delim     string
	stripTabs bool
}

// State is the continuation state of a stream of lines. The zero value is not
// ready to use; create one with New or Analyze.
type State struct {
	single, double, backtick bool
	// One-shot flag set by a backslash.
	escaped               bool
	paren, brace, bracket int
	// Paren depths at which arithmetic expansions were opened.
	arith    []int
	open     []construct
	heredocs []heredoc
	// Whether lines are currently consumed as here-document bodies.
	inHeredoc bool
	// Whether the last line ended in an unescaped backslash.
	continued bool

	// Word scanner.
	cmdPos      bool
	word        strings.Builder
	wordActive  bool
	wordPlain   bool
	lastWordCmd bool
	redirect    bool
}

// New returns a fresh State.
func New() *State {
	s := &State{}
	s.Reset()
	return s
}

// Analyze returns a fresh State that has been fed the whole text.
func Analyze(text string) *State {
	s := New()
	s.Feed(text)
	return s
}

// Reset returns the state to that of empty input, dropping any pending
// here-document delimiters.
func (s *State) Reset() {
	*s = State{cmdPos: true}
}

// Feed scans more input. Each line of text, including the last, is treated
// as terminated by a newline.
func (s *State) Feed(text string) {
	for _, line := range strings.Split(text, "\n") {
		s.feedLine(line)
	}
}

// IsComplete reports whether the input seen so far is a complete statement.
func (s *State) IsComplete() bool { return s.Reason() == Complete }

// Reason returns the dominant reason the input is incomplete, or Complete.
func (s *State) Reason() Reason {
	switch {
	case s.inHeredoc || len(s.heredocs) > 0:
		return InHeredoc
	case s.single:
		return InSingleQuote
	case s.double:
		return InDoubleQuote
	case s.backtick:
		return InBacktick
	case s.continued:
		return Continued
	case len(s.open) > 0:
		return InConstruct
	case s.paren > 0 || s.brace > 0 || s.bracket > 0:
		return InBracket
	}
	return Complete
}

// Prompt returns an advisory prompt for the next line, naming the dominant
// open condition. It returns "" when the input is complete.
func (s *State) Prompt() string {
	switch s.Reason() {
	case Complete:
		return ""
	case InHeredoc:
		return "heredoc> "
	case InSingleQuote:
		return "quote> "
	case InDoubleQuote:
		return "dquote> "
	case InBacktick:
		return "bquote> "
	case InConstruct:
		return constructNames[s.open[len(s.open)-1].kind] + "> "
	case InBracket:
		switch {
		case s.brace > 0:
			return "cursh> "
		case s.paren > 0:
			return "subsh> "
		default:
			return "bracket> "
		}
	}
	return "> "
}

// Depths returns the current nesting depths of parentheses, braces and
// brackets.
func (s *State) Depths() (paren, brace, bracket int) {
	return s.paren, s.brace, s.bracket
}

// OpenConstructs returns the names of the open control structures, innermost
// last.
func (s *State) OpenConstructs() []string {
	names := make([]string, len(s.open))
	for i, c := range s.open {
		names[i] = constructNames[c.kind]
	}
	return names
}

// PendingHeredocs returns the delimiters of the here-documents not yet
// terminated.
func (s *State) PendingHeredocs() []string {
	delims := make([]string, len(s.heredocs))
	for i, h := range s.heredocs {
		delims[i] = h.delim
	}
	return delims
}

func (s *State) feedLine(line string) {
	if s.inHeredoc {
		s.feedHeredocLine(line)
		return
	}
	s.continued = false
	for i := 0; i < len(line); i++ {
		c := line[i]
		if s.escaped {
			s.escaped = false
			s.addWordByte(c, false)
			continue
		}
		switch {
		case s.single:
			if c == '\'' {
				s.single = false
			}
			s.addWordByte(c, false)
			continue
		case s.double || s.backtick:
			s.quoted(c)
			continue
		}

		switch c {
		case '\\':
			s.escaped = true
			s.addWordByte(c, false)
		case '\'':
			s.single = true
			s.addWordByte(c, false)
		case '"':
			s.double = true
			s.addWordByte(c, false)
		case '`':
			s.backtick = true
			s.addWordByte(c, false)
		case ' ', '\t':
			s.endWord()
		case '#':
			if !s.wordActive && !(i >= 2 && line[i-2:i] == "${") {
				// Comment to the end of the line.
				i = len(line)
				continue
			}
			s.addWordByte(c, true)
		case ';', '&', '|':
			s.endWord()
			s.separator()
		case '<', '>':
			s.endWord()
			if len(s.arith) > 0 {
				// Shift or comparison operator.
				break
			}
			if c == '<' && strings.HasPrefix(line[i:], "<<<") {
				i += 2
			} else if c == '<' && strings.HasPrefix(line[i:], "<<") {
				i = s.heredocOperator(line, i+2) - 1
				continue
			}
			s.redirect = true
		case '(':
			s.endWord()
			if strings.HasPrefix(line[i:], "()") && (i == 0 || line[i-1] != '$') {
				// "name()" defines a function.
				if s.lastWordCmd && !s.topIs(ctFunction) {
					s.push(ctFunction)
				}
				s.lastWordCmd = false
				s.cmdPos = true
				i++
				continue
			}
			if strings.HasPrefix(line[i:], "((") {
				// "$((" or "((" opens an arithmetic expression.
				s.arith = append(s.arith, s.paren)
				s.paren += 2
				i++
				continue
			}
			s.openBody()
			s.paren++
			s.separator()
		case ')':
			s.endWord()
			if n := len(s.arith); n > 0 && s.paren == s.arith[n-1]+2 && strings.HasPrefix(line[i:], "))") {
				s.arith = s.arith[:n-1]
				s.paren -= 2
				i++
				continue
			}
			s.paren = max(s.paren-1, 0)
			for n := len(s.arith); n > 0 && s.arith[n-1] >= s.paren; n-- {
				s.arith = s.arith[:n-1]
			}
			s.separator()
		case '{':
			s.endWord()
			s.openBody()
			s.brace++
			s.separator()
		case '}':
			s.endWord()
			s.brace = max(s.brace-1, 0)
			s.cmdPos = false
		case '[':
			s.bracket++
			s.addWordByte(c, false)
		case ']':
			s.bracket = max(s.bracket-1, 0)
			s.addWordByte(c, false)
		default:
			s.addWordByte(c, true)
		}
	}

	if s.escaped {
		// Escaped newline: the line continues.
		s.escaped = false
		s.continued = true
		return
	}
	if s.single || s.double || s.backtick {
		return
	}
	s.endWord()
	s.separator()
	if len(s.heredocs) > 0 {
		s.inHeredoc = true
	}
}

// Handles a byte inside double quotes or backticks.
func (s *State) quoted(c byte) {
	switch c {
	case '\\':
		s.escaped = true
	case '"':
		s.double = !s.double
	case '`':
		s.backtick = !s.backtick
	}
	s.addWordByte(c, false)
}

func (s *State) feedHeredocLine(line string) {
	h := s.heredocs[0]
	if h.stripTabs {
		line = strings.TrimLeft(line, "\t")
	}
	if line != h.delim {
		return
	}
	s.heredocs = s.heredocs[1:]
	if len(s.heredocs) == 0 {
		s.heredocs = nil
		s.inHeredoc = false
	}
}

// Parses the here-document delimiter after "<<" at line[i:] and returns the
// index just past it.
func (s *State) heredocOperator(line string, i int) int {
	h := heredoc{}
	if i < len(line) && line[i] == '-' {
		h.stripTabs = true
		i++
	}
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	var delim strings.Builder
	var quote byte
	for ; i < len(line); i++ {
		c := line[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			} else {
				delim.WriteByte(c)
			}
			continue
		}
		if c == '\'' || c == '"' {
			quote = c
			continue
		}
		if c == '\\' {
			if i+1 < len(line) {
				i++
				delim.WriteByte(line[i])
			}
			continue
		}
		if strings.IndexByte(" \t;&|<>()", c) >= 0 {
			break
		}
		delim.WriteByte(c)
	}
	if delim.Len() > 0 {
		h.delim = delim.String()
		s.heredocs = append(s.heredocs, h)
	}
	return i
}

func (s *State) addWordByte(c byte, plain bool) {
	if !s.wordActive {
		s.wordActive = true
		s.wordPlain = true
	}
	s.wordPlain = s.wordPlain && plain
	s.word.WriteByte(c)
}

func (s *State) endWord() {
	if !s.wordActive {
		return
	}
	w, plain := s.word.String(), s.wordPlain
	s.word.Reset()
	s.wordActive = false
	if s.redirect {
		s.redirect = false
		s.lastWordCmd = false
		return
	}
	if plain && s.cmdPos && s.keyword(w) {
		s.lastWordCmd = false
		return
	}
	if plain && w == "in" && s.topIs(ctCase) && !s.open[len(s.open)-1].seenIn {
		s.open[len(s.open)-1].seenIn = true
		s.cmdPos = true
		s.lastWordCmd = false
		return
	}
	s.lastWordCmd = s.cmdPos
	s.cmdPos = false
}

// Handles a keyword in command position, returning false if w is not one.
func (s *State) keyword(w string) bool {
	switch w {
	case "if":
		s.push(ctIf)
	case "while":
		s.push(ctWhile)
	case "until":
		s.push(ctUntil)
	case "for":
		s.push(ctFor)
		s.cmdPos = false
	case "select":
		s.push(ctSelect)
		s.cmdPos = false
	case "case":
		s.push(ctCase)
		s.cmdPos = false
	case "function":
		s.push(ctFunction)
		s.cmdPos = false
	case "fi":
		s.pop(ctIf)
	case "done":
		s.pop(ctFor, ctWhile, ctUntil, ctSelect)
	case "esac":
		s.pop(ctCase)
	case "then", "do", "else", "elif", "!", "time":
		// The next word is still in command position.
	default:
		return false
	}
	return true
}

func (s *State) separator() {
	s.cmdPos = true
	s.lastWordCmd = false
	s.redirect = false
}

// Called on an opening brace or parenthesis, which may start the body of a
// function.
func (s *State) openBody() {
	if s.topIs(ctFunction) {
		s.open = s.open[:len(s.open)-1]
	}
}

func (s *State) push(k constructKind) {
	s.open = append(s.open, construct{kind: k})
}

// Pops the innermost construct if it is one of kinds. A mismatched terminator
// is ignored.
func (s *State) pop(kinds ...constructKind) {
	if len(s.open) == 0 {
		return
	}
	top := s.open[len(s.open)-1].kind
	for _, k := range kinds {
		if top == k {
			s.open = s.open[:len(s.open)-1]
			s.cmdPos = false
			return
		}
	}
}

func (s *State) topIs(k constructKind) bool {
	return len(s.open) > 0 && s.open[len(s.open)-1].kind == k
}
