// Package term reads input events from a terminal and renders the line being
// edited to it.
package term

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"src.shline.sh/pkg/logutil"
	"src.shline.sh/pkg/ui"
)

var logger = logutil.GetLogger("[term] ")

var (
	// ErrTimeout is returned by Reader.ReadEvent when no input arrives in
	// time. It is recoverable.
	ErrTimeout = errors.New("timed out")
	// ErrStopped is returned by Reader.ReadEvent when Close is called during
	// the read.
	ErrStopped = errors.New("stopped")
)

// SeqError is returned for an escape sequence that cannot be decoded. The
// bytes of the sequence have been consumed, so reading can continue.
type SeqError struct {
	Msg string
	Seq string
}

func (err SeqError) Error() string {
	return fmt.Sprintf("%s: %q", err.Msg, err.Seq)
}

// IsReadErrorRecoverable returns whether an error returned by Reader is
// recoverable.
func IsReadErrorRecoverable(err error) bool {
	var seqErr SeqError
	return errors.As(err, &seqErr) || errors.Is(err, ErrTimeout)
}

type byteReaderWithTimeout interface {
	// ReadByteWithTimeout reads a single byte with a timeout. A negative
	// timeout means no timeout.
	ReadByteWithTimeout(timeout time.Duration) (byte, error)
}

// Timeout for bytes in escape sequences. Modern terminal emulators send escape
// sequences very fast, so 10ms is more than sufficient. SSH connections on a
// slow link might be problematic though.
var keySeqTimeout = 10 * time.Millisecond

// Timeout for each byte of a bracketed paste. A paste whose end marker does
// not arrive in time is delivered with what has been read.
var pasteTimeout = time.Second

// Reader decodes events from the bytes sent by a terminal.
type Reader struct {
	br   byteReaderWithTimeout
	stop func()
}

// ReadEvent reads a single event, waiting for at most timeout for it to
// start. A negative timeout means no timeout. It returns ErrTimeout if no
// input arrives in time, a SeqError for an undecodable escape sequence and
// io.EOF at end of input.
func (rd *Reader) ReadEvent(timeout time.Duration) (Event, error) {
	return readEvent(rd.br, timeout)
}

// Close aborts any outstanding ReadEvent call and releases resources
// associated with the Reader.
func (rd *Reader) Close() {
	if rd.stop != nil {
		rd.stop()
	}
}

// Used by readRune in readEvent to signal end of current sequence.
const runeEndOfSeq rune = -1

const (
	pasteStart = 200
	pasteEnd   = 201
)

var pasteEndSeq = []byte("\033[201~")

func readEvent(rd byteReaderWithTimeout, timeout time.Duration) (event Event, err error) {
	var r rune
	r, err = readRune(rd, timeout)
	if err != nil {
		return nil, err
	}

	currentSeq := string(r)
	// Attempts to read a rune within a timeout of keySeqTimeout. It returns
	// runeEndOfSeq if there is any error; the caller should terminate the
	// current sequence when it sees that value.
	readRune :=
		func() rune {
			r, e := readRune(rd, keySeqTimeout)
			if e != nil {
				return runeEndOfSeq
			}
			currentSeq += string(r)
			return r
		}
	badSeq := func(msg string) {
		err = SeqError{msg, currentSeq}
	}

	switch r {
	case 0x1b: // ^[ Escape
		r2 := readRune()
		// According to https://unix.stackexchange.com/a/73697, rxvt and derivatives
		// prepend another ESC to a CSI-style or G3-style sequence to signal Alt.
		// If that happens, remember this now; it will be later picked up when parsing
		// those two kinds of sequences.
		hasTwoLeadingESC := false
		if r2 == 0x1b {
			hasTwoLeadingESC = true
			r2 = readRune()
		}
		if r2 == runeEndOfSeq {
			if hasTwoLeadingESC {
				event = K(ui.Escape, ui.Alt)
			} else {
				event = K(ui.Escape)
			}
			break
		}
		switch r2 {
		case '[':
			// A '[' follows. CSI style function key sequence.
			r = readRune()
			if r == runeEndOfSeq {
				event = K('[', ui.Alt)
				return
			}

			nums := make([]int, 0, 2)
		CSISeq:
			for {
				switch {
				case r == ';':
					nums = append(nums, 0)
				case '0' <= r && r <= '9':
					if len(nums) == 0 {
						nums = append(nums, 0)
					}
					cur := len(nums) - 1
					nums[cur] = nums[cur]*10 + int(r-'0')
				case r == runeEndOfSeq:
					badSeq("incomplete CSI")
					return
				default: // Treat as a terminator.
					break CSISeq
				}

				r = readRune()
			}
			if r == '~' && len(nums) == 1 && nums[0] == pasteStart {
				event = readPaste(rd)
			} else if r == '~' && len(nums) == 1 && nums[0] == pasteEnd {
				badSeq("paste end without start")
			} else if k, ok := parseCSI(nums, r); ok {
				if hasTwoLeadingESC {
					k.Mod |= ui.Alt
				}
				event = KeyEvent(k)
			} else {
				badSeq("bad CSI")
			}
		case 'O':
			// An 'O' follows. G3 style function key sequence: read one rune.
			r = readRune()
			if r == runeEndOfSeq {
				// Nothing follows after 'O'. Taken as Alt-O.
				event = K('O', ui.Alt)
				return
			}
			k, ok := g3Seq[r]
			if ok {
				if hasTwoLeadingESC {
					k.Mod |= ui.Alt
				}
				event = KeyEvent(k)
			} else {
				badSeq("bad G3")
			}
		default:
			// Something other than '[' or 'O' follows. Taken as an
			// Alt-modified key, possibly also modified by Ctrl.
			k := ctrlModify(r2)
			k.Mod |= ui.Alt
			event = KeyEvent(k)
		}
	default:
		event = KeyEvent(ctrlModify(r))
	}
	return event, err
}

// Reads the body of a bracketed paste up to and excluding the end marker.
func readPaste(rd byteReaderWithTimeout) PasteEvent {
	var buf []byte
	for {
		b, err := rd.ReadByteWithTimeout(pasteTimeout)
		if err != nil {
			logger.Debug("bracketed paste cut short", "err", err, "len", len(buf))
			break
		}
		buf = append(buf, b)
		if bytes.HasSuffix(buf, pasteEndSeq) {
			buf = buf[:len(buf)-len(pasteEndSeq)]
			break
		}
	}
	text := strings.ToValidUTF8(string(buf), "\uFFFD")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return PasteEvent(strings.ReplaceAll(text, "\r", "\n"))
}

// Reads one UTF-8 encoded rune. The first byte is waited for with the given
// timeout, the continuation bytes with keySeqTimeout.
func readRune(rd byteReaderWithTimeout, timeout time.Duration) (rune, error) {
	leader, err := rd.ReadByteWithTimeout(timeout)
	if err != nil {
		return runeEndOfSeq, err
	}
	var n int
	switch {
	case leader < 0x80:
		return rune(leader), nil
	case leader&0xe0 == 0xc0:
		n = 2
	case leader&0xf0 == 0xe0:
		n = 3
	case leader&0xf8 == 0xf0:
		n = 4
	default:
		return runeEndOfSeq, SeqError{"bad UTF-8 leader", string([]byte{leader})}
	}
	buf := []byte{leader}
	for len(buf) < n {
		b, err := rd.ReadByteWithTimeout(keySeqTimeout)
		if err != nil {
			return runeEndOfSeq, SeqError{"incomplete UTF-8", string(buf)}
		}
		buf = append(buf, b)
	}
	r, _ := utf8.DecodeRune(buf)
	if r == utf8.RuneError {
		return runeEndOfSeq, SeqError{"bad UTF-8", string(buf)}
	}
	return r, nil
}

// Determines whether a rune corresponds to a Ctrl-modified key and returns the
// ui.Key the rune represents. Letters are reported in lower case.
func ctrlModify(r rune) ui.Key {
	switch r {
	case 0x0:
		return ui.K('@', ui.Ctrl) // ^@
	case ui.Tab, ui.Enter, ui.Backspace, ui.Escape: // ^I ^J ^? ^[
		// Ambiguous Ctrl keys; prefer the named form as they are more likely.
		return ui.K(r)
	case '\r': // ^M
		return ui.K(ui.Enter)
	}
	switch {
	case 0x1 <= r && r <= 0x1a:
		return ui.K(r+0x60, ui.Ctrl)
	case 0x1c <= r && r <= 0x1f:
		// ^\ ^] ^^ ^_
		return ui.K(r+0x40, ui.Ctrl)
	}
	return ui.K(r)
}

// Tables for key sequences. Comments document which terminal emulators are
// known to generate which sequences. The terminal emulators tested are
// categorized into xterm (including actual xterm, libvte-based terminals,
// Konsole and Terminal.app unless otherwise noted), urxvt, tmux.

// G3-style key sequences: \eO followed by exactly one character. For instance,
// \eOP is F1. These are pretty limited in that they cannot be extended to
// support modifier keys, other than a leading \e for Alt (e.g. \e\eOP is
// Alt-F1). Terminals that send G3-style key sequences typically switch to
// sending a CSI-style key sequence when a non-Alt modifier key is pressed.
var g3Seq = map[rune]ui.Key{
	// xterm, tmux -- only in Vim, depends on termios setting?
	'A': ui.K(ui.Up), 'B': ui.K(ui.Down), 'C': ui.K(ui.Right), 'D': ui.K(ui.Left),
	'H': ui.K(ui.Home), 'F': ui.K(ui.End), 'M': ui.K(ui.Insert),
	// urxvt
	'a': ui.K(ui.Up, ui.Ctrl), 'b': ui.K(ui.Down, ui.Ctrl),
	'c': ui.K(ui.Right, ui.Ctrl), 'd': ui.K(ui.Left, ui.Ctrl),
	// xterm, urxvt, tmux
	'P': ui.K(ui.F1), 'Q': ui.K(ui.F2), 'R': ui.K(ui.F3), 'S': ui.K(ui.F4),
}

// Tables for CSI-style key sequences. A CSI sequence is \e[ followed by zero or
// more numerical arguments (separated by semicolons), ending in a non-numeric,
// non-semicolon rune. In all variants of CSI-style key sequences, modifier keys
// are encoded in numerical arguments; see xtermModify.

// CSI-style key sequences identified by the last rune. For instance, \e[A is
// Up. When modified, two numerical arguments are added, the first always being
// 1 and the second identifying the modifier. For instance, \e[1;5A is Ctrl-Up.
var csiSeqByLast = map[rune]ui.Key{
	// xterm, urxvt, tmux
	'A': ui.K(ui.Up), 'B': ui.K(ui.Down), 'C': ui.K(ui.Right), 'D': ui.K(ui.Left),
	// urxvt
	'a': ui.K(ui.Up, ui.Shift), 'b': ui.K(ui.Down, ui.Shift),
	'c': ui.K(ui.Right, ui.Shift), 'd': ui.K(ui.Left, ui.Shift),
	// xterm (Terminal.app only sends those in alternate screen)
	'H': ui.K(ui.Home), 'F': ui.K(ui.End),
	// xterm, urxvt, tmux
	'Z': ui.K(ui.Tab, ui.Shift),
}

// CSI-style key sequences ending with '~' with by one or two numerical
// arguments. The first argument identifies the key, and the optional second
// argument identifies the modifier. For instance, \e[3~ is Delete, and \e[3;5~
// is Ctrl-Delete.
//
// An alternative encoding of the modifier key, only known to be used by urxvt
// is to change the last rune: '$' for Shift, '^' for Ctrl, and '@' for
// Ctrl+Shift. For instance, \e[3^ is Ctrl-Delete.
var csiSeqTilde = map[int]rune{
	// tmux (NOTE: urxvt uses the pair for Find/Select)
	1: ui.Home, 4: ui.End,
	// xterm, urxvt, tmux
	2: ui.Insert, 3: ui.Delete,
	// xterm (Terminal.app only sends those in alternate screen), urxvt, tmux
	5: ui.PageUp, 6: ui.PageDown,
	// urxvt
	7: ui.Home, 8: ui.End,
	// urxvt
	11: ui.F1, 12: ui.F2, 13: ui.F3, 14: ui.F4,
	// xterm, urxvt, tmux
	15: ui.F5, 17: ui.F6, 18: ui.F7, 19: ui.F8,
	20: ui.F9, 21: ui.F10, 23: ui.F11, 24: ui.F12,
}

// CSI-style key sequences ending with '~', with the first argument always 27,
// the second argument identifying the modifier, and the third argument
// identifying the key. For instance, \e[27;5;9~ is Ctrl-Tab.
var csiSeqTilde27 = map[int]rune{
	9: ui.Tab, 13: ui.Enter,
	33: '!', 35: '#', 39: '\'', 40: '(', 41: ')', 43: '+', 44: ',', 45: '-',
	46: '.',
	48: '0', 49: '1', 50: '2', 51: '3', 52: '4', 53: '5', 54: '6', 55: '7',
	56: '8', 57: '9',
	58: ':', 59: ';', 60: '<', 61: '=', 62: '>', 63: ';',
}

// parseCSI parses a CSI-style key sequence. See comments above for all the 3
// variants this function handles.
func parseCSI(nums []int, last rune) (ui.Key, bool) {
	if k, ok := csiSeqByLast[last]; ok {
		switch {
		case len(nums) == 0:
			// Unmodified: \e[A (Up)
			return k, true
		case len(nums) == 2 && nums[0] == 1:
			// Modified: \e[1;5A (Ctrl-Up)
			return xtermModify(k, nums[1])
		}
		return ui.Key{}, false
	}

	switch last {
	case '~':
		if len(nums) == 1 || len(nums) == 2 {
			if r, ok := csiSeqTilde[nums[0]]; ok {
				k := ui.K(r)
				if len(nums) == 1 {
					// Unmodified: \e[5~ (e.g. PageUp)
					return k, true
				}
				// Modified: \e[5;5~ (e.g. Ctrl-PageUp)
				return xtermModify(k, nums[1])
			}
		} else if len(nums) == 3 && nums[0] == 27 {
			if r, ok := csiSeqTilde27[nums[2]]; ok {
				return xtermModify(ui.K(r), nums[1])
			}
		}
	case '$', '^', '@':
		// Modified by urxvt; see comment above csiSeqTilde.
		if len(nums) == 1 {
			if r, ok := csiSeqTilde[nums[0]]; ok {
				var mod ui.Mod
				switch last {
				case '$':
					mod = ui.Shift
				case '^':
					mod = ui.Ctrl
				case '@':
					mod = ui.Shift | ui.Ctrl
				}
				return ui.K(r, mod), true
			}
		}
	}

	return ui.Key{}, false
}

func xtermModify(k ui.Key, mod int) (ui.Key, bool) {
	if mod < 0 || mod > 16 {
		// Out of range
		return ui.Key{}, false
	}
	if mod == 0 {
		return k, true
	}
	modFlags := mod - 1
	if modFlags&0x1 != 0 {
		k.Mod |= ui.Shift
	}
	if modFlags&0x2 != 0 {
		k.Mod |= ui.Alt
	}
	if modFlags&0x4 != 0 {
		k.Mod |= ui.Ctrl
	}
	if modFlags&0x8 != 0 {
		// This should be Meta, but we currently conflate Meta and Alt.
		k.Mod |= ui.Alt
	}
	return k, true
}
