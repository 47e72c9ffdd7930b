//go:build unix

package term

import (
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"src.shline.sh/pkg/must"
	"src.shline.sh/pkg/testutil"
	"src.shline.sh/pkg/ui"
)

var readEventTests = []struct {
	input string
	want  Event
}{
	// Simple graphical key.
	{"x", K('x')},
	{"X", K('X')},
	{" ", K(' ')},
	{"\u00e9", K('\u00e9')},
	{"世", K('世')},

	// Ctrl key, reported in lower case.
	{"\001", K('a', ui.Ctrl)},
	{"\010", K('h', ui.Ctrl)},
	{"\033", K(ui.Escape)},

	// Special Ctrl keys that do not obey the usual rule.
	{"\000", K('@', ui.Ctrl)},
	{"\x1c", K('\\', ui.Ctrl)},
	{"\x1f", K('_', ui.Ctrl)},

	// Ambiguous Ctrl keys; the reader uses the named form as canonical.
	{"\n", K(ui.Enter)},
	{"\r", K(ui.Enter)},
	{"\t", K(ui.Tab)},
	{"\x7f", K(ui.Backspace)},

	// Alt plus simple graphical key.
	{"\033a", K('a', ui.Alt)},
	{"\033[", K('[', ui.Alt)},
	{"\033\x7f", K(ui.Backspace, ui.Alt)},
	{"\033\r", K(ui.Enter, ui.Alt)},
	{"\033\033", K(ui.Escape, ui.Alt)},

	// G3-style key.
	{"\033OA", K(ui.Up)},
	{"\033OH", K(ui.Home)},
	// G3-style key with leading Escape.
	{"\033\033OA", K(ui.Up, ui.Alt)},
	// Alt-O. This is handled as a special case because it looks like a G3-style
	// key.
	{"\033O", K('O', ui.Alt)},

	// CSI-sequence key identified by the ending rune.
	{"\033[A", K(ui.Up)},
	{"\033[H", K(ui.Home)},
	// Modifiers.
	{"\033[1;0A", K(ui.Up)},
	{"\033[1;1A", K(ui.Up)},
	{"\033[1;2A", K(ui.Up, ui.Shift)},
	{"\033[1;3A", K(ui.Up, ui.Alt)},
	{"\033[1;4A", K(ui.Up, ui.Shift, ui.Alt)},
	{"\033[1;5A", K(ui.Up, ui.Ctrl)},
	{"\033[1;6A", K(ui.Up, ui.Shift, ui.Ctrl)},
	{"\033[1;7A", K(ui.Up, ui.Alt, ui.Ctrl)},
	{"\033[1;8A", K(ui.Up, ui.Shift, ui.Alt, ui.Ctrl)},
	// The modifiers below should be for Meta, but we conflate Alt and Meta.
	{"\033[1;9A", K(ui.Up, ui.Alt)},
	{"\033[1;16A", K(ui.Up, ui.Shift, ui.Alt, ui.Ctrl)},

	// CSI-sequence key with one argument, ending in '~'.
	{"\033[1~", K(ui.Home)},
	{"\033[3~", K(ui.Delete)},
	{"\033[11~", K(ui.F1)},
	// Modified.
	{"\033[1;2~", K(ui.Home, ui.Shift)},
	// Urxvt-flavor modifier, shifting the '~' to reflect the modifier
	{"\033[1$", K(ui.Home, ui.Shift)},
	{"\033[1^", K(ui.Home, ui.Ctrl)},
	{"\033[1@", K(ui.Home, ui.Shift, ui.Ctrl)},
	// With a leading Escape.
	{"\033\033[1~", K(ui.Home, ui.Alt)},

	// CSI-sequence key with three arguments and ending in '~'. The first
	// argument is always 27, the second identifies the modifier and the last
	// identifies the key.
	{"\033[27;4;63~", K(';', ui.Shift, ui.Alt)},
	{"\033[27;5;13~", K(ui.Enter, ui.Ctrl)},

	// Bracketed paste.
	{"\033[200~echo hi\033[201~", PasteEvent("echo hi")},
	{"\033[200~a\r\nb\rc\033[201~", PasteEvent("a\nb\nc")},
	{"\033[200~\033[A\033[201~", PasteEvent("\033[A")},
}

func TestReader_ReadEvent(t *testing.T) {
	r, w := setupReader(t)

	for _, test := range readEventTests {
		t.Run(test.input, func(t *testing.T) {
			w.WriteString(test.input)
			ev, err := r.ReadEvent(-1)
			if ev != test.want {
				t.Errorf("got event %v, want %v", ev, test.want)
			}
			if err != nil {
				t.Errorf("got err %v, want %v", err, nil)
			}
		})
	}
}

var readEventBadSeqTests = []struct {
	input      string
	wantErrMsg string
}{
	// CSI needs to be terminated by something that is not a parameter
	{"\033[1", "incomplete CSI"},
	{"\033[;", "incomplete CSI"},
	{"\033[1;", "incomplete CSI"},

	// csiSeqByLast should have 0 or 2 parameters
	{"\033[1;2;3A", "bad CSI"},
	// csiSeqByLast with 2 parameters should have first parameter = 1
	{"\033[2;1A", "bad CSI"},
	// xterm-style modifier should be 0 to 16
	{"\033[1;17A", "bad CSI"},
	// unknown CSI terminator
	{"\033[x", "bad CSI"},

	// G3 allows a small list of allowed bytes after \033O
	{"\033Ox", "bad G3"},

	{"\033[201~", "paste end without start"},
	{"\xff", "bad UTF-8 leader"},
	{"\xc3", "incomplete UTF-8"},
}

func TestReader_ReadEvent_BadSeq(t *testing.T) {
	r, w := setupReader(t)

	for _, test := range readEventBadSeqTests {
		t.Run(test.input, func(t *testing.T) {
			w.WriteString(test.input)
			ev, err := r.ReadEvent(-1)
			if err == nil {
				t.Fatalf("got nil err with event %v, want non-nil error", ev)
			}
			if !strings.HasPrefix(err.Error(), test.wantErrMsg) {
				t.Errorf("got err with message %v, want message starting with %v",
					err, test.wantErrMsg)
			}
			if !IsReadErrorRecoverable(err) {
				t.Errorf("error %v not recoverable", err)
			}
		})
	}
}

func TestReader_ReadEvent_Timeout(t *testing.T) {
	r, _ := setupReader(t)

	_, err := r.ReadEvent(testutil.Scaled(time.Millisecond))
	if !errors.Is(err, ErrTimeout) || !IsReadErrorRecoverable(err) {
		t.Errorf("got err %v, want recoverable %v", err, ErrTimeout)
	}
}

func TestReader_ReadEvent_EOF(t *testing.T) {
	r, w := setupReader(t)

	w.WriteString("a")
	w.Close()
	if ev, err := r.ReadEvent(-1); ev != K('a') || err != nil {
		t.Errorf("got (%v, %v), want (%v, nil)", ev, err, K('a'))
	}
	if _, err := r.ReadEvent(-1); err != io.EOF {
		t.Errorf("got err %v, want io.EOF", err)
	}
	if IsReadErrorRecoverable(io.EOF) {
		t.Errorf("io.EOF should not be recoverable")
	}
}

func setupReader(t *testing.T) (*Reader, *os.File) {
	pr, pw := must.Pipe()
	r, err := NewReader(pr)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		r.Close()
		pr.Close()
		pw.Close()
	})
	return r, pw
}
