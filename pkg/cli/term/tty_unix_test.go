//go:build unix

package term

import (
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/creack/pty"

	"src.shline.sh/pkg/testutil"
	"src.shline.sh/pkg/ui"
)

func setupPty(t *testing.T) (tty *TTY, ptmx *os.File) {
	ptmx, tts, err := pty.Open()
	if err != nil {
		t.Skip("pty not available:", err)
	}
	t.Cleanup(func() {
		ptmx.Close()
		tts.Close()
	})
	tty, err = NewTTY(tts, tts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(tty.Close)
	return tty, ptmx
}

func TestTTY_RawModeDeliversControlKeys(t *testing.T) {
	tty, ptmx := setupPty(t)
	restore, err := tty.Setup()
	if err != nil {
		t.Fatal(err)
	}
	defer restore()

	// In cooked mode, ^C would raise SIGINT and ^D would be eaten by the line
	// discipline.
	ptmx.WriteString("\x03\x04\033[A")
	want := []Event{K('c', ui.Ctrl), K('d', ui.Ctrl), K(ui.Up)}
	for _, w := range want {
		ev, err := tty.ReadEvent(testutil.Scaled(time.Second))
		if err != nil {
			t.Fatalf("ReadEvent errors: %v", err)
		}
		if ev != w {
			t.Errorf("got %v, want %v", ev, w)
		}
	}
}

func TestTTY_SetupEnablesBracketedPaste(t *testing.T) {
	tty, ptmx := setupPty(t)
	restore, err := tty.Setup()
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 64)
	n, _ := ptmx.Read(buf)
	if got := string(buf[:n]); got != "\033[?2004h" {
		t.Errorf("Setup wrote %q", got)
	}
	restore()
}

func TestTTY_Size(t *testing.T) {
	tty, ptmx := setupPty(t)
	if err := pty.Setsize(ptmx, &pty.Winsize{Rows: 30, Cols: 100}); err != nil {
		t.Skip("cannot set pty size:", err)
	}
	if h, w := tty.Size(); h != 30 || w != 100 {
		t.Errorf("Size() -> (%d, %d), want (30, 100)", h, w)
	}
	if tty.Width() != 100 {
		t.Errorf("Width() -> %d", tty.Width())
	}
}

func TestTTY_NotifyResize(t *testing.T) {
	tty, _ := setupPty(t)
	ch := tty.NotifyResize()
	syscall.Kill(os.Getpid(), syscall.SIGWINCH)
	select {
	case <-ch:
	case <-time.After(testutil.Scaled(time.Second)):
		t.Errorf("no resize notification")
	}
}

func TestTTY_SetupFailsOnNonTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	tty, err := NewTTY(f, f)
	if err != nil {
		t.Fatal(err)
	}
	defer tty.Close()
	if _, err := tty.Setup(); err == nil {
		t.Errorf("Setup on a regular file succeeded")
	}
}
