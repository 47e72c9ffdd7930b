//go:build unix

package term

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/x/ansi"
	xterm "golang.org/x/term"

	"src.shline.sh/pkg/sys"
)

// TTY is a terminal opened for line editing.
type TTY struct {
	in, out *os.File
	reader  *Reader

	resizeOnce sync.Once
	resize     chan struct{}
	stopResize func()
	closeOnce  sync.Once
}

// NewTTY returns a TTY that reads from in and writes to out.
func NewTTY(in, out *os.File) (*TTY, error) {
	reader, err := NewReader(in)
	if err != nil {
		return nil, fmt.Errorf("create reader: %w", err)
	}
	return &TTY{in: in, out: out, reader: reader}, nil
}

// Setup puts the input terminal into raw mode and enables bracketed paste. It
// returns a function that undoes both.
func (t *TTY) Setup() (func(), error) {
	fd := int(t.in.Fd())
	state, err := xterm.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("enter raw mode: %w", err)
	}
	io.WriteString(t.out, ansi.SetBracketedPasteMode)
	return func() {
		io.WriteString(t.out, ansi.ResetBracketedPasteMode)
		if err := xterm.Restore(fd, state); err != nil {
			logger.Warn("failed to restore terminal", "err", err)
		}
	}, nil
}

// ReadEvent reads one event with a bounded wait. See Reader.ReadEvent.
func (t *TTY) ReadEvent(timeout time.Duration) (Event, error) {
	return t.reader.ReadEvent(timeout)
}

// Size returns the height and width of the terminal, falling back to 24x80
// when they cannot be determined.
func (t *TTY) Size() (h, w int) {
	h, w = sys.WinSize(t.out)
	if h <= 0 || w <= 0 {
		return 24, 80
	}
	return h, w
}

// Width returns the width of the terminal.
func (t *TTY) Width() int {
	_, w := t.Size()
	return w
}

// NotifyResize returns a channel that receives a value after the terminal is
// resized. Resizes that happen before the previous one is received are
// coalesced.
func (t *TTY) NotifyResize() <-chan struct{} {
	t.resizeOnce.Do(func() {
		t.resize = make(chan struct{}, 1)
		sigCh, stop := sys.NotifyResize()
		done := make(chan struct{})
		t.stopResize = func() {
			stop()
			close(done)
		}
		go func() {
			for {
				select {
				case <-sigCh:
					select {
					case t.resize <- struct{}{}:
					default:
					}
				case <-done:
					return
				}
			}
		}()
	})
	return t.resize
}

// Close releases the resources held by the TTY. It does not close the
// underlying files.
func (t *TTY) Close() {
	t.closeOnce.Do(func() {
		t.reader.Close()
		if t.stopResize != nil {
			t.stopResize()
		}
	})
}
