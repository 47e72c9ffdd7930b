//go:build unix

package progtest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"

	"src.shline.sh/pkg/testutil"
)

// Interactive is a pseudo terminal for testing the interactive editor.
type Interactive struct {
	// The terminal side, to be used as the stdin of the program.
	TTY *os.File
	// The controlling side, which the test writes keys to.
	PTY *os.File

	mu     sync.Mutex
	output bytes.Buffer
	done   chan struct{}
}

// SetupInteractive opens a pseudo terminal and starts collecting everything
// the program writes to it. Both ends are closed when the test finishes.
func SetupInteractive(t *testing.T) *Interactive {
	t.Helper()
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty not available: %v", err)
	}
	pty.Setsize(ptmx, &pty.Winsize{Rows: 24, Cols: 80})
	in := &Interactive{TTY: tty, PTY: ptmx, done: make(chan struct{})}
	go func() {
		defer close(in.done)
		buf := make([]byte, 4096)
		for {
			n, err := ptmx.Read(buf)
			in.mu.Lock()
			in.output.Write(buf[:n])
			in.mu.Unlock()
			if err != nil {
				return
			}
		}
	}()
	t.Cleanup(func() {
		tty.Close()
		ptmx.Close()
		<-in.done
	})
	return in
}

// Type writes keys to the terminal.
func (in *Interactive) Type(t *testing.T, keys string) {
	t.Helper()
	if _, err := io.WriteString(in.PTY, keys); err != nil {
		t.Fatalf("write to pty: %v", err)
	}
}

// WaitForOutput waits until the output written to the terminal contains s n
// times in total.
func (in *Interactive) WaitForOutput(t *testing.T, s string, n int) {
	t.Helper()
	in.WaitFor(t, func(out string) bool { return strings.Count(out, s) >= n },
		fmt.Sprintf("%d occurrences of %q", n, s))
}

// WaitFor waits until the output written to the terminal satisfies cond.
func (in *Interactive) WaitFor(t *testing.T, cond func(string) bool, what string) {
	t.Helper()
	deadline := time.Now().Add(testutil.Scaled(5 * time.Second))
	for time.Now().Before(deadline) {
		if cond(in.Output()) {
			return
		}
		time.Sleep(testutil.Scaled(10 * time.Millisecond))
	}
	t.Fatalf("timed out waiting for %s in output %q", what, in.Output())
}

// Output returns what has been written to the terminal so far.
func (in *Interactive) Output() string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.output.String()
}
