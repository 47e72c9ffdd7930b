//go:build unix

package prog_test

import (
	"io"
	"os"
	"strings"
	"testing"

	"src.shline.sh/pkg/must"
	"src.shline.sh/pkg/prog"
	"src.shline.sh/pkg/prog/progtest"
)

func TestInteractive(t *testing.T) {
	dir := setupEnv(t)
	must.WriteFile(dir+"/config.yaml", "prompt: 'test> '\n")
	in := progtest.SetupInteractive(t)

	r, w := must.Pipe()
	stdout := make(chan string, 1)
	go func() { stdout <- string(must.OK1(io.ReadAll(r))) }()
	exit := make(chan int, 1)
	go func() {
		exit <- prog.Run([3]*os.File{in.TTY, w, in.TTY}, []string{"shline", "--no-history"})
		w.Close()
	}()

	in.WaitForOutput(t, "test> ", 1)
	in.Type(t, "echo hi\r")
	waitForNewPrompt(t, in, "echo hi")
	in.Type(t, "\x04")

	if code := <-exit; code != 0 {
		t.Errorf("exited with %d", code)
	}
	if got := <-stdout; got != "echo hi\n" {
		t.Errorf("stdout %q, want %q", got, "echo hi\n")
	}
}

func TestInteractive_History(t *testing.T) {
	dir := setupEnv(t)
	must.WriteFile(dir+"/config.yaml", "prompt: 'test> '\n")

	// Runs a session that types keys, waits for the line to be accepted and
	// ends the input.
	session := func(keys, line string) string {
		in := progtest.SetupInteractive(t)
		r, w := must.Pipe()
		stdout := make(chan string, 1)
		go func() { stdout <- string(must.OK1(io.ReadAll(r))) }()
		exit := make(chan int, 1)
		go func() {
			exit <- prog.Run([3]*os.File{in.TTY, w, in.TTY},
				[]string{"shline", "--db", dir + "/hist.db"})
			w.Close()
		}()
		in.WaitForOutput(t, "test> ", 1)
		in.Type(t, keys)
		waitForNewPrompt(t, in, line)
		in.Type(t, "\x04")
		if code := <-exit; code != 0 {
			t.Errorf("exited with %d", code)
		}
		return <-stdout
	}

	if got := session("ls -l\r", "ls -l"); got != "ls -l\n" {
		t.Fatalf("first session wrote %q", got)
	}
	// UP recalls the line saved by the previous process.
	if got := session("\x1b[A\r", "ls -l"); got != "ls -l\n" {
		t.Errorf("second session wrote %q", got)
	}
}

// Waits for a prompt drawn after the last occurrence of line.
func waitForNewPrompt(t *testing.T, in *progtest.Interactive, line string) {
	t.Helper()
	in.WaitFor(t, func(out string) bool {
		i := strings.LastIndex(out, line)
		return i >= 0 && strings.Contains(out[i:], "test> ")
	}, "a new prompt")
}
