// Package progtest provides a framework for testing the shline binary and its
// subcommands.
//
// Each test case runs prog.Run with pipes for stdin, stdout and stderr, and
// checks the exit code and the output:
//
//	Test(t, nil,
//		ThatShline("version").WritesStdout("0.1.0\n"),
//		ThatShline("bogus").ExitsWith(2).WritesStderrContaining("unexpected"),
//	)
package progtest

import (
	"io"
	"os"
	"strings"
	"testing"

	"src.shline.sh/pkg/must"
	"src.shline.sh/pkg/prog"
)

// Case is a test case that can be used in Test.
type Case struct {
	args  []string
	stdin string
	want  result
}

type result struct {
	exitCode int
	stdout   output
	stderr   output
}

type output struct {
	content string
	partial bool
}

func (o output) String() string {
	if o.partial {
		return "text containing " + quote(o.content)
	}
	return quote(o.content)
}

// ThatShline returns a new Case with the specified CLI arguments.
//
// The new Case expects the program run to exit with 0, and write nothing to
// stdout or stderr.
//
// When combined with subsequent method calls, a test case reads like English.
// For example, a test for the fact that "shline bogus" writes "unexpected" to
// stderr and exits with 2 can be written like:
//
//	ThatShline("bogus").ExitsWith(2).WritesStderrContaining("unexpected")
func ThatShline(args ...string) Case {
	return Case{args: append([]string{"shline"}, args...)}
}

// WithStdin returns an altered Case that provides the given input to stdin of
// the program.
func (c Case) WithStdin(s string) Case {
	c.stdin = s
	return c
}

// DoesNothing returns c itself. It is useful to mark tests that otherwise
// don't have any expectations, for example:
//
//	ThatShline("bindings", "emacs").WithStdin("").DoesNothing()
func (c Case) DoesNothing() Case {
	return c
}

// ExitsWith returns an altered Case that requires the program run to return
// with the given exit code.
func (c Case) ExitsWith(code int) Case {
	c.want.exitCode = code
	return c
}

// WritesStdout returns an altered Case that requires the program run to write
// exactly the given text to stdout.
func (c Case) WritesStdout(s string) Case {
	c.want.stdout = output{content: s}
	return c
}

// WritesStdoutContaining returns an altered Case that requires the program
// run to write output to stdout that contains the given text as a substring.
func (c Case) WritesStdoutContaining(s string) Case {
	c.want.stdout = output{content: s, partial: true}
	return c
}

// WritesStderr returns an altered Case that requires the program run to write
// exactly the given text to stderr.
func (c Case) WritesStderr(s string) Case {
	c.want.stderr = output{content: s}
	return c
}

// WritesStderrContaining returns an altered Case that requires the program
// run to write output to stderr that contains the given text as a substring.
func (c Case) WritesStderrContaining(s string) Case {
	c.want.stderr = output{content: s, partial: true}
	return c
}

// Test runs test cases against prog.Run with the given subcommands.
func Test(t *testing.T, subcommands []prog.Subcommand, cases ...Case) {
	t.Helper()
	for _, c := range cases {
		t.Run(strings.Join(c.args, " "), func(t *testing.T) {
			t.Helper()
			r := run(c.args, c.stdin, subcommands)
			if c.want.exitCode != r.exitCode {
				t.Errorf("got exit code %v, want %v", r.exitCode, c.want.exitCode)
			}
			if !matchOutput(r.stdout.content, c.want.stdout) {
				t.Errorf("got stdout %v, want %v", r.stdout, c.want.stdout)
			}
			if !matchOutput(r.stderr.content, c.want.stderr) {
				t.Errorf("got stderr %v, want %v", r.stderr, c.want.stderr)
			}
		})
	}
}

// Capture runs prog.Run with the given arguments and stdin, and returns the
// exit code, stdout and stderr.
func Capture(args []string, stdin string, subcommands ...prog.Subcommand) (int, string, string) {
	r := run(append([]string{"shline"}, args...), stdin, subcommands)
	return r.exitCode, r.stdout.content, r.stderr.content
}

func run(args []string, stdin string, subcommands []prog.Subcommand) result {
	r0, w0 := must.Pipe()
	// The stdin pipe is closed before the program runs, so the input must
	// fit into the pipe buffer.
	must.OK1(w0.WriteString(stdin))
	must.OK(w0.Close())
	defer r0.Close()

	r1, w1 := must.Pipe()
	r2, w2 := must.Pipe()
	// Read stdout and stderr concurrently to avoid blocking the program on a
	// full pipe.
	stdout := readAllAsync(r1)
	stderr := readAllAsync(r2)

	exitCode := prog.Run([3]*os.File{r0, w1, w2}, args, subcommands...)
	w1.Close()
	w2.Close()
	return result{exitCode, output{content: <-stdout}, output{content: <-stderr}}
}

func readAllAsync(r *os.File) <-chan string {
	ch := make(chan string, 1)
	go func() {
		defer r.Close()
		ch <- string(must.OK1(io.ReadAll(r)))
	}()
	return ch
}

func matchOutput(got string, want output) bool {
	if want.partial {
		return strings.Contains(got, want.content)
	}
	return got == want.content
}

func quote(s string) string {
	if s == "" {
		return "empty"
	}
	return "\"" + s + "\""
}
