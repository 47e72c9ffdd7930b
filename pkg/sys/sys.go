// Package sys provides the system utilities that the terminal layer needs.
//
// Only Unix systems are supported.
package sys

import (
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"
)

// IsATTY determines whether the given file is a terminal.
func IsATTY(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// NotifyResize returns a channel that receives a value whenever the size of
// the controlling terminal changes, and a function that stops the
// notification.
func NotifyResize() (<-chan os.Signal, func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigWINCH)
	return ch, func() { signal.Stop(ch) }
}

// WinSize queries the size of the terminal referenced by the given file. It
// returns (-1, -1) if the size cannot be determined.
func WinSize(file *os.File) (row, col int) { return winSize(file) }
