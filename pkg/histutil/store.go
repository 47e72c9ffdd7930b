// Package histutil provides utilities for walking the command history.
package histutil

import (
	"errors"

	"src.shline.sh/pkg/store/storedefs"
)

// ErrEndOfHistory is returned when walking past either end of the history.
var ErrEndOfHistory = errors.New("end of history")

// Store is an abstract interface for history store.
type Store interface {
	// AddCmd adds a new command to the history store, and returns its
	// sequence number.
	AddCmd(text string) (int, error)
	// AllCmds returns all commands kept in the store.
	AllCmds() ([]storedefs.Cmd, error)
	// Cursor returns a cursor that iterates through commands with the given
	// prefix. The cursor is initially placed just after the last command.
	Cursor(prefix string) Cursor
	// Walker returns a Walker over the commands with the given prefix.
	Walker(prefix string) *Walker
}

// Cursor is used to navigate a Store.
type Cursor interface {
	// Prev moves the cursor to the previous command.
	Prev()
	// Next moves the cursor to the next command.
	Next()
	// Get returns the command the cursor is currently at, or ErrEndOfHistory
	// if the cursor is at either end.
	Get() (storedefs.Cmd, error)
}
