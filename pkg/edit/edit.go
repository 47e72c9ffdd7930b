// Package edit implements the interactive line editor.
//
// An Editor reads keys from a TTY, dispatches them through a keybind.Manager
// to editing actions, and shows the result on a Display, until an action
// accepts or abandons the line.
package edit

import (
	"errors"
	"time"

	"src.shline.sh/pkg/cli/term"
	"src.shline.sh/pkg/histutil"
	"src.shline.sh/pkg/keybind"
	"src.shline.sh/pkg/logutil"
	"src.shline.sh/pkg/undo"
)

var logger = logutil.GetLogger("[edit] ")

// DefaultReadTimeout is the default maximum time the event loop waits for an
// event before doing housekeeping.
const DefaultReadTimeout = 100 * time.Millisecond

// TTY is the terminal the editor reads events from.
type TTY interface {
	// Setup puts the terminal in the mode the editor needs, returning a
	// function that restores it.
	Setup() (restore func(), err error)
	// ReadEvent reads an event, waiting at most timeout. It returns
	// term.ErrTimeout if no event arrives in time, and io.EOF when the input
	// is exhausted.
	ReadEvent(timeout time.Duration) (term.Event, error)
	// Size returns the height and width of the terminal.
	Size() (h, w int)
	// NotifyResize returns a channel that receives a value after the terminal
	// is resized.
	NotifyResize() <-chan struct{}
}

// View is what the editor shows.
type View = term.View

// Display shows views. It works out the layout by itself.
type Display interface {
	Refresh(View)
	// Notify shows a message above the view.
	Notify(msg string)
	// Finish draws the final state of a view and moves below it.
	Finish(View)
	// Clear clears the screen.
	Clear()
}

// Completer generates completion candidates for the word ending at the
// cursor, a byte offset into content. The candidates replace
// content[from:cursor].
type Completer interface {
	Complete(content string, cursor int) (from int, cands []string, err error)
}

// History stores accepted lines and walks through them.
type History interface {
	AddCmd(text string) (int, error)
	Walker(prefix string) *histutil.Walker
}

// Spec specifies the configuration of an Editor. TTY and Display are
// required; other fields have defaults.
type Spec struct {
	TTY     TTY
	Display Display
	// Nil disables completion.
	Completer Completer
	// Nil disables history.
	History History

	// Binding tables. Nil means a Manager with the default bindings.
	Keys *keybind.Manager
	// Mode each session starts in.
	InitialMode keybind.Mode

	ReadTimeout     time.Duration
	UndoCapacity    int
	UndoMergeWindow time.Duration
	KillRingSize    int

	// When a value is received from ConfigChanged, Reload is called on the
	// loop goroutine with the binding tables.
	ConfigChanged <-chan struct{}
	Reload        func(*keybind.Manager) error

	// Called with each accepted line after it is added to history.
	AfterAccept []func(string)

	// Clock. Nil means time.Now.
	Now func() time.Time
}

// Editor is a line editor. It is not safe for concurrent use; ReadLine must
// not be called again before it returns.
type Editor struct {
	spec Spec
	keys *keybind.Manager
}

// ErrMissingTerminal is returned by New when Spec lacks a TTY or a Display.
var ErrMissingTerminal = errors.New("editor needs a TTY and a display")

// New creates an Editor.
func New(spec Spec) (*Editor, error) {
	if spec.TTY == nil || spec.Display == nil {
		return nil, ErrMissingTerminal
	}
	if spec.UndoCapacity < 0 || spec.UndoMergeWindow < 0 {
		return nil, undo.ErrInvalidParameter
	}
	if spec.ReadTimeout <= 0 {
		spec.ReadTimeout = DefaultReadTimeout
	}
	if spec.Now == nil {
		spec.Now = time.Now
	}
	keys := spec.Keys
	if keys == nil {
		keys = keybind.NewManager()
		if err := BindDefaults(keys); err != nil {
			return nil, err
		}
	}
	if err := keys.SetMode(spec.InitialMode); err != nil {
		return nil, err
	}
	return &Editor{spec: spec, keys: keys}, nil
}

// Keys returns the binding tables of the editor. They may be changed between
// calls to ReadLine.
func (ed *Editor) Keys() *keybind.Manager { return ed.keys }
