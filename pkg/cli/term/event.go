package term

import "src.shline.sh/pkg/ui"

// Event represents an event that can be read from the terminal.
type Event interface {
	isEvent()
}

// KeyEvent represents a key press.
type KeyEvent ui.Key

// K constructs a new KeyEvent.
func K(r rune, mods ...ui.Mod) KeyEvent {
	return KeyEvent(ui.K(r, mods...))
}

// ResizeEvent signals that the size of the terminal has changed.
type ResizeEvent struct{}

// PasteEvent carries the text of a bracketed paste. Line breaks are
// normalized to "\n".
type PasteEvent string

func (KeyEvent) isEvent()    {}
func (ResizeEvent) isEvent() {}
func (PasteEvent) isEvent()  {}
