// Package ui defines the keys the editor reads and the textual descriptors
// used to bind them, such as "C-x" and "M-DEL".
package ui

import (
	"errors"
	"fmt"
	"strings"
)

// Key represents a single keyboard input, typically assembled from a escape
// sequence.
type Key struct {
	Rune rune
	Mod  Mod
}

// K constructs a new Key.
func K(r rune, mods ...Mod) Key {
	var mod Mod
	for _, m := range mods {
		mod |= m
	}
	return Key{r, mod}
}

// Mod represents a modifier key.
type Mod byte

// Values for Mod.
const (
	// Shift is the shift modifier. It is only applied to special keys (e.g.
	// Shift-F1). For instance 'A' and '@' which are typically entered with the
	// shift key pressed, are not considered to be shift-modified.
	Shift Mod = 1 << iota
	// Alt is the alt modifier, traditionally known as the meta modifier.
	Alt
	Ctrl
)

// Special negative runes to represent function keys, used in the Rune field of
// the Key struct.
const (
	F1 rune = -iota - 1
	F2
	F3
	F4
	F5
	F6
	F7
	F8
	F9
	F10
	F11
	F12

	Up
	Down
	Right
	Left

	Home
	Insert
	Delete
	End
	PageUp
	PageDown

	// Some function key names are just aliases for their ASCII representation

	Tab       = '\t'
	Enter     = '\n'
	Escape    = 0x1b
	Space     = ' '
	Backspace = 0x7f
)

// Names of special keys in the descriptor notation. Index i holds the name of
// the function key with rune -i.
var functionKeyNames = [...]string{
	"(Invalid)",
	"F1", "F2", "F3", "F4", "F5", "F6", "F7", "F8", "F9", "F10", "F11", "F12",
	"UP", "DOWN", "RIGHT", "LEFT",
	"HOME", "INS", "DELETE", "END", "PGUP", "PGDN",
}

var keyNames = map[rune]string{
	Tab: "TAB", Enter: "RET", Escape: "ESC", Space: "SPC", Backspace: "DEL",
}

// Aliases accepted when parsing, in addition to the canonical names.
var keyAliases = map[string]rune{
	"ENTER": Enter, "RETURN": Enter, "INSERT": Insert, "PAGEUP": PageUp,
	"PAGEDOWN": PageDown, "BACKSPACE": Backspace, "BS": Backspace,
	"SPACE": Space, "ESCAPE": Escape,
}

// IsSpecial reports whether the key is a function key or a named control key,
// as opposed to a plain printable character.
func (k Key) IsSpecial() bool {
	if k.Rune < 0 {
		return true
	}
	_, named := keyNames[k.Rune]
	return named && k.Rune != Space
}

// IsPlain reports whether the key is an unmodified printable character that
// can be inserted verbatim.
func (k Key) IsPlain() bool {
	return k.Mod == 0 && k.Rune >= 0x20 && k.Rune != Backspace
}

// String returns the normalized descriptor of the key, e.g. "C-M-x" or "UP".
func (k Key) String() string {
	var sb strings.Builder
	if k.Mod&Ctrl != 0 {
		sb.WriteString("C-")
	}
	if k.Mod&Alt != 0 {
		sb.WriteString("M-")
	}
	if k.Mod&Shift != 0 {
		sb.WriteString("S-")
	}
	if k.Rune >= 0 {
		if name, ok := keyNames[k.Rune]; ok {
			sb.WriteString(name)
		} else {
			sb.WriteRune(k.Rune)
		}
	} else {
		i := int(-k.Rune)
		if i >= len(functionKeyNames) {
			fmt.Fprintf(&sb, "(bad function key %d)", k.Rune)
		} else {
			sb.WriteString(functionKeyNames[i])
		}
	}
	return sb.String()
}

// modifierByName maps a name to an modifier. Names are matched exactly; the
// single-letter forms are the ones used in the normalized output.
var modifierByName = map[string]Mod{
	"S": Shift, "Shift": Shift,
	"A": Alt, "Alt": Alt,
	"M": Alt, "Meta": Alt,
	"C": Ctrl, "Ctrl": Ctrl,
}

// ErrEmptyKey is returned when parsing an empty key or sequence.
var ErrEmptyKey = errors.New("empty key")

// ParseKey parses a single key descriptor. The syntax is:
//
//	Key = { Mod '-' } BareKey
//
//	BareKey = SpecialKeyName | SingleRune
//
// Ctrl-modified letters are normalized to lower case, and the control keys
// with dedicated names are normalized to those names: C-i is TAB, C-m and C-j
// are RET and C-[ is ESC.
func ParseKey(s string) (Key, error) {
	if s == "" {
		return Key{}, ErrEmptyKey
	}
	var k Key
	// A trailing "-" is a bare key, not a separator; "C--" is Ctrl-minus.
	for {
		i := strings.IndexByte(s, '-')
		if i <= 0 || i == len(s)-1 {
			break
		}
		mod, ok := modifierByName[s[:i]]
		if !ok {
			break
		}
		k.Mod |= mod
		s = s[i+1:]
	}

	if r := []rune(s); len(r) == 1 {
		k.Rune = r[0]
		return normalizeKey(k), nil
	}

	name := strings.ToUpper(s)
	for r, n := range keyNames {
		if name == n {
			k.Rune = r
			return normalizeKey(k), nil
		}
	}
	if r, ok := keyAliases[name]; ok {
		k.Rune = r
		return normalizeKey(k), nil
	}
	for i, n := range functionKeyNames[1:] {
		if name == n {
			k.Rune = rune(-i - 1)
			return k, nil
		}
	}
	return Key{}, fmt.Errorf("bad key: %q", s)
}

func normalizeKey(k Key) Key {
	if k.Mod&Ctrl == 0 {
		return k
	}
	switch k.Rune {
	case 'i', 'I':
		return Key{Tab, k.Mod &^ Ctrl}
	case 'm', 'M', 'j', 'J':
		return Key{Enter, k.Mod &^ Ctrl}
	case '[':
		return Key{Escape, k.Mod &^ Ctrl}
	}
	if 'A' <= k.Rune && k.Rune <= 'Z' {
		k.Rune += 'a' - 'A'
	}
	return k
}

// Keys implements sort.Interface.
type Keys []Key

func (ks Keys) Len() int      { return len(ks) }
func (ks Keys) Swap(i, j int) { ks[i], ks[j] = ks[j], ks[i] }
func (ks Keys) Less(i, j int) bool {
	return ks[i].Mod < ks[j].Mod ||
		(ks[i].Mod == ks[j].Mod && ks[i].Rune < ks[j].Rune)
}
