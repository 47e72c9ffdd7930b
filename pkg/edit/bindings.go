package edit

import (
	"errors"
	"fmt"
	"sort"

	"src.shline.sh/pkg/errutil"
	"src.shline.sh/pkg/keybind"
)

// ErrUnknownAction is returned when binding a key to an action name that is
// not a builtin.
var ErrUnknownAction = errors.New("unknown action")

// Unbound is the action name that removes a binding.
const Unbound = "unbound"

type binding struct{ seq, action string }

var emacsBindings = []binding{
	{"C-a", "beginning-of-line"}, {"HOME", "beginning-of-line"},
	{"C-e", "end-of-line"}, {"END", "end-of-line"},
	{"C-b", "backward-char"}, {"LEFT", "backward-char"},
	{"C-f", "forward-char"}, {"RIGHT", "forward-char"},
	{"M-b", "backward-word"}, {"C-LEFT", "backward-word"},
	{"M-f", "forward-word"}, {"C-RIGHT", "forward-word"},

	{"DEL", "backward-delete-char"}, {"C-h", "backward-delete-char"},
	{"DELETE", "delete-char"},
	{"C-d", "delete-char-or-eof"},
	{"C-k", "kill-line"},
	{"C-u", "unix-line-discard"},
	{"C-w", "unix-word-rubout"},
	{"M-d", "kill-word"},
	{"M-DEL", "backward-kill-word"},
	{"C-y", "yank"},
	{"M-y", "yank-pop"},
	{"C-t", "transpose-chars"},
	{"M-u", "upcase-word"},
	{"M-l", "downcase-word"},

	{"C-_", "undo"}, {"C-x C-u", "undo"}, {"C-x u", "undo"},
	{"C-x C-r", "redo"},

	{"RET", "accept-line"},
	{"M-RET", "newline"},
	{"C-c", "abort-line"}, {"C-g", "abort-line"},
	{"C-l", "clear-screen"},
	{"TAB", "complete"},

	{"UP", "previous-history"}, {"C-p", "previous-history"},
	{"DOWN", "next-history"}, {"C-n", "next-history"},
	{"M-<", "beginning-of-history"},
	{"M->", "end-of-history"},

	{"C-x C-v", "vi-editing-mode"},
}

var viInsertBindings = []binding{
	{"ESC", "vi-command-mode"},
	{"DEL", "backward-delete-char"}, {"C-h", "backward-delete-char"},
	{"DELETE", "delete-char"},
	{"C-w", "unix-word-rubout"},
	{"C-u", "unix-line-discard"},
	{"RET", "accept-line"},
	{"TAB", "complete"},
	{"LEFT", "backward-char"}, {"RIGHT", "forward-char"},
	{"UP", "previous-history"}, {"DOWN", "next-history"},
	{"HOME", "beginning-of-line"}, {"END", "end-of-line"},
	{"C-c", "abort-line"},
	{"C-d", "delete-char-or-eof"},
}

var viCommandBindings = []binding{
	{"h", "backward-char"}, {"LEFT", "backward-char"},
	{"l", "forward-char"}, {"RIGHT", "forward-char"},
	{"0", "beginning-of-line"}, {"$", "end-of-line"},
	{"w", "forward-word"}, {"b", "backward-word"},
	{"x", "delete-char"}, {"X", "backward-delete-char"},
	{"i", "vi-insert-mode"}, {"a", "vi-append"},
	{"A", "vi-append-eol"}, {"I", "vi-insert-bol"},
	{"u", "undo"}, {"C-r", "redo"},
	{"k", "previous-history"}, {"UP", "previous-history"},
	{"j", "next-history"}, {"DOWN", "next-history"},
	{"d d", "kill-whole-line"},
	{"D", "kill-line"},
	{"C", "vi-change-eol"},
	{"p", "yank"},
	{"RET", "accept-line"},
	{"C-c", "abort-line"},
	{"C-d", "delete-char-or-eof"},
	{"C-e", "emacs-mode"},
}

var defaultBindings = map[keybind.Mode][]binding{
	keybind.Emacs:     emacsBindings,
	keybind.ViInsert:  viInsertBindings,
	keybind.ViCommand: viCommandBindings,
}

// BindDefaults adds the default bindings of all modes to m.
func BindDefaults(m *keybind.Manager) error {
	for mode, bindings := range defaultBindings {
		for _, b := range bindings {
			if err := BindName(m, mode, b.seq, b.action); err != nil {
				return err
			}
		}
	}
	return nil
}

// BindName binds seq in mode to the builtin action with the given name. The
// name Unbound removes the binding of seq instead.
func BindName(m *keybind.Manager, mode keybind.Mode, seq, name string) error {
	if name == Unbound {
		err := m.Unbind(mode, seq)
		if errors.Is(err, keybind.ErrNotFound) {
			return nil
		}
		return err
	}
	action, ok := Builtin(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	return m.Bind(mode, seq, action, name)
}

// ApplyBindings applies bindings given as a map from mode names to maps from
// key sequences to action names, as found in the configuration file. It
// applies all valid bindings and reports all invalid ones.
func ApplyBindings(m *keybind.Manager, bindings map[string]map[string]string) error {
	var errs []error
	for _, modeName := range sortedKeys(bindings) {
		mode, err := keybind.ParseMode(modeName)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		table := bindings[modeName]
		for _, seq := range sortedKeys(table) {
			if err := BindName(m, mode, seq, table[seq]); err != nil {
				errs = append(errs, fmt.Errorf("%s %q: %w", modeName, seq, err))
			}
		}
	}
	return errutil.Multi(errs...)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
