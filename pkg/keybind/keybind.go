// Package keybind maps key sequences to editing actions.
//
// Bindings are kept in one table per mode and keyed by the normalized text of
// their key sequence (see ui.FormatSeq). A Manager also buffers the keys of a
// multi-key chord until the chord is complete, can no longer match, or times
// out.
package keybind

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"src.shline.sh/pkg/logutil"
	"src.shline.sh/pkg/ui"
)

var logger = logutil.GetLogger("[keybind] ")

var (
	// ErrNotFound is returned when a key sequence is not bound.
	ErrNotFound = errors.New("key sequence not bound")
	// ErrInvalidParameter is returned for a malformed key sequence, an
	// unknown mode or a nil action.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// DefaultTimeout is the default time a pending chord waits for its next key.
const DefaultTimeout = time.Second

// Mode selects a binding table.
type Mode int

// Possible values for Mode.
const (
	Emacs Mode = iota
	ViInsert
	ViCommand
	numModes
)

var modeNames = [...]string{"emacs", "vi-insert", "vi-command"}

func (m Mode) String() string {
	if m < 0 || m >= numModes {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode parses the name of a mode, as returned by Mode.String.
func ParseMode(name string) (Mode, error) {
	for i, n := range modeNames {
		if name == n {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown mode %q", ErrInvalidParameter, name)
}

// Kind is the kind of an action.
type Kind int

// Possible values for Kind.
const (
	// A Simple action only transforms the text being edited.
	Simple Kind = iota + 1
	// A Context action receives the whole editing session and may end it.
	Context
)

// Action is implemented by the action types of the editor.
type Action interface {
	ActionKind() Kind
}

// Binding binds a key sequence to an action.
type Binding struct {
	// Normalized descriptor of Keys.
	Seq    string
	Keys   []ui.Key
	Action Action
	// Human-readable name of the action, such as "kill-line".
	Name string
	Mode Mode
}

// Dispatch is a resolved key sequence, produced by Manager.Feed.
type Dispatch struct {
	Keys []ui.Key
	// Nil when the keys are not bound; the editor then applies its fallback.
	Binding *Binding
}

// Bound reports whether the dispatch has a binding.
func (d Dispatch) Bound() bool { return d.Binding != nil }

// Manager holds the binding tables and the chord buffer.
type Manager struct {
	tables  [numModes]map[string]*Binding
	mode    Mode
	timeout time.Duration

	pending []ui.Key
	// Arrival time of the first pending key, and of the last fed key.
	pendingAt time.Time
	lastAt    time.Time
}

// NewManager creates a Manager with empty tables in Emacs mode.
func NewManager() *Manager {
	m := &Manager{timeout: DefaultTimeout}
	for i := range m.tables {
		m.tables[i] = make(map[string]*Binding)
	}
	return m
}

// Mode returns the active mode.
func (m *Manager) Mode() Mode { return m.mode }

// SetMode switches the active mode and drops any pending chord.
func (m *Manager) SetMode(mode Mode) error {
	if mode < 0 || mode >= numModes {
		return ErrInvalidParameter
	}
	m.mode = mode
	m.pending = nil
	return nil
}

// Timeout returns the chord timeout.
func (m *Manager) Timeout() time.Duration { return m.timeout }

// SetTimeout sets the chord timeout. A non-positive value restores
// DefaultTimeout.
func (m *Manager) SetTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultTimeout
	}
	m.timeout = d
}

// Bind binds seq to action in the given mode, silently replacing any existing
// binding of seq.
func (m *Manager) Bind(mode Mode, seq string, action Action, name string) error {
	if mode < 0 || mode >= numModes || action == nil {
		return ErrInvalidParameter
	}
	keys, err := ui.ParseSeq(seq)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	norm := ui.FormatSeq(keys)
	m.tables[mode][norm] = &Binding{Seq: norm, Keys: keys, Action: action, Name: name, Mode: mode}
	return nil
}

// Unbind removes the binding of seq in the given mode.
func (m *Manager) Unbind(mode Mode, seq string) error {
	if mode < 0 || mode >= numModes {
		return ErrInvalidParameter
	}
	norm, err := ui.NormalizeSeq(seq)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	if _, ok := m.tables[mode][norm]; !ok {
		return ErrNotFound
	}
	delete(m.tables[mode], norm)
	return nil
}

// Lookup returns the binding of seq in the active mode.
func (m *Manager) Lookup(seq string) (Binding, error) {
	norm, err := ui.NormalizeSeq(seq)
	if err != nil {
		return Binding{}, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	b, ok := m.tables[m.mode][norm]
	if !ok {
		return Binding{}, ErrNotFound
	}
	return *b, nil
}

// Bindings returns all bindings of a mode, sorted by key sequence.
func (m *Manager) Bindings(mode Mode) []Binding {
	if mode < 0 || mode >= numModes {
		return nil
	}
	bindings := make([]Binding, 0, len(m.tables[mode]))
	for _, b := range m.tables[mode] {
		bindings = append(bindings, *b)
	}
	sort.Slice(bindings, func(i, j int) bool {
		return lessKeys(bindings[i].Keys, bindings[j].Keys)
	})
	return bindings
}

// Names returns the names of the actions bound to seq in each mode where it
// is bound, for diagnostics.
func (m *Manager) Names(seq string) map[Mode]string {
	norm, err := ui.NormalizeSeq(seq)
	if err != nil {
		return nil
	}
	names := make(map[Mode]string)
	for mode, table := range m.tables {
		if b, ok := table[norm]; ok {
			names[Mode(mode)] = b.Name
		}
	}
	return names
}

// Pending returns the keys of the pending chord.
func (m *Manager) Pending() []ui.Key {
	return append([]ui.Key(nil), m.pending...)
}

// Reset drops any pending chord.
func (m *Manager) Reset() { m.pending = nil }

// Clear removes all bindings of all modes and drops any pending chord.
func (m *Manager) Clear() {
	for i := range m.tables {
		m.tables[i] = make(map[string]*Binding)
	}
	m.pending = nil
}

// Feed adds a key to the chord buffer and returns the key sequences that it
// resolves, in order. It first expires a pending chord older than the
// timeout.
//
// While the buffered keys form a proper prefix of some binding, Feed returns
// nothing and waits for more keys. When they match a binding exactly and are
// not the prefix of a longer one, that binding is dispatched. When no binding
// can match, the first buffered key is resolved on its own and the remaining
// keys are considered again.
func (m *Manager) Feed(k ui.Key, now time.Time) []Dispatch {
	ds := m.Expire(now)
	if len(m.pending) == 0 {
		m.pendingAt = now
	}
	m.lastAt = now
	m.pending = append(m.pending, k)
	return append(ds, m.resolve(false)...)
}

// Expire resolves a pending chord if it has waited for at least the timeout,
// returning the resolved sequences.
func (m *Manager) Expire(now time.Time) []Dispatch {
	if len(m.pending) == 0 || now.Sub(m.pendingAt) < m.timeout {
		return nil
	}
	logger.Debug("chord timed out", "keys", ui.FormatSeq(m.pending))
	return m.resolve(true)
}

// Resolves the pending keys. If final is true, nothing is left pending.
func (m *Manager) resolve(final bool) []Dispatch {
	var ds []Dispatch
	table := m.tables[m.mode]
	for len(m.pending) > 0 {
		seq := ui.FormatSeq(m.pending)
		if !final && m.isProperPrefix(seq) {
			return ds
		}
		if b, ok := table[seq]; ok {
			ds = append(ds, Dispatch{Keys: m.pending, Binding: b})
			m.pending = nil
			break
		}
		first := m.pending[0]
		ds = append(ds, Dispatch{Keys: []ui.Key{first}, Binding: table[first.String()]})
		m.pending = m.pending[1:]
		m.pendingAt = m.lastAt
	}
	m.pending = nil
	return ds
}

func (m *Manager) isProperPrefix(seq string) bool {
	prefix := seq + " "
	for s := range m.tables[m.mode] {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

func lessKeys(a, b []ui.Key) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return ui.Keys{a[i], b[i]}.Less(0, 1)
		}
	}
	return len(a) < len(b)
}
