package edit

// DefaultKillRingSize is the number of kills kept by a KillRing.
const DefaultKillRingSize = 30

// KillRing stores recently killed text for yank and yank-pop. Consecutive
// kills accumulate into one entry: text killed forward is appended, text
// killed backward is prepended.
type KillRing struct {
	// Most recent kill last.
	ring []string
	size int

	// Whether the last command killed text, and whether it yanked.
	lastWasKill bool
	yankActive  bool
	// Entry and buffer span of the last yank, for yank-pop.
	yankIndex          int
	yankStart, yankEnd int

	// Set by the current command.
	killed, yanked bool
}

// NewKillRing creates a KillRing holding at most size entries. A
// non-positive size means DefaultKillRingSize.
func NewKillRing(size int) *KillRing {
	if size <= 0 {
		size = DefaultKillRingSize
	}
	return &KillRing{size: size}
}

// Len returns the number of entries.
func (kr *KillRing) Len() int { return len(kr.ring) }

// Top returns the most recent entry, or "" if there is none.
func (kr *KillRing) Top() string {
	if len(kr.ring) == 0 {
		return ""
	}
	return kr.ring[len(kr.ring)-1]
}

// Record records killed text.
func (kr *KillRing) Record(text string, backward bool) {
	if text == "" {
		return
	}
	kr.killed = true
	if kr.lastWasKill && len(kr.ring) > 0 {
		top := &kr.ring[len(kr.ring)-1]
		if backward {
			*top = text + *top
		} else {
			*top += text
		}
		return
	}
	kr.ring = append(kr.ring, text)
	if len(kr.ring) > kr.size {
		kr.ring = kr.ring[len(kr.ring)-kr.size:]
	}
}

// Records a yank of entry i into the buffer span [start, end).
func (kr *KillRing) recordYank(i, start, end int) {
	kr.yanked = true
	kr.yankIndex, kr.yankStart, kr.yankEnd = i, start, end
}

// Returns the entry before the last yanked one, cycling, and the span of the
// last yank. It returns false if the last command was not a yank.
func (kr *KillRing) prevYank() (i int, start, end int, ok bool) {
	if !kr.yankActive || len(kr.ring) == 0 {
		return 0, 0, 0, false
	}
	i = kr.yankIndex - 1
	if i < 0 {
		i = len(kr.ring) - 1
	}
	return i, kr.yankStart, kr.yankEnd, true
}

// Called before each command.
func (kr *KillRing) begin() {
	kr.killed, kr.yanked = false, false
}

// Called after each command.
func (kr *KillRing) end() {
	kr.lastWasKill = kr.killed
	kr.yankActive = kr.yanked
}
