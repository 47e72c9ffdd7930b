package edit

import (
	"slices"
	"testing"
)

// Records text as one command.
func kill(kr *KillRing, text string, backward bool) {
	kr.begin()
	kr.Record(text, backward)
	kr.end()
}

func TestKillRing_ConsecutiveKillsAccumulate(t *testing.T) {
	kr := NewKillRing(0)
	kill(kr, "foo", false)
	kill(kr, "bar", false)
	kill(kr, "<", true)
	if kr.Len() != 1 || kr.Top() != "<foobar" {
		t.Errorf("ring %q, want one entry %q", kr.ring, "<foobar")
	}

	// Any other command ends the chain.
	kr.begin()
	kr.end()
	kill(kr, "new", false)
	if !slices.Equal(kr.ring, []string{"<foobar", "new"}) {
		t.Errorf("ring %q", kr.ring)
	}
}

func TestKillRing_EmptyKillDoesNotChain(t *testing.T) {
	kr := NewKillRing(0)
	kill(kr, "a", false)
	kill(kr, "", false)
	kill(kr, "b", false)
	if !slices.Equal(kr.ring, []string{"a", "b"}) {
		t.Errorf("ring %q", kr.ring)
	}
}

func TestKillRing_Size(t *testing.T) {
	if kr := NewKillRing(-1); kr.size != DefaultKillRingSize {
		t.Errorf("NewKillRing(-1) has size %d", kr.size)
	}
	kr := NewKillRing(2)
	for _, text := range []string{"a", "b", "c"} {
		kill(kr, text, false)
		kr.begin()
		kr.end()
	}
	if !slices.Equal(kr.ring, []string{"b", "c"}) {
		t.Errorf("ring %q, want the two newest entries", kr.ring)
	}
	if NewKillRing(0).Top() != "" {
		t.Errorf("empty ring has a top entry")
	}
}

func TestKillRing_PrevYank(t *testing.T) {
	kr := NewKillRing(0)
	kill(kr, "a", false)
	if _, _, _, ok := kr.prevYank(); ok {
		t.Errorf("prevYank succeeded without a yank")
	}
	kr.begin()
	kr.recordYank(0, 3, 4)
	kr.end()
	if i, start, end, ok := kr.prevYank(); !ok || i != 0 || start != 3 || end != 4 {
		t.Errorf("prevYank -> (%d, %d, %d, %v)", i, start, end, ok)
	}
	kr.begin()
	kr.end()
	if _, _, _, ok := kr.prevYank(); ok {
		t.Errorf("prevYank succeeded after another command")
	}
}
