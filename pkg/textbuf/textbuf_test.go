package textbuf

import (
	"errors"
	"testing"
	"unicode/utf8"

	"pgregory.net/rapid"
	"src.shline.sh/pkg/tt"
)

var (
	Args = tt.Args
	Fn   = tt.Fn
)

const (
	family   = "\U0001F468\u200d\U0001F469\u200d\U0001F467" // ZWJ sequence
	flagJP   = "\U0001F1EF\U0001F1F5"
	eAcute   = "e\u0301"
	thumbsUp = "\U0001F44D\U0001F3FD" // emoji with skin tone modifier
)

func mustNew(text string) *Buffer {
	b, err := New(text)
	if err != nil {
		panic(err)
	}
	return b
}

func TestNew(t *testing.T) {
	b := mustNew("a" + eAcute + family)
	if b.Len() != 1+3+len(family) {
		t.Errorf("Len() -> %d", b.Len())
	}
	if b.RuneCount() != 1+2+5 {
		t.Errorf("RuneCount() -> %d, want 8", b.RuneCount())
	}
	if b.GraphemeCount() != 3 {
		t.Errorf("GraphemeCount() -> %d, want 3", b.GraphemeCount())
	}
	if b.Cursor() != (Cursor{Byte: b.Len(), Grapheme: 3}) {
		t.Errorf("Cursor() -> %v, want at end", b.Cursor())
	}

	_, err := New("\xff")
	if !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("New(invalid UTF-8) -> error %v, want ErrInvalidParameter", err)
	}
}

func TestInsert(t *testing.T) {
	insert := func(init string, dot, off int, text string) (string, Cursor, error) {
		b := mustNew(init)
		b.SetCursor(dot)
		err := b.Insert(off, text)
		return b.String(), b.Cursor(), err
	}
	tt.Test(t, Fn("insert", insert), tt.Table{
		Args("", 0, 0, "abc").Rets("abc", Cursor{3, 3}, nil),
		Args("ac", 1, 1, "b").Rets("abc", Cursor{2, 2}, nil),
		// Cursor before the insertion point stays.
		Args("ac", 0, 1, "b").Rets("abc", Cursor{0, 0}, nil),
		// Cursor after the insertion point moves.
		Args("ac", 2, 0, "xx").Rets("xxac", Cursor{4, 4}, nil),
		// A combining mark joins the preceding cluster.
		Args("e", 1, 1, "\u0301").Rets(eAcute, Cursor{3, 1}, nil),
		Args("ab", 2, 1, "").Rets("ab", Cursor{2, 2}, nil),

		Args("ab", 2, 3, "x").Rets("ab", Cursor{2, 2}, ErrOutOfRange),
		Args("ab", 2, -1, "x").Rets("ab", Cursor{2, 2}, ErrOutOfRange),
		// Inside a multi-byte rune.
		Args("\u00e9", 2, 1, "x").Rets("\u00e9", Cursor{2, 1}, ErrOutOfRange),
		Args("ab", 2, 1, "\xc3").Rets("ab", Cursor{2, 2}, ErrInvalidParameter),
	})
}

func TestDelete(t *testing.T) {
	del := func(init string, dot, off, n int) (string, string, Cursor, error) {
		b := mustNew(init)
		b.SetCursor(dot)
		removed, err := b.Delete(off, n)
		return b.String(), removed, b.Cursor(), err
	}
	tt.Test(t, Fn("del", del), tt.Table{
		Args("abc", 3, 1, 1).Rets("ac", "b", Cursor{2, 2}, nil),
		Args("abc", 0, 1, 1).Rets("ac", "b", Cursor{0, 0}, nil),
		// Cursor inside the deleted span collapses.
		Args("abcd", 2, 1, 2).Rets("ad", "bc", Cursor{1, 1}, nil),
		Args("abc", 1, 0, 0).Rets("abc", "", Cursor{1, 1}, nil),
		Args("a"+eAcute, 4, 1, 3).Rets("a", eAcute, Cursor{1, 1}, nil),

		Args("abc", 3, 2, 2).Rets("abc", "", Cursor{3, 3}, ErrOutOfRange),
		Args("abc", 3, -1, 1).Rets("abc", "", Cursor{3, 3}, ErrOutOfRange),
		Args("abc", 3, 1, -1).Rets("abc", "", Cursor{3, 3}, ErrOutOfRange),
		Args("\u00e9", 2, 0, 1).Rets("\u00e9", "", Cursor{2, 1}, ErrOutOfRange),
	})
}

func TestDelete_ReturnsIndependentCopy(t *testing.T) {
	b := mustNew("hello world")
	removed, _ := b.Delete(0, 5)
	b.Insert(0, "HELLO")
	if removed != "hello" {
		t.Errorf("removed text changed to %q after later mutation", removed)
	}
}

func TestReplace(t *testing.T) {
	b := mustNew("old")
	b.SetCursor(1)
	old, err := b.Replace("brand " + family)
	if old != "old" || err != nil {
		t.Errorf("Replace -> (%q, %v), want (\"old\", nil)", old, err)
	}
	if b.Cursor() != (Cursor{b.Len(), 7}) {
		t.Errorf("cursor after Replace -> %v", b.Cursor())
	}
	if _, err := b.Replace("\xff"); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("Replace(invalid) -> %v", err)
	}
	if b.String() != "brand "+family {
		t.Errorf("failed Replace modified the buffer")
	}
}

func TestSetCursor_SnapsToClusterEnd(t *testing.T) {
	b := mustNew("x" + eAcute + "y")
	if err := b.SetCursor(2); err != nil {
		t.Fatal(err)
	}
	if b.Cursor() != (Cursor{4, 2}) {
		t.Errorf("SetCursor(2) -> %v, want {4 2}", b.Cursor())
	}
	if err := b.SetCursor(6); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("SetCursor(6) -> %v, want ErrOutOfRange", err)
	}
}

func TestMoveByGraphemes_TraversesClusters(t *testing.T) {
	clusters := []string{"a", family, eAcute, flagJP, flagJP, thumbsUp, "\r\n", "z"}
	var text string
	for _, c := range clusters {
		text += c
	}
	b := mustNew(text)
	if b.GraphemeCount() != len(clusters) {
		t.Fatalf("GraphemeCount() -> %d, want %d", b.GraphemeCount(), len(clusters))
	}

	b.MoveToStart()
	for i := range clusters {
		if moved := b.MoveByGraphemes(1); moved != 1 {
			t.Fatalf("step %d moved %d", i, moved)
		}
		want := len(joinUpTo(clusters, i+1))
		if b.Cursor().Byte != want || b.Cursor().Grapheme != i+1 {
			t.Errorf("after step %d cursor at %v, want {%d %d}", i, b.Cursor(), want, i+1)
		}
	}
	if b.Cursor().Byte != b.Len() {
		t.Errorf("did not reach the end")
	}
	if moved := b.MoveByGraphemes(1); moved != 0 {
		t.Errorf("MoveByGraphemes past the end moved %d", moved)
	}

	for i := len(clusters) - 1; i >= 0; i-- {
		b.MoveByGraphemes(-1)
		if b.Cursor().Byte != len(joinUpTo(clusters, i)) {
			t.Errorf("backward step to %d landed at %d", i, b.Cursor().Byte)
		}
	}
	if b.Cursor() != (Cursor{}) {
		t.Errorf("did not reach the start")
	}
}

func TestMoveByGraphemes_Clamps(t *testing.T) {
	b := mustNew("abc")
	b.SetCursor(1)
	if moved := b.MoveByGraphemes(-5); moved != -1 {
		t.Errorf("MoveByGraphemes(-5) -> %d, want -1", moved)
	}
	if moved := b.MoveByGraphemes(10); moved != 3 {
		t.Errorf("MoveByGraphemes(10) -> %d, want 3", moved)
	}
}

func TestPrevNextGrapheme(t *testing.T) {
	b := mustNew("a" + family + "b")
	end := 1 + len(family)
	tt.Test(t, Fn("PrevGrapheme", b.PrevGrapheme), tt.Table{
		Args(0).Rets(0),
		Args(1).Rets(0),
		Args(end).Rets(1),
		Args(5).Rets(1),
	})
	tt.Test(t, Fn("NextGrapheme", b.NextGrapheme), tt.Table{
		Args(0).Rets(1),
		Args(1).Rets(end),
		Args(end).Rets(end + 1),
		Args(end + 1).Rets(end + 1),
	})
}

func TestWordMotion(t *testing.T) {
	forward := func(text string, off int) int {
		return mustNew(text).ForwardWord(off, IsAlnum)
	}
	backward := func(text string, off int) int {
		return mustNew(text).BackwardWord(off, IsAlnum)
	}
	cafe := "caf" + eAcute + " x"
	tt.Test(t, Fn("ForwardWord", forward), tt.Table{
		Args("foo bar", 0).Rets(3),
		Args("foo bar", 3).Rets(7),
		Args("", 0).Rets(0),
		// Combining marks stay with their base.
		Args(cafe, 0).Rets(6),
		Args(cafe, 6).Rets(8),
		// An offset inside a cluster starts from the cluster.
		Args(cafe, 4).Rets(6),
		Args("a "+family+" b", 0).Rets(1),
	})
	tt.Test(t, Fn("BackwardWord", backward), tt.Table{
		Args("foo bar", 7).Rets(4),
		Args("foo bar", 4).Rets(0),
		Args(cafe, 8).Rets(7),
		Args(cafe, 7).Rets(0),
		Args(eAcute+eAcute, 6).Rets(0),
	})

	nonSpace := mustNew("ls " + family)
	if off := nonSpace.BackwardWord(nonSpace.Len(), IsNonSpace); off != 3 {
		t.Errorf("BackwardWord(IsNonSpace) -> %d, want 3", off)
	}
}

func TestCopyTo(t *testing.T) {
	b := mustNew("hello")
	small := make([]byte, 3)
	if _, err := b.CopyTo(small); !errors.Is(err, ErrBufferOverflow) {
		t.Errorf("CopyTo(small) -> %v, want ErrBufferOverflow", err)
	}
	big := make([]byte, 8)
	n, err := b.CopyTo(big)
	if n != 5 || err != nil || string(big[:n]) != "hello" {
		t.Errorf("CopyTo(big) -> (%d, %v) %q", n, err, big[:n])
	}
}

func TestBufferInvariants_RandomEdits(t *testing.T) {
	pieces := []string{"a", "Z", " ", "\n", "\u00e9", "\u0301", family, flagJP,
		"\U0001F1EF", "\u200d", thumbsUp, "\u4e2d\u6587", "\r", "\r\n"}
	rapid.Check(t, func(t *rapid.T) {
		b := &Buffer{}
		var model string
		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			starts := runeStarts(model)
			if len(model) == 0 || rapid.Bool().Draw(t, "insert") {
				off := rapid.SampledFrom(starts).Draw(t, "off")
				text := rapid.SampledFrom(pieces).Draw(t, "text")
				if err := b.Insert(off, text); err != nil {
					t.Fatalf("Insert(%d, %q) -> %v", off, text, err)
				}
				model = model[:off] + text + model[off:]
			} else {
				from := rapid.IntRange(0, len(starts)-1).Draw(t, "from")
				to := rapid.IntRange(from, len(starts)-1).Draw(t, "to")
				off, n := starts[from], starts[to]-starts[from]
				if _, err := b.Delete(off, n); err != nil {
					t.Fatalf("Delete(%d, %d) -> %v", off, n, err)
				}
				model = model[:off] + model[off+n:]
			}
			if b.String() != model {
				t.Fatalf("content %q, want %q", b.String(), model)
			}
			if err := b.Check(); err != nil {
				t.Fatalf("after step %d: %v", i, err)
			}
			if b.RuneCount() != utf8.RuneCountInString(model) {
				t.Fatalf("RuneCount mismatch")
			}
		}
	})
}

func joinUpTo(clusters []string, n int) string {
	var s string
	for _, c := range clusters[:n] {
		s += c
	}
	return s
}

// Returns the byte offsets of all rune starts in s, plus len(s).
func runeStarts(s string) []int {
	var starts []int
	for i := range s {
		starts = append(starts, i)
	}
	return append(starts, len(s))
}
