package ui

import (
	"testing"

	"src.shline.sh/pkg/tt"
)

func TestNormalizeSeq(t *testing.T) {
	tt.Test(t, tt.Fn("NormalizeSeq", NormalizeSeq), tt.Table{
		tt.Args("C-x C-s").Rets("C-x C-s", nil),
		tt.Args("  C-X   C-S ").Rets("C-x C-s", nil),
		tt.Args("Ctrl-x Meta-f").Rets("C-x M-f", nil),
		tt.Args("C-i").Rets("TAB", nil),
		tt.Args("d d").Rets("d d", nil),
		tt.Args("").Rets("", ErrEmptyKey),
		tt.Args("C-x bogus").Rets("", tt.AnyError),
	})
}

func TestParseSeq_RoundTrip(t *testing.T) {
	keys := []Key{K('x', Ctrl), K(Up, Shift), K(F5), K('q', Alt, Ctrl)}
	got, err := ParseSeq(FormatSeq(keys))
	if err != nil {
		t.Fatalf("ParseSeq -> error %v", err)
	}
	if FormatSeq(got) != FormatSeq(keys) {
		t.Errorf("round trip -> %v, want %v", got, keys)
	}
}
