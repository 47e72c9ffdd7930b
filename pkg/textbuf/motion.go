package textbuf

import (
	"bytes"
	"sort"
	"unicode"
	"unicode/utf8"
)

// LineStart returns the byte offset of the start of the line containing off.
func (b *Buffer) LineStart(off int) int {
	return bytes.LastIndexByte(b.text[:clamp(off, len(b.text))], '\n') + 1
}

// LineEnd returns the byte offset of the end of the line containing off, not
// including the newline.
func (b *Buffer) LineEnd(off int) int {
	off = clamp(off, len(b.text))
	if i := bytes.IndexByte(b.text[off:], '\n'); i >= 0 {
		return off + i
	}
	return len(b.text)
}

// BackwardWord returns the offset reached by skipping grapheme clusters that
// are not part of a word, then clusters that are, walking backward from off.
// A cluster is classified by its first rune, so combining marks stay with
// their base.
func (b *Buffer) BackwardWord(off int, inWord func(rune) bool) int {
	off = b.snap(off)
	for off > 0 {
		from := b.PrevGrapheme(off)
		if inWord(b.baseRune(from)) {
			break
		}
		off = from
	}
	for off > 0 {
		from := b.PrevGrapheme(off)
		if !inWord(b.baseRune(from)) {
			break
		}
		off = from
	}
	return off
}

// ForwardWord returns the offset reached by skipping grapheme clusters that
// are not part of a word, then clusters that are, walking forward from off.
func (b *Buffer) ForwardWord(off int, inWord func(rune) bool) int {
	off = b.snap(off)
	for off < len(b.text) && !inWord(b.baseRune(off)) {
		off = b.NextGrapheme(off)
	}
	for off < len(b.text) && inWord(b.baseRune(off)) {
		off = b.NextGrapheme(off)
	}
	return off
}

// Returns the start of the grapheme cluster containing off.
func (b *Buffer) snap(off int) int {
	off = clamp(off, len(b.text))
	i := sort.SearchInts(b.bounds, off)
	if i < len(b.bounds) && b.bounds[i] == off {
		return off
	}
	if i == 0 {
		return 0
	}
	return b.bounds[i-1]
}

func (b *Buffer) baseRune(off int) rune {
	r, _ := utf8.DecodeRune(b.text[off:])
	return r
}

// IsAlnum determines if the rune is an alphanumeric character. Words made of
// such runes are what the emacs-style word commands operate on.
func IsAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}

// IsNonSpace is the word predicate of the unix-style word commands, where a
// word is a run of non-space runes.
func IsNonSpace(r rune) bool {
	return !unicode.IsSpace(r)
}

func clamp(off, n int) int {
	if off < 0 {
		return 0
	}
	if off > n {
		return n
	}
	return off
}
