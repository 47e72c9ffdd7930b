// Package textbuf implements the editable text buffer of the line editor,
// together with its cursor.
//
// The buffer holds valid UTF-8 and keeps three counters in sync: the length in
// bytes, the number of runes and the number of grapheme clusters. The cursor
// is kept both as a byte offset and as a grapheme index; both views are
// re-derived inside every method that mutates the buffer or moves the cursor,
// so callers never observe them disagreeing.
package textbuf

import (
	"errors"
	"sort"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Errors returned by Buffer methods.
var (
	// ErrOutOfRange is returned when an offset or span lies outside the buffer
	// or does not fall on a character boundary. The buffer is left unmodified.
	ErrOutOfRange = errors.New("offset out of range")
	// ErrInvalidParameter is returned for arguments that can never be valid,
	// such as text that is not valid UTF-8.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrBufferOverflow is returned by CopyTo when the destination is too
	// small. Nothing is written; the caller should retry with a larger one.
	ErrBufferOverflow = errors.New("destination too small")
)

// Cursor is the position of the cursor, expressed both as a byte offset and as
// the number of grapheme clusters before it.
type Cursor struct {
	Byte     int
	Grapheme int
}

// Buffer is an editable text buffer with a cursor. The zero value is an empty
// buffer ready to use.
type Buffer struct {
	text  []byte
	runes int
	// Byte offsets of all grapheme cluster boundaries, including 0 and
	// len(text). Nil for an empty buffer.
	bounds []int
	cursor Cursor
}

// New creates a Buffer holding the given text, with the cursor at the end.
func New(text string) (*Buffer, error) {
	b := &Buffer{}
	if _, err := b.Replace(text); err != nil {
		return nil, err
	}
	return b, nil
}

// String returns a copy of the content.
func (b *Buffer) String() string { return string(b.text) }

// Slice returns a copy of the content between the byte offsets from and to,
// clamped to the buffer.
func (b *Buffer) Slice(from, to int) string {
	from, to = clamp(from, len(b.text)), clamp(to, len(b.text))
	if from >= to {
		return ""
	}
	return string(b.text[from:to])
}

// Len returns the length of the content in bytes.
func (b *Buffer) Len() int { return len(b.text) }

// RuneCount returns the number of runes in the content.
func (b *Buffer) RuneCount() int { return b.runes }

// GraphemeCount returns the number of grapheme clusters in the content.
func (b *Buffer) GraphemeCount() int {
	if len(b.bounds) == 0 {
		return 0
	}
	return len(b.bounds) - 1
}

// Cursor returns the current cursor.
func (b *Buffer) Cursor() Cursor { return b.cursor }

// Dot returns the byte offset of the cursor.
func (b *Buffer) Dot() int { return b.cursor.Byte }

// CopyTo copies the content into dst and returns the number of bytes copied.
func (b *Buffer) CopyTo(dst []byte) (int, error) {
	if len(dst) < len(b.text) {
		return 0, ErrBufferOverflow
	}
	return copy(dst, b.text), nil
}

// Insert inserts text at the given byte offset. A cursor at or after the
// offset moves right by the length of the text.
func (b *Buffer) Insert(off int, text string) error {
	if !utf8.ValidString(text) {
		return ErrInvalidParameter
	}
	if !b.isRuneBoundary(off) {
		return ErrOutOfRange
	}
	if text == "" {
		return nil
	}
	newText := make([]byte, 0, len(b.text)+len(text))
	newText = append(newText, b.text[:off]...)
	newText = append(newText, text...)
	newText = append(newText, b.text[off:]...)

	dot := b.cursor.Byte
	if dot >= off {
		dot += len(text)
	}
	b.commit(newText, b.runes+utf8.RuneCountInString(text), dot)
	return nil
}

// Delete removes n bytes starting at off and returns the removed text. A
// cursor inside the removed span collapses to off; a cursor after it moves
// left by n.
func (b *Buffer) Delete(off, n int) (string, error) {
	if n < 0 || !b.isRuneBoundary(off) || !b.isRuneBoundary(off+n) {
		return "", ErrOutOfRange
	}
	if n == 0 {
		return "", nil
	}
	removed := string(b.text[off : off+n])
	newText := make([]byte, 0, len(b.text)-n)
	newText = append(newText, b.text[:off]...)
	newText = append(newText, b.text[off+n:]...)

	dot := b.cursor.Byte
	switch {
	case dot > off+n:
		dot -= n
	case dot > off:
		dot = off
	}
	b.commit(newText, b.runes-utf8.RuneCountInString(removed), dot)
	return removed, nil
}

// Replace replaces the whole content and moves the cursor to the end. It
// returns the old content.
func (b *Buffer) Replace(text string) (string, error) {
	if !utf8.ValidString(text) {
		return "", ErrInvalidParameter
	}
	old := string(b.text)
	b.commit([]byte(text), utf8.RuneCountInString(text), len(text))
	return old, nil
}

// SetCursor moves the cursor to the given byte offset. An offset inside a
// grapheme cluster is moved forward to the end of that cluster.
func (b *Buffer) SetCursor(off int) error {
	if off < 0 || off > len(b.text) {
		return ErrOutOfRange
	}
	b.setDot(off)
	return nil
}

// MoveByGraphemes moves the cursor by delta grapheme clusters, stopping at
// either end of the buffer. It returns the number of clusters actually moved,
// with the same sign as delta.
func (b *Buffer) MoveByGraphemes(delta int) int {
	target := b.cursor.Grapheme + delta
	if target < 0 {
		target = 0
	} else if target > b.GraphemeCount() {
		target = b.GraphemeCount()
	}
	moved := target - b.cursor.Grapheme
	b.cursor = Cursor{Byte: b.boundary(target), Grapheme: target}
	return moved
}

// MoveToStart moves the cursor to the start of the buffer.
func (b *Buffer) MoveToStart() { b.cursor = Cursor{} }

// MoveToEnd moves the cursor to the end of the buffer.
func (b *Buffer) MoveToEnd() {
	b.cursor = Cursor{Byte: len(b.text), Grapheme: b.GraphemeCount()}
}

// PrevGrapheme returns the start of the grapheme cluster that ends at or
// contains off. It returns 0 when off is 0.
func (b *Buffer) PrevGrapheme(off int) int {
	i := sort.SearchInts(b.bounds, off)
	if i == 0 {
		return 0
	}
	return b.bounds[i-1]
}

// NextGrapheme returns the end of the grapheme cluster that starts at or
// contains off. It returns Len() when off is at the end.
func (b *Buffer) NextGrapheme(off int) int {
	i := sort.SearchInts(b.bounds, off+1)
	if i >= len(b.bounds) {
		return len(b.text)
	}
	return b.bounds[i]
}

// Check verifies that the cached counters and the cursor agree with the
// content. It is meant for tests.
func (b *Buffer) Check() error {
	switch {
	case !utf8.Valid(b.text):
		return errors.New("content is not valid UTF-8")
	case utf8.RuneCount(b.text) != b.runes:
		return errors.New("rune count out of sync")
	case uniseg.GraphemeClusterCount(string(b.text)) != b.GraphemeCount():
		return errors.New("grapheme count out of sync")
	case b.cursor.Byte < 0 || b.cursor.Byte > len(b.text):
		return errors.New("cursor byte offset out of range")
	case b.cursor.Grapheme < 0 || b.cursor.Grapheme > b.GraphemeCount():
		return errors.New("cursor grapheme index out of range")
	case b.boundary(b.cursor.Grapheme) != b.cursor.Byte:
		return errors.New("cursor views disagree")
	}
	return nil
}

func (b *Buffer) isRuneBoundary(off int) bool {
	if off < 0 || off > len(b.text) {
		return false
	}
	return off == len(b.text) || utf8.RuneStart(b.text[off])
}

// Installs new content and re-derives the counters and the cursor.
func (b *Buffer) commit(text []byte, runes, dot int) {
	b.text = text
	b.runes = runes
	b.bounds = graphemeBounds(text)
	b.setDot(dot)
}

func (b *Buffer) setDot(off int) {
	i := sort.SearchInts(b.bounds, off)
	if i >= len(b.bounds) {
		// Empty buffer.
		b.cursor = Cursor{}
		return
	}
	b.cursor = Cursor{Byte: b.bounds[i], Grapheme: i}
}

func (b *Buffer) boundary(i int) int {
	if len(b.bounds) == 0 {
		return 0
	}
	return b.bounds[i]
}

func graphemeBounds(text []byte) []int {
	if len(text) == 0 {
		return nil
	}
	bounds := make([]int, 0, len(text)+1)
	g := uniseg.NewGraphemes(string(text))
	for g.Next() {
		from, _ := g.Positions()
		bounds = append(bounds, from)
	}
	return append(bounds, len(text))
}
