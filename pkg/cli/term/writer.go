package term

import (
	"bytes"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// View is what the editor shows: a prompt, the text being edited with the
// cursor at a byte offset, and an optional mode indicator.
type View struct {
	Prompt  string
	Content string
	Cursor  int
	Mode    string
}

// Writer renders views to a terminal. It redraws the whole view on every
// refresh, starting from the first row of the previous rendering.
type Writer struct {
	// Styles applied to the prompt, the mode indicator and notifications.
	PromptStyle lipgloss.Style
	ModeStyle   lipgloss.Style
	NotifyStyle lipgloss.Style

	out   io.Writer
	width func() int

	// Row of the cursor within the last rendering.
	cursorRow int
	last      View
	hasLast   bool
}

// NewWriter returns a Writer that writes VT100 sequences to out. The width
// function reports the width of the terminal; if it is nil, a width of 80 is
// assumed.
func NewWriter(out io.Writer, width func() int) *Writer {
	return &Writer{
		PromptStyle: lipgloss.NewStyle().Bold(true),
		ModeStyle:   lipgloss.NewStyle().Reverse(true),
		NotifyStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		out:         out, width: width,
	}
}

// Refresh redraws the view.
func (w *Writer) Refresh(v View) {
	w.last, w.hasLast = v, true
	var buf bytes.Buffer
	w.render(&buf, v)
	w.flush(&buf)
}

// Notify shows a message above the view.
func (w *Writer) Notify(msg string) {
	var buf bytes.Buffer
	w.toTop(&buf)
	buf.WriteString(ansi.EraseScreenBelow)
	for _, line := range strings.Split(msg, "\n") {
		buf.WriteString(w.NotifyStyle.Render(line))
		buf.WriteString("\r\n")
	}
	w.cursorRow = 0
	if w.hasLast {
		w.render(&buf, w.last)
	}
	w.flush(&buf)
}

// Finish draws the view a final time with the cursor after the content and
// moves to a fresh line. The next Refresh starts drawing there.
func (w *Writer) Finish(v View) {
	v.Cursor = len(v.Content)
	var buf bytes.Buffer
	w.render(&buf, v)
	buf.WriteString("\r\n")
	w.cursorRow = 0
	w.hasLast = false
	w.flush(&buf)
}

// Clear clears the screen and redraws the last view at the top.
func (w *Writer) Clear() {
	var buf bytes.Buffer
	buf.WriteString(ansi.CursorHomePosition)
	buf.WriteString(ansi.EraseEntireScreen)
	w.cursorRow = 0
	if w.hasLast {
		w.render(&buf, w.last)
	}
	w.flush(&buf)
}

func (w *Writer) termWidth() int {
	if w.width == nil {
		return 80
	}
	if width := w.width(); width > 0 {
		return width
	}
	return 80
}

// Moves from the cursor to the start of the first row of the last rendering.
func (w *Writer) toTop(buf *bytes.Buffer) {
	if w.cursorRow > 0 {
		buf.WriteString(ansi.CursorUp(w.cursorRow))
	}
	buf.WriteString("\r")
}

func (w *Writer) render(buf *bytes.Buffer, v View) {
	rows, curRow, curCol := layout(v, w.termWidth(), w.PromptStyle, w.ModeStyle)
	buf.WriteString(ansi.HideCursor)
	w.toTop(buf)
	buf.WriteString(ansi.EraseScreenBelow)
	for i, row := range rows {
		if i > 0 {
			buf.WriteString("\r\n")
		}
		buf.WriteString(row)
	}
	if up := len(rows) - 1 - curRow; up > 0 {
		buf.WriteString(ansi.CursorUp(up))
	}
	buf.WriteString("\r")
	if curCol > 0 {
		buf.WriteString(ansi.CursorForward(curCol))
	}
	buf.WriteString(ansi.ShowCursor)
	w.cursorRow = curRow
}

func (w *Writer) flush(buf *bytes.Buffer) {
	if _, err := w.out.Write(buf.Bytes()); err != nil {
		logger.Warn("failed to write to terminal", "err", err)
	}
}

// Lays out a view on a terminal of the given width. It returns the rows, which
// may contain SGR sequences, and the position of the cursor. Rows are broken
// at newlines and before a grapheme cluster that does not fit.
func layout(v View, width int, promptStyle, modeStyle lipgloss.Style) (rows []string, curRow, curCol int) {
	var line strings.Builder
	col := 0
	newRow := func() {
		rows = append(rows, line.String())
		line.Reset()
		col = 0
	}
	put := func(s string, cells int) {
		if col > 0 && col+cells > width {
			newRow()
		}
		line.WriteString(s)
		col += cells
	}

	promptLines := strings.Split(v.Prompt, "\n")
	for i, pl := range promptLines {
		if i == len(promptLines)-1 && v.Mode != "" {
			tag := modeStyle.Render("["+v.Mode+"]") + " "
			put(tag, ansi.StringWidth(tag))
		}
		if pl != "" {
			styled := promptStyle.Render(pl)
			put(styled, ansi.StringWidth(styled))
		}
		if i < len(promptLines)-1 {
			newRow()
		}
	}

	curRow = -1
	g := uniseg.NewGraphemes(v.Content)
	for g.Next() {
		from, _ := g.Positions()
		cluster := g.Str()
		if cluster == "\n" || cluster == "\r\n" {
			if curRow < 0 && from >= v.Cursor {
				curRow, curCol = len(rows), col
			}
			newRow()
			continue
		}
		s, cells := displayCluster(cluster)
		if col > 0 && col+cells > width {
			newRow()
		}
		if curRow < 0 && from >= v.Cursor {
			curRow, curCol = len(rows), col
		}
		put(s, cells)
	}
	rows = append(rows, line.String())
	if curRow < 0 {
		curRow, curCol = len(rows)-1, col
	}
	if curCol >= width {
		// The cursor sits past a full row; show it at the start of the next.
		curRow, curCol = curRow+1, 0
		if curRow == len(rows) {
			rows = append(rows, "")
		}
	}
	return rows, curRow, curCol
}

// Returns how a grapheme cluster is displayed and its width in cells. Control
// characters are shown in caret notation.
func displayCluster(cluster string) (string, int) {
	if len(cluster) == 1 && (cluster[0] < 0x20 || cluster[0] == 0x7f) {
		s := "^" + string(cluster[0]^0x40)
		return s, 2
	}
	return cluster, runewidth.StringWidth(cluster)
}
