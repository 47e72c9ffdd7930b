package prog

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"src.shline.sh/pkg/parse/contin"
)

// Splits the input into complete statements and writes each on its own line,
// with the newlines inside a statement kept. Blank statements are skipped.
func runBatch(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	state := contin.New()
	var stmt []string
	lineno, start := 0, 0
	for scanner.Scan() {
		lineno++
		if len(stmt) == 0 {
			start = lineno
		}
		line := scanner.Text()
		state.Feed(line)
		stmt = append(stmt, line)
		if !state.IsComplete() {
			continue
		}
		if text := strings.Join(stmt, "\n"); strings.TrimSpace(text) != "" {
			if _, err := fmt.Fprintln(out, text); err != nil {
				return err
			}
		}
		stmt = stmt[:0]
		state.Reset()
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if len(stmt) > 0 {
		return fmt.Errorf("incomplete statement starting at line %d: open %s", start, state.Reason())
	}
	return nil
}
