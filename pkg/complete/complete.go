// Package complete generates and ranks completion candidates for the word at
// the cursor.
package complete

import (
	"errors"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"src.shline.sh/pkg/errutil"
	"src.shline.sh/pkg/logutil"
)

var logger = logutil.GetLogger("[complete] ")

// ErrNoCompletion is returned when no source has any candidate for the word
// at the cursor.
var ErrNoCompletion = errors.New("no completion")

// Context describes the word being completed.
type Context struct {
	// Words of the current command before the seed.
	Words []string
	// The part of the word before the cursor.
	Seed string
	// Whether the seed is in command position.
	Command bool
}

// Source generates raw candidates for a context. A source that does not apply
// to the context returns nothing.
type Source interface {
	Candidates(ctx Context) ([]string, error)
}

// SourceFunc adapts a function to a Source.
type SourceFunc func(ctx Context) ([]string, error)

// Candidates calls f.
func (f SourceFunc) Candidates(ctx Context) ([]string, error) { return f(ctx) }

// Completer pools the candidates of its sources and ranks them against the
// seed.
type Completer struct {
	sources []Source
	// Maximum number of candidates returned; zero means no limit.
	Limit int
}

// New creates a Completer from sources.
func New(sources ...Source) *Completer {
	return &Completer{sources: sources}
}

// Complete completes the word that ends at the cursor, a byte offset into
// content. It returns the byte offset where the word starts and the ranked
// candidates, which replace content[from:cursor].
//
// Candidates that start with the seed come first; the rest are fuzzy
// matches. Within each group, better fuzzy scores come first. Errors from
// sources are returned only if there are no candidates.
func (c *Completer) Complete(content string, cursor int) (from int, cands []string, err error) {
	cursor = max(0, min(cursor, len(content)))
	ctx, from := parseContext(content[:cursor])

	var pool []string
	seen := make(map[string]bool)
	var errs []error
	for _, src := range c.sources {
		items, err := src.Candidates(ctx)
		if err != nil {
			logger.Debug("source failed", "seed", ctx.Seed, "err", err)
			errs = append(errs, err)
		}
		for _, item := range items {
			if item != "" && !seen[item] {
				seen[item] = true
				pool = append(pool, item)
			}
		}
	}

	cands = rank(ctx.Seed, pool)
	if c.Limit > 0 && len(cands) > c.Limit {
		cands = cands[:c.Limit]
	}
	if len(cands) == 0 {
		if err := errutil.Multi(errs...); err != nil {
			return from, nil, err
		}
		return from, nil, ErrNoCompletion
	}
	return from, cands, nil
}

func rank(seed string, pool []string) []string {
	if seed == "" {
		sorted := append([]string(nil), pool...)
		sort.Strings(sorted)
		return sorted
	}
	matches := fuzzy.Find(seed, pool)
	var prefixed, others []string
	for _, m := range matches {
		if strings.HasPrefix(m.Str, seed) {
			prefixed = append(prefixed, m.Str)
		} else {
			others = append(others, m.Str)
		}
	}
	return append(prefixed, others...)
}

// Characters that end a command, and characters that only end a word.
const (
	separators = ";&|()\n"
	wordBreaks = " \t<>" + separators
)

// Keywords after which the next word is still in command position.
var commandPrefixes = map[string]bool{
	"then": true, "do": true, "else": true, "elif": true, "if": true,
	"while": true, "until": true, "time": true, "!": true, "sudo": true,
	"exec": true, "command": true, "nohup": true,
}

// Finds the word that ends at the end of text, and the words before it in
// the same command.
func parseContext(text string) (Context, int) {
	from := strings.LastIndexAny(text, wordBreaks) + 1
	cmdStart := strings.LastIndexAny(text[:from], separators) + 1
	words := strings.Fields(text[cmdStart:from])
	if len(words) == 0 {
		words = nil
	}
	command := true
	for _, w := range words {
		command = commandPrefixes[w]
	}
	return Context{Words: words, Seed: text[from:], Command: command}, from
}
