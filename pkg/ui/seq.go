package ui

import (
	"fmt"
	"strings"
)

// ParseSeq parses a space-separated key sequence descriptor such as
// "C-x C-s". Runs of whitespace are treated as a single separator.
func ParseSeq(s string) ([]Key, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, ErrEmptyKey
	}
	keys := make([]Key, len(fields))
	for i, field := range fields {
		k, err := ParseKey(field)
		if err != nil {
			return nil, fmt.Errorf("key %d of %q: %w", i+1, s, err)
		}
		keys[i] = k
	}
	return keys, nil
}

// FormatSeq returns the normalized descriptor of a key sequence. Two
// descriptors denote the same sequence iff they normalize to the same text.
func FormatSeq(keys []Key) string {
	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(k.String())
	}
	return sb.String()
}

// NormalizeSeq is a shorthand for ParseSeq followed by FormatSeq.
func NormalizeSeq(s string) (string, error) {
	keys, err := ParseSeq(s)
	if err != nil {
		return "", err
	}
	return FormatSeq(keys), nil
}
