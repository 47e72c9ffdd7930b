package errutil

import (
	"errors"
	"testing"
)

var (
	err1 = errors.New("a")
	err2 = errors.New("b")
	err3 = errors.New("c")
)

func TestMulti(t *testing.T) {
	if Multi() != nil {
		t.Errorf("Multi() != nil")
	}
	if Multi(nil, nil) != nil {
		t.Errorf("Multi(nil, nil) != nil")
	}
	if err := Multi(nil, err1); err != err1 {
		t.Errorf("Multi(nil, err1) -> %v, want err1", err)
	}
	err := Multi(Multi(err1, err2), nil, err3)
	if msg := err.Error(); msg != "multiple errors: a; b; c" {
		t.Errorf("flattened message %q", msg)
	}
}
