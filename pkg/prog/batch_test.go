package prog

import (
	"strings"
	"testing"
)

func TestRunBatch_LongLine(t *testing.T) {
	long := "echo " + strings.Repeat("x", 100*1024)
	var out strings.Builder
	if err := runBatch(strings.NewReader(long+"\n"), &out); err != nil {
		t.Fatal(err)
	}
	if out.String() != long+"\n" {
		t.Errorf("long line not copied")
	}
}

func TestRunBatch_Continuation(t *testing.T) {
	var out strings.Builder
	err := runBatch(strings.NewReader("echo a \\\nb\n{ x\n}\n"), &out)
	if err != nil {
		t.Fatal(err)
	}
	if want := "echo a \\\nb\n{ x\n}\n"; out.String() != want {
		t.Errorf("got %q, want %q", out.String(), want)
	}
}
