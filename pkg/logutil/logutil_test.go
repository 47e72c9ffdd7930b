package logutil

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGetLogger_WritesToSharedOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(io.Discard)

	logger := GetLogger("[test] ")
	logger.Info("hello", "key", 42)
	if s := buf.String(); !strings.Contains(s, "[test]") || !strings.Contains(s, "hello") ||
		!strings.Contains(s, "key=42") {
		t.Errorf("unexpected log output %q", s)
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(io.Discard)
	defer SetLevel("info")

	logger := GetLogger("[test] ")
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug message logged at info level: %q", buf.String())
	}
	if err := SetLevel("debug"); err != nil {
		t.Fatal(err)
	}
	logger.Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("debug message not logged after SetLevel(\"debug\")")
	}
	if err := SetLevel("loud"); err == nil {
		t.Errorf("SetLevel(\"loud\") -> nil error")
	}
}

func TestSetOutputFile(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "log")
	if err := SetOutputFile(fname); err != nil {
		t.Fatal(err)
	}
	GetLogger("[file] ").Warn("to file")
	if err := SetOutputFile(""); err != nil {
		t.Fatal(err)
	}
	content, err := os.ReadFile(fname)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "to file") {
		t.Errorf("log file content %q", content)
	}
}
