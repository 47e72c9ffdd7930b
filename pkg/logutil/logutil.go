// Package logutil provides logging utilities.
//
// All loggers obtained from GetLogger write to a shared sink, which discards
// everything until SetOutput or SetOutputFile is called. The terminal being
// edited is never a good destination, so logs normally go to a file.
package logutil

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	mu      sync.Mutex
	out     io.Writer = io.Discard
	outFile *os.File
	level   = log.InfoLevel
	loggers []*log.Logger
)

type sinkWriter struct{}

func (sinkWriter) Write(p []byte) (int, error) {
	mu.Lock()
	defer mu.Unlock()
	return out.Write(p)
}

// GetLogger gets a logger with a prefix, such as "[edit] ".
func GetLogger(prefix string) *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	logger := log.NewWithOptions(sinkWriter{}, log.Options{
		Prefix:          strings.TrimSpace(prefix),
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.000",
		Level:           level,
	})
	loggers = append(loggers, logger)
	return logger
}

// SetOutput redirects the output of all loggers obtained with GetLogger to
// the new io.Writer. If the old output was a file opened by SetOutputFile, it
// is closed.
func SetOutput(newout io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	closeOutFile()
	out = newout
}

// SetOutputFile redirects the output of all loggers obtained with GetLogger
// to the named file, which is created if necessary and appended to. An empty
// name discards the output.
func SetOutputFile(fname string) error {
	if fname == "" {
		SetOutput(io.Discard)
		return nil
	}
	file, err := os.OpenFile(fname, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	closeOutFile()
	out, outFile = file, file
	return nil
}

// SetLevel sets the minimum level of all loggers, past and future. Valid
// names are "debug", "info", "warn", "error" and "fatal".
func SetLevel(name string) error {
	l, err := log.ParseLevel(name)
	if err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	level = l
	for _, logger := range loggers {
		logger.SetLevel(l)
	}
	return nil
}

func closeOutFile() {
	if outFile != nil {
		outFile.Close()
		outFile = nil
	}
}
