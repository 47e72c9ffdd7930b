// Package fsutil provides filesystem utilities for completion and prompts.
package fsutil

import (
	"os"
	"path/filepath"
	"strings"

	"src.shline.sh/pkg/env"
)

// DontSearch determines whether the path to an external command should be
// taken literally and not searched.
func DontSearch(exe string) bool {
	return strings.ContainsRune(exe, filepath.Separator) || strings.ContainsRune(exe, '/')
}

// IsExecutable returns whether the FileInfo refers to an executable file.
func IsExecutable(stat os.FileInfo) bool {
	return isExecutable(stat)
}

// EachExternal calls f for each executable file found while scanning the
// directories of $PATH. A name found in several directories is only reported
// once.
func EachExternal(f func(string)) {
	seen := make(map[string]bool)
	for _, dir := range searchPaths() {
		files, err := os.ReadDir(dir)
		if err != nil {
			// In practice this rarely happens. There isn't much we can reasonably do when it does
			// happen other than silently ignore the invalid directory.
			continue
		}
		for _, file := range files {
			name := file.Name()
			if seen[name] {
				continue
			}
			stat, err := os.Stat(filepath.Join(dir, name))
			if err == nil && IsExecutable(stat) {
				seen[name] = true
				f(name)
			}
		}
	}
}

func searchPaths() []string {
	path := os.Getenv(env.PATH)
	if path == "" {
		return nil
	}
	return strings.Split(path, string(filepath.ListSeparator))
}
