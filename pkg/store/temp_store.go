package store

import (
	"os"
	"path/filepath"

	"src.shline.sh/pkg/testutil"
)

// MustTempStore returns a Store backed by a file in a temporary directory. The
// Store is closed and the file removed when the test finishes.
func MustTempStore(c testutil.Cleanuper) DBStore {
	dir, err := os.MkdirTemp("", "shline.test")
	if err != nil {
		panic(err)
	}
	st, err := NewStore(filepath.Join(dir, "db"))
	if err != nil {
		os.RemoveAll(dir)
		panic(err)
	}
	c.Cleanup(func() {
		st.Close()
		os.RemoveAll(dir)
	})
	return st
}
