package store_test

import (
	"errors"
	"path/filepath"
	"testing"

	"src.shline.sh/pkg/store"
	"src.shline.sh/pkg/store/storedefs"
	"src.shline.sh/pkg/store/storetest"
)

func TestCmd(t *testing.T) {
	storetest.TestCmd(t, store.MustTempStore(t))
}

func TestDir(t *testing.T) {
	storetest.TestDir(t, store.MustTempStore(t))
}

func TestNewStore_PersistsAcrossOpens(t *testing.T) {
	name := filepath.Join(t.TempDir(), "db")
	st, err := store.NewStore(name)
	if err != nil {
		t.Fatal(err)
	}
	st.AddCmd("echo persisted")
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}
	if err := st.Close(); err != nil {
		t.Errorf("second Close -> %v", err)
	}

	st, err = store.NewStore(name)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	if cmd, err := st.Cmd(1); cmd != "echo persisted" || err != nil {
		t.Errorf("Cmd(1) -> (%q, %v)", cmd, err)
	}
	if _, err := st.Cmd(2); !errors.Is(err, storedefs.ErrNoMatchingCmd) {
		t.Errorf("Cmd(2) -> %v", err)
	}
}

func TestNewStore_BadPath(t *testing.T) {
	_, err := store.NewStore(filepath.Join(t.TempDir(), "missing", "db"))
	if err == nil {
		t.Errorf("NewStore in a missing directory succeeded")
	}
}
