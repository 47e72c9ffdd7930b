// Package storetest keeps test suites against storedefs.Store.
package storetest

import (
	"errors"
	"reflect"
	"testing"

	"src.shline.sh/pkg/store/storedefs"
)

var (
	cmds      = []string{"echo foo", "put bar", "echo bar", "put lorem"}
	starts    = []string{"echo", "put"}
	dirsToAdd = []string{"/usr/local", "/usr", "/usr/bin", "/usr"}
	black     = map[string]struct{}{"/usr/local": {}}
	wantDirs  = []storedefs.Dir{
		{Path: "/usr", Score: 20},
		{Path: "/usr/bin", Score: 10},
	}
)

// TestCmd tests the command history functionality of a Store.
func TestCmd(t *testing.T, store storedefs.Store) {
	startSeq, err := store.NextCmdSeq()
	if startSeq != 1 || err != nil {
		t.Errorf("store.NextCmdSeq() -> (%v, %v), want (1, nil)", startSeq, err)
	}

	// AddCmd
	for i, cmd := range cmds {
		wantSeq := startSeq + i
		seq, err := store.AddCmd(cmd)
		if seq != wantSeq || err != nil {
			t.Errorf("store.AddCmd(%v) -> (%v, %v), want (%v, nil)",
				cmd, seq, err, wantSeq)
		}
	}

	endSeq, err := store.NextCmdSeq()
	wantedEndSeq := startSeq + len(cmds)
	if endSeq != wantedEndSeq || err != nil {
		t.Errorf("store.NextCmdSeq() -> (%v, %v), want (%v, nil)",
			endSeq, err, wantedEndSeq)
	}

	// Cmd
	for i, wantCmd := range cmds {
		seq := i + startSeq
		cmd, err := store.Cmd(seq)
		if cmd != wantCmd || err != nil {
			t.Errorf("store.Cmd(%v) -> (%v, %v), want (%v, nil)",
				seq, cmd, err, wantCmd)
		}
	}

	// CmdsWithSeq
	wantCmdWithSeqs := make([]storedefs.Cmd, len(cmds))
	for i, cmd := range cmds {
		wantCmdWithSeqs[i] = storedefs.Cmd{Text: cmd, Seq: i + 1}
	}
	for i := 0; i < len(cmds); i++ {
		for j := i; j <= len(cmds); j++ {
			cmdWithSeqs, err := store.CmdsWithSeq(i+1, j+1)
			if !equalCmds(cmdWithSeqs, wantCmdWithSeqs[i:j]) || err != nil {
				t.Errorf("store.CmdsWithSeq(%v, %v) -> (%v, %v), want (%v, nil)",
					i+1, j+1, cmdWithSeqs, err, wantCmdWithSeqs[i:j])
			}
		}
	}

	// NextCmd
	for i, prefix := range starts {
		wantCmd := cmds[i]
		wantSeq := i + startSeq
		cmd, err := store.NextCmd(startSeq, prefix)
		if cmd.Text != wantCmd || cmd.Seq != wantSeq || err != nil {
			t.Errorf("store.NextCmd(%v, %v) -> (%v, %v), want (%v, %v, nil)",
				startSeq, prefix, cmd, err, wantCmd, wantSeq)
		}
	}

	// PrevCmd
	for i, prefix := range starts {
		wantCmd := cmds[i+2]
		wantSeq := i + startSeq + 2
		cmd, err := store.PrevCmd(endSeq, prefix)
		if cmd.Text != wantCmd || cmd.Seq != wantSeq || err != nil {
			t.Errorf("store.PrevCmd(%v, %v) -> (%v, %v), want (%v, %v, nil)",
				endSeq, prefix, cmd, err, wantCmd, wantSeq)
		}
	}
	if _, err := store.PrevCmd(startSeq, ""); !errors.Is(err, storedefs.ErrNoMatchingCmd) {
		t.Errorf("store.PrevCmd before the first command -> %v, want ErrNoMatchingCmd", err)
	}

	// DelCmd
	if err := store.DelCmd(startSeq); err != nil {
		t.Error("Failed to remove cmd")
	}
	if seq, err := store.Cmd(startSeq); !errors.Is(err, storedefs.ErrNoMatchingCmd) {
		t.Errorf("Cmd(1) => (%v, %v), want (\"\", ErrNoMatchingCmd)", seq, err)
	}

	// CmdCount and TrimCmds
	if n, err := store.CmdCount(); n != len(cmds)-1 || err != nil {
		t.Errorf("store.CmdCount() -> (%v, %v), want (%v, nil)", n, err, len(cmds)-1)
	}
	if n, err := store.TrimCmds(1); n != len(cmds)-2 || err != nil {
		t.Errorf("store.TrimCmds(1) -> (%v, %v), want (%v, nil)", n, err, len(cmds)-2)
	}
	if all, _ := store.CmdsWithSeq(0, endSeq); len(all) != 1 || all[0].Text != cmds[len(cmds)-1] {
		t.Errorf("after TrimCmds(1), commands are %v", all)
	}
	if seq, _ := store.NextCmdSeq(); seq != endSeq {
		t.Errorf("TrimCmds changed NextCmdSeq to %v, want %v", seq, endSeq)
	}
}

// TestDir tests the directory history functionality of a Store.
func TestDir(t *testing.T, store storedefs.Store) {
	for _, path := range dirsToAdd {
		err := store.AddDir(path, 1)
		if err != nil {
			t.Errorf("AddDir(%q) => %v, want <nil>", path, err)
		}
	}

	dirs, err := store.Dirs(black)
	if err != nil || !matchDirs(dirs, wantDirs) {
		t.Errorf(`Dirs() => (%v, %v), want (%v, <nil>)`, dirs, err, wantDirs)
	}

	store.DelDir("/usr")
	dirs, err = store.Dirs(storedefs.NoBlacklist)
	if err != nil || len(dirs) != 2 {
		t.Errorf("Dirs() after DelDir -> (%v, %v), want two directories", dirs, err)
	}
	for _, dir := range dirs {
		if dir.Path == "/usr" {
			t.Errorf("DelDir(\"/usr\") did not delete it")
		}
	}
}

func equalCmds(a, b []storedefs.Cmd) bool {
	return (len(a) == 0 && len(b) == 0) || reflect.DeepEqual(a, b)
}

// Decayed scores are compared with a tolerance, since each AddDir multiplies
// existing scores by DirScoreDecay.
func matchDirs(got, want []storedefs.Dir) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i].Path != want[i].Path || got[i].Score < want[i].Score*0.95 ||
			got[i].Score > want[i].Score*1.05 {
			return false
		}
	}
	return true
}
