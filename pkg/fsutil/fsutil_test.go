package fsutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"src.shline.sh/pkg/env"
	"src.shline.sh/pkg/testutil"
	"src.shline.sh/pkg/tt"
)

var Args = tt.Args

func TestDontSearch(t *testing.T) {
	tt.Test(t, tt.Fn("DontSearch", DontSearch), tt.Table{
		Args("ls").Rets(false),
		Args("./ls").Rets(true),
		Args("bin/ls").Rets(true),
	})
}

func TestEachExternal(t *testing.T) {
	bin1 := testutil.TempDir(t)
	bin2 := testutil.TempDir(t)
	testutil.Chdir(t, bin1)
	testutil.ApplyDir(testutil.Dir{
		"ls":     testutil.File{Perm: 0755, Content: ""},
		"README": "not executable",
		"lib":    testutil.Dir{},
	})
	testutil.Chdir(t, bin2)
	testutil.ApplyDir(testutil.Dir{
		"ls":   testutil.File{Perm: 0755, Content: ""},
		"grep": testutil.File{Perm: 0755, Content: ""},
	})
	testutil.Setenv(t, env.PATH, bin1+string(filepath.ListSeparator)+bin2+
		string(filepath.ListSeparator)+filepath.Join(bin1, "missing"))

	var names []string
	EachExternal(func(name string) { names = append(names, name) })
	sort.Strings(names)
	if len(names) != 2 || names[0] != "grep" || names[1] != "ls" {
		t.Errorf("EachExternal found %v, want [grep ls]", names)
	}
}

func TestTildeAbbrAndExpand(t *testing.T) {
	testutil.Setenv(t, env.HOME, "/home/user")
	tt.Test(t, tt.Fn("TildeAbbr", TildeAbbr), tt.Table{
		Args("/home/user").Rets("~"),
		Args("/home/user/src").Rets("~/src"),
		Args("/home/username").Rets("/home/username"),
		Args("/tmp").Rets("/tmp"),
	})
	tt.Test(t, tt.Fn("ExpandTilde", ExpandTilde), tt.Table{
		Args("~").Rets("/home/user"),
		Args("~/src").Rets("/home/user/src"),
		Args("~bob/src").Rets("~bob/src"),
		Args("a/~").Rets("a/~"),
	})
}

func TestGetwd(t *testing.T) {
	dir := testutil.InTempDir(t)
	testutil.Setenv(t, env.HOME, dir)
	if got := Getwd(); got != "~" {
		t.Errorf("Getwd() in home -> %q, want ~", got)
	}
	sub := filepath.Join(dir, "sub")
	os.Mkdir(sub, 0755)
	testutil.Chdir(t, sub)
	if got := Getwd(); got != "~/sub" {
		t.Errorf("Getwd() -> %q, want ~/sub", got)
	}
}
