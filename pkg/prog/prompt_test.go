package prog

import (
	"testing"

	"src.shline.sh/pkg/env"
	"src.shline.sh/pkg/must"
	"src.shline.sh/pkg/testutil"
	"src.shline.sh/pkg/tt"
)

func TestExpandPrompt(t *testing.T) {
	home := testutil.InTempDir(t)
	testutil.Setenv(t, env.HOME, home)
	testutil.Setenv(t, env.USER, "alice")

	tt.Test(t, tt.Fn("expandPrompt", expandPrompt), tt.Table{
		tt.Args(`\w> `).Rets("~> "),
		tt.Args(`\W`).Rets("~"),
		tt.Args(`\u@`).Rets("alice@"),
		tt.Args(`a\\b`).Rets(`a\b`),
		tt.Args(`\x\`).Rets(`\x\`),
		tt.Args("plain").Rets("plain"),
	})

	must.MkdirAll("src/shline")
	must.Chdir("src/shline")
	tt.Test(t, tt.Fn("expandPrompt", expandPrompt), tt.Table{
		tt.Args(`\w`).Rets("~/src/shline"),
		tt.Args(`[\W]`).Rets("[shline]"),
	})
}

func TestInitialMode(t *testing.T) {
	if initialMode("vi").String() != "vi-insert" || initialMode("emacs").String() != "emacs" {
		t.Errorf("wrong initial modes")
	}
}
