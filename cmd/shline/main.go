// Shline is an interactive line editor for shell statements. It reads
// statements with emacs- or vi-style editing, history and completion, and
// prints each accepted statement to stdout, so that it can feed a shell or
// any other program that reads statements line by line.
package main

import (
	"os"

	"src.shline.sh/pkg/buildinfo"
	"src.shline.sh/pkg/prog"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		buildinfo.Command))
}
