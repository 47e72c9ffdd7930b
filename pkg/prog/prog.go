// Package prog provides the entry point to shline.
//
// With a terminal on stdin, shline edits lines interactively and prints each
// accepted statement to stdout. Otherwise it splits stdin into complete
// statements and prints one per line.
package prog

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"src.shline.sh/pkg/logutil"
	"src.shline.sh/pkg/rc"
	"src.shline.sh/pkg/sys"
)

var logger = logutil.GetLogger("[prog] ")

// Flags keeps command-line flags.
type Flags struct {
	Config   string
	Log      string
	LogLevel string
	Keymap   string
	DB       string

	NoHistory bool
}

// Subcommand builds an additional subcommand that uses the given files as
// stdin, stdout and stderr.
type Subcommand func(fds [3]*os.File) *cobra.Command

// Run parses command-line flags and runs shline or one of its subcommands. It
// returns the exit status of the program.
func Run(fds [3]*os.File, args []string, subcommands ...Subcommand) int {
	root := newRootCommand(fds, &Flags{})
	for _, sub := range subcommands {
		root.AddCommand(sub(fds))
	}
	root.SetArgs(args[1:])

	cmd, err := root.ExecuteC()
	if err == nil {
		return 0
	}
	if msg := err.Error(); msg != "" {
		fmt.Fprintln(fds[2], msg)
	}
	var badUsage badUsageError
	var exit exitError
	switch {
	case errors.As(err, &badUsage):
		fmt.Fprint(fds[2], cmd.UsageString())
	case errors.As(err, &exit):
		return exit.exit
	}
	return 2
}

func newRootCommand(fds [3]*os.File, f *Flags) *cobra.Command {
	root := &cobra.Command{
		Use:   "shline",
		Short: "Interactive line editor for shell statements",
		Long: "shline reads shell statements with an interactive line editor and prints\n" +
			"each accepted statement. When stdin is not a terminal, it splits stdin\n" +
			"into complete statements instead.",
		Args:          noArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return f.setupLogging()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !sys.IsATTY(fds[0].Fd()) {
				return runBatch(fds[0], fds[1])
			}
			cfg, path, err := f.loadConfig()
			if err != nil {
				return err
			}
			return runInteractive(cmd.Context(), fds, f, cfg, path)
		},
	}
	root.SetIn(fds[0])
	root.SetOut(fds[1])
	root.SetErr(fds[2])
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return BadUsage(err.Error())
	})

	fs := root.PersistentFlags()
	fs.StringVar(&f.Config, "config", "", "path to the configuration file")
	fs.StringVar(&f.Log, "log", "", "a file to write the debug log to")
	fs.StringVar(&f.LogLevel, "log-level", "", "minimum level of logged messages (debug, info, warn, error)")
	fs.StringVar(&f.Keymap, "keymap", "", "keymap to start in (emacs or vi), overriding the configuration")
	fs.StringVar(&f.DB, "db", "", "path to the history database, overriding the configuration")
	fs.BoolVar(&f.NoHistory, "no-history", false, "neither read nor save history")

	root.AddCommand(newBindingsCommand(fds, f))
	return root
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return BadUsage(fmt.Sprintf("unexpected argument %q for %q", args[0], cmd.CommandPath()))
	}
	return nil
}

func (f *Flags) setupLogging() error {
	if f.Log != "" {
		if err := logutil.SetOutputFile(f.Log); err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
	}
	if f.LogLevel != "" {
		if err := logutil.SetLevel(f.LogLevel); err != nil {
			return BadUsage(fmt.Sprintf("invalid log level %q", f.LogLevel))
		}
	}
	return nil
}

// Loads the configuration and applies the flags that override it. It also
// returns the path of the configuration file.
func (f *Flags) loadConfig() (*rc.Config, string, error) {
	path := f.Config
	if path == "" {
		var err error
		path, err = rc.Path()
		if err != nil {
			return nil, "", err
		}
	}
	cfg, err := rc.Load(path)
	if err != nil {
		return nil, "", err
	}
	if f.Keymap != "" {
		if f.Keymap != "emacs" && f.Keymap != "vi" {
			return nil, "", BadUsage(fmt.Sprintf("invalid keymap %q, want emacs or vi", f.Keymap))
		}
		cfg.Keymap = f.Keymap
	}
	if f.DB != "" {
		cfg.History.DB = f.DB
	}
	return cfg, path, nil
}

// BadUsage returns a special error that may be returned by a command. It
// causes Run to print out a message, the usage information and exit with 2.
func BadUsage(msg string) error { return badUsageError{msg} }

type badUsageError struct{ msg string }

func (e badUsageError) Error() string { return e.msg }

// Exit returns a special error that may be returned by a command. It causes
// Run to exit with the given code without printing any error messages.
// Exit(0) returns nil.
func Exit(exit int) error {
	if exit == 0 {
		return nil
	}
	return exitError{exit}
}

type exitError struct{ exit int }

func (e exitError) Error() string { return "" }
