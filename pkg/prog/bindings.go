package prog

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"src.shline.sh/pkg/keybind"
)

func newBindingsCommand(fds [3]*os.File, f *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "bindings [mode]",
		Short: "Print the key bindings of a mode",
		Long: "Print the key bindings of a mode (emacs, vi-insert or vi-command), with\n" +
			"the configuration applied. The mode defaults to the one the configured\n" +
			"keymap starts in.",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return BadUsage(fmt.Sprintf("%q takes at most one argument", cmd.CommandPath()))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := f.loadConfig()
			if err != nil {
				return err
			}
			mode := initialMode(cfg.Keymap)
			if len(args) == 1 {
				mode, err = keybind.ParseMode(args[0])
				if err != nil {
					return BadUsage(err.Error())
				}
			}
			keys := keybind.NewManager()
			if err := configureKeys(keys, cfg); err != nil {
				return err
			}
			w := tabwriter.NewWriter(fds[1], 0, 8, 2, ' ', 0)
			for _, b := range keys.Bindings(mode) {
				fmt.Fprintf(w, "%s\t%s\n", b.Seq, b.Name)
			}
			return w.Flush()
		},
	}
}
