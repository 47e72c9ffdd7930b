package prog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"src.shline.sh/pkg/cli/term"
	"src.shline.sh/pkg/complete"
	"src.shline.sh/pkg/edit"
	"src.shline.sh/pkg/histutil"
	"src.shline.sh/pkg/keybind"
	"src.shline.sh/pkg/rc"
	"src.shline.sh/pkg/store"
)

// Runs the interactive editor until end of input or a terminating signal.
// The editor is drawn on stderr so that stdout only carries accepted lines.
func runInteractive(ctx context.Context, fds [3]*os.File, f *Flags, cfg *rc.Config, cfgPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	tty, err := term.NewTTY(fds[0], fds[2])
	if err != nil {
		return err
	}
	defer tty.Close()

	keys := keybind.NewManager()
	if err := configureKeys(keys, cfg); err != nil {
		return err
	}

	spec := edit.Spec{
		TTY:             tty,
		Display:         term.NewWriter(fds[2], tty.Width),
		Keys:            keys,
		InitialMode:     initialMode(cfg.Keymap),
		ReadTimeout:     time.Duration(cfg.ReadTimeout),
		UndoCapacity:    cfg.Undo.Capacity,
		UndoMergeWindow: time.Duration(cfg.Undo.MergeWindow),
	}

	sources := []complete.Source{complete.CommandSource(), complete.FileSource()}
	if db, hist := openHistory(f, cfg); hist != nil {
		defer db.Close()
		spec.History = hist
		sources = append(sources, complete.HistorySource(hist), complete.DirSource(db))
		spec.AfterAccept = append(spec.AfterAccept, func(string) {
			if wd, err := os.Getwd(); err == nil {
				if err := db.AddDir(wd, 1); err != nil {
					logger.Warn("failed to add directory to history", "err", err)
				}
			}
		})
	} else {
		mem := histutil.NewMemStore()
		spec.History = mem
		sources = append(sources, complete.HistorySource(mem))
	}
	spec.Completer = complete.New(sources...)

	if w, err := rc.Watch(cfgPath); err != nil {
		logger.Warn("cannot watch configuration file", "path", cfgPath, "err", err)
	} else {
		defer w.Close()
		spec.ConfigChanged = w.Changed()
		spec.Reload = func(m *keybind.Manager) error {
			newCfg, err := rc.Load(cfgPath)
			if err != nil {
				return err
			}
			if err := configureKeys(m, newCfg); err != nil {
				return err
			}
			cfg.Prompt = newCfg.Prompt
			return nil
		}
	}

	ed, err := edit.New(spec)
	if err != nil {
		return err
	}
	for {
		line, err := ed.ReadLine(ctx, expandPrompt(cfg.Prompt))
		switch {
		case errors.Is(err, io.EOF), errors.Is(err, context.Canceled):
			return nil
		case err != nil:
			return err
		}
		if line != "" {
			fmt.Fprintln(fds[1], line)
		}
	}
}

// Rebuilds the binding tables from the defaults and the configuration.
func configureKeys(m *keybind.Manager, cfg *rc.Config) error {
	m.Clear()
	if err := edit.BindDefaults(m); err != nil {
		return err
	}
	if err := edit.ApplyBindings(m, cfg.Bindings); err != nil {
		return err
	}
	m.SetTimeout(time.Duration(cfg.ChordTimeout))
	return nil
}

func initialMode(keymap string) keybind.Mode {
	if keymap == "vi" {
		return keybind.ViInsert
	}
	return keybind.Emacs
}

// Opens the history database. Failing to open it is not fatal; the editor
// then runs with a history that only lasts for the process.
func openHistory(f *Flags, cfg *rc.Config) (store.DBStore, histutil.Store) {
	if f.NoHistory {
		return nil, nil
	}
	path := cfg.History.DB
	if path == "" {
		var err error
		path, err = rc.DefaultHistoryPath()
		if err != nil {
			logger.Warn("history disabled", "err", err)
			return nil, nil
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		logger.Warn("history disabled", "err", err)
		return nil, nil
	}
	db, err := store.NewStore(path)
	if err != nil {
		logger.Warn("history disabled", "err", err)
		return nil, nil
	}
	if cfg.History.MaxSize > 0 {
		if n, err := db.TrimCmds(cfg.History.MaxSize); err != nil {
			logger.Warn("failed to trim history", "err", err)
		} else if n > 0 {
			logger.Info("trimmed history", "removed", n)
		}
	}
	hist, err := histutil.NewDBStore(db)
	if err != nil {
		db.Close()
		logger.Warn("history disabled", "err", err)
		return nil, nil
	}
	return db, hist
}
