// Package rc loads the configuration file of shline.
//
// The file is YAML or TOML, chosen by its extension. Settings missing from the
// file keep their defaults.
package rc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"src.shline.sh/pkg/env"
	"src.shline.sh/pkg/errutil"
	"src.shline.sh/pkg/fsutil"
	"src.shline.sh/pkg/keybind"
	"src.shline.sh/pkg/logutil"
	"src.shline.sh/pkg/ui"
)

var logger = logutil.GetLogger("[rc] ")

// ErrUnknownFormat is returned when the extension of a configuration file is
// neither YAML nor TOML.
var ErrUnknownFormat = errors.New("unknown configuration format")

// Duration is a time.Duration written as a string such as "800ms".
type Duration time.Duration

// UnmarshalText parses a duration with time.ParseDuration.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats the duration with time.Duration.String.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config is the content of the configuration file.
type Config struct {
	// "emacs" or "vi".
	Keymap       string   `yaml:"keymap" toml:"keymap"`
	ChordTimeout Duration `yaml:"chord-timeout" toml:"chord-timeout"`
	ReadTimeout  Duration `yaml:"read-timeout" toml:"read-timeout"`
	Prompt       string   `yaml:"prompt" toml:"prompt"`
	Undo         Undo     `yaml:"undo" toml:"undo"`
	History      History  `yaml:"history" toml:"history"`
	// Maps a mode name to a map from key sequences to action names.
	Bindings map[string]map[string]string `yaml:"bindings" toml:"bindings"`
}

// Undo configures the undo stack.
type Undo struct {
	Capacity    int      `yaml:"capacity" toml:"capacity"`
	MergeWindow Duration `yaml:"merge-window" toml:"merge-window"`
}

// History configures the history database.
type History struct {
	// Path of the database. Empty means DefaultHistoryPath.
	DB string `yaml:"db" toml:"db"`
	// Number of commands kept in the database; older ones are trimmed at
	// startup. Zero means no limit.
	MaxSize int `yaml:"max-size" toml:"max-size"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Keymap:       "emacs",
		ChordTimeout: Duration(keybind.DefaultTimeout),
		ReadTimeout:  Duration(100 * time.Millisecond),
		Prompt:       "\\w> ",
		Undo:         Undo{Capacity: 200, MergeWindow: Duration(time.Second)},
		History:      History{MaxSize: 10000},
	}
}

// Path returns the path of the configuration file: $SHLINE_CONFIG if set,
// otherwise config.yaml or config.toml in $XDG_CONFIG_HOME/shline, whichever
// exists, preferring YAML.
func Path() (string, error) {
	if p := os.Getenv(env.SHLINE_CONFIG); p != "" {
		return p, nil
	}
	dir, err := xdgDir(env.XDG_CONFIG_HOME, ".config")
	if err != nil {
		return "", err
	}
	yamlPath := filepath.Join(dir, "config.yaml")
	tomlPath := filepath.Join(dir, "config.toml")
	if _, err := os.Stat(yamlPath); err != nil {
		if _, err := os.Stat(tomlPath); err == nil {
			return tomlPath, nil
		}
	}
	return yamlPath, nil
}

// DefaultHistoryPath returns the default path of the history database:
// $SHLINE_HISTORY if set, otherwise history.db in $XDG_STATE_HOME/shline.
func DefaultHistoryPath() (string, error) {
	if p := os.Getenv(env.SHLINE_HISTORY); p != "" {
		return p, nil
	}
	dir, err := xdgDir(env.XDG_STATE_HOME, filepath.Join(".local", "state"))
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// Returns $name/shline, falling back to ~/fallback/shline.
func xdgDir(name, fallback string) (string, error) {
	if base := os.Getenv(name); base != "" {
		return filepath.Join(base, "shline"), nil
	}
	home, err := fsutil.GetHome()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, fallback, "shline"), nil
}

// Load reads the configuration file at path on top of the defaults. A
// missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("no configuration file", "path", path)
		return cfg, nil
	} else if err != nil {
		return nil, err
	}
	if err := decode(path, data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Info("loaded configuration", "path", path)
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("unknown field %s", undecoded[0])
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

// Validate checks the values of the configuration, reporting all problems.
func (cfg *Config) Validate() error {
	var errs []error
	if cfg.Keymap != "emacs" && cfg.Keymap != "vi" {
		errs = append(errs, fmt.Errorf("keymap must be emacs or vi, got %q", cfg.Keymap))
	}
	if cfg.ChordTimeout < 0 {
		errs = append(errs, errors.New("chord-timeout must not be negative"))
	}
	if cfg.ReadTimeout < 0 {
		errs = append(errs, errors.New("read-timeout must not be negative"))
	}
	if cfg.Undo.Capacity < 0 {
		errs = append(errs, errors.New("undo.capacity must not be negative"))
	}
	if cfg.Undo.MergeWindow < 0 {
		errs = append(errs, errors.New("undo.merge-window must not be negative"))
	}
	if cfg.History.MaxSize < 0 {
		errs = append(errs, errors.New("history.max-size must not be negative"))
	}
	for mode, table := range cfg.Bindings {
		if _, err := keybind.ParseMode(mode); err != nil {
			errs = append(errs, fmt.Errorf("bindings: %w", err))
		}
		for seq := range table {
			if _, err := ui.ParseSeq(seq); err != nil {
				errs = append(errs, fmt.Errorf("bindings.%s: %w", mode, err))
			}
		}
	}
	return errutil.Multi(errs...)
}
