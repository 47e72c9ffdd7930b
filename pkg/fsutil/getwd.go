package fsutil

import (
	"os"
	"strings"

	"src.shline.sh/pkg/env"
)

// Getwd returns path of the working directory in a format suitable as the
// prompt.
func Getwd() string {
	pwd, err := os.Getwd()
	if err != nil {
		return "?"
	}
	return TildeAbbr(pwd)
}

// GetHome returns the home directory of the current user, preferring $HOME.
func GetHome() (string, error) {
	if home := os.Getenv(env.HOME); home != "" {
		return strings.TrimRight(home, "/"), nil
	}
	return os.UserHomeDir()
}

// TildeAbbr abbreviates the user's home directory to ~.
func TildeAbbr(path string) string {
	home, err := GetHome()
	if err != nil || home == "" || home == "/" {
		// If home is "" or "/", do not abbreviate because (1) it is likely a
		// problem with the environment and (2) it will make the path actually
		// longer.
		return path
	}
	if path == home {
		return "~"
	} else if strings.HasPrefix(path, home+"/") {
		return "~" + path[len(home):]
	}
	return path
}

// ExpandTilde expands a leading "~" or "~/" to the home directory. Other
// paths, including "~user", are returned unchanged.
func ExpandTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := GetHome()
	if err != nil {
		return path
	}
	return home + path[1:]
}
