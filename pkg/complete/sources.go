package complete

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"src.shline.sh/pkg/fsutil"
	"src.shline.sh/pkg/histutil"
	"src.shline.sh/pkg/store/storedefs"
)

// Shell keywords offered in command position.
var keywords = []string{
	"case", "do", "done", "elif", "else", "esac", "fi", "for", "function",
	"if", "in", "select", "then", "time", "until", "while",
}

// CommandSource offers external commands on $PATH and shell keywords in
// command position. A seed that contains a slash is left to FileSource.
func CommandSource() Source {
	return SourceFunc(func(ctx Context) ([]string, error) {
		if !ctx.Command || fsutil.DontSearch(ctx.Seed) {
			return nil, nil
		}
		cands := append([]string(nil), keywords...)
		fsutil.EachExternal(func(name string) {
			cands = append(cands, name)
		})
		return cands, nil
	})
}

// Maximum number of recent commands scanned by HistorySource.
const historyScanLimit = 1000

// HistorySource offers the words of recent commands. In command position it
// offers only the first word of each command.
func HistorySource(store histutil.Store) Source {
	return SourceFunc(func(ctx Context) ([]string, error) {
		if ctx.Seed == "" {
			return nil, nil
		}
		cmds, err := store.AllCmds()
		if err != nil {
			return nil, fmt.Errorf("history: %w", err)
		}
		if len(cmds) > historyScanLimit {
			cmds = cmds[len(cmds)-historyScanLimit:]
		}
		var cands []string
		for i := len(cmds) - 1; i >= 0; i-- {
			words := strings.Fields(cmds[i].Text)
			if ctx.Command && len(words) > 0 {
				words = words[:1]
			}
			cands = append(cands, words...)
		}
		return cands, nil
	})
}

// FileSource offers file names relative to the directory part of the seed.
// Dot files are offered iff the file part of the seed starts with a dot.
// Directories carry a trailing slash. In command position only directories
// and executable files are offered, and only when the seed names a path.
func FileSource() Source {
	return SourceFunc(func(ctx Context) ([]string, error) {
		if ctx.Command && !strings.ContainsRune(ctx.Seed, '/') {
			return nil, nil
		}
		return fileNames(ctx.Seed, ctx.Command)
	})
}

func fileNames(seed string, onlyExecutable bool) ([]string, error) {
	dir, fileprefix := filepath.Split(seed)
	dirToRead := fsutil.ExpandTilde(dir)
	if dirToRead == "" {
		dirToRead = "."
	}
	files, err := os.ReadDir(dirToRead)
	if err != nil {
		return nil, fmt.Errorf("cannot list directory %s: %w", dirToRead, err)
	}
	var cands []string
	for _, file := range files {
		name := file.Name()
		if dotfile(fileprefix) != dotfile(name) {
			continue
		}
		// Follow symlinks so that a link to a directory completes as one.
		stat, err := os.Stat(filepath.Join(dirToRead, name))
		if err != nil {
			continue
		}
		if stat.IsDir() {
			cands = append(cands, dir+name+"/")
		} else if !onlyExecutable || fsutil.IsExecutable(stat) {
			cands = append(cands, dir+name)
		}
	}
	return cands, nil
}

func dotfile(fname string) bool {
	return strings.HasPrefix(fname, ".")
}

// DirSource offers directories from the directory history as arguments of
// cd, abbreviating the home directory as ~.
func DirSource(store storedefs.Store) Source {
	return SourceFunc(func(ctx Context) ([]string, error) {
		if len(ctx.Words) != 1 || ctx.Words[0] != "cd" {
			return nil, nil
		}
		blacklist := storedefs.NoBlacklist
		if wd, err := os.Getwd(); err == nil {
			blacklist = map[string]struct{}{wd: {}}
		}
		dirs, err := store.Dirs(blacklist)
		if err != nil {
			return nil, fmt.Errorf("directory history: %w", err)
		}
		cands := make([]string, 0, len(dirs))
		for _, d := range dirs {
			path := d.Path
			if strings.HasPrefix(ctx.Seed, "~") {
				path = fsutil.TildeAbbr(path)
			}
			cands = append(cands, path+"/")
		}
		return cands, nil
	})
}
