package prog

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"src.shline.sh/pkg/env"
	"src.shline.sh/pkg/fsutil"
)

// Expands the escapes of a prompt template:
//
//   - \w is the working directory, with the home directory abbreviated as ~;
//   - \W is the last element of the working directory;
//   - \u is the user name;
//   - \h is the host name up to the first dot;
//   - \$ is # for root and $ otherwise;
//   - \\ is a backslash.
//
// Other escapes are kept as is.
func expandPrompt(tmpl string) string {
	var sb strings.Builder
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '\\' || i+1 == len(tmpl) {
			sb.WriteByte(tmpl[i])
			continue
		}
		i++
		switch tmpl[i] {
		case 'w':
			sb.WriteString(fsutil.Getwd())
		case 'W':
			wd := fsutil.Getwd()
			if wd != "~" && wd != "/" {
				wd = filepath.Base(wd)
			}
			sb.WriteString(wd)
		case 'u':
			sb.WriteString(username())
		case 'h':
			host, _ := os.Hostname()
			host, _, _ = strings.Cut(host, ".")
			sb.WriteString(host)
		case '$':
			if os.Geteuid() == 0 {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('$')
			}
		case '\\':
			sb.WriteByte('\\')
		default:
			sb.WriteByte('\\')
			sb.WriteByte(tmpl[i])
		}
	}
	return sb.String()
}

func username() string {
	if name := os.Getenv(env.USER); name != "" {
		return name
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return "?"
}
