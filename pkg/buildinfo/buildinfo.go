// Package buildinfo contains build information.
//
// Build information should be set during compilation by passing
// -ldflags "-X src.shline.sh/pkg/buildinfo.Var=value" to "go build" or
// "go install".
package buildinfo

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// VersionBase identifies the version of shline. On development commits, it
// identifies the next release.
const VersionBase = "0.1.0"

// VCSOverride may be set during compilation to "time-commit" (e.g.
// "20220401235958-123456789012") for commits built outside of a module
// checkout, such as from a source tarball.
var VCSOverride string

// Reproducible identifies whether the build is reproducible. It may be set to
// "true" during compilation.
var Reproducible = "false"

// Type contains all the build information fields.
type Type struct {
	Version      string `json:"version"`
	Reproducible bool   `json:"reproducible"`
	GoVersion    string `json:"goversion"`
}

// Value contains all the build information.
var Value = Type{
	Version:      addVariant(devVersion(VersionBase, VCSOverride, debug.ReadBuildInfo)),
	Reproducible: Reproducible == "true",
	GoVersion:    runtime.Version(),
}

// BuildVariant may be set during compilation to identify a patched build. It
// is appended to the version with a "+".
var BuildVariant string

func addVariant(version string) string {
	if BuildVariant == "" {
		return version
	}
	return version + "+" + BuildVariant
}

func devVersion(next, vcsOverride string, readBuildInfo func() (*debug.BuildInfo, bool)) string {
	if vcsOverride != "" {
		return next + "-dev.0." + vcsOverride
	}
	fallback := next + "-dev.unknown"
	bi, ok := readBuildInfo()
	if !ok {
		return fallback
	}
	// Modules built with "go install pkg@version" carry their version.
	if v := bi.Main.Version; v != "" && v != "(devel)" {
		return strings.TrimPrefix(v, "v")
	}
	var revision, timestamp string
	modified := false
	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.time":
			timestamp = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}
	if revision == "" {
		return fallback
	}
	t, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return fallback
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	version := next + "-dev.0." + t.UTC().Format("20060102150405") + "-" + revision
	if modified {
		version += "-dirty"
	}
	return version
}

// Command returns the "version" subcommand, which prints Value.
func Command(fds [3]*os.File) *cobra.Command {
	var jsonOutput, all bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version of shline",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			out := fds[1]
			switch {
			case jsonOutput && all:
				return printJSON(out, Value)
			case jsonOutput:
				return printJSON(out, Value.Version)
			case all:
				fmt.Fprintln(out, "Version:", Value.Version)
				fmt.Fprintln(out, "Go version:", Value.GoVersion)
				fmt.Fprintln(out, "Reproducible build:", Value.Reproducible)
			default:
				fmt.Fprintln(out, Value.Version)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the output as JSON")
	cmd.Flags().BoolVar(&all, "all", false, "print all build information")
	return cmd
}

func printJSON(out *os.File, v any) error {
	return json.NewEncoder(out).Encode(v)
}
