package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version information set at build time via ldflags.
var (
	version = ""
	commit  = ""
	date    = ""
)

// build describes the running binary.
type build struct {
	Version string
	Commit  string
	Date    string
}

// currentBuild resolves the build description. Values set through ldflags
// win over those the go tool stamped into the binary.
func currentBuild() build {
	info, _ := debug.ReadBuildInfo()
	b := resolveBuild(info)
	if version != "" {
		b.Version = version
	}
	if commit != "" {
		b.Commit = commit
	}
	if date != "" {
		b.Date = date
	}
	return b
}

// resolveBuild reads the module version and VCS stamps from info, which may
// be nil.
func resolveBuild(info *debug.BuildInfo) build {
	b := build{Version: "(devel)", Commit: "unknown", Date: "unknown"}
	if info == nil {
		return b
	}
	if v := info.Main.Version; v != "" {
		b.Version = v
	}
	for _, s := range info.Settings {
		if s.Value == "" {
			continue
		}
		switch s.Key {
		case "vcs.revision":
			b.Commit = s.Value
			if len(b.Commit) > 7 {
				b.Commit = b.Commit[:7]
			}
		case "vcs.time":
			b.Date = s.Value
		}
	}
	return b
}

// getVersion returns the version shown by --version and in JSON reports.
func getVersion() string {
	return currentBuild().Version
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, and build date of lorcheck.`,
		Run: func(cmd *cobra.Command, _ []string) {
			b := currentBuild()
			fmt.Fprintf(cmd.OutOrStdout(), "lorcheck version %s\n  commit: %s\n  built:  %s\n",
				b.Version, b.Commit, b.Date)
		},
	}
}
