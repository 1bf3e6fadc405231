// Package version holds build metadata injected at link time:
//
//	go build -ldflags "-X git.home.luguber.info/inful/docnav/internal/version.Version=v0.3.0"
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is the release version. Without ldflags it falls back to the main
// module version recorded by the Go toolchain.
var Version = "unknown"

// Build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func init() {
	if Version != "unknown" {
		return
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		Version = bi.Main.Version
	}
}

// Info is the build metadata as a value, used for JSON output.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// Get returns the build metadata.
func Get() Info {
	return Info{Version: Version, GitCommit: GitCommit, BuildTime: BuildTime, GoVersion: runtime.Version()}
}

// String renders the metadata on one line.
func (i Info) String() string {
	return fmt.Sprintf("docnav %s (commit %s, built %s, %s)", i.Version, i.GitCommit, i.BuildTime, i.GoVersion)
}
