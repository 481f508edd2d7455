// Package version exposes build metadata for the homedash binaries.
package version

import (
	"fmt"
	"runtime/debug"
)

// These variables can be set at build time via ldflags:
//
//	go build -ldflags="-X github.com/muurk/homedash/internal/version.Version=v0.3.0 \
//	                   -X github.com/muurk/homedash/internal/version.Commit=abc1234"
//
// Otherwise they are filled from the module's VCS stamp, falling back to "dev".
var (
	// Version is the semantic version of the application
	Version = ""
	// Commit is the short git commit hash
	Commit = ""
)

func init() {
	if Version == "" || Commit == "" {
		readBuildInfo(debug.ReadBuildInfo)
	}
	if Version == "" {
		Version = "dev"
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

// readBuildInfo fills Version/Commit from the VCS settings embedded by the Go
// toolchain. The reader is injected so tests can feed synthetic build info.
func readBuildInfo(read func() (*debug.BuildInfo, bool)) {
	info, ok := read()
	if !ok || info == nil {
		return
	}

	if Version == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}

	if Commit == "" && revision != "" {
		if len(revision) > 7 {
			revision = revision[:7]
		}
		Commit = revision
		if dirty {
			Commit += "-dirty"
		}
	}
}

// Full returns the version string including the commit
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// UserAgent is the User-Agent header sent to the controller backend.
func UserAgent() string {
	return "homedash/" + Version
}
