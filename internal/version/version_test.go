package version

import (
	"runtime/debug"
	"testing"
)

func TestReadBuildInfo(t *testing.T) {
	origVersion, origCommit := Version, Commit
	t.Cleanup(func() { Version, Commit = origVersion, origCommit })

	tests := []struct {
		name        string
		info        *debug.BuildInfo
		wantVersion string
		wantCommit  string
	}{
		{
			name: "tagged module with clean tree",
			info: &debug.BuildInfo{
				Main: debug.Module{Version: "v0.3.0"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "0123456789abcdef"},
					{Key: "vcs.modified", Value: "false"},
				},
			},
			wantVersion: "v0.3.0",
			wantCommit:  "0123456",
		},
		{
			name: "devel build with dirty tree",
			info: &debug.BuildInfo{
				Main: debug.Module{Version: "(devel)"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "abc"},
					{Key: "vcs.modified", Value: "true"},
				},
			},
			wantVersion: "",
			wantCommit:  "abc-dirty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version, Commit = "", ""
			readBuildInfo(func() (*debug.BuildInfo, bool) { return tt.info, true })

			if Version != tt.wantVersion {
				t.Errorf("Version = %q, want %q", Version, tt.wantVersion)
			}
			if Commit != tt.wantCommit {
				t.Errorf("Commit = %q, want %q", Commit, tt.wantCommit)
			}
		})
	}
}

func TestUserAgent(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })

	Version = "v1.2.3"
	if got := UserAgent(); got != "homedash/v1.2.3" {
		t.Errorf("UserAgent() = %q, want homedash/v1.2.3", got)
	}
}
