package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFromBuildInfo(t *testing.T) {
	defer func(v, c, d string) { Version, Commit, Date = v, c, d }(Version, Commit, Date)

	tests := []struct {
		name       string
		version    string
		info       debug.BuildInfo
		wantVer    string
		wantCommit string
	}{
		{
			name:       "module version",
			version:    "dev",
			info:       debug.BuildInfo{Main: debug.Module{Version: "v0.3.0"}},
			wantVer:    "v0.3.0",
			wantCommit: "none",
		},
		{
			name:       "devel build keeps dev",
			version:    "dev",
			info:       debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
			wantVer:    "dev",
			wantCommit: "none",
		},
		{
			name:    "ldflags win",
			version: "v1.0.0",
			info: debug.BuildInfo{
				Main:     debug.Module{Version: "v0.3.0"},
				Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123"}},
			},
			wantVer:    "v1.0.0",
			wantCommit: "abc123",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version, Commit, Date = tt.version, "none", "unknown"
			fromBuildInfo(&tt.info)
			if Version != tt.wantVer {
				t.Errorf("Version = %q, want %q", Version, tt.wantVer)
			}
			if Commit != tt.wantCommit {
				t.Errorf("Commit = %q, want %q", Commit, tt.wantCommit)
			}
		})
	}
}

func TestTemplate(t *testing.T) {
	tmpl := Template()
	if !strings.HasPrefix(tmpl, "{{.Name}} version ") {
		t.Errorf("Template() = %q", tmpl)
	}
	if !strings.Contains(String(), "\ngo: ") {
		t.Errorf("String() should include the Go version: %q", String())
	}
}
