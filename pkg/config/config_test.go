package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/spaceview/pkg/errors"
	"github.com/matzehuels/spaceview/pkg/render/sink"
	"github.com/matzehuels/spaceview/pkg/viewport"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	vc := Default().ViewportConfig()
	want := viewport.DefaultConfig()
	if vc != want {
		t.Errorf("ViewportConfig() = %+v, want %+v", vc, want)
	}
}

func TestDecode(t *testing.T) {
	src := `
[viewport]
header_px = 20
expand_threshold_px = 120

[camera]
snap_ms = 0

[scan]
exclude = ["node_modules", "*.tmp"]
show_free_space = false

[render]
theme = "ocean"
`
	cfg, err := Decode(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if cfg.Viewport.HeaderPx != 20 || cfg.Viewport.ExpandThresholdPx != 120 {
		t.Errorf("viewport = %+v", cfg.Viewport)
	}
	if cfg.Viewport.PadPx != viewport.PadPx {
		t.Errorf("unset keys should keep defaults, pad_px = %v", cfg.Viewport.PadPx)
	}
	if cfg.Camera.SnapMs != 0 {
		t.Errorf("snap_ms = %d", cfg.Camera.SnapMs)
	}
	if len(cfg.Scan.Exclude) != 2 || cfg.Scan.ShowFreeSpace {
		t.Errorf("scan = %+v", cfg.Scan)
	}
	if cfg.Theme() != sink.ThemeOcean {
		t.Errorf("Theme() = %q", cfg.Theme())
	}

	vc := cfg.ViewportConfig()
	if vc.Geometry.HeaderPx != 20 || vc.ExpandPx != 120 || vc.ShowFreeSpace {
		t.Errorf("ViewportConfig() = %+v", vc)
	}
	if n := len(cfg.ScanOptions()); n != 3 {
		t.Errorf("ScanOptions() has %d options, want 3", n)
	}
	if cfg.CacheTTL() != 24*time.Hour {
		t.Errorf("CacheTTL() = %v", cfg.CacheTTL())
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", "[viewport\n"},
		{"unknown key", "[viewport]\nheader = 3\n"},
		{"unknown section", "[colors]\nx = 1\n"},
		{"wrong type", "[render]\nwidth = \"wide\"\n"},
		{"negative header", "[viewport]\nheader_px = -1\n"},
		{"prune above expand", "[viewport]\nprune_threshold_px = 100\n"},
		{"zero budget", "[viewport]\nbudget_idle = 0\n"},
		{"max zoom too low", "[camera]\nmax_zoom = 1\n"},
		{"zero scroll speed", "[camera]\nscroll_speed = 0\n"},
		{"negative workers", "[scan]\nworkers = -2\n"},
		{"zero width", "[render]\nwidth = 0\n"},
		{"bad theme", "[render]\ntheme = \"sepia\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.src))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("code = %v, want %v (%v)", errors.GetCode(err), errors.ErrCodeInvalidConfig, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() without a file: %v", err)
	}
	if cfg.Render.Width != Default().Render.Width {
		t.Error("missing default file should give defaults")
	}

	path, _ := DefaultPath()
	if !strings.HasSuffix(path, filepath.Join("spaceview", "config.toml")) {
		t.Errorf("DefaultPath() = %s", path)
	}
	os.MkdirAll(filepath.Dir(path), 0o755)
	os.WriteFile(path, []byte("[render]\nwidth = 800\n"), 0o644)
	cfg, err = Load("")
	if err != nil || cfg.Render.Width != 800 {
		t.Errorf("Load() = %d, %v", cfg.Render.Width, err)
	}

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("explicit missing file: %v", err)
	}

	bad := filepath.Join(t.TempDir(), "bad.toml")
	os.WriteFile(bad, []byte("[render]\ntheme = \"sepia\"\n"), 0o644)
	if _, err := Load(bad); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("invalid file: %v", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Scan.Exclude = []string{".git"}
	cfg.Render.Theme = "neon"

	var buf bytes.Buffer
	if err := cfg.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode(Encode()) error: %v\n%s", err, buf.String())
	}
	if got.Render.Theme != "neon" || len(got.Scan.Exclude) != 1 || got.Viewport != cfg.Viewport {
		t.Errorf("round trip lost values: %+v", got)
	}
}
