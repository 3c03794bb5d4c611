package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestCacheDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		name string
		xdg  string
		want string
	}{
		{"default", "", filepath.Join(home, ".cache", appName)},
		{"xdg", "/tmp/custom-cache", filepath.Join("/tmp/custom-cache", appName)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CACHE_HOME", tt.xdg)
			dir, err := cacheDir()
			if err != nil {
				t.Fatalf("cacheDir() error: %v", err)
			}
			if dir != tt.want {
				t.Errorf("cacheDir() = %q, want %q", dir, tt.want)
			}
		})
	}
}

func TestNewCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	if _, _, err := newCache(false).Get(t.Context(), "scan:missing"); err != nil {
		t.Errorf("file cache Get: %v", err)
	}

	_, ok, err := newCache(true).Get(t.Context(), "scan:missing")
	if ok || err != nil {
		t.Errorf("null cache Get = %v, %v", ok, err)
	}
}

func TestConfigFile(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	c := New(io.Discard, LogInfo)
	path, err := c.configFile()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(xdg, appName); filepath.Dir(path) != want {
		t.Errorf("configFile() = %q, want a file in %q", path, want)
	}

	c.configPath = "/etc/spaceview.toml"
	if path, _ := c.configFile(); path != "/etc/spaceview.toml" {
		t.Errorf("explicit configFile() = %q", path)
	}
}
