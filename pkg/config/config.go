// Package config loads the spaceview configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/spaceview/config.toml
// (~/.config/spaceview/config.toml when XDG_CONFIG_HOME is unset). Every key
// is optional; missing keys keep their defaults.
//
//	[viewport]
//	header_px = 16
//	expand_threshold_px = 80
//
//	[camera]
//	snap_ms = 250
//
//	[scan]
//	exclude = ["node_modules", "*.tmp"]
//	show_free_space = true
//
//	[render]
//	width = 1600
//	height = 1000
//	theme = "ocean"
package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/spaceview/pkg/camera"
	"github.com/matzehuels/spaceview/pkg/errors"
	"github.com/matzehuels/spaceview/pkg/lod"
	"github.com/matzehuels/spaceview/pkg/render/sink"
	"github.com/matzehuels/spaceview/pkg/scan"
	"github.com/matzehuels/spaceview/pkg/viewport"
)

const (
	appName  = "spaceview"
	fileName = "config.toml"
)

// Config is the whole configuration file.
type Config struct {
	Viewport Viewport `toml:"viewport"`
	Camera   Camera   `toml:"camera"`
	Scan     Scan     `toml:"scan"`
	Render   Render   `toml:"render"`
}

// Viewport tunes the layout engine. Pixel values are screen pixels.
type Viewport struct {
	HeaderPx            float64 `toml:"header_px"`
	BorderPx            float64 `toml:"border_px"`
	PadPx               float64 `toml:"pad_px"`
	MinScreenPx         float64 `toml:"min_screen_px"`
	ExpandThresholdPx   float64 `toml:"expand_threshold_px"`
	PruneThresholdPx    float64 `toml:"prune_threshold_px"`
	BudgetIdle          int     `toml:"budget_idle"`
	BudgetAnimating     int     `toml:"budget_animating"`
	PruneIntervalFrames int     `toml:"prune_interval_frames"`
}

// Camera tunes navigation.
type Camera struct {
	SnapMs           int     `toml:"snap_ms"`
	ScrollCooldownMs int     `toml:"scroll_cooldown_ms"`
	ScrollSpeed      float64 `toml:"scroll_speed"`
	MaxZoom          float64 `toml:"max_zoom"`
}

// Scan tunes the scanner and its cache.
type Scan struct {
	Exclude       []string `toml:"exclude"`
	ShowFreeSpace bool     `toml:"show_free_space"`
	TopFiles      int      `toml:"top_files"`
	Workers       int      `toml:"workers"`
	CacheTTLHours int      `toml:"cache_ttl_hours"`
}

// Render holds the defaults of the render command.
type Render struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Theme  string `toml:"theme"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Viewport: Viewport{
			HeaderPx:            viewport.HeaderPx,
			BorderPx:            viewport.BorderPx,
			PadPx:               viewport.PadPx,
			MinScreenPx:         lod.MinScreenPx,
			ExpandThresholdPx:   lod.ExpandThresholdPx,
			PruneThresholdPx:    lod.PruneThresholdPx,
			BudgetIdle:          lod.BudgetIdle,
			BudgetAnimating:     lod.BudgetAnimating,
			PruneIntervalFrames: viewport.DefaultPruneInterval,
		},
		Camera: Camera{
			SnapMs:           int(camera.DefaultSnapDuration / time.Millisecond),
			ScrollCooldownMs: int(camera.DefaultScrollCooldown / time.Millisecond),
			ScrollSpeed:      camera.DefaultScrollSpeed,
			MaxZoom:          camera.MaxZoom,
		},
		Scan: Scan{
			ShowFreeSpace: true,
			TopFiles:      scan.DefaultTopFiles,
			CacheTTLHours: 24,
		},
		Render: Render{
			Width:  1600,
			Height: 1000,
			Theme:  string(sink.ThemeRainbow),
		},
	}
}

// Dir returns the configuration directory using the XDG standard
// (~/.config/spaceview/).
func Dir() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// DefaultPath returns the path Load reads when none is given.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Load reads path on top of the defaults. An empty path reads DefaultPath
// and tolerates its absence; an explicit path must exist.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s not found", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "open config %s", path)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return Config{}, errors.Wrap(errors.GetCode(err), err, "%s", path)
	}
	return cfg, nil
}

// Decode reads TOML from r on top of the defaults and validates the result.
// Unknown keys are rejected.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate checks ranges and names. Errors carry the INVALID_CONFIG code.
func (c Config) Validate() error {
	v := c.Viewport
	switch {
	case v.HeaderPx < 0 || v.BorderPx < 0 || v.PadPx < 0:
		return invalid("viewport: header_px, border_px and pad_px must not be negative")
	case v.MinScreenPx < 0:
		return invalid("viewport.min_screen_px must not be negative")
	case v.ExpandThresholdPx <= 0:
		return invalid("viewport.expand_threshold_px must be positive")
	case v.PruneThresholdPx < 0 || v.PruneThresholdPx >= v.ExpandThresholdPx:
		return invalid("viewport.prune_threshold_px must be in [0, expand_threshold_px)")
	case v.BudgetIdle < 1 || v.BudgetAnimating < 1:
		return invalid("viewport: budgets must be at least 1")
	case v.PruneIntervalFrames < 0:
		return invalid("viewport.prune_interval_frames must not be negative")
	}

	cam := c.Camera
	switch {
	case cam.SnapMs < 0 || cam.ScrollCooldownMs < 0:
		return invalid("camera: durations must not be negative")
	case cam.ScrollSpeed <= 0:
		return invalid("camera.scroll_speed must be positive")
	case cam.MaxZoom <= camera.MinZoom || cam.MaxZoom > camera.MaxZoom:
		return invalid("camera.max_zoom must be in (%g, %g]", camera.MinZoom, camera.MaxZoom)
	}

	if c.Scan.TopFiles < 0 || c.Scan.Workers < 0 || c.Scan.CacheTTLHours < 0 {
		return invalid("scan: top_files, workers and cache_ttl_hours must not be negative")
	}

	if err := errors.ValidateViewport(c.Render.Width, c.Render.Height); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "render")
	}
	if _, err := sink.ParseTheme(c.Render.Theme); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "render.theme")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidConfig, format, args...)
}

// ViewportConfig converts the [viewport] and [scan] sections to engine
// tunables.
func (c Config) ViewportConfig() viewport.Config {
	v := c.Viewport
	vc := viewport.DefaultConfig()
	vc.Geometry.HeaderPx = v.HeaderPx
	vc.Geometry.BorderPx = v.BorderPx
	vc.Geometry.PadPx = v.PadPx
	vc.ExpandPx = v.ExpandThresholdPx
	vc.PrunePx = v.PruneThresholdPx
	vc.MinScreenPx = v.MinScreenPx
	vc.BudgetIdle = v.BudgetIdle
	vc.BudgetAnimating = v.BudgetAnimating
	vc.PruneInterval = v.PruneIntervalFrames
	vc.ShowFreeSpace = c.Scan.ShowFreeSpace
	return vc
}

// CameraOptions converts the [camera] section.
func (c Config) CameraOptions() []camera.Option {
	return []camera.Option{
		camera.WithSnapDuration(time.Duration(c.Camera.SnapMs) * time.Millisecond),
		camera.WithScrollCooldown(time.Duration(c.Camera.ScrollCooldownMs) * time.Millisecond),
		camera.WithScrollSpeed(c.Camera.ScrollSpeed),
		camera.WithMaxZoom(c.Camera.MaxZoom),
	}
}

// ScanOptions converts the [scan] section. Workers of zero keeps the
// scanner's default.
func (c Config) ScanOptions() []scan.Option {
	opts := []scan.Option{
		scan.WithExclude(c.Scan.Exclude...),
		scan.WithFreeSpace(c.Scan.ShowFreeSpace),
		scan.WithTopFiles(c.Scan.TopFiles),
	}
	if c.Scan.Workers > 0 {
		opts = append(opts, scan.WithWorkers(c.Scan.Workers))
	}
	return opts
}

// CacheTTL returns the scan cache lifetime.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Scan.CacheTTLHours) * time.Hour
}

// Theme returns the validated render theme.
func (c Config) Theme() sink.Theme {
	t, err := sink.ParseTheme(c.Render.Theme)
	if err != nil {
		return sink.ThemeRainbow
	}
	return t
}
