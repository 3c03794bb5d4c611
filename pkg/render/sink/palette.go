package sink

import (
	"fmt"
	"math"
	"slices"

	"github.com/matzehuels/spaceview/pkg/errors"
	"github.com/matzehuels/spaceview/pkg/viewport"
)

// Theme selects the depth palette.
type Theme string

const (
	ThemeRainbow Theme = "rainbow"
	ThemeNeon    Theme = "neon"
	ThemeOcean   Theme = "ocean"
)

// Themes lists the accepted theme names.
var Themes = []string{string(ThemeRainbow), string(ThemeNeon), string(ThemeOcean)}

// ParseTheme validates a theme name. The empty string selects ThemeRainbow.
func ParseTheme(s string) (Theme, error) {
	if s == "" {
		return ThemeRainbow, nil
	}
	if !slices.Contains(Themes, s) {
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown theme %q (expected one of %v)", s, Themes)
	}
	return Theme(s), nil
}

// RGB is an 8-bit color.
type RGB struct{ R, G, B uint8 }

// Hex formats c as #rrggbb.
func (c RGB) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

func (c RGB) scale(f float64) RGB {
	s := func(v uint8) uint8 { return uint8(float64(v) * f) }
	return RGB{s(c.R), s(c.G), s(c.B)}
}

var (
	// Background is drawn behind the whole frame.
	Background     = RGB{24, 24, 24}
	freeSpaceColor = RGB{60, 140, 60}
)

// goldenAngle spreads consecutive depths around the hue circle.
const goldenAngle = 137.508

// Base returns the palette color for depth.
func (t Theme) Base(depth int) RGB {
	hue := math.Mod(float64(depth)*goldenAngle, 360)
	switch t {
	case ThemeNeon:
		return hsl(hue, 0.95, 0.65)
	case ThemeOcean:
		return hsl(math.Mod(hue+180, 360), 0.60, 0.60)
	default:
		return hsl(hue, 0.75, 0.65)
	}
}

// Header is the darker band color of a directory.
func (t Theme) Header(depth int) RGB { return t.Base(depth).scale(0.80) }

// Body is the dim background of an expanded directory.
func (t Theme) Body(depth int) RGB { return t.Base(depth).scale(0.35) }

// Fill returns the color d is painted with.
func (t Theme) Fill(d viewport.DrawRect) RGB {
	switch {
	case d.FreeSpace:
		return freeSpaceColor
	case d.Kind == viewport.KindBody:
		return t.Body(d.Depth)
	case d.Kind == viewport.KindHeader:
		return t.Header(d.Depth)
	}
	return t.Base(d.Depth)
}

// Fade returns c drawn at dimOpacity over Background, for outputs that
// cannot express opacity.
func Fade(c RGB) RGB {
	mix := func(v, bg uint8) uint8 { return uint8(float64(bg) + (float64(v)-float64(bg))*dimOpacity) }
	return RGB{mix(c.R, Background.R), mix(c.G, Background.G), mix(c.B, Background.B)}
}

// TextColor picks near-black or near-white text for bg.
func TextColor(bg RGB) RGB {
	lum := 0.299*float64(bg.R) + 0.587*float64(bg.G) + 0.114*float64(bg.B)
	if lum > 150 {
		return RGB{20, 20, 20}
	}
	return RGB{235, 235, 235}
}

func hsl(h, s, l float64) RGB {
	c := (1 - math.Abs(2*l-1)) * s
	h2 := h / 60
	x := c * (1 - math.Abs(math.Mod(h2, 2)-1))
	var r, g, b float64
	switch {
	case h2 < 1:
		r, g = c, x
	case h2 < 2:
		r, g = x, c
	case h2 < 3:
		g, b = c, x
	case h2 < 4:
		g, b = x, c
	case h2 < 5:
		r, b = x, c
	default:
		r, b = c, x
	}
	m := l - c/2
	return RGB{uint8((r + m) * 255), uint8((g + m) * 255), uint8((b + m) * 255)}
}
