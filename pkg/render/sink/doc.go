// Package sink writes viewport frames to output formats.
//
// A "sink" takes the draw list the viewport engine produced for one frame
// and serializes it:
//
//   - SVG: body, header and file rects colored by depth, labels clipped to
//     the visible part of their rect
//   - JSON: the draw list with geometry, labels and flags
//   - PDF and PNG: the SVG converted with rsvg-convert
//
// Colors follow a [Theme]. Consecutive depths are spread around the hue
// circle by the golden angle; directory bodies use a dim variant and headers
// a darker one. The free-space entry is always green and dimmed files are
// drawn translucent.
//
//	rects := engine.Frame(0)
//	f := sink.Frame{Width: 1200, Height: 800, Rects: rects}
//	svg := sink.RenderSVG(f, sink.WithTheme(sink.ThemeOcean), sink.WithTree(engine.Tree()))
//
// PDF and PNG require librsvg:
//   - macOS: brew install librsvg
//   - Linux: apt install librsvg2-bin
package sink
