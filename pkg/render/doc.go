// Package render turns viewport frames into files.
//
// # Overview
//
// The viewport engine produces a flat, ordered list of draw rectangles for
// each frame. This package and its subpackages serialize such a frame or the
// underlying size tree:
//
//   - Generic format conversion (SVG to PDF/PNG)
//   - Treemap frames as SVG, JSON, PNG or PDF (in [sink] subpackage)
//   - The size hierarchy as a node-link diagram (in [nodelink] subpackage)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). Both sinks use them.
//
//	svg := sink.RenderSVG(frame, sink.WithTheme(sink.ThemeOcean))
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// When rsvg-convert is missing, the error carries the UNSUPPORTED code.
//
// [sink]: github.com/matzehuels/spaceview/pkg/render/sink
// [nodelink]: github.com/matzehuels/spaceview/pkg/render/nodelink
package render
