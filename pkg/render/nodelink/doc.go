// Package nodelink renders a size tree as a node-link diagram.
//
// # Overview
//
// Where the treemap packs sizes into nested rectangles, this package draws
// the top of the hierarchy as a left-to-right Graphviz tree. Each node shows
// its name and size. Deep or wide trees are cut at [Options.MaxDepth] and
// [Options.MaxChildren]; folded siblings appear as a single "N more" node.
//
// # Usage
//
//	dot := nodelink.ToDOT(tree, nodelink.Options{MaxDepth: 2})
//	svg, err := nodelink.RenderSVG(dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(dot)
//	png, err := nodelink.RenderPNG(dot, 2.0)  // 2x scale
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
