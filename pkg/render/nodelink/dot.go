package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/spaceview/pkg/render"
	"github.com/matzehuels/spaceview/pkg/sizetree"
)

// Defaults for [Options].
const (
	DefaultMaxDepth    = 3
	DefaultMaxChildren = 8
)

// Options configures node-link diagram rendering.
type Options struct {
	// MaxDepth is the deepest level drawn below the root (0 = DefaultMaxDepth).
	MaxDepth int
	// MaxChildren caps the children drawn per directory; the rest are folded
	// into one "N more" node (0 = DefaultMaxChildren).
	MaxChildren int
	// Detailed adds file counts and share of the parent to the labels.
	Detailed bool
}

// ToDOT converts the size hierarchy below the root of st to Graphviz DOT.
// Directories are drawn as rounded boxes, files as plain boxes and the
// free-space entry dashed. The result can be rendered using [RenderSVG],
// [RenderPDF], or [RenderPNG].
func ToDOT(st *sizetree.Tree, opts Options) string {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.MaxChildren <= 0 {
		opts.MaxChildren = DefaultMaxChildren
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	if st != nil && st.Len() > 0 {
		w := dotWriter{buf: &buf, st: st, opts: opts}
		w.node(st.RootHandle(), nil, 0)
		buf.WriteString("\n")
		for _, e := range w.edges {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e[0], e[1])
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

type dotWriter struct {
	buf   *bytes.Buffer
	st    *sizetree.Tree
	opts  Options
	edges [][2]string
}

func nodeID(h sizetree.Handle) string { return "n" + strconv.FormatUint(uint64(h.Index), 10) }

func (w *dotWriter) node(h sizetree.Handle, parent *sizetree.Node, depth int) {
	n, _ := w.st.Node(h)
	id := nodeID(h)
	fmt.Fprintf(w.buf, "  %q [%s];\n", id, strings.Join(fmtAttrs(n, fmtLabel(n, parent, w.opts.Detailed)), ", "))

	if !n.HasChildren() || depth >= w.opts.MaxDepth {
		return
	}
	shown := min(len(n.Children), w.opts.MaxChildren)
	for k := range shown {
		ch, ok := w.st.Child(h, k)
		if !ok {
			break
		}
		w.edges = append(w.edges, [2]string{id, nodeID(ch)})
		w.node(ch, n, depth+1)
	}
	if rest := n.Children[shown:]; len(rest) > 0 {
		var size uint64
		for _, c := range rest {
			size += c.Size
		}
		more := id + "-more"
		label := fmt.Sprintf("%d more\n%s", len(rest), sizetree.FormatSize(size))
		fmt.Fprintf(w.buf, "  %q [label=%q, style=\"filled,dashed\", fillcolor=lightgrey];\n", more, label)
		w.edges = append(w.edges, [2]string{id, more})
	}
}

func fmtLabel(n, parent *sizetree.Node, detailed bool) string {
	label := n.Name + "\n" + sizetree.FormatSize(n.Size)
	if !detailed {
		return label
	}
	var parts []string
	if n.IsDir {
		parts = append(parts, sizetree.FormatCount(n.FileCount)+" files")
	}
	if parent != nil && parent.Size > 0 {
		parts = append(parts, fmt.Sprintf("%.1f%%", 100*float64(n.Size)/float64(parent.Size)))
	}
	if len(parts) == 0 {
		return label
	}
	return label + "\n" + strings.Join(parts, ", ")
}

func fmtAttrs(n *sizetree.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case n.FreeSpace:
		attrs = append(attrs, "style=\"filled,dashed\"", "fillcolor=palegreen")
	case !n.IsDir:
		attrs = append(attrs, "style=filled", "fillcolor=whitesmoke")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-based svg tag with a unitless one
// anchored at the origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
