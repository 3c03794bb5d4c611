package sink

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/spaceview/pkg/sizetree"
	"github.com/matzehuels/spaceview/pkg/viewport"
)

// Stroke and text insets, in pixels.
const (
	strokeWidth = 0.5
	textInset   = 4.0
	dimOpacity  = 0.25
)

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	theme Theme
	tree  *sizetree.Tree
}

// WithTheme selects the depth palette.
func WithTheme(t Theme) SVGOption { return func(r *svgRenderer) { r.theme = t } }

// WithTree adds a tooltip with the full path and size to every rect. The
// tree must be the one the frame was rendered from.
func WithTree(st *sizetree.Tree) SVGOption { return func(r *svgRenderer) { r.tree = st } }

// RenderSVG draws f as a standalone SVG document. Labels are clipped to the
// visible part of their rect.
func RenderSVG(f Frame, opts ...SVGOption) []byte {
	r := svgRenderer{theme: ThemeRainbow}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		f.Width, f.Height, f.Width, f.Height)
	fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%.1f" height="%.1f" fill="%s"/>`+"\n", f.Width, f.Height, Background.Hex())

	for i, d := range f.Rects {
		r.rect(&buf, i, d)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) rect(buf *bytes.Buffer, i int, d viewport.DrawRect) {
	fill := r.theme.Fill(d)
	attrs := fmt.Sprintf(`fill="%s"`, fill.Hex())
	if d.Kind == viewport.KindFile {
		attrs += fmt.Sprintf(` stroke="%s" stroke-width="%.1f"`, fill.scale(0.6).Hex(), strokeWidth)
	}
	if d.Dim {
		attrs += fmt.Sprintf(` opacity="%.2f"`, dimOpacity)
	}

	fmt.Fprintf(buf, `  <rect class="%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f" %s>`,
		d.Kind, d.Rect.X, d.Rect.Y, d.Rect.W, d.Rect.H, attrs)
	if title := r.title(d); title != "" {
		fmt.Fprintf(buf, "<title>%s</title>", EscapeXML(title))
	}
	buf.WriteString("</rect>\n")

	if d.Label == "" && d.SizeLabel == "" {
		return
	}
	r.text(buf, i, d, TextColor(fill))
}

func (r *svgRenderer) title(d viewport.DrawRect) string {
	if r.tree == nil || d.Kind == viewport.KindBody {
		return ""
	}
	n, ok := r.tree.Node(d.Handle)
	if !ok {
		return ""
	}
	return r.tree.Path(d.Handle) + " (" + sizetree.FormatSize(n.Size) + ")"
}

func (r *svgRenderer) text(buf *bytes.Buffer, i int, d viewport.DrawRect, color RGB) {
	id := fmt.Sprintf("clip-%d", i)
	fmt.Fprintf(buf, `  <clipPath id="%s"><rect x="%.2f" y="%.2f" width="%.2f" height="%.2f"/></clipPath>`+"\n",
		id, d.Clip.X, d.Clip.Y, d.Clip.W, d.Clip.H)
	fmt.Fprintf(buf, `  <g clip-path="url(#%s)" font-family="sans-serif" font-size="%.1f" fill="%s">`+"\n",
		id, d.FontSize, color.Hex())

	x := d.Rect.X + textInset
	if d.Kind == viewport.KindHeader {
		y := d.Rect.Y + d.Rect.H/2 + d.FontSize*0.35
		if d.Label != "" {
			fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" font-weight="bold">%s</text>`+"\n", x, y, EscapeXML(d.Label))
		}
		if d.SizeLabel != "" {
			fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" text-anchor="end">%s</text>`+"\n",
				d.Rect.MaxX()-textInset, y, EscapeXML(d.SizeLabel))
		}
	} else {
		y := d.Rect.Y + textInset + d.FontSize
		if d.Label != "" {
			fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f">%s</text>`+"\n", x, y, EscapeXML(d.Label))
		}
		if d.SizeLabel != "" {
			fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" opacity="0.8">%s</text>`+"\n",
				x, y+d.FontSize+2, EscapeXML(d.SizeLabel))
		}
	}
	buf.WriteString("  </g>\n")
}
