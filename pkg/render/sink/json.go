package sink

import (
	"encoding/json"

	"github.com/matzehuels/spaceview/pkg/sizetree"
	"github.com/matzehuels/spaceview/pkg/viewport"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	tree  *sizetree.Tree
	theme Theme
}

// WithJSONTree adds the name, path and size of each rect's node. Without it
// rects carry only geometry and labels.
func WithJSONTree(st *sizetree.Tree) JSONOption { return func(r *jsonRenderer) { r.tree = st } }

// WithJSONTheme adds the fill color of each rect.
func WithJSONTheme(t Theme) JSONOption { return func(r *jsonRenderer) { r.theme = t } }

type jsonOutput struct {
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Theme  string     `json:"theme,omitempty"`
	Rects  []jsonRect `json:"rects"`
}

type jsonRect struct {
	Kind      string     `json:"kind"`
	X         float64    `json:"x"`
	Y         float64    `json:"y"`
	Width     float64    `json:"width"`
	Height    float64    `json:"height"`
	Clip      [4]float64 `json:"clip"`
	Depth     int        `json:"depth"`
	Dir       bool       `json:"dir,omitempty"`
	Label     string     `json:"label,omitempty"`
	SizeLabel string     `json:"size_label,omitempty"`
	FontSize  float64    `json:"font_size,omitempty"`
	FreeSpace bool       `json:"free_space,omitempty"`
	Dim       bool       `json:"dim,omitempty"`
	Fill      string     `json:"fill,omitempty"`
	Node      *jsonNode  `json:"node,omitempty"`
}

type jsonNode struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Size uint64 `json:"size"`
}

// RenderJSON exports the frame's draw list in paint order as a
// pretty-printed JSON document.
func RenderJSON(f Frame, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Width:  f.Width,
		Height: f.Height,
		Theme:  string(r.theme),
		Rects:  make([]jsonRect, 0, len(f.Rects)),
	}
	for _, d := range f.Rects {
		jr := jsonRect{
			Kind:      d.Kind.String(),
			X:         d.Rect.X,
			Y:         d.Rect.Y,
			Width:     d.Rect.W,
			Height:    d.Rect.H,
			Clip:      [4]float64{d.Clip.X, d.Clip.Y, d.Clip.W, d.Clip.H},
			Depth:     d.Depth,
			Dir:       d.IsDir,
			Label:     d.Label,
			SizeLabel: d.SizeLabel,
			FontSize:  d.FontSize,
			FreeSpace: d.FreeSpace,
			Dim:       d.Dim,
		}
		if r.theme != "" {
			jr.Fill = r.theme.Fill(d).Hex()
		}
		jr.Node = r.node(d)
		out.Rects = append(out.Rects, jr)
	}
	return json.MarshalIndent(out, "", "  ")
}

func (r *jsonRenderer) node(d viewport.DrawRect) *jsonNode {
	if r.tree == nil {
		return nil
	}
	n, ok := r.tree.Node(d.Handle)
	if !ok {
		return nil
	}
	return &jsonNode{Name: n.Name, Path: r.tree.Path(d.Handle), Size: n.Size}
}
