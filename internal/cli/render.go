package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spaceview/pkg/camera"
	"github.com/matzehuels/spaceview/pkg/errors"
	"github.com/matzehuels/spaceview/pkg/geom"
	"github.com/matzehuels/spaceview/pkg/render"
	"github.com/matzehuels/spaceview/pkg/render/nodelink"
	"github.com/matzehuels/spaceview/pkg/render/sink"
	"github.com/matzehuels/spaceview/pkg/sizetree"
	"github.com/matzehuels/spaceview/pkg/viewport"
)

const (
	vizTreemap  = "treemap"  // squarified treemap drawn by the viewport engine
	vizNodeLink = "nodelink" // Graphviz diagram of the top of the tree

	// settleFrames bounds the frames rendered while waiting for the layout
	// to finish expanding.
	settleFrames = 500
)

var (
	validVizTypes = []string{vizTreemap, vizNodeLink}
	validFormats  = []string{"svg", "json", "pdf", "png"}
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file (single format) or base path (multiple)
	vizType  string   // treemap or nodelink
	formats  []string // svg, json, pdf, png
	width    int      // frame width in pixels
	height   int      // frame height in pixels
	theme    string   // color theme of the treemap
	zoomTo   string   // directory to zoom into before drawing
	dimExt   string   // extension left at full opacity
	scale    float64  // PNG scale factor
	detailed bool     // file counts and shares in nodelink labels
	depth    int      // nodelink depth limit
	children int      // nodelink children per directory
	scan     scanFlags
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{
		vizType:  vizTreemap,
		scale:    2.0,
		depth:    nodelink.DefaultMaxDepth,
		children: nodelink.DefaultMaxChildren,
	}

	cmd := &cobra.Command{
		Use:   "render <path|tree.json>",
		Short: "Render a directory as a treemap or node-link diagram",
		Long: `Render a directory as a treemap or node-link diagram.

The argument is a directory, which is scanned (or read from the cache), or a
tree exported with 'scan -o'. The treemap is laid out exactly as the view
command would show it, expanded until every directory large enough to be
opened is open.

PDF and PNG output need rsvg-convert for treemaps.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("width") {
				opts.width = c.cfg.Render.Width
			}
			if !cmd.Flags().Changed("height") {
				opts.height = c.cfg.Render.Height
			}
			if !cmd.Flags().Changed("theme") {
				opts.theme = c.cfg.Render.Theme
			}
			if err := opts.validate(); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	opts.scan.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.vizType, "type", "t", opts.vizType, "visualization type: treemap, nodelink")
	cmd.Flags().StringSliceVarP(&opts.formats, "format", "f", []string{"svg"}, "output format(s): svg, json, pdf, png (comma-separated)")
	cmd.Flags().IntVar(&opts.width, "width", 0, "frame width in pixels (default from config)")
	cmd.Flags().IntVar(&opts.height, "height", 0, "frame height in pixels (default from config)")
	cmd.Flags().StringVar(&opts.theme, "theme", "", "color theme: "+themeNames()+" (default from config)")
	cmd.Flags().StringVar(&opts.zoomTo, "zoom-to", "", "directory to zoom into, relative to the scanned root")
	cmd.Flags().StringVar(&opts.dimExt, "highlight-ext", "", "dim every file without this extension, e.g. .go")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show file counts and shares (nodelink)")
	cmd.Flags().IntVar(&opts.depth, "depth", opts.depth, "directory levels to draw (nodelink)")
	cmd.Flags().IntVar(&opts.children, "children", opts.children, "children drawn per directory (nodelink)")

	return cmd
}

// validate checks the flag values that do not depend on the tree.
func (o *renderOpts) validate() error {
	if err := errors.ValidateFormat(o.vizType, validVizTypes); err != nil {
		return err
	}
	for _, f := range o.formats {
		if err := errors.ValidateFormat(f, validFormats); err != nil {
			return err
		}
	}
	if err := errors.ValidateViewport(o.width, o.height); err != nil {
		return err
	}
	_, err := sink.ParseTheme(o.theme)
	return err
}

func themeNames() string { return strings.Join(sink.Themes, ", ") }

// runRender loads the tree for input and writes every requested format.
func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	if opts.vizType == vizTreemap && !render.Available() &&
		(slices.Contains(opts.formats, "pdf") || slices.Contains(opts.formats, "png")) {
		return errors.New(errors.ErrCodeUnsupported, "treemap pdf and png output need rsvg-convert from librsvg")
	}

	l, err := c.loadTree(ctx, input, &opts.scan)
	if err != nil {
		return err
	}

	tree := c.buildTree(l.snap, &opts.scan)
	logger.Info("Loaded tree", "nodes", tree.Len(), "size", sizetree.FormatSize(tree.Root().Size))

	var frame sink.Frame
	if opts.vizType == vizTreemap {
		frame, err = c.layoutFrame(ctx, tree, opts)
		if err != nil {
			return err
		}
	}

	base := basePath(opts.output, input)
	var written []string
	for _, format := range opts.formats {
		data, err := renderFormat(tree, frame, format, opts)
		if stderrors.Is(err, errSkipFormat) {
			logger.Debug("Skipping unsupported combination", "type", opts.vizType, "format", format)
			continue
		}
		if err != nil {
			return fmt.Errorf("%s/%s: %w", opts.vizType, format, err)
		}

		path := opts.output
		if path == "" || len(opts.formats) > 1 {
			path = base + "." + format
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
		}
		logger.Debug("Generated", "path", path, "bytes", len(data))
		written = append(written, path)
	}

	if len(written) == 0 {
		return errors.New(errors.ErrCodeUnsupported, "%s cannot be rendered as %s", opts.vizType, strings.Join(opts.formats, ", "))
	}
	printSuccess("Rendered %s", StylePath.Render(l.root))
	for _, p := range written {
		printFile(p)
	}
	return nil
}

// layoutFrame runs a headless viewport over tree and returns its settled
// draw list. Camera moves are instant.
func (c *CLI) layoutFrame(ctx context.Context, tree *sizetree.Tree, opts *renderOpts) (sink.Frame, error) {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	vc := c.cfg.ViewportConfig()
	vc.ShowFreeSpace = c.showFreeSpace(&opts.scan)
	w, h := float64(opts.width), float64(opts.height)

	engine := viewport.New(geom.Rect{W: w, H: h},
		viewport.WithLogger(c.Logger.WithPrefix("viewport")),
		viewport.WithConfig(vc),
		viewport.WithCameraOptions(append(c.cfg.CameraOptions(), camera.WithSnapDuration(0))...),
	)
	defer engine.Close()
	engine.Replace(tree)

	if opts.dimExt != "" {
		if err := engine.SetDimFilter(opts.dimExt); err != nil {
			return sink.Frame{}, err
		}
	}
	engine.Settle(settleFrames)
	if opts.zoomTo != "" {
		if err := zoomPath(engine, opts.zoomTo); err != nil {
			return sink.Frame{}, err
		}
	}
	rects := engine.Settle(settleFrames)

	st := engine.Stats()
	prog.done("Layout settled", "rects", len(rects), "expanded", st.Expanded, "frames", st.Frames)
	return sink.Frame{Width: w, Height: h, Rects: rects}, nil
}

// zoomPath zooms the engine into dir one level at a time, letting each
// level expand before the next is looked up. dir is relative to the root
// or an absolute path below it.
func zoomPath(e *viewport.Engine, dir string) error {
	tree := e.Tree()
	if filepath.IsAbs(dir) {
		rel, err := filepath.Rel(tree.Root().Name, dir)
		if err != nil || strings.HasPrefix(rel, "..") {
			return errors.New(errors.ErrCodeInvalidPath, "%s is not below %s", dir, tree.Root().Name)
		}
		dir = rel
	}
	dir = filepath.ToSlash(filepath.Clean(dir))
	if dir == "." {
		return nil
	}

	parts := strings.Split(strings.Trim(dir, "/"), "/")
	for i := range parts {
		prefix := strings.Join(parts[:i+1], "/")
		h, ok := tree.Lookup(prefix)
		if !ok {
			return errors.New(errors.ErrCodeNotFound, "%s not found in %s", prefix, tree.Root().Name)
		}
		if n, _ := tree.Node(h); !n.IsDir {
			return errors.New(errors.ErrCodeInvalidInput, "%s is a file", prefix)
		}
		if !e.ZoomTo(h) {
			return errors.New(errors.ErrCodeInvalidInput, "%s is too small to zoom into", prefix)
		}
		e.Settle(settleFrames)
	}
	return nil
}

// errSkipFormat marks a format the visualization type cannot produce.
var errSkipFormat = stderrors.New("skip unsupported format")

// renderFormat encodes one output format.
func renderFormat(tree *sizetree.Tree, frame sink.Frame, format string, opts *renderOpts) ([]byte, error) {
	if opts.vizType == vizNodeLink {
		return renderNodeLink(tree, format, opts)
	}

	theme, _ := sink.ParseTheme(opts.theme)
	svgOpts := []sink.SVGOption{sink.WithTheme(theme), sink.WithTree(tree)}
	switch format {
	case "svg":
		return sink.RenderSVG(frame, svgOpts...), nil
	case "json":
		return sink.RenderJSON(frame, sink.WithJSONTree(tree), sink.WithJSONTheme(theme))
	case "pdf":
		return sink.RenderPDF(frame, sink.WithPDFSVGOptions(svgOpts...))
	case "png":
		return sink.RenderPNG(frame, sink.WithPNGSVGOptions(svgOpts...), sink.WithScale(opts.scale))
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format: %s", format)
}

// renderNodeLink draws the top of the tree with Graphviz. It has no JSON
// form.
func renderNodeLink(tree *sizetree.Tree, format string, opts *renderOpts) ([]byte, error) {
	dot := nodelink.ToDOT(tree, nodelink.Options{
		MaxDepth:    opts.depth,
		MaxChildren: opts.children,
		Detailed:    opts.detailed,
	})
	switch format {
	case "svg":
		return nodelink.RenderSVG(dot)
	case "pdf":
		return nodelink.RenderPDF(dot)
	case "png":
		return nodelink.RenderPNG(dot, opts.scale)
	case "json":
		return nil, errSkipFormat
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format: %s", format)
}

// basePath derives the output path without extension. Without -o it is the
// input's base name in the working directory; a known format extension on
// -o is stripped.
func basePath(output, input string) string {
	if output == "" {
		name := filepath.Base(filepath.Clean(input))
		if name == string(filepath.Separator) || name == "." {
			name = appName
		}
		return strings.TrimSuffix(name, ".json")
	}
	ext := filepath.Ext(output)
	for _, f := range validFormats {
		if strings.EqualFold(ext, "."+f) {
			return strings.TrimSuffix(output, ext)
		}
	}
	return output
}
