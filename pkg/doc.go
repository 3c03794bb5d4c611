// Package pkg provides the core libraries of SpaceView, a zoomable treemap of
// disk usage.
//
// # Overview
//
// SpaceView scans a directory tree and lays it out as nested, squarified
// rectangles whose areas are proportional to sizes on disk. The layout is
// computed lazily: only directories large enough on screen are expanded, so
// trees with millions of files stay interactive while the camera zooms in and
// out.
//
// # Architecture
//
// The typical data flow:
//
//	Filesystem
//	     ↓
//	[scan] (parallel walk, partial snapshots through a latest-wins mailbox)
//	     ↓
//	[sizetree] (normalized, indexed, read-only size hierarchy)
//	     ↓
//	[viewport] (camera + [lod] expansion + [treemap] layout → draw list)
//	     ↓
//	[render/sink] SVG/JSON/PDF/PNG, or the terminal view of the CLI
//
// # Quick Start
//
// Scan a directory and render the settled treemap to SVG:
//
//	import (
//	    "context"
//
//	    "github.com/matzehuels/spaceview/pkg/geom"
//	    "github.com/matzehuels/spaceview/pkg/render/sink"
//	    "github.com/matzehuels/spaceview/pkg/scan"
//	    "github.com/matzehuels/spaceview/pkg/sizetree"
//	    "github.com/matzehuels/spaceview/pkg/viewport"
//	)
//
//	done, _ := scan.New().Scan(context.Background(), "/home", nil)
//
//	engine := viewport.New(geom.Rect{W: 1600, H: 1000})
//	defer engine.Close()
//	engine.Replace(sizetree.Build(done.Root))
//	rects := engine.Settle(500)
//
//	svg := sink.RenderSVG(sink.Frame{Width: 1600, Height: 1000, Rects: rects})
//
// # Main Packages
//
// ## Layout
//
// [geom] - Points and rectangles in world and screen space.
//
// [treemap] - The squarified layout of one directory level.
//
// [sizetree] - The scanned hierarchy. Nodes are addressed through generation
// tagged handles so a replaced tree cannot be read through a stale handle.
//
// [lod] - Level-of-detail tree: which directories are expanded, their world
// rectangles and the expansion budget per frame.
//
// [camera] - Zoom and pan state with eased snap animations.
//
// [viewport] - The engine tying the above together: frames, hit testing,
// zoom navigation, breadcrumbs and the draw list.
//
// ## Data
//
// [scan] - Concurrent filesystem walker reporting progress and snapshots.
//
// [io] - JSON export and import of scanned trees.
//
// [cache] - File-backed cache of scans keyed by path and scan options.
//
// [config] - The TOML configuration file.
//
// ## Output
//
// [render/sink] - Treemap draw lists as SVG, JSON, PDF and PNG.
//
// [render/nodelink] - Graphviz diagrams of the top levels of a tree.
//
// [render] - SVG to PDF/PNG conversion.
//
// ## Support
//
// [errors] - Coded errors and input validation.
//
// [observability] - Hooks for scan, cache and frame metrics.
//
// [buildinfo] - Version information injected at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/viewport/...  # Specific package
//
// [geom]: https://pkg.go.dev/github.com/matzehuels/spaceview/pkg/geom
// [treemap]: https://pkg.go.dev/github.com/matzehuels/spaceview/pkg/treemap
// [sizetree]: https://pkg.go.dev/github.com/matzehuels/spaceview/pkg/sizetree
// [lod]: https://pkg.go.dev/github.com/matzehuels/spaceview/pkg/lod
// [camera]: https://pkg.go.dev/github.com/matzehuels/spaceview/pkg/camera
// [viewport]: https://pkg.go.dev/github.com/matzehuels/spaceview/pkg/viewport
// [scan]: https://pkg.go.dev/github.com/matzehuels/spaceview/pkg/scan
// [io]: https://pkg.go.dev/github.com/matzehuels/spaceview/pkg/io
// [cache]: https://pkg.go.dev/github.com/matzehuels/spaceview/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/spaceview/pkg/config
// [render]: https://pkg.go.dev/github.com/matzehuels/spaceview/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/spaceview/pkg/render/sink
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/spaceview/pkg/render/nodelink
// [errors]: https://pkg.go.dev/github.com/matzehuels/spaceview/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/spaceview/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/spaceview/pkg/buildinfo
package pkg
