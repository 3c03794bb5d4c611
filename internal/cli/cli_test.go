package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spaceview/pkg/camera"
	"github.com/matzehuels/spaceview/pkg/config"
	"github.com/matzehuels/spaceview/pkg/errors"
	"github.com/matzehuels/spaceview/pkg/geom"
	svio "github.com/matzehuels/spaceview/pkg/io"
	"github.com/matzehuels/spaceview/pkg/sizetree"
	"github.com/matzehuels/spaceview/pkg/viewport"
)

func dir(name string, children ...*sizetree.Node) *sizetree.Node {
	d := sizetree.NewDir(name, time.Time{})
	d.Children = children
	return d
}

func file(name string, size int64) *sizetree.Node {
	return sizetree.NewFile(name, size, time.Time{})
}

// nested is dominated by a, which holds b.
func nested() *sizetree.Node {
	return dir("/data",
		dir("a",
			dir("b", file("x.bin", 600), file("y.bin", 200)),
			file("z.go", 100),
		),
		file("c.go", 100),
	)
}

func newTestEngine(t *testing.T, opts ...camera.Option) *viewport.Engine {
	t.Helper()
	e := viewport.New(geom.Rect{W: 640, H: 320},
		viewport.WithLogger(log.New(io.Discard)),
		viewport.WithCameraOptions(opts...),
	)
	t.Cleanup(e.Close)
	return e
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		want   string
	}{
		{"directory input", "", "/home/me/src", "src"},
		{"dotted directory", "", "/home/me/proj.v2", "proj.v2"},
		{"export input", "", "scans/home.json", "home"},
		{"current directory", "", ".", appName},
		{"root", "", "/", appName},
		{"output with format", "out/map.svg", "/data", "out/map"},
		{"output uppercase format", "map.PNG", "/data", "map"},
		{"output without format", "out/map", "/data", "out/map"},
		{"output with other extension", "map.v1", "/data", "map.v1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := basePath(tt.output, tt.input); got != tt.want {
				t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}

func TestExcludes(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.cfg.Scan.Exclude = []string{"node_modules", "*.tmp"}

	got := c.excludes(&scanFlags{exclude: []string{".git", "*.tmp"}})
	want := []string{"*.tmp", ".git", "node_modules"}
	if !slices.Equal(got, want) {
		t.Errorf("excludes = %v, want %v", got, want)
	}
	if got := c.excludes(&scanFlags{}); len(got) != 2 {
		t.Errorf("config only: %v", got)
	}
	if got := c.scanKey(&scanFlags{exclude: []string{".git"}}); len(got.Exclude) != 3 {
		t.Errorf("scanKey = %+v", got)
	}
}

func TestShowFreeSpace(t *testing.T) {
	c := New(io.Discard, LogInfo)
	if !c.showFreeSpace(&scanFlags{}) {
		t.Error("free space should show by default")
	}
	if c.showFreeSpace(&scanFlags{noFreeSpace: true}) {
		t.Error("--no-free-space should hide free space")
	}
	c.cfg.Scan.ShowFreeSpace = false
	if c.showFreeSpace(&scanFlags{}) {
		t.Error("config should hide free space")
	}
}

func TestBuildTree(t *testing.T) {
	c := New(io.Discard, LogInfo)

	tree := c.buildTree(svio.Snapshot{Root: nested(), FreeSpace: 500}, &scanFlags{})
	if tree.Root().Size != 1500 {
		t.Errorf("size with free space = %d, want 1500", tree.Root().Size)
	}
	tree = c.buildTree(svio.Snapshot{Root: nested(), FreeSpace: 500}, &scanFlags{noFreeSpace: true})
	if tree.Root().Size != 1000 {
		t.Errorf("size without free space = %d, want 1000", tree.Root().Size)
	}
}

func TestAbsPath(t *testing.T) {
	if _, err := absPath(""); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("empty path: %v", err)
	}
	got, err := absPath("some/dir")
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(got) || !strings.HasSuffix(got, filepath.Join("some", "dir")) {
		t.Errorf("absPath = %q", got)
	}
}

func TestIsSnapshotFile(t *testing.T) {
	tmp := t.TempDir()
	export := filepath.Join(tmp, "tree.json")
	os.WriteFile(export, []byte("{}"), 0o644)
	upper := filepath.Join(tmp, "TREE.JSON")
	os.WriteFile(upper, []byte("{}"), 0o644)
	text := filepath.Join(tmp, "notes.txt")
	os.WriteFile(text, nil, 0o644)
	dirJSON := filepath.Join(tmp, "data.json")
	os.Mkdir(dirJSON, 0o755)

	tests := []struct {
		path string
		want bool
	}{
		{export, true},
		{upper, true},
		{text, false},
		{dirJSON, false},
		{filepath.Join(tmp, "missing.json"), false},
		{tmp, false},
	}
	for _, tt := range tests {
		t.Run(filepath.Base(tt.path), func(t *testing.T) {
			if got := isSnapshotFile(tt.path); got != tt.want {
				t.Errorf("isSnapshotFile(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestCheckDir(t *testing.T) {
	tmp := t.TempDir()
	f := filepath.Join(tmp, "f")
	os.WriteFile(f, nil, 0o644)

	if err := checkDir(tmp); err != nil {
		t.Errorf("directory: %v", err)
	}
	if err := checkDir(f); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("file: %v", err)
	}
	if err := checkDir(filepath.Join(tmp, "missing")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing: %v", err)
	}
}

func TestZoomPath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"relative", "a/b", "b"},
		{"trailing slash", "a/b/", "b"},
		{"absolute", "/data/a", "a"},
		{"root", ".", "/data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, camera.WithSnapDuration(0))
			e.Replace(sizetree.Build(nested()))
			e.Settle(100)

			if err := zoomPath(e, tt.path); err != nil {
				t.Fatalf("zoomPath(%q): %v", tt.path, err)
			}
			crumbs := e.Breadcrumbs()
			if !slices.ContainsFunc(crumbs, func(c viewport.Crumb) bool { return c.Name == tt.want }) {
				t.Errorf("breadcrumbs %+v lack %q", crumbs, tt.want)
			}
		})
	}
}

func TestZoomPathErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
		code errors.Code
	}{
		{"missing", "a/nope", errors.ErrCodeNotFound},
		{"file", "a/z.go", errors.ErrCodeInvalidInput},
		{"outside root", "/elsewhere/a", errors.ErrCodeInvalidPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, camera.WithSnapDuration(0))
			e.Replace(sizetree.Build(nested()))
			e.Settle(100)

			if err := zoomPath(e, tt.path); !errors.Is(err, tt.code) {
				t.Errorf("zoomPath(%q) = %v, want %s", tt.path, err, tt.code)
			}
		})
	}
}

func TestRenderOptsValidate(t *testing.T) {
	valid := renderOpts{vizType: vizTreemap, formats: []string{"svg"}, width: 800, height: 600}
	tests := []struct {
		name   string
		modify func(*renderOpts)
		code   errors.Code
	}{
		{"valid", func(*renderOpts) {}, ""},
		{"nodelink", func(o *renderOpts) { o.vizType = vizNodeLink }, ""},
		{"all formats", func(o *renderOpts) { o.formats = validFormats }, ""},
		{"bad type", func(o *renderOpts) { o.vizType = "sunburst" }, errors.ErrCodeInvalidFormat},
		{"bad format", func(o *renderOpts) { o.formats = []string{"svg", "gif"} }, errors.ErrCodeInvalidFormat},
		{"zero width", func(o *renderOpts) { o.width = 0 }, errors.ErrCodeInvalidInput},
		{"bad theme", func(o *renderOpts) { o.theme = "sepia" }, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := valid
			tt.modify(&o)
			err := o.validate()
			if tt.code == "" {
				if err != nil {
					t.Errorf("validate: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("validate = %v, want %s", err, tt.code)
			}
		})
	}
}

// setupCommandEnv points the cache and configuration at temporary
// directories and returns a small directory tree to scan.
func setupCommandEnv(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	root := t.TempDir()
	os.MkdirAll(filepath.Join(root, "src", "lib"), 0o755)
	os.WriteFile(filepath.Join(root, "src", "main.go"), bytes.Repeat([]byte("x"), 4000), 0o644)
	os.WriteFile(filepath.Join(root, "src", "lib", "util.go"), bytes.Repeat([]byte("x"), 2000), 0o644)
	os.WriteFile(filepath.Join(root, "README.md"), bytes.Repeat([]byte("x"), 500), 0o644)
	return root
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRenderCommand(t *testing.T) {
	root := setupCommandEnv(t)
	outDir := t.TempDir()
	base := filepath.Join(outDir, "map")

	_, err := execute(t, "render", root, "-f", "svg,json", "-o", base, "--width", "400", "--height", "300", "--no-free-space")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	svg, err := os.ReadFile(base + ".svg")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(svg, []byte("<svg")) || !bytes.Contains(svg, []byte("main.go")) {
		t.Errorf("unexpected svg: %.200s", svg)
	}

	data, err := os.ReadFile(base + ".json")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"width": 400`, `"kind": "file"`, `"theme": "rainbow"`} {
		if !bytes.Contains(data, []byte(want)) {
			t.Errorf("json lacks %s", want)
		}
	}
}

func TestRenderCommandZoom(t *testing.T) {
	root := setupCommandEnv(t)
	out := filepath.Join(t.TempDir(), "lib.json")

	if _, err := execute(t, "render", root, "-f", "json", "-o", out, "--zoom-to", "src/lib", "--no-free-space"); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, _ := os.ReadFile(out)
	if !bytes.Contains(data, []byte("util.go")) {
		t.Error("zoomed render should show util.go")
	}

	_, err := execute(t, "render", root, "-f", "json", "-o", out, "--zoom-to", "nope")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing zoom target: %v", err)
	}
}

func TestRenderCommandErrors(t *testing.T) {
	root := setupCommandEnv(t)
	out := filepath.Join(t.TempDir(), "x")

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"bad format", []string{"render", root, "-f", "gif", "-o", out}, errors.ErrCodeInvalidFormat},
		{"bad type", []string{"render", root, "-t", "sunburst", "-o", out}, errors.ErrCodeInvalidFormat},
		{"bad size", []string{"render", root, "--width=0", "-o", out}, errors.ErrCodeInvalidInput},
		{"bad theme", []string{"render", root, "--theme", "sepia", "-o", out}, errors.ErrCodeInvalidInput},
		{"nodelink json", []string{"render", root, "-t", "nodelink", "-f", "json", "-o", out}, errors.ErrCodeUnsupported},
		{"missing dir", []string{"render", filepath.Join(root, "missing"), "-o", out}, errors.ErrCodeFileNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestScanExportRoundTrip(t *testing.T) {
	root := setupCommandEnv(t)
	export := filepath.Join(t.TempDir(), "tree.json")

	if _, err := execute(t, "scan", root, "-o", export, "--top", "2"); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !isSnapshotFile(export) {
		t.Fatal("export not written")
	}

	c := New(io.Discard, LogInfo)
	l, err := c.loadTree(context.Background(), export, &scanFlags{})
	if err != nil {
		t.Fatal(err)
	}
	if !l.cached || l.snap.Root.Size != 6500 || l.snap.Root.FileCount != 3 {
		t.Errorf("loaded = cached %v, size %d, files %d", l.cached, l.snap.Root.Size, l.snap.Root.FileCount)
	}
}

func TestLoadTreeUsesCache(t *testing.T) {
	root := setupCommandEnv(t)
	c := New(io.Discard, LogInfo)
	ctx := context.Background()

	first, err := c.loadTree(ctx, root, &scanFlags{})
	if err != nil {
		t.Fatal(err)
	}
	if first.cached {
		t.Error("first load should scan")
	}

	second, err := c.loadTree(ctx, root, &scanFlags{})
	if err != nil {
		t.Fatal(err)
	}
	if !second.cached || second.snap.SessionID != first.snap.SessionID {
		t.Errorf("second load: cached %v, session %q vs %q", second.cached, second.snap.SessionID, first.snap.SessionID)
	}

	other, _ := c.loadTree(ctx, root, &scanFlags{exclude: []string{"*.md"}})
	if other.cached {
		t.Error("different excludes should not hit the cache")
	}
	if other.snap.Root.Size != 6000 {
		t.Errorf("size excluding *.md = %d, want 6000", other.snap.Root.Size)
	}

	refreshed, _ := c.loadTree(ctx, root, &scanFlags{refresh: true})
	if refreshed.cached {
		t.Error("--refresh should rescan")
	}

	uncached, _ := c.loadTree(ctx, root, &scanFlags{noCache: true})
	if uncached.cached {
		t.Error("--no-cache should scan")
	}
}

func TestConfigCommands(t *testing.T) {
	setupCommandEnv(t)

	out, err := execute(t, "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "[viewport]") || !strings.Contains(out, `theme = "rainbow"`) {
		t.Errorf("config show = %q", out)
	}

	path := filepath.Join(t.TempDir(), "spaceview.toml")
	if _, err := execute(t, "--config", path, "config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := execute(t, "--config", path, "config", "init"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("second init: %v", err)
	}
	if _, err := execute(t, "--config", path, "config", "init", "--force"); err != nil {
		t.Errorf("forced init: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Render != config.Default().Render {
		t.Errorf("written config = %+v", cfg.Render)
	}

	out, err = execute(t, "--config", path, "config", "path")
	if err != nil || strings.TrimSpace(out) != path {
		t.Errorf("config path = %q, %v", out, err)
	}

	_, err = execute(t, "--config", filepath.Join(t.TempDir(), "missing.toml"), "config", "show")
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing explicit config: %v", err)
	}
}

func TestCachePathCommand(t *testing.T) {
	setupCommandEnv(t)
	out, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(os.Getenv("XDG_CACHE_HOME"), appName)
	if strings.TrimSpace(out) != want {
		t.Errorf("cache path = %q, want %q", out, want)
	}
}

func TestCacheForgetCommand(t *testing.T) {
	root := setupCommandEnv(t)
	c := New(io.Discard, LogInfo)
	ctx := context.Background()
	if _, err := c.loadTree(ctx, root, &scanFlags{}); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "cache", "forget", root); err != nil {
		t.Fatal(err)
	}
	l, err := c.loadTree(ctx, root, &scanFlags{})
	if err != nil {
		t.Fatal(err)
	}
	if l.cached {
		t.Error("forgotten scan should not be served from the cache")
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out, err := execute(t, "completion", shell)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(out, appName) {
				t.Errorf("%s completion does not mention %s", shell, appName)
			}
		})
	}
	if _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("unknown shell should fail")
	}
}
