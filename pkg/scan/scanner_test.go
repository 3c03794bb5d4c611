package scan

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spaceview/pkg/errors"
	"github.com/matzehuels/spaceview/pkg/sizetree"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
}

// fixture builds:
//
//	root/
//	  top.bin          100
//	  docs/a.txt        30
//	  docs/sub/b.txt    20
//	  media/c.mp4      500
//	  empty/
//	  cache/x.tmp       40
//	  $Recycle.Bin/d    60
func fixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "top.bin"), 100)
	writeFile(t, filepath.Join(root, "docs", "a.txt"), 30)
	writeFile(t, filepath.Join(root, "docs", "sub", "b.txt"), 20)
	writeFile(t, filepath.Join(root, "media", "c.mp4"), 500)
	writeFile(t, filepath.Join(root, "cache", "x.tmp"), 40)
	writeFile(t, filepath.Join(root, "$Recycle.Bin", "d"), 60)
	if err := os.Mkdir(filepath.Join(root, "empty"), 0o755); err != nil {
		t.Fatal(err)
	}
	return root
}

func quietScanner(opts ...Option) *Scanner {
	return New(append([]Option{WithLogger(log.New(io.Discard))}, opts...)...)
}

func childNames(n *sizetree.Node) map[string]*sizetree.Node {
	out := make(map[string]*sizetree.Node)
	for _, c := range n.Children {
		out[c.Name] = c
	}
	return out
}

func TestScanBuildsTree(t *testing.T) {
	root := fixture(t)
	s := quietScanner(WithExclude("*.tmp"), WithTopFiles(2))

	done, err := s.Scan(context.Background(), root, nil)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if done.Root.Name != root {
		t.Errorf("root name = %q, want %q", done.Root.Name, root)
	}
	if done.Root.Size != 650 {
		t.Errorf("root size = %d, want 650", done.Root.Size)
	}
	if done.Root.FileCount != 4 {
		t.Errorf("file count = %d, want 4", done.Root.FileCount)
	}

	kids := childNames(done.Root)
	for _, skipped := range []string{"$Recycle.Bin", "empty", "cache"} {
		if _, ok := kids[skipped]; ok {
			t.Errorf("%s should not be in the tree", skipped)
		}
	}
	if d := kids["docs"]; d == nil || d.Size != 50 || d.FileCount != 2 {
		t.Errorf("docs = %+v", d)
	}
	if done.Root.Children[0].Name != "media" {
		t.Errorf("children not sorted: first is %s", done.Root.Children[0].Name)
	}

	if len(done.TopFiles) != 2 {
		t.Fatalf("top files = %d, want 2", len(done.TopFiles))
	}
	if want := filepath.Join(root, "media", "c.mp4"); done.TopFiles[0].Path != want {
		t.Errorf("largest = %q, want %q", done.TopFiles[0].Path, want)
	}
	if done.SessionID == "" {
		t.Error("missing session id")
	}
	if done.TimeRange.Newest.IsZero() {
		t.Error("time range not computed")
	}
}

func TestScanOffersToMailbox(t *testing.T) {
	root := fixture(t)
	box := NewMailbox()

	if _, err := quietScanner().Scan(context.Background(), root, box); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	select {
	case <-box.Ready():
	default:
		t.Fatal("mailbox was never signalled")
	}
	msg, ok := box.Take()
	if !ok {
		t.Fatal("no message")
	}
	c, ok := msg.(Complete)
	if !ok {
		t.Fatalf("last message = %T, want Complete", msg)
	}
	if c.Root.Size != 690 {
		t.Errorf("size = %d, want 690 without excludes", c.Root.Size)
	}
}

func TestScanFreeSpace(t *testing.T) {
	done, err := quietScanner(WithFreeSpace(true)).Scan(context.Background(), fixture(t), nil)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if _, ferr := FreeSpace(os.TempDir()); ferr == nil && done.FreeSpace == 0 {
		t.Error("free space not reported")
	}
}

func TestScanCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	box := NewMailbox()

	_, err := quietScanner().Scan(ctx, fixture(t), box)
	if !errors.Is(err, errors.ErrCodeScanCancelled) {
		t.Fatalf("err = %v, want SCAN_CANCELLED", err)
	}
	msg, _ := box.Take()
	if _, ok := msg.(Cancelled); !ok {
		t.Errorf("last message = %T, want Cancelled", msg)
	}
}

func TestScanInvalidRoots(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	writeFile(t, file, 1)

	tests := []struct {
		name string
		root string
		code errors.Code
	}{
		{"empty", "", errors.ErrCodeInvalidPath},
		{"missing", filepath.Join(dir, "nope"), errors.ErrCodeFileNotFound},
		{"file", file, errors.ErrCodeInvalidPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := quietScanner().Scan(context.Background(), tt.root, nil)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestScanResultBuildsIntoTree(t *testing.T) {
	done, err := quietScanner().Scan(context.Background(), fixture(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	tr := sizetree.Build(done.Root, sizetree.WithFreeSpace(1000))
	if tr.Root().Size != 1690 {
		t.Errorf("size with free space = %d, want 1690", tr.Root().Size)
	}
}
