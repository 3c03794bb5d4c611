package nodelink

import (
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/spaceview/pkg/sizetree"
)

func wideTree(files int) *sizetree.Tree {
	root := sizetree.NewDir("/data", time.Time{})
	sub := sizetree.NewDir("sub", time.Time{})
	sub.Children = []*sizetree.Node{sizetree.NewFile("deep.bin", 5, time.Time{})}
	root.Children = append(root.Children, sub)
	for i := range files {
		root.Children = append(root.Children, sizetree.NewFile(string(rune('a'+i))+".txt", int64(100-i), time.Time{}))
	}
	return sizetree.Build(root, sizetree.WithFreeSpace(1000))
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(wideTree(2), Options{})

	if !strings.HasPrefix(dot, "digraph G {\n") || !strings.HasSuffix(dot, "}\n") {
		t.Fatalf("malformed DOT:\n%s", dot)
	}
	for _, want := range []string{
		`"n0" [label="/data\n1 KB"];`,
		`label="<Free Space>\n1000 B", style="filled,dashed", fillcolor=palegreen`,
		`label="deep.bin\n5 B", style=filled, fillcolor=whitesmoke`,
		`"n0" -> "n1";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("missing %s in:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "more") {
		t.Error("no siblings should be folded")
	}
}

func TestToDOTLimits(t *testing.T) {
	st := wideTree(10)

	dot := ToDOT(st, Options{MaxChildren: 3})
	if !strings.Contains(dot, `"n0-more" [label="9 more\n`) {
		t.Errorf("expected 9 folded children:\n%s", dot)
	}
	if got := strings.Count(dot, `"n0" -> `); got != 4 {
		t.Errorf("root edges = %d, want 4", got)
	}

	dot = ToDOT(wideTree(2), Options{MaxDepth: 1})
	if strings.Contains(dot, "deep.bin") {
		t.Error("MaxDepth 1 should stop below the root's children")
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(wideTree(0), Options{Detailed: true})
	if !strings.Contains(dot, `label="sub\n5 B\n1 files, 0.5%"`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
}

func TestToDOTNil(t *testing.T) {
	dot := ToDOT(nil, Options{})
	if strings.Contains(dot, "->") {
		t.Error("nil tree should produce an empty graph")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 10.00 20.00" xmlns="x"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10.00 20.00" width="10" height="20"><g/></svg>`
	if got != want {
		t.Errorf("got %s", got)
	}
	if out := normalizeViewBox([]byte("<svg/>")); string(out) != "<svg/>" {
		t.Error("svg without viewBox should be unchanged")
	}
}
