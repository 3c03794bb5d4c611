package io

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/spaceview/pkg/errors"
	"github.com/matzehuels/spaceview/pkg/sizetree"
)

func sample() *sizetree.Node {
	mod := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	src := sizetree.NewDir("src", mod)
	src.Children = []*sizetree.Node{
		sizetree.NewFile("main.go", 300, mod),
		sizetree.NewFile("util.go", 100, mod),
	}
	root := sizetree.NewDir("/proj", mod)
	root.Children = []*sizetree.Node{src, sizetree.NewFile("README", 50, mod), sizetree.NewDir("empty", mod)}
	return root
}

func TestRoundTrip(t *testing.T) {
	root := sample()
	st := sizetree.Build(root, sizetree.WithFreeSpace(1000))

	var buf bytes.Buffer
	in := Snapshot{Root: st.Root(), SessionID: "abc", FreeSpace: 1000, ScannedAt: time.Unix(1700000000, 0).UTC()}
	if err := WriteJSON(in, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if strings.Contains(buf.String(), sizetree.FreeSpaceName) {
		t.Error("free-space entry should not be exported as a node")
	}

	out, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if out.SessionID != "abc" || out.FreeSpace != 1000 || !out.ScannedAt.Equal(in.ScannedAt) {
		t.Errorf("metadata = %+v", out)
	}
	if out.Root.Size != 450 || out.Root.FileCount != 3 {
		t.Errorf("root size=%d files=%d, want 450 and 3", out.Root.Size, out.Root.FileCount)
	}
	if got := out.Root.Children[0]; got.Name != "src" || got.Size != 400 {
		t.Errorf("first child = %s %d", got.Name, got.Size)
	}
	main := out.Root.Children[0].Children[0]
	if main.Ext != ".go" || main.Modified.IsZero() {
		t.Errorf("file = %+v", main)
	}

	rebuilt := sizetree.Build(out.Root, sizetree.WithFreeSpace(out.FreeSpace))
	if rebuilt.Root().Size != st.Root().Size {
		t.Errorf("rebuilt size = %d, want %d", rebuilt.Root().Size, st.Root().Size)
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed", `{"version":`},
		{"wrong version", `{"version": 7, "root": {"name": "/", "dir": true}}`},
		{"missing root", `{"version": 1}`},
		{"file root", `{"version": 1, "root": {"name": "a", "size": 3}}`},
		{"file with children", `{"version": 1, "root": {"name": "/", "dir": true, "children": [{"name": "f", "children": [{"name": "g"}]}]}}`},
		{"null child", `{"version": 1, "root": {"name": "/", "dir": true, "children": [null]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.input))
			if !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("err = %v, want INVALID_FORMAT", err)
			}
		})
	}
}

func TestReadJSONClampsSizes(t *testing.T) {
	tests := []struct {
		name string
		size string
		want uint64
	}{
		{"plain", "42", 42},
		{"negative", "-5", 0},
		{"above int64", "18446744073709551615", math.MaxUint64},
		{"above uint64", "18446744073709551616", 0},
		{"huge exponent", "1e400", 0},
		{"negative float", "-1.5", 0},
		{"float", "2.9", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := `{"version": 1, "root": {"name": "/", "dir": true, "children": [{"name": "f", "size": ` + tt.size + `}]}}`
			s, err := ReadJSON(strings.NewReader(in))
			if err != nil {
				t.Fatalf("ReadJSON: %v", err)
			}
			if got := s.Root.Children[0].Size; got != tt.want {
				t.Errorf("size = %d, want %d", got, tt.want)
			}
			if s.Root.Size != tt.want {
				t.Errorf("root size = %d, want %d", s.Root.Size, tt.want)
			}
		})
	}
}

func TestExportImportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.json")
	if err := ExportJSON(Snapshot{Root: sample()}, path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	s, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if s.Root.Name != "/proj" || len(s.Root.Children) != 3 {
		t.Errorf("root = %s with %d children", s.Root.Name, len(s.Root.Children))
	}
}

func TestImportJSONMissingFile(t *testing.T) {
	_, err := ImportJSON(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}
