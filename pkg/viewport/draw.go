package viewport

import (
	"github.com/matzehuels/spaceview/pkg/geom"
	"github.com/matzehuels/spaceview/pkg/sizetree"
)

// Kind identifies the role of a DrawRect.
type Kind uint8

const (
	// KindBody is the background of an expanded directory.
	KindBody Kind = iota
	// KindHeader is the title band of an expanded directory, drawn after
	// its children.
	KindHeader
	// KindFile is a file or a directory drawn without its children.
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindBody:
		return "body"
	case KindHeader:
		return "header"
	case KindFile:
		return "file"
	}
	return "unknown"
}

// DrawRect is one rectangle of a frame, in draw order. Later rects are on
// top of earlier ones.
type DrawRect struct {
	Rect   geom.Rect
	Handle sizetree.Handle
	Depth  int
	Kind   Kind
	IsDir  bool

	// Clip is Rect intersected with the viewport. Text must stay inside it.
	Clip geom.Rect

	// Label and SizeLabel are already truncated to fit; either may be empty.
	Label     string
	SizeLabel string
	FontSize  float64

	FreeSpace bool
	Dim       bool
}
