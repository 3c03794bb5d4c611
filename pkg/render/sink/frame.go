package sink

import (
	"bytes"
	"encoding/xml"

	"github.com/matzehuels/spaceview/pkg/viewport"
)

// Frame is one rendered viewport: its pixel size and draw list in paint
// order.
type Frame struct {
	Width  float64
	Height float64
	Rects  []viewport.DrawRect
}

// EscapeXML escapes s for use in SVG text and attribute values.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
