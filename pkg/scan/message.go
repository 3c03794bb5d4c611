package scan

import (
	"time"

	"github.com/matzehuels/spaceview/pkg/sizetree"
)

// Message is sent from a scan to the frame loop through a [Mailbox].
type Message interface {
	isMessage()
}

// Progress reports running totals.
type Progress struct {
	FilesScanned uint64
	BytesScanned uint64
	Elapsed      time.Duration
}

// PartialSnapshot carries a root holding every top-level entry finished so
// far. Each snapshot has its own root node; finished subtrees are shared
// between snapshots and never written again.
type PartialSnapshot struct {
	Root *sizetree.Node
}

// TimeRange is the span of modification times seen by a scan.
type TimeRange struct {
	Oldest time.Time
	Newest time.Time
}

// Complete carries the final tree and the statistics gathered alongside it.
type Complete struct {
	Root      *sizetree.Node
	TopFiles  []sizetree.FileEntry
	TimeRange TimeRange
	SessionID string

	// FreeSpace is the available space on the scanned filesystem, zero when
	// it was not requested or could not be determined.
	FreeSpace uint64
	Elapsed   time.Duration
}

// Cancelled reports that the scan stopped early. The last snapshot stays
// valid.
type Cancelled struct {
	SessionID string
}

func (Progress) isMessage()        {}
func (PartialSnapshot) isMessage() {}
func (Complete) isMessage()        {}
func (Cancelled) isMessage()       {}
