package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/matzehuels/spaceview/pkg/sizetree"
)

// FormatVersion is written to every export.
const FormatVersion = 1

// Snapshot is a scanned tree together with what is known about the scan.
type Snapshot struct {
	Root      *sizetree.Node
	SessionID string
	ScannedAt time.Time
	FreeSpace uint64
}

type document struct {
	Version   int       `json:"version"`
	SessionID string    `json:"session_id,omitempty"`
	ScannedAt time.Time `json:"scanned_at,omitzero"`
	FreeSpace uint64    `json:"free_space,omitempty"`
	Root      *node     `json:"root"`
}

type node struct {
	Name     string    `json:"name"`
	Size     size      `json:"size,omitempty"`
	Dir      bool      `json:"dir,omitempty"`
	Modified time.Time `json:"modified,omitzero"`
	Children []*node   `json:"children,omitempty"`
}

func toNode(n *sizetree.Node) *node {
	out := &node{Name: n.Name, Dir: n.IsDir, Modified: n.Modified}
	if !n.IsDir {
		out.Size = size(n.Size)
		return out
	}
	out.Children = make([]*node, 0, len(n.Children))
	for _, c := range n.Children {
		if c.FreeSpace {
			continue
		}
		out.Children = append(out.Children, toNode(c))
	}
	return out
}

// WriteJSON encodes s as indented JSON and writes it to w.
func WriteJSON(s Snapshot, w io.Writer) error {
	doc := document{
		Version:   FormatVersion,
		SessionID: s.SessionID,
		ScannedAt: s.ScannedAt,
		FreeSpace: s.FreeSpace,
	}
	if s.Root != nil {
		doc.Root = toNode(s.Root)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes s to a JSON file at path.
func ExportJSON(s Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(s, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
