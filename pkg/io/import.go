package io

import (
	"encoding/json"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/matzehuels/spaceview/pkg/errors"
	"github.com/matzehuels/spaceview/pkg/sizetree"
)

// ReadJSON decodes a snapshot written by [WriteJSON].
//
// The returned root is normalized: directory sizes and file counts are
// recomputed and children are ordered largest first. ReadJSON fails with
// INVALID_FORMAT when the JSON is malformed, the version is unknown, the
// root is missing or not a directory, or a file has children. Negative or
// out-of-range file sizes are read as zero.
func ReadJSON(r io.Reader) (Snapshot, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Snapshot{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode")
	}
	if doc.Version != FormatVersion {
		return Snapshot{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported version %d", doc.Version)
	}
	if doc.Root == nil {
		return Snapshot{}, errors.New(errors.ErrCodeInvalidFormat, "missing root")
	}
	if !doc.Root.Dir {
		return Snapshot{}, errors.New(errors.ErrCodeInvalidFormat, "root %q is not a directory", doc.Root.Name)
	}

	root, err := fromNode(doc.Root)
	if err != nil {
		return Snapshot{}, err
	}
	sizetree.Normalize(root)
	return Snapshot{
		Root:      root,
		SessionID: doc.SessionID,
		ScannedAt: doc.ScannedAt,
		FreeSpace: doc.FreeSpace,
	}, nil
}

// size is a file size in bytes. Decoding accepts any JSON number and maps
// values outside the uint64 range to zero.
type size uint64

func (s *size) UnmarshalJSON(b []byte) error {
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	if v, err := strconv.ParseInt(num.String(), 10, 64); err == nil {
		*s = size(sizetree.ClampSize(v))
		return nil
	}
	if v, err := strconv.ParseUint(num.String(), 10, 64); err == nil {
		*s = size(v)
		return nil
	}
	f, err := num.Float64()
	if err != nil || f < 0 || f >= math.MaxUint64 {
		*s = 0
		return nil
	}
	*s = size(f)
	return nil
}

func fromNode(n *node) (*sizetree.Node, error) {
	if n == nil {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "null node")
	}
	if !n.Dir {
		if len(n.Children) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "file %q has children", n.Name)
		}
		f := sizetree.NewFile(n.Name, 0, n.Modified)
		f.Size = uint64(n.Size)
		return f, nil
	}
	d := sizetree.NewDir(n.Name, n.Modified)
	d.Children = make([]*sizetree.Node, 0, len(n.Children))
	for _, c := range n.Children {
		child, err := fromNode(c)
		if err != nil {
			return nil, err
		}
		d.Children = append(d.Children, child)
	}
	return d, nil
}

// ImportJSON reads a snapshot from the JSON file at path.
func ImportJSON(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return Snapshot{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return ReadJSON(f)
}
