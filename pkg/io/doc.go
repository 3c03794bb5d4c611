// Package io provides JSON import and export for scanned size trees.
//
// # Overview
//
// A scan can take minutes on a large volume. Exporting its result lets the
// tree be rendered again later, shared, or cached without touching the
// filesystem.
//
// # JSON Format
//
//	{
//	  "version": 1,
//	  "session_id": "3f0c...",
//	  "scanned_at": "2025-01-02T15:04:05Z",
//	  "free_space": 1073741824,
//	  "root": {
//	    "name": "/home/me",
//	    "dir": true,
//	    "children": [
//	      {"name": "notes.txt", "size": 812, "modified": "2024-11-30T09:12:00Z"},
//	      {"name": "src", "dir": true, "children": []}
//	    ]
//	  }
//	}
//
// Directory sizes and file counts are not stored; they are recomputed from
// the files on import. The synthetic free-space entry is never written as a
// node. Its size travels in "free_space" and is added again by
// [sizetree.Build] when requested.
//
// # Import and Export
//
// Use [ReadJSON] and [WriteJSON] with any reader or writer, or [ImportJSON]
// and [ExportJSON] for files. Malformed input yields an error with code
// INVALID_FORMAT.
//
// [sizetree.Build]: github.com/matzehuels/spaceview/pkg/sizetree.Build
package io
