// Package cache stores finished scans so a path can be shown again without
// walking the filesystem.
//
// [Cache] is a byte-level key/value store with expiry. [FileCache] keeps
// entries as JSON files under a directory; [NullCache] disables caching.
// [ScanStore] sits on top and stores [io.Snapshot] values under keys derived
// from the scanned path and the options that shape the tree.
//
// [io.Snapshot]: github.com/matzehuels/spaceview/pkg/io.Snapshot
package cache

import (
	"context"
	"time"
)

// Cache is a key/value store with optional per-entry expiry.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Removing a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// NullCache never stores anything.
type NullCache struct{}

// NewNullCache returns a cache that always misses.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)         { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

var _ Cache = NullCache{}
