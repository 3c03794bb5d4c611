package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
)

// ScanKeyOpts are the scan options that change the resulting tree.
type ScanKeyOpts struct {
	Exclude []string `json:"exclude,omitempty"`
}

// ScanKey returns the cache key for a scan of root. root should be absolute;
// exclude patterns are order-insensitive.
func ScanKey(root string, opts ScanKeyOpts) string {
	ex := slices.Clone(opts.Exclude)
	slices.Sort(ex)
	return hashKey("scan", filepath.Clean(root), ScanKeyOpts{Exclude: slices.Compact(ex)})
}

// hashKey formats prefix:sha256(json(parts)).
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return fmt.Sprintf("%s:%s", prefix, Hash(data))
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
