package cache

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spaceview/pkg/io"
)

// DefaultScanTTL is how long a cached scan is considered fresh.
const DefaultScanTTL = 24 * time.Hour

// ScanStore caches scan snapshots by path.
type ScanStore struct {
	cache  Cache
	ttl    time.Duration
	logger *log.Logger
}

// NewScanStore wraps c. A ttl of zero uses DefaultScanTTL.
func NewScanStore(c Cache, ttl time.Duration, logger *log.Logger) *ScanStore {
	if c == nil {
		c = NewNullCache()
	}
	if ttl <= 0 {
		ttl = DefaultScanTTL
	}
	if logger == nil {
		logger = log.Default().WithPrefix("cache")
	}
	return &ScanStore{cache: c, ttl: ttl, logger: logger}
}

// Load returns the cached snapshot for root. A corrupt entry is deleted and
// reported as a miss.
func (s *ScanStore) Load(ctx context.Context, root string, opts ScanKeyOpts) (io.Snapshot, bool, error) {
	key := ScanKey(root, opts)
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil || !ok {
		return io.Snapshot{}, false, err
	}
	snap, err := io.ReadJSON(bytes.NewReader(data))
	if err != nil {
		s.logger.Warn("dropping unreadable cache entry", "root", root, "err", err)
		_ = s.cache.Delete(ctx, key)
		return io.Snapshot{}, false, nil
	}
	s.logger.Debug("cache hit", "root", root, "scanned", snap.ScannedAt)
	return snap, true, nil
}

// Save stores snap for root.
func (s *ScanStore) Save(ctx context.Context, root string, opts ScanKeyOpts, snap io.Snapshot) error {
	var buf bytes.Buffer
	if err := io.WriteJSON(snap, &buf); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.cache.Set(ctx, ScanKey(root, opts), buf.Bytes(), s.ttl); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	s.logger.Debug("cached scan", "root", root, "bytes", buf.Len())
	return nil
}

// Forget drops the cached snapshot for root.
func (s *ScanStore) Forget(ctx context.Context, root string, opts ScanKeyOpts) error {
	return s.cache.Delete(ctx, ScanKey(root, opts))
}
