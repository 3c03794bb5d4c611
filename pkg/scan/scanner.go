// Package scan walks a directory tree into a [sizetree.Node] hierarchy.
//
// Top-level directories are walked concurrently. Every time one finishes, a
// [PartialSnapshot] holding everything completed so far is offered to the
// caller's [Mailbox], so a viewer can show the tree growing. [Progress]
// messages arrive at a fixed interval and the scan ends with [Complete] or,
// when its context is cancelled, [Cancelled].
package scan

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/spaceview/pkg/errors"
	"github.com/matzehuels/spaceview/pkg/observability"
	"github.com/matzehuels/spaceview/pkg/sizetree"
)

const (
	DefaultProgressInterval = 100 * time.Millisecond
	DefaultTopFiles         = 20
)

// systemDirs are skipped by name; they are unreadable system folders on
// Windows volumes and only produce errors.
var systemDirs = []string{"System Volume Information", "$Recycle.Bin"}

// Scanner walks directory trees. A Scanner is safe to reuse but each Scan
// call is independent.
type Scanner struct {
	logger    *log.Logger
	exclude   []string
	workers   int
	interval  time.Duration
	topFiles  int
	freeSpace bool
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger. The default is log.Default() with a "scan" prefix.
func WithLogger(l *log.Logger) Option { return func(s *Scanner) { s.logger = l } }

// WithExclude skips entries whose name matches any filepath.Match pattern.
func WithExclude(patterns ...string) Option {
	return func(s *Scanner) { s.exclude = append(s.exclude, patterns...) }
}

// WithWorkers limits how many top-level directories are walked at once.
func WithWorkers(n int) Option { return func(s *Scanner) { s.workers = n } }

// WithProgressInterval sets how often Progress is offered.
func WithProgressInterval(d time.Duration) Option { return func(s *Scanner) { s.interval = d } }

// WithTopFiles sets how many of the largest files Complete lists.
func WithTopFiles(n int) Option { return func(s *Scanner) { s.topFiles = n } }

// WithFreeSpace makes Complete report the filesystem's available space.
func WithFreeSpace(enabled bool) Option { return func(s *Scanner) { s.freeSpace = enabled } }

// New returns a Scanner.
func New(opts ...Option) *Scanner {
	s := &Scanner{
		workers:  runtime.NumCPU(),
		interval: DefaultProgressInterval,
		topFiles: DefaultTopFiles,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Default().WithPrefix("scan")
	}
	if s.workers < 1 {
		s.workers = 1
	}
	return s
}

// walker holds the state of one scan.
type walker struct {
	*Scanner
	files atomic.Uint64
	bytes atomic.Uint64
}

// Scan walks root and reports through box, which may be nil. The returned
// Complete is the same value offered last. A cancelled scan offers
// Cancelled and returns an error with code SCAN_CANCELLED.
func (s *Scanner) Scan(ctx context.Context, root string, box *Mailbox) (Complete, error) {
	if err := errors.ValidatePath(root); err != nil {
		return Complete{}, err
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return Complete{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", root)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return Complete{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s does not exist", abs)
		}
		return Complete{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "cannot scan %s", abs)
	}
	if !info.IsDir() {
		return Complete{}, errors.New(errors.ErrCodeInvalidPath, "%s is not a directory", abs)
	}

	session := uuid.NewString()
	logger := s.logger.With("session", session[:8])
	logger.Info("scan started", "root", abs, "workers", s.workers)
	observability.Scan().OnScanStart(ctx, abs)

	w := &walker{Scanner: s}
	start := time.Now()

	stop := make(chan struct{})
	var ticker sync.WaitGroup
	ticker.Add(1)
	go func() {
		defer ticker.Done()
		w.reportProgress(ctx, box, start, stop)
	}()

	tree, err := w.walkTop(ctx, abs, info.ModTime(), box)
	close(stop)
	ticker.Wait()

	elapsed := time.Since(start)
	files, bytes := w.files.Load(), w.bytes.Load()
	observability.Scan().OnScanComplete(ctx, abs, files, bytes, elapsed, err)

	if err != nil {
		box.Offer(Cancelled{SessionID: session})
		logger.Warn("scan stopped", "files", files, "elapsed", elapsed, "err", err)
		if ctx.Err() != nil {
			return Complete{}, errors.Wrap(errors.ErrCodeScanCancelled, err, "scan of %s cancelled", abs)
		}
		if errors.GetCode(err) != "" {
			return Complete{}, err
		}
		return Complete{}, errors.Wrap(errors.ErrCodeInternal, err, "scan of %s failed", abs)
	}

	sizetree.Normalize(tree)
	oldest, newest := sizetree.TimeRange(tree)
	done := Complete{
		Root:      tree,
		TopFiles:  sizetree.TopFiles(tree, s.topFiles),
		TimeRange: TimeRange{Oldest: oldest, Newest: newest},
		SessionID: session,
		Elapsed:   elapsed,
	}
	if s.freeSpace {
		free, ferr := FreeSpace(abs)
		if ferr != nil {
			logger.Debug("free space unavailable", "err", ferr)
		}
		done.FreeSpace = free
	}

	box.Offer(done)
	logger.Info("scan complete",
		"files", sizetree.FormatCount(files),
		"size", sizetree.FormatSize(bytes),
		"elapsed", elapsed.Round(time.Millisecond))
	return done, nil
}

// walkTop lists root, walks every top-level directory on the errgroup and
// offers a snapshot as each one finishes. It returns the final root.
func (w *walker) walkTop(ctx context.Context, root string, mod time.Time, box *Mailbox) (*sizetree.Node, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", root)
	}

	var (
		mu   sync.Mutex
		done []*sizetree.Node
	)
	snapshot := func() *sizetree.Node {
		r := sizetree.NewDir(root, mod)
		r.Children = slices.Clone(done)
		return r
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.workers)
	for _, e := range entries {
		if w.skip(e) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if !e.IsDir() {
			mu.Lock()
			done = append(done, w.file(e.Name(), info))
			mu.Unlock()
			continue
		}

		name, path := e.Name(), filepath.Join(root, e.Name())
		g.Go(func() error {
			child, err := w.dir(gctx, path, name, info.ModTime())
			if err != nil {
				return err
			}
			if child.Size == 0 {
				return nil
			}
			sizetree.Normalize(child)

			mu.Lock()
			done = append(done, child)
			snap := snapshot()
			mu.Unlock()
			box.Offer(PartialSnapshot{Root: snap})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return snapshot(), nil
}

// dir walks one directory sequentially. Unreadable directories become empty
// nodes; only cancellation is an error.
func (w *walker) dir(ctx context.Context, path, name string, mod time.Time) (*sizetree.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := sizetree.NewDir(name, mod)
	entries, err := os.ReadDir(path)
	if err != nil {
		w.logger.Debug("skipping unreadable directory", "path", path, "err", err)
		return n, nil
	}

	for _, e := range entries {
		if w.skip(e) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if !e.IsDir() {
			f := w.file(e.Name(), info)
			n.Children = append(n.Children, f)
			n.Size += f.Size
			n.FileCount++
			continue
		}
		child, err := w.dir(ctx, filepath.Join(path, e.Name()), e.Name(), info.ModTime())
		if err != nil {
			return nil, err
		}
		if child.Size > 0 {
			n.Children = append(n.Children, child)
			n.Size += child.Size
			n.FileCount += child.FileCount
		}
	}
	return n, nil
}

func (w *walker) file(name string, info fs.FileInfo) *sizetree.Node {
	f := sizetree.NewFile(name, info.Size(), info.ModTime())
	w.files.Add(1)
	w.bytes.Add(f.Size)
	return f
}

func (w *walker) skip(e fs.DirEntry) bool {
	name := e.Name()
	if e.IsDir() && slices.Contains(systemDirs, name) {
		return true
	}
	for _, pattern := range w.exclude {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

func (w *walker) reportProgress(ctx context.Context, box *Mailbox, start time.Time, stop <-chan struct{}) {
	if w.interval <= 0 {
		return
	}
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-t.C:
			box.Offer(Progress{
				FilesScanned: w.files.Load(),
				BytesScanned: w.bytes.Load(),
				Elapsed:      time.Since(start),
			})
		}
	}
}
