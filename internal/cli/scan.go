package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spaceview/pkg/cache"
	"github.com/matzehuels/spaceview/pkg/errors"
	"github.com/matzehuels/spaceview/pkg/io"
	"github.com/matzehuels/spaceview/pkg/scan"
	"github.com/matzehuels/spaceview/pkg/sizetree"
)

// tableWidth is the width the scan tables are truncated to.
const tableWidth = 100

// scanFlags are shared by every command that may walk a directory.
type scanFlags struct {
	exclude     []string // extra exclude patterns, added to the configured ones
	noCache     bool     // neither read nor write the scan cache
	refresh     bool     // ignore a cached scan but store the new one
	noFreeSpace bool     // omit the free-space entry
	workers     int      // parallel top-level walkers, 0 keeps the configured value
}

func (f *scanFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.exclude, "exclude", "x", nil, "exclude names or glob patterns (repeatable)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the scan cache")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "rescan even when a cached scan exists")
	cmd.Flags().BoolVar(&f.noFreeSpace, "no-free-space", false, "do not show free disk space")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "directories walked in parallel (default from config)")
}

// loaded is a tree ready for display together with where it came from.
type loaded struct {
	snap    io.Snapshot
	root    string        // absolute scanned path, or the snapshot file
	cached  bool          // read from the cache or an export
	elapsed time.Duration // scan duration, zero when not scanned
	top     []sizetree.FileEntry
}

// showFreeSpace reports whether the free-space entry should be drawn.
func (c *CLI) showFreeSpace(f *scanFlags) bool {
	return c.cfg.Scan.ShowFreeSpace && !f.noFreeSpace
}

// excludes merges the configured exclude patterns with the flag values.
func (c *CLI) excludes(f *scanFlags) []string {
	all := slices.Concat(c.cfg.Scan.Exclude, f.exclude)
	slices.Sort(all)
	return slices.Compact(all)
}

// scanOptions builds the scanner options for f on top of the configuration.
func (c *CLI) scanOptions(f *scanFlags) []scan.Option {
	cfg := c.cfg
	cfg.Scan.Exclude = c.excludes(f)
	cfg.Scan.ShowFreeSpace = c.showFreeSpace(f)
	if f.workers > 0 {
		cfg.Scan.Workers = f.workers
	}
	return append(cfg.ScanOptions(), scan.WithLogger(c.Logger.WithPrefix("scan")))
}

// loadTree returns the tree for arg. A .json file is read as an export;
// anything else is a directory, served from the cache when possible and
// scanned otherwise.
func (c *CLI) loadTree(ctx context.Context, arg string, f *scanFlags) (loaded, error) {
	l, ok, err := c.cachedTree(ctx, arg, f)
	if err != nil || ok {
		return l, err
	}

	done, err := c.runScan(ctx, l.root, c.scanOptions(f))
	if err != nil {
		return loaded{}, err
	}
	l.snap = snapshotOf(done)
	l.elapsed = done.Elapsed
	l.top = done.TopFiles
	c.saveScan(ctx, c.newScanStore(f.noCache), l.root, f, l.snap)
	return l, nil
}

// cachedTree returns the tree for arg when it needs no scan: arg is an
// export, or the directory has a fresh cached scan. Otherwise the returned
// value only carries the absolute root.
func (c *CLI) cachedTree(ctx context.Context, arg string, f *scanFlags) (loaded, bool, error) {
	if isSnapshotFile(arg) {
		snap, err := io.ImportJSON(arg)
		if err != nil {
			return loaded{}, false, err
		}
		c.Logger.Debug("loaded export", "file", arg, "session", snap.SessionID)
		return loaded{snap: snap, root: arg, cached: true}, true, nil
	}

	root, err := absPath(arg)
	if err != nil {
		return loaded{}, false, err
	}
	l := loaded{root: root}
	if f.refresh {
		return l, false, nil
	}

	snap, ok, err := c.newScanStore(f.noCache).Load(ctx, root, c.scanKey(f))
	if err != nil {
		c.Logger.Warn("cache read failed", "err", err)
	}
	if ok {
		l.snap, l.cached = snap, true
	}
	return l, ok, nil
}

func (c *CLI) scanKey(f *scanFlags) cache.ScanKeyOpts {
	return cache.ScanKeyOpts{Exclude: c.excludes(f)}
}

func (c *CLI) saveScan(ctx context.Context, store *cache.ScanStore, root string, f *scanFlags, snap io.Snapshot) {
	if err := store.Save(ctx, root, c.scanKey(f), snap); err != nil {
		c.Logger.Warn("cache write failed", "err", err)
	}
}

func snapshotOf(done scan.Complete) io.Snapshot {
	return io.Snapshot{
		Root:      done.Root,
		SessionID: done.SessionID,
		ScannedAt: time.Now(),
		FreeSpace: done.FreeSpace,
	}
}

// buildTree indexes snap for display, with the free-space entry when it is
// wanted and known.
func (c *CLI) buildTree(snap io.Snapshot, f *scanFlags) *sizetree.Tree {
	var opts []sizetree.BuildOption
	if c.showFreeSpace(f) && snap.FreeSpace > 0 {
		opts = append(opts, sizetree.WithFreeSpace(snap.FreeSpace))
	}
	return sizetree.Build(snap.Root, opts...)
}

// runScan walks root with a spinner showing the running totals.
func (c *CLI) runScan(ctx context.Context, root string, opts []scan.Option) (scan.Complete, error) {
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Scanning %s...", root))
	spinner.Start()

	box := scan.NewMailbox()
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			case <-box.Ready():
				msg, ok := box.Take()
				if !ok {
					continue
				}
				if p, ok := msg.(scan.Progress); ok {
					spinner.SetMessage(fmt.Sprintf("Scanning %s... %s files, %s",
						root, sizetree.FormatCount(p.FilesScanned), sizetree.FormatSize(p.BytesScanned)))
				}
			}
		}
	}()

	done, err := scan.New(opts...).Scan(ctx, root, box)
	close(stop)
	if err != nil {
		if errors.Is(err, errors.ErrCodeScanCancelled) {
			spinner.StopWithError("Scan cancelled")
		} else {
			spinner.StopWithError("Scan failed")
		}
		return scan.Complete{}, err
	}
	spinner.Stop()
	return done, nil
}

// scanCommand creates the scan command.
func (c *CLI) scanCommand() *cobra.Command {
	var (
		flags      scanFlags
		output     string
		top        int
		extensions int
	)

	cmd := &cobra.Command{
		Use:   "scan <path>",
		Short: "Scan a directory and summarize where the space went",
		Long: `Scan a directory and summarize where the space went.

The scan lists the largest files and the space taken per extension. Results
are cached for later render and view runs; use --refresh to rescan.

Use -o to export the scanned tree as JSON. Exports can be passed to render
and view in place of a directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("top") {
				top = c.cfg.Scan.TopFiles
			}
			return c.runScanCommand(cmd.Context(), args[0], &flags, output, top, extensions)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "export the scanned tree as JSON")
	cmd.Flags().IntVar(&top, "top", scan.DefaultTopFiles, "number of largest files to list (default from config)")
	cmd.Flags().IntVar(&extensions, "extensions", 10, "number of extensions to list, 0 for none")

	return cmd
}

func (c *CLI) runScanCommand(ctx context.Context, arg string, flags *scanFlags, output string, top, extensions int) error {
	prog := newProgress(c.Logger)
	l, err := c.loadTree(ctx, arg, flags)
	if err != nil {
		return err
	}
	root := l.snap.Root
	prog.done("tree ready", "root", l.root, "cached", l.cached, "files", root.FileCount)

	fmt.Println()
	printSuccess("%s %s", StyleTitle.Render("Scanned"), StylePath.Render(l.root))
	fmt.Println(scanStatsLine(root.FileCount, root.Size, l.elapsed, l.cached))
	if l.snap.FreeSpace > 0 && c.showFreeSpace(flags) {
		printDetail("%s free on this filesystem", sizetree.FormatSize(l.snap.FreeSpace))
	}

	files := l.top
	if len(files) != top {
		files = sizetree.TopFiles(root, top)
	}
	if len(files) > 0 {
		fmt.Println()
		fmt.Println(StyleTitle.Render("Largest files"))
		fmt.Println(topFilesTable(files, root.Size, tableWidth))
	}

	if extensions > 0 {
		if stats := sizetree.ExtensionStats(root); len(stats) > 0 {
			fmt.Println()
			fmt.Println(StyleTitle.Render("By extension"))
			fmt.Println(extensionTable(stats, root.Size, extensions))
		}
	}

	if output != "" {
		if err := io.ExportJSON(l.snap, output); err != nil {
			return err
		}
		fmt.Println()
		printSuccess("Exported tree")
		printFile(output)
	}
	return nil
}

// absPath validates p and makes it absolute.
func absPath(p string) (string, error) {
	if err := errors.ValidatePath(p); err != nil {
		return "", err
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", p)
	}
	return abs, nil
}

// isSnapshotFile reports whether arg names an exported tree rather than a
// directory to scan.
func isSnapshotFile(arg string) bool {
	if !strings.EqualFold(filepath.Ext(arg), ".json") {
		return false
	}
	info, err := os.Stat(arg)
	return err == nil && !info.IsDir()
}
