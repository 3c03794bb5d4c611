package cli

import (
	"context"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/spaceview/pkg/cache"
	"github.com/matzehuels/spaceview/pkg/errors"
	"github.com/matzehuels/spaceview/pkg/geom"
	"github.com/matzehuels/spaceview/pkg/render/sink"
	"github.com/matzehuels/spaceview/pkg/scan"
	"github.com/matzehuels/spaceview/pkg/viewport"
)

// viewCommand creates the interactive treemap command.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		flags  scanFlags
		theme  string
		dimExt string
	)

	cmd := &cobra.Command{
		Use:   "view [path|tree.json]",
		Short: "Explore a directory as a zoomable treemap in the terminal",
		Long: `Explore a directory as a zoomable treemap in the terminal.

Without a cached scan the directory is scanned in the background and the
treemap fills in as top-level directories finish. Click or press enter to
zoom into a directory, scroll to zoom around the pointer and drag to pan.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			if !cmd.Flags().Changed("theme") {
				theme = c.cfg.Render.Theme
			}
			t, err := sink.ParseTheme(theme)
			if err != nil {
				return err
			}
			return c.runView(cmd.Context(), path, &flags, t, dimExt)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&theme, "theme", "", "color theme: "+themeNames()+" (default from config)")
	cmd.Flags().StringVar(&dimExt, "highlight-ext", "", "dim every file without this extension, e.g. .go")

	return cmd
}

// runView opens the treemap. The alternate screen owns the terminal while
// it runs, so the engine and a background scan log nowhere.
func (c *CLI) runView(ctx context.Context, arg string, flags *scanFlags, theme sink.Theme, dimExt string) error {
	quiet := log.New(io.Discard)

	vc := c.cfg.ViewportConfig()
	vc.ShowFreeSpace = c.showFreeSpace(flags)
	engine := viewport.New(geom.Rect{W: 80 * cellW, H: 22 * cellH},
		viewport.WithLogger(quiet),
		viewport.WithConfig(vc),
		viewport.WithCameraOptions(c.cfg.CameraOptions()...),
	)
	defer engine.Close()
	if err := engine.SetDimFilter(dimExt); err != nil {
		return err
	}

	l, ok, err := c.cachedTree(ctx, arg, flags)
	if err != nil {
		return err
	}

	scanCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		box  *scan.Mailbox
		done chan error
	)
	if ok {
		engine.Replace(c.buildTree(l.snap, flags))
	} else {
		if err := checkDir(l.root); err != nil {
			return err
		}
		box = scan.NewMailbox()
		done = make(chan error, 1)
		go func() { done <- c.scanInBackground(scanCtx, l.root, flags, box, quiet) }()
	}

	model := NewTreemapModel(engine, theme, l.root, box, done, cancel)
	final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(TreemapModel); ok && m.err != nil {
		return m.err
	}
	return nil
}

// scanInBackground walks root, feeding box, and caches the result.
func (c *CLI) scanInBackground(ctx context.Context, root string, flags *scanFlags, box *scan.Mailbox, logger *log.Logger) error {
	opts := append(c.scanOptions(flags), scan.WithLogger(logger))
	done, err := scan.New(opts...).Scan(ctx, root, box)
	if err != nil {
		return err
	}
	store := cache.NewScanStore(newCache(flags.noCache), c.cacheTTL(), logger)
	_ = store.Save(ctx, root, c.scanKey(flags), snapshotOf(done))
	return nil
}

// checkDir fails early for paths the scanner would reject, before the
// terminal is taken over.
func checkDir(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "%s does not exist", path)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "cannot scan %s", path)
	}
	if !info.IsDir() {
		return errors.New(errors.ErrCodeInvalidPath, "%s is not a directory", path)
	}
	return nil
}
