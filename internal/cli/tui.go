package cli

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/spaceview/pkg/errors"
	"github.com/matzehuels/spaceview/pkg/geom"
	"github.com/matzehuels/spaceview/pkg/render/sink"
	"github.com/matzehuels/spaceview/pkg/scan"
	"github.com/matzehuels/spaceview/pkg/sizetree"
	"github.com/matzehuels/spaceview/pkg/viewport"
)

const (
	// cellW and cellH are the engine pixels covered by one terminal cell.
	cellW = 8
	cellH = 16

	// statusRows are the terminal rows below the treemap.
	statusRows = 2

	frameInterval = time.Second / 30

	// maxFrameStep caps the time one frame advances animations, so a
	// stalled terminal does not skip a whole zoom.
	maxFrameStep = 100 * time.Millisecond

	// panStep is the distance the arrow keys pan, in cells.
	panStep = 4

	// highlightExts is how many of the largest extensions the highlight key
	// cycles through.
	highlightExts = 8
)

var (
	tuiStatusStyle  = lipgloss.NewStyle().Foreground(colorWhite).Background(lipgloss.Color("236"))
	tuiScanStyle    = lipgloss.NewStyle().Foreground(colorCyan).Background(lipgloss.Color("236"))
	tuiErrorStyle   = lipgloss.NewStyle().Foreground(colorRed).Background(lipgloss.Color("236"))
	tuiScanningCard = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorCyan).Padding(1, 3)
)

// =============================================================================
// Key bindings
// =============================================================================

type keyMap struct {
	ZoomIn    key.Binding
	ZoomOut   key.Binding
	Home      key.Binding
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Highlight key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		ZoomIn: key.NewBinding(
			key.WithKeys("enter", "+", "="),
			key.WithHelp("enter/+", "zoom in"),
		),
		ZoomOut: key.NewBinding(
			key.WithKeys("backspace", "-", "esc"),
			key.WithHelp("bksp/-", "zoom out"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "0"),
			key.WithHelp("0", "root"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "pan up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "pan down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "pan left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "pan right"),
		),
		Highlight: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "highlight ext"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ZoomIn, k.ZoomOut, k.Home, k.Highlight, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ZoomIn, k.ZoomOut, k.Home},
		{k.Up, k.Down, k.Left, k.Right},
		{k.Highlight, k.Help, k.Quit},
	}
}

// =============================================================================
// TreemapModel - Interactive treemap
// =============================================================================

type frameMsg time.Time

// scanDoneMsg reports the end of a background scan.
type scanDoneMsg struct{ err error }

// TreemapModel is the bubbletea model of the view command. It owns the
// viewport engine and, while a scan runs, drains its mailbox once per
// frame.
type TreemapModel struct {
	engine *viewport.Engine
	theme  sink.Theme
	keys   keyMap
	help   help.Model
	title  string

	box      *scan.Mailbox
	scanDone <-chan error
	cancel   context.CancelFunc
	err      error

	width, height int
	rects         []viewport.DrawRect
	last          time.Time

	hover    geom.Point
	hovering bool
	dragging bool
	dragged  bool
	dragFrom geom.Point

	exts   []string
	extIdx int
}

// NewTreemapModel creates the model. box and scanDone are nil when the tree
// is already loaded; cancel stops the scan on quit.
func NewTreemapModel(engine *viewport.Engine, theme sink.Theme, title string, box *scan.Mailbox, scanDone <-chan error, cancel context.CancelFunc) TreemapModel {
	m := TreemapModel{
		engine:   engine,
		theme:    theme,
		keys:     newKeyMap(),
		help:     help.New(),
		title:    title,
		box:      box,
		scanDone: scanDone,
		cancel:   cancel,
		extIdx:   -1,
	}
	m.refreshExts()
	return m
}

func (m TreemapModel) Init() tea.Cmd {
	cmds := []tea.Cmd{frameTick()}
	if m.scanDone != nil {
		cmds = append(cmds, waitScan(m.scanDone))
	}
	return tea.Batch(cmds...)
}

func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func waitScan(done <-chan error) tea.Cmd {
	return func() tea.Msg { return scanDoneMsg{err: <-done} }
}

func (m TreemapModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.engine.Resize(m.viewportRect())
		return m, nil

	case frameMsg:
		m.drain()
		now := time.Time(msg)
		dt := time.Duration(0)
		if !m.last.IsZero() {
			dt = min(now.Sub(m.last), maxFrameStep)
		}
		m.last = now
		m.rects = m.engine.Frame(dt)
		return m, frameTick()

	case scanDoneMsg:
		m.drain()
		m.box = nil
		if msg.err != nil && !errors.Is(msg.err, errors.ErrCodeScanCancelled) {
			m.err = msg.err
		}
		m.refreshExts()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	}
	return m, nil
}

// drain applies the pending scan message, if any.
func (m *TreemapModel) drain() {
	if m.box == nil {
		return
	}
	if msg, ok := m.box.Take(); ok {
		m.engine.Apply(msg)
		if _, ok := msg.(scan.Complete); ok {
			m.refreshExts()
		}
	}
}

func (m TreemapModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	pan := func(dx, dy float64) { m.engine.DragPan(geom.Pt(dx*panStep*cellW, dy*panStep*cellH)) }

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.ZoomIn):
		at := m.viewportRect().Center()
		if m.hovering {
			at = m.hover
		}
		m.zoomAt(at)
	case key.Matches(msg, m.keys.ZoomOut):
		m.engine.ZoomOut()
	case key.Matches(msg, m.keys.Home):
		if t := m.engine.Tree(); t != nil {
			m.engine.ZoomTo(t.RootHandle())
		}
	case key.Matches(msg, m.keys.Up):
		pan(0, 1)
	case key.Matches(msg, m.keys.Down):
		pan(0, -1)
	case key.Matches(msg, m.keys.Left):
		pan(1, 0)
	case key.Matches(msg, m.keys.Right):
		pan(-1, 0)
	case key.Matches(msg, m.keys.Highlight):
		m.cycleHighlight()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *TreemapModel) handleMouse(msg tea.MouseMsg) {
	p := geom.Pt(float64(msg.X)*cellW+cellW/2, float64(msg.Y)*cellH+cellH/2)
	if msg.Y < m.gridRows() {
		m.hover, m.hovering = p, true
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.engine.ScrollZoom(p, 1)
		return
	case tea.MouseButtonWheelDown:
		m.engine.ScrollZoom(p, -1)
		return
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.dragging, m.dragged, m.dragFrom = true, false, p
		}
	case tea.MouseActionMotion:
		if m.dragging {
			m.engine.DragPan(p.Sub(m.dragFrom))
			m.dragFrom, m.dragged = p, true
		}
	case tea.MouseActionRelease:
		if m.dragging && !m.dragged {
			m.zoomAt(p)
		}
		m.dragging = false
	}
}

// zoomAt zooms to the directory under p, or to the directory holding the
// file under p.
func (m *TreemapModel) zoomAt(p geom.Point) {
	h, ok := m.engine.NodeAt(p)
	if !ok {
		return
	}
	if m.engine.ZoomTo(h) {
		return
	}
	if parent, ok := m.engine.Tree().Parent(h); ok {
		m.engine.ZoomTo(parent)
	}
}

// refreshExts collects the largest extensions of the current tree for the
// highlight key.
func (m *TreemapModel) refreshExts() {
	t := m.engine.Tree()
	if t == nil {
		return
	}
	stats := t.ExtensionStats()
	m.exts = m.exts[:0]
	for _, s := range stats {
		if len(m.exts) == highlightExts {
			break
		}
		m.exts = append(m.exts, s.Ext)
	}
	if m.extIdx >= len(m.exts) {
		m.extIdx = -1
		_ = m.engine.SetDimFilter("")
	}
}

// cycleHighlight steps through the largest extensions and then back to no
// filter.
func (m *TreemapModel) cycleHighlight() {
	if len(m.exts) == 0 {
		return
	}
	m.extIdx++
	if m.extIdx >= len(m.exts) {
		m.extIdx = -1
		_ = m.engine.SetDimFilter("")
		return
	}
	_ = m.engine.SetDimFilter(m.exts[m.extIdx])
}

func (m TreemapModel) gridRows() int { return max(1, m.height-statusRows) }

func (m TreemapModel) viewportRect() geom.Rect {
	return geom.Rect{W: float64(max(1, m.width) * cellW), H: float64(m.gridRows() * cellH)}
}

// =============================================================================
// View
// =============================================================================

func (m TreemapModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var body string
	if m.engine.Tree() == nil {
		body = lipgloss.Place(m.width, m.gridRows(), lipgloss.Center, lipgloss.Center,
			tuiScanningCard.Render(m.scanText()))
	} else {
		body = rasterize(m.rects, m.theme, m.width, m.gridRows())
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, m.statusLine(), m.help.View(m.keys))
}

func (m TreemapModel) scanText() string {
	st := m.engine.ScanState()
	if st.FilesScanned == 0 {
		return fmt.Sprintf("Scanning %s...", m.title)
	}
	return fmt.Sprintf("Scanning %s...\n%s files, %s", m.title,
		sizetree.FormatCount(st.FilesScanned), sizetree.FormatSize(st.BytesScanned))
}

// statusLine shows the path under the pointer (or the view center), the
// scan state and the active highlight.
func (m TreemapModel) statusLine() string {
	crumbs := m.engine.Breadcrumbs()
	if m.hovering {
		crumbs = m.engine.AncestorChain(m.hover)
	}
	names := make([]string, len(crumbs))
	for i, c := range crumbs {
		names[i] = c.Name
	}
	left := " " + breadcrumbLine(names)
	if len(crumbs) > 0 {
		left += "  " + sizetree.FormatSize(crumbs[len(crumbs)-1].Size)
	}

	var right []string
	if ext := m.engine.DimFilter(); ext != "" {
		right = append(right, "highlight "+ext)
	}
	style := tuiStatusStyle
	switch st := m.engine.ScanState(); {
	case m.err != nil:
		style = tuiErrorStyle
		right = append(right, "scan failed: "+errors.UserMessage(m.err))
	case st.Scanning:
		style = tuiScanStyle
		right = append(right, fmt.Sprintf("scanning %s files", sizetree.FormatCount(st.FilesScanned)))
	case st.Cancelled:
		right = append(right, "scan cancelled")
	}
	rightText := strings.Join(right, " · ") + " "

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(rightText)
	if gap < 1 {
		left = sizetree.Truncate(left, max(0, m.width-lipgloss.Width(rightText)-1))
		gap = max(0, m.width-lipgloss.Width(left)-lipgloss.Width(rightText))
	}
	return style.Render(left + strings.Repeat(" ", gap) + rightText)
}

// =============================================================================
// Rasterizer
// =============================================================================

type cell struct {
	bg, fg sink.RGB
	ch     rune
}

// rasterize paints the draw list onto a cols×rows grid of terminal cells.
// Rects are snapped to cell edges and those covering no cell are skipped.
func rasterize(rects []viewport.DrawRect, theme sink.Theme, cols, rows int) string {
	grid := make([][]cell, rows)
	for y := range grid {
		grid[y] = make([]cell, cols)
		for x := range grid[y] {
			grid[y][x] = cell{bg: sink.Background, fg: sink.Background, ch: ' '}
		}
	}

	for _, d := range rects {
		x0, x1 := snap(d.Rect.X, cellW, cols), snap(d.Rect.MaxX(), cellW, cols)
		y0, y1 := snap(d.Rect.Y, cellH, rows), snap(d.Rect.MaxY(), cellH, rows)
		if x1 <= x0 || y1 <= y0 {
			continue
		}

		bg := theme.Fill(d)
		if d.Kind == viewport.KindFile && d.Handle.Index%2 == 1 {
			bg = shade(bg, 0.85)
		}
		if d.Dim {
			bg = sink.Fade(bg)
		}
		fg := sink.TextColor(bg)
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				grid[y][x] = cell{bg: bg, fg: fg, ch: ' '}
			}
		}

		switch d.Kind {
		case viewport.KindHeader:
			putText(grid[y0], x0, x1, d.Label, false)
			if len(d.SizeLabel)+len(d.Label)+2 <= x1-x0 {
				putText(grid[y0], x0, x1, d.SizeLabel, true)
			}
		case viewport.KindFile:
			putText(grid[y0], x0, x1, d.Label, false)
			if y1-y0 > 1 {
				putText(grid[y0+1], x0, x1, d.SizeLabel, false)
			}
		}
	}

	var b strings.Builder
	for y, row := range grid {
		if y > 0 {
			b.WriteByte('\n')
		}
		writeRow(&b, row)
	}
	return b.String()
}

// snap maps a pixel coordinate to the nearest cell edge within [0, limit].
func snap(v float64, size, limit int) int {
	return min(max(int(math.Round(v/float64(size))), 0), limit)
}

// putText writes s into row between x0 and x1, left aligned or right
// aligned, truncated to fit.
func putText(row []cell, x0, x1 int, s string, right bool) {
	width := x1 - x0
	if s == "" || width <= 0 {
		return
	}
	runes := []rune(sizetree.Truncate(s, width))
	start := x0
	if right {
		start = x1 - len(runes)
	}
	for i, r := range runes {
		row[start+i].ch = r
	}
}

// writeRow emits row as runs of equally colored cells.
func writeRow(b *strings.Builder, row []cell) {
	for i := 0; i < len(row); {
		j := i
		var run strings.Builder
		for j < len(row) && row[j].bg == row[i].bg && row[j].fg == row[i].fg {
			run.WriteRune(row[j].ch)
			j++
		}
		style := lipgloss.NewStyle().
			Background(lipgloss.Color(row[i].bg.Hex())).
			Foreground(lipgloss.Color(row[i].fg.Hex()))
		b.WriteString(style.Render(run.String()))
		i = j
	}
}

func shade(c sink.RGB, f float64) sink.RGB {
	s := func(v uint8) uint8 { return uint8(float64(v) * f) }
	return sink.RGB{R: s(c.R), G: s(c.G), B: s(c.B)}
}
