// Package ui is the now-playing page: the track list with one waveform per
// row, and the now-playing panel with its visualizer.
package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/nowplaying/internal/analysis"
	"github.com/olivier-w/nowplaying/internal/canvas"
	"github.com/olivier-w/nowplaying/internal/catalog"
	"github.com/olivier-w/nowplaying/internal/player"
	"github.com/olivier-w/nowplaying/internal/playlist"
	"github.com/olivier-w/nowplaying/internal/prefs"
	"github.com/olivier-w/nowplaying/internal/theme"
	"github.com/olivier-w/nowplaying/internal/visualizer"
	"github.com/olivier-w/nowplaying/internal/waveform"
	"github.com/rs/zerolog/log"
)

const (
	seekStep       = 5 * time.Second
	visualizerRows = 6
	defaultWidth   = 80
)

// Options configure the model.
type Options struct {
	Catalog *catalog.Catalog
	// Graph is the shared analysis graph. Nil builds one over the default
	// audio output.
	Graph *analysis.Graph
	// Prefs stores the theme and visualizer choices. Nil keeps them for the
	// session only.
	Prefs          *prefs.Store
	Theme          theme.Choice
	DarkBackground bool
	Mode           visualizer.Mode
	Bars           int
	FPS            int
	// Load builds each track's widget. Nil loads from disk.
	Load TrackLoader
}

type row struct {
	track   catalog.Track
	widget  *waveform.Widget
	loading bool
	failed  bool
	playing bool
}

// Model is the bubbletea model for the now-playing page. It is used by
// pointer: the playlist controller holds it as its view.
type Model struct {
	rows      []row
	cursor    int
	offset    int
	highlight playlist.TrackID

	ctrl   *playlist.Controller
	graph  *analysis.Graph
	loop   *visualizer.Loop
	frames *frameScheduler
	load   TrackLoader
	prefs  *prefs.Store

	shown          playlist.TrackID
	panelPlaying   bool
	elapsed        time.Duration
	spring         panelSpring
	springTicking  bool
	springInterval time.Duration

	theme    theme.Theme
	darkBG   bool
	styles   styles
	spinner  spinner.Model
	progress progress.Model
	help     help.Model

	events chan func()
	done   chan struct{}

	width       int
	height      int
	windowTitle string
	quitting    bool
}

// New builds the page over opts.Catalog. Nothing is loaded until Init.
func New(opts Options) *Model {
	fps := max(1, opts.FPS)
	m := &Model{
		highlight:      playlist.None,
		shown:          playlist.None,
		graph:          opts.Graph,
		load:           opts.Load,
		prefs:          opts.Prefs,
		darkBG:         opts.DarkBackground,
		frames:         newFrameScheduler(fps),
		spring:         newPanelSpring(fps),
		springInterval: time.Second / time.Duration(fps),
		help:           help.New(),
		events:         make(chan func(), 64),
		done:           make(chan struct{}),
		width:          defaultWidth,
	}
	if m.graph == nil {
		m.graph = analysis.NewGraph(openSharedOutput)
	}
	if m.load == nil {
		m.load = FileLoader(catalog.DefaultPeakCount)
	}

	ids := make([]playlist.TrackID, 0, len(opts.Catalog.Tracks))
	for _, t := range opts.Catalog.Tracks {
		m.rows = append(m.rows, row{track: t, loading: true})
		ids = append(ids, playlist.TrackID(t.ID))
	}

	style := visualizer.DefaultBarStyle
	if opts.Bars > 0 {
		style.Bars = opts.Bars
	}
	m.loop = visualizer.NewLoop(m.frames, canvas.New(m.canvasCols(), visualizerRows), m.analyser, style)
	m.loop.SetMode(opts.Mode)
	m.ctrl = playlist.New(playlist.NewOrder(ids), m.graph, m, m.loop)

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot
	m.applyTheme(theme.New(opts.Theme, opts.DarkBackground))
	m.progress.Width = progressWidth(m.canvasCols())
	return m
}

func openSharedOutput() (analysis.Output, error) {
	out, err := player.SharedOutput()
	if err != nil {
		return nil, err
	}
	return out, nil
}

// analyser hands the loop the graph's analyser, or an untyped nil before
// the graph exists.
func (m *Model) analyser() visualizer.Analyser {
	if a := m.graph.Analyser(); a != nil {
		return a
	}
	return nil
}

// Controller returns the playlist controller.
func (m *Model) Controller() *playlist.Controller { return m.ctrl }

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.waitForEvent(), tea.SetWindowTitle("nowplaying")}
	for _, r := range m.rows {
		cmds = append(cmds, m.loadCmd(r.track))
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.handleMsg(msg)
	if m.quitting {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.frames.Cmd(), m.animate(), m.titleCmd())
}

func (m *Model) handleMsg(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width - 4
		m.progress.Width = progressWidth(m.canvasCols())
		m.loop.Resize(m.canvasCols(), visualizerRows)
		m.ensureVisible(m.cursor)
		return nil

	case tea.BlurMsg:
		m.ctrl.Blur()
		return nil

	case tea.FocusMsg:
		m.ctrl.Focus()
		return nil

	case trackLoadedMsg:
		m.handleLoaded(msg)
		return nil

	case postedMsg:
		msg()
		return m.waitForEvent()

	case frameMsg:
		m.frames.Fire(msg.id)
		return nil

	case springTickMsg:
		m.springTicking = false
		return nil

	case spinner.TickMsg:
		if !m.anyLoading() {
			return nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Quit):
		return m.quit()
	case key.Matches(msg, keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, keys.Toggle):
		if m.cursor < len(m.rows) {
			m.ctrl.Toggle(playlist.TrackID(m.rows[m.cursor].track.ID))
		}
	case key.Matches(msg, keys.PlayPause):
		m.ctrl.TogglePlayback()
	case key.Matches(msg, keys.Next):
		m.ctrl.Skip()
	case key.Matches(msg, keys.Prev):
		m.ctrl.PlayPrev()
	case key.Matches(msg, keys.SeekBack):
		m.ctrl.SeekActive(-seekStep)
	case key.Matches(msg, keys.SeekFwd):
		m.ctrl.SeekActive(seekStep)
	case key.Matches(msg, keys.Mode):
		mode := m.loop.ToggleMode()
		m.savePref(prefs.KeyVisualizer, mode.String())
		if !m.loop.Running() && m.ctrl.Active() != playlist.None {
			m.loop.Redraw()
		}
	case key.Matches(msg, keys.Theme):
		m.setTheme(m.theme.Choice.Next())
	}
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if msg.Action != tea.MouseActionPress {
		return
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.moveCursor(-1)
	case tea.MouseButtonWheelDown:
		m.moveCursor(1)
	case tea.MouseButtonLeft:
		i, ok := m.rowAt(msg.Y)
		if !ok {
			return
		}
		lay := m.layout()
		switch {
		case lay.waveW > 0 && msg.X >= lay.waveX && msg.X < lay.waveX+lay.waveW:
			m.seekRow(i, float64(msg.X-lay.waveX)/float64(lay.waveW))
		case msg.X < lay.waveX:
			m.cursor = i
			m.ctrl.Toggle(playlist.TrackID(m.rows[i].track.ID))
		}
	}
}

// seekRow seeks a row's waveform without starting it.
func (m *Model) seekRow(i int, ratio float64) {
	w := m.rows[i].widget
	if w == nil {
		return
	}
	if err := w.SeekRatio(ratio); err != nil {
		log.Warn().Err(err).Int("track", m.rows[i].track.ID).Msg("seeking from waveform")
		return
	}
	if playlist.TrackID(m.rows[i].track.ID) == m.ctrl.Active() {
		m.UpdateTime(time.Duration(ratio * float64(w.Duration())))
	}
}

func (m *Model) handleLoaded(msg trackLoadedMsg) {
	r := m.row(msg.id)
	if r == nil {
		return
	}
	r.loading = false
	if msg.err == nil && msg.loaded.Widget == nil {
		msg.err = waveform.ErrNoMedia
	}
	if msg.err != nil {
		r.failed = true
		log.Warn().Err(msg.err).Int("track", int(msg.id)).Str("file", r.track.File).Msg("track unavailable")
		return
	}

	w, id := msg.loaded.Widget, msg.id
	w.SetOptions(waveColors(m.theme.Palette))
	w.OnFinish(func() { m.ctrl.Finished(id) })
	w.OnTimeUpdate(func(d time.Duration) { m.ctrl.TimeUpdate(id, d) })
	r.widget = w
	m.ctrl.Register(id, w, msg.loaded.Source)
	log.Debug().Int("track", int(id)).Str("title", r.track.Title).Msg("track loaded")
}

func (m *Model) quit() tea.Cmd {
	if m.quitting {
		return tea.Quit
	}
	m.quitting = true
	m.loop.Stop()
	close(m.done)
	for _, r := range m.rows {
		if r.widget == nil {
			continue
		}
		if err := r.widget.Close(); err != nil {
			log.Debug().Err(err).Int("track", r.track.ID).Msg("closing track")
		}
	}
	return tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
}

func (m *Model) setTheme(c theme.Choice) {
	m.applyTheme(theme.New(c, m.darkBG))
	m.savePref(prefs.KeyTheme, string(c))
	colors := waveColors(m.theme.Palette)
	for _, r := range m.rows {
		if r.widget != nil {
			r.widget.SetOptions(colors)
		}
	}
	log.Debug().Str("theme", string(c)).Str("resolved", string(m.theme.Resolved)).Msg("theme changed")
}

func (m *Model) applyTheme(t theme.Theme) {
	m.theme = t
	m.styles = newStyles(t.Palette)
	m.spinner.Style = m.styles.spinner
	m.help.Styles = helpStyles(t.Palette)

	width := m.progress.Width
	m.progress = progress.New(
		progress.WithSolidFill(string(t.Palette.Progress)),
		progress.WithoutPercentage(),
	)
	m.progress.Full = '━'
	m.progress.Empty = '─'
	m.progress.EmptyColor = string(t.Palette.Wave)
	if width > 0 {
		m.progress.Width = width
	}
}

func (m *Model) savePref(k, v string) {
	if m.prefs == nil {
		return
	}
	if err := m.prefs.Set(k, v); err != nil {
		log.Warn().Err(err).Str("key", k).Msg("saving preference")
	}
}

// animate starts the panel spring ticking when it has somewhere to go.
func (m *Model) animate() tea.Cmd {
	if m.springTicking || m.spring.settled() {
		return nil
	}
	m.spring.step()
	m.springTicking = true
	return springTickCmd(m.springInterval)
}

func (m *Model) titleCmd() tea.Cmd {
	title := "nowplaying"
	if r := m.row(m.shown); r != nil {
		title = windowTitle(r.track.Title, !m.panelPlaying)
	}
	if title == m.windowTitle {
		return nil
	}
	m.windowTitle = title
	return tea.SetWindowTitle(title)
}

func (m *Model) row(id playlist.TrackID) *row {
	if id < 0 || int(id) >= len(m.rows) {
		return nil
	}
	return &m.rows[id]
}

func (m *Model) anyLoading() bool {
	for _, r := range m.rows {
		if r.loading {
			return true
		}
	}
	return false
}

func (m *Model) moveCursor(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor = max(0, min(m.cursor+delta, len(m.rows)-1))
	m.ensureVisible(m.cursor)
}

func (m *Model) ensureVisible(i int) {
	n := m.listHeight()
	if i < m.offset {
		m.offset = i
	}
	if i >= m.offset+n {
		m.offset = i - n + 1
	}
	m.offset = max(0, min(m.offset, len(m.rows)-n))
}

// SetTrackPlaying implements playlist.View.
func (m *Model) SetTrackPlaying(id playlist.TrackID, playing bool) {
	if r := m.row(id); r != nil {
		r.playing = playing
	}
}

// SetPanelPlaying implements playlist.View.
func (m *Model) SetPanelPlaying(playing bool) { m.panelPlaying = playing }

// ShowTrack implements playlist.View. The panel opens on first use.
func (m *Model) ShowTrack(id playlist.TrackID) {
	m.shown = id
	m.elapsed = 0
	m.spring.open()
}

// Highlight implements playlist.View. The cursor follows the active track.
func (m *Model) Highlight(id playlist.TrackID) {
	m.highlight = id
	if id != playlist.None && m.row(id) != nil {
		m.cursor = int(id)
		m.ensureVisible(m.cursor)
	}
}

// UpdateTime implements playlist.View.
func (m *Model) UpdateTime(d time.Duration) { m.elapsed = d }
