package ui

import (
	"errors"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/nowplaying/internal/analysis"
	"github.com/olivier-w/nowplaying/internal/catalog"
	"github.com/olivier-w/nowplaying/internal/playlist"
	"github.com/olivier-w/nowplaying/internal/prefs"
	"github.com/olivier-w/nowplaying/internal/theme"
	"github.com/olivier-w/nowplaying/internal/visualizer"
	"github.com/olivier-w/nowplaying/internal/waveform"
)

type fakeMedia struct {
	playing  bool
	pos      time.Duration
	dur      time.Duration
	closed   bool
	onFinish func()
	onTime   func(time.Duration)
}

func (f *fakeMedia) Play() error                         { f.playing = true; return nil }
func (f *fakeMedia) Pause()                              { f.playing = false }
func (f *fakeMedia) Playing() bool                       { return f.playing }
func (f *fakeMedia) Position() time.Duration             { return f.pos }
func (f *fakeMedia) Duration() time.Duration             { return f.dur }
func (f *fakeMedia) SeekTo(d time.Duration) error        { f.pos = d; return nil }
func (f *fakeMedia) OnFinish(fn func())                  { f.onFinish = fn }
func (f *fakeMedia) OnTimeUpdate(fn func(time.Duration)) { f.onTime = fn }
func (f *fakeMedia) Close() error                        { f.closed = true; return nil }

type fakeSource struct{ taps int }

func (s *fakeSource) AttachTap(io.Writer) error { s.taps++; return nil }

type fakeOutput struct{ suspended bool }

func (o *fakeOutput) Suspend() error  { o.suspended = true; return nil }
func (o *fakeOutput) Resume() error   { o.suspended = false; return nil }
func (o *fakeOutput) Suspended() bool { return o.suspended }

type harness struct {
	m       *Model
	store   *prefs.Store
	out     *fakeOutput
	media   map[int]*fakeMedia
	sources map[int]*fakeSource
}

func newHarness(t *testing.T, titles ...string) *harness {
	t.Helper()
	store, err := prefs.Open(":memory:")
	if err != nil {
		t.Fatalf("prefs.Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	h := &harness{
		store:   store,
		out:     &fakeOutput{},
		media:   make(map[int]*fakeMedia),
		sources: make(map[int]*fakeSource),
	}
	cat := &catalog.Catalog{}
	for i, title := range titles {
		cat.Tracks = append(cat.Tracks, catalog.Track{
			ID:            i,
			Title:         title,
			DurationLabel: "0:30",
			Duration:      30 * time.Second,
		})
	}
	load := func(tr catalog.Track, colors waveform.Colors, post func(fn func())) (Loaded, error) {
		med := &fakeMedia{dur: tr.Duration}
		w, err := waveform.Create(waveform.Options{
			Media:  med,
			Peaks:  []float64{0.2, 1, 0.5},
			Colors: colors,
			Post:   post,
		})
		if err != nil {
			return Loaded{}, err
		}
		src := &fakeSource{}
		h.media[tr.ID] = med
		h.sources[tr.ID] = src
		return Loaded{Widget: w, Source: src}, nil
	}
	graph := analysis.NewGraph(func() (analysis.Output, error) { return h.out, nil })

	h.m = New(Options{
		Catalog:        cat,
		Graph:          graph,
		Prefs:          store,
		Theme:          theme.Dark,
		DarkBackground: true,
		Mode:           visualizer.ModeBars,
		FPS:            30,
		Load:           load,
	})
	return h
}

func (h *harness) loadAll() {
	for _, r := range h.m.rows {
		h.m.Update(h.m.loadCmd(r.track)())
	}
}

func (h *harness) press(keys ...string) {
	for _, k := range keys {
		h.m.Update(keyMsg(k))
	}
}

// drain delivers every queued widget event.
func (h *harness) drain() {
	for {
		select {
		case fn := <-h.m.events:
			h.m.Update(postedMsg(fn))
		default:
			return
		}
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func TestRowsIgnoreControlsUntilLoaded(t *testing.T) {
	h := newHarness(t, "A", "B")
	h.press("enter")
	if h.m.Controller().Active() != playlist.None {
		t.Fatal("expected unloaded track to stay idle")
	}
	if !h.m.rows[0].loading {
		t.Fatal("expected row to still be loading")
	}

	h.loadAll()
	if h.m.rows[0].loading || h.m.rows[0].widget == nil {
		t.Fatal("expected row to be loaded")
	}
	if !h.m.Controller().Ready(0) || !h.m.Controller().Ready(1) {
		t.Fatal("expected both tracks registered")
	}
}

func TestEnterPlaysRowAndOpensPanel(t *testing.T) {
	h := newHarness(t, "A", "B")
	h.loadAll()
	h.press("enter")

	if !h.media[0].playing {
		t.Fatal("expected track A to play")
	}
	if !h.m.rows[0].playing || !h.m.panelPlaying {
		t.Fatal("expected row and panel icons to show playing")
	}
	if h.m.shown != 0 || h.m.highlight != 0 {
		t.Fatalf("shown = %d, highlight = %d, want 0, 0", h.m.shown, h.m.highlight)
	}
	if !h.m.loop.Running() {
		t.Fatal("expected visualizer loop to run")
	}
	if h.sources[0].taps != 1 {
		t.Fatalf("taps = %d, want 1", h.sources[0].taps)
	}
	if h.m.windowTitle != windowTitle("A", false) {
		t.Fatalf("window title = %q", h.m.windowTitle)
	}
}

func TestFailedLoadLeavesRowInert(t *testing.T) {
	h := newHarness(t, "A", "B")
	h.m.Update(trackLoadedMsg{id: 1, err: errors.New("peaks missing")})

	if !h.m.rows[1].failed || h.m.rows[1].loading {
		t.Fatal("expected row B to be marked failed")
	}
	h.press("down", "enter")
	if h.m.Controller().Active() != playlist.None {
		t.Fatal("expected failed track to stay unplayable")
	}
}

func TestPlayingAnotherRowPausesThePrevious(t *testing.T) {
	h := newHarness(t, "A", "B")
	h.loadAll()
	h.press("enter", "down", "enter")

	if h.media[0].playing || h.m.rows[0].playing {
		t.Fatal("expected track A to be paused")
	}
	if !h.media[1].playing || h.m.Controller().Active() != 1 {
		t.Fatal("expected track B to be active and playing")
	}
}

func TestFinishEventAdvancesToNextTrack(t *testing.T) {
	h := newHarness(t, "A", "B")
	h.loadAll()
	h.press("enter")

	h.media[0].playing = false
	h.media[0].onFinish()
	h.drain()

	if h.m.Controller().Active() != 1 || !h.media[1].playing {
		t.Fatalf("active = %d, want 1 playing", h.m.Controller().Active())
	}
	if h.m.cursor != 1 {
		t.Fatalf("cursor = %d, want to follow the active track", h.m.cursor)
	}
}

func TestFinishOnLastTrackClearsVisualizer(t *testing.T) {
	h := newHarness(t, "A", "B")
	h.loadAll()
	h.press("down", "enter")

	h.media[1].playing = false
	h.media[1].onFinish()
	h.drain()

	if h.m.Controller().Active() != playlist.None {
		t.Fatal("expected controller to go idle")
	}
	if h.m.loop.Running() || !h.m.loop.Canvas().Blank() {
		t.Fatal("expected stopped loop and blank canvas")
	}
	if h.m.highlight != playlist.None {
		t.Fatalf("highlight = %d, want none", h.m.highlight)
	}
	if !h.out.suspended {
		t.Fatal("expected output to be suspended")
	}
}

func TestTimeUpdatesOnlyFromActiveTrack(t *testing.T) {
	h := newHarness(t, "A", "B")
	h.loadAll()
	h.press("enter")

	h.media[1].onTime(7 * time.Second)
	h.drain()
	if h.m.elapsed != 0 {
		t.Fatalf("elapsed = %v after inactive update, want 0", h.m.elapsed)
	}

	h.media[0].onTime(4 * time.Second)
	h.drain()
	if h.m.elapsed != 4*time.Second {
		t.Fatalf("elapsed = %v, want 4s", h.m.elapsed)
	}
}

func TestPauseCancelsPendingFrame(t *testing.T) {
	h := newHarness(t, "A")
	h.loadAll()
	h.press("enter")
	if h.m.frames.Pending() != 1 {
		t.Fatalf("pending frames = %d, want 1", h.m.frames.Pending())
	}

	h.press(" ")
	if h.m.frames.Pending() != 0 {
		t.Fatalf("pending frames = %d after pause, want 0", h.m.frames.Pending())
	}
	if h.m.panelPlaying || h.media[0].playing {
		t.Fatal("expected panel play/pause to pause the track")
	}

	h.press(" ")
	if !h.media[0].playing || !h.m.loop.Running() {
		t.Fatal("expected panel play/pause to resume")
	}
}

func TestSeekKeysMoveActiveTrack(t *testing.T) {
	h := newHarness(t, "A")
	h.loadAll()
	h.press("enter")
	h.media[0].pos = 10 * time.Second

	h.press("right")
	if h.media[0].pos != 15*time.Second || h.m.elapsed != 15*time.Second {
		t.Fatalf("pos = %v, elapsed = %v, want 15s", h.media[0].pos, h.m.elapsed)
	}
	h.press("left", "left", "left", "left")
	if h.media[0].pos != 0 {
		t.Fatalf("pos = %v, want clamp to 0", h.media[0].pos)
	}
}

func TestPrevRestartsOrGoesBack(t *testing.T) {
	h := newHarness(t, "A", "B")
	h.loadAll()
	h.press("down", "enter")

	h.media[1].pos = 5 * time.Second
	h.press("p")
	if h.media[1].pos != 0 || h.m.Controller().Active() != 1 {
		t.Fatalf("expected restart of B, pos = %v active = %d", h.media[1].pos, h.m.Controller().Active())
	}

	h.media[1].pos = time.Second
	h.press("p")
	if h.m.Controller().Active() != 0 {
		t.Fatalf("active = %d, want 0", h.m.Controller().Active())
	}
}

func TestNextKeySkipsButStopsAtEnd(t *testing.T) {
	h := newHarness(t, "A", "B")
	h.loadAll()
	h.press("enter", "n")
	if h.m.Controller().Active() != 1 {
		t.Fatalf("active = %d, want 1", h.m.Controller().Active())
	}
	h.press("n")
	if h.m.Controller().Active() != 1 || !h.media[1].playing {
		t.Fatal("expected skip on the last track to keep playing it")
	}
}

func TestThemeKeyPersistsAndRecolorsWidgets(t *testing.T) {
	h := newHarness(t, "A")
	h.loadAll()
	h.press("t")

	if h.m.theme.Choice != theme.Retro {
		t.Fatalf("theme = %q, want retro", h.m.theme.Choice)
	}
	if got := h.store.GetOr(prefs.KeyTheme, ""); got != "retro" {
		t.Fatalf("stored theme = %q, want retro", got)
	}
	want := theme.PaletteFor(theme.Retro).Progress
	if got := h.m.rows[0].widget.Colors().Progress; got != want {
		t.Fatalf("widget progress colour = %v, want %v", got, want)
	}
}

func TestVisualizerKeyTogglesAndPersists(t *testing.T) {
	h := newHarness(t, "A")
	h.press("v")
	if h.m.loop.Mode() != visualizer.ModeOscilloscope {
		t.Fatalf("mode = %v, want oscilloscope", h.m.loop.Mode())
	}
	if got := h.store.GetOr(prefs.KeyVisualizer, ""); got != "oscilloscope" {
		t.Fatalf("stored mode = %q", got)
	}
	h.press("v")
	if h.m.loop.Mode() != visualizer.ModeBars {
		t.Fatal("expected toggle back to bars")
	}
}

func TestBlurPausesAndFocusResumes(t *testing.T) {
	h := newHarness(t, "A")
	h.loadAll()
	h.press("enter")

	h.m.Update(tea.BlurMsg{})
	if h.media[0].playing {
		t.Fatal("expected blur to pause")
	}
	h.m.Update(tea.FocusMsg{})
	if !h.media[0].playing {
		t.Fatal("expected focus to resume")
	}
}

func TestFocusDoesNotResumeUserPause(t *testing.T) {
	h := newHarness(t, "A")
	h.loadAll()
	h.press("enter", " ")

	h.m.Update(tea.BlurMsg{})
	h.m.Update(tea.FocusMsg{})
	if h.media[0].playing {
		t.Fatal("expected a user pause to survive focus changes")
	}
}

func TestClickOnWaveformSeeksWithoutPlaying(t *testing.T) {
	h := newHarness(t, "A")
	h.loadAll()
	h.m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})

	lay := h.m.layout()
	h.m.Update(tea.MouseMsg{
		X:      lay.waveX + lay.waveW/2,
		Y:      listTop,
		Action: tea.MouseActionPress,
		Button: tea.MouseButtonLeft,
	})
	if h.media[0].pos != 15*time.Second {
		t.Fatalf("pos = %v, want 15s", h.media[0].pos)
	}
	if h.media[0].playing {
		t.Fatal("expected waveform click not to start playback")
	}
}

func TestClickOnRowIconTogglesPlayback(t *testing.T) {
	h := newHarness(t, "A")
	h.loadAll()
	h.m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})

	click := tea.MouseMsg{X: 4, Y: listTop, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	h.m.Update(click)
	if !h.media[0].playing {
		t.Fatal("expected click to play")
	}
	h.m.Update(click)
	if h.media[0].playing {
		t.Fatal("expected second click to pause")
	}
}

func TestPanelHiddenUntilFirstPlay(t *testing.T) {
	h := newHarness(t, "A")
	h.loadAll()
	if lines := h.m.renderPanel(); lines != nil {
		t.Fatalf("expected hidden panel, got %d lines", len(lines))
	}

	h.press("enter")
	for range 500 {
		if h.m.spring.settled() {
			break
		}
		h.m.Update(springTickMsg(time.Now()))
	}
	if got := len(h.m.renderPanel()); got != panelLines {
		t.Fatalf("panel lines = %d, want %d", got, panelLines)
	}
}

func TestQuitClosesWidgets(t *testing.T) {
	h := newHarness(t, "A", "B")
	h.loadAll()
	_, cmd := h.m.Update(keyMsg("q"))

	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if !h.media[0].closed || !h.media[1].closed {
		t.Fatal("expected all tracks closed")
	}
	if h.m.View() != "" {
		t.Fatal("expected empty view after quit")
	}
}
