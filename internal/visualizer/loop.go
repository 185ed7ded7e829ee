package visualizer

import (
	"fmt"

	"github.com/olivier-w/nowplaying/internal/canvas"
)

// Mode selects the renderer the loop draws with.
type Mode int

const (
	ModeBars Mode = iota
	ModeOscilloscope
)

func (m Mode) String() string {
	switch m {
	case ModeOscilloscope:
		return "oscilloscope"
	default:
		return "bars"
	}
}

// Next returns the other mode.
func (m Mode) Next() Mode {
	if m == ModeBars {
		return ModeOscilloscope
	}
	return ModeBars
}

// ParseMode parses "bars" or "oscilloscope".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "bars":
		return ModeBars, nil
	case "oscilloscope", "scope":
		return ModeOscilloscope, nil
	}
	return ModeBars, fmt.Errorf("unknown visualizer mode %q", s)
}

// FrameID identifies a pending frame callback.
type FrameID uint64

// Scheduler runs a callback once on the next display frame.
type Scheduler interface {
	RequestFrame(fn func()) FrameID
	// CancelFrame drops a pending callback. Once it returns the callback
	// will not run.
	CancelFrame(id FrameID)
}

// Analyser is everything the renderers read.
type Analyser interface {
	FrequencySource
	TimeDomainSource
}

// Loop draws one frame per display frame while running.
type Loop struct {
	sched  Scheduler
	canvas *canvas.Canvas
	// source returns the analyser to draw from; an untyped nil means none.
	source func() Analyser

	bars  *Bars
	scope *Scope
	mode  Mode

	cols, rows int
	running    bool
	frame      FrameID
}

// NewLoop returns a stopped loop drawing onto c.
func NewLoop(sched Scheduler, c *canvas.Canvas, source func() Analyser, style BarStyle) *Loop {
	return &Loop{
		sched:  sched,
		canvas: c,
		source: source,
		bars:   NewBars(style),
		scope:  NewScope(),
		cols:   c.Cols(),
		rows:   c.Rows(),
	}
}

// Canvas returns the canvas the loop draws on.
func (l *Loop) Canvas() *canvas.Canvas { return l.canvas }

// Scope returns the oscilloscope renderer.
func (l *Loop) Scope() *Scope { return l.scope }

// Running reports whether a frame is scheduled.
func (l *Loop) Running() bool { return l.running }

// Mode returns the active renderer.
func (l *Loop) Mode() Mode { return l.mode }

// SetMode switches renderer. It takes effect on the next frame.
func (l *Loop) SetMode(m Mode) { l.mode = m }

// ToggleMode switches to the other renderer and returns it.
func (l *Loop) ToggleMode() Mode {
	l.mode = l.mode.Next()
	return l.mode
}

// Resize records the container size in cells. A running loop resizes its
// canvas immediately; a stopped one on the next Start.
func (l *Loop) Resize(cols, rows int) {
	l.cols, l.rows = cols, rows
	if l.running {
		l.canvas.Resize(cols, rows)
	}
}

// Start fits the canvas to its container and schedules the first frame. It
// is a no-op while running.
func (l *Loop) Start() {
	if l.running {
		return
	}
	if l.canvas.Cols() != l.cols || l.canvas.Rows() != l.rows {
		l.canvas.Resize(l.cols, l.rows)
	}
	l.running = true
	l.frame = l.sched.RequestFrame(l.tick)
}

// Stop cancels the pending frame, leaving the last frame on the canvas.
// Stopping a stopped loop does nothing.
func (l *Loop) Stop() {
	if !l.running {
		return
	}
	l.sched.CancelFrame(l.frame)
	l.running = false
}

// Clear stops the loop and blanks the canvas.
func (l *Loop) Clear() {
	l.Stop()
	l.canvas.Clear()
}

func (l *Loop) tick() {
	if !l.running {
		return
	}
	l.DrawFrame()
	l.frame = l.sched.RequestFrame(l.tick)
}

// DrawFrame draws exactly one frame with the active renderer.
func (l *Loop) DrawFrame() {
	src := l.analyser()
	if src == nil {
		return
	}
	switch l.mode {
	case ModeOscilloscope:
		l.scope.Draw(l.canvas, src)
	default:
		l.bars.Draw(l.canvas, src)
	}
}

// Redraw repaints a stopped loop in the current mode. The oscilloscope keeps
// its points instead of easing toward the frozen samples.
func (l *Loop) Redraw() {
	if l.analyser() == nil {
		return
	}
	if l.mode == ModeOscilloscope {
		l.scope.Redraw(l.canvas)
		return
	}
	l.DrawFrame()
}

func (l *Loop) analyser() Analyser {
	if l.source == nil {
		return nil
	}
	return l.source()
}
