// Package waveform is the per-track widget: it owns a track's media, draws
// its peak outline with playback progress and relays the media's finish and
// time-update events onto the caller's event loop.
package waveform

import (
	"errors"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Media is the audio element a widget controls.
type Media interface {
	Play() error
	Pause()
	Playing() bool
	Position() time.Duration
	Duration() time.Duration
	SeekTo(d time.Duration) error
	OnFinish(fn func())
	OnTimeUpdate(fn func(time.Duration))
	Close() error
}

// Colors are the widget's rendering colours.
type Colors struct {
	Wave     lipgloss.TerminalColor
	Progress lipgloss.TerminalColor
}

// Options configure a widget.
type Options struct {
	Media Media
	// Peaks are per-chunk amplitudes in [0, 1]. They are normalized to the
	// loudest peak.
	Peaks []float64
	// Duration overrides the media's own duration when non-zero.
	Duration time.Duration
	Colors   Colors
	// Post runs fn on the caller's event loop. Media events are raised on
	// media goroutines; handlers only ever run through Post. A nil Post runs
	// handlers in place.
	Post func(fn func())
}

// ErrNoMedia is returned by Create when Options.Media is nil.
var ErrNoMedia = errors.New("waveform: no media")

// levels are the glyphs for a column, quietest first.
var levels = []rune("▁▂▃▄▅▆▇█")

// Widget is one track's waveform and playback control.
type Widget struct {
	media    Media
	peaks    []float64
	duration time.Duration
	post     func(fn func())

	mu       sync.Mutex
	colors   Colors
	onFinish func()
	onTime   func(time.Duration)
}

// Create builds a widget over opts.Media and subscribes to its events.
func Create(opts Options) (*Widget, error) {
	if opts.Media == nil {
		return nil, ErrNoMedia
	}
	w := &Widget{
		media:    opts.Media,
		peaks:    normalize(opts.Peaks),
		duration: opts.Duration,
		colors:   opts.Colors,
		post:     opts.Post,
	}
	if w.duration <= 0 {
		w.duration = opts.Media.Duration()
	}
	if w.post == nil {
		w.post = func(fn func()) { fn() }
	}

	opts.Media.OnFinish(func() {
		w.post(func() {
			if fn := w.finishHandler(); fn != nil {
				fn()
			}
		})
	})
	opts.Media.OnTimeUpdate(func(d time.Duration) {
		w.post(func() {
			if fn := w.timeHandler(); fn != nil {
				fn(d)
			}
		})
	})
	return w, nil
}

func normalize(peaks []float64) []float64 {
	peak := 0.0
	for _, p := range peaks {
		peak = math.Max(peak, math.Abs(p))
	}
	out := make([]float64, len(peaks))
	if peak == 0 {
		return out
	}
	for i, p := range peaks {
		out[i] = math.Abs(p) / peak
	}
	return out
}

// OnFinish registers fn to run when the media reaches its end.
func (w *Widget) OnFinish(fn func()) {
	w.mu.Lock()
	w.onFinish = fn
	w.mu.Unlock()
}

// OnTimeUpdate registers fn to receive the playback position while playing.
func (w *Widget) OnTimeUpdate(fn func(time.Duration)) {
	w.mu.Lock()
	w.onTime = fn
	w.mu.Unlock()
}

func (w *Widget) finishHandler() func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.onFinish
}

func (w *Widget) timeHandler() func(time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.onTime
}

func (w *Widget) Play() error         { return w.media.Play() }
func (w *Widget) Pause()              { w.media.Pause() }
func (w *Widget) IsPlaying() bool     { return w.media.Playing() }
func (w *Widget) MediaElement() Media { return w.media }

// CurrentTime returns the playback position.
func (w *Widget) CurrentTime() time.Duration { return w.media.Position() }

// Duration returns the track length.
func (w *Widget) Duration() time.Duration { return w.duration }

// SeekTo moves playback to d, clamped to [0, Duration].
func (w *Widget) SeekTo(d time.Duration) error {
	d = max(0, min(d, w.duration))
	return w.media.SeekTo(d)
}

// SeekRatio seeks to the fraction r of the track.
func (w *Widget) SeekRatio(r float64) error {
	return w.SeekTo(time.Duration(r * float64(w.duration)))
}

// SetOptions replaces the rendering colours.
func (w *Widget) SetOptions(c Colors) {
	w.mu.Lock()
	w.colors = c
	w.mu.Unlock()
}

// Colors returns the rendering colours.
func (w *Widget) Colors() Colors {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.colors
}

// Columns resamples the peaks to width columns, taking the loudest peak of
// each column's span.
func (w *Widget) Columns(width int) []float64 {
	if width <= 0 {
		return nil
	}
	cols := make([]float64, width)
	n := len(w.peaks)
	if n == 0 {
		return cols
	}
	for c := range width {
		lo := c * n / width
		hi := max(lo+1, (c+1)*n/width)
		for _, p := range w.peaks[lo:min(hi, n)] {
			cols[c] = math.Max(cols[c], p)
		}
	}
	return cols
}

// Progress returns the played fraction in [0, 1].
func (w *Widget) Progress() float64 {
	if w.duration <= 0 {
		return 0
	}
	return math.Max(0, math.Min(1, float64(w.CurrentTime())/float64(w.duration)))
}

// View renders the waveform width cells wide, the played part in the
// progress colour.
func (w *Widget) View(width int) string {
	cols := w.Columns(width)
	if len(cols) == 0 {
		return ""
	}
	colors := w.Colors()
	played := int(w.Progress() * float64(width))

	var done, rest strings.Builder
	for i, v := range cols {
		g := levels[int(math.Round(v*float64(len(levels)-1)))]
		if i < played {
			done.WriteRune(g)
		} else {
			rest.WriteRune(g)
		}
	}
	return paint(colors.Progress, done.String()) + paint(colors.Wave, rest.String())
}

func paint(c lipgloss.TerminalColor, s string) string {
	if s == "" || c == nil {
		return s
	}
	return lipgloss.NewStyle().Foreground(c).Render(s)
}

// Close releases the media.
func (w *Widget) Close() error { return w.media.Close() }
