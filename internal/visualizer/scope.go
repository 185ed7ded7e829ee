package visualizer

import "github.com/olivier-w/nowplaying/internal/canvas"

const (
	ScopePoints = 128
	// ScopeLerp is the fraction of the distance each point moves toward its
	// new sample per frame.
	ScopeLerp = 0.35
)

// TimeDomainSource supplies byte time-domain samples centred at 128.
type TimeDomainSource interface {
	FFTSize() int
	ByteTimeDomainData(dst []byte)
}

// Scope draws an oscilloscope line. Its smoothed points persist across
// frames and tracks; they start at the centre line on first use.
type Scope struct {
	smoothed []float64
	data     []byte
}

func NewScope() *Scope {
	return &Scope{}
}

// Smoothed returns the current points in [0, 1], or nil before the first frame.
func (s *Scope) Smoothed() []float64 { return s.smoothed }

// Smooth downsamples samples to ScopePoints by a fixed stride and moves each
// point ScopeLerp of the way toward its sample.
func (s *Scope) Smooth(samples []byte) {
	if s.smoothed == nil {
		s.smoothed = make([]float64, ScopePoints)
		for i := range s.smoothed {
			s.smoothed[i] = 0.5
		}
	}
	if len(samples) == 0 {
		return
	}
	step := max(1, len(samples)/ScopePoints)
	for i := range s.smoothed {
		target := float64(samples[min(i*step, len(samples)-1)]) / 255
		s.smoothed[i] += (target - s.smoothed[i]) * ScopeLerp
	}
}

// Draw clears c, smooths toward src's latest samples and strokes the curve.
// It does nothing when either is missing.
func (s *Scope) Draw(c *canvas.Canvas, src TimeDomainSource) {
	if c == nil || src == nil {
		return
	}
	n := src.FFTSize()
	if cap(s.data) < n {
		s.data = make([]byte, n)
	}
	data := s.data[:n]
	src.ByteTimeDomainData(data)
	s.Smooth(data)
	s.stroke(c)
}

// Redraw strokes the current points without smoothing toward new samples.
func (s *Scope) Redraw(c *canvas.Canvas) {
	if c == nil {
		return
	}
	s.Smooth(nil)
	s.stroke(c)
}

func (s *Scope) stroke(c *canvas.Canvas) {
	c.Clear()
	width := float64(c.Width() - 1)
	height := float64(c.Height() - 1)
	if width < 0 || height < 0 {
		return
	}
	slice := width / (ScopePoints - 1)

	c.BeginPath()
	for i, v := range s.smoothed {
		x := float64(i) * slice
		y := v * height
		if i == 0 {
			c.MoveTo(x, y)
			continue
		}
		prevX := float64(i-1) * slice
		prevY := s.smoothed[i-1] * height
		// Control point at the previous sample, ending midway to this one.
		c.QuadTo(prevX, prevY, (prevX+x)/2, (prevY+y)/2)
	}
	c.LineTo(width, s.smoothed[ScopePoints-1]*height)
	c.Stroke()
}
