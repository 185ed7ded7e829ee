package visualizer

import (
	"math"

	"github.com/olivier-w/nowplaying/internal/canvas"
)

// BarStyle is the bar renderer's geometry and response curve. Lengths are in
// canvas dots.
type BarStyle struct {
	Bars      int
	Gap       int
	MinWidth  int
	MaxRadius int
	MinHeight int

	// Tilt boosts bar i by 1 + t²·Tilt with t = i/bars, lifting the treble.
	Tilt float64
	// Exponent is applied to the normalized level to push low-energy noise
	// down and spread the loud end.
	Exponent float64
}

// DefaultBarStyle is tuned for a braille canvas a terminal wide.
var DefaultBarStyle = BarStyle{
	Bars:      48,
	Gap:       1,
	MinWidth:  1,
	MaxRadius: 1,
	MinHeight: 2,
	Tilt:      2.2,
	Exponent:  1.8,
}

// FrequencySource supplies byte frequency magnitudes.
type FrequencySource interface {
	FrequencyBinCount() int
	ByteFrequencyData(dst []byte)
}

// Bars draws an equalizer: one rounded-top bar per log-spaced bin range,
// anchored to the canvas bottom and centred horizontally.
type Bars struct {
	style BarStyle
	data  []byte

	bins    []Bin
	binsKey [2]int
}

func NewBars(style BarStyle) *Bars {
	return &Bars{style: style}
}

// Style returns the renderer's geometry.
func (b *Bars) Style() BarStyle { return b.style }

// Layout returns the bar width and the x offset that centres n bars across
// width dots.
func (s BarStyle) Layout(width, n int) (barWidth, offsetX int) {
	if n <= 0 {
		return 0, 0
	}
	barWidth = max(s.MinWidth, floorDiv(width-s.Gap*(n-1), n))
	offsetX = floorDiv(width-n*(barWidth+s.Gap)+s.Gap, 2)
	return barWidth, offsetX
}

// Level maps the average magnitude avg (0-255) of bar i of n to [0, 1].
func (s BarStyle) Level(avg float64, i, n int) float64 {
	t := float64(i) / float64(n)
	tilt := 1 + t*t*s.Tilt
	normalized := math.Min(avg*tilt/255, 1)
	return math.Pow(normalized, s.Exponent)
}

func (b *Bars) binsFor(bufferLength int) []Bin {
	key := [2]int{bufferLength, b.style.Bars}
	if b.bins == nil || b.binsKey != key {
		b.bins = LogBins(bufferLength, b.style.Bars)
		b.binsKey = key
	}
	return b.bins
}

// Draw clears c and draws one frame from src. It does nothing when either is
// missing.
func (b *Bars) Draw(c *canvas.Canvas, src FrequencySource) {
	if c == nil || src == nil {
		return
	}
	bufferLength := src.FrequencyBinCount()
	if cap(b.data) < bufferLength {
		b.data = make([]byte, bufferLength)
	}
	data := b.data[:bufferLength]
	src.ByteFrequencyData(data)

	c.Clear()
	bins := b.binsFor(bufferLength)
	n := len(bins)
	width, height := c.Width(), c.Height()
	barWidth, offsetX := b.style.Layout(width, n)
	radius := min(barWidth/2, b.style.MaxRadius)

	for i, bin := range bins {
		sum := 0
		for j := bin.Start; j < bin.End; j++ {
			sum += int(data[j])
		}
		var avg float64
		if bin.Len() > 0 {
			avg = float64(sum) / float64(bin.Len())
		}
		barHeight := max(b.style.MinHeight, int(math.Round(b.style.Level(avg, i, n)*float64(height))))
		x := offsetX + i*(barWidth+b.style.Gap)
		c.FillRoundTopRect(x, height-barHeight, barWidth, barHeight, radius)
	}
}

// floorDiv divides rounding toward negative infinity, so a crowded row
// centres to the left like Math.floor would.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
