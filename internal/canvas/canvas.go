// Package canvas is a small dot raster drawn with Unicode braille cells.
// Each terminal cell holds a 2x4 grid of dots, so a canvas of cols x rows
// cells is Width() = cols*2 by Height() = rows*4 dots, origin top-left.
package canvas

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille dot positions (col, row) → bit offset:
//
//	(0,0)=0  (1,0)=3
//	(0,1)=1  (1,1)=4
//	(0,2)=2  (1,2)=5
//	(0,3)=6  (1,3)=7
var brailleBits = [2][4]uint{
	{0, 1, 2, 6},
	{3, 4, 5, 7},
}

type point struct{ x, y float64 }

// Canvas is not safe for concurrent use; it is drawn and rendered from the
// UI loop only.
type Canvas struct {
	cols, rows int
	dots       []bool

	path  [][]point
	pen   point
	inSub bool
}

// New returns a blank canvas of cols x rows cells.
func New(cols, rows int) *Canvas {
	c := &Canvas{}
	c.Resize(cols, rows)
	return c
}

// Resize changes the cell size and blanks the canvas.
func (c *Canvas) Resize(cols, rows int) {
	c.cols = max(cols, 0)
	c.rows = max(rows, 0)
	c.dots = make([]bool, c.Width()*c.Height())
	c.path = nil
}

// Cols returns the width in cells.
func (c *Canvas) Cols() int { return c.cols }

// Rows returns the height in cells.
func (c *Canvas) Rows() int { return c.rows }

// Width returns the width in dots.
func (c *Canvas) Width() int { return c.cols * 2 }

// Height returns the height in dots.
func (c *Canvas) Height() int { return c.rows * 4 }

// Clear turns every dot off.
func (c *Canvas) Clear() {
	clear(c.dots)
}

// Blank reports whether no dot is on.
func (c *Canvas) Blank() bool {
	for _, d := range c.dots {
		if d {
			return false
		}
	}
	return true
}

// Set turns on the dot at (x, y). Dots outside the raster are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 || x >= c.Width() || y >= c.Height() {
		return
	}
	c.dots[y*c.Width()+x] = true
}

// At reports whether the dot at (x, y) is on.
func (c *Canvas) At(x, y int) bool {
	if x < 0 || y < 0 || x >= c.Width() || y >= c.Height() {
		return false
	}
	return c.dots[y*c.Width()+x]
}

// FillRect fills the w x h rectangle whose top-left dot is (x, y).
func (c *Canvas) FillRect(x, y, w, h int) {
	for dy := range max(h, 0) {
		for dx := range max(w, 0) {
			c.Set(x+dx, y+dy)
		}
	}
}

// FillRoundTopRect fills a rectangle whose two top corners are rounded with
// radius r. The radius is capped at half the width and the height.
func (c *Canvas) FillRoundTopRect(x, y, w, h, r int) {
	if w <= 0 || h <= 0 {
		return
	}
	r = max(0, min(r, w/2, h))
	for dy := range h {
		inset := 0
		if dy < r {
			// Distance from the corner circle's centre row.
			off := float64(r) - float64(dy) - 0.5
			inset = int(math.Round(float64(r) - math.Sqrt(float64(r*r)-off*off)))
		}
		for dx := inset; dx < w-inset; dx++ {
			c.Set(x+dx, y+dy)
		}
	}
}

// BeginPath discards the current path.
func (c *Canvas) BeginPath() {
	c.path = nil
	c.inSub = false
}

// MoveTo starts a new subpath at (x, y).
func (c *Canvas) MoveTo(x, y float64) {
	c.pen = point{x, y}
	c.path = append(c.path, []point{c.pen})
	c.inSub = true
}

// LineTo adds a straight segment from the pen to (x, y).
func (c *Canvas) LineTo(x, y float64) {
	if !c.inSub {
		c.MoveTo(x, y)
		return
	}
	c.pen = point{x, y}
	last := len(c.path) - 1
	c.path[last] = append(c.path[last], c.pen)
}

// QuadTo adds a quadratic Bézier segment from the pen to (x, y) with control
// point (cx, cy), flattened into short lines.
func (c *Canvas) QuadTo(cx, cy, x, y float64) {
	if !c.inSub {
		c.MoveTo(cx, cy)
	}
	p0 := c.pen
	span := math.Hypot(cx-p0.x, cy-p0.y) + math.Hypot(x-cx, y-cy)
	steps := max(2, int(math.Ceil(span/2)))
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		u := 1 - t
		c.LineTo(
			u*u*p0.x+2*u*t*cx+t*t*x,
			u*u*p0.y+2*u*t*cy+t*t*y,
		)
	}
}

// Stroke draws every subpath of the current path one dot wide.
func (c *Canvas) Stroke() {
	for _, sub := range c.path {
		if len(sub) == 1 {
			c.Set(int(math.Round(sub[0].x)), int(math.Round(sub[0].y)))
			continue
		}
		for i := 1; i < len(sub); i++ {
			c.line(sub[i-1], sub[i])
		}
	}
}

// line plots a segment with Bresenham's algorithm.
func (c *Canvas) line(a, b point) {
	x0, y0 := int(math.Round(a.x)), int(math.Round(a.y))
	x1, y1 := int(math.Round(b.x)), int(math.Round(b.y))
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Render returns the canvas as rows of braille cells in the given colour.
func (c *Canvas) Render(color lipgloss.TerminalColor) string {
	style := lipgloss.NewStyle().Foreground(color)
	lines := make([]string, c.rows)
	for row := range c.rows {
		var line strings.Builder
		for col := range c.cols {
			var pattern uint
			for dx := range 2 {
				for dy := range 4 {
					if c.At(col*2+dx, row*4+dy) {
						pattern |= 1 << brailleBits[dx][dy]
					}
				}
			}
			line.WriteRune(rune(0x2800 + pattern))
		}
		lines[row] = style.Render(line.String())
	}
	return strings.Join(lines, "\n")
}
