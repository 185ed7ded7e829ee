package visualizer

import (
	"math"
	"testing"

	"github.com/olivier-w/nowplaying/internal/canvas"
)

func TestScopeStartsAtCentre(t *testing.T) {
	s := NewScope()
	if s.Smoothed() != nil {
		t.Fatal("expected no buffer before the first frame")
	}
	s.Smooth(nil)
	for i, v := range s.Smoothed() {
		if v != 0.5 {
			t.Fatalf("point %d = %v, want 0.5", i, v)
		}
	}
}

func TestScopeConvergesGeometrically(t *testing.T) {
	s := NewScope()
	samples := make([]byte, 1024)
	for i := range samples {
		samples[i] = 255
	}

	prevErr := 0.5
	for frame := range 20 {
		s.Smooth(samples)
		err := math.Abs(1 - s.Smoothed()[0])
		want := prevErr * (1 - ScopeLerp)
		if math.Abs(err-want) > 1e-12 {
			t.Fatalf("frame %d error = %v, want %v", frame, err, want)
		}
		prevErr = err
	}
	if prevErr > 1e-3 {
		t.Fatalf("expected convergence, error still %v", prevErr)
	}
}

func TestScopeIsStableAtEquilibrium(t *testing.T) {
	s := NewScope()
	samples := make([]byte, 1024)
	for i := range samples {
		samples[i] = 51 // 0.2
	}
	for range 200 {
		s.Smooth(samples)
	}
	before := append([]float64(nil), s.Smoothed()...)
	s.Smooth(samples)
	for i, v := range s.Smoothed() {
		if math.Abs(v-before[i]) > 1e-12 || math.Abs(v-0.2) > 1e-9 {
			t.Fatalf("point %d moved at equilibrium: %v -> %v", i, before[i], v)
		}
	}
}

func TestScopeDownsamplesByStride(t *testing.T) {
	s := NewScope()
	samples := make([]byte, 1024)
	for i := range samples {
		if i%8 == 0 {
			samples[i] = 255
		}
	}
	s.Smooth(samples)
	want := 0.5 + 0.5*ScopeLerp
	for i, v := range s.Smoothed() {
		if math.Abs(v-want) > 1e-12 {
			t.Fatalf("point %d = %v, want %v (stride 8 picks every eighth sample)", i, v, want)
		}
	}
}

func TestScopePersistsAcrossCalls(t *testing.T) {
	s := NewScope()
	s.Smooth([]byte{255})
	first := s.Smoothed()[0]
	s.Smooth([]byte{255})
	if s.Smoothed()[0] <= first {
		t.Fatal("expected smoothing state to carry over between frames")
	}
}

func TestScopeDrawFlatLineSpansCanvas(t *testing.T) {
	c := canvas.New(20, 2)
	NewScope().Draw(c, silentAnalyser())

	mid := int(math.Round(128.0 / 255 * 0.5 * 2 * float64(c.Height()-1)))
	for x := range c.Width() {
		if !c.At(x, mid) && !c.At(x, mid-1) && !c.At(x, mid+1) {
			t.Fatalf("column %d missing from the centre line", x)
		}
	}
}

func TestScopeRedrawKeepsPoints(t *testing.T) {
	s := NewScope()
	s.Smooth([]byte{255})
	before := append([]float64(nil), s.Smoothed()...)

	c := canvas.New(20, 2)
	s.Redraw(c)
	s.Redraw(c)
	for i, v := range s.Smoothed() {
		if v != before[i] {
			t.Fatalf("point %d = %v after Redraw, want %v", i, v, before[i])
		}
	}
	if c.Blank() {
		t.Fatal("expected Redraw to stroke the curve")
	}
}
