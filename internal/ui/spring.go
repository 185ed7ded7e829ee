package ui

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// panelSpring animates the now-playing panel open. pos is the revealed
// fraction of the panel.
type panelSpring struct {
	spring harmonica.Spring
	pos    float64
	vel    float64
	target float64
}

func newPanelSpring(fps int) panelSpring {
	return panelSpring{spring: harmonica.NewSpring(harmonica.FPS(fps), 7.0, 0.8)}
}

func (s *panelSpring) open() { s.target = 1 }

// step advances one frame and reports whether the spring is still moving.
func (s *panelSpring) step() bool {
	s.pos, s.vel = s.spring.Update(s.pos, s.vel, s.target)
	if math.Abs(s.pos-s.target) < 0.005 && math.Abs(s.vel) < 0.01 {
		s.pos, s.vel = s.target, 0
		return false
	}
	return true
}

func (s *panelSpring) settled() bool {
	return s.pos == s.target && s.vel == 0
}

// rows returns how many of full rows are revealed.
func (s *panelSpring) rows(full int) int {
	n := int(math.Round(s.pos * float64(full)))
	return max(0, min(n, full))
}
