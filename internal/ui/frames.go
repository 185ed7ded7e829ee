package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/nowplaying/internal/visualizer"
)

// frameScheduler runs visualizer frames on bubbletea ticks. Callbacks only
// run from Update, so cancelling a frame is just forgetting its id: the tick
// still arrives but finds nothing to run.
type frameScheduler struct {
	interval time.Duration
	next     visualizer.FrameID
	pending  map[visualizer.FrameID]func()
	unarmed  []visualizer.FrameID
}

func newFrameScheduler(fps int) *frameScheduler {
	if fps < 1 {
		fps = 1
	}
	return &frameScheduler{
		interval: time.Second / time.Duration(fps),
		pending:  make(map[visualizer.FrameID]func()),
	}
}

func (s *frameScheduler) RequestFrame(fn func()) visualizer.FrameID {
	s.next++
	s.pending[s.next] = fn
	s.unarmed = append(s.unarmed, s.next)
	return s.next
}

func (s *frameScheduler) CancelFrame(id visualizer.FrameID) {
	delete(s.pending, id)
}

// Cmd returns the ticks for frames requested since the last call.
func (s *frameScheduler) Cmd() tea.Cmd {
	if len(s.unarmed) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(s.unarmed))
	for _, id := range s.unarmed {
		if _, ok := s.pending[id]; !ok {
			continue
		}
		cmds = append(cmds, tea.Tick(s.interval, func(time.Time) tea.Msg {
			return frameMsg{id: id}
		}))
	}
	s.unarmed = s.unarmed[:0]
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// Fire runs frame id if it is still pending and reports whether it ran.
func (s *frameScheduler) Fire(id visualizer.FrameID) bool {
	fn, ok := s.pending[id]
	if !ok {
		return false
	}
	delete(s.pending, id)
	fn()
	return true
}

// Pending returns the number of frames waiting to run.
func (s *frameScheduler) Pending() int { return len(s.pending) }
