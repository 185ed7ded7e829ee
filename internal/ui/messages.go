package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/nowplaying/internal/playlist"
	"github.com/olivier-w/nowplaying/internal/visualizer"
)

// trackLoadedMsg is the result of one track's load command. Loads finish in
// any order.
type trackLoadedMsg struct {
	id     playlist.TrackID
	loaded Loaded
	err    error
}

// postedMsg carries a widget event onto the update loop.
type postedMsg func()

type frameMsg struct{ id visualizer.FrameID }

type springTickMsg time.Time

func springTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return springTickMsg(t)
	})
}
