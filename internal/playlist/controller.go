// Package playlist coordinates the per-track players: it keeps at most one
// track active, advances through the fixed order and drives the now-playing
// panel and visualizer from those transitions.
package playlist

import (
	"time"

	"github.com/olivier-w/nowplaying/internal/analysis"
	"github.com/rs/zerolog/log"
)

// restartThreshold is how far into a track "previous" restarts it instead of
// going back a track.
const restartThreshold = 3 * time.Second

// Player is one track's playback control.
type Player interface {
	Play() error
	Pause()
	IsPlaying() bool
	CurrentTime() time.Duration
	Duration() time.Duration
	SeekTo(d time.Duration) error
}

// Graph is the shared analysis graph.
type Graph interface {
	Resume() error
	Suspend() error
	Connect(src analysis.Source) error
}

// View reflects controller state on screen.
type View interface {
	// SetTrackPlaying flips a row's play/pause icon.
	SetTrackPlaying(id TrackID, playing bool)
	// SetPanelPlaying flips the now-playing panel's icon.
	SetPanelPlaying(playing bool)
	// ShowTrack expands the panel onto id with its time reset to 0:00.
	ShowTrack(id TrackID)
	// Highlight marks id's row as active; None clears the highlight.
	Highlight(id TrackID)
	// UpdateTime shows the active track's position.
	UpdateTime(d time.Duration)
}

// Visualizer is the render loop.
type Visualizer interface {
	Start()
	Stop()
	Clear()
}

type entry struct {
	player Player
	source analysis.Source
	tapped bool
}

// Controller owns the active-track pointer. It is driven from the UI's
// single-threaded update loop and needs no locking. Operations on tracks
// that have not finished loading are silent no-ops.
type Controller struct {
	order   *Order
	players map[TrackID]*entry
	active  TrackID

	graph Graph
	view  View
	vis   Visualizer

	resumeOnFocus bool
}

// New returns an idle controller over the tracks in order.
func New(order *Order, graph Graph, view View, vis Visualizer) *Controller {
	return &Controller{
		order:   order,
		players: make(map[TrackID]*entry),
		active:  None,
		graph:   graph,
		view:    view,
		vis:     vis,
	}
}

// Register makes a loaded track playable. src is the track's media output
// for the analysis tap. Registering an id twice replaces the player.
func (c *Controller) Register(id TrackID, p Player, src analysis.Source) {
	if _, ok := c.order.Position(id); !ok {
		log.Warn().Int("track", int(id)).Msg("ignoring player for unknown track")
		return
	}
	c.players[id] = &entry{player: p, source: src}
}

// Ready reports whether id has a player.
func (c *Controller) Ready(id TrackID) bool {
	return c.players[id] != nil
}

// Active returns the active track, or None when idle.
func (c *Controller) Active() TrackID { return c.active }

// Order returns the playback order.
func (c *Controller) Order() *Order { return c.order }

// Playing reports whether the active track is playing.
func (c *Controller) Playing() bool {
	e := c.players[c.active]
	return e != nil && e.player.IsPlaying()
}

// connect resumes the graph and taps id into it the first time it plays.
func (c *Controller) connect(id TrackID, e *entry) {
	if err := c.graph.Resume(); err != nil {
		log.Warn().Err(err).Msg("audio graph unavailable")
		return
	}
	if e.tapped || e.source == nil {
		return
	}
	if err := c.graph.Connect(e.source); err != nil {
		log.Warn().Err(err).Int("track", int(id)).Msg("tapping track into analyser")
		return
	}
	e.tapped = true
}

// PlayTrack makes id the active track and starts it, pausing whatever was
// playing before.
func (c *Controller) PlayTrack(id TrackID) {
	e := c.players[id]
	if e == nil {
		return
	}
	if c.active != None && c.active != id {
		if prev := c.players[c.active]; prev != nil {
			prev.player.Pause()
			c.view.SetTrackPlaying(c.active, false)
		}
	}

	c.connect(id, e)
	if err := e.player.Play(); err != nil {
		log.Warn().Err(err).Int("track", int(id)).Msg("starting playback")
		c.stalled()
		return
	}
	c.view.ShowTrack(id)
	c.view.Highlight(id)
	c.view.SetTrackPlaying(id, true)
	c.view.SetPanelPlaying(true)
	c.active = id
	c.vis.Start()
	log.Debug().Int("track", int(id)).Msg("playing")
}

// stalled settles the panel after a track refused to play. The active track,
// if any, has already been paused.
func (c *Controller) stalled() {
	if c.active == None {
		return
	}
	c.view.SetPanelPlaying(false)
	c.vis.Stop()
}

// PauseTrack pauses the active track and freezes the visualizer.
func (c *Controller) PauseTrack() {
	e := c.players[c.active]
	if e == nil {
		return
	}
	e.player.Pause()
	c.view.SetTrackPlaying(c.active, false)
	c.view.SetPanelPlaying(false)
	c.vis.Stop()
}

// PlayNext plays the track after the active one. After the last track the
// playlist stops: the canvas is blanked, the output suspended and the
// controller goes idle.
func (c *Controller) PlayNext() {
	if c.active == None {
		return
	}
	if next, ok := c.order.Next(c.active); ok {
		c.PlayTrack(next)
		return
	}
	c.PauseTrack()
	c.vis.Clear()
	c.view.Highlight(None)
	c.active = None
	if err := c.graph.Suspend(); err != nil {
		log.Warn().Err(err).Msg("suspending audio output")
	}
	log.Debug().Msg("playlist finished")
}

// PlayPrev restarts the active track when it is more than three seconds in,
// otherwise goes back a track. On the first track it restarts.
func (c *Controller) PlayPrev() {
	if c.active == None {
		return
	}
	e := c.players[c.active]
	if e != nil && e.player.CurrentTime() > restartThreshold {
		c.seek(e, 0)
		return
	}
	if prev, ok := c.order.Prev(c.active); ok {
		c.PlayTrack(prev)
		return
	}
	if e != nil {
		c.seek(e, 0)
	}
}

// Skip is the panel's next button: it advances but never stops at the end.
func (c *Controller) Skip() {
	if c.active == None {
		return
	}
	if next, ok := c.order.Next(c.active); ok {
		c.PlayTrack(next)
	}
}

// Toggle is a row's play button: it pauses id when it is the playing active
// track and plays it otherwise.
func (c *Controller) Toggle(id TrackID) {
	e := c.players[id]
	if e == nil {
		return
	}
	if c.active == id && e.player.IsPlaying() {
		c.PauseTrack()
		return
	}
	c.PlayTrack(id)
}

// TogglePlayback is the panel's play/pause button.
func (c *Controller) TogglePlayback() {
	e := c.players[c.active]
	if e == nil {
		return
	}
	if e.player.IsPlaying() {
		c.PauseTrack()
		return
	}
	c.connect(c.active, e)
	if err := e.player.Play(); err != nil {
		log.Warn().Err(err).Int("track", int(c.active)).Msg("resuming playback")
		c.stalled()
		return
	}
	c.view.SetTrackPlaying(c.active, true)
	c.view.SetPanelPlaying(true)
	c.vis.Start()
}

// SeekActive moves the active track by delta, clamped to the track.
func (c *Controller) SeekActive(delta time.Duration) {
	e := c.players[c.active]
	if e == nil {
		return
	}
	target := e.player.CurrentTime() + delta
	c.seek(e, max(0, min(target, e.player.Duration())))
}

func (c *Controller) seek(e *entry, d time.Duration) {
	if err := e.player.SeekTo(d); err != nil {
		log.Warn().Err(err).Dur("to", d).Msg("seeking")
		return
	}
	c.view.UpdateTime(d)
}

// Finished handles a track reaching its end and auto-advances. Finish
// events arrive queued, so one from a track that is no longer active, or
// that was restarted since, only settles its row.
func (c *Controller) Finished(id TrackID) {
	e := c.players[id]
	if e == nil || e.player.IsPlaying() {
		return
	}
	c.view.SetTrackPlaying(id, false)
	if id != c.active {
		return
	}
	c.PlayNext()
}

// TimeUpdate forwards a position report to the panel when it comes from
// the active track.
func (c *Controller) TimeUpdate(id TrackID, d time.Duration) {
	if id == c.active && c.active != None {
		c.view.UpdateTime(d)
	}
}

// Blur pauses playback while the terminal loses focus, remembering whether
// to resume.
func (c *Controller) Blur() {
	c.resumeOnFocus = c.Playing()
	if c.resumeOnFocus {
		c.PauseTrack()
	}
}

// Focus resumes playback paused by Blur.
func (c *Controller) Focus() {
	if !c.resumeOnFocus {
		return
	}
	c.resumeOnFocus = false
	if c.players[c.active] != nil {
		c.PlayTrack(c.active)
	}
}
