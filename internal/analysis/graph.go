package analysis

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog/log"
)

// Output is the audio device the graph keeps alive.
type Output interface {
	Suspend() error
	Resume() error
	Suspended() bool
}

// Source is a media output that can be tapped into the analyser.
type Source interface {
	AttachTap(w io.Writer) error
}

// Graph is the process-wide analysis graph: one output device and one
// analyser shared by every track. It is built on first use.
type Graph struct {
	open func() (Output, error)

	out      Output
	analyser *Analyser
	mu       sync.Mutex
}

// NewGraph returns a graph that calls open the first time it is needed.
func NewGraph(open func() (Output, error)) *Graph {
	return &Graph{open: open}
}

func (g *Graph) ensureLocked() error {
	if g.analyser != nil {
		return nil
	}
	out, err := g.open()
	if err != nil {
		return fmt.Errorf("opening audio graph: %w", err)
	}
	g.out = out
	g.analyser = NewAnalyser()
	log.Debug().Msg("audio graph created")
	return nil
}

// Resume builds the graph if needed and resumes a suspended output.
func (g *Graph) Resume() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.ensureLocked(); err != nil {
		return err
	}
	if !g.out.Suspended() {
		return nil
	}
	if err := g.out.Resume(); err != nil {
		return fmt.Errorf("resuming audio output: %w", err)
	}
	log.Debug().Msg("audio output resumed")
	return nil
}

// Suspend pauses the output device. It is a no-op before the graph exists.
func (g *Graph) Suspend() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.out == nil || g.out.Suspended() {
		return nil
	}
	if err := g.out.Suspend(); err != nil {
		return fmt.Errorf("suspending audio output: %w", err)
	}
	log.Debug().Msg("audio output suspended")
	return nil
}

// Connect taps src into the analyser. Callers connect each source once;
// a second connect surfaces the source's own error.
func (g *Graph) Connect(src Source) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.ensureLocked(); err != nil {
		return err
	}
	if err := src.AttachTap(g.analyser); err != nil {
		return fmt.Errorf("tapping source: %w", err)
	}
	return nil
}

// Analyser returns the shared analyser, or nil before the graph is built.
func (g *Graph) Analyser() *Analyser {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.analyser
}
