package ui

import (
	"errors"
	"fmt"
	"io/fs"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/nowplaying/internal/analysis"
	"github.com/olivier-w/nowplaying/internal/catalog"
	"github.com/olivier-w/nowplaying/internal/player"
	"github.com/olivier-w/nowplaying/internal/playlist"
	"github.com/olivier-w/nowplaying/internal/waveform"
	"github.com/rs/zerolog/log"
)

// Loaded is a track ready to play.
type Loaded struct {
	Widget *waveform.Widget
	Source analysis.Source
}

// TrackLoader builds a track's widget. It runs off the update loop; post
// must be handed to the widget so its events come back through Update.
type TrackLoader func(t catalog.Track, colors waveform.Colors, post func(fn func())) (Loaded, error)

// FileLoader loads peaks and audio from disk. A track without a peak file
// gets one generated with peakCount peaks.
func FileLoader(peakCount int) TrackLoader {
	return func(t catalog.Track, colors waveform.Colors, post func(fn func())) (Loaded, error) {
		peaks, err := loadOrGeneratePeaks(t, peakCount)
		if err != nil {
			return Loaded{}, err
		}

		p, err := player.New(t.AudioPath)
		if err != nil {
			return Loaded{}, fmt.Errorf("opening %s: %w", t.File, err)
		}
		w, err := waveform.Create(waveform.Options{
			Media:    p,
			Peaks:    peaks,
			Duration: t.Duration,
			Colors:   colors,
			Post:     post,
		})
		if err != nil {
			p.Close()
			return Loaded{}, err
		}
		return Loaded{Widget: w, Source: p}, nil
	}
}

func loadOrGeneratePeaks(t catalog.Track, n int) ([]float64, error) {
	peaks, err := catalog.LoadPeaks(t.PeaksPath)
	if err == nil {
		return peaks, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	peaks, _, err = catalog.GeneratePeaks(t.AudioPath, n)
	if err != nil {
		return nil, fmt.Errorf("generating peaks for %s: %w", t.File, err)
	}
	if werr := catalog.WritePeaks(t.PeaksPath, peaks); werr != nil {
		log.Debug().Err(werr).Str("path", t.PeaksPath).Msg("caching peaks")
	}
	return peaks, nil
}

func (m *Model) loadCmd(t catalog.Track) tea.Cmd {
	load, colors, post := m.load, waveColors(m.theme.Palette), m.post
	id := playlist.TrackID(t.ID)
	return func() tea.Msg {
		loaded, err := load(t, colors, post)
		return trackLoadedMsg{id: id, loaded: loaded, err: err}
	}
}

// post queues fn for the update loop. It gives up once the model quits.
func (m *Model) post(fn func()) {
	select {
	case m.events <- fn:
	case <-m.done:
	}
}

func (m *Model) waitForEvent() tea.Cmd {
	events, done := m.events, m.done
	return func() tea.Msg {
		select {
		case fn := <-events:
			return postedMsg(fn)
		case <-done:
			return nil
		}
	}
}
