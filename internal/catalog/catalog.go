// Package catalog loads the fixed track list: a music.json (or m3u/pls)
// next to the audio files, with one peak file per track.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/olivier-w/nowplaying/internal/config"
	"github.com/olivier-w/nowplaying/internal/player"
	"github.com/olivier-w/nowplaying/internal/util"
	"github.com/rs/zerolog/log"
)

// Track is one playable catalog entry. ID is its position in the catalog.
type Track struct {
	ID            int
	Title         string
	File          string
	AudioPath     string
	PeaksPath     string
	DurationLabel string
	Duration      time.Duration
}

// entry is one element of music.json.
type entry struct {
	Title    string `json:"title"`
	File     string `json:"file"`
	Duration string `json:"duration"`
}

// Catalog is the ordered track list. It is never modified after Load.
type Catalog struct {
	Tracks []Track
}

// Len returns the number of tracks.
func (c *Catalog) Len() int { return len(c.Tracks) }

// Track returns the track with the given ID.
func (c *Catalog) Track(id int) (Track, bool) {
	if id < 0 || id >= len(c.Tracks) {
		return Track{}, false
	}
	return c.Tracks[id], true
}

// Load reads the catalog named by cfg. Entries whose audio file is missing
// are dropped.
func Load(cfg config.Config) (*Catalog, error) {
	path := cfg.CatalogPath()
	var entries []entry
	var err error
	if IsPlaylistExt(filepath.Ext(path)) {
		entries, err = playlistEntries(path, cfg.LibraryDir)
	} else {
		entries, err = readEntries(path)
	}
	if err != nil {
		return nil, err
	}

	c := &Catalog{}
	for _, e := range entries {
		audio := e.File
		if !filepath.IsAbs(audio) {
			audio = filepath.Join(cfg.LibraryDir, audio)
		}
		if !isFile(audio) {
			log.Debug().Str("file", e.File).Msg("skipping catalog entry without audio")
			continue
		}
		if !IsSupportedExt(filepath.Ext(audio)) {
			log.Warn().Str("file", e.File).Msgf("unsupported format (want %s)", SupportedExtsList())
			continue
		}

		t := Track{
			ID:            len(c.Tracks),
			Title:         strings.TrimSpace(e.Title),
			File:          e.File,
			AudioPath:     audio,
			PeaksPath:     filepath.Join(cfg.PeaksPath(), PeaksFileName(audio)),
			DurationLabel: strings.TrimSpace(e.Duration),
		}
		if t.Title == "" {
			t.Title = player.ReadMetadata(audio).Title
		}
		if t.DurationLabel != "" {
			d, err := util.ParseDuration(t.DurationLabel)
			if err != nil {
				log.Warn().Err(err).Str("file", e.File).Msg("bad duration label")
			}
			t.Duration = d
		}
		c.Tracks = append(c.Tracks, t)
	}
	return c, nil
}

func readEntries(path string) ([]entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	var entries []entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", filepath.Base(path), err)
	}
	return entries, nil
}

func playlistEntries(path, libraryDir string) ([]entry, error) {
	paths, err := ParseLocalPlaylist(path)
	if err != nil {
		return nil, err
	}
	entries := make([]entry, 0, len(paths))
	for _, p := range paths {
		if rel, err := filepath.Rel(libraryDir, p); err == nil && !strings.HasPrefix(rel, "..") {
			p = rel
		}
		entries = append(entries, entry{File: p})
	}
	return entries, nil
}
