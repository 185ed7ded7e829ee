package player

import (
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
)

// Metadata holds the tag fields shown for a track.
type Metadata struct {
	Title  string
	Artist string
}

// ReadMetadata reads ID3v2 tags, falling back to the file name for the title.
func ReadMetadata(path string) Metadata {
	var m Metadata
	if tag, err := id3v2.Open(path, id3v2.Options{Parse: true}); err == nil {
		m.Title = strings.TrimSpace(tag.Title())
		m.Artist = strings.TrimSpace(tag.Artist())
		tag.Close()
	}
	if m.Title == "" {
		base := filepath.Base(path)
		m.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return m
}
