package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds runtime settings. Environment variables seed it and
// command-line flags override individual fields.
type Config struct {
	LibraryDir string // directory holding music.json and the audio files
	Catalog    string // catalog file name, relative to LibraryDir unless absolute
	PeaksDir   string // peak JSON directory, relative to LibraryDir unless absolute
	StatePath  string // sqlite file for persisted preferences

	LogPath  string // empty disables logging
	LogLevel string

	Visualizer string // "bars" or "oscilloscope"
	Bars       int    // requested equalizer bar count before deduplication
	FPS        int    // visualizer frame rate
	PeakCount  int    // peaks per track when generating
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LibraryDir: ".",
		Catalog:    "music.json",
		PeaksDir:   "peaks",
		StatePath:  defaultStatePath(),
		LogLevel:   "info",
		Visualizer: "bars",
		Bars:       48,
		FPS:        30,
		PeakCount:  200,
	}
}

// Load reads configuration from environment variables on top of Default.
func Load() Config {
	d := Default()
	return Config{
		LibraryDir: envStr("NOWPLAYING_LIBRARY", d.LibraryDir),
		Catalog:    envStr("NOWPLAYING_CATALOG", d.Catalog),
		PeaksDir:   envStr("NOWPLAYING_PEAKS_DIR", d.PeaksDir),
		StatePath:  envStr("NOWPLAYING_STATE", d.StatePath),
		LogPath:    envStr("NOWPLAYING_LOG", d.LogPath),
		LogLevel:   envStr("NOWPLAYING_LOG_LEVEL", d.LogLevel),
		Visualizer: envStr("NOWPLAYING_VISUALIZER", d.Visualizer),
		Bars:       envInt("NOWPLAYING_BARS", d.Bars),
		FPS:        envInt("NOWPLAYING_FPS", d.FPS),
		PeakCount:  envInt("NOWPLAYING_PEAK_COUNT", d.PeakCount),
	}
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	switch c.Visualizer {
	case "bars", "oscilloscope":
	default:
		return fmt.Errorf("unknown visualizer %q (want bars or oscilloscope)", c.Visualizer)
	}
	if c.Bars < 1 {
		return fmt.Errorf("bar count must be positive, got %d", c.Bars)
	}
	if c.FPS < 1 || c.FPS > 240 {
		return fmt.Errorf("fps must be in 1..240, got %d", c.FPS)
	}
	if c.PeakCount < 1 {
		return fmt.Errorf("peak count must be positive, got %d", c.PeakCount)
	}
	return nil
}

// CatalogPath returns the absolute-or-library-relative catalog path.
func (c Config) CatalogPath() string {
	return c.resolve(c.Catalog)
}

// PeaksPath returns the absolute-or-library-relative peaks directory.
func (c Config) PeaksPath() string {
	return c.resolve(c.PeaksDir)
}

func (c Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.LibraryDir, p)
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "nowplaying.db"
	}
	return filepath.Join(dir, "nowplaying", "state.db")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
