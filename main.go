package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/nowplaying/internal/catalog"
	"github.com/olivier-w/nowplaying/internal/config"
	"github.com/olivier-w/nowplaying/internal/logging"
	"github.com/olivier-w/nowplaying/internal/prefs"
	"github.com/olivier-w/nowplaying/internal/theme"
	"github.com/olivier-w/nowplaying/internal/ui"
	"github.com/olivier-w/nowplaying/internal/visualizer"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	Version = "dev"

	cfg       = config.Load()
	themeFlag string
)

var rootCmd = &cobra.Command{
	Use:   "nowplaying [library-dir]",
	Short: "Play a music library as a playlist with a live visualizer",
	Long: `nowplaying plays the tracks listed in a library's music.json (or an
m3u/pls playlist) one after another. Each track shows its waveform; the
now-playing panel shows the position and a frequency-bar or oscilloscope
visualizer of what is playing.`,
	Args:         cobra.MaximumNArgs(1),
	Version:      Version,
	SilenceUsage: true,
	RunE:         runPlayer,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.Catalog, "catalog", cfg.Catalog,
		"Track list inside the library: music.json or an m3u/pls playlist")
	pf.StringVar(&cfg.PeaksDir, "peaks-dir", cfg.PeaksDir,
		"Directory of waveform peak files, relative to the library")
	pf.StringVarP(&cfg.LogPath, "log", "l", cfg.LogPath,
		"Write logs to the specified file (empty disables)")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel,
		"Log level (debug, info, warn, error)")

	f := rootCmd.Flags()
	f.StringVar(&cfg.StatePath, "state", cfg.StatePath,
		"File holding saved preferences")
	f.StringVar(&cfg.Visualizer, "visualizer", cfg.Visualizer,
		"Visualizer mode (bars, oscilloscope); overrides the saved choice")
	f.StringVar(&themeFlag, "theme", "",
		"Theme (system, light, dark, retro, myspace); overrides the saved choice")
	f.IntVar(&cfg.Bars, "bars", cfg.Bars, "Number of equalizer bars")
	f.IntVar(&cfg.FPS, "fps", cfg.FPS, "Visualizer frame rate")

	rootCmd.AddCommand(peaksCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runPlayer(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		cfg.LibraryDir = args[0]
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if themeFlag != "" {
		if _, err := theme.Parse(themeFlag); err != nil {
			return err
		}
	}

	closeLog, err := logging.Setup(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	cat, err := catalog.Load(cfg)
	if err != nil {
		return err
	}
	if cat.Len() == 0 {
		return fmt.Errorf("no playable tracks in %s (supported: %s)", cfg.CatalogPath(), catalog.SupportedExtsList())
	}

	store, err := prefs.Open(cfg.StatePath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.StatePath).Msg("preferences unavailable")
		store = nil
	} else {
		defer store.Close()
	}

	vizExplicit := cmd.Flags().Changed("visualizer") || os.Getenv("NOWPLAYING_VISUALIZER") != ""
	choice, mode := restoreChoices(store, themeFlag, cfg.Visualizer, vizExplicit)
	log.Info().
		Int("tracks", cat.Len()).
		Str("theme", string(choice)).
		Stringer("visualizer", mode).
		Msg("starting")

	model := ui.New(ui.Options{
		Catalog:        cat,
		Prefs:          store,
		Theme:          choice,
		DarkBackground: theme.TerminalIsDark(),
		Mode:           mode,
		Bars:           cfg.Bars,
		FPS:            cfg.FPS,
		Load:           ui.FileLoader(cfg.PeakCount),
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithReportFocus())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running player: %w", err)
	}
	return nil
}

// restoreChoices picks the theme and visualizer mode. A theme flag or an
// explicit visualizer setting wins; otherwise the saved choice, then the
// defaults.
func restoreChoices(store *prefs.Store, themeName, viz string, vizExplicit bool) (theme.Choice, visualizer.Mode) {
	choice := theme.System
	if themeName == "" && store != nil {
		themeName = store.GetOr(prefs.KeyTheme, "")
	}
	if themeName != "" {
		if c, err := theme.Parse(themeName); err == nil {
			choice = c
		} else {
			log.Warn().Err(err).Msg("ignoring saved theme")
		}
	}

	if !vizExplicit && store != nil {
		viz = store.GetOr(prefs.KeyVisualizer, viz)
	}
	mode, err := visualizer.ParseMode(viz)
	if err != nil {
		log.Warn().Err(err).Msg("ignoring saved visualizer mode")
	}
	return choice, mode
}
