package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/olivier-w/nowplaying/internal/catalog"
	"github.com/olivier-w/nowplaying/internal/logging"
	"github.com/olivier-w/nowplaying/internal/util"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var peaksForce bool

var peaksCmd = &cobra.Command{
	Use:   "peaks [library-dir]",
	Short: "Generate waveform peak files for the audio in a library",
	Long: `peaks decodes every supported audio file in the library directory and
writes its waveform peaks as JSON to the peaks directory, printing each
track's duration for use in music.json.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runPeaks,
}

func init() {
	peaksCmd.Flags().IntVarP(&cfg.PeakCount, "count", "n", cfg.PeakCount,
		"Peaks per track")
	peaksCmd.Flags().BoolVarP(&peaksForce, "force", "f", false,
		"Regenerate peak files that already exist")
}

func runPeaks(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		cfg.LibraryDir = args[0]
	}
	if cfg.PeakCount < 1 {
		return fmt.Errorf("peak count must be positive, got %d", cfg.PeakCount)
	}

	closeLog, err := logging.Setup(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	files, err := catalog.ScanAudio(cfg.LibraryDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no audio files in %s (supported: %s)", cfg.LibraryDir, catalog.SupportedExtsList())
	}

	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	dir := cfg.PeaksPath()
	failed := 0
	for _, path := range files {
		name := filepath.Base(path)
		dest := filepath.Join(dir, catalog.PeaksFileName(path))
		if !peaksForce {
			if _, err := os.Stat(dest); err == nil {
				fmt.Fprintf(out, "%s: %s exists, skipping\n", name, filepath.Base(dest))
				continue
			}
		}

		peaks, dur, err := catalog.GeneratePeaks(path, cfg.PeakCount)
		if err != nil {
			failed++
			fmt.Fprintf(errOut, "%s: %v\n", name, err)
			log.Warn().Err(err).Str("file", name).Msg("generating peaks")
			continue
		}
		if err := catalog.WritePeaks(dest, peaks); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s -> %s (%s)\n", name, filepath.Base(dest), util.FormatDuration(dur))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}
