package catalog

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/olivier-w/nowplaying/internal/player"
)

// DefaultPeakCount is the number of peaks generated per track.
const DefaultPeakCount = 200

// peakFile is the on-disk peak format: one array per channel.
type peakFile struct {
	Data [][]float64 `json:"data"`
}

// PeaksFileName returns the peak file name for an audio file: its stem
// with a .json extension.
func PeaksFileName(audioPath string) string {
	base := filepath.Base(audioPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".json"
}

// LoadPeaks reads a peak file and returns its first channel.
func LoadPeaks(path string) ([]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading peaks: %w", err)
	}
	var pf peakFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parsing peaks %s: %w", filepath.Base(path), err)
	}
	if len(pf.Data) == 0 {
		return nil, fmt.Errorf("peaks %s: no channels", filepath.Base(path))
	}
	return pf.Data[0], nil
}

// WritePeaks writes peaks as a single-channel peak file, creating the
// directory if needed.
func WritePeaks(path string, peaks []float64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating peaks directory: %w", err)
	}
	data, err := json.Marshal(peakFile{Data: [][]float64{peaks}})
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing peaks: %w", err)
	}
	return nil
}

// GeneratePeaks decodes the audio at path and returns n peaks plus the
// decoded duration.
func GeneratePeaks(path string, n int) ([]float64, time.Duration, error) {
	s, err := player.OpenStream(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening %s: %w", filepath.Base(path), err)
	}
	defer s.Close()

	mono, err := readMono(s, s.Frames())
	if err != nil {
		return nil, 0, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return Peaks(mono, n), s.Duration(), nil
}

// readMono reads stereo s16le frames from r and averages each to mono.
func readMono(r io.Reader, hint int64) ([]int16, error) {
	mono := make([]int16, 0, max(hint, 0))
	buf := make([]byte, 64*1024)
	var carry []byte
	for {
		n, err := r.Read(buf)
		chunk := append(carry, buf[:n]...)
		whole := len(chunk) - len(chunk)%4
		for i := 0; i < whole; i += 4 {
			l := int16(binary.LittleEndian.Uint16(chunk[i:]))
			rr := int16(binary.LittleEndian.Uint16(chunk[i+2:]))
			mono = append(mono, int16((int32(l)+int32(rr))/2))
		}
		carry = append(carry[:0], chunk[whole:]...)
		if errors.Is(err, io.EOF) {
			return mono, nil
		}
		if err != nil {
			return mono, err
		}
	}
}

// Peaks splits samples into n chunks of max(1, len/n) samples and returns
// each chunk's peak amplitude in [0, 1], rounded to four decimals. Chunks
// past the end of the samples are 0.
func Peaks(samples []int16, n int) []float64 {
	if n <= 0 {
		return nil
	}
	chunk := max(1, len(samples)/n)
	peaks := make([]float64, n)
	for i := range n {
		start := i * chunk
		if start >= len(samples) {
			break
		}
		end := min(start+chunk, len(samples))
		peak := 0
		for _, s := range samples[start:end] {
			peak = max(peak, absInt(int(s)))
		}
		peaks[i] = math.Round(float64(peak)/32768*10000) / 10000
	}
	return peaks
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
