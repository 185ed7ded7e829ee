package catalog

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestPeaksChunksAndRounds(t *testing.T) {
	samples := []int16{100, -16384, 32767, 3, -32768, 0}
	got := Peaks(samples, 3)
	want := []float64{0.5, 1, 1}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Peaks() = %v, want %v", got, want)
	}

	got = Peaks([]int16{1000}, 1)
	if got[0] != 0.0305 {
		t.Fatalf("Peaks() = %v, want 0.0305 (1000/32768 rounded)", got)
	}
}

func TestPeaksPadsShortInputWithZeros(t *testing.T) {
	got := Peaks([]int16{16384, 8192}, 4)
	want := []float64{0.5, 0.25, 0, 0}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Peaks() = %v, want %v", got, want)
	}
	if Peaks(nil, 0) != nil {
		t.Fatal("expected nil for zero peaks")
	}
}

func TestPeaksDropsRemainderPastLastChunk(t *testing.T) {
	// chunk = 7/3 = 2, so the final sample is never read.
	got := Peaks([]int16{0, 0, 0, 0, 0, 0, 32767}, 3)
	want := []float64{0, 0, 0}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Peaks() = %v, want %v", got, want)
	}
}

func TestWriteThenLoadPeaks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peaks", "song.json")
	if err := WritePeaks(path, []float64{0.1, 0.25}); err != nil {
		t.Fatalf("WritePeaks() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != `{"data":[[0.1,0.25]]}` {
		t.Fatalf("peak file = %s", data)
	}
	got, err := LoadPeaks(path)
	if err != nil {
		t.Fatalf("LoadPeaks() error = %v", err)
	}
	if !reflect.DeepEqual(got, []float64{0.1, 0.25}) {
		t.Fatalf("LoadPeaks() = %v", got)
	}
}

func TestLoadPeaksRejectsEmptyAndMissing(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadPeaks(filepath.Join(dir, "nope.json")); err == nil {
		t.Fatal("expected error for a missing file")
	}
	empty := filepath.Join(dir, "empty.json")
	os.WriteFile(empty, []byte(`{"data":[]}`), 0o644)
	if _, err := LoadPeaks(empty); err == nil {
		t.Fatal("expected error for a peak file with no channels")
	}
}

func TestPeaksFileName(t *testing.T) {
	if got := PeaksFileName("/music/Night Drive.mp3"); got != "Night Drive.json" {
		t.Fatalf("PeaksFileName() = %q", got)
	}
}

func TestReadMonoAveragesAcrossSplitReads(t *testing.T) {
	var pcm []byte
	for _, s := range []int16{100, 300, -50, -150} {
		pcm = binary.LittleEndian.AppendUint16(pcm, uint16(s))
	}
	r := &oneByteReader{r: bytes.NewReader(pcm)}
	got, err := readMono(r, 2)
	if err != nil {
		t.Fatalf("readMono() error = %v", err)
	}
	if !reflect.DeepEqual(got, []int16{200, -100}) {
		t.Fatalf("readMono() = %v, want [200 -100]", got)
	}
}

type oneByteReader struct{ r *bytes.Reader }

func (o *oneByteReader) Read(p []byte) (int, error) {
	if len(p) > 1 {
		p = p[:1]
	}
	return o.r.Read(p)
}

func TestGeneratePeaksReportsUndecodableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.wav")
	os.WriteFile(path, []byte("not a wav"), 0o644)
	if _, _, err := GeneratePeaks(path, DefaultPeakCount); err == nil {
		t.Fatal("expected decode error")
	}
}
