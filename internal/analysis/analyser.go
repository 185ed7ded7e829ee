package analysis

import (
	"encoding/binary"
	"math"
	"sync"
)

// Analyser parameters, tuned for typical music levels.
const (
	FFTSize               = 1024
	SmoothingTimeConstant = 0.6
	MinDecibels           = -85.0
	MaxDecibels           = -10.0
)

const frameSize = 4 // s16le stereo

// Analyser turns the most recent stereo s16le PCM written to it into byte
// frequency and time-domain snapshots. It is the sink end of a player tap.
type Analyser struct {
	ring  *ringBuffer
	carry []byte

	plan     *fftPlan
	window   []float64
	raw      []byte
	real     []float64
	imag     []float64
	smoothed []float64

	mu sync.Mutex
}

// NewAnalyser returns an analyser with an empty history, which reads as silence.
func NewAnalyser() *Analyser {
	a := &Analyser{
		ring:     newRingBuffer(FFTSize * frameSize),
		plan:     newFFTPlan(FFTSize),
		window:   make([]float64, FFTSize),
		raw:      make([]byte, FFTSize*frameSize),
		real:     make([]float64, FFTSize),
		imag:     make([]float64, FFTSize),
		smoothed: make([]float64, FFTSize/2),
	}
	// Blackman window
	for i := range FFTSize {
		x := 2 * math.Pi * float64(i) / FFTSize
		a.window[i] = 0.42 - 0.5*math.Cos(x) + 0.08*math.Cos(2*x)
	}
	return a
}

// FFTSize returns the analysis window length in samples.
func (a *Analyser) FFTSize() int { return FFTSize }

// FrequencyBinCount returns the number of frequency bins, half the window.
func (a *Analyser) FrequencyBinCount() int { return FFTSize / 2 }

// Write records PCM. Partial frames are held until completed by a later write.
func (a *Analyser) Write(p []byte) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := len(p)
	if len(a.carry) > 0 {
		need := frameSize - len(a.carry)
		if len(p) < need {
			a.carry = append(a.carry, p...)
			return n, nil
		}
		a.carry = append(a.carry, p[:need]...)
		a.ring.Write(a.carry)
		a.carry = a.carry[:0]
		p = p[need:]
	}
	whole := len(p) - len(p)%frameSize
	a.ring.Write(p[:whole])
	a.carry = append(a.carry, p[whole:]...)
	return n, nil
}

// Reset drops the recorded history and the frequency smoothing state.
func (a *Analyser) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ring.Reset()
	a.carry = a.carry[:0]
	clear(a.smoothed)
}

// mono fills a.real with the newest FFTSize samples, downmixed and scaled to
// [-1, 1). Missing history is silence.
func (a *Analyser) mono() {
	a.ring.Latest(a.raw)
	for i := range FFTSize {
		l := int16(binary.LittleEndian.Uint16(a.raw[i*frameSize:]))
		r := int16(binary.LittleEndian.Uint16(a.raw[i*frameSize+2:]))
		a.real[i] = (float64(l) + float64(r)) / 65536.0
	}
}

// ByteFrequencyData writes the current magnitude of each frequency bin into
// dst, scaled from [MinDecibels, MaxDecibels] onto 0-255. At most
// FrequencyBinCount values are written.
func (a *Analyser) ByteFrequencyData(dst []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.mono()
	for i := range FFTSize {
		a.real[i] *= a.window[i]
		a.imag[i] = 0
	}
	a.plan.transform(a.real, a.imag)

	n := min(len(dst), len(a.smoothed))
	for k := range a.smoothed {
		mag := math.Hypot(a.real[k], a.imag[k]) / FFTSize
		a.smoothed[k] = SmoothingTimeConstant*a.smoothed[k] + (1-SmoothingTimeConstant)*mag
		if k < n {
			dst[k] = decibelByte(a.smoothed[k])
		}
	}
}

func decibelByte(mag float64) byte {
	if mag <= 0 {
		return 0
	}
	db := 20 * math.Log10(mag)
	v := 255 * (db - MinDecibels) / (MaxDecibels - MinDecibels)
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return byte(v)
}

// ByteTimeDomainData writes the newest len(dst) samples (at most FFTSize)
// into dst as 128 + 128*s. Silence reads 128.
func (a *Analyser) ByteTimeDomainData(dst []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.mono()
	n := min(len(dst), FFTSize)
	off := FFTSize - n
	for i := range n {
		v := math.Floor(128 * (1 + a.real[off+i]))
		dst[i] = byte(max(0, min(255, v)))
	}
}
