package player

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

const (
	monitorInterval    = 50 * time.Millisecond
	timeUpdateInterval = 250 * time.Millisecond
)

var (
	// ErrAlreadyTapped is returned when a second tap is attached to a player.
	ErrAlreadyTapped = errors.New("player: media output is already tapped")
	// ErrClosed is returned by operations on a closed player.
	ErrClosed = errors.New("player: closed")
)

// countingReader wraps the PCM stream, tracks bytes handed to the device and
// copies them into the tap when one is attached.
type countingReader struct {
	reader io.Reader
	pos    int64
	tap    io.Writer
	mu     sync.Mutex
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.reader.Read(p)
	cr.mu.Lock()
	cr.pos += int64(n)
	tap := cr.tap
	cr.mu.Unlock()
	if tap != nil && n > 0 {
		tap.Write(p[:n])
	}
	return n, err
}

func (cr *countingReader) Pos() int64 {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.pos
}

func (cr *countingReader) SetPos(pos int64) {
	cr.mu.Lock()
	cr.pos = pos
	cr.mu.Unlock()
}

func (cr *countingReader) attach(w io.Writer) error {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	if cr.tap != nil {
		return ErrAlreadyTapped
	}
	cr.tap = w
	return nil
}

// Player plays one track. It starts paused.
type Player struct {
	file      *os.File
	decoder   audioDecoder
	counter   *countingReader
	out       *Output
	otoPlayer *oto.Player
	duration  time.Duration

	playing  bool
	finished bool
	closed   bool

	onFinish func()
	onTime   func(time.Duration)
	lastTime time.Time

	stopMon chan struct{}
	mu      sync.Mutex
}

// New opens path and prepares it for playback on the shared output.
func New(path string) (*Player, error) {
	out, err := SharedOutput()
	if err != nil {
		return nil, fmt.Errorf("opening audio output: %w", err)
	}
	dec, f, err := openPCM(path)
	if err != nil {
		return nil, err
	}

	p := &Player{
		file:     f,
		decoder:  dec,
		counter:  &countingReader{reader: dec},
		out:      out,
		duration: time.Duration(float64(dec.Length()) / bytesPerSec * float64(time.Second)),
		stopMon:  make(chan struct{}),
	}
	p.otoPlayer = out.ctx.NewPlayer(p.counter)

	go p.monitor()
	return p, nil
}

func openPCM(path string) (*pcmStream, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	dec, err := newDecoder(f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	stream, err := newPCMStream(dec)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return stream, f, nil
}

// OnFinish registers fn to run each time playback reaches the end of the
// track. fn runs on the player's monitor goroutine.
func (p *Player) OnFinish(fn func()) {
	p.mu.Lock()
	p.onFinish = fn
	p.mu.Unlock()
}

// OnTimeUpdate registers fn to receive the position periodically while
// playing. fn runs on the player's monitor goroutine.
func (p *Player) OnTimeUpdate(fn func(time.Duration)) {
	p.mu.Lock()
	p.onTime = fn
	p.mu.Unlock()
}

func (p *Player) monitor() {
	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stopMon:
			return
		case now := <-ticker.C:
			p.poll(now)
		}
	}
}

func (p *Player) poll(now time.Time) {
	p.mu.Lock()
	if !p.playing || p.closed {
		p.mu.Unlock()
		return
	}

	var finish func()
	var update func(time.Duration)
	pos := p.positionLocked()
	if p.counter.Pos() >= p.decoder.Length() && p.bufferedLocked() == 0 {
		p.playing = false
		p.finished = true
		if p.otoPlayer != nil {
			p.otoPlayer.Pause()
		}
		finish = p.onFinish
		update = p.onTime
		pos = p.duration
	} else if now.Sub(p.lastTime) >= timeUpdateInterval {
		p.lastTime = now
		update = p.onTime
	}
	p.mu.Unlock()

	if update != nil {
		update(pos)
	}
	if finish != nil {
		finish()
	}
}

// Play starts or resumes playback. A finished track restarts from the top.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if p.finished || p.counter.Pos() >= p.decoder.Length() {
		if err := p.seekLocked(0); err != nil {
			return err
		}
		p.finished = false
	}
	if p.otoPlayer != nil {
		p.otoPlayer.Play()
	}
	p.playing = true
	return nil
}

// Pause pauses playback.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.otoPlayer != nil {
		p.otoPlayer.Pause()
	}
	p.playing = false
}

// Playing reports whether the track is currently playing.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Position returns the audible playback position.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionLocked()
}

func (p *Player) bufferedLocked() int {
	if p.otoPlayer == nil {
		return 0
	}
	return p.otoPlayer.BufferedSize()
}

func (p *Player) positionLocked() time.Duration {
	pos := p.counter.Pos() - int64(p.bufferedLocked())
	if pos < 0 {
		pos = 0
	}
	return time.Duration(float64(pos) / bytesPerSec * float64(time.Second))
}

// Duration returns the total duration of the track.
func (p *Player) Duration() time.Duration {
	return p.duration
}

// SeekTo moves playback to target, clamped to the track.
func (p *Player) SeekTo(target time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if err := p.seekLocked(target); err != nil {
		return err
	}
	p.finished = false
	return nil
}

func (p *Player) seekLocked(target time.Duration) error {
	offset := clampSeekByteOffset(target, p.decoder.Length())
	if _, err := p.decoder.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("seeking: %w", err)
	}
	p.counter.SetPos(offset)

	if p.otoPlayer == nil || p.out == nil {
		return nil
	}
	// A fresh oto player drops whatever the old one had buffered.
	p.otoPlayer.Pause()
	p.otoPlayer = p.out.ctx.NewPlayer(p.counter)
	if p.playing {
		p.otoPlayer.Play()
	}
	return nil
}

func clampSeekByteOffset(target time.Duration, length int64) int64 {
	offset := int64(target.Seconds() * bytesPerSec)
	if offset < 0 {
		offset = 0
	}
	if offset > length {
		offset = length
	}
	return offset - offset%outputFrameSize
}

// AttachTap copies every PCM chunk sent to the device into w. A player can
// be tapped once.
func (p *Player) AttachTap(w io.Writer) error {
	return p.counter.attach(w)
}

// Close stops playback and releases the file.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.playing = false
	if p.stopMon != nil {
		close(p.stopMon)
	}
	if p.otoPlayer != nil {
		p.otoPlayer.Pause()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}
