package player

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
	"time"
)

type stubPCMDecoder struct {
	data       []byte
	pos        int64
	sampleRate int
	channels   int
	seekErr    error
}

func (d *stubPCMDecoder) Read(p []byte) (int, error) {
	if d.pos >= int64(len(d.data)) {
		return 0, io.EOF
	}
	n := copy(p, d.data[d.pos:])
	d.pos += int64(n)
	return n, nil
}

func (d *stubPCMDecoder) Seek(offset int64, whence int) (int64, error) {
	if d.seekErr != nil {
		return d.pos, d.seekErr
	}
	next, err := resolveSeek(offset, whence, d.pos, int64(len(d.data)))
	if err != nil {
		return d.pos, err
	}
	d.pos = next
	return next, nil
}

func (d *stubPCMDecoder) Length() int64     { return int64(len(d.data)) }
func (d *stubPCMDecoder) SampleRate() int   { return d.sampleRate }
func (d *stubPCMDecoder) ChannelCount() int { return d.channels }

func pcm16(samples ...int16) []byte {
	out := make([]byte, 0, len(samples)*2)
	for _, s := range samples {
		out = binary.LittleEndian.AppendUint16(out, uint16(s))
	}
	return out
}

func newStubPlayer(dec audioDecoder) *Player {
	return &Player{
		decoder: dec,
		counter: &countingReader{reader: dec},
		stopMon: make(chan struct{}),
	}
}

func TestClampSeekByteOffsetClampsAndAligns(t *testing.T) {
	second := time.Second
	if got := clampSeekByteOffset(second, 1<<30); got != bytesPerSec {
		t.Fatalf("clampSeekByteOffset(1s) = %d, want %d", got, bytesPerSec)
	}
	if got := clampSeekByteOffset(-second, 1000); got != 0 {
		t.Fatalf("expected negative seek to clamp to 0, got %d", got)
	}
	if got := clampSeekByteOffset(time.Hour, 1003); got != 1000 {
		t.Fatalf("expected seek past end to clamp to aligned length 1000, got %d", got)
	}
}

func TestPauseWithoutDeviceClearsPlaying(t *testing.T) {
	p := &Player{playing: true}
	p.Pause()
	if p.Playing() {
		t.Fatal("expected pause to clear playing state")
	}
}

func TestSeekToMovesDecoderAndCounter(t *testing.T) {
	dec := &stubPCMDecoder{data: make([]byte, bytesPerSec*4), sampleRate: outputSampleRate, channels: 2}
	p := newStubPlayer(dec)

	if err := p.SeekTo(1500 * time.Millisecond); err != nil {
		t.Fatalf("SeekTo() error = %v", err)
	}
	want := int64(bytesPerSec * 3 / 2)
	if dec.pos != want {
		t.Fatalf("decoder position = %d, want %d", dec.pos, want)
	}
	if got := p.Position(); got != 1500*time.Millisecond {
		t.Fatalf("Position() = %v, want 1.5s", got)
	}
}

func TestSeekToReportsDecoderError(t *testing.T) {
	dec := &stubPCMDecoder{data: make([]byte, 64), seekErr: errors.New("boom")}
	p := newStubPlayer(dec)
	if err := p.SeekTo(0); err == nil {
		t.Fatal("expected seek error")
	}
}

func TestPlayRestartsFinishedTrack(t *testing.T) {
	dec := &stubPCMDecoder{data: make([]byte, 64), sampleRate: outputSampleRate, channels: 2}
	p := newStubPlayer(dec)
	dec.pos = 64
	p.counter.SetPos(64)
	p.finished = true

	if err := p.Play(); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if dec.pos != 0 || p.counter.Pos() != 0 {
		t.Fatalf("expected restart from 0, decoder=%d counter=%d", dec.pos, p.counter.Pos())
	}
	if !p.Playing() {
		t.Fatal("expected playing state")
	}
}

func TestPollReportsFinishOnce(t *testing.T) {
	dec := &stubPCMDecoder{data: make([]byte, 16), sampleRate: outputSampleRate, channels: 2}
	p := newStubPlayer(dec)
	p.counter.SetPos(16)
	p.playing = true

	finishes := 0
	var last time.Duration
	p.OnFinish(func() { finishes++ })
	p.OnTimeUpdate(func(d time.Duration) { last = d })

	now := time.Now()
	p.poll(now)
	p.poll(now.Add(time.Second))

	if finishes != 1 {
		t.Fatalf("expected one finish, got %d", finishes)
	}
	if p.Playing() {
		t.Fatal("expected finished player to stop")
	}
	if last != p.Duration() {
		t.Fatalf("expected final time update at duration %v, got %v", p.Duration(), last)
	}
}

func TestPollSendsTimeUpdatesWhilePlaying(t *testing.T) {
	dec := &stubPCMDecoder{data: make([]byte, bytesPerSec*2), sampleRate: outputSampleRate, channels: 2}
	p := newStubPlayer(dec)
	p.counter.SetPos(bytesPerSec)
	p.playing = true

	updates := 0
	p.OnTimeUpdate(func(time.Duration) { updates++ })

	now := time.Now()
	p.poll(now)
	p.poll(now.Add(10 * time.Millisecond))
	p.poll(now.Add(timeUpdateInterval))
	if updates != 2 {
		t.Fatalf("expected 2 throttled time updates, got %d", updates)
	}
}

func TestAttachTapCopiesAndRejectsSecondTap(t *testing.T) {
	dec := &stubPCMDecoder{data: pcm16(1, 2, 3, 4), sampleRate: outputSampleRate, channels: 2}
	p := newStubPlayer(dec)

	var tap bytes.Buffer
	if err := p.AttachTap(&tap); err != nil {
		t.Fatalf("AttachTap() error = %v", err)
	}
	if err := p.AttachTap(&bytes.Buffer{}); !errors.Is(err, ErrAlreadyTapped) {
		t.Fatalf("second AttachTap() error = %v, want ErrAlreadyTapped", err)
	}

	buf := make([]byte, 8)
	if _, err := p.counter.Read(buf); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !bytes.Equal(tap.Bytes(), pcm16(1, 2, 3, 4)) {
		t.Fatalf("tap received %v", tap.Bytes())
	}
}

func TestPlayerCloseIsIdempotent(t *testing.T) {
	p := &Player{stopMon: make(chan struct{})}
	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if err := p.Play(); !errors.Is(err, ErrClosed) {
		t.Fatalf("Play() after Close = %v, want ErrClosed", err)
	}
}
