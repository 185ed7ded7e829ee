package player

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	outputSampleRate = 44100
	outputChannels   = 2
	outputFrameSize  = outputChannels * 2
	bytesPerSec      = outputSampleRate * outputFrameSize
)

// pcmStream presents any decoder as 44.1 kHz stereo s16le. Mono is
// duplicated, extra channels beyond the first two are dropped and other
// rates are linearly interpolated.
type pcmStream struct {
	src         audioDecoder
	passthrough bool

	rate         int
	channels     int
	srcFrameSize int64
	totalSrc     int64 // source frames
	totalOut     int64 // output frames
	outPos       int64 // next output frame

	window  []int16 // stereo source frames starting at base
	base    int64
	pending []byte
	scratch []byte
}

func newPCMStream(src audioDecoder) (*pcmStream, error) {
	rate := src.SampleRate()
	if rate <= 0 {
		return nil, fmt.Errorf("unsupported sample rate: %d", rate)
	}
	channels := src.ChannelCount()
	if channels < 1 {
		return nil, fmt.Errorf("unsupported channel count: %d", channels)
	}

	s := &pcmStream{
		src:          src,
		passthrough:  rate == outputSampleRate && channels == outputChannels,
		rate:         rate,
		channels:     channels,
		srcFrameSize: int64(channels) * 2,
	}
	s.totalSrc = src.Length() / s.srcFrameSize
	s.totalOut = s.totalSrc * outputSampleRate / int64(rate)
	if s.totalSrc > 0 && s.totalOut == 0 {
		s.totalOut = 1
	}
	return s, nil
}

func (s *pcmStream) Length() int64 {
	if s.passthrough {
		return s.src.Length()
	}
	return s.totalOut * outputFrameSize
}

func (s *pcmStream) SampleRate() int   { return outputSampleRate }
func (s *pcmStream) ChannelCount() int { return outputChannels }

func (s *pcmStream) Read(p []byte) (int, error) {
	if s.passthrough {
		return s.src.Read(p)
	}
	if len(s.pending) == 0 {
		frames := len(p) / outputFrameSize
		if frames == 0 {
			frames = 1
		}
		if err := s.fill(frames); len(s.pending) == 0 {
			if err == nil {
				err = io.EOF
			}
			return 0, err
		}
	}
	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

func (s *pcmStream) Seek(offset int64, whence int) (int64, error) {
	if s.passthrough {
		return s.src.Seek(offset, whence)
	}
	next, err := resolveSeek(offset, whence, s.outPos*outputFrameSize, s.Length())
	if err != nil {
		return s.outPos * outputFrameSize, err
	}
	outFrame := next / outputFrameSize
	srcFrame := outFrame * int64(s.rate) / outputSampleRate
	if _, err := s.src.Seek(srcFrame*s.srcFrameSize, io.SeekStart); err != nil {
		return s.outPos * outputFrameSize, err
	}
	s.outPos = outFrame
	s.base = srcFrame
	s.window = s.window[:0]
	s.pending = nil
	return outFrame * outputFrameSize, nil
}

func (s *pcmStream) fill(frames int) error {
	size := frames * outputFrameSize
	if cap(s.scratch) < size {
		s.scratch = make([]byte, size)
	}
	out := s.scratch[:0]

	var err error
	for range frames {
		if s.outPos >= s.totalOut {
			err = io.EOF
			break
		}
		num := s.outPos * int64(s.rate)
		i0 := num / outputSampleRate
		frac := num % outputSampleRate

		var l0, r0 int16
		if l0, r0, err = s.frameAt(i0); err != nil {
			break
		}
		l1, r1 := l0, r0
		if i0+1 < s.totalSrc {
			if l, r, ferr := s.frameAt(i0 + 1); ferr == nil {
				l1, r1 = l, r
			}
		}

		out = binary.LittleEndian.AppendUint16(out, uint16(lerpSample(l0, l1, frac)))
		out = binary.LittleEndian.AppendUint16(out, uint16(lerpSample(r0, r1, frac)))
		s.outPos++
	}
	s.pending = out
	return err
}

// frameAt returns source frame i, decoding forward as needed and discarding
// frames that can no longer be referenced.
func (s *pcmStream) frameAt(i int64) (int16, int16, error) {
	if i < s.base {
		return 0, 0, fmt.Errorf("frame %d is behind decoded data", i)
	}
	if drop := i - 1 - s.base; drop > 0 {
		have := int64(len(s.window) / 2)
		if drop > have {
			drop = have
		}
		s.window = append(s.window[:0], s.window[drop*2:]...)
		s.base += drop
	}
	for i >= s.base+int64(len(s.window)/2) {
		if err := s.decodeMore(); err != nil {
			return 0, 0, err
		}
	}
	off := (i - s.base) * 2
	return s.window[off], s.window[off+1], nil
}

func (s *pcmStream) decodeMore() error {
	buf := make([]byte, 2048*s.srcFrameSize)
	n, err := io.ReadFull(s.src, buf)
	frames := int64(n) / s.srcFrameSize
	if frames == 0 {
		if err == nil || err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return err
	}
	for f := range frames {
		off := f * s.srcFrameSize
		l := int16(binary.LittleEndian.Uint16(buf[off:]))
		r := l
		if s.channels > 1 {
			r = int16(binary.LittleEndian.Uint16(buf[off+2:]))
		}
		s.window = append(s.window, l, r)
	}
	return nil
}

func lerpSample(a, b int16, frac int64) int16 {
	if frac == 0 || a == b {
		return a
	}
	diff := int64(b) - int64(a)
	return int16(int64(a) + (diff*frac+outputSampleRate/2)/outputSampleRate)
}
