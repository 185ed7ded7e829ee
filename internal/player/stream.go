package player

import (
	"os"
	"time"
)

// Stream is a decoded track read as 44.1 kHz stereo s16le, without an
// audio device. Peak generation reads tracks through it.
type Stream struct {
	pcm  *pcmStream
	file *os.File
}

// OpenStream opens path for decoding.
func OpenStream(path string) (*Stream, error) {
	pcm, f, err := openPCM(path)
	if err != nil {
		return nil, err
	}
	return &Stream{pcm: pcm, file: f}, nil
}

func (s *Stream) Read(p []byte) (int, error) { return s.pcm.Read(p) }

// Frames returns the number of stereo frames in the stream.
func (s *Stream) Frames() int64 { return s.pcm.Length() / outputFrameSize }

// Duration returns the decoded length of the track.
func (s *Stream) Duration() time.Duration {
	return time.Duration(float64(s.pcm.Length()) / bytesPerSec * float64(time.Second))
}

// Close releases the underlying file.
func (s *Stream) Close() error { return s.file.Close() }
