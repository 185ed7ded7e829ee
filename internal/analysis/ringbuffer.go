package analysis

import "sync"

// ringBuffer is a thread-safe circular byte buffer holding the most recent
// PCM written to it.
type ringBuffer struct {
	buf  []byte
	size int
	w    int // write position
	len  int // current fill level
	mu   sync.Mutex
}

func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		buf:  make([]byte, size),
		size: size,
	}
}

// Write appends p, overwriting the oldest data when full.
func (rb *ringBuffer) Write(p []byte) (int, error) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	n := len(p)
	if n > rb.size {
		p = p[n-rb.size:]
	}
	for len(p) > 0 {
		c := copy(rb.buf[rb.w:], p)
		rb.w = (rb.w + c) % rb.size
		p = p[c:]
	}
	rb.len += n
	if rb.len > rb.size {
		rb.len = rb.size
	}
	return n, nil
}

// Latest copies the newest len(dst) bytes into the tail of dst and zeroes
// whatever the buffer cannot fill. It returns the number of bytes copied.
func (rb *ringBuffer) Latest(dst []byte) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	n := len(dst)
	if n > rb.len {
		n = rb.len
	}
	pad := len(dst) - n
	clear(dst[:pad])
	start := (rb.w - n + rb.size) % rb.size
	for i := range n {
		dst[pad+i] = rb.buf[(start+i)%rb.size]
	}
	return n
}

// Reset empties the buffer.
func (rb *ringBuffer) Reset() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.w = 0
	rb.len = 0
}
