package analysis

import "math"

// fftPlan holds the twiddle factors for an in-place radix-2 Cooley-Tukey FFT
// of one fixed power-of-two size.
type fftPlan struct {
	n   int
	cos []float64
	sin []float64
}

func newFFTPlan(n int) *fftPlan {
	p := &fftPlan{n: n, cos: make([]float64, n/2), sin: make([]float64, n/2)}
	for k := range n / 2 {
		angle := -2.0 * math.Pi * float64(k) / float64(n)
		p.cos[k] = math.Cos(angle)
		p.sin[k] = math.Sin(angle)
	}
	return p
}

// transform runs the FFT on real/imag, which must both have length p.n.
func (p *fftPlan) transform(real, imag []float64) {
	n := p.n
	if n <= 1 {
		return
	}

	// Bit-reversal permutation
	j := 0
	for i := 1; i < n; i++ {
		bit := n >> 1
		for j&bit != 0 {
			j ^= bit
			bit >>= 1
		}
		j ^= bit
		if i < j {
			real[i], real[j] = real[j], real[i]
			imag[i], imag[j] = imag[j], imag[i]
		}
	}

	// Butterflies; the twiddle for (size, k) is the table entry k*n/size.
	for size := 2; size <= n; size <<= 1 {
		half := size >> 1
		stride := n / size
		for i := 0; i < n; i += size {
			for k := range half {
				wr := p.cos[k*stride]
				wi := p.sin[k*stride]
				a := i + k
				b := a + half
				tr := wr*real[b] - wi*imag[b]
				ti := wr*imag[b] + wi*real[b]
				real[b] = real[a] - tr
				imag[b] = imag[a] - ti
				real[a] += tr
				imag[a] += ti
			}
		}
	}
}
