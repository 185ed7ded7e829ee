package visualizer

import "math"

const (
	// minBin skips DC and the lowest bin, which carry rumble rather than music.
	minBin = 2
	// usableFraction is the share of the spectrum drawn; the top bins are
	// near-silent at common sample rates.
	usableFraction = 0.72
)

// Bin is a half-open [Start, End) range of frequency bins feeding one bar.
type Bin struct {
	Start int
	End   int
}

// Len returns the number of bins in the range.
func (b Bin) Len() int { return b.End - b.Start }

// LogBins maps bufferLength linear frequency bins onto at most numBars
// log-spaced ranges between bin 2 and floor(bufferLength*0.72). Every range
// holds at least one bin, ranges never overlap, and bars that would repeat
// the previous bar's range are collapsed.
func LogBins(bufferLength, numBars int) []Bin {
	maxBin := min(bufferLength, int(math.Floor(float64(bufferLength)*usableFraction)))
	if numBars <= 0 || maxBin < 1 {
		return nil
	}

	logMin := math.Log(minBin)
	logMax := math.Log(float64(maxBin))
	boundary := func(i int) int {
		// The epsilon keeps exp(log(n)) from flooring to n-1.
		return int(math.Floor(math.Exp(logMin+(logMax-logMin)*float64(i)/float64(numBars)) + 1e-9))
	}

	bins := make([]Bin, 0, numBars)
	var prevRaw Bin
	for i := range numBars {
		start := boundary(i)
		end := max(start+1, boundary(i+1))
		raw := Bin{Start: min(start, maxBin-1), End: min(end, maxBin)}
		if i > 0 && raw == prevRaw {
			continue
		}
		prevRaw = raw

		b := raw
		if n := len(bins); n > 0 && b.Start < bins[n-1].End {
			b.Start = bins[n-1].End
		}
		if b.Start >= maxBin {
			continue
		}
		if b.End <= b.Start {
			b.End = b.Start + 1
		}
		bins = append(bins, b)
	}
	return bins
}
