package dsp

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// SpectralGate removes stationary noise. Each frequency bin gets a
// threshold from the mean and spread of its level over the whole signal;
// time-frequency cells below it are attenuated by PropDecrease.
type SpectralGate struct {
	FFTSize      int
	Hop          int
	ThresholdStd float64
	PropDecrease float64

	fft     *fourier.FFT
	window  []float64
	invGain float64
}

func NewSpectralGate(fftSize, hop int, thresholdStd, propDecrease float64) *SpectralGate {
	g := &SpectralGate{
		FFTSize:      fftSize,
		Hop:          hop,
		ThresholdStd: thresholdStd,
		PropDecrease: propDecrease,
		fft:          fourier.NewFFT(fftSize),
		window:       hann(fftSize),
	}

	// round-trip gain of the transform pair, measured once
	impulse := make([]float64, fftSize)
	impulse[0] = 1
	back := g.fft.Sequence(nil, g.fft.Coefficients(nil, impulse))
	g.invGain = 1 / back[0]
	return g
}

func DefaultSpectralGate() *SpectralGate {
	return NewSpectralGate(1024, 256, 1.5, 1.0)
}

func hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}

// Reduce returns a denoised copy of x. Signals shorter than one frame are
// returned unchanged.
//
// The signal is read twice: once to collect per-bin level statistics and
// once to gate and resynthesize it frame by frame. Only three frames of
// spectrum and mask are live at a time.
func (g *SpectralGate) Reduce(x []float64) []float64 {
	n := len(x)
	size := g.FFTSize
	if n < size || g.Hop <= 0 {
		return append([]float64(nil), x...)
	}

	frames := 1 + (n+g.Hop-1)/g.Hop
	bins := size/2 + 1
	seq := make([]float64, size)
	coeff := make([]complex128, bins)
	level := make([]float64, bins)

	// Welford running mean and M2 of the dB level per bin
	mean := make([]float64, bins)
	m2 := make([]float64, bins)
	for f := 0; f < frames; f++ {
		g.analyze(x, f, seq, coeff, level)
		count := float64(f + 1)
		for k, v := range level {
			d := v - mean[k]
			mean[k] += d / count
			m2[k] += d * (v - mean[k])
		}
	}
	threshold := mean
	for k := range threshold {
		threshold[k] += g.ThresholdStd * math.Sqrt(m2[k]/float64(frames))
	}

	type slot struct {
		coeff []complex128
		mask  []float64
	}
	var ring [3]slot
	for i := range ring {
		ring[i] = slot{coeff: make([]complex128, bins), mask: make([]float64, bins)}
	}
	gain := make([]float64, bins)
	floor := 1 - g.PropDecrease

	out := make([]float64, n)
	half := size / 2
	// frame f is gated once frame f+1 is known
	for f := 0; f <= frames; f++ {
		if f < frames {
			s := ring[f%3]
			g.analyze(x, f, seq, s.coeff, level)
			for k, v := range level {
				if v > threshold[k] {
					s.mask[k] = 1
				} else {
					s.mask[k] = floor
				}
			}
		}
		c := f - 1
		if c < 0 {
			continue
		}
		var prev, next []float64
		if c > 0 {
			prev = ring[(c-1)%3].mask
		}
		if c+1 < frames {
			next = ring[(c+1)%3].mask
		}
		cur := ring[c%3]
		smoothRow(gain, prev, cur.mask, next)
		for k := range cur.coeff {
			cur.coeff[k] *= complex(gain[k], 0)
		}
		frame := g.fft.Sequence(seq, cur.coeff)
		start := c*g.Hop - half
		for i := 0; i < size; i++ {
			if p := start + i; p >= 0 && p < n {
				out[p] += frame[i] * g.invGain * g.window[i]
			}
		}
	}
	for p := range out {
		if norm := g.windowSum(p+half, frames); norm > 1e-8 {
			out[p] /= norm
		}
	}
	return out
}

// analyze writes the windowed spectrum of frame f into coeff and its dB
// level into level. Frames are centred, so x is read as if padded by half
// a window of zeros on both sides.
func (g *SpectralGate) analyze(x []float64, f int, seq []float64, coeff []complex128, level []float64) {
	start := f*g.Hop - g.FFTSize/2
	for i := range seq {
		if p := start + i; p >= 0 && p < len(x) {
			seq[i] = x[p] * g.window[i]
		} else {
			seq[i] = 0
		}
	}
	g.fft.Coefficients(coeff, seq)
	for k, c := range coeff {
		level[k] = 20 * math.Log10(cmplx.Abs(c)+1e-10)
	}
}

// windowSum is the squared-window overlap at padded position p.
func (g *SpectralGate) windowSum(p, frames int) float64 {
	first := 0
	if p >= g.FFTSize {
		first = (p - g.FFTSize + g.Hop) / g.Hop
	}
	last := p / g.Hop
	if last > frames-1 {
		last = frames - 1
	}
	var sum float64
	for f := first; f <= last; f++ {
		w := g.window[p-f*g.Hop]
		sum += w * w
	}
	return sum
}

// smoothRow averages each cell of cur with its direct time and frequency
// neighbours. prev and next are nil at the signal edges.
func smoothRow(dst, prev, cur, next []float64) {
	bins := len(cur)
	rows := [3][]float64{prev, cur, next}
	for k := 0; k < bins; k++ {
		var sum float64
		var count int
		for _, row := range rows {
			if row == nil {
				continue
			}
			for kk := k - 1; kk <= k+1; kk++ {
				if kk < 0 || kk >= bins {
					continue
				}
				sum += row[kk]
				count++
			}
		}
		dst[k] = sum / float64(count)
	}
}
