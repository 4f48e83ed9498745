package dsp

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
)

var ErrCutoffOutOfRange = errors.New("dsp: cutoff must be between 0 and nyquist")

// section is one second-order stage in transposed direct form II, a0 = 1.
type section struct {
	b0, b1, b2 float64
	a1, a2     float64
}

func (s section) dcGain() float64 {
	return (s.b0 + s.b1 + s.b2) / (1 + s.a1 + s.a2)
}

// steadyState returns the filter state after an infinitely long unit step.
func (s section) steadyState() (z1, z2 float64) {
	y := s.dcGain()
	z2 = s.b2 - s.a2*y
	z1 = s.b1 - s.a1*y + z2
	return z1, z2
}

// butterworthLowpass designs a digital low-pass filter as cascaded
// second-order sections using the bilinear transform with prewarping.
func butterworthLowpass(order int, cutoff, sampleRate float64) ([]section, error) {
	if order < 1 {
		return nil, fmt.Errorf("dsp: invalid filter order %d", order)
	}
	if cutoff <= 0 || cutoff >= sampleRate/2 {
		return nil, fmt.Errorf("%w: cutoff %.1f Hz at %.0f Hz", ErrCutoffOutOfRange, cutoff, sampleRate)
	}

	fs2 := 2 * sampleRate
	warped := fs2 * math.Tan(math.Pi*cutoff/sampleRate)

	sections := make([]section, 0, (order+1)/2)
	for k := 0; k < order/2; k++ {
		theta := math.Pi * float64(2*k+order+1) / float64(2*order)
		s := complex(warped, 0) * cmplx.Exp(complex(0, theta))
		z := (complex(fs2, 0) + s) / (complex(fs2, 0) - s)

		a1 := -2 * real(z)
		a2 := real(z)*real(z) + imag(z)*imag(z)
		g := (1 + a1 + a2) / 4
		sections = append(sections, section{b0: g, b1: 2 * g, b2: g, a1: a1, a2: a2})
	}
	if order%2 == 1 {
		z := (fs2 - warped) / (fs2 + warped)
		g := (1 - z) / 2
		sections = append(sections, section{b0: g, b1: g, a1: -z})
	}
	return sections, nil
}

// cascade runs x through every section, seeding each stage with the steady
// state for a constant input of x0.
func cascade(sections []section, x []float64, x0 float64) []float64 {
	y := append([]float64(nil), x...)
	scale := x0
	for _, s := range sections {
		z1, z2 := s.steadyState()
		z1 *= scale
		z2 *= scale
		for i, in := range y {
			out := s.b0*in + z1
			z1 = s.b1*in - s.a1*out + z2
			z2 = s.b2*in - s.a2*out
			y[i] = out
		}
		scale *= s.dcGain()
	}
	return y
}

func padLength(sections []section) int {
	firstOrder := 0
	for _, s := range sections {
		if s.b2 == 0 && s.a2 == 0 {
			firstOrder++
		}
	}
	return 3 * (2*len(sections) + 1 - firstOrder)
}

// filtFilt applies the cascade forward and backward for zero phase shift.
// The signal is extended by odd reflection at both ends before filtering.
func filtFilt(sections []section, x []float64) []float64 {
	n := len(x)
	if n < 2 || len(sections) == 0 {
		return append([]float64(nil), x...)
	}
	pad := padLength(sections)
	if pad > n-1 {
		pad = n - 1
	}

	ext := make([]float64, 0, n+2*pad)
	for i := pad; i >= 1; i-- {
		ext = append(ext, 2*x[0]-x[i])
	}
	ext = append(ext, x...)
	for i := n - 2; i >= n-1-pad; i-- {
		ext = append(ext, 2*x[n-1]-x[i])
	}

	y := cascade(sections, ext, ext[0])
	reverse(y)
	y = cascade(sections, y, y[0])
	reverse(y)
	return y[pad : pad+n]
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
