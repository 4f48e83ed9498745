// Package dsp turns a raw multi-channel capture into a balanced,
// filtered and normalized stereo pair.
package dsp

import (
	"errors"
	"math"

	"github.com/xpanvictor/verbale/pkg/Logger"
	"github.com/xpanvictor/verbale/pkg/io/pcm"
)

var ErrEmptyBuffer = errors.New("dsp: empty audio buffer")

type Options struct {
	SystemGain  float64
	MicGain     float64
	CutoffHz    float64
	FilterOrder int
	TargetPeak  float64
	Denoise     bool
}

func DefaultOptions() Options {
	return Options{
		SystemGain:  0.1,
		MicGain:     0.1,
		CutoffHz:    8000,
		FilterOrder: 4,
		TargetPeak:  0.9,
		Denoise:     true,
	}
}

type Processor struct {
	opts   Options
	gate   *SpectralGate
	logger *Logger.Logger
}

func New(opts Options, logger *Logger.Logger) *Processor {
	return &Processor{
		opts:   opts,
		gate:   DefaultSpectralGate(),
		logger: logger,
	}
}

// Process splits the system and microphone channels and returns a
// two-channel buffer (system left, mic right). With three or more input
// channels the mic is channel 2 and only the system channel is denoised.
// Mono input is returned unchanged.
func (p *Processor) Process(buf *pcm.Buffer) (*pcm.Buffer, error) {
	if buf == nil || buf.Empty() {
		return nil, ErrEmptyBuffer
	}
	if buf.Channels < 2 {
		return buf.Clone(), nil
	}

	micCh := 1
	if buf.Channels >= 3 {
		micCh = 2
	}
	sys := scale(buf.Channel(0), p.opts.SystemGain)
	mic := scale(buf.Channel(micCh), p.opts.MicGain)

	sections, err := butterworthLowpass(p.opts.FilterOrder, p.opts.CutoffHz, float64(buf.SampleRate))
	if err != nil {
		p.logger.Debugf("lowpass skipped: %v", err)
	} else {
		sys = filtFilt(sections, sys)
		mic = filtFilt(sections, mic)
	}

	if p.opts.Denoise {
		sys = p.gate.Reduce(sys)
		if buf.Channels == 2 {
			mic = p.gate.Reduce(mic)
		}
	}

	normalize(p.opts.TargetPeak, sys, mic)
	clip(sys)
	clip(mic)

	p.logger.Debugf("processed %d frames from %d channels (%s)", buf.Frames(), buf.Channels, buf.Duration())
	return pcm.Interleave(buf.SampleRate, sys, mic), nil
}

func scale(x []float64, gain float64) []float64 {
	for i := range x {
		x[i] *= gain
	}
	return x
}

// normalize scales every channel by the same factor so the loudest sample
// reaches target. Silent input is left as is.
func normalize(target float64, channels ...[]float64) {
	var peak float64
	for _, ch := range channels {
		for _, v := range ch {
			if a := math.Abs(v); a > peak {
				peak = a
			}
		}
	}
	if peak == 0 || math.IsNaN(peak) || math.IsInf(peak, 0) {
		return
	}
	k := target / peak
	for _, ch := range channels {
		for i := range ch {
			ch[i] *= k
		}
	}
}

func clip(x []float64) {
	for i, v := range x {
		switch {
		case v > 1:
			x[i] = 1
		case v < -1:
			x[i] = -1
		}
	}
}
