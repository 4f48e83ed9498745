// Package pcm holds interleaved float audio shared by capture, processing
// and encoding.
package pcm

import "time"

// Buffer is interleaved float32 audio in [-1, 1]. Frame i occupies
// Samples[i*Channels : (i+1)*Channels].
type Buffer struct {
	Channels   int
	SampleRate int
	Samples    []float32
}

func NewBuffer(channels, sampleRate int) *Buffer {
	return &Buffer{Channels: channels, SampleRate: sampleRate}
}

// Append adds whole frames. A trailing partial frame is dropped.
func (b *Buffer) Append(samples []float32) {
	if b.Channels <= 0 {
		return
	}
	whole := len(samples) - len(samples)%b.Channels
	b.Samples = append(b.Samples, samples[:whole]...)
}

func (b *Buffer) Frames() int {
	if b == nil || b.Channels <= 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

func (b *Buffer) Empty() bool {
	return b.Frames() == 0
}

func (b *Buffer) Duration() time.Duration {
	if b.Empty() || b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.SampleRate)
}

// Channel copies one channel out as float64.
func (b *Buffer) Channel(ch int) []float64 {
	frames := b.Frames()
	out := make([]float64, frames)
	if ch < 0 || ch >= b.Channels {
		return out
	}
	for i := 0; i < frames; i++ {
		out[i] = float64(b.Samples[i*b.Channels+ch])
	}
	return out
}

func (b *Buffer) Clone() *Buffer {
	c := &Buffer{Channels: b.Channels, SampleRate: b.SampleRate}
	c.Samples = append([]float32(nil), b.Samples...)
	return c
}

// Interleave builds a buffer from equally long channel slices.
func Interleave(sampleRate int, channels ...[]float64) *Buffer {
	b := NewBuffer(len(channels), sampleRate)
	if len(channels) == 0 {
		return b
	}
	frames := len(channels[0])
	b.Samples = make([]float32, frames*len(channels))
	for i := 0; i < frames; i++ {
		for c, data := range channels {
			b.Samples[i*len(channels)+c] = float32(data[i])
		}
	}
	return b
}
