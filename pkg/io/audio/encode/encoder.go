// Package encode writes processed audio to disk as WAV and mp3.
package encode

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/xpanvictor/verbale/pkg/Logger"
	"github.com/xpanvictor/verbale/pkg/io/pcm"
)

var ErrNothingToEncode = errors.New("encode: empty audio")

// CommandRunner runs an external program and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

type Options struct {
	FFmpegPath string
	Bitrate    string
}

type Encoder struct {
	opts   Options
	run    CommandRunner
	logger *Logger.Logger
}

func New(opts Options, logger *Logger.Logger) *Encoder {
	return NewWithRunner(opts, execRunner, logger)
}

func NewWithRunner(opts Options, run CommandRunner, logger *Logger.Logger) *Encoder {
	if opts.FFmpegPath == "" {
		opts.FFmpegPath = "ffmpeg"
	}
	if opts.Bitrate == "" {
		opts.Bitrate = "192k"
	}
	return &Encoder{opts: opts, run: run, logger: logger}
}

// Encode writes buf as a two-channel mp3 at path. Mono input is
// duplicated to both channels by ffmpeg.
func (e *Encoder) Encode(ctx context.Context, buf *pcm.Buffer, path string) error {
	if buf == nil || buf.Empty() {
		return ErrNothingToEncode
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("encode: create dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".verbale-*.wav")
	if err != nil {
		return fmt.Errorf("encode: temp wav: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := WriteWAV(tmp, buf); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("encode: close temp wav: %w", err)
	}

	// ffmpeg -y -i in.wav -ac 2 -ar <rate> -c:a libmp3lame -b:a <bitrate> out.mp3
	out, err := e.run(ctx, e.opts.FFmpegPath,
		"-y", "-loglevel", "error",
		"-i", tmpPath,
		"-ac", "2",
		"-ar", fmt.Sprint(buf.SampleRate),
		"-c:a", "libmp3lame",
		"-b:a", e.opts.Bitrate,
		path,
	)
	if err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(string(out)))
	}

	e.logger.Infof("audio saved to %s (%s)", path, buf.Duration())
	return nil
}

// WriteWAV encodes buf as 16-bit PCM.
func WriteWAV(f *os.File, buf *pcm.Buffer) error {
	enc := wav.NewEncoder(f, buf.SampleRate, 16, buf.Channels, 1)

	data := make([]int, len(buf.Samples))
	for i, s := range buf.Samples {
		data[i] = toInt16(s)
	}
	ib := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: buf.Channels, SampleRate: buf.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(ib); err != nil {
		return fmt.Errorf("encode: write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode: finalize wav: %w", err)
	}
	return nil
}

func toInt16(s float32) int {
	v := math.Round(float64(s) * 32767)
	return int(math.Max(-32768, math.Min(32767, v)))
}
