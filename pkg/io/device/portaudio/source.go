// Package portaudio opens the combined capture device through PortAudio.
package portaudio

import (
	"fmt"
	"sync"
	"time"

	pa "github.com/gordonklaus/portaudio"

	"github.com/xpanvictor/verbale/pkg/Logger"
	"github.com/xpanvictor/verbale/pkg/io/capture"
	"github.com/xpanvictor/verbale/pkg/io/device"
)

type Config struct {
	Device          string
	SampleRate      int
	Channels        int
	FramesPerBuffer int
	// QueueBytes sizes the callback queue; zero means about two seconds.
	QueueBytes int
}

// Source captures interleaved float32 frames. The PortAudio callback only
// pushes into a non-blocking queue; a pump goroutine moves queued blocks
// to the recorder.
type Source struct {
	cfg    Config
	dev    *pa.DeviceInfo
	queue  *capture.BlockQueue
	logger *Logger.Logger

	mu     sync.Mutex
	stream *pa.Stream
	stop   chan struct{}
	pumped sync.WaitGroup
}

// Open initializes PortAudio and resolves the configured device. A missing
// device is reported as device.ErrNotFound.
func Open(cfg Config, logger *Logger.Logger) (*Source, error) {
	if err := pa.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}
	devices, err := pa.Devices()
	if err != nil {
		pa.Terminate()
		return nil, fmt.Errorf("portaudio devices: %w", err)
	}

	infos := make([]device.Info, len(devices))
	for i, d := range devices {
		infos[i] = device.Info{
			Index:             i,
			Name:              d.Name,
			MaxInputChannels:  d.MaxInputChannels,
			DefaultSampleRate: d.DefaultSampleRate,
		}
	}
	match, err := device.Match(infos, cfg.Device)
	if err != nil {
		pa.Terminate()
		return nil, err
	}
	dev := devices[match.Index]
	if cfg.Channels > dev.MaxInputChannels {
		logger.Warnf("device %q has %d inputs, capturing %d", dev.Name, dev.MaxInputChannels, dev.MaxInputChannels)
		cfg.Channels = dev.MaxInputChannels
	}
	if cfg.QueueBytes <= 0 {
		cfg.QueueBytes = 2 * cfg.SampleRate * cfg.Channels * 4
	}

	logger.Infof("using input device %q (%d ch, default %.0f Hz)", dev.Name, dev.MaxInputChannels, dev.DefaultSampleRate)
	return &Source{
		cfg:    cfg,
		dev:    dev,
		queue:  capture.NewBlockQueue(cfg.QueueBytes),
		logger: logger,
	}, nil
}

func (s *Source) Format() capture.Format {
	return capture.Format{Channels: s.cfg.Channels, SampleRate: s.cfg.SampleRate}
}

func (s *Source) Open(out chan<- []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream != nil {
		return capture.ErrAlreadyRecording
	}

	params := pa.StreamParameters{
		Input: pa.StreamDeviceParameters{
			Device:   s.dev,
			Channels: s.cfg.Channels,
			Latency:  s.dev.DefaultLowInputLatency,
		},
		SampleRate:      float64(s.cfg.SampleRate),
		FramesPerBuffer: s.cfg.FramesPerBuffer,
	}

	s.queue.Reset()
	stream, err := pa.OpenStream(params, s.callback)
	if err != nil {
		return fmt.Errorf("open stream on %q: %w", s.dev.Name, err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("start stream on %q: %w", s.dev.Name, err)
	}

	s.stream = stream
	s.stop = make(chan struct{})
	s.pumped.Add(1)
	go s.pump(out, s.stop)
	return nil
}

// callback runs on the PortAudio thread and must not block.
func (s *Source) callback(in []float32) {
	block := capture.Block{Samples: append([]float32(nil), in...), Captured: time.Now()}
	_ = s.queue.Push(block)
}

func (s *Source) pump(out chan<- []float32, stop <-chan struct{}) {
	defer s.pumped.Done()

	period := time.Duration(s.cfg.FramesPerBuffer) * time.Second / time.Duration(s.cfg.SampleRate) / 2
	if period <= 0 {
		period = 10 * time.Millisecond
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	drain := func() {
		for {
			b, ok := s.queue.Pop()
			if !ok {
				return
			}
			out <- b.Samples
		}
	}

	for {
		select {
		case <-stop:
			drain()
			return
		case <-ticker.C:
			drain()
		}
	}
}

func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream == nil {
		return nil
	}

	// stopping the stream ends callbacks before the final drain
	err := s.stream.Stop()
	close(s.stop)
	s.pumped.Wait()
	if cerr := s.stream.Close(); err == nil {
		err = cerr
	}
	s.stream = nil

	if dropped := s.queue.Dropped(); dropped > 0 {
		s.logger.Warnf("dropped %d capture blocks on %q", dropped, s.dev.Name)
	}
	return err
}

// Terminate releases PortAudio. Call once at process exit.
func (s *Source) Terminate() error {
	return pa.Terminate()
}
