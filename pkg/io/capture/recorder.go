// Package capture records audio from a Source into an in-memory buffer.
//
// The source pushes frames on a channel; a single owner goroutine appends
// them to the buffer. Stop closes the source, waits for the owner to drain
// the channel and only then hands the buffer out.
package capture

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xpanvictor/verbale/pkg/Logger"
	"github.com/xpanvictor/verbale/pkg/io/pcm"
)

var ErrAlreadyRecording = errors.New("capture: recording already in progress")

type Format struct {
	Channels   int
	SampleRate int
}

// Source is an audio input that can be opened once per recording.
type Source interface {
	Format() Format
	// Open starts delivering interleaved frames on out.
	Open(out chan<- []float32) error
	// Close stops the capture. No sends happen after it returns.
	Close() error
}

type Recorder struct {
	src         Source
	queueFrames int
	logger      *Logger.Logger

	mu     sync.Mutex
	active *Handle
}

func NewRecorder(src Source, queueFrames int, logger *Logger.Logger) *Recorder {
	if queueFrames <= 0 {
		queueFrames = 64
	}
	return &Recorder{src: src, queueFrames: queueFrames, logger: logger}
}

type Handle struct {
	ID        uuid.UUID
	StartedAt time.Time

	rec      *Recorder
	frames   chan []float32
	done     chan struct{}
	buf      *pcm.Buffer
	stopOnce sync.Once
	stopErr  error
}

func (r *Recorder) Start() (*Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		return nil, ErrAlreadyRecording
	}

	f := r.src.Format()
	h := &Handle{
		ID:        uuid.New(),
		StartedAt: time.Now(),
		rec:       r,
		frames:    make(chan []float32, r.queueFrames),
		done:      make(chan struct{}),
		buf:       pcm.NewBuffer(f.Channels, f.SampleRate),
	}
	go func() {
		defer close(h.done)
		for frame := range h.frames {
			h.buf.Append(frame)
		}
	}()

	if err := r.src.Open(h.frames); err != nil {
		close(h.frames)
		<-h.done
		return nil, fmt.Errorf("capture: open source: %w", err)
	}

	r.active = h
	r.logger.Infof("recording %s started (%d ch @ %d Hz)", h.ID, f.Channels, f.SampleRate)
	return h, nil
}

// Stop ends the recording and returns everything captured. Repeated calls
// return the same buffer.
func (h *Handle) Stop() (*pcm.Buffer, error) {
	h.stopOnce.Do(func() {
		if err := h.rec.src.Close(); err != nil {
			h.stopErr = fmt.Errorf("capture: close source: %w", err)
		}
		close(h.frames)
		<-h.done

		h.rec.mu.Lock()
		h.rec.active = nil
		h.rec.mu.Unlock()

		h.rec.logger.Infof("recording %s stopped: %d frames (%s)", h.ID, h.buf.Frames(), h.buf.Duration())
	})
	return h.buf, h.stopErr
}
