package meeting

import (
	"context"
	"errors"
	"time"

	"github.com/looplab/fsm"

	"github.com/xpanvictor/verbale/pkg/Logger"
	"github.com/xpanvictor/verbale/pkg/io/capture"
	"github.com/xpanvictor/verbale/pkg/io/pcm"
)

type Detector interface {
	HasMeetingTab(ctx context.Context) bool
}

type Recorder interface {
	Start() (*capture.Handle, error)
}

type Runner interface {
	Run(ctx context.Context, s Session, buf *pcm.Buffer) (*Result, error)
}

// Monitor polls the detector and records while a meeting tab is open.
//
//	idle -> recording -> processing -> idle
//
// A new recording cannot start until the previous one has been processed.
type Monitor struct {
	detector Detector
	recorder Recorder
	pipeline Runner
	interval time.Duration
	logger   *Logger.Logger

	machine *fsm.FSM
	handle  *capture.Handle
	session Session
}

func NewMonitor(detector Detector, recorder Recorder, pipeline Runner, interval time.Duration, logger *Logger.Logger) *Monitor {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	m := &Monitor{
		detector: detector,
		recorder: recorder,
		pipeline: pipeline,
		interval: interval,
		logger:   logger,
	}
	m.machine = fsm.NewFSM(
		string(IDLE),
		fsm.Events{
			{Name: string(MEETING_DETECTED), Src: []string{string(IDLE)}, Dst: string(RECORDING)},
			{Name: string(MEETING_CLOSED), Src: []string{string(RECORDING)}, Dst: string(PROCESSING)},
			{Name: string(PROCESSED), Src: []string{string(PROCESSING)}, Dst: string(IDLE)},
		},
		fsm.Callbacks{
			"before_" + string(MEETING_DETECTED): m.startRecording,
			"enter_state": func(_ context.Context, e *fsm.Event) {
				m.logger.Debugf("monitor %s -> %s on %s", e.Src, e.Dst, e.Event)
			},
		},
	)
	return m
}

func (m *Monitor) State() MonitorPhase {
	return MonitorPhase(m.machine.Current())
}

func (m *Monitor) startRecording(_ context.Context, e *fsm.Event) {
	h, err := m.recorder.Start()
	if err != nil {
		e.Cancel(err)
		return
	}
	m.handle = h
	m.session = Session{ID: h.ID, StartedAt: h.StartedAt}
}

// Step runs one poll of the detector and moves the machine accordingly.
func (m *Monitor) Step(ctx context.Context) {
	open := m.detector.HasMeetingTab(ctx)

	switch {
	case open && m.machine.Is(string(IDLE)):
		m.logger.Info("meeting detected, starting recording")
		// transitions are local; a cancelled ctx must not leave a started
		// recording outside the machine
		if err := m.machine.Event(context.WithoutCancel(ctx), string(MEETING_DETECTED)); err != nil {
			var canceled fsm.CanceledError
			if errors.As(err, &canceled) && canceled.Err != nil {
				err = canceled.Err
			}
			m.logger.Errorf("could not start recording: %v", err)
		}
	case !open && m.machine.Is(string(RECORDING)):
		m.logger.Info("meeting closed, stopping recording")
		m.finish(ctx)
	}
}

// finish stops the active recording and hands it to the pipeline. The
// machine is back in idle when it returns, whatever the outcome.
func (m *Monitor) finish(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	if err := m.machine.Event(ctx, string(MEETING_CLOSED)); err != nil {
		m.logger.Errorf("monitor: %v", err)
		return
	}
	defer func() {
		m.handle = nil
		if err := m.machine.Event(ctx, string(PROCESSED)); err != nil {
			m.logger.Errorf("monitor: %v", err)
		}
	}()

	buf, err := m.handle.Stop()
	if err != nil {
		m.logger.Warnf("session %s: %v", m.session.ID, err)
	}

	res, err := m.pipeline.Run(ctx, m.session, buf)
	switch {
	case errors.Is(err, ErrEmptyRecording):
		m.logger.Warnf("session %s: %v", m.session.ID, err)
	case err != nil:
		m.logger.Errorf("session %s failed: %v", m.session.ID, err)
	default:
		m.logger.Infof("session %s completed, report at %s", m.session.ID, res.ReportPath)
	}
}

// Run polls every interval until ctx ends. A recording still open at
// shutdown is stopped and processed before Run returns.
func (m *Monitor) Run(ctx context.Context) {
	m.logger.Infof("monitoring meeting tabs every %s", m.interval)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Step(ctx)
	for {
		select {
		case <-ctx.Done():
			if m.machine.Is(string(RECORDING)) {
				m.logger.Info("shutting down, finishing current recording")
				m.finish(ctx)
			}
			m.logger.Info("monitor stopped")
			return
		case <-ticker.C:
			m.Step(ctx)
		}
	}
}
