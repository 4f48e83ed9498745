package meeting

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"

	"github.com/xpanvictor/verbale/internal/domains/report"
	"github.com/xpanvictor/verbale/pkg/Logger"
	"github.com/xpanvictor/verbale/pkg/io/capture"
	"github.com/xpanvictor/verbale/pkg/io/pcm"
	"github.com/xpanvictor/verbale/pkg/io/stt"
)

func testLogger(t *testing.T) *Logger.Logger {
	return Logger.From(zaptest.NewLogger(t))
}

// stage recorder shared by the fakes below
type calls struct{ names []string }

func (c *calls) add(n string) { c.names = append(c.names, n) }

type fakeProcessor struct{ c *calls }

func (f fakeProcessor) Process(buf *pcm.Buffer) (*pcm.Buffer, error) {
	f.c.add("process")
	return buf.Clone(), nil
}

type fakeEncoder struct {
	c    *calls
	path string
	ctx  error
}

func (f *fakeEncoder) Encode(ctx context.Context, _ *pcm.Buffer, path string) error {
	f.c.add("encode")
	f.path = path
	f.ctx = ctx.Err()
	return nil
}

type fakeTranscriber struct {
	c    *calls
	text string
	err  error
}

func (f fakeTranscriber) Name() string { return "fake" }

func (f fakeTranscriber) Transcribe(_ context.Context, path string) (stt.STTOutput, error) {
	f.c.add("transcribe")
	return stt.STTOutput{Content: f.text, Path: path}, f.err
}

type fakeReporter struct {
	c   *calls
	got report.Transcript
}

func (f *fakeReporter) Generate(_ context.Context, t report.Transcript) (*report.Report, error) {
	f.c.add("report")
	f.got = t
	return &report.Report{Path: filepath.Join(t.OutputDir, "Titolo_07_03_2025.docx")}, nil
}

func newTestPipeline(t *testing.T, tr fakeTranscriber, dirs Dirs) (*Pipeline, *calls, *fakeEncoder, *fakeReporter) {
	c := tr.c
	enc := &fakeEncoder{c: c}
	rep := &fakeReporter{c: c}
	p := NewPipeline(fakeProcessor{c}, enc, tr, rep, dirs, testLogger(t))
	p.now = func() time.Time { return time.Date(2025, 3, 7, 9, 5, 0, 0, time.UTC) }
	return p, c, enc, rep
}

func stereo(frames int) *pcm.Buffer {
	b := pcm.NewBuffer(2, 44100)
	b.Append(make([]float32, frames*2))
	return b
}

var session = Session{ID: uuid.New(), StartedAt: time.Date(2025, 3, 7, 14, 30, 0, 0, time.UTC)}

func TestSessionNames(t *testing.T) {
	if got := session.RecordingName(); got != "registrazione_07_03_2025_14_30.mp3" {
		t.Errorf("recording = %q", got)
	}
	if got := session.TranscriptName(); got != "registrazione_07_03_2025_14_30.txt" {
		t.Errorf("transcript = %q", got)
	}
}

func TestPipelineRun(t *testing.T) {
	dir := t.TempDir()
	dirs := Dirs{
		Recordings:  filepath.Join(dir, "registrazioni"),
		Transcripts: filepath.Join(dir, "trascrizioni"),
		Reports:     filepath.Join(dir, "report"),
	}
	p, c, enc, rep := newTestPipeline(t, fakeTranscriber{c: &calls{}, text: "buongiorno a tutti"}, dirs)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := p.Run(ctx, session, stereo(100))
	if err != nil {
		t.Fatal(err)
	}

	if want := []string{"process", "encode", "transcribe", "report"}; !reflect.DeepEqual(c.names, want) {
		t.Errorf("stages = %v, want %v", c.names, want)
	}
	if enc.ctx != nil {
		t.Errorf("stages must not see the caller's cancellation, got %v", enc.ctx)
	}
	if want := filepath.Join(dirs.Recordings, "registrazione_07_03_2025_14_30.mp3"); res.AudioPath != want || enc.path != want {
		t.Errorf("audio path = %q", res.AudioPath)
	}
	data, err := os.ReadFile(res.TranscriptPath)
	if err != nil || string(data) != "buongiorno a tutti" {
		t.Errorf("transcript file: %q, %v", data, err)
	}
	if rep.got.OutputDir != dirs.Reports || rep.got.Text != "buongiorno a tutti" {
		t.Errorf("report input = %+v", rep.got)
	}
	if res.ReportPath == "" {
		t.Error("missing report path")
	}
}

func TestPipelineEmptyRecording(t *testing.T) {
	p, c, _, _ := newTestPipeline(t, fakeTranscriber{c: &calls{}}, Dirs{})
	for _, buf := range []*pcm.Buffer{nil, pcm.NewBuffer(2, 44100)} {
		if _, err := p.Run(context.Background(), session, buf); !errors.Is(err, ErrEmptyRecording) {
			t.Errorf("err = %v", err)
		}
	}
	if len(c.names) != 0 {
		t.Errorf("no stage should run, got %v", c.names)
	}
}

func TestPipelineEmptyTranscript(t *testing.T) {
	dir := t.TempDir()
	p, c, _, _ := newTestPipeline(t, fakeTranscriber{c: &calls{}, text: "  \n"}, Dirs{Recordings: dir, Transcripts: dir})
	res, err := p.Run(context.Background(), session, stereo(10))
	if !errors.Is(err, stt.ErrEmptyTranscript) {
		t.Fatalf("err = %v", err)
	}
	if res.AudioPath == "" || res.TranscriptPath != "" {
		t.Errorf("result = %+v", res)
	}
	if c.names[len(c.names)-1] != "transcribe" {
		t.Errorf("stages = %v", c.names)
	}
}

func TestTranscribeAndReport(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "riunione.mp3")
	if err := os.WriteFile(audio, []byte("ID3"), 0o644); err != nil {
		t.Fatal(err)
	}
	p, c, _, rep := newTestPipeline(t, fakeTranscriber{c: &calls{}, text: "testo"}, Dirs{})

	res, err := p.TranscribeAndReport(context.Background(), audio)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "trascrizione_07_03_2025_09_05.txt"); res.TranscriptPath != want {
		t.Errorf("transcript = %q, want %q", res.TranscriptPath, want)
	}
	if rep.got.OutputDir != dir {
		t.Errorf("report dir = %q", rep.got.OutputDir)
	}
	if want := []string{"transcribe", "report"}; !reflect.DeepEqual(c.names, want) {
		t.Errorf("stages = %v", c.names)
	}
}

func TestTranscribeAndReportMissingFile(t *testing.T) {
	p, c, _, _ := newTestPipeline(t, fakeTranscriber{c: &calls{}}, Dirs{})
	_, err := p.TranscribeAndReport(context.Background(), filepath.Join(t.TempDir(), "nope.mp3"))
	if !errors.Is(err, stt.ErrUnreadableAudio) {
		t.Fatalf("err = %v", err)
	}
	if len(c.names) != 0 {
		t.Errorf("stages = %v", c.names)
	}
}

type scriptedDetector struct {
	answers []bool
	i       int
}

func (d *scriptedDetector) HasMeetingTab(context.Context) bool {
	if d.i >= len(d.answers) {
		return d.answers[len(d.answers)-1]
	}
	a := d.answers[d.i]
	d.i++
	return a
}

// frameSource delivers a fixed number of frames as soon as it is opened.
type frameSource struct {
	frames  int
	openErr error
	opens   int
	closes  int
}

func (s *frameSource) Format() capture.Format { return capture.Format{Channels: 2, SampleRate: 44100} }

func (s *frameSource) Open(out chan<- []float32) error {
	if s.openErr != nil {
		return s.openErr
	}
	s.opens++
	for i := 0; i < s.frames; i++ {
		out <- []float32{0.1, 0.2}
	}
	return nil
}

func (s *frameSource) Close() error {
	s.closes++
	return nil
}

type fakeRunner struct {
	sessions []Session
	frames   []int
	err      error
}

func (r *fakeRunner) Run(_ context.Context, s Session, buf *pcm.Buffer) (*Result, error) {
	r.sessions = append(r.sessions, s)
	r.frames = append(r.frames, buf.Frames())
	return &Result{ReportPath: "r.docx"}, r.err
}

func newTestMonitor(t *testing.T, det Detector, src *frameSource, run Runner, interval time.Duration) *Monitor {
	rec := capture.NewRecorder(src, 64, testLogger(t))
	return NewMonitor(det, rec, run, interval, testLogger(t))
}

func TestMonitorRecordsOneSession(t *testing.T) {
	src := &frameSource{frames: 8}
	run := &fakeRunner{}
	m := newTestMonitor(t, &scriptedDetector{answers: []bool{false, true, true, false}}, src, run, time.Second)

	states := []MonitorPhase{}
	for i := 0; i < 4; i++ {
		m.Step(context.Background())
		states = append(states, m.State())
	}

	if want := []MonitorPhase{IDLE, RECORDING, RECORDING, IDLE}; !reflect.DeepEqual(states, want) {
		t.Errorf("states = %v, want %v", states, want)
	}
	if src.opens != 1 || src.closes != 1 {
		t.Errorf("opens=%d closes=%d", src.opens, src.closes)
	}
	if len(run.sessions) != 1 || run.frames[0] != 8 {
		t.Fatalf("runs = %d frames = %v", len(run.sessions), run.frames)
	}
	if run.sessions[0].ID == uuid.Nil || run.sessions[0].StartedAt.IsZero() {
		t.Errorf("session not stamped: %+v", run.sessions[0])
	}
}

func TestMonitorStartFailureStaysIdle(t *testing.T) {
	src := &frameSource{openErr: errors.New("device busy")}
	run := &fakeRunner{}
	m := newTestMonitor(t, &scriptedDetector{answers: []bool{true}}, src, run, time.Second)

	m.Step(context.Background())
	if m.State() != IDLE {
		t.Fatalf("state = %s", m.State())
	}

	src.openErr = nil
	m.Step(context.Background())
	if m.State() != RECORDING {
		t.Fatalf("retry should start recording, state = %s", m.State())
	}
}

func TestMonitorPipelineErrorReturnsToIdle(t *testing.T) {
	run := &fakeRunner{err: errors.New("transcription: boom")}
	m := newTestMonitor(t, &scriptedDetector{answers: []bool{true, false}}, &frameSource{frames: 1}, run, time.Second)

	m.Step(context.Background())
	m.Step(context.Background())
	if m.State() != IDLE || len(run.sessions) != 1 {
		t.Errorf("state = %s runs = %d", m.State(), len(run.sessions))
	}
}

func TestMonitorShutdownFinishesRecording(t *testing.T) {
	src := &frameSource{frames: 3}
	run := &fakeRunner{}
	m := newTestMonitor(t, &scriptedDetector{answers: []bool{true}}, src, run, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	if len(run.sessions) != 1 || src.closes != 1 {
		t.Errorf("runs = %d closes = %d", len(run.sessions), src.closes)
	}
	if m.State() != IDLE {
		t.Errorf("state = %s", m.State())
	}
}

func TestCLITranscriptName(t *testing.T) {
	got := cliTranscriptName(time.Date(2025, 12, 1, 8, 0, 0, 0, time.UTC))
	if !strings.HasPrefix(got, "trascrizione_01_12_2025_08_00") {
		t.Errorf("name = %q", got)
	}
}
