package meeting

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xpanvictor/verbale/internal/domains/report"
	"github.com/xpanvictor/verbale/pkg/Logger"
	"github.com/xpanvictor/verbale/pkg/io/pcm"
	"github.com/xpanvictor/verbale/pkg/io/stt"
)

var ErrEmptyRecording = errors.New("Nessun audio registrato")

type Processor interface {
	Process(buf *pcm.Buffer) (*pcm.Buffer, error)
}

type Encoder interface {
	Encode(ctx context.Context, buf *pcm.Buffer, path string) error
}

type Reporter interface {
	Generate(ctx context.Context, t report.Transcript) (*report.Report, error)
}

type Dirs struct {
	Recordings  string
	Transcripts string
	Reports     string
}

// Result lists the files one run produced. Fields stay empty for stages
// that did not complete.
type Result struct {
	AudioPath      string
	TranscriptPath string
	ReportPath     string
}

type Pipeline struct {
	processor   Processor
	encoder     Encoder
	transcriber stt.Transcriber
	reporter    Reporter
	dirs        Dirs
	now         func() time.Time
	logger      *Logger.Logger
}

func NewPipeline(
	processor Processor,
	encoder Encoder,
	transcriber stt.Transcriber,
	reporter Reporter,
	dirs Dirs,
	logger *Logger.Logger,
) *Pipeline {
	return &Pipeline{
		processor:   processor,
		encoder:     encoder,
		transcriber: transcriber,
		reporter:    reporter,
		dirs:        dirs,
		now:         time.Now,
		logger:      logger,
	}
}

// Run post-processes a finished recording, saves it as mp3, transcribes it
// and writes the report. Cancelling ctx does not interrupt a running
// pipeline.
func (p *Pipeline) Run(ctx context.Context, s Session, buf *pcm.Buffer) (*Result, error) {
	ctx = context.WithoutCancel(ctx)
	res := &Result{}

	if buf == nil || buf.Empty() {
		return res, ErrEmptyRecording
	}

	processed, err := p.processor.Process(buf)
	if err != nil {
		return res, fmt.Errorf("post-processing: %w", err)
	}

	audioPath := filepath.Join(p.dirs.Recordings, s.RecordingName())
	if err := p.encoder.Encode(ctx, processed, audioPath); err != nil {
		return res, fmt.Errorf("encoding: %w", err)
	}
	res.AudioPath = audioPath
	p.logger.Infof("session %s: audio saved to %s", s.ID, audioPath)

	text, err := p.transcribe(ctx, audioPath)
	if err != nil {
		return res, err
	}

	transcriptPath := filepath.Join(p.dirs.Transcripts, s.TranscriptName())
	if err := writeTranscript(transcriptPath, text); err != nil {
		return res, err
	}
	res.TranscriptPath = transcriptPath
	p.logger.Infof("session %s: transcript saved to %s", s.ID, transcriptPath)

	rep, err := p.reporter.Generate(ctx, report.Transcript{
		Text:      text,
		Path:      transcriptPath,
		OutputDir: p.dirs.Reports,
	})
	if err != nil {
		return res, err
	}
	res.ReportPath = rep.Path
	return res, nil
}

// TranscribeAndReport is the offline flow for an existing audio file. The
// transcript and the report land next to the audio.
func (p *Pipeline) TranscribeAndReport(ctx context.Context, audioPath string) (*Result, error) {
	res := &Result{AudioPath: audioPath}
	if _, err := os.Stat(audioPath); err != nil {
		return res, fmt.Errorf("%w: %v", stt.ErrUnreadableAudio, err)
	}

	p.logger.Infof("transcribing %s with %s", audioPath, p.transcriber.Name())
	text, err := p.transcribe(ctx, audioPath)
	if err != nil {
		return res, err
	}

	dir := filepath.Dir(audioPath)
	transcriptPath := filepath.Join(dir, cliTranscriptName(p.now()))
	if err := writeTranscript(transcriptPath, text); err != nil {
		return res, err
	}
	res.TranscriptPath = transcriptPath
	p.logger.Infof("transcript saved to %s", transcriptPath)

	rep, err := p.reporter.Generate(ctx, report.Transcript{Text: text, Path: transcriptPath, OutputDir: dir})
	if err != nil {
		return res, err
	}
	res.ReportPath = rep.Path
	return res, nil
}

func (p *Pipeline) transcribe(ctx context.Context, path string) (string, error) {
	out, err := p.transcriber.Transcribe(ctx, path)
	if err != nil {
		return "", fmt.Errorf("transcription: %w", err)
	}
	if strings.TrimSpace(out.Content) == "" {
		return "", fmt.Errorf("transcription: %w", stt.ErrEmptyTranscript)
	}
	return out.Content, nil
}

func writeTranscript(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("transcript dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}
