// Package report asks a text model for a meeting report and writes it as a
// Word document.
package report

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/xpanvictor/verbale/internal/constants/prompts"
	"github.com/xpanvictor/verbale/pkg/Logger"
	"github.com/xpanvictor/verbale/pkg/assistant"
)

// Transcript is the input of one report. OutputDir defaults to the
// directory of Path.
type Transcript struct {
	Text      string
	Path      string
	OutputDir string
}

type Report struct {
	Title       string
	Path        string
	Document    Document
	GeneratedAt time.Time
}

type Options struct {
	// UploadTranscript sends the transcript file instead of inlining it.
	UploadTranscript bool
	Now              func() time.Time
}

type Service struct {
	source   assistant.TextSource
	renderer Renderer
	opts     Options
	logger   *Logger.Logger
}

func NewService(source assistant.TextSource, renderer Renderer, opts Options, logger *Logger.Logger) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{source: source, renderer: renderer, opts: opts, logger: logger}
}

func (s *Service) Generate(ctx context.Context, t Transcript) (*Report, error) {
	prompt := assistant.Prompt{
		Instruction: prompts.MEETING_REPORT_PROMPT.GetCurrentPrompt().Content,
		Document:    t.Text,
	}
	if s.opts.UploadTranscript && t.Path != "" {
		prompt.AttachmentPath = t.Path
	}

	s.logger.Infof("requesting report from %s", s.source.Name())
	text, err := assistant.Collect(ctx, s.source, prompt)
	if err != nil {
		return nil, fmt.Errorf("report generation: %w", err)
	}

	doc := Layout(text)
	now := s.opts.Now()
	dir := t.OutputDir
	if dir == "" {
		dir = filepath.Dir(t.Path)
	}
	path := filepath.Join(dir, FileName(doc.Title, now))

	if err := s.renderer.Render(doc, path); err != nil {
		return nil, err
	}
	s.logger.Infof("report saved to %s", path)
	return &Report{Title: doc.Title, Path: path, Document: doc, GeneratedAt: now}, nil
}
