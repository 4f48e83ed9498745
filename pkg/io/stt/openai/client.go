// Package openai transcribes through the OpenAI audio API.
package openai

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	oa "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/xpanvictor/verbale/pkg/Logger"
	"github.com/xpanvictor/verbale/pkg/io/stt"
)

type Transcriber struct {
	client   oa.Client
	model    string
	language string
	logger   *Logger.Logger
}

func New(apiKey, model, language string, logger *Logger.Logger, opts ...option.RequestOption) *Transcriber {
	if model == "" {
		model = string(oa.AudioModelWhisper1)
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Transcriber{
		client:   oa.NewClient(opts...),
		model:    model,
		language: language,
		logger:   logger,
	}
}

func (t *Transcriber) Name() string { return "openai" }

func (t *Transcriber) Transcribe(ctx context.Context, path string) (stt.STTOutput, error) {
	f, err := os.Open(path)
	if err != nil {
		return stt.STTOutput{}, fmt.Errorf("%w: %v", stt.ErrUnreadableAudio, err)
	}
	defer f.Close()

	params := oa.AudioTranscriptionNewParams{
		File:  f,
		Model: oa.AudioModel(t.model),
	}
	if t.language != "" {
		params.Language = oa.String(t.language)
	}

	t.logger.Infof("transcribing %s with %s", filepath.Base(path), t.model)
	res, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return stt.STTOutput{}, fmt.Errorf("openai transcription: %w", err)
	}

	out := stt.STTOutput{
		Content:        strings.TrimSpace(res.Text),
		Language:       t.language,
		Path:           path,
		STTGeneratedAt: time.Now(),
	}
	if out.Content == "" {
		return out, stt.ErrEmptyTranscript
	}
	return out, nil
}
