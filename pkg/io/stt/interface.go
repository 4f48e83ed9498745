package stt

import (
	"context"
	"errors"
	"time"
)

var (
	ErrEmptyTranscript = errors.New("stt: empty transcript")
	ErrUnreadableAudio = errors.New("stt: unreadable audio file")
)

type STTOutput struct {
	Content        string
	Language       string
	Path           string
	STTGeneratedAt time.Time
}

// Transcriber turns an audio file into plain text. Implementations keep
// their client for the life of the process.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (STTOutput, error)
	Name() string
}
