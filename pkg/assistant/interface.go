package assistant

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
)

var (
	// ErrStreamFailed means the model failed before producing any text.
	ErrStreamFailed = errors.New("assistant: stream failed")
	// ErrStreamInterrupted means the model failed after producing some text.
	ErrStreamInterrupted = errors.New("assistant: stream interrupted")
	ErrMissingAPIKey     = errors.New("assistant: api key not configured")
	ErrEmptyResponse     = errors.New("assistant: empty response")
)

type GenerationConfig struct {
	Model           string
	Temperature     float32
	TopP            float32
	TopK            int32
	MaxOutputTokens int32
}

// Prompt carries one instruction plus the document it applies to. When
// AttachmentPath is set, providers that support uploads send the file
// instead of inlining Document.
type Prompt struct {
	Instruction    string
	Document       string
	AttachmentPath string
}

// Inline joins document and instruction for providers without uploads.
func (p Prompt) Inline() string {
	if p.Document == "" {
		return p.Instruction
	}
	return p.Document + "\n\n" + p.Instruction
}

// TextSource yields the chunks of one model response. Every call starts a
// fresh request, so a caller may retry by calling it again.
type TextSource interface {
	StreamText(ctx context.Context, prompt Prompt) iter.Seq2[string, error]
	Name() string
}

// Answerer returns a single short completion.
type Answerer interface {
	Answer(ctx context.Context, prompt string) (string, error)
}

type StreamError struct {
	Kind     error
	Chunks   int
	Received int
	Err      error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("%v after %d chunks (%d bytes): %v", e.Kind, e.Chunks, e.Received, e.Err)
}

func (e *StreamError) Is(target error) bool { return target == e.Kind }

func (e *StreamError) Unwrap() error { return e.Err }

// Collect drains a stream into one string. Partial text is discarded on
// failure.
func Collect(ctx context.Context, src TextSource, prompt Prompt) (string, error) {
	var b strings.Builder
	chunks := 0
	for chunk, err := range src.StreamText(ctx, prompt) {
		if err != nil {
			kind := ErrStreamFailed
			if chunks > 0 {
				kind = ErrStreamInterrupted
			}
			return "", &StreamError{Kind: kind, Chunks: chunks, Received: b.Len(), Err: err}
		}
		b.WriteString(chunk)
		chunks++
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}
