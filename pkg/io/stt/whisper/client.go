package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xpanvictor/verbale/pkg/Logger"
	"github.com/xpanvictor/verbale/pkg/io/stt"
)

// TranscriptionResponse represents the response from Whisper STT service
type TranscriptionResponse struct {
	Text     string                 `json:"text"`
	Language string                 `json:"language"`
	Segments []TranscriptionSegment `json:"segments,omitempty"`
}

// TranscriptionSegment represents a timed segment of transcription
type TranscriptionSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	ID    int     `json:"id"`
}

// WhisperClient talks to a whisper-asr-webservice instance, which keeps
// the model loaded between requests.
type WhisperClient struct {
	baseURL    string
	language   string
	httpClient *http.Client
	logger     *Logger.Logger
}

// NewWhisperClient creates a new Whisper client. A zero timeout waits for
// the service as long as it takes.
func NewWhisperClient(baseURL, language string, timeout time.Duration, logger *Logger.Logger) *WhisperClient {
	return &WhisperClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: language,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (w *WhisperClient) Name() string { return "whisper" }

// Transcribe uploads the audio file and returns the transcript.
func (w *WhisperClient) Transcribe(ctx context.Context, path string) (stt.STTOutput, error) {
	f, err := os.Open(path)
	if err != nil {
		return stt.STTOutput{}, fmt.Errorf("%w: %v", stt.ErrUnreadableAudio, err)
	}
	defer f.Close()

	// Create multipart form data
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("audio_file", filepath.Base(path))
	if err != nil {
		return stt.STTOutput{}, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return stt.STTOutput{}, fmt.Errorf("%w: %v", stt.ErrUnreadableAudio, err)
	}
	if err := writer.Close(); err != nil {
		return stt.STTOutput{}, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	q := url.Values{}
	q.Set("encode", "true")
	q.Set("task", "transcribe")
	q.Set("output", "json")
	if w.language != "" {
		q.Set("language", w.language)
	}
	requestURL := fmt.Sprintf("%s/asr?%s", w.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, &body)
	if err != nil {
		return stt.STTOutput{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	w.logger.Infof("transcribing %s via %s", filepath.Base(path), w.baseURL)
	resp, err := w.httpClient.Do(req)
	if err != nil {
		return stt.STTOutput{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return stt.STTOutput{}, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		w.logger.Errorf("Whisper service error (status %d): %s", resp.StatusCode, string(responseBody))
		return stt.STTOutput{}, fmt.Errorf("whisper service returned status %d: %s", resp.StatusCode, string(responseBody))
	}

	out := stt.STTOutput{Path: path, STTGeneratedAt: time.Now()}

	var transcription TranscriptionResponse
	if err := json.Unmarshal(responseBody, &transcription); err != nil {
		// some deployments answer with plain text regardless of output=json
		w.logger.Debugf("treating whisper response as plain text (%d bytes)", len(responseBody))
		out.Content = strings.TrimSpace(string(responseBody))
		out.Language = w.language
	} else {
		out.Content = strings.TrimSpace(transcription.Text)
		out.Language = transcription.Language
	}

	if out.Content == "" {
		return out, stt.ErrEmptyTranscript
	}
	w.logger.Debugf("Whisper transcription: %d chars (language: %s)", len(out.Content), out.Language)
	return out, nil
}
