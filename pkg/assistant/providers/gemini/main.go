package gemini

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/xpanvictor/verbale/pkg/Logger"
	"github.com/xpanvictor/verbale/pkg/assistant"
)

// SafetyMediumAndAbove blocks medium and high risk content in the four
// harm categories.
var SafetyMediumAndAbove = []*genai.SafetySetting{
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockMediumAndAbove},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockMediumAndAbove},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockMediumAndAbove},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockMediumAndAbove},
}

// GeminiProvider wraps the generative-ai-go client. The client is created
// on first use so a missing key only fails the calls that need it.
type GeminiProvider struct {
	apiKey   string
	cfg      assistant.GenerationConfig
	safety   []*genai.SafetySetting
	endpoint string
	logger   *Logger.Logger

	mu     sync.Mutex
	client *genai.Client
}

// New creates a new GeminiProvider instance.
func New(apiKey string, cfg assistant.GenerationConfig, safety []*genai.SafetySetting, logger *Logger.Logger) *GeminiProvider {
	return &GeminiProvider{apiKey: apiKey, cfg: cfg, safety: safety, logger: logger}
}

// WithEndpoint overrides the API endpoint.
func (gp *GeminiProvider) WithEndpoint(endpoint string) *GeminiProvider {
	gp.endpoint = endpoint
	return gp
}

func (gp *GeminiProvider) Name() string { return "gemini/" + gp.cfg.Model }

func (gp *GeminiProvider) model(ctx context.Context) (*genai.GenerativeModel, error) {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	if gp.client == nil {
		if gp.apiKey == "" {
			return nil, assistant.ErrMissingAPIKey
		}
		opts := []option.ClientOption{option.WithAPIKey(gp.apiKey)}
		if gp.endpoint != "" {
			opts = append(opts, option.WithEndpoint(gp.endpoint))
		}
		client, err := genai.NewClient(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini API client: %w", err)
		}
		gp.client = client
	}

	m := gp.client.GenerativeModel(gp.cfg.Model)
	m.SetTemperature(gp.cfg.Temperature)
	m.SetTopP(gp.cfg.TopP)
	m.SetTopK(gp.cfg.TopK)
	m.SetMaxOutputTokens(gp.cfg.MaxOutputTokens)
	m.SafetySettings = gp.safety
	return m, nil
}

// Answer sends a single prompt and returns the text of the first candidate.
func (gp *GeminiProvider) Answer(ctx context.Context, prompt string) (string, error) {
	m, err := gp.model(ctx)
	if err != nil {
		return "", err
	}
	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := responseText(resp)
	if text == "" {
		return "", assistant.ErrEmptyResponse
	}
	return text, nil
}

// StreamText streams a response. Attachments are inlined since this SDK
// path has no upload step.
func (gp *GeminiProvider) StreamText(ctx context.Context, prompt assistant.Prompt) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		m, err := gp.model(ctx)
		if err != nil {
			yield("", err)
			return
		}
		m.ResponseMIMEType = "text/plain"

		it := m.GenerateContentStream(ctx, genai.Text(prompt.Inline()))
		for {
			resp, err := it.Next()
			if errors.Is(err, iterator.Done) {
				return
			}
			if err != nil {
				yield("", fmt.Errorf("failed to receive from Gemini stream: %w", err))
				return
			}
			if text := responseText(resp); text != "" {
				if !yield(text, nil) {
					return
				}
			}
		}
	}
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

func (gp *GeminiProvider) Close() error {
	gp.mu.Lock()
	defer gp.mu.Unlock()
	if gp.client == nil {
		return nil
	}
	err := gp.client.Close()
	gp.client = nil
	return err
}
