// Package genai streams report text from Gemini through the
// google.golang.org/genai SDK.
package genai

import (
	"context"
	"fmt"
	"iter"
	"sync"

	"google.golang.org/genai"

	"github.com/xpanvictor/verbale/pkg/Logger"
	"github.com/xpanvictor/verbale/pkg/assistant"
)

const transcriptMIME = "text/plain"

type Provider struct {
	apiKey  string
	cfg     assistant.GenerationConfig
	baseURL string
	logger  *Logger.Logger

	mu     sync.Mutex
	client *genai.Client
}

type Option func(*Provider)

// WithBaseURL points the client at another endpoint.
func WithBaseURL(url string) Option {
	return func(p *Provider) { p.baseURL = url }
}

// New does not contact the API; a missing key surfaces on first use.
func New(apiKey string, cfg assistant.GenerationConfig, logger *Logger.Logger, opts ...Option) *Provider {
	p := &Provider{apiKey: apiKey, cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string { return "genai/" + p.cfg.Model }

func (p *Provider) getClient(ctx context.Context) (*genai.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		return p.client, nil
	}
	if p.apiKey == "" {
		return nil, assistant.ErrMissingAPIKey
	}

	cc := &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if p.baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: p.baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	p.client = client
	return client, nil
}

func (p *Provider) contentConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(p.cfg.Temperature),
		TopP:             genai.Ptr(p.cfg.TopP),
		TopK:             genai.Ptr(float32(p.cfg.TopK)),
		MaxOutputTokens:  p.cfg.MaxOutputTokens,
		ResponseMIMEType: "text/plain",
	}
}

func (p *Provider) StreamText(ctx context.Context, prompt assistant.Prompt) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		client, err := p.getClient(ctx)
		if err != nil {
			yield("", err)
			return
		}

		var attachment *genai.Part
		if prompt.AttachmentPath != "" {
			file, err := client.Files.UploadFromPath(ctx, prompt.AttachmentPath, &genai.UploadFileConfig{MIMEType: transcriptMIME})
			if err != nil {
				yield("", fmt.Errorf("upload %s: %w", prompt.AttachmentPath, err))
				return
			}
			p.logger.Debugf("uploaded transcript as %s", file.URI)
			attachment = genai.NewPartFromURI(file.URI, file.MIMEType)
		}

		contents := buildContents(prompt, attachment)
		for resp, err := range client.Models.GenerateContentStream(ctx, p.cfg.Model, contents, p.contentConfig()) {
			if err != nil {
				yield("", err)
				return
			}
			text := resp.Text()
			if text == "" {
				continue
			}
			if !yield(text, nil) {
				return
			}
		}
	}
}

// buildContents puts the transcript (inline or uploaded) before the
// instruction in a single user turn.
func buildContents(prompt assistant.Prompt, attachment *genai.Part) []*genai.Content {
	var parts []*genai.Part
	switch {
	case attachment != nil:
		parts = append(parts, attachment)
	case prompt.Document != "":
		parts = append(parts, genai.NewPartFromText(prompt.Document))
	}
	parts = append(parts, genai.NewPartFromText(prompt.Instruction))
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}
