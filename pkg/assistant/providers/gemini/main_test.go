package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"

	"github.com/xpanvictor/verbale/pkg/Logger"
	"github.com/xpanvictor/verbale/pkg/assistant"
)

var (
	_ assistant.Answerer   = &GeminiProvider{}
	_ assistant.TextSource = &GeminiProvider{}
)

func TestResponseText(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		want string
	}{
		{"nil", nil, ""},
		{"no candidates", &genai.GenerateContentResponse{}, ""},
		{"joins text parts", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("Sono le "), genai.Blob{MIMEType: "image/png"}, genai.Text("dieci.")}},
		}}}, "Sono le dieci."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := responseText(tt.resp); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMissingKey(t *testing.T) {
	gp := New("", assistant.GenerationConfig{Model: "gemini-2.0-flash"}, SafetyMediumAndAbove, Logger.Nop())
	if _, err := gp.Answer(context.Background(), "Che ore sono?"); !errors.Is(err, assistant.ErrMissingAPIKey) {
		t.Errorf("Answer: %v", err)
	}
	if _, err := assistant.Collect(context.Background(), gp, assistant.Prompt{Instruction: "x"}); !errors.Is(err, assistant.ErrMissingAPIKey) {
		t.Errorf("StreamText: %v", err)
	}
}

func TestSafetySettings(t *testing.T) {
	if len(SafetyMediumAndAbove) != 4 {
		t.Fatalf("expected 4 categories, got %d", len(SafetyMediumAndAbove))
	}
	for _, s := range SafetyMediumAndAbove {
		if s.Threshold != genai.HarmBlockMediumAndAbove {
			t.Errorf("category %v threshold %v", s.Category, s.Threshold)
		}
	}
}
