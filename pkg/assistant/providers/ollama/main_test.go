package ollama

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/xpanvictor/verbale/pkg/Logger"
	"github.com/xpanvictor/verbale/pkg/assistant"
)

var _ assistant.TextSource = &OllamaProvider{}

func TestNoServer(t *testing.T) {
	o := New(nil, assistant.GenerationConfig{Model: "llama3.1:8b-instruct"}, Logger.From(zaptest.NewLogger(t)))
	_, err := assistant.Collect(context.Background(), o, assistant.Prompt{Instruction: "x"})
	if !errors.Is(err, ErrNoServer) || !errors.Is(err, assistant.ErrStreamFailed) {
		t.Fatalf("expected ErrNoServer, got %v", err)
	}
}

func TestOptions(t *testing.T) {
	o := New(nil, assistant.GenerationConfig{Temperature: 0.2, TopP: 1, TopK: 40, MaxOutputTokens: 60000}, Logger.Nop())
	opts := o.options()
	if opts["temperature"] != float32(0.2) || opts["top_k"] != int32(40) || opts["num_predict"] != int32(60000) {
		t.Errorf("unexpected options %v", opts)
	}
}
