package ollama

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/ollama/ollama/api"
	"github.com/presbrey/ollamafarm"

	"github.com/xpanvictor/verbale/pkg/Logger"
	"github.com/xpanvictor/verbale/pkg/assistant"
)

var ErrNoServer = errors.New("ollama: no server online")

// errStop aborts Generate when the consumer stops ranging.
var errStop = errors.New("ollama: consumer stopped")

// OllamaProvider generates report text on a local farm of ollama servers.
type OllamaProvider struct {
	ollamafarm *ollamafarm.Farm
	cfg        assistant.GenerationConfig
	logger     *Logger.Logger
}

func New(urls []string, cfg assistant.GenerationConfig, logger *Logger.Logger) *OllamaProvider {
	farm := ollamafarm.New()
	for _, u := range urls {
		if err := farm.RegisterURL(u, nil); err != nil {
			logger.Warnf("ollama server %s not registered: %v", u, err)
		}
	}
	return &OllamaProvider{ollamafarm: farm, cfg: cfg, logger: logger}
}

func (o *OllamaProvider) Name() string { return "ollama/" + o.cfg.Model }

func (o *OllamaProvider) options() map[string]interface{} {
	return map[string]interface{}{
		"temperature": o.cfg.Temperature,
		"top_p":       o.cfg.TopP,
		"top_k":       o.cfg.TopK,
		"num_predict": o.cfg.MaxOutputTokens,
	}
}

func (o *OllamaProvider) StreamText(ctx context.Context, prompt assistant.Prompt) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		// pick first available client
		server := o.ollamafarm.First(&ollamafarm.Where{Offline: false})
		if server == nil {
			yield("", fmt.Errorf("%w for model %s", ErrNoServer, o.cfg.Model))
			return
		}

		req := &api.GenerateRequest{
			Model:   o.cfg.Model,
			Prompt:  prompt.Inline(),
			Options: o.options(),
		}
		err := server.Client().Generate(ctx, req, func(r api.GenerateResponse) error {
			if r.Response == "" {
				return nil
			}
			if !yield(r.Response, nil) {
				return errStop
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStop) {
			yield("", fmt.Errorf("ollama generate: %w", err))
		}
	}
}
