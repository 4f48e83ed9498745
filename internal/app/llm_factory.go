package app

import (
	"fmt"

	"github.com/xpanvictor/verbale/internal/config"
	"github.com/xpanvictor/verbale/pkg/Logger"
	"github.com/xpanvictor/verbale/pkg/assistant"
	"github.com/xpanvictor/verbale/pkg/assistant/providers/gemini"
	"github.com/xpanvictor/verbale/pkg/assistant/providers/genai"
	"github.com/xpanvictor/verbale/pkg/assistant/providers/ollama"
	"github.com/xpanvictor/verbale/pkg/io/stt"
	sttopenai "github.com/xpanvictor/verbale/pkg/io/stt/openai"
	"github.com/xpanvictor/verbale/pkg/io/stt/whisper"
)

// Report text sources
const (
	ProviderGenAI  = "genai"
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

// Transcription backends
const (
	BackendWhisper = "whisper"
	BackendOpenAI  = "openai"
)

func reportGenerationConfig(cfg config.ReportConfig) assistant.GenerationConfig {
	return assistant.GenerationConfig{
		Model:           cfg.Model,
		Temperature:     cfg.Temperature,
		TopP:            cfg.TopP,
		TopK:            cfg.TopK,
		MaxOutputTokens: cfg.MaxOutputTokens,
	}
}

func skillGenerationConfig(cfg config.SkillConfig) assistant.GenerationConfig {
	return assistant.GenerationConfig{
		Model:           cfg.Model,
		Temperature:     cfg.Temperature,
		TopP:            cfg.TopP,
		TopK:            cfg.TopK,
		MaxOutputTokens: cfg.MaxOutputTokens,
	}
}

// NewReportSource creates the text source used for meeting reports.
func NewReportSource(cfg *config.Settings, logger *Logger.Logger) (assistant.TextSource, error) {
	gc := reportGenerationConfig(cfg.Report)
	key := cfg.AssistantKeys.GeminiApiKey
	log := logger.Named("report-llm")

	switch cfg.Report.Provider {
	case ProviderGenAI, "":
		return genai.New(key, gc, log), nil
	case ProviderGemini:
		return gemini.New(key, gc, gemini.SafetyMediumAndAbove, log), nil
	case ProviderOllama:
		if len(cfg.Report.OllamaURLs) == 0 {
			return nil, fmt.Errorf("report provider ollama needs report.ollama_urls")
		}
		log.Infof("ollama farm created for %v, model %s", cfg.Report.OllamaURLs, gc.Model)
		return ollama.New(cfg.Report.OllamaURLs, gc, log), nil
	default:
		return nil, fmt.Errorf("unknown report provider %q", cfg.Report.Provider)
	}
}

// NewSkillAnswerer creates the Gemini model behind the voice skill.
func NewSkillAnswerer(cfg *config.Settings, logger *Logger.Logger) *gemini.GeminiProvider {
	return gemini.New(
		cfg.AssistantKeys.GeminiApiKey,
		skillGenerationConfig(cfg.Skill),
		gemini.SafetyMediumAndAbove,
		logger.Named("skill-llm"),
	)
}

// NewTranscriber creates the configured speech-to-text backend once per
// process.
func NewTranscriber(cfg *config.Settings, logger *Logger.Logger) (stt.Transcriber, error) {
	tc := cfg.Transcriber
	log := logger.Named("stt")

	switch tc.Backend {
	case BackendWhisper, "":
		return whisper.NewWhisperClient(tc.WhisperURL, tc.Language, tc.Timeout, log), nil
	case BackendOpenAI:
		if cfg.AssistantKeys.OpenAiApiKey == "" {
			return nil, fmt.Errorf("transcriber openai: %w", assistant.ErrMissingAPIKey)
		}
		return sttopenai.New(cfg.AssistantKeys.OpenAiApiKey, tc.OpenAIModel, tc.Language, log), nil
	default:
		return nil, fmt.Errorf("unknown transcriber backend %q", tc.Backend)
	}
}
