package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "VERBALE"

type MonitorConfig struct {
	Interval       time.Duration `mapstructure:"interval"`
	Browser        string        `mapstructure:"browser"`
	MeetingDomains []string      `mapstructure:"meeting_domains"`
}

type AudioConfig struct {
	Device          string  `mapstructure:"device"`
	SampleRate      int     `mapstructure:"sample_rate"`
	Channels        int     `mapstructure:"channels"`
	FramesPerBuffer int     `mapstructure:"frames_per_buffer"`
	QueueFrames     int     `mapstructure:"queue_frames"`
	SystemGain      float64 `mapstructure:"system_gain"`
	MicGain         float64 `mapstructure:"mic_gain"`
	CutoffHz        float64 `mapstructure:"cutoff_hz"`
	FilterOrder     int     `mapstructure:"filter_order"`
	TargetPeak      float64 `mapstructure:"target_peak"`
	Denoise         bool    `mapstructure:"denoise"`
	Bitrate         string  `mapstructure:"bitrate"`
	FFmpegPath      string  `mapstructure:"ffmpeg_path"`
}

type PathsConfig struct {
	Recordings  string `mapstructure:"recordings"`
	Transcripts string `mapstructure:"transcripts"`
	// Reports defaults to Transcripts when empty.
	Reports string `mapstructure:"reports"`
}

func (p PathsConfig) ReportsDir() string {
	if p.Reports != "" {
		return p.Reports
	}
	return p.Transcripts
}

type TranscriberConfig struct {
	Backend     string        `mapstructure:"backend"` // whisper | openai
	WhisperURL  string        `mapstructure:"whisper_url"`
	Language    string        `mapstructure:"language"`
	OpenAIModel string        `mapstructure:"openai_model"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type ReportConfig struct {
	Provider         string   `mapstructure:"provider"` // genai | gemini | ollama
	Model            string   `mapstructure:"model"`
	Temperature      float32  `mapstructure:"temperature"`
	TopP             float32  `mapstructure:"top_p"`
	TopK             int32    `mapstructure:"top_k"`
	MaxOutputTokens  int32    `mapstructure:"max_output_tokens"`
	UploadTranscript bool     `mapstructure:"upload_transcript"`
	Font             string   `mapstructure:"font"`
	OllamaURLs       []string `mapstructure:"ollama_urls"`
}

type SkillConfig struct {
	Addr            string  `mapstructure:"addr"`
	Model           string  `mapstructure:"model"`
	Temperature     float32 `mapstructure:"temperature"`
	TopP            float32 `mapstructure:"top_p"`
	TopK            int32   `mapstructure:"top_k"`
	MaxOutputTokens int32   `mapstructure:"max_output_tokens"`
	JWTSecret       string  `mapstructure:"jwt_secret"`
}

type AssistantKeysObj struct {
	GeminiApiKey string `mapstructure:"gemini_api_key"`
	OpenAiApiKey string `mapstructure:"open_ai_api_key"`
}

type Settings struct {
	Monitor       MonitorConfig     `mapstructure:"monitor"`
	Audio         AudioConfig       `mapstructure:"audio"`
	Paths         PathsConfig       `mapstructure:"paths"`
	Transcriber   TranscriberConfig `mapstructure:"transcriber"`
	Report        ReportConfig      `mapstructure:"report"`
	Skill         SkillConfig       `mapstructure:"skill"`
	AssistantKeys AssistantKeysObj  `mapstructure:"assistant_keys"`
	Env           string            `mapstructure:"env"`
	Debug         bool              `mapstructure:"debug"`
}

// Load reads config_<ENV>.yaml from the working directory or
// $HOME/.config/verbale. A missing file is not an error.
func Load() (*Settings, error) {
	// .env is optional
	_ = godotenv.Load()

	v := newViper()
	v.SetConfigName("config_" + genEnv())
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "verbale"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return decode(v)
}

// LoadFile reads settings from an explicit yaml file.
func LoadFile(path string) (*Settings, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	// provider keys keep their conventional names
	_ = v.BindEnv("assistant_keys.gemini_api_key", "GOOGLE_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("assistant_keys.open_ai_api_key", "OPENAI_API_KEY")
	return v
}

func decode(v *viper.Viper) (*Settings, error) {
	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	settings.Env = genEnv()
	return &settings, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)

	v.SetDefault("monitor.interval", 5*time.Second)
	v.SetDefault("monitor.browser", "Google Chrome")
	v.SetDefault("monitor.meeting_domains", []string{"meet.google.com", "teams.microsoft.com"})

	v.SetDefault("audio.device", "Dispositivo combinato")
	v.SetDefault("audio.sample_rate", 44100)
	v.SetDefault("audio.channels", 2)
	v.SetDefault("audio.frames_per_buffer", 1024)
	v.SetDefault("audio.queue_frames", 256)
	v.SetDefault("audio.system_gain", 0.1)
	v.SetDefault("audio.mic_gain", 0.1)
	v.SetDefault("audio.cutoff_hz", 8000.0)
	v.SetDefault("audio.filter_order", 4)
	v.SetDefault("audio.target_peak", 0.9)
	v.SetDefault("audio.denoise", true)
	v.SetDefault("audio.bitrate", "192k")
	v.SetDefault("audio.ffmpeg_path", "ffmpeg")

	v.SetDefault("paths.recordings", "registrazioni")
	v.SetDefault("paths.transcripts", "trascrizioni")
	v.SetDefault("paths.reports", "")

	v.SetDefault("transcriber.backend", "whisper")
	v.SetDefault("transcriber.whisper_url", "http://localhost:9000")
	v.SetDefault("transcriber.language", "")
	v.SetDefault("transcriber.openai_model", "whisper-1")
	v.SetDefault("transcriber.timeout", time.Duration(0))

	v.SetDefault("report.provider", "genai")
	v.SetDefault("report.model", "gemini-2.0-flash")
	v.SetDefault("report.temperature", 0.2)
	v.SetDefault("report.top_p", 1.0)
	v.SetDefault("report.top_k", 40)
	v.SetDefault("report.max_output_tokens", 60000)
	v.SetDefault("report.upload_transcript", false)
	v.SetDefault("report.font", "Calibri Light")
	v.SetDefault("report.ollama_urls", []string{"http://localhost:11434"})

	v.SetDefault("skill.addr", ":8080")
	v.SetDefault("skill.model", "gemini-2.0-flash")
	v.SetDefault("skill.temperature", 0.7)
	v.SetDefault("skill.top_p", 0.8)
	v.SetDefault("skill.top_k", 40)
	v.SetDefault("skill.max_output_tokens", 256)
	v.SetDefault("skill.jwt_secret", "")
}

func genEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "dev"
	}
	return env
}
