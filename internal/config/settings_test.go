package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config_test.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFileDefaults(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	path := writeConfig(t, "debug: true\n")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if !cfg.Debug {
		t.Errorf("expected debug from file")
	}
	if cfg.Monitor.Interval != 5*time.Second {
		t.Errorf("interval = %v, want 5s", cfg.Monitor.Interval)
	}
	if len(cfg.Monitor.MeetingDomains) != 2 || cfg.Monitor.MeetingDomains[0] != "meet.google.com" {
		t.Errorf("unexpected meeting domains %v", cfg.Monitor.MeetingDomains)
	}
	if cfg.Audio.SampleRate != 44100 || cfg.Audio.Channels != 2 {
		t.Errorf("unexpected audio defaults %+v", cfg.Audio)
	}
	if cfg.Audio.SystemGain != 0.1 || cfg.Audio.MicGain != 0.1 {
		t.Errorf("unexpected gains %v %v", cfg.Audio.SystemGain, cfg.Audio.MicGain)
	}
	if cfg.Report.MaxOutputTokens != 60000 || cfg.Report.TopK != 40 {
		t.Errorf("unexpected report defaults %+v", cfg.Report)
	}
	if cfg.Skill.MaxOutputTokens != 256 {
		t.Errorf("skill max tokens = %d", cfg.Skill.MaxOutputTokens)
	}
	if cfg.AssistantKeys.GeminiApiKey != "" {
		t.Errorf("expected empty key, got %q", cfg.AssistantKeys.GeminiApiKey)
	}
}

func TestLoadFileOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "google-key")
	t.Setenv("VERBALE_AUDIO_DEVICE", "BlackHole")
	path := writeConfig(t, `
monitor:
  interval: 2s
  meeting_domains: ["zoom.us"]
paths:
  recordings: /tmp/rec
  transcripts: /tmp/txt
report:
  provider: ollama
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.Monitor.Interval != 2*time.Second {
		t.Errorf("interval = %v", cfg.Monitor.Interval)
	}
	if got := cfg.Monitor.MeetingDomains; len(got) != 1 || got[0] != "zoom.us" {
		t.Errorf("domains = %v", got)
	}
	if cfg.Audio.Device != "BlackHole" {
		t.Errorf("device = %q, want env override", cfg.Audio.Device)
	}
	if cfg.AssistantKeys.GeminiApiKey != "google-key" {
		t.Errorf("gemini key = %q", cfg.AssistantKeys.GeminiApiKey)
	}
	if cfg.Report.Provider != "ollama" {
		t.Errorf("provider = %q", cfg.Report.Provider)
	}
	if cfg.Paths.ReportsDir() != "/tmp/txt" {
		t.Errorf("reports dir = %q, want transcripts dir", cfg.Paths.ReportsDir())
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit file")
	}
}
