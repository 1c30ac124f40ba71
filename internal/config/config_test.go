package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("COACH_BASE_URL", "http://localhost:9000")
	t.Setenv("PREFS_PATH", "/tmp/prefs.json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "8090" {
		t.Errorf("Expected default port 8090, got %s", cfg.Port)
	}
	if cfg.MaxRecord != 15*time.Second {
		t.Errorf("Expected default max record 15s, got %v", cfg.MaxRecord)
	}
	if cfg.GraceDelay != 800*time.Millisecond {
		t.Errorf("Expected default grace 800ms, got %v", cfg.GraceDelay)
	}
	if cfg.STTProvider != "coach" {
		t.Errorf("Expected default STT provider coach, got %s", cfg.STTProvider)
	}
}

func TestLoad_RequiresCoachURL(t *testing.T) {
	t.Setenv("COACH_BASE_URL", "")
	t.Setenv("PREFS_PATH", "/tmp/prefs.json")

	if _, err := Load(); err == nil {
		t.Error("Expected error when COACH_BASE_URL missing with coach providers")
	}
}

func TestLoad_AlternateProvidersWithoutCoach(t *testing.T) {
	t.Setenv("COACH_BASE_URL", "")
	t.Setenv("PREFS_PATH", "/tmp/prefs.json")
	t.Setenv("STT_PROVIDER", "google")
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("TTS_PROVIDER", "openai")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LLMProvider != "gemini" {
		t.Errorf("Expected gemini, got %s", cfg.LLMProvider)
	}
}

func TestLoad_RejectsUnknownProvider(t *testing.T) {
	t.Setenv("COACH_BASE_URL", "http://localhost:9000")
	t.Setenv("PREFS_PATH", "/tmp/prefs.json")
	t.Setenv("STT_PROVIDER", "whisper")

	if _, err := Load(); err == nil {
		t.Error("Expected error for unknown provider")
	}
}

func TestLoad_DurationOverride(t *testing.T) {
	t.Setenv("COACH_BASE_URL", "http://localhost:9000")
	t.Setenv("PREFS_PATH", "/tmp/prefs.json")
	t.Setenv("MAX_RECORD_MS", "30000")
	t.Setenv("PLAYBACK_GRACE_MS", "1200")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.MaxRecord != 30*time.Second {
		t.Errorf("Expected 30s, got %v", cfg.MaxRecord)
	}
	if cfg.GraceDelay != 1200*time.Millisecond {
		t.Errorf("Expected 1200ms, got %v", cfg.GraceDelay)
	}
}

func TestLoad_RejectsBadDuration(t *testing.T) {
	t.Setenv("COACH_BASE_URL", "http://localhost:9000")
	t.Setenv("PREFS_PATH", "/tmp/prefs.json")
	t.Setenv("MAX_RECORD_MS", "soon")

	if _, err := Load(); err == nil {
		t.Error("Expected error for non-numeric duration")
	}
}
