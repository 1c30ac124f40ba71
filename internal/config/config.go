// Package config loads and validates runtime configuration from the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config is the validated runtime configuration.
type Config struct {
	Port            string        // control API listen port
	CoachBaseURL    string        // backend with /asr, /chat, /tts, /lesson/*
	IdentityBaseURL string        // auth/profile service; optional
	MongoURI        string        // history store; optional, empty means in-memory
	PrefsPath       string        // voice preference file
	GraceDelay      time.Duration // playback grace before the first clip
	MaxRecord       time.Duration // hard cap per recording
	RequestTimeout  time.Duration // per-request timeout on remote calls

	// Provider selection for deployments that bypass the coach backend.
	STTProvider string // "coach" or "google"
	LLMProvider string // "coach" or "gemini"
	TTSProvider string // "coach" or "openai"
}

// Load reads configuration from the environment and applies defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8090"),
		CoachBaseURL:    os.Getenv("COACH_BASE_URL"),
		IdentityBaseURL: os.Getenv("IDENTITY_BASE_URL"),
		MongoURI:        os.Getenv("MONGODB_URI"),
		PrefsPath:       os.Getenv("PREFS_PATH"),
		STTProvider:     getEnv("STT_PROVIDER", "coach"),
		LLMProvider:     getEnv("LLM_PROVIDER", "coach"),
		TTSProvider:     getEnv("TTS_PROVIDER", "coach"),
	}

	var err error
	if cfg.GraceDelay, err = getDuration("PLAYBACK_GRACE_MS", 800*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.MaxRecord, err = getDuration("MAX_RECORD_MS", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT_MS", 120*time.Second); err != nil {
		return nil, err
	}

	if cfg.PrefsPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot resolve home directory for preferences: %w", err)
		}
		cfg.PrefsPath = filepath.Join(home, ".coach", "prefs.json")
	}

	return cfg, cfg.Validate()
}

// Validate checks the configuration is coherent.
func (c *Config) Validate() error {
	usesCoach := c.STTProvider == "coach" || c.LLMProvider == "coach" || c.TTSProvider == "coach"
	if usesCoach && c.CoachBaseURL == "" {
		return errors.New("COACH_BASE_URL is required when any provider is \"coach\"")
	}

	for name, value := range map[string]string{
		"STT_PROVIDER": c.STTProvider,
		"LLM_PROVIDER": c.LLMProvider,
		"TTS_PROVIDER": c.TTSProvider,
	} {
		if !validProvider(name, value) {
			return fmt.Errorf("%s has unknown value %q", name, value)
		}
	}

	if c.MaxRecord <= 0 {
		return errors.New("MAX_RECORD_MS must be positive")
	}
	return nil
}

func validProvider(name, value string) bool {
	if value == "coach" {
		return true
	}
	switch name {
	case "STT_PROVIDER":
		return value == "google"
	case "LLM_PROVIDER":
		return value == "gemini"
	case "TTS_PROVIDER":
		return value == "openai"
	}
	return false
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer of milliseconds, got %q", key, raw)
	}
	return time.Duration(ms) * time.Millisecond, nil
}
