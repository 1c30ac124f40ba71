// Package tts provides an alternate Synthesizer backed by the OpenAI speech
// API, for deployments that bypass the coach backend's /tts proxy.
package tts

import (
	"context"
	"fmt"
	"io"
	"os"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/everhighit/coach-client/domain"
	"github.com/everhighit/coach-client/domain/entities"
	"github.com/everhighit/coach-client/domain/repositories"
)

const (
	defaultModel = "gpt-4o-mini-tts"

	// Speeds for the two paces the pipeline uses. Slow rendering is for
	// pronunciation shadowing.
	normalSpeed = 1.0
	slowSpeed   = 0.75
)

// OpenAISynthesizer implements Synthesizer via the OpenAI speech endpoint.
type OpenAISynthesizer struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

var _ repositories.Synthesizer = (*OpenAISynthesizer)(nil)

// NewOpenAISynthesizer creates an OpenAI-backed synthesizer. The API key
// comes from the OPENAI_API_KEY environment variable.
func NewOpenAISynthesizer(logger *zap.Logger) (*OpenAISynthesizer, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
	}
	return &OpenAISynthesizer{
		client: openai.NewClient(apiKey),
		model:  defaultModel,
		logger: logger,
	}, nil
}

// Synthesize renders text to mp3 audio. Pace maps to the model's speed
// parameter; the language rides along in the input text itself.
func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text, language, voice string, pace entities.Pace) ([]byte, error) {
	speed := normalSpeed
	if pace == entities.PaceSlow {
		speed = slowSpeed
	}

	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(s.model),
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          speed,
	})
	if err != nil {
		return nil, &domain.SynthesisError{Label: voice, Err: err}
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, &domain.SynthesisError{Label: voice, Err: err}
	}

	s.logger.Info("OpenAI synthesis completed",
		zap.String("voice", voice),
		zap.String("pace", string(pace)),
		zap.Int("audio_bytes", len(audio)))

	return audio, nil
}
