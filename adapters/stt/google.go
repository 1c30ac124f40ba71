// Package stt provides an alternate Transcriber backed by Google Cloud
// Speech-to-Text, for deployments that bypass the coach backend's /asr proxy.
package stt

import (
	"context"
	"fmt"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"

	"github.com/everhighit/coach-client/domain"
	"github.com/everhighit/coach-client/domain/repositories"
)

const defaultSampleRate = 16000

// GoogleTranscriber implements Transcriber using batch Recognize.
type GoogleTranscriber struct {
	sampleRate int
	logger     *zap.Logger
}

var _ repositories.Transcriber = (*GoogleTranscriber)(nil)

// NewGoogleTranscriber creates a Google Cloud transcriber. Credentials come
// from the ambient GOOGLE_APPLICATION_CREDENTIALS environment.
func NewGoogleTranscriber(sampleRate int, logger *zap.Logger) *GoogleTranscriber {
	if sampleRate <= 0 {
		sampleRate = defaultSampleRate
	}
	return &GoogleTranscriber{sampleRate: sampleRate, logger: logger}
}

// Transcribe runs one synchronous recognition over the finalized blob and
// concatenates the best alternatives.
func (g *GoogleTranscriber) Transcribe(ctx context.Context, audio []byte, encoding string, language string) (string, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return "", &domain.TranscriptionError{Err: fmt.Errorf("creating speech client: %w", err)}
	}
	defer client.Close()

	enc, err := audioEncoding(encoding)
	if err != nil {
		return "", &domain.TranscriptionError{Err: err}
	}

	resp, err := client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        enc,
			SampleRateHertz: int32(g.sampleRate),
			LanguageCode:    language,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return "", &domain.TranscriptionError{Err: fmt.Errorf("recognize: %w", err)}
	}

	var transcript string
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			transcript += result.Alternatives[0].Transcript
		}
	}

	g.logger.Info("Google transcription completed",
		zap.String("language", language),
		zap.Int("results", len(resp.Results)),
		zap.Int("transcript_len", len(transcript)))

	return transcript, nil
}

// audioEncoding maps the client's negotiated encoding names to the Google
// Speech API enum.
func audioEncoding(encoding string) (speechpb.RecognitionConfig_AudioEncoding, error) {
	switch encoding {
	case "wav", "pcm_s16le":
		return speechpb.RecognitionConfig_LINEAR16, nil
	case "opus":
		return speechpb.RecognitionConfig_WEBM_OPUS, nil
	case "flac":
		return speechpb.RecognitionConfig_FLAC, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, fmt.Errorf("unsupported encoding: %s", encoding)
	}
}
