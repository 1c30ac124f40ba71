// Package llm provides an alternate Dialogue provider backed by Google's
// Gemini API, for deployments that bypass the coach backend's /chat proxy.
package llm

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/everhighit/coach-client/domain"
	"github.com/everhighit/coach-client/domain/repositories"
)

const (
	defaultModel       = "gemini-2.0-flash"
	defaultTemperature = 0.5
	defaultMaxTokens   = 512
)

// coachSystemPrompt mirrors the coaching instructions used by the backend:
// one warm paragraph in the native language, the corrected target sentence
// quoted inline, no lists or numbering.
const coachSystemPrompt = "You are a warm, human language coach. Speak naturally, like a friendly teacher. " +
	"Write a single short paragraph (2-4 sentences), no lists, no numbering, no headings. " +
	"Explain in the student's NATIVE language. " +
	"Include the corrected TARGET-language sentence inline, surrounded by quotes, " +
	"and give a brief phonetic or intonation hint. Keep it concise and encouraging."

// GeminiDialogue implements Dialogue using the Gemini API directly.
type GeminiDialogue struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

var _ repositories.Dialogue = (*GeminiDialogue)(nil)

// NewGeminiDialogue creates a Gemini-backed dialogue provider. The API key
// comes from the GEMINI_API_KEY environment variable.
func NewGeminiDialogue(logger *zap.Logger) (*GeminiDialogue, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiDialogue{client: client, model: defaultModel, logger: logger}, nil
}

// Respond generates one combined feedback paragraph for the transcript.
func (g *GeminiDialogue) Respond(ctx context.Context, transcript, nativeLanguage, targetLanguage string) (string, error) {
	user := fmt.Sprintf("NATIVE=%s; TARGET=%s; Student just said (in TARGET): %s",
		nativeLanguage, targetLanguage, transcript)

	contents := []*genai.Content{
		genai.NewContentFromText(coachSystemPrompt, genai.RoleUser),
		genai.NewContentFromText(user, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(defaultTemperature)),
		MaxOutputTokens: defaultMaxTokens,
	}

	response, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", &domain.DialogueError{Err: err}
	}
	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return "", &domain.DialogueError{Err: fmt.Errorf("no content generated")}
	}

	var text string
	for _, part := range response.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}
	if text == "" {
		return "", &domain.DialogueError{Err: fmt.Errorf("empty response")}
	}

	g.logger.Info("Gemini feedback generated",
		zap.String("native", nativeLanguage),
		zap.String("target", targetLanguage),
		zap.Int("feedback_len", len(text)))

	return text, nil
}
