package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/everhighit/coach-client/domain"
	"github.com/everhighit/coach-client/domain/repositories"
)

// Ensure Client implements the Dialogue interface.
var _ repositories.Dialogue = (*Client)(nil)

type chatResponse struct {
	Text string `json:"text"`
}

// Respond submits the learner's transcript for free-practice correction and
// returns one combined explanatory text in the native language.
func (c *Client) Respond(ctx context.Context, transcript, nativeLanguage, targetLanguage string) (string, error) {
	form := url.Values{}
	form.Set("prompt", transcript)
	form.Set("native_language", nativeLanguage)
	form.Set("target_language", targetLanguage)

	body, err := c.postForm(ctx, "/chat", form)
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &domain.NetworkError{Err: fmt.Errorf("decoding chat response: %w", err)}
	}

	c.logger.Info("Correction received",
		zap.String("native", nativeLanguage),
		zap.String("target", targetLanguage),
		zap.Int("feedback_len", len(parsed.Text)))

	return parsed.Text, nil
}
