package coach

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"github.com/everhighit/coach-client/domain/entities"
	"github.com/everhighit/coach-client/domain/repositories"
)

// Ensure Client implements the Synthesizer interface.
var _ repositories.Synthesizer = (*Client)(nil)

// outputFormat is the audio container requested from the backend.
const outputFormat = "mp3"

// Synthesize renders text to speech. The backend applies the pace transform
// server-side, so the pace travels as a plain form field.
func (c *Client) Synthesize(ctx context.Context, text, language, voice string, pace entities.Pace) ([]byte, error) {
	form := url.Values{}
	form.Set("text", text)
	form.Set("voice", voice)
	form.Set("format", outputFormat)
	form.Set("pace", string(pace))

	audio, err := c.postForm(ctx, "/tts", form)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Synthesis received",
		zap.String("voice", voice),
		zap.String("pace", string(pace)),
		zap.Int("audio_bytes", len(audio)))

	return audio, nil
}
