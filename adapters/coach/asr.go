package coach

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"go.uber.org/zap"

	"github.com/everhighit/coach-client/domain"
	"github.com/everhighit/coach-client/domain/repositories"
)

// Ensure Client implements the Transcriber interface.
var _ repositories.Transcriber = (*Client)(nil)

type asrResponse struct {
	Text string `json:"text"`
}

// Transcribe submits the finalized audio blob as multipart form data and
// returns the recognized text. An empty transcript is returned as-is; the
// sequencer decides what to do with it.
func (c *Client) Transcribe(ctx context.Context, audio []byte, encoding string, language string) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="audio"; filename="turn.%s"`, fileExtension(encoding)))
	header.Set("Content-Type", contentType(encoding))
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", &domain.NetworkError{Err: err}
	}
	if _, err := part.Write(audio); err != nil {
		return "", &domain.NetworkError{Err: err}
	}
	if err := writer.WriteField("language", language); err != nil {
		return "", &domain.NetworkError{Err: err}
	}
	if err := writer.Close(); err != nil {
		return "", &domain.NetworkError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/asr", &buf)
	if err != nil {
		return "", &domain.NetworkError{Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	body, err := c.do(req)
	if err != nil {
		return "", err
	}

	var parsed asrResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &domain.NetworkError{Err: fmt.Errorf("decoding asr response: %w", err)}
	}

	c.logger.Info("Transcription received",
		zap.String("language", language),
		zap.Int("audio_bytes", len(audio)),
		zap.Int("transcript_len", len(parsed.Text)))

	return parsed.Text, nil
}

func fileExtension(encoding string) string {
	switch encoding {
	case "opus":
		return "webm"
	case "wav", "pcm_s16le":
		return "wav"
	default:
		return "bin"
	}
}

func contentType(encoding string) string {
	switch encoding {
	case "opus":
		return "audio/webm"
	case "wav", "pcm_s16le":
		return "audio/wav"
	default:
		return "application/octet-stream"
	}
}
