// Package coach implements HTTP adapters for the remote coach backend:
// speech recognition, corrective chat, voice synthesis and lesson flow.
package coach

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/everhighit/coach-client/domain"
)

const defaultTimeout = 120 * time.Second

// Config holds configuration for the coach backend client.
type Config struct {
	BaseURL string        // Required: backend base URL
	Timeout time.Duration // Optional: per-request timeout (default 120s)
}

// Client talks to the coach backend. One instance is shared across all
// pipeline stages; requests never retry.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a coach backend client.
func NewClient(config Config, logger *zap.Logger) (*Client, error) {
	if config.BaseURL == "" {
		return nil, &domain.NetworkError{Err: errMissingBaseURL}
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

var errMissingBaseURL = &configError{"coach base URL is required"}

type configError struct{ msg string }

func (e *configError) Error() string { return e.msg }

// postForm submits an application/x-www-form-urlencoded POST and returns the
// raw response body. Non-2xx responses become NetworkError with the remote
// status and a truncated body.
func (c *Client) postForm(ctx context.Context, path string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &domain.NetworkError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		netErr := domain.NewNetworkError(resp.StatusCode, body)
		c.logger.Warn("Coach backend returned error",
			zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", netErr.Body))
		return nil, netErr
	}
	return body, nil
}

// Health probes the backend liveness endpoint. Fire-and-forget: the result
// is logged, never propagated.
func (c *Client) Health(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("Health probe failed", zap.Error(err))
		return
	}
	resp.Body.Close()
	c.logger.Debug("Health probe", zap.Int("status", resp.StatusCode))
}
