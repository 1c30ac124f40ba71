// Package identity talks to the external auth and profile service: session
// introspection, profile upsert, and TOTP multi-factor enrollment and
// challenge. All calls are opaque request/response; the service owns every
// credential decision.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/everhighit/coach-client/domain"
	"github.com/everhighit/coach-client/domain/entities"
)

// ErrMFARequired signals that sign-in succeeded on the first factor and the
// caller must run a challenge/verify round before receiving tokens.
var ErrMFARequired = errors.New("multi-factor verification required")

// APIError is a structured failure from the identity service. Callers gate
// on Code, never on message text.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("identity service %d (%s): %s", e.Status, e.Code, e.Message)
}

// Error codes the client reacts to.
const (
	CodeMFARequired = "mfa_required"
	CodeInvalidCode = "invalid_code"
)

// Session is the decoded state of an access token.
type Session struct {
	UserID    string
	ExpiresAt time.Time
}

// Valid reports whether the session has not expired.
func (s *Session) Valid() bool {
	return s.UserID != "" && time.Now().Before(s.ExpiresAt)
}

// Tokens are issued after a fully verified sign-in.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Enrollment describes a newly enrolled TOTP factor.
type Enrollment struct {
	FactorID string `json:"factor_id"`
	Secret   string `json:"secret"`
	URI      string `json:"uri"` // otpauth:// URI for authenticator apps
}

// Client is the HTTP client for the identity service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates an identity client.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("identity base URL is required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// ParseSession decodes the access token's claims without verifying the
// signature. Verification belongs to the issuing service; the client only
// needs the subject and expiry to know whose profile to load and when to
// re-authenticate.
func ParseSession(accessToken string) (*Session, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return nil, fmt.Errorf("malformed access token: %w", err)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, errors.New("access token has no subject")
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, errors.New("access token has no expiry")
	}

	return &Session{UserID: sub, ExpiresAt: exp.Time}, nil
}

// SignIn exchanges credentials for tokens. When the account has an enrolled
// factor, the service answers with mfa_required and the caller proceeds to
// ChallengeMFA/VerifyMFA.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Tokens, error) {
	var tokens Tokens
	err := c.post(ctx, "/auth/sign-in", "", map[string]string{
		"email":    email,
		"password": password,
	}, &tokens)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Code == CodeMFARequired {
			return nil, ErrMFARequired
		}
		return nil, err
	}
	return &tokens, nil
}

// Profile fetches the profile for a user id.
func (c *Client) Profile(ctx context.Context, accessToken, userID string) (*entities.Profile, error) {
	var profile entities.Profile
	if err := c.get(ctx, "/profiles/"+userID, accessToken, &profile); err != nil {
		return nil, err
	}
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("identity service returned incomplete profile: %w", err)
	}
	return &profile, nil
}

// UpsertProfile creates or replaces the profile keyed by its user id.
func (c *Client) UpsertProfile(ctx context.Context, accessToken string, profile *entities.Profile) error {
	if err := profile.Validate(); err != nil {
		return err
	}
	return c.post(ctx, "/profiles", accessToken, profile, nil)
}

// EnrollMFA registers a new TOTP factor for the signed-in user.
func (c *Client) EnrollMFA(ctx context.Context, accessToken string) (*Enrollment, error) {
	var enrollment Enrollment
	if err := c.post(ctx, "/auth/mfa/enroll", accessToken, map[string]string{
		"factor_type": "totp",
	}, &enrollment); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// ChallengeMFA opens a verification window for a factor and returns the
// challenge id to verify against.
func (c *Client) ChallengeMFA(ctx context.Context, accessToken, factorID string) (string, error) {
	var resp struct {
		ChallengeID string `json:"challenge_id"`
	}
	if err := c.post(ctx, "/auth/mfa/challenge", accessToken, map[string]string{
		"factor_id": factorID,
	}, &resp); err != nil {
		return "", err
	}
	return resp.ChallengeID, nil
}

// VerifyMFA submits the one-time code and returns the upgraded tokens.
func (c *Client) VerifyMFA(ctx context.Context, accessToken, factorID, challengeID, code string) (*Tokens, error) {
	var tokens Tokens
	if err := c.post(ctx, "/auth/mfa/verify", accessToken, map[string]string{
		"factor_id":    factorID,
		"challenge_id": challengeID,
		"code":         code,
	}, &tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

func (c *Client) get(ctx context.Context, path, accessToken string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, accessToken, out)
}

func (c *Client) post(ctx context.Context, path, accessToken string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, accessToken, out)
}

func (c *Client) do(req *http.Request, accessToken string, out interface{}) error {
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr APIError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Code != "" {
			apiErr.Status = resp.StatusCode
			c.logger.Warn("Identity request failed",
				zap.String("path", req.URL.Path),
				zap.Int("status", resp.StatusCode),
				zap.String("code", apiErr.Code))
			return &apiErr
		}
		return domain.NewNetworkError(resp.StatusCode, body)
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
