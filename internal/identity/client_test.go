package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap/zaptest"

	"github.com/everhighit/coach-client/domain/entities"
)

func signToken(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return signed
}

func TestParseSession(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	token := signToken(t, "user-42", exp)

	session, err := ParseSession(token)
	if err != nil {
		t.Fatalf("ParseSession failed: %v", err)
	}
	if session.UserID != "user-42" {
		t.Errorf("Expected user-42, got %s", session.UserID)
	}
	if !session.Valid() {
		t.Error("Expected session to be valid")
	}
}

func TestParseSession_Expired(t *testing.T) {
	token := signToken(t, "user-42", time.Now().Add(-time.Hour))

	session, err := ParseSession(token)
	if err != nil {
		t.Fatalf("ParseSession failed: %v", err)
	}
	if session.Valid() {
		t.Error("Expected expired session to be invalid")
	}
}

func TestParseSession_Malformed(t *testing.T) {
	if _, err := ParseSession("not-a-jwt"); err == nil {
		t.Error("Expected error for malformed token")
	}
}

func TestSignIn_MFARequired(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/sign-in" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{
			"code":    "mfa_required",
			"message": "additional verification needed",
		})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, time.Second, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	_, err = client.SignIn(context.Background(), "a@b.c", "pw")
	if !errors.Is(err, ErrMFARequired) {
		t.Errorf("Expected ErrMFARequired, got %v", err)
	}
}

func TestSignIn_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Tokens{AccessToken: "at", RefreshToken: "rt"})
	}))
	defer server.Close()

	client, _ := NewClient(server.URL, time.Second, zaptest.NewLogger(t))
	tokens, err := client.SignIn(context.Background(), "a@b.c", "pw")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if tokens.AccessToken != "at" {
		t.Errorf("Expected access token, got %+v", tokens)
	}
}

func TestMFAFlow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
			t.Errorf("Expected bearer token, got %q", got)
		}
		switch r.URL.Path {
		case "/auth/mfa/enroll":
			json.NewEncoder(w).Encode(Enrollment{FactorID: "f-1", Secret: "s3cr3t", URI: "otpauth://totp/x"})
		case "/auth/mfa/challenge":
			json.NewEncoder(w).Encode(map[string]string{"challenge_id": "c-1"})
		case "/auth/mfa/verify":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["code"] != "123456" || body["challenge_id"] != "c-1" {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"code": "invalid_code", "message": "wrong code"})
				return
			}
			json.NewEncoder(w).Encode(Tokens{AccessToken: "upgraded"})
		default:
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client, _ := NewClient(server.URL, time.Second, zaptest.NewLogger(t))
	ctx := context.Background()

	enrollment, err := client.EnrollMFA(ctx, "token-1")
	if err != nil {
		t.Fatalf("EnrollMFA failed: %v", err)
	}
	if enrollment.FactorID != "f-1" {
		t.Errorf("Expected factor f-1, got %+v", enrollment)
	}

	challengeID, err := client.ChallengeMFA(ctx, "token-1", enrollment.FactorID)
	if err != nil {
		t.Fatalf("ChallengeMFA failed: %v", err)
	}

	// Wrong code surfaces a typed error.
	_, err = client.VerifyMFA(ctx, "token-1", enrollment.FactorID, challengeID, "000000")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != CodeInvalidCode {
		t.Fatalf("Expected invalid_code APIError, got %v", err)
	}

	tokens, err := client.VerifyMFA(ctx, "token-1", enrollment.FactorID, challengeID, "123456")
	if err != nil {
		t.Fatalf("VerifyMFA failed: %v", err)
	}
	if tokens.AccessToken != "upgraded" {
		t.Errorf("Expected upgraded token, got %+v", tokens)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	stored := map[string]*entities.Profile{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var p entities.Profile
			json.NewDecoder(r.Body).Decode(&p)
			stored[p.UserID] = &p
			w.WriteHeader(http.StatusNoContent)
		case http.MethodGet:
			p, ok := stored["user-1"]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			json.NewEncoder(w).Encode(p)
		}
	}))
	defer server.Close()

	client, _ := NewClient(server.URL, time.Second, zaptest.NewLogger(t))
	ctx := context.Background()

	profile := &entities.Profile{
		UserID:         "user-1",
		NativeLanguage: "en",
		TargetLanguage: "es",
		DisplayName:    "Sam",
	}
	if err := client.UpsertProfile(ctx, "tok", profile); err != nil {
		t.Fatalf("UpsertProfile failed: %v", err)
	}

	got, err := client.Profile(ctx, "tok", "user-1")
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if got.TargetLanguage != "es" || got.DisplayName != "Sam" {
		t.Errorf("Profile round-trip mismatch: %+v", got)
	}
}
