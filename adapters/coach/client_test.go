package coach

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/everhighit/coach-client/domain"
	"github.com/everhighit/coach-client/domain/entities"
	"github.com/everhighit/coach-client/domain/repositories"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return client, server
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{}, zaptest.NewLogger(t))
	if err == nil {
		t.Error("Expected error when base URL is empty")
	}
}

func TestTranscribe(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/asr" {
			t.Errorf("Expected path /asr, got %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("Expected multipart form: %v", err)
		}
		if got := r.FormValue("language"); got != "en" {
			t.Errorf("Expected language en, got %q", got)
		}
		file, header, err := r.FormFile("audio")
		if err != nil {
			t.Fatalf("Expected audio file part: %v", err)
		}
		defer file.Close()
		if !strings.HasSuffix(header.Filename, ".wav") {
			t.Errorf("Expected wav filename, got %q", header.Filename)
		}
		w.Write([]byte(`{"text":"hello there"}`))
	}))

	text, err := client.Transcribe(context.Background(), []byte("pcm-bytes"), "wav", "en")
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if text != "hello there" {
		t.Errorf("Expected transcript 'hello there', got %q", text)
	}
}

func TestTranscribe_RemoteError(t *testing.T) {
	longBody := strings.Repeat("x", 2000)
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(longBody))
	}))

	_, err := client.Transcribe(context.Background(), []byte("pcm"), "wav", "en")
	if err == nil {
		t.Fatal("Expected error on 500 response")
	}

	var netErr *domain.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Expected NetworkError, got %T", err)
	}
	if netErr.Status != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", netErr.Status)
	}
	if len(netErr.Body) != 500 {
		t.Errorf("Expected body truncated to 500 bytes, got %d", len(netErr.Body))
	}
}

func TestRespond(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat" {
			t.Errorf("Expected path /chat, got %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("Failed to parse form: %v", err)
		}
		if got := r.FormValue("prompt"); got != "I go to store" {
			t.Errorf("Expected prompt field, got %q", got)
		}
		if got := r.FormValue("native_language"); got != "es" {
			t.Errorf("Expected native_language es, got %q", got)
		}
		if got := r.FormValue("target_language"); got != "en" {
			t.Errorf("Expected target_language en, got %q", got)
		}
		w.Write([]byte(`{"text":"Casi perfecto. Di \"I am going to the store\"."}`))
	}))

	text, err := client.Respond(context.Background(), "I go to store", "es", "en")
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if !strings.Contains(text, "I am going to the store") {
		t.Errorf("Unexpected feedback text: %q", text)
	}
}

func TestSynthesize(t *testing.T) {
	audio := []byte{0xff, 0xfb, 0x90, 0x00} // mp3 frame header
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tts" {
			t.Errorf("Expected path /tts, got %s", r.URL.Path)
		}
		r.ParseForm()
		if got := r.FormValue("voice"); got != "onyx" {
			t.Errorf("Expected voice onyx, got %q", got)
		}
		if got := r.FormValue("pace"); got != "slow" {
			t.Errorf("Expected pace slow, got %q", got)
		}
		if got := r.FormValue("format"); got != "mp3" {
			t.Errorf("Expected format mp3, got %q", got)
		}
		w.Write(audio)
	}))

	got, err := client.Synthesize(context.Background(), "Hello there", "en", "onyx", entities.PaceSlow)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if string(got) != string(audio) {
		t.Error("Expected raw audio bytes passed through")
	}
}

func TestLessonStartAndTurn(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		switch r.URL.Path {
		case "/lesson/start":
			if got := r.FormValue("topic"); got != "restaurant" {
				t.Errorf("Expected topic restaurant, got %q", got)
			}
			w.Write([]byte(`{"lesson_id":"les-1","step_index":0,"teacher_text_native":"Hola, hoy practicaremos."}`))
		case "/lesson/turn":
			if got := r.FormValue("step_index"); got != "0" {
				t.Errorf("Expected step_index 0, got %q", got)
			}
			w.Write([]byte(`{"teacher_feedback":"Muy bien","corrected_sentence":"A table for two, please","advanced":true,"lesson_done":false,"next_step_index":1,"next_teacher_text_native":"Ahora pide una bebida."}`))
		case "/lesson/finish":
			if got := r.FormValue("lesson_id"); got != "les-1" {
				t.Errorf("Expected lesson_id les-1, got %q", got)
			}
			w.Write([]byte(`{"ok":true}`))
		default:
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
	}))

	ctx := context.Background()
	state, err := client.Start(ctx, repositories.StartLessonParams{
		UserID: "u-1", NativeLanguage: "es", TargetLanguage: "en",
		Topic: "restaurant", StudentName: "Ana",
	})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if state.LessonID != "les-1" || state.StepIndex != 0 {
		t.Errorf("Unexpected lesson state: %+v", state)
	}

	reply, err := client.Turn(ctx, repositories.LessonTurnParams{
		LessonID: state.LessonID, StepIndex: state.StepIndex,
		UserText: "a table for two", NativeLanguage: "es", TargetLanguage: "en",
	})
	if err != nil {
		t.Fatalf("Turn failed: %v", err)
	}
	if !reply.Progression.Advanced || reply.Progression.NextStepIndex != 1 {
		t.Errorf("Unexpected progression: %+v", reply.Progression)
	}
	if reply.CorrectedSentence != "A table for two, please" {
		t.Errorf("Unexpected corrected sentence: %q", reply.CorrectedSentence)
	}

	if err := client.Finish(ctx, state.LessonID); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
}

func TestHealth_SwallowsFailures(t *testing.T) {
	client, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	client.Health(context.Background())

	// Probing a closed server must not panic either.
	server.Close()
	client.Health(context.Background())
}
