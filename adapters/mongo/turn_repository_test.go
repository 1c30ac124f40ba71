package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/everhighit/coach-client/domain/entities"
)

func TestTurnRepository_SaveAndList(t *testing.T) {
	if os.Getenv("MONGODB_URI") == "" {
		t.Skip("Skipping MongoDB integration test - MONGODB_URI not set")
	}

	logger := zaptest.NewLogger(t)
	client, err := NewClient(logger)
	if err != nil {
		t.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Close(context.Background())

	repo := NewTurnRepository(client.Database)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID := "test-user-" + time.Now().Format("20060102150405")

	turn := entities.NewTurnResult(userID, "", 0)
	turn.Transcript = "I goed to the store"
	turn.FeedbackText = "Almost! Say \"I went to the store\"."
	turn.CorrectedText = "I went to the store"
	turn.AttachClip(entities.Clip{Label: entities.ClipFeedback, Pace: entities.PaceNormal, Audio: []byte{0x01}})
	turn.AttachClip(entities.Clip{Label: entities.ClipShadowing, Pace: entities.PaceSlow, Audio: []byte{0x02}})

	if err := repo.Save(ctx, turn); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	turns, err := repo.ListRecent(ctx, userID, 10)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(turns) != 1 {
		t.Fatalf("Expected 1 turn, got %d", len(turns))
	}
	got := turns[0]
	if got.ID != turn.ID {
		t.Errorf("Expected ID %s, got %s", turn.ID, got.ID)
	}
	if got.CorrectedText != turn.CorrectedText {
		t.Errorf("Expected corrected text %q, got %q", turn.CorrectedText, got.CorrectedText)
	}
}

func TestTurnRepository_Validation(t *testing.T) {
	repo := &TurnRepository{}

	if err := repo.Save(context.Background(), nil); err == nil {
		t.Error("Expected error for nil turn")
	}
	if _, err := repo.ListRecent(context.Background(), "", 10); err == nil {
		t.Error("Expected error for empty user ID")
	}
}
