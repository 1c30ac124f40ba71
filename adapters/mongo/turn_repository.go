package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/everhighit/coach-client/domain/entities"
	"github.com/everhighit/coach-client/domain/repositories"
)

// TurnRepository stores completed turns in the "turns" collection.
type TurnRepository struct {
	collection *mongo.Collection
}

// NewTurnRepository creates a MongoDB turn repository.
func NewTurnRepository(db *mongo.Database) repositories.TurnRepository {
	return &TurnRepository{collection: db.Collection("turns")}
}

// Save implements repositories.TurnRepository. Audio clip bytes are not
// persisted; only the clip labels and paces are kept for the history view.
func (r *TurnRepository) Save(ctx context.Context, turn *entities.TurnResult) error {
	if turn == nil {
		return errors.New("turn cannot be nil")
	}
	if turn.ID == "" {
		return errors.New("turn ID cannot be empty")
	}

	clips := make([]bson.M, 0, len(turn.Clips))
	for _, c := range turn.Clips {
		clips = append(clips, bson.M{"label": c.Label, "pace": c.Pace})
	}

	doc := bson.M{
		"_id":            turn.ID,
		"user_id":        turn.UserID,
		"lesson_id":      turn.LessonID,
		"step_index":     turn.StepIndex,
		"transcript":     turn.Transcript,
		"feedback_text":  turn.FeedbackText,
		"corrected_text": turn.CorrectedText,
		"clips":          clips,
		"created_at":     turn.CreatedAt,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to save turn: %w", err)
	}
	return nil
}

// ListRecent implements repositories.TurnRepository.
func (r *TurnRepository) ListRecent(ctx context.Context, userID string, limit int) ([]*entities.TurnResult, error) {
	if userID == "" {
		return nil, errors.New("user ID cannot be empty")
	}
	if limit <= 0 {
		limit = 20
	}

	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list turns for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var turns []*entities.TurnResult
	for cursor.Next(ctx) {
		var turn entities.TurnResult
		if err := cursor.Decode(&turn); err != nil {
			return nil, fmt.Errorf("failed to decode turn: %w", err)
		}
		turns = append(turns, &turn)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return turns, nil
}
