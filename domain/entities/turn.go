package entities

import (
	"time"

	"github.com/google/uuid"
)

// Pace selects the synthesis speed for a clip.
type Pace string

const (
	PaceNormal Pace = "normal"
	PaceSlow   Pace = "slow"
)

// Well-known clip labels within a turn.
const (
	ClipFeedback  = "feedback"  // full feedback, native language, normal pace
	ClipShadowing = "shadowing" // corrected sentence, target language, slow pace
	ClipPrompt    = "prompt"    // next lesson prompt, pre-synthesized on advance
)

// Clip is one synthesized audio result attached to a turn.
type Clip struct {
	Label string `json:"label" bson:"label"`
	Pace  Pace   `json:"pace" bson:"pace"`
	Audio []byte `json:"-" bson:"audio"`
}

// TurnResult accumulates the outcome of one spoken turn. Fields are filled
// incrementally as pipeline stages complete; a completed stage's fields are
// never rewritten, and the whole result is replaced when the next turn starts.
type TurnResult struct {
	ID            string    `json:"id" bson:"_id"`
	UserID        string    `json:"user_id" bson:"user_id"`
	LessonID      string    `json:"lesson_id,omitempty" bson:"lesson_id,omitempty"`
	StepIndex     int       `json:"step_index" bson:"step_index"`
	Transcript    string    `json:"transcript" bson:"transcript"`
	FeedbackText  string    `json:"feedback_text" bson:"feedback_text"`
	CorrectedText string    `json:"corrected_text,omitempty" bson:"corrected_text,omitempty"`
	Clips         []Clip    `json:"clips" bson:"clips"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

// NewTurnResult creates an empty result for a user's turn. lessonID is empty
// and stepIndex zero for free practice.
func NewTurnResult(userID, lessonID string, stepIndex int) *TurnResult {
	return &TurnResult{
		ID:        uuid.NewString(),
		UserID:    userID,
		LessonID:  lessonID,
		StepIndex: stepIndex,
		CreatedAt: time.Now(),
	}
}

// AttachClip appends a synthesized clip, preserving arrival order.
func (t *TurnResult) AttachClip(clip Clip) {
	t.Clips = append(t.Clips, clip)
}

// Clip returns the clip with the given label, or nil.
func (t *TurnResult) Clip(label string) *Clip {
	for i := range t.Clips {
		if t.Clips[i].Label == label {
			return &t.Clips[i]
		}
	}
	return nil
}
