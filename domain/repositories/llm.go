package repositories

import (
	"context"

	"github.com/everhighit/coach-client/domain/entities"
)

// Dialogue abstracts the free-practice correction service. The reply is one
// combined explanatory text in the learner's native language with the
// corrected target sentence embedded; extraction happens in the sequencer.
type Dialogue interface {
	Respond(ctx context.Context, transcript, nativeLanguage, targetLanguage string) (string, error)
}

// StartLessonParams are the inputs to begin a scripted lesson.
type StartLessonParams struct {
	UserID         string
	NativeLanguage string
	TargetLanguage string
	Topic          string
	StudentName    string
}

// LessonTurnParams are the inputs for one turn within a lesson.
type LessonTurnParams struct {
	LessonID       string
	StepIndex      int
	UserText       string
	NativeLanguage string
	TargetLanguage string
}

// LessonReply is the structured reply for a lesson turn.
type LessonReply struct {
	TeacherFeedback   string
	CorrectedSentence string
	Progression       entities.Progression
}

// LessonDialogue abstracts the multi-step lesson service.
type LessonDialogue interface {
	Start(ctx context.Context, params StartLessonParams) (*entities.LessonState, error)
	Turn(ctx context.Context, params LessonTurnParams) (*LessonReply, error)
	Finish(ctx context.Context, lessonID string) error
}
