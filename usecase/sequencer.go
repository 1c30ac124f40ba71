package usecase

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/everhighit/coach-client/domain"
	"github.com/everhighit/coach-client/domain/entities"
	"github.com/everhighit/coach-client/domain/repositories"
	"github.com/everhighit/coach-client/internal/recorder"
)

// Pipeline stage status strings shown to the user.
const (
	StatusListening    = "Listening…"
	StatusTranscribing = "Transcribing…"
	StatusCorrecting   = "Correcting…"
	StatusSynthesizing = "Generating voice…"
	StatusReady        = "Ready"
)

// NotifyFunc receives the user-visible status line as the pipeline moves
// through its stages.
type NotifyFunc func(status string)

// TurnSequencer drives the ordered remote-call chain for one turn:
// transcribe, correct, synthesize. Each stage is gated on the previous one
// succeeding; the first failure halts the chain. There is no cancellation
// once the chain has started and no retries anywhere.
type TurnSequencer struct {
	transcriber repositories.Transcriber
	dialogue    repositories.Dialogue
	lesson      repositories.LessonDialogue
	synthesizer repositories.Synthesizer
	prefs       repositories.VoicePreferences
	logger      *zap.Logger
}

// NewTurnSequencer wires the sequencer to its remote collaborators. lesson
// may be nil when only free practice is configured.
func NewTurnSequencer(
	transcriber repositories.Transcriber,
	dialogue repositories.Dialogue,
	lesson repositories.LessonDialogue,
	synthesizer repositories.Synthesizer,
	prefs repositories.VoicePreferences,
	logger *zap.Logger,
) *TurnSequencer {
	return &TurnSequencer{
		transcriber: transcriber,
		dialogue:    dialogue,
		lesson:      lesson,
		synthesizer: synthesizer,
		prefs:       prefs,
		logger:      logger,
	}
}

// RunFreeTurn executes a free-practice turn. The dialogue stage returns one
// combined paragraph; the corrected sentence is extracted from it. Partial
// results survive later-stage failures: a synthesis error still yields a
// TurnResult carrying the transcript and feedback text.
func (q *TurnSequencer) RunFreeTurn(ctx context.Context, blob recorder.Blob, profile *entities.Profile, notify NotifyFunc) (*entities.TurnResult, error) {
	transcript, err := q.transcribe(ctx, blob, profile.TargetLanguage, notify)
	if err != nil {
		return nil, err
	}

	notify(StatusCorrecting)
	feedback, err := q.dialogue.Respond(ctx, transcript, profile.NativeLanguage, profile.TargetLanguage)
	if err != nil {
		return nil, wrapDialogue(err)
	}
	corrected := ExtractCorrection(feedback)

	result := entities.NewTurnResult(profile.UserID, "", 0)
	result.Transcript = transcript
	result.FeedbackText = feedback
	result.CorrectedText = corrected

	q.synthesizeClips(ctx, result, profile, feedback, corrected, notify)
	return result, nil
}

// RunLessonTurn executes one turn inside a scripted lesson and folds the
// service's progression signals into state. The step index only moves when
// the reply says so. When the state advances, the next prompt's audio is
// pre-synthesized and attached as the prompt clip.
func (q *TurnSequencer) RunLessonTurn(ctx context.Context, blob recorder.Blob, profile *entities.Profile, state *entities.LessonState, notify NotifyFunc) (*entities.TurnResult, error) {
	if err := state.Validate(); err != nil {
		return nil, err
	}

	transcript, err := q.transcribe(ctx, blob, profile.TargetLanguage, notify)
	if err != nil {
		return nil, err
	}

	notify(StatusCorrecting)
	reply, err := q.lesson.Turn(ctx, repositories.LessonTurnParams{
		LessonID:       state.LessonID,
		StepIndex:      state.StepIndex,
		UserText:       transcript,
		NativeLanguage: profile.NativeLanguage,
		TargetLanguage: profile.TargetLanguage,
	})
	if err != nil {
		return nil, wrapDialogue(err)
	}

	corrected := reply.CorrectedSentence
	if corrected == "" {
		corrected = ExtractCorrection(reply.TeacherFeedback)
	}

	result := entities.NewTurnResult(profile.UserID, state.LessonID, state.StepIndex)
	result.Transcript = transcript
	result.FeedbackText = reply.TeacherFeedback
	result.CorrectedText = corrected

	q.synthesizeClips(ctx, result, profile, reply.TeacherFeedback, corrected, notify)

	if state.Apply(reply.Progression) && reply.Progression.NextPromptText != "" {
		q.attachClip(ctx, result, entities.ClipPrompt, reply.Progression.NextPromptText,
			profile.NativeLanguage, entities.PaceNormal)
	}

	return result, nil
}

// transcribe is stage one. An empty transcript halts the pipeline with
// ErrNothingRecognized rather than feeding silence to the dialogue stage.
func (q *TurnSequencer) transcribe(ctx context.Context, blob recorder.Blob, targetLanguage string, notify NotifyFunc) (string, error) {
	notify(StatusTranscribing)
	transcript, err := q.transcriber.Transcribe(ctx, blob.Data, blob.Encoding, targetLanguage)
	if err != nil {
		var te *domain.TranscriptionError
		if errors.As(err, &te) {
			return "", err
		}
		return "", &domain.TranscriptionError{Err: err}
	}
	if strings.TrimSpace(transcript) == "" {
		return "", domain.ErrNothingRecognized
	}
	return transcript, nil
}

// synthesizeClips is stage three: the full feedback in the native language
// at normal pace, then the corrected sentence in the target language at slow
// pace for shadowing. The calls run sequentially and independently; a failed
// clip is logged and skipped without touching clips already attached.
func (q *TurnSequencer) synthesizeClips(ctx context.Context, result *entities.TurnResult, profile *entities.Profile, feedback, corrected string, notify NotifyFunc) {
	notify(StatusSynthesizing)

	q.attachClip(ctx, result, entities.ClipFeedback, feedback, profile.NativeLanguage, entities.PaceNormal)
	if corrected != "" {
		q.attachClip(ctx, result, entities.ClipShadowing, corrected, profile.TargetLanguage, entities.PaceSlow)
	}
}

func (q *TurnSequencer) attachClip(ctx context.Context, result *entities.TurnResult, label, text, language string, pace entities.Pace) {
	saved, _ := q.prefs.Voice()
	voice := ResolveVoice(saved, language)

	audio, err := q.synthesizer.Synthesize(ctx, text, language, voice, pace)
	if err != nil {
		var se *domain.SynthesisError
		if !errors.As(err, &se) {
			err = &domain.SynthesisError{Label: label, Err: err}
		}
		q.logger.Warn("Synthesis failed, clip skipped",
			zap.String("label", label),
			zap.Error(err))
		return
	}
	result.AttachClip(entities.Clip{Label: label, Pace: pace, Audio: audio})
}

func wrapDialogue(err error) error {
	var de *domain.DialogueError
	if errors.As(err, &de) {
		return err
	}
	return &domain.DialogueError{Err: err}
}
