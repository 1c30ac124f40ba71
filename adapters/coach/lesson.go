package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/everhighit/coach-client/domain"
	"github.com/everhighit/coach-client/domain/entities"
	"github.com/everhighit/coach-client/domain/repositories"
)

// Ensure Client implements the LessonDialogue interface.
var _ repositories.LessonDialogue = (*Client)(nil)

type lessonStartResponse struct {
	LessonID          string `json:"lesson_id"`
	StepIndex         int    `json:"step_index"`
	TeacherTextNative string `json:"teacher_text_native"`
}

type lessonTurnResponse struct {
	TeacherFeedback       string  `json:"teacher_feedback"`
	CorrectedSentence     string  `json:"corrected_sentence"`
	Advanced              bool    `json:"advanced"`
	LessonDone            bool    `json:"lesson_done"`
	NextStepIndex         int     `json:"next_step_index"`
	NextTeacherTextNative string  `json:"next_teacher_text_native"`
	AvgScore              float64 `json:"avg_score,omitempty"`
}

// Start opens a lesson session on the backend and returns the initial state.
func (c *Client) Start(ctx context.Context, params repositories.StartLessonParams) (*entities.LessonState, error) {
	form := url.Values{}
	form.Set("user_id", params.UserID)
	form.Set("native_language", params.NativeLanguage)
	form.Set("target_language", params.TargetLanguage)
	form.Set("topic", params.Topic)
	form.Set("student_name", params.StudentName)

	body, err := c.postForm(ctx, "/lesson/start", form)
	if err != nil {
		return nil, err
	}

	var parsed lessonStartResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &domain.NetworkError{Err: fmt.Errorf("decoding lesson start response: %w", err)}
	}

	state := &entities.LessonState{
		LessonID:   parsed.LessonID,
		Topic:      params.Topic,
		StepIndex:  parsed.StepIndex,
		PromptText: parsed.TeacherTextNative,
	}

	c.logger.Info("Lesson started",
		zap.String("lesson_id", state.LessonID),
		zap.String("topic", state.Topic))

	return state, nil
}

// Turn submits one lesson turn and returns the structured reply including
// progression signals. The step index is echoed back untouched; advancement
// is decided remotely.
func (c *Client) Turn(ctx context.Context, params repositories.LessonTurnParams) (*repositories.LessonReply, error) {
	form := url.Values{}
	form.Set("lesson_id", params.LessonID)
	form.Set("step_index", strconv.Itoa(params.StepIndex))
	form.Set("user_text", params.UserText)
	form.Set("native_language", params.NativeLanguage)
	form.Set("target_language", params.TargetLanguage)

	body, err := c.postForm(ctx, "/lesson/turn", form)
	if err != nil {
		return nil, err
	}

	var parsed lessonTurnResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &domain.NetworkError{Err: fmt.Errorf("decoding lesson turn response: %w", err)}
	}

	c.logger.Info("Lesson turn completed",
		zap.String("lesson_id", params.LessonID),
		zap.Int("step_index", params.StepIndex),
		zap.Bool("advanced", parsed.Advanced),
		zap.Bool("lesson_done", parsed.LessonDone))

	return &repositories.LessonReply{
		TeacherFeedback:   parsed.TeacherFeedback,
		CorrectedSentence: parsed.CorrectedSentence,
		Progression: entities.Progression{
			Advanced:       parsed.Advanced,
			LessonDone:     parsed.LessonDone,
			NextStepIndex:  parsed.NextStepIndex,
			NextPromptText: parsed.NextTeacherTextNative,
			AvgScore:       parsed.AvgScore,
		},
	}, nil
}

// Finish marks the lesson session completed on the backend.
func (c *Client) Finish(ctx context.Context, lessonID string) error {
	form := url.Values{}
	form.Set("lesson_id", lessonID)

	if _, err := c.postForm(ctx, "/lesson/finish", form); err != nil {
		return err
	}

	c.logger.Info("Lesson finished", zap.String("lesson_id", lessonID))
	return nil
}
