package entities

import "errors"

// LessonState tracks the client's position within a scripted lesson. The
// step index is owned by the remote lesson service: it only moves when a
// turn reply explicitly reports an advance.
type LessonState struct {
	LessonID   string `json:"lesson_id"`
	Topic      string `json:"topic"`
	StepIndex  int    `json:"step_index"`
	Done       bool   `json:"done"`
	PromptText string `json:"prompt_text"` // teacher prompt for the current step, native language
}

// Progression carries the turn-advancement signals returned by the lesson
// service after each turn.
type Progression struct {
	Advanced       bool
	LessonDone     bool
	NextStepIndex  int
	NextPromptText string
	AvgScore       float64
}

// Apply folds a turn's progression into the lesson state. The step index
// never changes unless the service reported Advanced. Returns true when the
// state advanced, meaning the next prompt should be pre-synthesized.
func (s *LessonState) Apply(p Progression) bool {
	if p.LessonDone {
		s.Done = true
	}
	if !p.Advanced {
		return false
	}
	s.StepIndex = p.NextStepIndex
	if p.NextPromptText != "" {
		s.PromptText = p.NextPromptText
	}
	return true
}

// Validate checks the state is usable for a lesson turn.
func (s *LessonState) Validate() error {
	if s.LessonID == "" {
		return errors.New("lesson_id is required")
	}
	if s.StepIndex < 0 {
		return errors.New("step_index cannot be negative")
	}
	return nil
}
