package api

import "github.com/everhighit/coach-client/domain/entities"

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SignInRequest exchanges credentials for tokens.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MFAEnrollRequest registers a TOTP factor for the signed-in user.
type MFAEnrollRequest struct {
	AccessToken string `json:"access_token"`
}

// MFAVerifyRequest completes a multi-factor challenge.
type MFAVerifyRequest struct {
	AccessToken string `json:"access_token"`
	FactorID    string `json:"factor_id"`
	Code        string `json:"code"`
}

// ResolveProfileRequest installs the signed-in user's remote profile.
type ResolveProfileRequest struct {
	AccessToken string `json:"access_token"`
}

// ProfileRequest sets or replaces the active profile.
type ProfileRequest struct {
	UserID         string `json:"user_id"`
	NativeLanguage string `json:"native_language"`
	TargetLanguage string `json:"target_language"`
	DisplayName    string `json:"display_name"`
}

// VoiceRequest sets the preferred synthesis voice.
type VoiceRequest struct {
	Voice string `json:"voice"`
}

// VoiceResponse reports the current voice preference.
type VoiceResponse struct {
	Voice  string   `json:"voice,omitempty"`
	Voices []string `json:"voices"`
}

// ReplayRequest replays one clip from the last turn.
type ReplayRequest struct {
	Label string `json:"label"`
}

// LessonStartRequest begins a scripted lesson.
type LessonStartRequest struct {
	Topic string `json:"topic"`
}

// TurnResponse is the serialized last turn. Clip audio stays on the client;
// only labels and paces go over the wire.
type TurnResponse struct {
	ID            string         `json:"id"`
	Transcript    string         `json:"transcript"`
	FeedbackText  string         `json:"feedback_text"`
	CorrectedText string         `json:"corrected_text,omitempty"`
	Clips         []ClipResponse `json:"clips"`
}

// ClipResponse describes one synthesized clip.
type ClipResponse struct {
	Label string `json:"label"`
	Pace  string `json:"pace"`
}

// NewTurnResponse converts a turn result for the wire.
func NewTurnResponse(turn *entities.TurnResult) TurnResponse {
	resp := TurnResponse{
		ID:            turn.ID,
		Transcript:    turn.Transcript,
		FeedbackText:  turn.FeedbackText,
		CorrectedText: turn.CorrectedText,
		Clips:         make([]ClipResponse, 0, len(turn.Clips)),
	}
	for _, clip := range turn.Clips {
		resp.Clips = append(resp.Clips, ClipResponse{Label: clip.Label, Pace: string(clip.Pace)})
	}
	return resp
}
