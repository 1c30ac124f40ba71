package entities

import "errors"

// Profile is the user's language-learning profile, read-only from the turn
// pipeline's perspective. It must be resolved before a turn may start.
type Profile struct {
	UserID         string `json:"user_id"`
	NativeLanguage string `json:"native_language"`
	TargetLanguage string `json:"target_language"`
	DisplayName    string `json:"display_name"`
}

// Validate checks the profile carries everything a turn needs.
func (p *Profile) Validate() error {
	if p.UserID == "" {
		return errors.New("user_id is required")
	}
	if p.NativeLanguage == "" {
		return errors.New("native_language is required")
	}
	if p.TargetLanguage == "" {
		return errors.New("target_language is required")
	}
	return nil
}
