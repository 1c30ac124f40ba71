package repositories

// VoicePreferences is the injected provider for the user's saved synthesis
// voice. Implementations validate against the voice allow-list; Voice
// returns false when nothing valid is saved.
type VoicePreferences interface {
	Voice() (string, bool)
	SetVoice(voice string) error
}
