package entities

// Voices is the enumerated set of synthesis voices the backend accepts.
// A saved preference outside this set is ignored.
var Voices = []string{"alloy", "echo", "fable", "onyx", "nova", "shimmer"}

// DefaultVoice is the global fallback when neither a saved preference nor a
// language default applies.
const DefaultVoice = "alloy"

// IsValidVoice reports whether v belongs to the allowed voice set.
func IsValidVoice(v string) bool {
	for _, known := range Voices {
		if v == known {
			return true
		}
	}
	return false
}
