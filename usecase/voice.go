package usecase

import (
	"strings"

	"github.com/everhighit/coach-client/domain/entities"
)

// languageVoices maps a language prefix to its default voice.
var languageVoices = map[string]string{
	"en": "alloy",
	"es": "nova",
	"fr": "shimmer",
	"de": "onyx",
	"it": "fable",
	"pt": "nova",
	"ru": "echo",
}

// ResolveVoice picks the synthesis voice for a language. A valid saved
// preference always wins; otherwise the language-prefix default applies,
// otherwise the global default. Deterministic for any input pair.
func ResolveVoice(savedPreference, language string) string {
	if entities.IsValidVoice(savedPreference) {
		return savedPreference
	}

	prefix := strings.ToLower(language)
	if i := strings.IndexByte(prefix, '-'); i > 0 {
		prefix = prefix[:i]
	}
	if v, ok := languageVoices[prefix]; ok {
		return v
	}
	return entities.DefaultVoice
}
