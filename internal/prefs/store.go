// Package prefs persists the user's voice preference in a small JSON file,
// the client-side analogue of browser local storage.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/everhighit/coach-client/domain/entities"
	"github.com/everhighit/coach-client/domain/repositories"
)

type fileContents struct {
	Voice string `json:"coach_voice"`
}

// Store is a file-backed voice preference. Values are validated against the
// voice allow-list on both read and write; an unknown value on disk is
// treated as unset rather than an error.
type Store struct {
	path string

	mu    sync.Mutex
	voice string
}

var _ repositories.VoicePreferences = (*Store)(nil)

// NewStore loads the preference file at path, creating parent directories
// as needed on first save.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}

	var contents fileContents
	if err := json.Unmarshal(data, &contents); err != nil {
		// A corrupt file degrades to defaults; the next SetVoice rewrites it.
		return s, nil
	}
	if entities.IsValidVoice(contents.Voice) {
		s.voice = contents.Voice
	}
	return s, nil
}

// Voice implements repositories.VoicePreferences.
func (s *Store) Voice() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voice, s.voice != ""
}

// SetVoice implements repositories.VoicePreferences. Rejects voices outside
// the allow-list before anything touches disk.
func (s *Store) SetVoice(voice string) error {
	if !entities.IsValidVoice(voice) {
		return fmt.Errorf("unknown voice %q", voice)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create preference directory: %w", err)
	}
	data, err := json.Marshal(fileContents{Voice: voice})
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}

	s.voice = voice
	return nil
}
