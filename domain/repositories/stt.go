package repositories

import "context"

// Transcriber abstracts the speech-to-text collaborator.
type Transcriber interface {
	// Transcribe converts one finalized audio blob to text. The language is
	// the learner's target language. An empty string with a nil error means
	// the service recognized nothing.
	Transcribe(ctx context.Context, audio []byte, encoding string, language string) (string, error)
}
