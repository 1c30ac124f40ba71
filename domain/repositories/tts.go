package repositories

import (
	"context"

	"github.com/everhighit/coach-client/domain/entities"
)

// Synthesizer abstracts the text-to-speech collaborator. Each call is
// independent; the pipeline issues up to two per turn.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, language, voice string, pace entities.Pace) ([]byte, error)
}
