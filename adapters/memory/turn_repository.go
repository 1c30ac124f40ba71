// Package memory provides in-memory fallbacks used when no MongoDB is
// configured and in tests.
package memory

import (
	"context"
	"sync"

	"github.com/everhighit/coach-client/domain/entities"
	"github.com/everhighit/coach-client/domain/repositories"
)

// TurnRepository keeps turns in memory, newest first.
type TurnRepository struct {
	mu    sync.RWMutex
	turns []*entities.TurnResult
}

var _ repositories.TurnRepository = (*TurnRepository)(nil)

// NewTurnRepository creates an empty in-memory turn repository.
func NewTurnRepository() *TurnRepository {
	return &TurnRepository{}
}

// Save implements repositories.TurnRepository.
func (r *TurnRepository) Save(_ context.Context, turn *entities.TurnResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.turns = append([]*entities.TurnResult{turn}, r.turns...)
	return nil
}

// ListRecent implements repositories.TurnRepository.
func (r *TurnRepository) ListRecent(_ context.Context, userID string, limit int) ([]*entities.TurnResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	var out []*entities.TurnResult
	for _, t := range r.turns {
		if t.UserID != userID {
			continue
		}
		out = append(out, t)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
