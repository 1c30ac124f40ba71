package repositories

import (
	"context"

	"github.com/everhighit/coach-client/domain/entities"
)

// TurnRepository persists completed turns for the local practice history.
type TurnRepository interface {
	Save(ctx context.Context, turn *entities.TurnResult) error
	ListRecent(ctx context.Context, userID string, limit int) ([]*entities.TurnResult, error)
}
