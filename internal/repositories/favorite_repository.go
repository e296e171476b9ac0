package repositories

import (
	"context"

	"github.com/templatehub/backend/internal/models"
)

// FavoriteRepository defines data access for the favorite ledger. Add returns
// ErrConflict when the (user, template) pair already exists.
type FavoriteRepository interface {
	Add(ctx context.Context, favorite models.Favorite) error
	ListForUser(ctx context.Context, userID string) ([]models.Favorite, error)
}
