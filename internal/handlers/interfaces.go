package handlers

import (
	"context"

	"github.com/templatehub/backend/internal/models"
)

// AccountService registers users and verifies their credentials.
type AccountService interface {
	Register(ctx context.Context, username, password string) (models.PublicUser, error)
	Authenticate(ctx context.Context, username, password string) (models.User, error)
}

// SessionRegistry issues, validates and revokes bearer tokens.
type SessionRegistry interface {
	Create(ctx context.Context, userID string) (models.Session, error)
	Authenticate(ctx context.Context, header string) (models.User, string, error)
	Revoke(ctx context.Context, token string) error
}

// TemplateCatalog provides read access to the template catalog.
type TemplateCatalog interface {
	List(ctx context.Context) ([]models.Template, error)
	Get(ctx context.Context, id string) (models.Template, error)
}

// FavoriteLedger records and lists per-user favorites.
type FavoriteLedger interface {
	Add(ctx context.Context, userID, templateID string) (models.Favorite, error)
	ListFor(ctx context.Context, userID string) ([]models.FavoriteEntry, error)
}

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
