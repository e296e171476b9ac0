// Package favorites records which templates each user has favorited.
package favorites

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/oops"

	"github.com/templatehub/backend/internal/catalog"
	"github.com/templatehub/backend/internal/logging"
	"github.com/templatehub/backend/internal/models"
	"github.com/templatehub/backend/internal/repositories"
)

// ErrAlreadyFavorited is returned when the user already favorited the template.
var ErrAlreadyFavorited = errors.New("already favorited")

// Templates resolves template ids against the catalog.
type Templates interface {
	Get(ctx context.Context, id string) (models.Template, error)
}

// Ledger appends and lists favorites scoped to a single user.
type Ledger struct {
	repo      repositories.FavoriteRepository
	templates Templates
	now       func() time.Time
}

// NewLedger constructs a Ledger over repo, validating ids against templates.
func NewLedger(repo repositories.FavoriteRepository, templates Templates) *Ledger {
	return &Ledger{
		repo:      repo,
		templates: templates,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithNowFunc allows tests to override the time source.
func (l *Ledger) WithNowFunc(now func() time.Time) {
	l.now = now
}

// Add favorites templateID for userID. It returns catalog.ErrNotFound when
// the template does not exist and ErrAlreadyFavorited for repeated calls.
func (l *Ledger) Add(ctx context.Context, userID, templateID string) (models.Favorite, error) {
	ctx = logging.With(ctx, slog.String("user_id", userID), slog.String("template_id", templateID))
	ctx, span := logging.StartSpan(ctx, "favorites.add")

	favorite, err := l.add(ctx, userID, templateID)
	span.EndErr(err)
	return favorite, err
}

func (l *Ledger) add(ctx context.Context, userID, templateID string) (models.Favorite, error) {
	if _, err := l.templates.Get(ctx, templateID); err != nil {
		return models.Favorite{}, err
	}

	favorite := models.Favorite{
		UserID:     userID,
		TemplateID: templateID,
		CreatedAt:  l.now(),
	}
	if err := l.repo.Add(ctx, favorite); err != nil {
		switch {
		case errors.Is(err, repositories.ErrConflict):
			return models.Favorite{}, ErrAlreadyFavorited
		case errors.Is(err, repositories.ErrNotFound):
			// The template vanished between the lookup and the insert.
			return models.Favorite{}, catalog.ErrNotFound
		}
		return models.Favorite{}, oops.With("operation", "add favorite").Wrap(err)
	}
	return favorite, nil
}

// ListFor returns userID's favorites in the order they were added, joined
// against the catalog. Entries whose template no longer resolves are skipped.
func (l *Ledger) ListFor(ctx context.Context, userID string) ([]models.FavoriteEntry, error) {
	favorites, err := l.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, oops.With("operation", "list favorites", "user_id", userID).Wrap(err)
	}

	entries := make([]models.FavoriteEntry, 0, len(favorites))
	for _, f := range favorites {
		t, err := l.templates.Get(ctx, f.TemplateID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				logging.FromContext(ctx).Debug("dropping favorite for missing template", slog.String("template_id", f.TemplateID))
				continue
			}
			return nil, err
		}
		entries = append(entries, models.FavoriteEntry{Template: t, FavoritedAt: f.CreatedAt})
	}
	return entries, nil
}
