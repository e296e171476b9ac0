package handlers

import (
	"errors"
	"net/http"

	"github.com/templatehub/backend/internal/catalog"
	"github.com/templatehub/backend/internal/favorites"
	"github.com/templatehub/backend/internal/logging"
	"github.com/templatehub/backend/internal/metrics"
	"github.com/templatehub/backend/internal/models"
)

// FavoriteHandler serves the caller's favorites. Both routes run behind
// RequireAuth and scope every read and write to the authenticated user.
type FavoriteHandler struct {
	Favorites FavoriteLedger
	Metrics   *metrics.Metrics
}

type favoriteResponse struct {
	Message  string          `json:"message"`
	Favorite models.Favorite `json:"favorite"`
}

// Add handles POST /api/favorites/{templateId}.
func (h FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := UserFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, msgUnauthenticated)
		return
	}

	favorite, err := h.Favorites.Add(ctx, user.ID, r.PathValue("templateId"))
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		respondError(ctx, w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, favorites.ErrAlreadyFavorited):
		respondError(ctx, w, http.StatusConflict, err.Error())
		return
	case err != nil:
		logging.FromContext(ctx).Error("add favorite failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, msgInternal)
		return
	}

	h.Metrics.FavoriteAdded()
	respondJSON(ctx, w, http.StatusCreated, favoriteResponse{Message: "favorited", Favorite: favorite})
}

// List handles GET /api/favorites.
func (h FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := UserFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, msgUnauthenticated)
		return
	}

	entries, err := h.Favorites.ListFor(ctx, user.ID)
	if err != nil {
		logging.FromContext(ctx).Error("list favorites failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, msgInternal)
		return
	}

	respondJSON(ctx, w, http.StatusOK, entries)
}
