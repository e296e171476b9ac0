package client

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/templatehub/backend/internal/models"
)

// Session is the capability granted by a successful login. It is safe for
// concurrent use.
type Session struct {
	client *Client
	User   models.PublicUser

	mu    sync.RWMutex
	token string
}

// Token returns the bearer token, or "" after Logout.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) authorized() (string, error) {
	token := s.Token()
	if token == "" {
		return "", ErrLoggedOut
	}
	return token, nil
}

// Favorite marks templateID as a favorite of the session's user.
func (s *Session) Favorite(ctx context.Context, templateID string) (models.Favorite, error) {
	token, err := s.authorized()
	if err != nil {
		return models.Favorite{}, err
	}

	var resp struct {
		Favorite models.Favorite `json:"favorite"`
	}
	if err := s.client.do(ctx, http.MethodPost, "/api/favorites/"+url.PathEscape(templateID), token, nil, &resp); err != nil {
		return models.Favorite{}, err
	}
	resp.Favorite.UserID = s.User.ID
	return resp.Favorite, nil
}

// Favorites lists the user's favorites in the order they were added.
func (s *Session) Favorites(ctx context.Context) ([]models.FavoriteEntry, error) {
	token, err := s.authorized()
	if err != nil {
		return nil, err
	}

	var entries []models.FavoriteEntry
	err = s.client.do(ctx, http.MethodGet, "/api/favorites", token, nil, &entries)
	return entries, err
}

// Logout revokes the token server-side and forgets it locally. The local token
// is dropped even when the server call fails.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	token := s.token
	s.token = ""
	s.mu.Unlock()

	if token == "" {
		return nil
	}
	return s.client.do(ctx, http.MethodPost, "/logout", token, nil, nil)
}
