package models

import (
	"strings"
	"time"
)

// PlaceholderThumbnail is served for templates whose thumbnail URL is blank.
const PlaceholderThumbnail = "https://via.placeholder.com/600x400?text=No+Image"

// User represents a registered account. Password is stored verbatim.
type User struct {
	ID        string
	Username  string
	Password  string
	CreatedAt time.Time
}

// Public returns the projection of the user that is safe to send to clients.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username}
}

// PublicUser is the client-facing view of a user; it never carries the password.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Session binds an opaque bearer token to a user until ExpiresAt.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Template is an immutable catalog entry.
type Template struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnail_url"`
	Category     string `json:"category"`
}

// DisplayThumbnail returns the thumbnail URL, falling back to the placeholder image.
func (t Template) DisplayThumbnail() string {
	if strings.TrimSpace(t.ThumbnailURL) == "" {
		return PlaceholderThumbnail
	}
	return t.ThumbnailURL
}

// WithDisplayThumbnail returns a copy of t whose ThumbnailURL is never blank.
func (t Template) WithDisplayThumbnail() Template {
	t.ThumbnailURL = t.DisplayThumbnail()
	return t
}

// Favorite records that a user favorited a template.
type Favorite struct {
	UserID     string    `json:"-"`
	TemplateID string    `json:"templateId"`
	CreatedAt  time.Time `json:"favoritedAt"`
}

// FavoriteEntry is a favorite joined against the catalog.
type FavoriteEntry struct {
	Template    Template  `json:"template"`
	FavoritedAt time.Time `json:"favoritedAt"`
}
