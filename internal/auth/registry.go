package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/templatehub/backend/internal/models"
	"github.com/templatehub/backend/internal/repositories"
)

// DefaultSessionTTL is how long a bearer token stays valid after login.
const DefaultSessionTTL = 2 * time.Hour

// Scheme is the literal Authorization scheme accepted by ParseAuthorization.
const Scheme = "Token"

const tokenAttempts = 3

// SessionStore keeps issued sessions keyed by token.
type SessionStore interface {
	Save(ctx context.Context, session models.Session) error
	Find(ctx context.Context, token string) (models.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
	Count(ctx context.Context) (int, error)
}

// UserLookup resolves the user a session points at. It must return
// repositories.ErrNotFound for users that no longer exist.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// Registry issues, validates and revokes bearer tokens. Expiry is fixed at
// creation; validation never extends it.
type Registry struct {
	ttl   time.Duration
	store SessionStore
	users UserLookup

	now      func() time.Time
	newToken func() (string, error)
}

// NewRegistry constructs a Registry issuing sessions that live for ttl.
func NewRegistry(ttl time.Duration, store SessionStore, users UserLookup) *Registry {
	if store == nil {
		panic("auth: session store must not be nil")
	}
	if users == nil {
		panic("auth: user lookup must not be nil")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Registry{
		ttl:      ttl,
		store:    store,
		users:    users,
		now:      func() time.Time { return time.Now().UTC() },
		newToken: randomToken,
	}
}

// WithNowFunc allows tests to override the time source.
func (r *Registry) WithNowFunc(now func() time.Time) {
	r.now = now
}

// TTL returns the lifetime of newly created sessions.
func (r *Registry) TTL() time.Duration {
	return r.ttl
}

// Create issues a new session for userID. Existing sessions for the same user
// remain valid.
func (r *Registry) Create(ctx context.Context, userID string) (models.Session, error) {
	if userID == "" {
		return models.Session{}, errors.New("user id must be provided")
	}

	token, err := r.uniqueToken(ctx)
	if err != nil {
		return models.Session{}, err
	}

	session := models.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: r.now().Add(r.ttl),
	}
	if err := r.store.Save(ctx, session); err != nil {
		return models.Session{}, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

func (r *Registry) uniqueToken(ctx context.Context) (string, error) {
	for i := 0; i < tokenAttempts; i++ {
		token, err := r.newToken()
		if err != nil {
			return "", fmt.Errorf("generate token: %w", err)
		}
		_, err = r.store.Find(ctx, token)
		if errors.Is(err, ErrSessionNotFound) {
			return token, nil
		}
		if err != nil {
			return "", fmt.Errorf("check token uniqueness: %w", err)
		}
	}
	return "", errors.New("generate token: repeated collisions")
}

// Authenticate parses an Authorization header value and validates its token.
func (r *Registry) Authenticate(ctx context.Context, header string) (models.User, string, error) {
	token, err := ParseAuthorization(header)
	if err != nil {
		return models.User{}, "", err
	}
	user, err := r.Validate(ctx, token)
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}

// Validate resolves token to its user. An expired session is evicted before
// ErrExpiredToken is returned. Errors other than *AuthError indicate a store failure.
func (r *Registry) Validate(ctx context.Context, token string) (models.User, error) {
	if token == "" {
		return models.User{}, ErrMissingToken
	}

	session, err := r.store.Find(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return models.User{}, ErrInvalidToken
		}
		return models.User{}, fmt.Errorf("find session: %w", err)
	}

	if session.Expired(r.now()) {
		_ = r.store.Delete(ctx, token)
		return models.User{}, ErrExpiredToken
	}

	user, err := r.users.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.User{}, ErrUnknownUser
		}
		return models.User{}, fmt.Errorf("find session user: %w", err)
	}
	return user, nil
}

// Revoke removes the session for token. Revoking an unknown token is not an error.
func (r *Registry) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return r.store.Delete(ctx, token)
}

// Sweep evicts every expired session and reports how many were removed.
func (r *Registry) Sweep(ctx context.Context) (int, error) {
	return r.store.DeleteExpired(ctx, r.now())
}

// Active returns the number of sessions currently held, including expired ones
// not yet evicted.
func (r *Registry) Active(ctx context.Context) (int, error) {
	return r.store.Count(ctx)
}

// ParseAuthorization extracts the token from a header of the exact form
// "Token <opaque>".
func ParseAuthorization(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != Scheme || parts[1] == "" {
		return "", ErrMalformedHeader
	}
	return parts[1], nil
}

func randomToken() (string, error) {
	const size = 32
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
