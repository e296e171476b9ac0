// Package accounts holds registered users and verifies their credentials.
package accounts

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/templatehub/backend/internal/models"
	"github.com/templatehub/backend/internal/repositories"
)

const (
	// MinUsernameLength is the minimum username length after trimming.
	MinUsernameLength = 3
	// MinPasswordLength is the minimum password length.
	MinPasswordLength = 4
)

var (
	// ErrValidation is returned when a username or password is too short.
	ErrValidation = errors.New("username (min 3) and password (min 4) required")
	// ErrConflict is returned when the username is already registered.
	ErrConflict = errors.New("username already exists")
	// ErrInvalidCredentials is returned for both unknown users and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Service registers and authenticates users.
type Service struct {
	users repositories.UserRepository
	now   func() time.Time
	newID func() string
}

// NewService constructs a Service over the provided user repository.
func NewService(users repositories.UserRepository) *Service {
	return &Service{
		users: users,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// WithNowFunc allows tests to override the time source.
func (s *Service) WithNowFunc(now func() time.Time) {
	s.now = now
}

// Register creates a user with a generated id and returns its public view.
// The stored username is the trimmed one.
func (s *Service) Register(ctx context.Context, username, password string) (models.PublicUser, error) {
	username = strings.TrimSpace(username)
	if utf8.RuneCountInString(username) < MinUsernameLength || utf8.RuneCountInString(password) < MinPasswordLength {
		return models.PublicUser{}, ErrValidation
	}

	user := models.User{
		ID:        s.newID(),
		Username:  username,
		Password:  password,
		CreatedAt: s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return models.PublicUser{}, ErrConflict
		}
		return models.PublicUser{}, oops.With("operation", "register user").Wrap(err)
	}
	return user.Public(), nil
}

// Authenticate returns the user whose username and password both match exactly.
func (s *Service) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.User{}, ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, oops.With("operation", "authenticate user").Wrap(err)
	}

	if subtle.ConstantTimeCompare([]byte(user.Password), []byte(password)) != 1 {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// FindByID returns the user with id, or repositories.ErrNotFound.
func (s *Service) FindByID(ctx context.Context, id string) (models.User, error) {
	return s.users.FindByID(ctx, id)
}
