package repositories

import (
	"context"
	"sync"

	"github.com/templatehub/backend/internal/models"
)

// MemoryUserRepository keeps users in process memory. It backs the service when
// no database URL is configured and is used throughout the tests.
type MemoryUserRepository struct {
	mu         sync.RWMutex
	byID       map[string]models.User
	byUsername map[string]string
}

// NewMemoryUserRepository returns an empty in-memory user repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:       make(map[string]models.User),
		byUsername: make(map[string]string),
	}
}

// Create stores the user, rejecting duplicate ids and usernames.
func (r *MemoryUserRepository) Create(_ context.Context, user models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUsername[user.Username]; exists {
		return ErrConflict
	}
	if _, exists := r.byID[user.ID]; exists {
		return ErrConflict
	}
	r.byID[user.ID] = user
	r.byUsername[user.Username] = user.ID
	return nil
}

// FindByUsername looks a user up by exact username.
func (r *MemoryUserRepository) FindByUsername(_ context.Context, username string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return r.byID[id], nil
}

// FindByID looks a user up by identifier.
func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return user, nil
}

// Delete removes a user. Accounts are never deleted by the API; tests use this to
// simulate sessions that outlive their user.
func (r *MemoryUserRepository) Delete(_ context.Context, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, ok := r.byID[id]; ok {
		delete(r.byUsername, user.Username)
		delete(r.byID, id)
	}
}

// MemoryTemplateRepository keeps catalog templates in insertion order.
type MemoryTemplateRepository struct {
	mu        sync.RWMutex
	templates []models.Template
	index     map[string]int
}

// NewMemoryTemplateRepository returns an empty in-memory template repository.
func NewMemoryTemplateRepository() *MemoryTemplateRepository {
	return &MemoryTemplateRepository{index: make(map[string]int)}
}

// Count returns the number of stored templates.
func (r *MemoryTemplateRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.templates), nil
}

// Insert appends templates in order. The batch is rejected as a whole with
// ErrConflict if any id is already present or repeated.
func (r *MemoryTemplateRepository) Insert(_ context.Context, templates []models.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(templates))
	for _, t := range templates {
		if _, exists := r.index[t.ID]; exists {
			return ErrConflict
		}
		if _, dup := seen[t.ID]; dup {
			return ErrConflict
		}
		seen[t.ID] = struct{}{}
	}

	for _, t := range templates {
		r.index[t.ID] = len(r.templates)
		r.templates = append(r.templates, t)
	}
	return nil
}

// List returns a copy of all templates in insertion order.
func (r *MemoryTemplateRepository) List(_ context.Context) ([]models.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Template, len(r.templates))
	copy(out, r.templates)
	return out, nil
}

// Get returns the template with the given id.
func (r *MemoryTemplateRepository) Get(_ context.Context, id string) (models.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return models.Template{}, ErrNotFound
	}
	return r.templates[i], nil
}

type favoriteKey struct {
	userID     string
	templateID string
}

// MemoryFavoriteRepository is an append-only in-memory favorite ledger.
type MemoryFavoriteRepository struct {
	mu      sync.RWMutex
	entries []models.Favorite
	keys    map[favoriteKey]struct{}
}

// NewMemoryFavoriteRepository returns an empty in-memory favorite repository.
func NewMemoryFavoriteRepository() *MemoryFavoriteRepository {
	return &MemoryFavoriteRepository{keys: make(map[favoriteKey]struct{})}
}

// Add appends a favorite, returning ErrConflict for a repeated pair.
func (r *MemoryFavoriteRepository) Add(_ context.Context, favorite models.Favorite) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := favoriteKey{userID: favorite.UserID, templateID: favorite.TemplateID}
	if _, exists := r.keys[key]; exists {
		return ErrConflict
	}
	r.keys[key] = struct{}{}
	r.entries = append(r.entries, favorite)
	return nil
}

// ListForUser returns the user's favorites in the order they were added.
func (r *MemoryFavoriteRepository) ListForUser(_ context.Context, userID string) ([]models.Favorite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Favorite
	for _, f := range r.entries {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}

var (
	_ UserRepository     = (*MemoryUserRepository)(nil)
	_ TemplateRepository = (*MemoryTemplateRepository)(nil)
	_ FavoriteRepository = (*MemoryFavoriteRepository)(nil)
)
