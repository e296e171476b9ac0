package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/templatehub/backend/internal/models"
	"github.com/templatehub/backend/internal/repositories"
)

type cacheEntry struct {
	template models.Template
	expires  time.Time
}

// CachingRepository wraps a TemplateRepository with a TTL-based in-memory
// cache for reads. Inserts go straight through and drop the cache.
type CachingRepository struct {
	base repositories.TemplateRepository
	ttl  time.Duration
	now  func() time.Time

	mu          sync.RWMutex
	items       map[string]cacheEntry
	list        []models.Template
	listExpires time.Time
}

var _ repositories.TemplateRepository = (*CachingRepository)(nil)

// NewCachingRepository returns a repository that caches reads for ttl.
func NewCachingRepository(base repositories.TemplateRepository, ttl time.Duration) *CachingRepository {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachingRepository{
		base:  base,
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]cacheEntry),
	}
}

// Count delegates to the underlying repository.
func (c *CachingRepository) Count(ctx context.Context) (int, error) {
	return c.base.Count(ctx)
}

// Insert delegates to the underlying repository and invalidates cached reads.
func (c *CachingRepository) Insert(ctx context.Context, templates []models.Template) error {
	err := c.base.Insert(ctx, templates)

	c.mu.Lock()
	c.items = make(map[string]cacheEntry)
	c.list = nil
	c.listExpires = time.Time{}
	c.mu.Unlock()

	return err
}

// List returns the cached catalog when fresh, otherwise it reloads it.
func (c *CachingRepository) List(ctx context.Context) ([]models.Template, error) {
	now := c.now()

	c.mu.RLock()
	list, expires := c.list, c.listExpires
	c.mu.RUnlock()
	if list != nil && now.Before(expires) {
		return append([]models.Template(nil), list...), nil
	}

	list, err := c.base.List(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.list = append(make([]models.Template, 0, len(list)), list...)
	c.listExpires = now.Add(c.ttl)
	c.mu.Unlock()

	return list, nil
}

// Get returns a cached template when available. Misses are not cached.
func (c *CachingRepository) Get(ctx context.Context, id string) (models.Template, error) {
	now := c.now()

	c.mu.RLock()
	entry, ok := c.items[id]
	c.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.template, nil
	}

	t, err := c.base.Get(ctx, id)
	if err != nil {
		return models.Template{}, err
	}

	c.mu.Lock()
	c.items[id] = cacheEntry{template: t, expires: now.Add(c.ttl)}
	c.mu.Unlock()

	return t, nil
}
