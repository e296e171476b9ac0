package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templatehub/backend/internal/models"
	"github.com/templatehub/backend/internal/repositories"
)

type countingRepository struct {
	repositories.TemplateRepository
	lists int
	gets  int
}

func (c *countingRepository) List(ctx context.Context) ([]models.Template, error) {
	c.lists++
	return c.TemplateRepository.List(ctx)
}

func (c *countingRepository) Get(ctx context.Context, id string) (models.Template, error) {
	c.gets++
	return c.TemplateRepository.Get(ctx, id)
}

func TestCachingRepository(t *testing.T) {
	ctx := context.Background()
	base := &countingRepository{TemplateRepository: repositories.NewMemoryTemplateRepository()}
	require.NoError(t, base.Insert(ctx, []models.Template{{ID: "t1", Name: "Landing"}}))

	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	cache := NewCachingRepository(base, time.Minute)
	cache.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		list, err := cache.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		_, err = cache.Get(ctx, "t1")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, base.lists)
	assert.Equal(t, 1, base.gets)

	_, err := cache.Get(ctx, "missing")
	require.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = cache.Get(ctx, "missing")
	require.ErrorIs(t, err, repositories.ErrNotFound)
	assert.Equal(t, 3, base.gets, "misses are not cached")

	now = now.Add(time.Minute)
	_, err = cache.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, base.lists, "expired entries reload")

	require.NoError(t, cache.Insert(ctx, []models.Template{{ID: "t2", Name: "Blog"}}))
	list, err := cache.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2, "insert invalidates the cached list")

	count, err := cache.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
