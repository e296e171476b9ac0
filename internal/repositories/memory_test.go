package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templatehub/backend/internal/models"
)

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	alice := models.User{ID: "user-1", Username: "alice", Password: "pass1"}
	require.NoError(t, repo.Create(ctx, alice))

	err := repo.Create(ctx, models.User{ID: "user-2", Username: "alice", Password: "other"})
	require.ErrorIs(t, err, ErrConflict)

	got, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice, got)

	got, err = repo.FindByID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, alice, got)

	_, err = repo.FindByUsername(ctx, "Alice")
	require.ErrorIs(t, err, ErrNotFound, "lookup is exact")

	repo.Delete(ctx, "user-1")
	_, err = repo.FindByID(ctx, "user-1")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, repo.Create(ctx, models.User{ID: "user-3", Username: "alice"}), "username free after delete")
}

func TestMemoryTemplateRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTemplateRepository()

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, repo.Insert(ctx, []models.Template{{ID: "t2", Name: "B"}, {ID: "t1", Name: "A"}}))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "t2", list[0].ID, "insertion order preserved")
	assert.Equal(t, "t1", list[1].ID)

	list[0].Name = "mutated"
	got, err := repo.Get(ctx, "t2")
	require.NoError(t, err)
	assert.Equal(t, "B", got.Name, "list returns a copy")

	err = repo.Insert(ctx, []models.Template{{ID: "t3"}, {ID: "t1"}})
	require.ErrorIs(t, err, ErrConflict)
	err = repo.Insert(ctx, []models.Template{{ID: "t4"}, {ID: "t4"}})
	require.ErrorIs(t, err, ErrConflict)

	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count, "rejected batches insert nothing")

	_, err = repo.Get(ctx, "t3")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryFavoriteRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryFavoriteRepository()
	now := time.Now().UTC()

	require.NoError(t, repo.Add(ctx, models.Favorite{UserID: "a", TemplateID: "t2", CreatedAt: now}))
	require.NoError(t, repo.Add(ctx, models.Favorite{UserID: "b", TemplateID: "t2", CreatedAt: now}))
	require.NoError(t, repo.Add(ctx, models.Favorite{UserID: "a", TemplateID: "t1", CreatedAt: now.Add(time.Second)}))

	err := repo.Add(ctx, models.Favorite{UserID: "a", TemplateID: "t2", CreatedAt: now})
	require.ErrorIs(t, err, ErrConflict)

	favs, err := repo.ListForUser(ctx, "a")
	require.NoError(t, err)
	require.Len(t, favs, 2)
	assert.Equal(t, "t2", favs[0].TemplateID)
	assert.Equal(t, "t1", favs[1].TemplateID)

	favs, err = repo.ListForUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, favs)
}
