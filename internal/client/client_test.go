package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templatehub/backend/internal/accounts"
	"github.com/templatehub/backend/internal/auth"
	"github.com/templatehub/backend/internal/catalog"
	"github.com/templatehub/backend/internal/favorites"
	"github.com/templatehub/backend/internal/handlers"
	"github.com/templatehub/backend/internal/repositories"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	ctx := context.Background()

	accountService := accounts.NewService(repositories.NewMemoryUserRepository())
	registry := auth.NewRegistry(auth.DefaultSessionTTL, auth.NewInMemorySessionStore(), accountService)
	templates := catalog.New(repositories.NewMemoryTemplateRepository(), nil)
	_, err := templates.SeedIfEmpty(ctx)
	require.NoError(t, err)

	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, handlers.Dependencies{
		Accounts:  accountService,
		Sessions:  registry,
		Catalog:   templates,
		Favorites: favorites.NewLedger(repositories.NewMemoryFavoriteRepository(), templates),
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", srv.Client())
}

func TestClientFlow(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	user, err := c.Register(ctx, "alice", "pass1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEmpty(t, user.ID)

	session, err := c.Login(ctx, "alice", "pass1")
	require.NoError(t, err)
	assert.Equal(t, user, session.User)
	assert.NotEmpty(t, session.Token())

	fav, err := session.Favorite(ctx, "t3")
	require.NoError(t, err)
	assert.Equal(t, "t3", fav.TemplateID)
	assert.Equal(t, user.ID, fav.UserID)
	assert.False(t, fav.CreatedAt.IsZero())

	_, err = session.Favorite(ctx, "t1")
	require.NoError(t, err)

	entries, err := session.Favorites(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "t3", entries[0].Template.ID)
	assert.Equal(t, "t1", entries[1].Template.ID)

	token := session.Token()
	require.NoError(t, session.Logout(ctx))
	assert.Empty(t, session.Token())

	_, err = session.Favorites(ctx)
	require.ErrorIs(t, err, ErrLoggedOut)
	require.NoError(t, session.Logout(ctx), "second logout is a no-op")

	stale := &Session{client: c, token: token, User: user}
	_, err = stale.Favorites(ctx)
	assert.Equal(t, http.StatusUnauthorized, StatusOf(err))
}

func TestClientCatalog(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	templates, err := c.Templates(ctx)
	require.NoError(t, err)
	require.Len(t, templates, 5)
	for _, tmpl := range templates {
		assert.NotEmpty(t, tmpl.ThumbnailURL)
	}

	tmpl, err := c.Template(ctx, "t2")
	require.NoError(t, err)
	assert.Equal(t, "t2", tmpl.ID)

	_, err = c.Template(ctx, "t99")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "template not found", apiErr.Message)
}

func TestClientErrors(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	_, err := c.Register(ctx, "al", "pass1")
	assert.Equal(t, http.StatusBadRequest, StatusOf(err))

	_, err = c.Register(ctx, "alice", "pass1")
	require.NoError(t, err)
	_, err = c.Register(ctx, "alice", "other")
	assert.Equal(t, http.StatusConflict, StatusOf(err))

	_, err = c.Login(ctx, "alice", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "invalid credentials", apiErr.Message)

	session, err := c.Login(ctx, "alice", "pass1")
	require.NoError(t, err)

	_, err = session.Favorite(ctx, "t404")
	assert.Equal(t, http.StatusNotFound, StatusOf(err))

	_, err = session.Favorite(ctx, "t1")
	require.NoError(t, err)
	_, err = session.Favorite(ctx, "t1")
	assert.Equal(t, http.StatusConflict, StatusOf(err))
}

func TestStatusOfNonAPIError(t *testing.T) {
	assert.Zero(t, StatusOf(nil))
	assert.Zero(t, StatusOf(context.Canceled))
}
