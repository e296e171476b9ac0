package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/templatehub/backend/internal/auth"
	"github.com/templatehub/backend/internal/logging"
	"github.com/templatehub/backend/internal/metrics"
	"github.com/templatehub/backend/internal/models"
)

type ctxKey string

const (
	userKey  ctxKey = "user"
	tokenKey ctxKey = "token"
)

var msgUnauthenticated = auth.MissingToken.Message()

// RequireAuth returns a guard that validates the Authorization header and
// attaches the caller's identity to the request context.
func RequireAuth(sessions SessionRegistry, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			user, token, err := sessions.Authenticate(ctx, r.Header.Get("Authorization"))
			if err != nil {
				var authErr *auth.AuthError
				if errors.As(err, &authErr) {
					m.AuthFailure(authErr.Kind.String())
					respondError(ctx, w, http.StatusUnauthorized, authErr.Kind.Message())
					return
				}
				logging.FromContext(ctx).Error("session validation failed", "error", err)
				respondError(ctx, w, http.StatusInternalServerError, msgInternal)
				return
			}

			ctx = logging.With(ctx, "user_id", user.ID)
			ctx = context.WithValue(ctx, userKey, user)
			ctx = context.WithValue(ctx, tokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the authenticated user attached by RequireAuth.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userKey).(models.User)
	return user, ok
}

// TokenFromContext returns the bearer token attached by RequireAuth.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}
