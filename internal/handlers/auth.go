package handlers

import (
	"errors"
	"net/http"

	"github.com/templatehub/backend/internal/accounts"
	"github.com/templatehub/backend/internal/logging"
	"github.com/templatehub/backend/internal/metrics"
	"github.com/templatehub/backend/internal/models"
)

// AuthHandler implements registration, login and logout.
type AuthHandler struct {
	Accounts AccountService
	Sessions SessionRegistry
	Metrics  *metrics.Metrics
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Register handles POST /register.
func (h AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logger.Warn("invalid register payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, accounts.ErrValidation.Error())
		return
	}

	user, err := h.Accounts.Register(ctx, req.Username, req.Password)
	switch {
	case errors.Is(err, accounts.ErrValidation):
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, accounts.ErrConflict):
		respondError(ctx, w, http.StatusConflict, err.Error())
		return
	case err != nil:
		logger.Error("register failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, msgInternal)
		return
	}

	logger.Info("user registered", "userId", user.ID)
	respondJSON(ctx, w, http.StatusCreated, user)
}

// Login handles POST /login.
func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Username == "" || req.Password == "" {
		if err != nil {
			logger.Warn("invalid login payload", "error", err)
		}
		respondError(ctx, w, http.StatusBadRequest, "username and password required")
		return
	}

	user, err := h.Accounts.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, accounts.ErrInvalidCredentials) {
			h.Metrics.AuthFailure("invalid_credentials")
			respondError(ctx, w, http.StatusUnauthorized, err.Error())
			return
		}
		logger.Error("login user lookup failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, msgInternal)
		return
	}

	session, err := h.Sessions.Create(ctx, user.ID)
	if err != nil {
		logger.Error("failed to create session", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, msgInternal)
		return
	}

	respondJSON(ctx, w, http.StatusOK, loginResponse{Token: session.Token, User: user.Public()})
}

// Logout handles POST /logout. It must run behind RequireAuth.
func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.Sessions.Revoke(ctx, TokenFromContext(ctx)); err != nil {
		logging.FromContext(ctx).Error("revoke session failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, msgInternal)
		return
	}

	respondJSON(ctx, w, http.StatusOK, messageResponse{Message: "logged out"})
}
