package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aakash-sharma-github/dollop-music-backend/internal/apperr"
	"github.com/aakash-sharma-github/dollop-music-backend/internal/middleware"
	"github.com/aakash-sharma-github/dollop-music-backend/internal/models"
	"github.com/aakash-sharma-github/dollop-music-backend/internal/service"
)

// AuthService defines the interface for authentication operations required by
// the HTTP handlers.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, service.TokenPair, error)
	Login(ctx context.Context, email, password string) (*models.User, service.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (service.TokenPair, error)
	Logout(ctx context.Context, userID string) error
}

// AuthHandler handles registration, login, token rotation and logout.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type authResponse struct {
	User   *models.User      `json:"user"`
	Tokens service.TokenPair `json:"tokens"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, apperr.New(apperr.KindValidation, "invalid request body"))
		return
	}

	user, tokens, err := h.AuthService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeData(w, http.StatusCreated, authResponse{User: user, Tokens: tokens})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, apperr.New(apperr.KindValidation, "invalid request body"))
		return
	}

	user, tokens, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeData(w, http.StatusOK, authResponse{User: user, Tokens: tokens})
}

// Refresh handles POST /api/auth/refresh, rotating the presented refresh
// token for a fresh pair.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		WriteError(w, apperr.New(apperr.KindValidation, "refreshToken is required"))
		return
	}

	tokens, err := h.AuthService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"tokens": tokens})
}

// Logout handles POST /api/auth/logout for the authenticated user.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())
	if err := h.AuthService.Logout(r.Context(), userID); err != nil {
		WriteError(w, err)
		return
	}
	writeData(w, http.StatusOK, nil)
}
