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

// ProfileService defines the profile operations required by the HTTP
// handlers.
type ProfileService interface {
	Profile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, patch service.ProfilePatch) (*models.User, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
}

// UserHandler handles the authenticated user's own profile.
type UserHandler struct {
	// ProfileService performs the underlying profile operations.
	ProfileService ProfileService
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Me handles GET /api/users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.ProfileService.Profile(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	writeData(w, http.StatusOK, user)
}

// UpdateMe handles PATCH /api/users/me.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var patch service.ProfilePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		WriteError(w, apperr.New(apperr.KindValidation, "invalid request body"))
		return
	}

	user, err := h.ProfileService.UpdateProfile(r.Context(), middleware.GetUserIDFromContext(r.Context()), patch)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeData(w, http.StatusOK, user)
}

// ChangePassword handles PUT /api/users/me/password.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, apperr.New(apperr.KindValidation, "invalid request body"))
		return
	}

	userID := middleware.GetUserIDFromContext(r.Context())
	if err := h.ProfileService.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		WriteError(w, err)
		return
	}
	writeData(w, http.StatusOK, nil)
}
