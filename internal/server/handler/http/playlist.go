package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aakash-sharma-github/dollop-music-backend/internal/apperr"
	"github.com/aakash-sharma-github/dollop-music-backend/internal/middleware"
	"github.com/aakash-sharma-github/dollop-music-backend/internal/models"
	"github.com/aakash-sharma-github/dollop-music-backend/internal/query"
	"github.com/aakash-sharma-github/dollop-music-backend/internal/service"
)

// PlaylistService defines the playlist operations required by the HTTP
// handlers.
type PlaylistService interface {
	Create(ctx context.Context, ownerID string, attrs service.PlaylistAttrs) (*models.Playlist, error)
	Get(ctx context.Context, id, viewerID string) (*models.Playlist, error)
	List(ctx context.Context, viewerID string, p query.Params) ([]models.Playlist, query.PageInfo, error)
	ListFollowed(ctx context.Context, viewerID string, p query.Params) ([]models.Playlist, query.PageInfo, error)
	Update(ctx context.Context, id, viewerID string, patch service.PlaylistPatch) (*models.Playlist, error)
	Delete(ctx context.Context, id, viewerID string) error
	AddTrack(ctx context.Context, playlistID, viewerID, trackID string) (*models.Playlist, error)
	AddTracksBatch(ctx context.Context, playlistID, viewerID string, trackIDs []string) (*models.Playlist, error)
	RemoveTrack(ctx context.Context, playlistID, viewerID, trackID string) (*models.Playlist, error)
	Reorder(ctx context.Context, playlistID, viewerID string, newOrder []string) (*models.Playlist, error)
	ToggleFollow(ctx context.Context, playlistID, viewerID string) (service.FollowState, error)
	Duplicate(ctx context.Context, playlistID, viewerID string, isPublic *bool) (*models.Playlist, error)
}

// PlaylistHandler handles the playlist endpoints.
type PlaylistHandler struct {
	// PlaylistService performs the underlying playlist operations.
	PlaylistService PlaylistService
}

type addTrackRequest struct {
	TrackID string `json:"trackId"`
}

type addTracksRequest struct {
	TrackIDs []string `json:"trackIds"`
}

type reorderRequest struct {
	Order []string `json:"order"`
}

type duplicateRequest struct {
	IsPublic *bool `json:"isPublic"`
}

// Create handles POST /api/playlists.
func (h *PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	var attrs service.PlaylistAttrs
	if err := json.NewDecoder(r.Body).Decode(&attrs); err != nil {
		WriteError(w, apperr.New(apperr.KindValidation, "invalid request body"))
		return
	}

	playlist, err := h.PlaylistService.Create(r.Context(), middleware.GetUserIDFromContext(r.Context()), attrs)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeData(w, http.StatusCreated, playlist)
}

// Get handles GET /api/playlists/{id}. Auth is optional: anonymous viewers
// see only public playlists.
func (h *PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.PlaylistService.Get(r.Context(), chi.URLParam(r, "id"), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	writeData(w, http.StatusOK, playlist)
}

// List handles GET /api/playlists.
func (h *PlaylistHandler) List(w http.ResponseWriter, r *http.Request) {
	params, err := listParams(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	playlists, page, err := h.PlaylistService.List(r.Context(), middleware.GetUserIDFromContext(r.Context()), params)
	if err != nil {
		WriteError(w, err)
		return
	}
	writePage(w, playlists, page)
}

// ListFollowed handles GET /api/playlists/followed.
func (h *PlaylistHandler) ListFollowed(w http.ResponseWriter, r *http.Request) {
	params, err := listParams(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	playlists, page, err := h.PlaylistService.ListFollowed(r.Context(), middleware.GetUserIDFromContext(r.Context()), params)
	if err != nil {
		WriteError(w, err)
		return
	}
	writePage(w, playlists, page)
}

// Update handles PATCH /api/playlists/{id}.
func (h *PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch service.PlaylistPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		WriteError(w, apperr.New(apperr.KindValidation, "invalid request body"))
		return
	}

	playlist, err := h.PlaylistService.Update(r.Context(), chi.URLParam(r, "id"), middleware.GetUserIDFromContext(r.Context()), patch)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeData(w, http.StatusOK, playlist)
}

// Delete handles DELETE /api/playlists/{id}.
func (h *PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.PlaylistService.Delete(r.Context(), chi.URLParam(r, "id"), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	writeData(w, http.StatusOK, nil)
}

// AddTrack handles POST /api/playlists/{id}/tracks.
func (h *PlaylistHandler) AddTrack(w http.ResponseWriter, r *http.Request) {
	var req addTrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TrackID == "" {
		WriteError(w, apperr.New(apperr.KindValidation, "trackId is required"))
		return
	}

	playlist, err := h.PlaylistService.AddTrack(r.Context(), chi.URLParam(r, "id"), middleware.GetUserIDFromContext(r.Context()), req.TrackID)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeData(w, http.StatusOK, playlist)
}

// AddTracksBatch handles POST /api/playlists/{id}/tracks/batch.
func (h *PlaylistHandler) AddTracksBatch(w http.ResponseWriter, r *http.Request) {
	var req addTracksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, apperr.New(apperr.KindValidation, "invalid request body"))
		return
	}

	playlist, err := h.PlaylistService.AddTracksBatch(r.Context(), chi.URLParam(r, "id"), middleware.GetUserIDFromContext(r.Context()), req.TrackIDs)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeData(w, http.StatusOK, playlist)
}

// RemoveTrack handles DELETE /api/playlists/{id}/tracks/{trackId}.
func (h *PlaylistHandler) RemoveTrack(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.PlaylistService.RemoveTrack(r.Context(),
		chi.URLParam(r, "id"), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "trackId"))
	if err != nil {
		WriteError(w, err)
		return
	}
	writeData(w, http.StatusOK, playlist)
}

// Reorder handles PUT /api/playlists/{id}/tracks/order.
func (h *PlaylistHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, apperr.New(apperr.KindValidation, "invalid request body"))
		return
	}

	playlist, err := h.PlaylistService.Reorder(r.Context(), chi.URLParam(r, "id"), middleware.GetUserIDFromContext(r.Context()), req.Order)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeData(w, http.StatusOK, playlist)
}

// ToggleFollow handles POST /api/playlists/{id}/follow.
func (h *PlaylistHandler) ToggleFollow(w http.ResponseWriter, r *http.Request) {
	state, err := h.PlaylistService.ToggleFollow(r.Context(), chi.URLParam(r, "id"), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	writeData(w, http.StatusOK, state)
}

// Duplicate handles POST /api/playlists/{id}/duplicate. The body is optional;
// an absent or empty body duplicates into a private playlist.
func (h *PlaylistHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	var req duplicateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, apperr.New(apperr.KindValidation, "invalid request body"))
		return
	}

	playlist, err := h.PlaylistService.Duplicate(r.Context(), chi.URLParam(r, "id"), middleware.GetUserIDFromContext(r.Context()), req.IsPublic)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeData(w, http.StatusCreated, playlist)
}
