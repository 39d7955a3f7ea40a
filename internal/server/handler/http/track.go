package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aakash-sharma-github/dollop-music-backend/internal/apperr"
	"github.com/aakash-sharma-github/dollop-music-backend/internal/middleware"
	"github.com/aakash-sharma-github/dollop-music-backend/internal/models"
	"github.com/aakash-sharma-github/dollop-music-backend/internal/query"
	"github.com/aakash-sharma-github/dollop-music-backend/internal/service"
)

// TrackService defines the track catalog operations required by the HTTP
// handlers.
type TrackService interface {
	Create(ctx context.Context, ownerID string, attrs service.TrackAttrs) (*models.Track, error)
	Get(ctx context.Context, id, viewerID string) (*models.Track, error)
	List(ctx context.Context, viewerID string, p query.Params) ([]models.Track, query.PageInfo, error)
	Update(ctx context.Context, id, viewerID string, patch service.TrackPatch) (*models.Track, error)
	Delete(ctx context.Context, id, viewerID string) error
	IncrementPlay(ctx context.Context, id string) (int64, error)
}

// TrackHandler handles the track catalog endpoints.
type TrackHandler struct {
	// TrackService performs the underlying catalog operations.
	TrackService TrackService
}

// Create handles POST /api/tracks.
func (h *TrackHandler) Create(w http.ResponseWriter, r *http.Request) {
	var attrs service.TrackAttrs
	if err := json.NewDecoder(r.Body).Decode(&attrs); err != nil {
		WriteError(w, apperr.New(apperr.KindValidation, "invalid request body"))
		return
	}

	track, err := h.TrackService.Create(r.Context(), middleware.GetUserIDFromContext(r.Context()), attrs)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeData(w, http.StatusCreated, track)
}

// Get handles GET /api/tracks/{id}. Auth is optional: anonymous viewers see
// only public tracks.
func (h *TrackHandler) Get(w http.ResponseWriter, r *http.Request) {
	track, err := h.TrackService.Get(r.Context(), chi.URLParam(r, "id"), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	writeData(w, http.StatusOK, track)
}

// List handles GET /api/tracks.
func (h *TrackHandler) List(w http.ResponseWriter, r *http.Request) {
	params, err := listParams(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	tracks, page, err := h.TrackService.List(r.Context(), middleware.GetUserIDFromContext(r.Context()), params)
	if err != nil {
		WriteError(w, err)
		return
	}
	writePage(w, tracks, page)
}

// Update handles PATCH /api/tracks/{id}.
func (h *TrackHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch service.TrackPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		WriteError(w, apperr.New(apperr.KindValidation, "invalid request body"))
		return
	}

	track, err := h.TrackService.Update(r.Context(), chi.URLParam(r, "id"), middleware.GetUserIDFromContext(r.Context()), patch)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeData(w, http.StatusOK, track)
}

// Delete handles DELETE /api/tracks/{id}.
func (h *TrackHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.TrackService.Delete(r.Context(), chi.URLParam(r, "id"), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	writeData(w, http.StatusOK, nil)
}

// IncrementPlay handles POST /api/tracks/{id}/play. No auth required.
func (h *TrackHandler) IncrementPlay(w http.ResponseWriter, r *http.Request) {
	count, err := h.TrackService.IncrementPlay(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"playCount": count})
}
