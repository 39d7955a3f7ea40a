package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/aakash-sharma-github/dollop-music-backend/internal/apperr"
	"github.com/aakash-sharma-github/dollop-music-backend/internal/models"
	"github.com/aakash-sharma-github/dollop-music-backend/internal/query"
	"github.com/aakash-sharma-github/dollop-music-backend/internal/service"
)

// fakeTrackService implements TrackService for testing.
type fakeTrackService struct {
	track     *models.Track
	tracks    []models.Track
	page      query.PageInfo
	playCount int64
	err       error
	gotViewer string
	gotParams query.Params
}

func (f *fakeTrackService) Create(ctx context.Context, ownerID string, attrs service.TrackAttrs) (*models.Track, error) {
	f.gotViewer = ownerID
	return f.track, f.err
}

func (f *fakeTrackService) Get(ctx context.Context, id, viewerID string) (*models.Track, error) {
	f.gotViewer = viewerID
	return f.track, f.err
}

func (f *fakeTrackService) List(ctx context.Context, viewerID string, p query.Params) ([]models.Track, query.PageInfo, error) {
	f.gotViewer = viewerID
	f.gotParams = p
	return f.tracks, f.page, f.err
}

func (f *fakeTrackService) Update(ctx context.Context, id, viewerID string, patch service.TrackPatch) (*models.Track, error) {
	return f.track, f.err
}

func (f *fakeTrackService) Delete(ctx context.Context, id, viewerID string) error {
	return f.err
}

func (f *fakeTrackService) IncrementPlay(ctx context.Context, id string) (int64, error) {
	return f.playCount, f.err
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestTrackHandler_GetForbidden(t *testing.T) {
	svc := &fakeTrackService{err: apperr.New(apperr.KindForbidden, "you do not have access to this track")}
	handler := &TrackHandler{TrackService: svc}

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/tracks/t1", nil), "id", "t1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d; want %d", rec.Code, http.StatusForbidden)
	}
	if !strings.Contains(rec.Body.String(), `"code":"FORBIDDEN"`) {
		t.Errorf("body %q missing FORBIDDEN code", rec.Body.String())
	}
}

func TestTrackHandler_ListPagination(t *testing.T) {
	svc := &fakeTrackService{
		tracks: []models.Track{{ID: "t1", Title: "Song"}},
		page:   query.NewPageInfo(2, 10, 105),
	}
	handler := &TrackHandler{TrackService: svc}

	req := httptest.NewRequest(http.MethodGet, "/api/tracks?page=2&limit=10&search=song&tags=rock,indie&genre=rock", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
	}
	if svc.gotParams.Page != 2 || svc.gotParams.Limit != 10 {
		t.Errorf("params = %+v; want page 2 limit 10", svc.gotParams)
	}
	if len(svc.gotParams.Tags) != 2 || svc.gotParams.Tags[0] != "rock" {
		t.Errorf("tags = %v; want [rock indie]", svc.gotParams.Tags)
	}
	if svc.gotParams.Filters["genre"] != "rock" {
		t.Errorf("filters = %v; want genre=rock", svc.gotParams.Filters)
	}

	var body struct {
		Status     string          `json:"status"`
		Pagination *query.PageInfo `json:"pagination"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Pagination == nil || body.Pagination.TotalPages != 11 {
		t.Errorf("pagination = %+v; want 11 total pages", body.Pagination)
	}
}

func TestTrackHandler_ListBadPage(t *testing.T) {
	handler := &TrackHandler{TrackService: &fakeTrackService{}}

	req := httptest.NewRequest(http.MethodGet, "/api/tracks?page=abc", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestTrackHandler_Create(t *testing.T) {
	svc := &fakeTrackService{track: &models.Track{ID: "t1", Title: "Song"}}
	handler := &TrackHandler{TrackService: svc}

	req := httptest.NewRequest(http.MethodPost, "/api/tracks",
		bytes.NewBufferString(`{"title":"Song","artist":"Artist","fileUrl":"https://cdn.example.com/t1.mp3"}`))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d; want %d", rec.Code, http.StatusCreated)
	}
}

func TestTrackHandler_IncrementPlay(t *testing.T) {
	svc := &fakeTrackService{playCount: 43}
	handler := &TrackHandler{TrackService: svc}

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/api/tracks/t1/play", nil), "id", "t1")
	rec := httptest.NewRecorder()

	handler.IncrementPlay(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `"playCount":43`) {
		t.Errorf("body %q missing play count", rec.Body.String())
	}
}

func TestTrackHandler_DeleteNotFound(t *testing.T) {
	svc := &fakeTrackService{err: apperr.New(apperr.KindNotFound, "track not found")}
	handler := &TrackHandler{TrackService: svc}

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/tracks/missing", nil), "id", "missing")
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d; want %d", rec.Code, http.StatusNotFound)
	}
}
