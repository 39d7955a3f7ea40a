package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aakash-sharma-github/dollop-music-backend/internal/apperr"
	"github.com/aakash-sharma-github/dollop-music-backend/internal/models"
	"github.com/aakash-sharma-github/dollop-music-backend/internal/query"
	"github.com/aakash-sharma-github/dollop-music-backend/internal/service"
)

// fakePlaylistService implements PlaylistService for testing.
type fakePlaylistService struct {
	playlist    *models.Playlist
	playlists   []models.Playlist
	page        query.PageInfo
	follow      service.FollowState
	err         error
	gotTrackID  string
	gotTrackIDs []string
	gotOrder    []string
	gotPublic   *bool
}

func (f *fakePlaylistService) Create(ctx context.Context, ownerID string, attrs service.PlaylistAttrs) (*models.Playlist, error) {
	return f.playlist, f.err
}

func (f *fakePlaylistService) Get(ctx context.Context, id, viewerID string) (*models.Playlist, error) {
	return f.playlist, f.err
}

func (f *fakePlaylistService) List(ctx context.Context, viewerID string, p query.Params) ([]models.Playlist, query.PageInfo, error) {
	return f.playlists, f.page, f.err
}

func (f *fakePlaylistService) ListFollowed(ctx context.Context, viewerID string, p query.Params) ([]models.Playlist, query.PageInfo, error) {
	return f.playlists, f.page, f.err
}

func (f *fakePlaylistService) Update(ctx context.Context, id, viewerID string, patch service.PlaylistPatch) (*models.Playlist, error) {
	return f.playlist, f.err
}

func (f *fakePlaylistService) Delete(ctx context.Context, id, viewerID string) error {
	return f.err
}

func (f *fakePlaylistService) AddTrack(ctx context.Context, playlistID, viewerID, trackID string) (*models.Playlist, error) {
	f.gotTrackID = trackID
	return f.playlist, f.err
}

func (f *fakePlaylistService) AddTracksBatch(ctx context.Context, playlistID, viewerID string, trackIDs []string) (*models.Playlist, error) {
	f.gotTrackIDs = trackIDs
	return f.playlist, f.err
}

func (f *fakePlaylistService) RemoveTrack(ctx context.Context, playlistID, viewerID, trackID string) (*models.Playlist, error) {
	f.gotTrackID = trackID
	return f.playlist, f.err
}

func (f *fakePlaylistService) Reorder(ctx context.Context, playlistID, viewerID string, newOrder []string) (*models.Playlist, error) {
	f.gotOrder = newOrder
	return f.playlist, f.err
}

func (f *fakePlaylistService) ToggleFollow(ctx context.Context, playlistID, viewerID string) (service.FollowState, error) {
	return f.follow, f.err
}

func (f *fakePlaylistService) Duplicate(ctx context.Context, playlistID, viewerID string, isPublic *bool) (*models.Playlist, error) {
	f.gotPublic = isPublic
	return f.playlist, f.err
}

func emptyTestPlaylist() *models.Playlist {
	return &models.Playlist{ID: "p1", Name: "Mix", TrackIDs: []string{}, OwnerID: "u1"}
}

func TestPlaylistHandler_AddTrackRequiresTrackID(t *testing.T) {
	handler := &PlaylistHandler{PlaylistService: &fakePlaylistService{}}

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/api/playlists/p1/tracks",
		bytes.NewBufferString(`{}`)), "id", "p1")
	rec := httptest.NewRecorder()

	handler.AddTrack(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestPlaylistHandler_AddTrack(t *testing.T) {
	svc := &fakePlaylistService{playlist: emptyTestPlaylist()}
	handler := &PlaylistHandler{PlaylistService: svc}

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/api/playlists/p1/tracks",
		bytes.NewBufferString(`{"trackId":"t1"}`)), "id", "p1")
	rec := httptest.NewRecorder()

	handler.AddTrack(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d; want %d", rec.Code, http.StatusOK)
	}
	if svc.gotTrackID != "t1" {
		t.Errorf("trackId = %q; want %q", svc.gotTrackID, "t1")
	}
}

func TestPlaylistHandler_RemoveTrackNotMember(t *testing.T) {
	svc := &fakePlaylistService{err: apperr.New(apperr.KindNotMember, "track is not in this playlist")}
	handler := &PlaylistHandler{PlaylistService: svc}

	req := withURLParam(withURLParam(
		httptest.NewRequest(http.MethodDelete, "/api/playlists/p1/tracks/t9", nil), "id", "p1"), "trackId", "t9")
	rec := httptest.NewRecorder()

	handler.RemoveTrack(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d; want %d", rec.Code, http.StatusNotFound)
	}
	if !strings.Contains(rec.Body.String(), `"code":"NOT_FOUND"`) {
		t.Errorf("body %q missing NOT_FOUND code", rec.Body.String())
	}
}

func TestPlaylistHandler_Reorder(t *testing.T) {
	svc := &fakePlaylistService{playlist: emptyTestPlaylist()}
	handler := &PlaylistHandler{PlaylistService: svc}

	req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/playlists/p1/tracks/order",
		bytes.NewBufferString(`{"order":["t2","t1"]}`)), "id", "p1")
	rec := httptest.NewRecorder()

	handler.Reorder(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
	}
	if len(svc.gotOrder) != 2 || svc.gotOrder[0] != "t2" {
		t.Errorf("order = %v; want [t2 t1]", svc.gotOrder)
	}
}

func TestPlaylistHandler_ToggleFollow(t *testing.T) {
	svc := &fakePlaylistService{follow: service.FollowState{IsFollowing: true, FollowersCount: 8}}
	handler := &PlaylistHandler{PlaylistService: svc}

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/api/playlists/p1/follow", nil), "id", "p1")
	rec := httptest.NewRecorder()

	handler.ToggleFollow(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `"isFollowing":true`) ||
		!strings.Contains(rec.Body.String(), `"followersCount":8`) {
		t.Errorf("body %q missing follow state", rec.Body.String())
	}
}

func TestPlaylistHandler_DuplicateEmptyBody(t *testing.T) {
	svc := &fakePlaylistService{playlist: emptyTestPlaylist()}
	handler := &PlaylistHandler{PlaylistService: svc}

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/api/playlists/p1/duplicate", nil), "id", "p1")
	rec := httptest.NewRecorder()

	handler.Duplicate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d; want %d", rec.Code, http.StatusCreated)
	}
	if svc.gotPublic != nil {
		t.Errorf("isPublic = %v; want nil for an empty body", *svc.gotPublic)
	}
}

func TestPlaylistHandler_DuplicateWithVisibility(t *testing.T) {
	svc := &fakePlaylistService{playlist: emptyTestPlaylist()}
	handler := &PlaylistHandler{PlaylistService: svc}

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/api/playlists/p1/duplicate",
		bytes.NewBufferString(`{"isPublic":true}`)), "id", "p1")
	rec := httptest.NewRecorder()

	handler.Duplicate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusCreated)
	}
	if svc.gotPublic == nil || !*svc.gotPublic {
		t.Error("isPublic = nil or false; want true")
	}
}

func TestPlaylistHandler_BatchForwardsIDs(t *testing.T) {
	svc := &fakePlaylistService{playlist: emptyTestPlaylist()}
	handler := &PlaylistHandler{PlaylistService: svc}

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/api/playlists/p1/tracks/batch",
		bytes.NewBufferString(`{"trackIds":["t1","t2"]}`)), "id", "p1")
	rec := httptest.NewRecorder()

	handler.AddTracksBatch(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
	}
	if len(svc.gotTrackIDs) != 2 {
		t.Errorf("trackIds = %v; want [t1 t2]", svc.gotTrackIDs)
	}
}
