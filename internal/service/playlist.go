package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/aakash-sharma-github/dollop-music-backend/internal/apperr"
	"github.com/aakash-sharma-github/dollop-music-backend/internal/models"
	"github.com/aakash-sharma-github/dollop-music-backend/internal/query"
)

// PlaylistRepository defines the persistence operations required by the
// playlist engine.
type PlaylistRepository interface {
	Create(ctx context.Context, p *models.Playlist) error
	GetByID(ctx context.Context, id string) (*models.Playlist, error)
	List(ctx context.Context, viewerID string, p query.Params) ([]models.Playlist, query.PageInfo, error)
	ListFollowed(ctx context.Context, viewerID string, p query.Params) ([]models.Playlist, query.PageInfo, error)
	Update(ctx context.Context, p *models.Playlist) error
	Delete(ctx context.Context, id string) error
	AddTrack(ctx context.Context, playlistID, trackID string) error
	AddTracks(ctx context.Context, playlistID string, trackIDs []string) error
	RemoveTrack(ctx context.Context, playlistID, trackID string) error
	Reorder(ctx context.Context, playlistID string, order []string) error
	TrackIDs(ctx context.Context, playlistID string) ([]string, error)
	ToggleFollow(ctx context.Context, playlistID, userID string) (bool, int, error)
	PurgeTrack(ctx context.Context, trackID string) error
}

// TrackChecker is the track catalog contract the playlist engine uses to
// validate cross-references before accepting membership changes.
type TrackChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
	ExistingIDs(ctx context.Context, ids []string) ([]string, error)
}

// PlaylistAttrs carries the client-supplied fields for creating a playlist.
type PlaylistAttrs struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CoverURL    string `json:"coverUrl"`
	IsPublic    bool   `json:"isPublic"`
}

// PlaylistPatch carries the allow-listed mutable metadata fields.
type PlaylistPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	CoverURL    *string `json:"coverUrl"`
	IsPublic    *bool   `json:"isPublic"`
}

// FollowState is the outcome of a follow toggle.
type FollowState struct {
	IsFollowing    bool `json:"isFollowing"`
	FollowersCount int  `json:"followersCount"`
}

// PlaylistService implements the playlist collection engine: metadata CRUD
// with ownership and visibility rules, unique ordered membership, follower
// toggling and cascade cleanup of deleted tracks.
type PlaylistService struct {
	repo   PlaylistRepository
	tracks TrackChecker
}

// NewPlaylistService constructs a PlaylistService.
func NewPlaylistService(repo PlaylistRepository, tracks TrackChecker) *PlaylistService {
	return &PlaylistService{repo: repo, tracks: tracks}
}

// Create validates attrs and inserts an empty playlist owned by ownerID.
func (s *PlaylistService) Create(ctx context.Context, ownerID string, attrs PlaylistAttrs) (*models.Playlist, error) {
	now := time.Now().UTC()
	playlist := &models.Playlist{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(attrs.Name),
		Description: strings.TrimSpace(attrs.Description),
		CoverURL:    attrs.CoverURL,
		TrackIDs:    []string{},
		IsPublic:    attrs.IsPublic,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := validatePlaylist(playlist); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}

// Get returns a playlist if the viewer may see it. Followers of a playlist
// that went private stay recorded but get Forbidden until it is public again.
func (s *PlaylistService) Get(ctx context.Context, id, viewerID string) (*models.Playlist, error) {
	playlist, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !playlist.IsPublic && playlist.OwnerID != viewerID {
		return nil, apperr.New(apperr.KindForbidden, "you do not have access to this playlist")
	}
	return playlist, nil
}

// List returns one page of public playlists plus the viewer's own.
func (s *PlaylistService) List(ctx context.Context, viewerID string, p query.Params) ([]models.Playlist, query.PageInfo, error) {
	return s.repo.List(ctx, viewerID, p)
}

// ListFollowed returns one page of the public playlists the viewer follows.
func (s *PlaylistService) ListFollowed(ctx context.Context, viewerID string, p query.Params) ([]models.Playlist, query.PageInfo, error) {
	return s.repo.ListFollowed(ctx, viewerID, p)
}

// Update applies the metadata patch. Owner-only.
func (s *PlaylistService) Update(ctx context.Context, id, viewerID string, patch PlaylistPatch) (*models.Playlist, error) {
	playlist, err := s.ownedPlaylist(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		playlist.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		playlist.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.CoverURL != nil {
		playlist.CoverURL = *patch.CoverURL
	}
	if patch.IsPublic != nil {
		playlist.IsPublic = *patch.IsPublic
	}
	if err := validatePlaylist(playlist); err != nil {
		return nil, err
	}

	playlist.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}

// Delete removes an owner's playlist. Followers are embedded, so deletion
// leaves no back-references to clean elsewhere.
func (s *PlaylistService) Delete(ctx context.Context, id, viewerID string) error {
	if _, err := s.ownedPlaylist(ctx, id, viewerID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// AddTrack appends an existing track to the playlist. Owner-only and
// idempotent: re-adding a member leaves the sequence unchanged.
func (s *PlaylistService) AddTrack(ctx context.Context, playlistID, viewerID, trackID string) (*models.Playlist, error) {
	if _, err := s.ownedPlaylist(ctx, playlistID, viewerID); err != nil {
		return nil, err
	}
	exists, err := s.tracks.Exists(ctx, trackID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.New(apperr.KindNotFound, "track not found")
	}
	if err := s.repo.AddTrack(ctx, playlistID, trackID); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, playlistID)
}

// AddTracksBatch appends several tracks at once. Every id must reference an
// existing track before anything is written; a single bad id fails the whole
// batch with no partial mutation. Duplicates within the batch and ids already
// present are deduplicated against the final sequence.
func (s *PlaylistService) AddTracksBatch(ctx context.Context, playlistID, viewerID string, trackIDs []string) (*models.Playlist, error) {
	if _, err := s.ownedPlaylist(ctx, playlistID, viewerID); err != nil {
		return nil, err
	}
	if len(trackIDs) == 0 {
		return nil, apperr.New(apperr.KindValidation, "trackIds must not be empty")
	}

	deduped := make([]string, 0, len(trackIDs))
	seen := make(map[string]struct{}, len(trackIDs))
	for _, id := range trackIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		deduped = append(deduped, id)
	}

	existing, err := s.tracks.ExistingIDs(ctx, deduped)
	if err != nil {
		return nil, err
	}
	if len(existing) != len(deduped) {
		return nil, apperr.New(apperr.KindValidation, "one or more track ids do not reference an existing track")
	}

	if err := s.repo.AddTracks(ctx, playlistID, deduped); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, playlistID)
}

// RemoveTrack drops a member track from the playlist. Owner-only; removing a
// non-member fails, distinct internally from the track being absent globally.
func (s *PlaylistService) RemoveTrack(ctx context.Context, playlistID, viewerID, trackID string) (*models.Playlist, error) {
	if _, err := s.ownedPlaylist(ctx, playlistID, viewerID); err != nil {
		return nil, err
	}
	if err := s.repo.RemoveTrack(ctx, playlistID, trackID); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, playlistID)
}

// Reorder replaces the playlist's order with newOrder, which must be exactly
// a permutation of the current membership. Validation happens fully before
// any write.
func (s *PlaylistService) Reorder(ctx context.Context, playlistID, viewerID string, newOrder []string) (*models.Playlist, error) {
	if _, err := s.ownedPlaylist(ctx, playlistID, viewerID); err != nil {
		return nil, err
	}

	current, err := s.repo.TrackIDs(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if err := validatePermutation(current, newOrder); err != nil {
		return nil, err
	}

	if err := s.repo.Reorder(ctx, playlistID, newOrder); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, playlistID)
}

// ToggleFollow flips the viewer's follow state on a public playlist. The
// owner cannot follow their own playlist, and a private playlist is only
// visible to its owner, so every successful toggle is a non-owner on a
// public playlist.
func (s *PlaylistService) ToggleFollow(ctx context.Context, playlistID, viewerID string) (FollowState, error) {
	playlist, err := s.repo.GetByID(ctx, playlistID)
	if err != nil {
		return FollowState{}, err
	}
	if playlist.OwnerID == viewerID {
		return FollowState{}, apperr.New(apperr.KindValidation, "you cannot follow your own playlist")
	}
	if !playlist.IsPublic {
		return FollowState{}, apperr.New(apperr.KindForbidden, "you do not have access to this playlist")
	}

	following, count, err := s.repo.ToggleFollow(ctx, playlistID, viewerID)
	if err != nil {
		return FollowState{}, err
	}
	return FollowState{IsFollowing: following, FollowersCount: count}, nil
}

// PurgeTrack removes trackID from every playlist. Internal hook for the track
// catalog's delete path; not reachable through the HTTP surface.
func (s *PlaylistService) PurgeTrack(ctx context.Context, trackID string) error {
	return s.repo.PurgeTrack(ctx, trackID)
}

// Duplicate creates the viewer's own copy of a visible playlist: same track
// sequence, "Copy of " name prefix, private unless isPublic says otherwise,
// and an empty follower set.
func (s *PlaylistService) Duplicate(ctx context.Context, playlistID, viewerID string, isPublic *bool) (*models.Playlist, error) {
	src, err := s.Get(ctx, playlistID, viewerID)
	if err != nil {
		return nil, err
	}

	name := "Copy of " + src.Name
	if runes := []rune(name); len(runes) > 100 {
		name = string(runes[:100])
	}

	now := time.Now().UTC()
	clone := &models.Playlist{
		ID:          uuid.NewString(),
		Name:        name,
		Description: src.Description,
		CoverURL:    src.CoverURL,
		TrackIDs:    src.TrackIDs,
		IsPublic:    isPublic != nil && *isPublic,
		OwnerID:     viewerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, clone); err != nil {
		return nil, err
	}
	return clone, nil
}

// ownedPlaylist loads a playlist and enforces strict ownership for mutation.
func (s *PlaylistService) ownedPlaylist(ctx context.Context, id, viewerID string) (*models.Playlist, error) {
	playlist, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if playlist.OwnerID != viewerID {
		return nil, apperr.New(apperr.KindForbidden, "only the owner may modify this playlist")
	}
	return playlist, nil
}

// validatePermutation checks that next is exactly a permutation of current:
// same length, no duplicates, no foreign ids.
func validatePermutation(current, next []string) error {
	if len(next) != len(current) {
		return apperr.New(apperr.KindValidation, "new order must contain every playlist track exactly once")
	}
	members := make(map[string]struct{}, len(current))
	for _, id := range current {
		members[id] = struct{}{}
	}
	seen := make(map[string]struct{}, len(next))
	for _, id := range next {
		if _, ok := members[id]; !ok {
			return apperr.New(apperr.KindValidation, "new order contains a track that is not in the playlist")
		}
		if _, ok := seen[id]; ok {
			return apperr.New(apperr.KindValidation, "new order must contain every playlist track exactly once")
		}
		seen[id] = struct{}{}
	}
	return nil
}

// validatePlaylist checks the data-model constraints on a fully merged
// playlist.
func validatePlaylist(p *models.Playlist) error {
	if p.Name == "" {
		return apperr.New(apperr.KindValidation, "name is required")
	}
	if utf8.RuneCountInString(p.Name) > 100 {
		return apperr.New(apperr.KindValidation, "name must be at most 100 characters")
	}
	if err := validateLen("description", p.Description, 500); err != nil {
		return err
	}
	if p.CoverURL != "" {
		if err := validateURL("coverUrl", p.CoverURL); err != nil {
			return err
		}
	}
	return nil
}
