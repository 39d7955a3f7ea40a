package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aakash-sharma-github/dollop-music-backend/internal/apperr"
	"github.com/aakash-sharma-github/dollop-music-backend/internal/models"
	"github.com/aakash-sharma-github/dollop-music-backend/internal/query"
)

// TrackRepository defines the persistence operations required by the track
// catalog.
type TrackRepository interface {
	Create(ctx context.Context, t *models.Track) error
	GetByID(ctx context.Context, id string) (*models.Track, error)
	List(ctx context.Context, viewerID string, p query.Params) ([]models.Track, query.PageInfo, error)
	Update(ctx context.Context, t *models.Track) error
	Delete(ctx context.Context, id string) error
	IncrementPlayCount(ctx context.Context, id string) (int64, error)
}

// MembershipPurger removes a deleted track's id from every playlist. The
// playlist engine implements it; the track catalog only knows the contract.
type MembershipPurger interface {
	PurgeTrack(ctx context.Context, trackID string) error
}

// TrackAttrs carries the client-supplied fields for creating a track. The
// owner is never part of the payload; it comes from the authenticated
// principal.
type TrackAttrs struct {
	Title    string   `json:"title"`
	Artist   string   `json:"artist"`
	Duration int      `json:"duration"`
	FileURL  string   `json:"fileUrl"`
	CoverURL string   `json:"coverUrl"`
	Genre    string   `json:"genre"`
	Tags     []string `json:"tags"`
	IsPublic bool     `json:"isPublic"`
}

// TrackPatch carries the allow-listed mutable fields for a track update.
// Nil fields are left untouched; unknown payload fields never reach here
// because the JSON decoder drops them.
type TrackPatch struct {
	Title    *string   `json:"title"`
	Artist   *string   `json:"artist"`
	Duration *int      `json:"duration"`
	FileURL  *string   `json:"fileUrl"`
	CoverURL *string   `json:"coverUrl"`
	Genre    *string   `json:"genre"`
	Tags     *[]string `json:"tags"`
	IsPublic *bool     `json:"isPublic"`
}

// TrackService implements the track catalog: creation, visibility-gated
// reads, owner-only mutation and play tracking.
type TrackService struct {
	repo        TrackRepository
	memberships MembershipPurger
}

// NewTrackService constructs a TrackService.
func NewTrackService(repo TrackRepository, memberships MembershipPurger) *TrackService {
	return &TrackService{repo: repo, memberships: memberships}
}

// Create validates attrs and inserts a track owned by ownerID.
func (s *TrackService) Create(ctx context.Context, ownerID string, attrs TrackAttrs) (*models.Track, error) {
	now := time.Now().UTC()
	track := &models.Track{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(attrs.Title),
		Artist:    strings.TrimSpace(attrs.Artist),
		Duration:  attrs.Duration,
		FileURL:   attrs.FileURL,
		CoverURL:  attrs.CoverURL,
		Genre:     strings.TrimSpace(attrs.Genre),
		Tags:      attrs.Tags,
		IsPublic:  attrs.IsPublic,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := validateTrack(track); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, track); err != nil {
		return nil, err
	}
	return track, nil
}

// Get returns a track if the viewer may see it: public tracks for everyone,
// private tracks only for their owner. Anonymous viewers pass an empty
// viewerID and never see private tracks.
func (s *TrackService) Get(ctx context.Context, id, viewerID string) (*models.Track, error) {
	track, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !track.IsPublic && track.OwnerID != viewerID {
		return nil, apperr.New(apperr.KindForbidden, "you do not have access to this track")
	}
	return track, nil
}

// List returns one page of public tracks plus the viewer's own.
func (s *TrackService) List(ctx context.Context, viewerID string, p query.Params) ([]models.Track, query.PageInfo, error) {
	return s.repo.List(ctx, viewerID, p)
}

// Update applies the patch to a track. Only the owner may mutate, public or
// not.
func (s *TrackService) Update(ctx context.Context, id, viewerID string, patch TrackPatch) (*models.Track, error) {
	track, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if track.OwnerID != viewerID {
		return nil, apperr.New(apperr.KindForbidden, "only the owner may modify this track")
	}

	if patch.Title != nil {
		track.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Artist != nil {
		track.Artist = strings.TrimSpace(*patch.Artist)
	}
	if patch.Duration != nil {
		track.Duration = *patch.Duration
	}
	if patch.FileURL != nil {
		track.FileURL = *patch.FileURL
	}
	if patch.CoverURL != nil {
		track.CoverURL = *patch.CoverURL
	}
	if patch.Genre != nil {
		track.Genre = strings.TrimSpace(*patch.Genre)
	}
	if patch.Tags != nil {
		track.Tags = *patch.Tags
	}
	if patch.IsPublic != nil {
		track.IsPublic = *patch.IsPublic
	}
	if err := validateTrack(track); err != nil {
		return nil, err
	}

	track.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, track); err != nil {
		return nil, err
	}
	return track, nil
}

// Delete removes an owner's track. Playlist memberships are purged first so
// a crash between the two steps leaves the track intact and retryable rather
// than leaving dangling references behind.
func (s *TrackService) Delete(ctx context.Context, id, viewerID string) error {
	track, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if track.OwnerID != viewerID {
		return apperr.New(apperr.KindForbidden, "only the owner may delete this track")
	}
	if err := s.memberships.PurgeTrack(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// IncrementPlay bumps the play counter. Play tracking carries no ownership
// check; anonymous callers count too.
func (s *TrackService) IncrementPlay(ctx context.Context, id string) (int64, error) {
	return s.repo.IncrementPlayCount(ctx, id)
}

// validateTrack checks the data-model constraints on a fully merged track and
// normalizes its tag set in place. It mutates nothing else, so a failed update
// leaves the stored row untouched.
func validateTrack(t *models.Track) error {
	if t.Title == "" {
		return apperr.New(apperr.KindValidation, "title is required")
	}
	if err := validateLen("title", t.Title, 100); err != nil {
		return err
	}
	if t.Artist == "" {
		return apperr.New(apperr.KindValidation, "artist is required")
	}
	if err := validateLen("artist", t.Artist, 100); err != nil {
		return err
	}
	if t.Duration < 0 {
		return apperr.New(apperr.KindValidation, "duration must be zero or more seconds")
	}
	if t.FileURL == "" {
		return apperr.New(apperr.KindValidation, "fileUrl is required")
	}
	if err := validateURL("fileUrl", t.FileURL); err != nil {
		return err
	}
	if t.CoverURL != "" {
		if err := validateURL("coverUrl", t.CoverURL); err != nil {
			return err
		}
	}
	if err := validateLen("genre", t.Genre, 50); err != nil {
		return err
	}
	tags, err := normalizeTags(t.Tags)
	if err != nil {
		return err
	}
	t.Tags = tags
	return nil
}
