package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/aakash-sharma-github/dollop-music-backend/internal/apperr"
	"github.com/aakash-sharma-github/dollop-music-backend/internal/models"
	"github.com/aakash-sharma-github/dollop-music-backend/internal/query"
)

// PostgresTrackRepository implements track persistence against PostgreSQL.
type PostgresTrackRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresTrackRepository creates a new PostgresTrackRepository with the
// given database connection.
func NewPostgresTrackRepository(db *sql.DB) *PostgresTrackRepository {
	return &PostgresTrackRepository{DB: db}
}

const trackColumns = `id, title, artist, duration, file_url, cover_url, genre, tags, play_count, is_public, owner_id, created_at, updated_at`

// trackQuery describes the queryable surface of the tracks table.
var trackQuery = query.Definition{
	SearchColumns: []string{"title", "artist", "array_to_string(tags, ' ')"},
	FilterColumns: map[string]string{
		"artist": "artist",
		"genre":  "genre",
	},
	SortColumns: map[string]string{
		"createdAt": "created_at",
		"title":     "title",
		"artist":    "artist",
		"duration":  "duration",
		"playCount": "play_count",
	},
	TagsColumn: "tags",
}

// Create inserts a new track.
func (r *PostgresTrackRepository) Create(ctx context.Context, t *models.Track) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO tracks (id, title, artist, duration, file_url, cover_url, genre, tags, play_count, is_public, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, t.ID, t.Title, t.Artist, t.Duration, t.FileURL, t.CoverURL, t.Genre, pq.Array(t.Tags),
		t.PlayCount, t.IsPublic, t.OwnerID, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return wrapDB("create track", err)
	}
	return nil
}

// GetByID fetches a track by ID regardless of visibility; the service layer
// decides who may see it.
func (r *PostgresTrackRepository) GetByID(ctx context.Context, id string) (*models.Track, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+trackColumns+` FROM tracks WHERE id = $1`, id)
	return scanTrack(row)
}

// List returns one page of the candidate set: public tracks plus the viewer's
// own, narrowed by the given params. The total is computed from the same
// filtered set as the page contents.
func (r *PostgresTrackRepository) List(ctx context.Context, viewerID string, p query.Params) ([]models.Track, query.PageInfo, error) {
	if err := p.Validate(trackQuery); err != nil {
		return nil, query.PageInfo{}, err
	}

	b := query.NewBuilder()
	if viewerID == "" {
		b.And("is_public = TRUE")
	} else {
		b.And("(is_public = TRUE OR owner_id = ?)", viewerID)
	}
	b.Apply(trackQuery, p)

	var total int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM tracks `+b.Where(), b.Args()...).Scan(&total)
	if err != nil {
		return nil, query.PageInfo{}, wrapDB("count tracks", err)
	}

	limitClause, args := b.Paginate(p)
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+trackColumns+` FROM tracks `+b.Where()+` `+b.OrderBy(trackQuery, p)+` `+limitClause,
		args...)
	if err != nil {
		return nil, query.PageInfo{}, wrapDB("list tracks", err)
	}
	defer rows.Close()

	tracks := make([]models.Track, 0, p.Limit)
	for rows.Next() {
		var t models.Track
		if err := scanTrackRow(rows, &t); err != nil {
			return nil, query.PageInfo{}, err
		}
		tracks = append(tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, query.PageInfo{}, wrapDB("list tracks", err)
	}
	return tracks, query.NewPageInfo(p.Page, p.Limit, total), nil
}

// Update persists the mutable track fields. Ownership is checked by the
// service layer before calling.
func (r *PostgresTrackRepository) Update(ctx context.Context, t *models.Track) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE tracks
		   SET title = $1, artist = $2, duration = $3, file_url = $4, cover_url = $5,
		       genre = $6, tags = $7, is_public = $8, updated_at = $9
		 WHERE id = $10
	`, t.Title, t.Artist, t.Duration, t.FileURL, t.CoverURL, t.Genre, pq.Array(t.Tags),
		t.IsPublic, t.UpdatedAt, t.ID)
	if err != nil {
		return wrapDB("update track", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return apperr.New(apperr.KindNotFound, "track not found")
	}
	return nil
}

// Delete removes the track row. Playlist memberships are purged by the
// playlist engine before this runs, so a crash in between never leaves a
// dangling reference behind.
func (r *PostgresTrackRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM tracks WHERE id = $1`, id)
	if err != nil {
		return wrapDB("delete track", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return apperr.New(apperr.KindNotFound, "track not found")
	}
	return nil
}

// IncrementPlayCount bumps the play counter atomically and returns the new
// value. Concurrent increments never lose updates.
func (r *PostgresTrackRepository) IncrementPlayCount(ctx context.Context, id string) (int64, error) {
	var count int64
	err := r.DB.QueryRowContext(ctx, `
		UPDATE tracks SET play_count = play_count + 1 WHERE id = $1 RETURNING play_count
	`, id).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperr.New(apperr.KindNotFound, "track not found")
	}
	if err != nil {
		return 0, wrapDB("increment play count", err)
	}
	return count, nil
}

// Exists reports whether a track with the given ID exists.
func (r *PostgresTrackRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM tracks WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, wrapDB("track exists", err)
	}
	return exists, nil
}

// ExistingIDs returns the subset of ids that reference existing tracks.
func (r *PostgresTrackRepository) ExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id FROM tracks WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, wrapDB("existing track ids", err)
	}
	defer rows.Close()

	var found []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, wrapDB("existing track ids", err)
		}
		found = append(found, id)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDB("existing track ids", err)
	}
	return found, nil
}

func scanTrack(row *sql.Row) (*models.Track, error) {
	var t models.Track
	err := row.Scan(&t.ID, &t.Title, &t.Artist, &t.Duration, &t.FileURL, &t.CoverURL, &t.Genre,
		pq.Array(&t.Tags), &t.PlayCount, &t.IsPublic, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.KindNotFound, "track not found")
	}
	if err != nil {
		return nil, wrapDB("scan track", err)
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return &t, nil
}

func scanTrackRow(rows *sql.Rows, t *models.Track) error {
	err := rows.Scan(&t.ID, &t.Title, &t.Artist, &t.Duration, &t.FileURL, &t.CoverURL, &t.Genre,
		pq.Array(&t.Tags), &t.PlayCount, &t.IsPublic, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return wrapDB("scan track", err)
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return nil
}
