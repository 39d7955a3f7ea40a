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

// PostgresPlaylistRepository implements playlist persistence against
// PostgreSQL. Membership lives in playlist_tracks with an explicit position
// column so insertion order survives; followers live in playlist_followers.
type PostgresPlaylistRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresPlaylistRepository creates a new PostgresPlaylistRepository with
// the given database connection.
func NewPostgresPlaylistRepository(db *sql.DB) *PostgresPlaylistRepository {
	return &PostgresPlaylistRepository{DB: db}
}

const playlistColumns = `p.id, p.name, p.description, p.cover_url, p.is_public, p.owner_id,
	(SELECT COUNT(*) FROM playlist_followers f WHERE f.playlist_id = p.id),
	p.created_at, p.updated_at`

// playlistQuery describes the queryable surface of the playlists table.
var playlistQuery = query.Definition{
	SearchColumns: []string{"name", "description"},
	FilterColumns: map[string]string{
		"ownerId": "owner_id",
	},
	SortColumns: map[string]string{
		"createdAt": "created_at",
		"name":      "name",
	},
}

// Create inserts a playlist and, when TrackIDs is non-empty (duplication),
// its memberships in the same transaction.
func (r *PostgresPlaylistRepository) Create(ctx context.Context, p *models.Playlist) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return wrapDB("begin tx", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO playlists (id, name, description, cover_url, is_public, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.ID, p.Name, p.Description, p.CoverURL, p.IsPublic, p.OwnerID, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return wrapDB("create playlist", err)
	}

	for i, trackID := range p.TrackIDs {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO playlist_tracks (playlist_id, track_id, position) VALUES ($1, $2, $3)
		`, p.ID, trackID, i)
		if err != nil {
			return wrapDB("create playlist membership", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return wrapDB("commit", err)
	}
	return nil
}

// GetByID fetches a playlist with its ordered track sequence and follower
// count. Membership rows whose track no longer exists are skipped, so a
// reference left dangling by a crash never surfaces to readers.
func (r *PostgresPlaylistRepository) GetByID(ctx context.Context, id string) (*models.Playlist, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+playlistColumns+` FROM playlists p WHERE p.id = $1`, id)
	p, err := scanPlaylist(row)
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT pt.track_id
		  FROM playlist_tracks pt
		  JOIN tracks t ON t.id = pt.track_id
		 WHERE pt.playlist_id = $1
		 ORDER BY pt.position
	`, id)
	if err != nil {
		return nil, wrapDB("load playlist tracks", err)
	}
	defer rows.Close()

	for rows.Next() {
		var trackID string
		if err := rows.Scan(&trackID); err != nil {
			return nil, wrapDB("load playlist tracks", err)
		}
		p.TrackIDs = append(p.TrackIDs, trackID)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDB("load playlist tracks", err)
	}
	return p, nil
}

// List returns one page of the candidate set: public playlists plus the
// viewer's own, narrowed by the given params.
func (r *PostgresPlaylistRepository) List(ctx context.Context, viewerID string, p query.Params) ([]models.Playlist, query.PageInfo, error) {
	b := query.NewBuilder()
	if viewerID == "" {
		b.And("is_public = TRUE")
	} else {
		b.And("(is_public = TRUE OR owner_id = ?)", viewerID)
	}
	return r.list(ctx, b, p)
}

// ListFollowed returns one page of the public playlists the viewer follows.
func (r *PostgresPlaylistRepository) ListFollowed(ctx context.Context, viewerID string, p query.Params) ([]models.Playlist, query.PageInfo, error) {
	b := query.NewBuilder()
	b.And("is_public = TRUE")
	b.And("EXISTS (SELECT 1 FROM playlist_followers f WHERE f.playlist_id = p.id AND f.user_id = ?)", viewerID)
	return r.list(ctx, b, p)
}

func (r *PostgresPlaylistRepository) list(ctx context.Context, b *query.Builder, p query.Params) ([]models.Playlist, query.PageInfo, error) {
	if err := p.Validate(playlistQuery); err != nil {
		return nil, query.PageInfo{}, err
	}
	b.Apply(playlistQuery, p)

	var total int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM playlists p `+b.Where(), b.Args()...).Scan(&total)
	if err != nil {
		return nil, query.PageInfo{}, wrapDB("count playlists", err)
	}

	limitClause, args := b.Paginate(p)
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+playlistColumns+` FROM playlists p `+b.Where()+` `+b.OrderBy(playlistQuery, p)+` `+limitClause,
		args...)
	if err != nil {
		return nil, query.PageInfo{}, wrapDB("list playlists", err)
	}
	defer rows.Close()

	playlists := make([]models.Playlist, 0, p.Limit)
	for rows.Next() {
		var pl models.Playlist
		if err := scanPlaylistRow(rows, &pl); err != nil {
			return nil, query.PageInfo{}, err
		}
		playlists = append(playlists, pl)
	}
	if err := rows.Err(); err != nil {
		return nil, query.PageInfo{}, wrapDB("list playlists", err)
	}

	if err := r.attachTrackIDs(ctx, playlists); err != nil {
		return nil, query.PageInfo{}, err
	}
	return playlists, query.NewPageInfo(p.Page, p.Limit, total), nil
}

// attachTrackIDs loads the ordered memberships for a page of playlists in one
// query instead of one per row.
func (r *PostgresPlaylistRepository) attachTrackIDs(ctx context.Context, playlists []models.Playlist) error {
	if len(playlists) == 0 {
		return nil
	}
	ids := make([]string, len(playlists))
	index := make(map[string]int, len(playlists))
	for i := range playlists {
		ids[i] = playlists[i].ID
		index[playlists[i].ID] = i
		playlists[i].TrackIDs = []string{}
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT pt.playlist_id, pt.track_id
		  FROM playlist_tracks pt
		  JOIN tracks t ON t.id = pt.track_id
		 WHERE pt.playlist_id = ANY($1)
		 ORDER BY pt.playlist_id, pt.position
	`, pq.Array(ids))
	if err != nil {
		return wrapDB("load playlist tracks", err)
	}
	defer rows.Close()

	for rows.Next() {
		var playlistID, trackID string
		if err := rows.Scan(&playlistID, &trackID); err != nil {
			return wrapDB("load playlist tracks", err)
		}
		i := index[playlistID]
		playlists[i].TrackIDs = append(playlists[i].TrackIDs, trackID)
	}
	if err := rows.Err(); err != nil {
		return wrapDB("load playlist tracks", err)
	}
	return nil
}

// Update persists the mutable playlist metadata.
func (r *PostgresPlaylistRepository) Update(ctx context.Context, p *models.Playlist) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE playlists SET name = $1, description = $2, cover_url = $3, is_public = $4, updated_at = $5
		 WHERE id = $6
	`, p.Name, p.Description, p.CoverURL, p.IsPublic, p.UpdatedAt, p.ID)
	if err != nil {
		return wrapDB("update playlist", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return apperr.New(apperr.KindNotFound, "playlist not found")
	}
	return nil
}

// Delete removes the playlist; memberships and followers cascade with it.
func (r *PostgresPlaylistRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM playlists WHERE id = $1`, id)
	if err != nil {
		return wrapDB("delete playlist", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return apperr.New(apperr.KindNotFound, "playlist not found")
	}
	return nil
}

// AddTrack appends a track to the playlist's sequence. The insert is a single
// statement so concurrent adds cannot produce duplicates, and re-adding an
// existing member is a no-op.
func (r *PostgresPlaylistRepository) AddTrack(ctx context.Context, playlistID, trackID string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO playlist_tracks (playlist_id, track_id, position)
		SELECT $1, $2, COALESCE(MAX(position) + 1, 0)
		  FROM playlist_tracks WHERE playlist_id = $1
		ON CONFLICT (playlist_id, track_id) DO NOTHING
	`, playlistID, trackID)
	if err != nil {
		return wrapDB("add playlist track", err)
	}
	return nil
}

// AddTracks appends several tracks in one transaction, preserving the given
// order and skipping ids already present.
func (r *PostgresPlaylistRepository) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return wrapDB("begin tx", err)
	}
	defer tx.Rollback()

	for _, trackID := range trackIDs {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO playlist_tracks (playlist_id, track_id, position)
			SELECT $1, $2, COALESCE(MAX(position) + 1, 0)
			  FROM playlist_tracks WHERE playlist_id = $1
			ON CONFLICT (playlist_id, track_id) DO NOTHING
		`, playlistID, trackID)
		if err != nil {
			return wrapDB("add playlist track", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return wrapDB("commit", err)
	}
	return nil
}

// RemoveTrack drops a track from the playlist's sequence. Removing a
// non-member is a NotMember error, distinct from the track being absent
// globally.
func (r *PostgresPlaylistRepository) RemoveTrack(ctx context.Context, playlistID, trackID string) error {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM playlist_tracks WHERE playlist_id = $1 AND track_id = $2
	`, playlistID, trackID)
	if err != nil {
		return wrapDB("remove playlist track", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return apperr.New(apperr.KindNotMember, "track is not in this playlist")
	}
	return nil
}

// Reorder replaces the stored order with the given sequence in one
// transaction. The service validates the permutation first; a row that fails
// to update here means the membership changed concurrently.
func (r *PostgresPlaylistRepository) Reorder(ctx context.Context, playlistID string, order []string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return wrapDB("begin tx", err)
	}
	defer tx.Rollback()

	for i, trackID := range order {
		res, err := tx.ExecContext(ctx, `
			UPDATE playlist_tracks SET position = $1 WHERE playlist_id = $2 AND track_id = $3
		`, i, playlistID, trackID)
		if err != nil {
			return wrapDB("reorder playlist", err)
		}
		if rows, _ := res.RowsAffected(); rows == 0 {
			return apperr.New(apperr.KindValidation, "new order does not match playlist membership")
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE playlists SET updated_at = now() WHERE id = $1
	`, playlistID)
	if err != nil {
		return wrapDB("reorder playlist", err)
	}

	if err := tx.Commit(); err != nil {
		return wrapDB("commit", err)
	}
	return nil
}

// TrackIDs returns the raw stored membership in order, without resolving the
// tracks. Reorder validation runs against this, not the display view.
func (r *PostgresPlaylistRepository) TrackIDs(ctx context.Context, playlistID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT track_id FROM playlist_tracks WHERE playlist_id = $1 ORDER BY position
	`, playlistID)
	if err != nil {
		return nil, wrapDB("playlist track ids", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, wrapDB("playlist track ids", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDB("playlist track ids", err)
	}
	return ids, nil
}

// ToggleFollow flips the viewer's membership in the follower set inside one
// transaction and returns the resulting state and follower count.
func (r *PostgresPlaylistRepository) ToggleFollow(ctx context.Context, playlistID, userID string) (bool, int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, 0, wrapDB("begin tx", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		DELETE FROM playlist_followers WHERE playlist_id = $1 AND user_id = $2
	`, playlistID, userID)
	if err != nil {
		return false, 0, wrapDB("toggle follow", err)
	}
	removed, _ := res.RowsAffected()

	following := false
	if removed == 0 {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO playlist_followers (playlist_id, user_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, playlistID, userID)
		if err != nil {
			return false, 0, wrapDB("toggle follow", err)
		}
		following = true
	}

	var count int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM playlist_followers WHERE playlist_id = $1
	`, playlistID).Scan(&count)
	if err != nil {
		return false, 0, wrapDB("toggle follow", err)
	}

	if err := tx.Commit(); err != nil {
		return false, 0, wrapDB("commit", err)
	}
	return following, count, nil
}

// PurgeTrack removes a track from every playlist's sequence. Relative order
// of the remaining entries is untouched; positions keep their gaps.
func (r *PostgresPlaylistRepository) PurgeTrack(ctx context.Context, trackID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM playlist_tracks WHERE track_id = $1`, trackID)
	if err != nil {
		return wrapDB("purge track", err)
	}
	return nil
}

func scanPlaylist(row *sql.Row) (*models.Playlist, error) {
	var p models.Playlist
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CoverURL, &p.IsPublic, &p.OwnerID,
		&p.FollowersCount, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.KindNotFound, "playlist not found")
	}
	if err != nil {
		return nil, wrapDB("scan playlist", err)
	}
	p.TrackIDs = []string{}
	return &p, nil
}

func scanPlaylistRow(rows *sql.Rows, p *models.Playlist) error {
	err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CoverURL, &p.IsPublic, &p.OwnerID,
		&p.FollowersCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return wrapDB("scan playlist", err)
	}
	return nil
}
