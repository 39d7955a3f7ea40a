package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aakash-sharma-github/dollop-music-backend/internal/apperr"
	"github.com/aakash-sharma-github/dollop-music-backend/internal/models"
)

// PostgresUserRepository implements user persistence against PostgreSQL.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the
// given database connection.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

const userColumns = `id, username, email, password_hash, refresh_token, preferences, created_at, updated_at`

// Create inserts a new user. A duplicate username or email surfaces as a
// Conflict error.
func (r *PostgresUserRepository) Create(ctx context.Context, u *models.User) error {
	prefs, err := marshalPreferences(u.Preferences)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, refresh_token, preferences, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, u.ID, u.Username, u.Email, u.PasswordHash, u.RefreshToken, prefs, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if conflict := asConflict(err); conflict != nil {
			return conflict
		}
		return wrapDB("create user", err)
	}
	return nil
}

// GetByID fetches a user by ID.
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByEmail fetches a user by lower-cased email.
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// Update persists profile changes (username, email, preferences).
func (r *PostgresUserRepository) Update(ctx context.Context, u *models.User) error {
	prefs, err := marshalPreferences(u.Preferences)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users SET username = $1, email = $2, preferences = $3, updated_at = $4 WHERE id = $5
	`, u.Username, u.Email, prefs, u.UpdatedAt, u.ID)
	if err != nil {
		if conflict := asConflict(err); conflict != nil {
			return conflict
		}
		return wrapDB("update user", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return apperr.New(apperr.KindNotFound, "user not found")
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2
	`, hash, id)
	if err != nil {
		return wrapDB("update password", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return apperr.New(apperr.KindNotFound, "user not found")
	}
	return nil
}

// SetRefreshToken stores the single active refresh token for the user. An
// empty token revokes it (logout).
func (r *PostgresUserRepository) SetRefreshToken(ctx context.Context, id, refreshToken string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users SET refresh_token = $1, updated_at = now() WHERE id = $2
	`, refreshToken, id)
	if err != nil {
		return wrapDB("set refresh token", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return apperr.New(apperr.KindNotFound, "user not found")
	}
	return nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var prefs []byte
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.RefreshToken, &prefs, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.KindNotFound, "user not found")
	}
	if err != nil {
		return nil, wrapDB("scan user", err)
	}
	if len(prefs) > 0 {
		if err := json.Unmarshal(prefs, &u.Preferences); err != nil {
			return nil, fmt.Errorf("unmarshal preferences: %w", err)
		}
	}
	return &u, nil
}

func marshalPreferences(prefs map[string]any) (any, error) {
	if prefs == nil {
		return nil, nil
	}
	return json.Marshal(prefs)
}
