package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/aakash-sharma-github/dollop-music-backend/internal/apperr"
	"github.com/aakash-sharma-github/dollop-music-backend/internal/models"
)

func setupUserMock(t *testing.T) (*PostgresUserRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresUserRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "username", "email", "password_hash", "refresh_token", "preferences", "created_at", "updated_at",
	})
}

func TestUserCreate(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectExec("INSERT INTO users").
		WithArgs("u1", "alice", "alice@example.com", "hash", "", nil, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &models.User{
		ID:           "u1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	err := repo.Create(context.Background(), &models.User{ID: "u1", Username: "alice", Email: "alice@example.com"})
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Errorf("Create kind = %v; want conflict", apperr.KindOf(err))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUserGetByEmail(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT `+userColumns+` FROM users WHERE email = $1`)).
		WithArgs("alice@example.com").
		WillReturnRows(userRows().AddRow(
			"u1", "alice", "alice@example.com", "hash", "", []byte(`{"theme":"dark"}`), now, now,
		))

	user, err := repo.GetByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "u1" {
		t.Errorf("user id = %q; want %q", user.ID, "u1")
	}
	if user.Preferences["theme"] != "dark" {
		t.Errorf("preferences = %v; want theme=dark", user.Preferences)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUserGetByID_NotFound(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT `+userColumns+` FROM users WHERE id = $1`)).
		WithArgs("missing").
		WillReturnRows(userRows())

	_, err := repo.GetByID(context.Background(), "missing")
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("GetByID kind = %v; want not found", apperr.KindOf(err))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUserSetRefreshToken_Revoke(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectExec("UPDATE users SET refresh_token").
		WithArgs("", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetRefreshToken(context.Background(), "u1", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUserUpdatePassword_NotFound(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs("newhash", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePassword(context.Background(), "missing", "newhash")
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("UpdatePassword kind = %v; want not found", apperr.KindOf(err))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
