// Package repository provides PostgreSQL persistence for users, tracks and
// playlists. All mutations that must not lose concurrent updates (play counts,
// playlist membership, follower toggling) are single SQL statements or single
// transactions; nothing is read-modify-written at the application layer.
package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/aakash-sharma-github/dollop-music-backend/internal/apperr"
)

// wrapDB classifies a driver failure. Deadline and connection errors surface
// as Unavailable so callers know a retry is safe; everything else is wrapped
// with the failing operation's name.
func wrapDB(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) {
		return apperr.Wrap(apperr.KindUnavailable, "datastore is unavailable", fmt.Errorf("%s: %w", op, err))
	}
	return fmt.Errorf("%s: %w", op, err)
}

// asConflict translates a unique-constraint violation into a Conflict error,
// or returns nil when err is something else.
func asConflict(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return nil
	}
	switch {
	case strings.Contains(pqErr.Constraint, "username"):
		return apperr.New(apperr.KindConflict, "username is already taken")
	case strings.Contains(pqErr.Constraint, "email"):
		return apperr.New(apperr.KindConflict, "email is already registered")
	default:
		return apperr.New(apperr.KindConflict, "resource already exists")
	}
}
