// Package apperr defines the typed error taxonomy shared by services,
// repositories and HTTP handlers. Every failure the core can produce maps to
// exactly one Kind, which the transport layer translates to a status code.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error.
type Kind int

const (
	// KindInternal covers unclassified failures. Mapped to 500.
	KindInternal Kind = iota
	// KindValidation covers malformed or missing client input. Never retried.
	KindValidation
	// KindConflict covers uniqueness violations such as a taken username.
	KindConflict
	// KindInvalidCredentials covers failed email/password authentication.
	// Deliberately identical for unknown email and wrong password.
	KindInvalidCredentials
	// KindInvalidToken covers refresh tokens that fail verification or do not
	// match the one on record.
	KindInvalidToken
	// KindUnauthorized covers missing, malformed or expired bearer credentials.
	KindUnauthorized
	// KindForbidden covers authenticated callers that fail ownership or
	// visibility checks.
	KindForbidden
	// KindNotFound covers absent entities and dangling references.
	KindNotFound
	// KindNotMember covers a track id that is not a member of a playlist,
	// distinct from the track being absent globally. Surfaced as not found.
	KindNotMember
	// KindUnavailable covers transient datastore failures, safe to retry.
	KindUnavailable
	// KindRateLimited covers requests rejected by the rate limiter.
	KindRateLimited
)

// Error is an application error carrying a Kind and a display-safe message.
type Error struct {
	kind Kind
	msg  string
	err  error
}

// New creates an Error of the given kind. msg must be safe to log and display;
// it must never contain passwords, hashes or tokens.
func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// Newf creates an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given kind wrapping an underlying cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{kind: kind, msg: msg, err: err}
}

// Error returns the display-safe message.
func (e *Error) Error() string { return e.msg }

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.err }

// Kind returns the error's classification.
func (e *Error) Kind() Kind { return e.kind }

// Is reports whether target is an *Error of the same kind, so sentinel
// comparisons like errors.Is(err, apperr.New(apperr.KindNotFound, "")) work.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.kind == t.kind
}

// KindOf returns the Kind of err, or KindInternal if err carries no Kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
