// Package middleware provides HTTP middlewares for authentication, request
// logging and rate limiting.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/aakash-sharma-github/dollop-music-backend/internal/apperr"
)

type ctxKey string

const userKey ctxKey = "user"

// TokenResolver turns a bearer credential into a user ID. Parse failures come
// back as typed Unauthorized errors; the middleware never inspects the token
// wire format itself.
type TokenResolver interface {
	ParseAccess(raw string) (string, error)
}

// ErrorWriter renders an application error as the service's response
// envelope. Injected by the handler package so the middleware stays free of
// encoding details.
type ErrorWriter func(w http.ResponseWriter, err error)

// RequireAuth enforces a valid bearer token and stores the resolved user ID
// in the request context.
func RequireAuth(resolver TokenResolver, writeErr ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := bearerToken(r)
			if err != nil {
				writeErr(w, err)
				return
			}
			userID, err := resolver.ParseAccess(raw)
			if err != nil {
				writeErr(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, userID)))
		})
	}
}

// OptionalAuth resolves a bearer token when one is present. Requests without
// credentials proceed anonymously; a token that is present but invalid is
// still rejected, never silently downgraded to anonymous.
func OptionalAuth(resolver TokenResolver, writeErr ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			raw, err := bearerToken(r)
			if err != nil {
				writeErr(w, err)
				return
			}
			userID, err := resolver.ParseAccess(raw)
			if err != nil {
				writeErr(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, userID)))
		})
	}
}

// GetUserIDFromContext extracts the authenticated user ID from the request
// context. Returns an empty string for anonymous requests.
func GetUserIDFromContext(ctx context.Context) string {
	val := ctx.Value(userKey)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}

// bearerToken extracts the credential from the Authorization header,
// distinguishing a missing header from a malformed one.
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", apperr.New(apperr.KindUnauthorized, "authorization is required")
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", apperr.New(apperr.KindUnauthorized, "authorization header is malformed")
	}
	return strings.TrimSpace(token), nil
}
