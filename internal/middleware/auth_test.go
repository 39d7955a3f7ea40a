package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aakash-sharma-github/dollop-music-backend/internal/apperr"
)

type fakeResolver struct {
	userID string
	err    error
}

func (f *fakeResolver) ParseAccess(raw string) (string, error) {
	return f.userID, f.err
}

func plainErrorWriter(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindUnauthorized:
		status = http.StatusUnauthorized
	}
	http.Error(w, err.Error(), status)
}

func echoUserHandler(t *testing.T, wantUser string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := GetUserIDFromContext(r.Context()); got != wantUser {
			t.Errorf("user in context = %q; want %q", got, wantUser)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	handler := RequireAuth(&fakeResolver{}, plainErrorWriter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without credentials")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d; want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	tests := []struct {
		name, header string
	}{
		{"wrong scheme", "Basic abc"},
		{"no token", "Bearer "},
		{"scheme only", "Bearer"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := RequireAuth(&fakeResolver{userID: "u1"}, plainErrorWriter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("handler must not run with a malformed header")
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", tc.header)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d; want %d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestRequireAuth_ValidToken(t *testing.T) {
	handler := RequireAuth(&fakeResolver{userID: "u1"}, plainErrorWriter)(echoUserHandler(t, "u1"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d; want %d", rec.Code, http.StatusOK)
	}
}

func TestOptionalAuth_NoHeaderIsAnonymous(t *testing.T) {
	handler := OptionalAuth(&fakeResolver{}, plainErrorWriter)(echoUserHandler(t, ""))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d; want %d", rec.Code, http.StatusOK)
	}
}

func TestOptionalAuth_InvalidTokenIsRejected(t *testing.T) {
	resolver := &fakeResolver{err: apperr.New(apperr.KindUnauthorized, "access token is invalid")}
	handler := OptionalAuth(resolver, plainErrorWriter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("an invalid token must not downgrade to anonymous")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d; want %d", rec.Code, http.StatusUnauthorized)
	}
}
