package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aakash-sharma-github/dollop-music-backend/internal/apperr"
	"github.com/aakash-sharma-github/dollop-music-backend/internal/models"
	"github.com/aakash-sharma-github/dollop-music-backend/internal/service"
)

// fakeAuthService implements AuthService for testing.
type fakeAuthService struct {
	user        *models.User
	tokens      service.TokenPair
	registerErr error
	loginErr    error
	refreshErr  error
	logoutErr   error
}

func (f *fakeAuthService) Register(ctx context.Context, username, email, password string) (*models.User, service.TokenPair, error) {
	return f.user, f.tokens, f.registerErr
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (*models.User, service.TokenPair, error) {
	return f.user, f.tokens, f.loginErr
}

func (f *fakeAuthService) Refresh(ctx context.Context, refreshToken string) (service.TokenPair, error) {
	return f.tokens, f.refreshErr
}

func (f *fakeAuthService) Logout(ctx context.Context, userID string) error {
	return f.logoutErr
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		service        *fakeAuthService
		expectedCode   int
		expectedSubstr string
	}{
		{
			name: "created",
			body: `{"username":"alice","email":"alice@example.com","password":"hunter2-long"}`,
			service: &fakeAuthService{
				user:   &models.User{ID: "u1", Username: "alice", Email: "alice@example.com"},
				tokens: service.TokenPair{AccessToken: "acc", RefreshToken: "ref"},
			},
			expectedCode:   http.StatusCreated,
			expectedSubstr: `"accessToken":"acc"`,
		},
		{
			name:           "invalid JSON",
			body:           `not a json`,
			service:        &fakeAuthService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "invalid request body",
		},
		{
			name:           "duplicate username",
			body:           `{"username":"alice","email":"alice@example.com","password":"hunter2-long"}`,
			service:        &fakeAuthService{registerErr: apperr.New(apperr.KindConflict, "username is already taken")},
			expectedCode:   http.StatusConflict,
			expectedSubstr: "username is already taken",
		},
		{
			name:           "validation error",
			body:           `{"username":"alice","email":"bad","password":"hunter2-long"}`,
			service:        &fakeAuthService{registerErr: apperr.New(apperr.KindValidation, "email is invalid")},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: `"code":"VALIDATION_ERROR"`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := &AuthHandler{AuthService: tc.service}
			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString(tc.body))
			rec := httptest.NewRecorder()

			handler.Register(rec, req)

			if rec.Code != tc.expectedCode {
				t.Errorf("status = %d; want %d", rec.Code, tc.expectedCode)
			}
			if !strings.Contains(rec.Body.String(), tc.expectedSubstr) {
				t.Errorf("body %q does not contain %q", rec.Body.String(), tc.expectedSubstr)
			}
		})
	}
}

func TestAuthHandler_RegisterNeverLeaksPasswordHash(t *testing.T) {
	handler := &AuthHandler{AuthService: &fakeAuthService{
		user:   &models.User{ID: "u1", Username: "alice", PasswordHash: "secret-hash"},
		tokens: service.TokenPair{AccessToken: "acc", RefreshToken: "ref"},
	}}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		bytes.NewBufferString(`{"username":"alice","email":"alice@example.com","password":"hunter2-long"}`))
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if strings.Contains(rec.Body.String(), "secret-hash") {
		t.Error("response body must never contain the password hash")
	}
}

func TestAuthHandler_Login(t *testing.T) {
	handler := &AuthHandler{AuthService: &fakeAuthService{
		loginErr: apperr.New(apperr.KindInvalidCredentials, "invalid email or password"),
	}}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		bytes.NewBufferString(`{"email":"alice@example.com","password":"wrong"}`))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d; want %d", rec.Code, http.StatusUnauthorized)
	}

	var body struct {
		Status string `json:"status"`
		Code   string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Status != "error" || body.Code != "INVALID_CREDENTIALS" {
		t.Errorf("body = %+v; want error with INVALID_CREDENTIALS", body)
	}
}

func TestAuthHandler_RefreshRequiresToken(t *testing.T) {
	handler := &AuthHandler{AuthService: &fakeAuthService{}}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()

	handler.Refresh(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestAuthHandler_RefreshInvalidToken(t *testing.T) {
	handler := &AuthHandler{AuthService: &fakeAuthService{
		refreshErr: apperr.New(apperr.KindInvalidToken, "refresh token is no longer valid"),
	}}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh",
		bytes.NewBufferString(`{"refreshToken":"stale"}`))
	rec := httptest.NewRecorder()

	handler.Refresh(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d; want %d", rec.Code, http.StatusUnauthorized)
	}
}
