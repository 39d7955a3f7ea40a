// Package token issues and verifies the signed access and refresh credentials
// used to authenticate requests. Access and refresh tokens are HS256 JWTs with
// independent secrets and lifetimes; the subject claim carries the user ID.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/aakash-sharma-github/dollop-music-backend/internal/apperr"
)

// Manager signs and parses access and refresh tokens.
type Manager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewManager constructs a Manager. The two secrets must differ so a refresh
// token can never pass as an access token.
func NewManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) (*Manager, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("token secrets must not be empty")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}
	return &Manager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}, nil
}

// IssueAccess returns a signed access token for the given user.
func (m *Manager) IssueAccess(userID string) (string, error) {
	return m.issue(userID, m.accessSecret, m.accessTTL)
}

// IssueRefresh returns a signed refresh token for the given user.
func (m *Manager) IssueRefresh(userID string) (string, error) {
	return m.issue(userID, m.refreshSecret, m.refreshTTL)
}

func (m *Manager) issue(userID string, secret []byte, ttl time.Duration) (string, error) {
	now := m.now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseAccess verifies an access token and returns the user ID it carries.
// Failures are classified as Unauthorized so the transport maps them to 401,
// with expiry kept distinguishable from a bad signature.
func (m *Manager) ParseAccess(raw string) (string, error) {
	userID, err := m.parse(raw, m.accessSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperr.New(apperr.KindUnauthorized, "access token is expired")
		}
		return "", apperr.New(apperr.KindUnauthorized, "access token is invalid")
	}
	return userID, nil
}

// ParseRefresh verifies a refresh token and returns the user ID it carries.
func (m *Manager) ParseRefresh(raw string) (string, error) {
	userID, err := m.parse(raw, m.refreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperr.New(apperr.KindInvalidToken, "refresh token is expired")
		}
		return "", apperr.New(apperr.KindInvalidToken, "refresh token is invalid")
	}
	return userID, nil
}

func (m *Manager) parse(raw string, secret []byte) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("token subject is empty")
	}
	return claims.Subject, nil
}
