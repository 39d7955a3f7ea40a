// Package service implements the business logic of the catalog: identity,
// track ownership and visibility, and playlist collection maintenance.
// Persistence is delegated to repository interfaces declared here, on the
// consumer side.
package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/aakash-sharma-github/dollop-music-backend/internal/apperr"
	"github.com/aakash-sharma-github/dollop-music-backend/internal/models"
)

// UserRepository defines the persistence operations required by the
// authentication service.
type UserRepository interface {
	// Create inserts a new user, failing with Conflict on a duplicate
	// username or email.
	Create(ctx context.Context, u *models.User) error
	// GetByID fetches a user by ID.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByEmail fetches a user by lower-cased email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Update persists profile changes.
	Update(ctx context.Context, u *models.User) error
	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id, hash string) error
	// SetRefreshToken stores the single active refresh token; empty revokes.
	SetRefreshToken(ctx context.Context, id, refreshToken string) error
}

// TokenIssuer signs and verifies the credentials handed to clients.
type TokenIssuer interface {
	IssueAccess(userID string) (string, error)
	IssueRefresh(userID string) (string, error)
	ParseRefresh(raw string) (string, error)
}

// TokenPair bundles a freshly issued access and refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// ProfilePatch carries the optional profile fields a user may change.
// Nil fields are left untouched.
type ProfilePatch struct {
	Username    *string        `json:"username"`
	Email       *string        `json:"email"`
	Preferences map[string]any `json:"preferences"`
}

// AuthService implements registration, authentication and token lifecycle.
type AuthService struct {
	repo   UserRepository
	tokens TokenIssuer
	cost   int
}

// NewAuthService constructs an AuthService. cost is the bcrypt work factor.
func NewAuthService(repo UserRepository, tokens TokenIssuer, cost int) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, cost: cost}
}

// Register creates a new user with a hashed password and signs them in by
// issuing a token pair. The plaintext password never reaches the repository.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, TokenPair, error) {
	username = trimmed(username)
	email = normalizeEmail(email)
	if n := utf8.RuneCountInString(username); n < 3 || n > 30 {
		return nil, TokenPair{}, apperr.New(apperr.KindValidation, "username must be 3 to 30 characters")
	}
	if err := validateEmail(email); err != nil {
		return nil, TokenPair{}, err
	}
	if utf8.RuneCountInString(password) < 8 {
		return nil, TokenPair{}, apperr.New(apperr.KindValidation, "password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, TokenPair{}, err
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.issuePair(ctx, user.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return user, pair, nil
}

// Login verifies the email/password pair and issues a token pair. Unknown
// email and wrong password produce the same error so accounts cannot be
// enumerated.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, TokenPair, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, TokenPair{}, apperr.New(apperr.KindInvalidCredentials, "invalid email or password")
		}
		return nil, TokenPair{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, TokenPair{}, apperr.New(apperr.KindInvalidCredentials, "invalid email or password")
	}

	pair, err := s.issuePair(ctx, user.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return user, pair, nil
}

// Refresh rotates a refresh token: the presented token must both verify and
// match the one on record, and issuing the new pair invalidates it.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	userID, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return TokenPair{}, apperr.New(apperr.KindInvalidToken, "refresh token is invalid")
		}
		return TokenPair{}, err
	}
	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		return TokenPair{}, apperr.New(apperr.KindInvalidToken, "refresh token is no longer valid")
	}
	return s.issuePair(ctx, user.ID)
}

// Logout clears the stored refresh token.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	return s.repo.SetRefreshToken(ctx, userID, "")
}

// Profile returns the user's own record.
func (s *AuthService) Profile(ctx context.Context, userID string) (*models.User, error) {
	return s.repo.GetByID(ctx, userID)
}

// UpdateProfile applies the non-nil patch fields to the user's profile.
// Username and email uniqueness is re-checked by the repository.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if patch.Username != nil {
		username := trimmed(*patch.Username)
		if n := utf8.RuneCountInString(username); n < 3 || n > 30 {
			return nil, apperr.New(apperr.KindValidation, "username must be 3 to 30 characters")
		}
		user.Username = username
	}
	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		user.Email = email
	}
	if patch.Preferences != nil {
		user.Preferences = patch.Preferences
	}
	user.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current password, stores the new hash and
// revokes the active refresh token so stolen sessions die with the old
// password.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return apperr.New(apperr.KindInvalidCredentials, "current password is incorrect")
	}
	if utf8.RuneCountInString(next) < 8 {
		return apperr.New(apperr.KindValidation, "password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.cost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return err
	}
	return s.repo.SetRefreshToken(ctx, userID, "")
}

func (s *AuthService) issuePair(ctx context.Context, userID string) (TokenPair, error) {
	access, err := s.tokens.IssueAccess(userID)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.tokens.IssueRefresh(userID)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.repo.SetRefreshToken(ctx, userID, refresh); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
