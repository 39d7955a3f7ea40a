// Package models defines the core data structures for users, tracks and playlists.
package models

import "time"

// User represents an application user with credentials.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id"`
	// Username is the unique display name chosen by the user.
	Username string `json:"username"`
	// Email is the unique, lower-cased email address of the user.
	Email string `json:"email"`
	// PasswordHash is the bcrypt hash of the user's password. Never serialized.
	PasswordHash string `json:"-"`
	// RefreshToken is the single currently-valid refresh token for the user,
	// empty after logout. Never serialized.
	RefreshToken string `json:"-"`
	// Preferences holds an optional free-form preference bag.
	Preferences map[string]any `json:"preferences,omitempty"`
	// CreatedAt is when the user registered.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is when the user record last changed.
	UpdatedAt time.Time `json:"updatedAt"`
}

// Track represents a single audio track owned by a user.
type Track struct {
	// ID is the unique identifier for the track.
	ID string `json:"id"`
	// Title is the track title, at most 100 characters.
	Title string `json:"title"`
	// Artist is the performing artist, at most 100 characters.
	Artist string `json:"artist"`
	// Duration is the track length in whole seconds.
	Duration int `json:"duration"`
	// FileURL points at the audio file location.
	FileURL string `json:"fileUrl"`
	// CoverURL optionally points at cover art.
	CoverURL string `json:"coverUrl,omitempty"`
	// Genre is an optional genre label, at most 50 characters.
	Genre string `json:"genre,omitempty"`
	// Tags is a deduplicated, order-insignificant tag set.
	Tags []string `json:"tags"`
	// PlayCount is the monotonically non-decreasing play counter.
	PlayCount int64 `json:"playCount"`
	// IsPublic controls whether non-owners may see the track.
	IsPublic bool `json:"isPublic"`
	// OwnerID references the owning user. Immutable after creation.
	OwnerID string `json:"ownerId"`
	// CreatedAt is when the track was created.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is when the track last changed.
	UpdatedAt time.Time `json:"updatedAt"`
}

// Playlist represents an ordered collection of track references owned by a user.
type Playlist struct {
	// ID is the unique identifier for the playlist.
	ID string `json:"id"`
	// Name is the playlist name, 1 to 100 characters.
	Name string `json:"name"`
	// Description is an optional description, at most 500 characters.
	Description string `json:"description,omitempty"`
	// CoverURL optionally points at cover art.
	CoverURL string `json:"coverUrl,omitempty"`
	// TrackIDs is the ordered, duplicate-free sequence of member track IDs.
	TrackIDs []string `json:"tracks"`
	// IsPublic controls whether non-owners may see or follow the playlist.
	IsPublic bool `json:"isPublic"`
	// OwnerID references the owning user. Immutable after creation.
	OwnerID string `json:"ownerId"`
	// FollowersCount is the current number of followers.
	FollowersCount int `json:"followersCount"`
	// CreatedAt is when the playlist was created.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is when the playlist last changed.
	UpdatedAt time.Time `json:"updatedAt"`
}
