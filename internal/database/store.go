// file: internal/database/store.go
// version: 1.2.0
// guid: 9c1d2e3f-4a5b-4c6d-7e8f-9a0b1c2d3e4f

package database

import (
	"errors"
	"time"
)

// ErrNotFound is returned by mutating operations when the target row
// does not exist. Getters return (nil, nil) for a miss instead.
var ErrNotFound = errors.New("not found")

// ErrDuplicateKey is returned when an insert or update violates a
// uniqueness constraint (track key, username, email). The store's unique
// indexes are the final arbiter for concurrent writers racing on the
// same key.
var ErrDuplicateKey = errors.New("duplicate key")

// Store defines the interface for our database operations
type Store interface {
	// Lifecycle
	Close() error

	// Tracks
	GetTrackByID(id string) (*Track, error)
	GetTrackByKey(key string) (*Track, error)
	// FindTrackByExact matches on the raw (title, artist, soundClipUrl)
	// triple. Used by the playlist quick-add path, which intentionally
	// skips key normalization.
	FindTrackByExact(title, artist string, soundClipURL *string) (*Track, error)
	CreateTrack(track *Track) (*Track, error)
	UpdateTrack(id string, track *Track) (*Track, error)
	DeleteTrack(id string) error
	SearchTracks(query string, limit, offset int) ([]Track, int, error)
	GetTracksByIDs(ids []string) (map[string]Track, error)
	CountTracks() (int, error)
	IncrementTrackLikes(id string) error
	IncrementTrackSoundBytes(id string) error

	// Users
	CreateUser(username, email, passwordHash string) (*User, error)
	GetUserByID(id string) (*User, error)
	GetUserByUsername(username string) (*User, error)
	ListUsers() ([]User, error)
	CountUsers() (int, error)

	// Sessions
	CreateSession(userID string, ttl time.Duration) (*Session, error)
	GetSession(token string) (*Session, error)
	RevokeSession(token string) error
	DeleteExpiredSessions(now time.Time) (int, error)

	// Playlists (ordered track references owned by one user)
	GetPlaylistTrackIDs(userID string) ([]string, error)
	SetPlaylistTrackIDs(userID string, trackIDs []string) error

	// Sound bytes
	CreateSoundByte(sb *SoundByte) (*SoundByte, error)
	GetSoundByteByID(id string) (*SoundByte, error)
	ListSoundBytes() ([]SoundByte, error)
	UpdateSoundByte(id string, sb *SoundByte) (*SoundByte, error)
	DeleteSoundByte(id string) error

	// Sound byte comments
	CreateComment(soundByteID string, comment *Comment) (*Comment, error)
	UpdateComment(soundByteID, commentID, text string) (*Comment, error)
	DeleteComment(soundByteID, commentID string) error
	ListComments(soundByteID string) ([]Comment, error)
}

// Track represents a canonical catalog entry. The key column carries a
// unique index; two rows never share a key.
type Track struct {
	ID     string `json:"id"` // ULID format
	Key    string `json:"key"`
	Title  string `json:"title"`
	Artist string `json:"artist"`

	Album       *string `json:"album,omitempty"`
	ReleaseYear *int    `json:"releaseYear,omitempty"`
	DurationMs  *int    `json:"durationMs,omitempty"`

	// Enrichment fields. Serialized even when null so clients can
	// distinguish "not enriched" from "not present".
	CoverArtURL  *string `json:"coverArtUrl"`
	SoundClipURL *string `json:"soundClipUrl"`
	SourceURL    *string `json:"sourceUrl,omitempty"`

	// External provider correlation, keeps repeated enrichment idempotent
	ITunesID *string `json:"itunesId,omitempty"`

	PrimaryGenre *string  `json:"primaryGenre,omitempty"`
	Genres       []string `json:"genres,omitempty"`

	// Usage counters, monotonic and never negative
	LikesCount      int `json:"likesCount"`
	SoundBytesCount int `json:"soundBytesCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// User represents an application user (ULID IDs)
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Session represents an authenticated bearer-token session
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	Revoked   bool      `json:"revoked"`
}

// SoundByte represents a user post, optionally referencing a catalog track
type SoundByte struct {
	ID       string  `json:"id"`
	AuthorID string  `json:"authorId"`
	TrackID  *string `json:"trackId,omitempty"`
	Artist   string  `json:"artist"`
	Title    string  `json:"title"`
	Album    string  `json:"album"`
	URL      string  `json:"url"`
	Notes    string  `json:"notes"`

	Comments []Comment `json:"comments,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Comment represents a threaded comment on a sound byte
type Comment struct {
	ID          string    `json:"id"`
	SoundByteID string    `json:"soundByteId"`
	AuthorID    string    `json:"authorId"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Global store instance
var GlobalStore Store

// InitializeStore opens the SQLite store at path and installs it as the
// global store.
func InitializeStore(path string) error {
	store, err := NewSQLiteStore(path)
	if err != nil {
		return err
	}
	GlobalStore = store
	return nil
}

// CloseStore closes the global store
func CloseStore() error {
	if GlobalStore != nil {
		return GlobalStore.Close()
	}
	return nil
}
