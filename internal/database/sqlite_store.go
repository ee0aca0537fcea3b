// file: internal/database/sqlite_store.go
// version: 1.3.0
// guid: 0d2e3f4a-5b6c-4d7e-8f9a-0b1c2d3e4f5a

package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
	ulid "github.com/oklog/ulid/v2"
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

const trackSelectColumns = `
	id, key, title, artist, album, release_year, duration_ms,
	cover_art_url, sound_clip_url, source_url, itunes_id,
	primary_genre, genres, likes_count, sound_bytes_count,
	created_at, updated_at
`

func scanTrack(scanner rowScanner, track *Track) error {
	var genresJSON *string
	if err := scanner.Scan(
		&track.ID, &track.Key, &track.Title, &track.Artist,
		&track.Album, &track.ReleaseYear, &track.DurationMs,
		&track.CoverArtURL, &track.SoundClipURL, &track.SourceURL,
		&track.ITunesID, &track.PrimaryGenre, &genresJSON,
		&track.LikesCount, &track.SoundBytesCount,
		&track.CreatedAt, &track.UpdatedAt,
	); err != nil {
		return err
	}
	if genresJSON != nil && *genresJSON != "" {
		if err := json.Unmarshal([]byte(*genresJSON), &track.Genres); err != nil {
			return fmt.Errorf("failed to decode genres for track %s: %w", track.ID, err)
		}
	}
	return nil
}

func encodeGenres(genres []string) (*string, error) {
	if len(genres) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(genres)
	if err != nil {
		return nil, fmt.Errorf("failed to encode genres: %w", err)
	}
	s := string(raw)
	return &s, nil
}

// isUniqueViolation reports whether err is a SQLite uniqueness constraint
// failure. Racing writers on the tracks.key index land here.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

func newID() string {
	return ulid.Make().String()
}

// SQLiteStore implements the Store interface using SQLite3
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	store := &SQLiteStore{db: db}

	if err := store.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return store, nil
}

// createTables creates all required tables
func (s *SQLiteStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tracks (
		id TEXT PRIMARY KEY,
		key TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		artist TEXT NOT NULL,
		album TEXT,
		release_year INTEGER,
		duration_ms INTEGER,
		cover_art_url TEXT,
		sound_clip_url TEXT,
		source_url TEXT,
		itunes_id TEXT,
		primary_genre TEXT,
		genres TEXT,
		likes_count INTEGER NOT NULL DEFAULT 0,
		sound_bytes_count INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_tracks_key ON tracks(key);
	CREATE INDEX IF NOT EXISTS idx_tracks_title ON tracks(title);
	CREATE INDEX IF NOT EXISTS idx_tracks_artist ON tracks(artist);
	CREATE INDEX IF NOT EXISTS idx_tracks_created_at ON tracks(created_at);

	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);

	CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		expires_at DATETIME NOT NULL,
		revoked BOOLEAN NOT NULL DEFAULT 0,
		FOREIGN KEY (user_id) REFERENCES users(id)
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

	CREATE TABLE IF NOT EXISTS playlist_items (
		user_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		track_id TEXT NOT NULL,
		PRIMARY KEY (user_id, position),
		UNIQUE (user_id, track_id)
	);

	CREATE INDEX IF NOT EXISTS idx_playlist_items_user ON playlist_items(user_id);

	CREATE TABLE IF NOT EXISTS sound_bytes (
		id TEXT PRIMARY KEY,
		author_id TEXT NOT NULL,
		track_id TEXT,
		artist TEXT NOT NULL,
		title TEXT NOT NULL,
		album TEXT NOT NULL,
		url TEXT NOT NULL,
		notes TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (author_id) REFERENCES users(id)
	);

	CREATE INDEX IF NOT EXISTS idx_sound_bytes_author ON sound_bytes(author_id);
	CREATE INDEX IF NOT EXISTS idx_sound_bytes_created_at ON sound_bytes(created_at);

	CREATE TABLE IF NOT EXISTS sound_byte_comments (
		id TEXT PRIMARY KEY,
		sound_byte_id TEXT NOT NULL,
		author_id TEXT NOT NULL,
		text TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (sound_byte_id) REFERENCES sound_bytes(id) ON DELETE CASCADE,
		FOREIGN KEY (author_id) REFERENCES users(id)
	);

	CREATE INDEX IF NOT EXISTS idx_sound_byte_comments_parent ON sound_byte_comments(sound_byte_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ---- Tracks ----

func (s *SQLiteStore) getTrackWhere(where string, args ...interface{}) (*Track, error) {
	query := "SELECT " + trackSelectColumns + " FROM tracks WHERE " + where
	track := &Track{}
	err := scanTrack(s.db.QueryRow(query, args...), track)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get track: %w", err)
	}
	return track, nil
}

func (s *SQLiteStore) GetTrackByID(id string) (*Track, error) {
	return s.getTrackWhere("id = ?", id)
}

func (s *SQLiteStore) GetTrackByKey(key string) (*Track, error) {
	return s.getTrackWhere("key = ?", key)
}

func (s *SQLiteStore) FindTrackByExact(title, artist string, soundClipURL *string) (*Track, error) {
	if soundClipURL == nil {
		return s.getTrackWhere("title = ? AND artist = ? AND sound_clip_url IS NULL", title, artist)
	}
	return s.getTrackWhere("title = ? AND artist = ? AND sound_clip_url = ?", title, artist, *soundClipURL)
}

func (s *SQLiteStore) CreateTrack(track *Track) (*Track, error) {
	if track.ID == "" {
		track.ID = newID()
	}
	now := time.Now().UTC()
	track.CreatedAt = now
	track.UpdatedAt = now

	genresJSON, err := encodeGenres(track.Genres)
	if err != nil {
		return nil, err
	}

	_, err = s.db.Exec(`
		INSERT INTO tracks (
			id, key, title, artist, album, release_year, duration_ms,
			cover_art_url, sound_clip_url, source_url, itunes_id,
			primary_genre, genres, likes_count, sound_bytes_count,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		track.ID, track.Key, track.Title, track.Artist,
		track.Album, track.ReleaseYear, track.DurationMs,
		track.CoverArtURL, track.SoundClipURL, track.SourceURL, track.ITunesID,
		track.PrimaryGenre, genresJSON,
		track.LikesCount, track.SoundBytesCount,
		track.CreatedAt, track.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("failed to insert track: %w", err)
	}
	return track, nil
}

// UpdateTrack rewrites the mutable columns of a track. Counters are
// deliberately absent from the SET list so an update can never reset them.
func (s *SQLiteStore) UpdateTrack(id string, track *Track) (*Track, error) {
	track.UpdatedAt = time.Now().UTC()

	genresJSON, err := encodeGenres(track.Genres)
	if err != nil {
		return nil, err
	}

	result, err := s.db.Exec(`
		UPDATE tracks SET
			key = ?, title = ?, artist = ?, album = ?, release_year = ?,
			duration_ms = ?, cover_art_url = ?, sound_clip_url = ?,
			source_url = ?, itunes_id = ?, primary_genre = ?, genres = ?,
			updated_at = ?
		WHERE id = ?`,
		track.Key, track.Title, track.Artist, track.Album, track.ReleaseYear,
		track.DurationMs, track.CoverArtURL, track.SoundClipURL,
		track.SourceURL, track.ITunesID, track.PrimaryGenre, genresJSON,
		track.UpdatedAt, id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("failed to update track: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return s.GetTrackByID(id)
}

func (s *SQLiteStore) DeleteTrack(id string) error {
	result, err := s.db.Exec("DELETE FROM tracks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete track: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// SearchTracks returns tracks whose title or artist contains query
// (case-insensitive), newest first, along with the total match count.
// An empty query matches all tracks.
func (s *SQLiteStore) SearchTracks(query string, limit, offset int) ([]Track, int, error) {
	where := "1 = 1"
	args := []interface{}{}
	if strings.TrimSpace(query) != "" {
		pattern := "%" + escapeLike(strings.TrimSpace(query)) + "%"
		where = `(title LIKE ? ESCAPE '\' OR artist LIKE ? ESCAPE '\')`
		args = append(args, pattern, pattern)
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM tracks WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tracks: %w", err)
	}

	rows, err := s.db.Query(
		"SELECT "+trackSelectColumns+" FROM tracks WHERE "+where+
			" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		append(args, limit, offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search tracks: %w", err)
	}
	defer rows.Close()

	tracks := []Track{}
	for rows.Next() {
		var track Track
		if err := scanTrack(rows, &track); err != nil {
			return nil, 0, err
		}
		tracks = append(tracks, track)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return tracks, total, nil
}

func (s *SQLiteStore) GetTracksByIDs(ids []string) (map[string]Track, error) {
	result := make(map[string]Track, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	placeholders := strings.TrimRight(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.Query(
		"SELECT "+trackSelectColumns+" FROM tracks WHERE id IN ("+placeholders+")",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tracks by ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var track Track
		if err := scanTrack(rows, &track); err != nil {
			return nil, err
		}
		result[track.ID] = track
	}
	return result, rows.Err()
}

func (s *SQLiteStore) CountTracks() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM tracks").Scan(&count)
	return count, err
}

func (s *SQLiteStore) incrementTrackCounter(id, column string) error {
	result, err := s.db.Exec(
		"UPDATE tracks SET "+column+" = "+column+" + 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", column, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) IncrementTrackLikes(id string) error {
	return s.incrementTrackCounter(id, "likes_count")
}

func (s *SQLiteStore) IncrementTrackSoundBytes(id string) error {
	return s.incrementTrackCounter(id, "sound_bytes_count")
}

// ---- Users ----

func scanUser(scanner rowScanner, user *User) error {
	return scanner.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
}

const userSelectColumns = "id, username, email, password_hash, created_at"

func (s *SQLiteStore) CreateUser(username, email, passwordHash string) (*User, error) {
	user := &User{
		ID:           newID(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := s.db.Exec(
		"INSERT INTO users (id, username, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)",
		user.ID, user.Username, user.Email, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *SQLiteStore) getUserWhere(where string, args ...interface{}) (*User, error) {
	user := &User{}
	err := scanUser(s.db.QueryRow(
		"SELECT "+userSelectColumns+" FROM users WHERE "+where, args...), user)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *SQLiteStore) GetUserByID(id string) (*User, error) {
	return s.getUserWhere("id = ?", id)
}

func (s *SQLiteStore) GetUserByUsername(username string) (*User, error) {
	return s.getUserWhere("username = ?", username)
}

func (s *SQLiteStore) ListUsers() ([]User, error) {
	rows, err := s.db.Query("SELECT " + userSelectColumns + " FROM users ORDER BY username")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		var user User
		if err := scanUser(rows, &user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *SQLiteStore) CountUsers() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

// ---- Sessions ----

func (s *SQLiteStore) CreateSession(userID string, ttl time.Duration) (*Session, error) {
	now := time.Now().UTC()
	session := &Session{
		Token:     newID(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	_, err := s.db.Exec(
		"INSERT INTO sessions (token, user_id, created_at, expires_at, revoked) VALUES (?, ?, ?, ?, 0)",
		session.Token, session.UserID, session.CreatedAt, session.ExpiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

func (s *SQLiteStore) GetSession(token string) (*Session, error) {
	session := &Session{}
	err := s.db.QueryRow(
		"SELECT token, user_id, created_at, expires_at, revoked FROM sessions WHERE token = ?", token,
	).Scan(&session.Token, &session.UserID, &session.CreatedAt, &session.ExpiresAt, &session.Revoked)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

func (s *SQLiteStore) RevokeSession(token string) error {
	_, err := s.db.Exec("UPDATE sessions SET revoked = 1 WHERE token = ?", token)
	return err
}

func (s *SQLiteStore) DeleteExpiredSessions(now time.Time) (int, error) {
	result, err := s.db.Exec("DELETE FROM sessions WHERE expires_at < ? OR revoked = 1", now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	affected, err := result.RowsAffected()
	return int(affected), err
}

// ---- Playlists ----

func (s *SQLiteStore) GetPlaylistTrackIDs(userID string) ([]string, error) {
	rows, err := s.db.Query(
		"SELECT track_id FROM playlist_items WHERE user_id = ? ORDER BY position", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load playlist: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetPlaylistTrackIDs replaces the user's playlist wholesale. The
// read-modify-write cycle lives in the playlist manager; concurrent
// writers for the same user are last-write-wins.
func (s *SQLiteStore) SetPlaylistTrackIDs(userID string, trackIDs []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin playlist transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM playlist_items WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to clear playlist: %w", err)
	}
	for position, trackID := range trackIDs {
		if _, err := tx.Exec(
			"INSERT INTO playlist_items (user_id, position, track_id) VALUES (?, ?, ?)",
			userID, position, trackID,
		); err != nil {
			return fmt.Errorf("failed to write playlist item: %w", err)
		}
	}
	return tx.Commit()
}

// ---- Sound bytes ----

const soundByteSelectColumns = "id, author_id, track_id, artist, title, album, url, notes, created_at, updated_at"

func scanSoundByte(scanner rowScanner, sb *SoundByte) error {
	return scanner.Scan(
		&sb.ID, &sb.AuthorID, &sb.TrackID, &sb.Artist, &sb.Title,
		&sb.Album, &sb.URL, &sb.Notes, &sb.CreatedAt, &sb.UpdatedAt,
	)
}

func (s *SQLiteStore) CreateSoundByte(sb *SoundByte) (*SoundByte, error) {
	if sb.ID == "" {
		sb.ID = newID()
	}
	now := time.Now().UTC()
	sb.CreatedAt = now
	sb.UpdatedAt = now

	_, err := s.db.Exec(`
		INSERT INTO sound_bytes (id, author_id, track_id, artist, title, album, url, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sb.ID, sb.AuthorID, sb.TrackID, sb.Artist, sb.Title, sb.Album, sb.URL, sb.Notes,
		sb.CreatedAt, sb.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sound byte: %w", err)
	}
	return sb, nil
}

func (s *SQLiteStore) GetSoundByteByID(id string) (*SoundByte, error) {
	sb := &SoundByte{}
	err := scanSoundByte(s.db.QueryRow(
		"SELECT "+soundByteSelectColumns+" FROM sound_bytes WHERE id = ?", id), sb)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sound byte: %w", err)
	}

	comments, err := s.ListComments(id)
	if err != nil {
		return nil, err
	}
	sb.Comments = comments
	return sb, nil
}

func (s *SQLiteStore) ListSoundBytes() ([]SoundByte, error) {
	rows, err := s.db.Query(
		"SELECT " + soundByteSelectColumns + " FROM sound_bytes ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list sound bytes: %w", err)
	}
	defer rows.Close()

	bytes := []SoundByte{}
	for rows.Next() {
		var sb SoundByte
		if err := scanSoundByte(rows, &sb); err != nil {
			return nil, err
		}
		bytes = append(bytes, sb)
	}
	return bytes, rows.Err()
}

func (s *SQLiteStore) UpdateSoundByte(id string, sb *SoundByte) (*SoundByte, error) {
	sb.UpdatedAt = time.Now().UTC()
	result, err := s.db.Exec(`
		UPDATE sound_bytes SET artist = ?, title = ?, album = ?, url = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		sb.Artist, sb.Title, sb.Album, sb.URL, sb.Notes, sb.UpdatedAt, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update sound byte: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return s.GetSoundByteByID(id)
}

func (s *SQLiteStore) DeleteSoundByte(id string) error {
	result, err := s.db.Exec("DELETE FROM sound_bytes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete sound byte: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	_, err = s.db.Exec("DELETE FROM sound_byte_comments WHERE sound_byte_id = ?", id)
	return err
}

// ---- Comments ----

func (s *SQLiteStore) CreateComment(soundByteID string, comment *Comment) (*Comment, error) {
	if comment.ID == "" {
		comment.ID = newID()
	}
	now := time.Now().UTC()
	comment.SoundByteID = soundByteID
	comment.CreatedAt = now
	comment.UpdatedAt = now

	_, err := s.db.Exec(`
		INSERT INTO sound_byte_comments (id, sound_byte_id, author_id, text, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		comment.ID, comment.SoundByteID, comment.AuthorID, comment.Text,
		comment.CreatedAt, comment.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return comment, nil
}

func (s *SQLiteStore) UpdateComment(soundByteID, commentID, text string) (*Comment, error) {
	now := time.Now().UTC()
	result, err := s.db.Exec(
		"UPDATE sound_byte_comments SET text = ?, updated_at = ? WHERE id = ? AND sound_byte_id = ?",
		text, now, commentID, soundByteID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	comment := &Comment{}
	err = s.db.QueryRow(
		"SELECT id, sound_byte_id, author_id, text, created_at, updated_at FROM sound_byte_comments WHERE id = ?",
		commentID,
	).Scan(&comment.ID, &comment.SoundByteID, &comment.AuthorID, &comment.Text,
		&comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to reload comment: %w", err)
	}
	return comment, nil
}

func (s *SQLiteStore) DeleteComment(soundByteID, commentID string) error {
	result, err := s.db.Exec(
		"DELETE FROM sound_byte_comments WHERE id = ? AND sound_byte_id = ?", commentID, soundByteID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ListComments(soundByteID string) ([]Comment, error) {
	rows, err := s.db.Query(
		"SELECT id, sound_byte_id, author_id, text, created_at, updated_at FROM sound_byte_comments WHERE sound_byte_id = ? ORDER BY created_at",
		soundByteID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.SoundByteID, &c.AuthorID, &c.Text, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
