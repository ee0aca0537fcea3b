// file: internal/playlist/playlist.go
// version: 2.0.0
// guid: 6d4f8a2b-1c9e-4735-b0a8-3e5f7d9c1b26

package playlist

import (
	"errors"
	"log"
	"strings"

	"github.com/mrodavis/sound-circle-be/internal/catalog"
	"github.com/mrodavis/sound-circle-be/internal/database"
	"github.com/mrodavis/sound-circle-be/internal/metrics"
)

// ErrUnknownTrack is returned when a playlist mutation references a
// track id that does not exist in the catalog.
var ErrUnknownTrack = errors.New("track does not exist")

// ErrMissingTitleArtist is returned when a quick-add draft lacks a
// title or an artist.
var ErrMissingTitleArtist = errors.New("title and artist are required")

// Manager maintains per-user playlists: ordered, duplicate-free lists
// of track references. Newest additions go to the front.
type Manager struct {
	store database.Store
}

// NewManager creates a playlist manager backed by the given store.
func NewManager(store database.Store) *Manager {
	return &Manager{store: store}
}

// List returns the user's playlist resolved to full track records, in
// stored order. References to tracks that no longer exist are silently
// dropped. A user with no playlist gets an empty list.
func (m *Manager) List(userID string) ([]database.Track, error) {
	ids, err := m.store.GetPlaylistTrackIDs(userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []database.Track{}, nil
	}

	byID, err := m.store.GetTracksByIDs(ids)
	if err != nil {
		return nil, err
	}

	tracks := make([]database.Track, 0, len(ids))
	for _, id := range ids {
		track, ok := byID[id]
		if !ok {
			log.Printf("[DEBUG] playlist for user %s references missing track %s, skipping", userID, id)
			continue
		}
		tracks = append(tracks, track)
	}
	return tracks, nil
}

// Add prepends a track to the user's playlist. Adding a track that is
// already present leaves the playlist unchanged and is not an error.
func (m *Manager) Add(userID, trackID string) ([]database.Track, error) {
	track, err := m.store.GetTrackByID(trackID)
	if err != nil {
		return nil, err
	}
	if track == nil {
		return nil, ErrUnknownTrack
	}

	if err := m.prepend(userID, trackID); err != nil {
		return nil, err
	}
	return m.List(userID)
}

// Draft carries the fields of a quick-add request: a song named inline
// rather than by catalog id.
type Draft struct {
	Title        string  `json:"title"`
	Artist       string  `json:"artist"`
	SoundClipURL *string `json:"soundClipUrl"`
	CoverArtURL  *string `json:"coverArtUrl"`
	SourceURL    *string `json:"sourceUrl"`
	Genre        *string `json:"genre"`
}

// AddDraft resolves a quick-add draft to a catalog track, creating one
// when no exact match exists, then prepends it to the user's playlist.
//
// Resolution matches on the raw (title, artist, soundClipUrl) triple
// first so that repeat quick-adds of the same song reuse the same row.
// When a new row must be created it still carries the canonical dedupe
// key, and losing a creation race resolves to the winning row. Optional
// URL fields must be http(s) or the draft is rejected.
func (m *Manager) AddDraft(userID string, draft Draft) ([]database.Track, *database.Track, error) {
	title := strings.TrimSpace(draft.Title)
	artist := strings.TrimSpace(draft.Artist)
	if title == "" || artist == "" {
		return nil, nil, ErrMissingTitleArtist
	}

	clip, err := catalog.OptionalURL(draft.SoundClipURL)
	if err != nil {
		return nil, nil, err
	}
	cover, err := catalog.OptionalURL(draft.CoverArtURL)
	if err != nil {
		return nil, nil, err
	}
	source, err := catalog.OptionalURL(draft.SourceURL)
	if err != nil {
		return nil, nil, err
	}

	track, err := m.store.FindTrackByExact(title, artist, clip)
	if err != nil {
		return nil, nil, err
	}
	if track == nil {
		key := catalog.TrackKey(artist, title)
		fresh := &database.Track{
			Key:          key,
			Title:        title,
			Artist:       artist,
			SoundClipURL: clip,
			CoverArtURL:  cover,
			SourceURL:    source,
		}
		if draft.Genre != nil {
			if genre := strings.TrimSpace(*draft.Genre); genre != "" {
				fresh.PrimaryGenre = &genre
				fresh.Genres = []string{genre}
			}
		}
		track, err = m.store.CreateTrack(fresh)
		if errors.Is(err, database.ErrDuplicateKey) {
			track, err = m.store.GetTrackByKey(key)
			if err == nil && track == nil {
				err = database.ErrNotFound
			}
		}
		if err != nil {
			return nil, nil, err
		}
	}

	if err := m.prepend(userID, track.ID); err != nil {
		return nil, nil, err
	}
	list, err := m.List(userID)
	if err != nil {
		return nil, nil, err
	}
	return list, track, nil
}

// Remove deletes every occurrence of a track from the user's playlist.
// Removing an absent track is a no-op.
func (m *Manager) Remove(userID, trackID string) ([]database.Track, error) {
	ids, err := m.store.GetPlaylistTrackIDs(userID)
	if err != nil {
		return nil, err
	}

	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != trackID {
			kept = append(kept, id)
		}
	}
	if len(kept) != len(ids) {
		if err := m.store.SetPlaylistTrackIDs(userID, kept); err != nil {
			return nil, err
		}
		metrics.IncPlaylistMutation("remove")
	}
	return m.List(userID)
}

// prepend puts the track at the head of the playlist unless it is
// already present anywhere in the list.
func (m *Manager) prepend(userID, trackID string) error {
	ids, err := m.store.GetPlaylistTrackIDs(userID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == trackID {
			return nil
		}
	}

	updated := append([]string{trackID}, ids...)
	if err := m.store.SetPlaylistTrackIDs(userID, updated); err != nil {
		return err
	}
	metrics.IncPlaylistMutation("add")
	return nil
}
