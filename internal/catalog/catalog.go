// file: internal/catalog/catalog.go
// version: 1.1.0
// guid: 6c4d5e7f-8a9b-4c0d-1e2f-3a4b5c6d7e8f

package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/mrodavis/sound-circle-be/internal/database"
)

// ErrMissingTitleArtist is returned when a submission or update leaves a
// track without a non-empty title and artist.
var ErrMissingTitleArtist = errors.New("title and artist are required")

// ErrInvalidURL is returned when an optional URL field is present but not
// an http(s) URL.
var ErrInvalidURL = errors.New("URL fields must be http or https")

// ErrInvalidField is returned for out-of-range optional values such as a
// release year outside 1800-9999.
var ErrInvalidField = errors.New("invalid field value")

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// Catalog owns track records. It enforces the dedupe-key uniqueness
// invariant (via the store's unique index) and runs the enrichment
// pipeline for new submissions.
type Catalog struct {
	store             database.Store
	provider          Provider
	enrichmentEnabled bool
}

// NewCatalog creates a Catalog. provider may be nil, which behaves like
// enrichment disabled.
func NewCatalog(store database.Store, provider Provider, enrichmentEnabled bool) *Catalog {
	return &Catalog{
		store:             store,
		provider:          provider,
		enrichmentEnabled: enrichmentEnabled,
	}
}

// FindByKey returns the track with the given dedupe key, or nil.
func (c *Catalog) FindByKey(key string) (*database.Track, error) {
	return c.store.GetTrackByKey(key)
}

// FindByID returns the track with the given id, or nil.
func (c *Catalog) FindByID(id string) (*database.Track, error) {
	return c.store.GetTrackByID(id)
}

// SearchPage is one page of track search results.
type SearchPage struct {
	Items   []database.Track `json:"items"`
	Page    int              `json:"page"`
	Limit   int              `json:"limit"`
	Total   int              `json:"total"`
	HasNext bool             `json:"hasNext"`
}

// Search returns tracks whose title or artist contains query,
// case-insensitively; an empty query matches everything. page is floored
// at 1, limit clamped to [1, 50] with a default of 10. Results are newest
// first.
func (c *Catalog) Search(ctx context.Context, query string, page, limit int) (*SearchPage, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	items, total, err := c.store.SearchTracks(query, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("track search failed: %w", err)
	}

	return &SearchPage{
		Items:   items,
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasNext: page*limit < total,
	}, nil
}

// TrackUpdate carries the whitelisted mutable track fields. A nil pointer
// means "leave unchanged"; an empty string clears an optional field.
type TrackUpdate struct {
	Title        *string `json:"title"`
	Artist       *string `json:"artist"`
	CoverArtURL  *string `json:"coverArtUrl"`
	SoundClipURL *string `json:"soundClipUrl"`
	SourceURL    *string `json:"sourceUrl"`
	Genre        *string `json:"genre"`
}

// Update applies whitelisted field edits to a track. Changing title or
// artist re-derives the dedupe key; a key collision with another track
// surfaces as database.ErrDuplicateKey. Returns database.ErrNotFound when
// id does not resolve.
func (c *Catalog) Update(ctx context.Context, id string, update TrackUpdate) (*database.Track, error) {
	track, err := c.store.GetTrackByID(id)
	if err != nil {
		return nil, err
	}
	if track == nil {
		return nil, database.ErrNotFound
	}

	if update.Title != nil {
		track.Title = strings.TrimSpace(*update.Title)
	}
	if update.Artist != nil {
		track.Artist = strings.TrimSpace(*update.Artist)
	}
	if track.Title == "" || track.Artist == "" {
		return nil, ErrMissingTitleArtist
	}
	if update.Title != nil || update.Artist != nil {
		track.Key = TrackKey(track.Artist, track.Title)
	}

	if update.CoverArtURL != nil {
		if track.CoverArtURL, err = optionalURL(*update.CoverArtURL); err != nil {
			return nil, err
		}
	}
	if update.SoundClipURL != nil {
		if track.SoundClipURL, err = optionalURL(*update.SoundClipURL); err != nil {
			return nil, err
		}
	}
	if update.SourceURL != nil {
		if track.SourceURL, err = optionalURL(*update.SourceURL); err != nil {
			return nil, err
		}
	}
	if update.Genre != nil {
		applyGenre(track, *update.Genre)
	}

	track.Genres = NormalizeGenres(track.Genres)

	return c.store.UpdateTrack(id, track)
}

// Delete removes a track. Playlists referencing it keep their entries;
// the playlist manager filters dangling references at read time.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	return c.store.DeleteTrack(id)
}

// NormalizeGenres trims, lowercases, and de-duplicates a genre list,
// dropping empties and preserving first-seen order.
func NormalizeGenres(genres []string) []string {
	if len(genres) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(genres))
	out := make([]string, 0, len(genres))
	for _, g := range genres {
		g = strings.ToLower(strings.Join(strings.Fields(g), " "))
		if g == "" {
			continue
		}
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// applyGenre sets the primary genre (trimmed) and folds it into the
// genre set.
func applyGenre(track *database.Track, genre string) {
	genre = strings.TrimSpace(genre)
	if genre == "" {
		track.PrimaryGenre = nil
		return
	}
	track.PrimaryGenre = &genre
	track.Genres = append(track.Genres, genre)
}

// OptionalURL validates an optional http(s) URL field. Nil and empty
// both resolve to absent; anything else must parse as http or https.
func OptionalURL(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	return optionalURL(*raw)
}

// optionalURL validates an http(s) URL field; empty clears the field.
func optionalURL(raw string) (*string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if !isHTTPURL(raw) {
		return nil, ErrInvalidURL
	}
	return &raw, nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
