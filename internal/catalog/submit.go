// file: internal/catalog/submit.go
// version: 1.1.0
// guid: 7d5e6f8a-9b0c-4d1e-2f3a-4b5c6d7e8f9a

package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/mrodavis/sound-circle-be/internal/database"
	"github.com/mrodavis/sound-circle-be/internal/metrics"
)

// LookupStatus is the typed outcome of a provider lookup. Callers treat
// NoMatch and Failed identically (no enrichment this time); the split
// exists for logging and metrics.
type LookupStatus int

const (
	LookupFound LookupStatus = iota
	LookupNoMatch
	LookupFailed
)

func (s LookupStatus) String() string {
	switch s {
	case LookupFound:
		return "found"
	case LookupNoMatch:
		return "no_match"
	default:
		return "failed"
	}
}

// Enrichment holds whatever metadata a provider could resolve. Zero
// values mean "nothing found" for that field.
type Enrichment struct {
	CoverArtURL  string
	SoundClipURL string
	Genre        string
	SourceURL    string
	ProviderID   string
}

// Provider resolves missing track metadata from an external catalog. A
// Provider must never return an error: failures collapse to
// (Enrichment{}, LookupFailed).
type Provider interface {
	Lookup(ctx context.Context, title, artist string) (Enrichment, LookupStatus)
}

// Draft carries caller-supplied track fields prior to persistence.
type Draft struct {
	Title        string   `json:"title"`
	Artist       string   `json:"artist"`
	Album        *string  `json:"album"`
	ReleaseYear  *int     `json:"releaseYear"`
	DurationMs   *int     `json:"durationMs"`
	CoverArtURL  *string  `json:"coverArtUrl"`
	SoundClipURL *string  `json:"soundClipUrl"`
	SourceURL    *string  `json:"sourceUrl"`
	Genre        *string  `json:"genre"`
	Genres       []string `json:"genres"`
}

// Submit creates or finds the track a draft describes and reports whether
// a new record was created.
//
// The dedupe key is derived from the draft's artist and title. When a
// track with that key already exists it is returned untouched: the first
// writer wins, and a duplicate submission's fields are never merged in.
// For a new track, the provider is consulted once iff enrichment is
// enabled and the draft is missing cover art or a sound clip; per field,
// caller-supplied values beat provider values beat null. A provider
// failure never fails the submission.
func (c *Catalog) Submit(ctx context.Context, draft Draft) (*database.Track, bool, error) {
	title := strings.TrimSpace(draft.Title)
	artist := strings.TrimSpace(draft.Artist)
	if title == "" || artist == "" {
		return nil, false, ErrMissingTitleArtist
	}
	if draft.ReleaseYear != nil && (*draft.ReleaseYear < 1800 || *draft.ReleaseYear > 9999) {
		return nil, false, fmt.Errorf("%w: releaseYear must be within 1800-9999", ErrInvalidField)
	}
	if draft.DurationMs != nil && *draft.DurationMs < 0 {
		return nil, false, fmt.Errorf("%w: durationMs must not be negative", ErrInvalidField)
	}

	cover, err := OptionalURL(draft.CoverArtURL)
	if err != nil {
		return nil, false, err
	}
	clip, err := OptionalURL(draft.SoundClipURL)
	if err != nil {
		return nil, false, err
	}
	source, err := OptionalURL(draft.SourceURL)
	if err != nil {
		return nil, false, err
	}

	key := TrackKey(artist, title)

	existing, err := c.store.GetTrackByKey(key)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		metrics.IncTrackSubmission("existing")
		return existing, false, nil
	}

	meta := c.enrich(ctx, title, artist, cover != nil, clip != nil)

	track := &database.Track{
		Key:          key,
		Title:        title,
		Artist:       artist,
		Album:        draft.Album,
		ReleaseYear:  draft.ReleaseYear,
		DurationMs:   draft.DurationMs,
		CoverArtURL:  mergeField(cover, meta.CoverArtURL),
		SoundClipURL: mergeField(clip, meta.SoundClipURL),
		SourceURL:    mergeField(source, meta.SourceURL),
	}
	if meta.ProviderID != "" {
		track.ITunesID = &meta.ProviderID
	}

	genre := ""
	if draft.Genre != nil && strings.TrimSpace(*draft.Genre) != "" {
		genre = *draft.Genre
	} else if meta.Genre != "" {
		genre = meta.Genre
	}
	track.Genres = append([]string{}, draft.Genres...)
	if genre != "" {
		applyGenre(track, genre)
	}
	track.Genres = NormalizeGenres(track.Genres)

	created, err := c.store.CreateTrack(track)
	if errors.Is(err, database.ErrDuplicateKey) {
		// Lost a creation race on the key index; the winner's record is
		// the canonical one.
		winner, findErr := c.store.GetTrackByKey(key)
		if findErr == nil && winner != nil {
			metrics.IncTrackSubmission("existing")
			return winner, false, nil
		}
		return nil, false, err
	}
	if err != nil {
		return nil, false, err
	}

	metrics.IncTrackSubmission("created")
	return created, true, nil
}

// enrich consults the provider when it could contribute a missing field.
func (c *Catalog) enrich(ctx context.Context, title, artist string, haveCover, haveClip bool) Enrichment {
	if !c.enrichmentEnabled || c.provider == nil {
		return Enrichment{}
	}
	if haveCover && haveClip {
		return Enrichment{}
	}

	meta, status := c.provider.Lookup(ctx, title, artist)
	metrics.IncEnrichmentLookup(status.String())
	if status != LookupFound {
		log.Printf("[WARN] enrichment lookup for %q / %q returned %s", artist, title, status)
		return Enrichment{}
	}
	return meta
}

func mergeField(caller *string, provider string) *string {
	if caller != nil {
		return caller
	}
	if provider != "" && isHTTPURL(provider) {
		return &provider
	}
	return nil
}
