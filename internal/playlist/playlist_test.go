// file: internal/playlist/playlist_test.go
// version: 2.0.0
// guid: 8b6e0c4d-3a1f-4927-9d5b-7f1e3c5a7d90

package playlist

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrodavis/sound-circle-be/internal/catalog"
	"github.com/mrodavis/sound-circle-be/internal/database"
)

func newTestManager(t *testing.T) (*Manager, database.Store) {
	t.Helper()
	store, err := database.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewManager(store), store
}

func seedTrack(t *testing.T, store database.Store, title, artist string) *database.Track {
	t.Helper()
	track, err := store.CreateTrack(&database.Track{
		Key:    artist + " — " + title,
		Title:  title,
		Artist: artist,
	})
	require.NoError(t, err)
	return track
}

func trackIDs(tracks []database.Track) []string {
	ids := make([]string, 0, len(tracks))
	for _, tr := range tracks {
		ids = append(ids, tr.ID)
	}
	return ids
}

func TestListEmptyPlaylist(t *testing.T) {
	mgr, _ := newTestManager(t)

	list, err := mgr.List("user-1")
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)
}

func TestAddPrependsNewestFirst(t *testing.T) {
	mgr, store := newTestManager(t)
	a := seedTrack(t, store, "blue", "joni mitchell")
	b := seedTrack(t, store, "river", "joni mitchell")

	_, err := mgr.Add("user-1", a.ID)
	require.NoError(t, err)
	list, err := mgr.Add("user-1", b.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{b.ID, a.ID}, trackIDs(list))
}

func TestAddIsIdempotent(t *testing.T) {
	mgr, store := newTestManager(t)
	a := seedTrack(t, store, "blue", "joni mitchell")
	b := seedTrack(t, store, "river", "joni mitchell")

	_, err := mgr.Add("user-1", a.ID)
	require.NoError(t, err)
	_, err = mgr.Add("user-1", b.ID)
	require.NoError(t, err)

	// Re-adding a track keeps its existing position.
	list, err := mgr.Add("user-1", a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID, a.ID}, trackIDs(list))
}

func TestAddUnknownTrack(t *testing.T) {
	mgr, _ := newTestManager(t)

	_, err := mgr.Add("user-1", "no-such-id")
	assert.ErrorIs(t, err, ErrUnknownTrack)
}

func TestRemoveIsIdempotent(t *testing.T) {
	mgr, store := newTestManager(t)
	a := seedTrack(t, store, "blue", "joni mitchell")
	b := seedTrack(t, store, "river", "joni mitchell")

	_, err := mgr.Add("user-1", a.ID)
	require.NoError(t, err)
	_, err = mgr.Add("user-1", b.ID)
	require.NoError(t, err)

	list, err := mgr.Remove("user-1", a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, trackIDs(list))

	list, err = mgr.Remove("user-1", a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, trackIDs(list))
}

func TestPlaylistsAreIsolatedPerUser(t *testing.T) {
	mgr, store := newTestManager(t)
	a := seedTrack(t, store, "blue", "joni mitchell")

	_, err := mgr.Add("user-1", a.ID)
	require.NoError(t, err)

	list, err := mgr.List("user-2")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListDropsDanglingReferences(t *testing.T) {
	mgr, store := newTestManager(t)
	a := seedTrack(t, store, "blue", "joni mitchell")
	b := seedTrack(t, store, "river", "joni mitchell")

	_, err := mgr.Add("user-1", a.ID)
	require.NoError(t, err)
	_, err = mgr.Add("user-1", b.ID)
	require.NoError(t, err)

	require.NoError(t, store.DeleteTrack(a.ID))

	list, err := mgr.List("user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, trackIDs(list))
}

func TestAddDraftCreatesThenReuses(t *testing.T) {
	mgr, store := newTestManager(t)

	list, track, err := mgr.AddDraft("user-1", Draft{Title: "Blue", Artist: "Joni Mitchell"})
	require.NoError(t, err)
	require.NotNil(t, track)
	assert.Equal(t, []string{track.ID}, trackIDs(list))

	// Same draft again resolves to the same catalog row.
	list, again, err := mgr.AddDraft("user-2", Draft{Title: "Blue", Artist: "Joni Mitchell"})
	require.NoError(t, err)
	assert.Equal(t, track.ID, again.ID)
	assert.Equal(t, []string{track.ID}, trackIDs(list))

	total, err := store.CountTracks()
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestAddDraftRequiresTitleAndArtist(t *testing.T) {
	mgr, _ := newTestManager(t)

	_, _, err := mgr.AddDraft("user-1", Draft{Title: "  ", Artist: "Joni Mitchell"})
	assert.ErrorIs(t, err, ErrMissingTitleArtist)
}

func TestAddDraftRejectsMalformedURLs(t *testing.T) {
	mgr, store := newTestManager(t)

	bad := "not a url"
	_, _, err := mgr.AddDraft("user-1", Draft{Title: "Blue", Artist: "Joni Mitchell", SoundClipURL: &bad})
	assert.ErrorIs(t, err, catalog.ErrInvalidURL)

	_, _, err = mgr.AddDraft("user-1", Draft{Title: "Blue", Artist: "Joni Mitchell", CoverArtURL: &bad})
	assert.ErrorIs(t, err, catalog.ErrInvalidURL)

	// Nothing persisted, nothing queued.
	total, err := store.CountTracks()
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	list, err := mgr.List("user-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAddDraftCarriesOptionalFields(t *testing.T) {
	mgr, store := newTestManager(t)

	clip := "https://audio.example/blue.m4a"
	cover := "https://img.example/blue.jpg"
	source := "https://music.example/blue"
	genre := "Folk"
	_, track, err := mgr.AddDraft("user-1", Draft{
		Title: "Blue", Artist: "Joni Mitchell",
		SoundClipURL: &clip, CoverArtURL: &cover, SourceURL: &source, Genre: &genre,
	})
	require.NoError(t, err)
	require.NotNil(t, track)

	stored, err := store.GetTrackByID(track.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.NotNil(t, stored.CoverArtURL)
	assert.Equal(t, cover, *stored.CoverArtURL)
	require.NotNil(t, stored.SourceURL)
	assert.Equal(t, source, *stored.SourceURL)
	require.NotNil(t, stored.PrimaryGenre)
	assert.Equal(t, genre, *stored.PrimaryGenre)
	assert.Equal(t, []string{genre}, stored.Genres)
}

func TestAddDraftClipMismatchResolvesByKey(t *testing.T) {
	mgr, store := newTestManager(t)

	clip := "https://audio.example/blue.m4a"
	_, first, err := mgr.AddDraft("user-1", Draft{Title: "Blue", Artist: "Joni Mitchell", SoundClipURL: &clip})
	require.NoError(t, err)

	// A draft with a different clip does not match exactly, but the
	// canonical key collision resolves back to the existing row.
	otherClip := "https://audio.example/blue-live.m4a"
	_, second, err := mgr.AddDraft("user-1", Draft{Title: "Blue", Artist: "Joni Mitchell", SoundClipURL: &otherClip})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	total, err := store.CountTracks()
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}
