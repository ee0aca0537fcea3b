// file: internal/server/server_test.go
// version: 2.0.0
// guid: 3b6d8f0a-2c4e-4817-99b1-5d7f9b1d3e64

package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrodavis/sound-circle-be/internal/catalog"
	"github.com/mrodavis/sound-circle-be/internal/config"
	"github.com/mrodavis/sound-circle-be/internal/database"
)

func newTestServer(t *testing.T) (*Server, database.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config.AppConfig = config.Config{
		SessionTTL:         time.Hour,
		RateLimitPerMinute: 60000,
		RateLimitBurst:     10000,
	}

	store, err := database.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return NewServerWith(store, catalog.NewCatalog(store, nil, false)), store
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// signUpUser registers a user and returns (userID, token).
func signUpUser(t *testing.T, srv *Server, username string) (string, string) {
	t.Helper()
	w := doJSON(t, srv, http.MethodPost, "/auth/sign-up", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "correct horse",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeBody(t, w)
	user := body["user"].(map[string]any)
	return user["id"].(string), body["token"].(string)
}

func TestHealthCheck(t *testing.T) {
	srv, _ := newTestServer(t)
	w := doJSON(t, srv, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeBody(t, w)["status"])
}

func TestSignUpValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/auth/sign-up", "", gin.H{
		"username": "joni", "email": "joni@example.com", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/auth/sign-up", "", gin.H{
		"username": "", "email": "joni@example.com", "password": "correct horse",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignUpDuplicate(t *testing.T) {
	srv, _ := newTestServer(t)
	signUpUser(t, srv, "joni")

	w := doJSON(t, srv, http.MethodPost, "/auth/sign-up", "", gin.H{
		"username": "joni", "email": "other@example.com", "password": "correct horse",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSignInAndMe(t *testing.T) {
	srv, _ := newTestServer(t)
	signUpUser(t, srv, "joni")

	w := doJSON(t, srv, http.MethodPost, "/auth/sign-in", "", gin.H{
		"username": "joni", "password": "correct horse",
	})
	require.Equal(t, http.StatusOK, w.Code)
	token := decodeBody(t, w)["token"].(string)

	w = doJSON(t, srv, http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	user := decodeBody(t, w)["user"].(map[string]any)
	assert.Equal(t, "joni", user["username"])
	// password hash must never serialize
	_, leaked := user["passwordHash"]
	assert.False(t, leaked)
}

func TestSignInWrongPassword(t *testing.T) {
	srv, _ := newTestServer(t)
	signUpUser(t, srv, "joni")

	w := doJSON(t, srv, http.MethodPost, "/auth/sign-in", "", gin.H{
		"username": "joni", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSignOutRevokesSession(t *testing.T) {
	srv, _ := newTestServer(t)
	_, token := signUpUser(t, srv, "joni")

	w := doJSON(t, srv, http.MethodPost, "/auth/sign-out", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, srv, http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSubmitTrackRequiresAuth(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/tracks", "", gin.H{
		"title": "Blue", "artist": "Joni Mitchell",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSubmitTrackCreatedThenExisting(t *testing.T) {
	srv, _ := newTestServer(t)
	_, token := signUpUser(t, srv, "joni")

	w := doJSON(t, srv, http.MethodPost, "/tracks", token, gin.H{
		"title": "Blue", "artist": "Joni Mitchell",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := decodeBody(t, w)

	// Equivalent key resubmission returns the existing record with 200.
	w = doJSON(t, srv, http.MethodPost, "/tracks", token, gin.H{
		"title": " BLUE ", "artist": "joni  mitchell",
	})
	require.Equal(t, http.StatusOK, w.Code)
	second := decodeBody(t, w)
	assert.Equal(t, first["id"], second["id"])
}

func TestSubmitTrackValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	_, token := signUpUser(t, srv, "joni")

	w := doJSON(t, srv, http.MethodPost, "/tracks", token, gin.H{"title": "Blue"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/tracks", token, gin.H{
		"title": "Blue", "artist": "Joni Mitchell", "coverArtUrl": "file:///etc/passwd",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// vanishingWinnerStore simulates losing a key race where the winning
// row is deleted before it can be re-read.
type vanishingWinnerStore struct {
	database.Store
}

func (s *vanishingWinnerStore) GetTrackByKey(key string) (*database.Track, error) {
	return nil, nil
}

func (s *vanishingWinnerStore) CreateTrack(track *database.Track) (*database.Track, error) {
	return nil, database.ErrDuplicateKey
}

func TestSubmitTrackUnresolvableRaceConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	config.AppConfig = config.Config{
		SessionTTL:         time.Hour,
		RateLimitPerMinute: 60000,
		RateLimitBurst:     10000,
	}

	inner, err := database.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = inner.Close() })

	store := &vanishingWinnerStore{Store: inner}
	srv := NewServerWith(store, catalog.NewCatalog(store, nil, false))
	_, token := signUpUser(t, srv, "joni")

	w := doJSON(t, srv, http.MethodPost, "/tracks", token, gin.H{
		"title": "Blue", "artist": "Joni Mitchell",
	})
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
}

func TestGetTrackNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	w := doJSON(t, srv, http.MethodGet, "/tracks/no-such-id", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchTracksEnvelope(t *testing.T) {
	srv, _ := newTestServer(t)
	_, token := signUpUser(t, srv, "joni")

	for _, title := range []string{"Blue", "River", "Carey"} {
		w := doJSON(t, srv, http.MethodPost, "/tracks", token, gin.H{
			"title": title, "artist": "Joni Mitchell",
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, srv, http.MethodGet, "/tracks?q=joni&page=1&limit=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(3), body["total"])
	assert.Equal(t, float64(2), body["limit"])
	assert.Equal(t, true, body["hasNext"])
	assert.Len(t, body["items"], 2)

	// The q parameter actually filters.
	w = doJSON(t, srv, http.MethodGet, "/tracks?q=coltrane", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decodeBody(t, w)["total"])
}

func TestUpdateTrackConflict(t *testing.T) {
	srv, _ := newTestServer(t)
	_, token := signUpUser(t, srv, "joni")

	w := doJSON(t, srv, http.MethodPost, "/tracks", token, gin.H{
		"title": "Blue", "artist": "Joni Mitchell",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/tracks", token, gin.H{
		"title": "River", "artist": "Joni Mitchell",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	riverID := decodeBody(t, w)["id"].(string)

	w = doJSON(t, srv, http.MethodPatch, "/tracks/"+riverID, token, gin.H{"title": "Blue"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUpdateTrackPut(t *testing.T) {
	srv, _ := newTestServer(t)
	_, token := signUpUser(t, srv, "joni")

	w := doJSON(t, srv, http.MethodPost, "/tracks", token, gin.H{
		"title": "Blue", "artist": "Joni Mitchell",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeBody(t, w)["id"].(string)

	w = doJSON(t, srv, http.MethodPut, "/tracks/"+id, token, gin.H{"title": "Blue (Remastered)"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Blue (Remastered)", decodeBody(t, w)["title"])
}

func TestDeleteTrack(t *testing.T) {
	srv, _ := newTestServer(t)
	_, token := signUpUser(t, srv, "joni")

	w := doJSON(t, srv, http.MethodPost, "/tracks", token, gin.H{
		"title": "Blue", "artist": "Joni Mitchell",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeBody(t, w)["id"].(string)

	w = doJSON(t, srv, http.MethodDelete, "/tracks/"+id, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, srv, http.MethodDelete, "/tracks/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLikeTrack(t *testing.T) {
	srv, _ := newTestServer(t)
	_, token := signUpUser(t, srv, "joni")

	w := doJSON(t, srv, http.MethodPost, "/tracks", token, gin.H{
		"title": "Blue", "artist": "Joni Mitchell",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeBody(t, w)["id"].(string)

	w = doJSON(t, srv, http.MethodPost, "/tracks/"+id+"/like", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody(t, w)["likesCount"])
}

func TestPlaylistOwnerOnly(t *testing.T) {
	srv, _ := newTestServer(t)
	joniID, _ := signUpUser(t, srv, "joni")
	_, milesToken := signUpUser(t, srv, "miles")

	w := doJSON(t, srv, http.MethodGet, "/users/"+joniID+"/playlist", milesToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/users/"+joniID+"/playlist", milesToken, gin.H{
		"title": "Blue", "artist": "Joni Mitchell",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPlaylistFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	userID, token := signUpUser(t, srv, "joni")

	// Quick-add by name creates the track and prepends it.
	w := doJSON(t, srv, http.MethodPost, "/users/"+userID+"/playlist", token, gin.H{
		"title": "Blue", "artist": "Joni Mitchell",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeBody(t, w)
	trackID := body["track"].(map[string]any)["id"].(string)
	require.Len(t, body["playlist"], 1)

	// Add an existing catalog track by id.
	w = doJSON(t, srv, http.MethodPost, "/tracks", token, gin.H{
		"title": "So What", "artist": "Miles Davis",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	soWhatID := decodeBody(t, w)["id"].(string)

	w = doJSON(t, srv, http.MethodPost, "/users/"+userID+"/playlist", token, gin.H{
		"trackId": soWhatID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	playlistItems := decodeBody(t, w)["playlist"].([]any)
	require.Len(t, playlistItems, 2)
	assert.Equal(t, soWhatID, playlistItems[0].(map[string]any)["id"])

	// Remove is idempotent.
	w = doJSON(t, srv, http.MethodDelete, "/users/"+userID+"/playlist/"+trackID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["playlist"], 1)

	w = doJSON(t, srv, http.MethodDelete, "/users/"+userID+"/playlist/"+trackID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["playlist"], 1)
}

func TestPlaylistAddUnknownTrack(t *testing.T) {
	srv, _ := newTestServer(t)
	userID, token := signUpUser(t, srv, "joni")

	w := doJSON(t, srv, http.MethodPost, "/users/"+userID+"/playlist", token, gin.H{
		"trackId": "no-such-id",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlaylistQuickAddRejectsBadClipURL(t *testing.T) {
	srv, store := newTestServer(t)
	userID, token := signUpUser(t, srv, "joni")

	w := doJSON(t, srv, http.MethodPost, "/users/"+userID+"/playlist", token, gin.H{
		"title": "Blue", "artist": "Joni Mitchell", "soundClipUrl": "not a url",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	total, err := store.CountTracks()
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestSoundByteFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	_, joniToken := signUpUser(t, srv, "joni")
	_, milesToken := signUpUser(t, srv, "miles")

	w := doJSON(t, srv, http.MethodPost, "/soundbytes", joniToken, gin.H{
		"title": "Blue", "artist": "Joni Mitchell", "notes": "that opening chord",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sbID := decodeBody(t, w)["id"].(string)

	// Anyone can read.
	w = doJSON(t, srv, http.MethodGet, "/soundbytes/"+sbID, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Only the author can edit.
	w = doJSON(t, srv, http.MethodPut, "/soundbytes/"+sbID, milesToken, gin.H{"notes": "nah"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, srv, http.MethodPut, "/soundbytes/"+sbID, joniToken, gin.H{"notes": "still holds up"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "still holds up", decodeBody(t, w)["notes"])

	// Comments: anyone authed can comment, only the author can edit theirs.
	w = doJSON(t, srv, http.MethodPost, "/soundbytes/"+sbID+"/comments", milesToken, gin.H{"text": "so good"})
	require.Equal(t, http.StatusCreated, w.Code)
	commentID := decodeBody(t, w)["id"].(string)

	w = doJSON(t, srv, http.MethodPut, "/soundbytes/"+sbID+"/comments/"+commentID, joniToken, gin.H{"text": "hijack"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, srv, http.MethodPut, "/soundbytes/"+sbID+"/comments/"+commentID, milesToken, gin.H{"text": "SO good"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, srv, http.MethodDelete, "/soundbytes/"+sbID+"/comments/"+commentID, milesToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, srv, http.MethodDelete, "/soundbytes/"+sbID, joniToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestSoundByteWithTrackBumpsCounter(t *testing.T) {
	srv, store := newTestServer(t)
	_, token := signUpUser(t, srv, "joni")

	w := doJSON(t, srv, http.MethodPost, "/tracks", token, gin.H{
		"title": "Blue", "artist": "Joni Mitchell",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	trackID := decodeBody(t, w)["id"].(string)

	w = doJSON(t, srv, http.MethodPost, "/soundbytes", token, gin.H{
		"title": "Blue", "artist": "Joni Mitchell", "trackId": trackID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	track, err := store.GetTrackByID(trackID)
	require.NoError(t, err)
	require.NotNil(t, track)
	assert.Equal(t, 1, track.SoundBytesCount)
}
