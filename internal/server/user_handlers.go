// file: internal/server/user_handlers.go
// version: 1.0.0
// guid: 9d2f4b6c-8e0a-4173-b5d7-1f3a5c7e9b38

package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrodavis/sound-circle-be/internal/catalog"
	"github.com/mrodavis/sound-circle-be/internal/playlist"
	servermiddleware "github.com/mrodavis/sound-circle-be/internal/server/middleware"
)

// requirePlaylistOwner resolves the :userId param and enforces that the
// caller only touches their own playlist.
func (s *Server) requirePlaylistOwner(c *gin.Context) (string, bool) {
	user, ok := servermiddleware.CurrentUser(c)
	if !ok {
		RespondWithUnauthorized(c, "not authenticated")
		return "", false
	}
	userID := c.Param("userId")
	if userID != user.ID {
		RespondWithForbidden(c, "cannot modify another user's playlist")
		return "", false
	}
	return userID, true
}

// listUsers handles GET /users
func (s *Server) listUsers(c *gin.Context) {
	users, err := s.store.ListUsers()
	if err != nil {
		RespondWithInternalError(c, "failed to list users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// getUser handles GET /users/:userId
func (s *Server) getUser(c *gin.Context) {
	id := c.Param("userId")
	user, err := s.store.GetUserByID(id)
	if err != nil {
		RespondWithInternalError(c, "failed to load user")
		return
	}
	if user == nil {
		RespondWithNotFound(c, "user", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// getPlaylist handles GET /users/:userId/playlist
func (s *Server) getPlaylist(c *gin.Context) {
	userID, ok := s.requirePlaylistOwner(c)
	if !ok {
		return
	}

	tracks, err := s.playlists.List(userID)
	if err != nil {
		RespondWithInternalError(c, "failed to load playlist")
		return
	}
	c.JSON(http.StatusOK, gin.H{"playlist": tracks})
}

// addToPlaylist handles POST /users/:userId/playlist. The body either
// references a catalog track by id or names a song inline (quick-add).
func (s *Server) addToPlaylist(c *gin.Context) {
	userID, ok := s.requirePlaylistOwner(c)
	if !ok {
		return
	}

	var req struct {
		TrackID      string  `json:"trackId"`
		Title        string  `json:"title"`
		Artist       string  `json:"artist"`
		SoundClipURL *string `json:"soundClipUrl"`
		CoverArtURL  *string `json:"coverArtUrl"`
		SourceURL    *string `json:"sourceUrl"`
		Genre        *string `json:"genre"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindError(c, err)
		return
	}

	if req.TrackID != "" {
		tracks, err := s.playlists.Add(userID, req.TrackID)
		if err != nil {
			if errors.Is(err, playlist.ErrUnknownTrack) {
				RespondWithNotFound(c, "track", req.TrackID)
				return
			}
			RespondWithInternalError(c, "failed to update playlist")
			return
		}
		c.JSON(http.StatusCreated, gin.H{"playlist": tracks})
		return
	}

	tracks, track, err := s.playlists.AddDraft(userID, playlist.Draft{
		Title:        req.Title,
		Artist:       req.Artist,
		SoundClipURL: req.SoundClipURL,
		CoverArtURL:  req.CoverArtURL,
		SourceURL:    req.SourceURL,
		Genre:        req.Genre,
	})
	if err != nil {
		switch {
		case errors.Is(err, playlist.ErrMissingTitleArtist):
			RespondWithValidationError(c, "title/artist", "required when trackId is absent")
		case errors.Is(err, catalog.ErrInvalidURL):
			RespondWithBadRequest(c, err.Error())
		default:
			RespondWithInternalError(c, "failed to update playlist")
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"playlist": tracks, "track": track})
}

// removeFromPlaylist handles DELETE /users/:userId/playlist/:trackId
func (s *Server) removeFromPlaylist(c *gin.Context) {
	userID, ok := s.requirePlaylistOwner(c)
	if !ok {
		return
	}

	tracks, err := s.playlists.Remove(userID, c.Param("trackId"))
	if err != nil {
		RespondWithInternalError(c, "failed to update playlist")
		return
	}
	c.JSON(http.StatusOK, gin.H{"playlist": tracks})
}
