// file: internal/server/track_handlers.go
// version: 1.1.0
// guid: 5f8a0c2e-4b6d-4839-ad1f-7b9d1e3f5a94

package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrodavis/sound-circle-be/internal/catalog"
	"github.com/mrodavis/sound-circle-be/internal/database"
)

// searchTracks handles GET /tracks?q=&page=&limit=
func (s *Server) searchTracks(c *gin.Context) {
	query := c.Query("q")
	page := ParseQueryInt(c, "page", 1)
	limit := ParseQueryInt(c, "limit", 0)

	result, err := s.catalog.Search(c.Request.Context(), query, page, limit)
	if err != nil {
		RespondWithInternalError(c, "failed to search tracks")
		return
	}
	c.JSON(http.StatusOK, result)
}

// getTrack handles GET /tracks/:id
func (s *Server) getTrack(c *gin.Context) {
	id := c.Param("id")
	track, err := s.catalog.FindByID(id)
	if err != nil {
		RespondWithInternalError(c, "failed to load track")
		return
	}
	if track == nil {
		RespondWithNotFound(c, "track", id)
		return
	}
	c.JSON(http.StatusOK, track)
}

// submitTrack handles POST /tracks. A dedupe-key hit returns the
// existing record with 200; a fresh insert returns 201.
func (s *Server) submitTrack(c *gin.Context) {
	var draft catalog.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		HandleBindError(c, err)
		return
	}

	track, created, err := s.catalog.Submit(c.Request.Context(), draft)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrMissingTitleArtist),
			errors.Is(err, catalog.ErrInvalidField),
			errors.Is(err, catalog.ErrInvalidURL):
			RespondWithBadRequest(c, err.Error())
		case errors.Is(err, database.ErrDuplicateKey):
			// Lost a key race and the winner vanished before re-read.
			RespondWithConflict(c, "another track already has this title and artist")
		default:
			RespondWithInternalError(c, "failed to submit track")
		}
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, track)
}

// updateTrack handles PUT and PATCH /tracks/:id
func (s *Server) updateTrack(c *gin.Context) {
	id := c.Param("id")

	var update catalog.TrackUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		HandleBindError(c, err)
		return
	}

	track, err := s.catalog.Update(c.Request.Context(), id, update)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			RespondWithNotFound(c, "track", id)
		case errors.Is(err, database.ErrDuplicateKey):
			RespondWithConflict(c, "another track already has this title and artist")
		case errors.Is(err, catalog.ErrMissingTitleArtist), errors.Is(err, catalog.ErrInvalidURL):
			RespondWithBadRequest(c, err.Error())
		default:
			RespondWithInternalError(c, "failed to update track")
		}
		return
	}
	c.JSON(http.StatusOK, track)
}

// deleteTrack handles DELETE /tracks/:id
func (s *Server) deleteTrack(c *gin.Context) {
	id := c.Param("id")
	if err := s.catalog.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			RespondWithNotFound(c, "track", id)
			return
		}
		RespondWithInternalError(c, "failed to delete track")
		return
	}
	RespondWithNoContent(c)
}

// likeTrack handles POST /tracks/:id/like
func (s *Server) likeTrack(c *gin.Context) {
	id := c.Param("id")
	if err := s.store.IncrementTrackLikes(id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			RespondWithNotFound(c, "track", id)
			return
		}
		RespondWithInternalError(c, "failed to like track")
		return
	}

	track, err := s.catalog.FindByID(id)
	if err != nil || track == nil {
		RespondWithInternalError(c, "failed to reload track")
		return
	}
	c.JSON(http.StatusOK, track)
}
