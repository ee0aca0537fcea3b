// file: internal/server/soundbyte_handlers.go
// version: 1.0.0
// guid: 1f4a6c8e-0b2d-4395-a7c9-3e5b7d9f1a52

package server

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrodavis/sound-circle-be/internal/database"
	servermiddleware "github.com/mrodavis/sound-circle-be/internal/server/middleware"
)

// listSoundBytes handles GET /soundbytes
func (s *Server) listSoundBytes(c *gin.Context) {
	bytes, err := s.store.ListSoundBytes()
	if err != nil {
		RespondWithInternalError(c, "failed to list sound bytes")
		return
	}
	c.JSON(http.StatusOK, gin.H{"soundBytes": bytes})
}

// getSoundByte handles GET /soundbytes/:id
func (s *Server) getSoundByte(c *gin.Context) {
	id := c.Param("id")
	sb, err := s.store.GetSoundByteByID(id)
	if err != nil {
		RespondWithInternalError(c, "failed to load sound byte")
		return
	}
	if sb == nil {
		RespondWithNotFound(c, "sound byte", id)
		return
	}
	c.JSON(http.StatusOK, sb)
}

// createSoundByte handles POST /soundbytes
func (s *Server) createSoundByte(c *gin.Context) {
	user, ok := servermiddleware.CurrentUser(c)
	if !ok {
		RespondWithUnauthorized(c, "not authenticated")
		return
	}

	var req struct {
		TrackID *string `json:"trackId"`
		Artist  string  `json:"artist"`
		Title   string  `json:"title"`
		Album   string  `json:"album"`
		URL     string  `json:"url"`
		Notes   string  `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindError(c, err)
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Artist = strings.TrimSpace(req.Artist)
	if req.Title == "" || req.Artist == "" {
		RespondWithValidationError(c, "title/artist", "must not be empty")
		return
	}

	if req.TrackID != nil {
		track, err := s.store.GetTrackByID(*req.TrackID)
		if err != nil {
			RespondWithInternalError(c, "failed to resolve track")
			return
		}
		if track == nil {
			RespondWithNotFound(c, "track", *req.TrackID)
			return
		}
	}

	sb, err := s.store.CreateSoundByte(&database.SoundByte{
		AuthorID: user.ID,
		TrackID:  req.TrackID,
		Artist:   req.Artist,
		Title:    req.Title,
		Album:    req.Album,
		URL:      req.URL,
		Notes:    req.Notes,
	})
	if err != nil {
		RespondWithInternalError(c, "failed to create sound byte")
		return
	}

	if req.TrackID != nil {
		if err := s.store.IncrementTrackSoundBytes(*req.TrackID); err != nil {
			log.Printf("[WARN] failed to bump sound byte counter for track %s: %v", *req.TrackID, err)
		}
	}

	c.JSON(http.StatusCreated, sb)
}

// loadOwnSoundByte resolves :id and enforces author ownership.
func (s *Server) loadOwnSoundByte(c *gin.Context) (*database.SoundByte, *database.User, bool) {
	user, ok := servermiddleware.CurrentUser(c)
	if !ok {
		RespondWithUnauthorized(c, "not authenticated")
		return nil, nil, false
	}

	id := c.Param("id")
	sb, err := s.store.GetSoundByteByID(id)
	if err != nil {
		RespondWithInternalError(c, "failed to load sound byte")
		return nil, nil, false
	}
	if sb == nil {
		RespondWithNotFound(c, "sound byte", id)
		return nil, nil, false
	}
	if sb.AuthorID != user.ID {
		RespondWithForbidden(c, "cannot modify another user's sound byte")
		return nil, nil, false
	}
	return sb, user, true
}

// updateSoundByte handles PUT /soundbytes/:id
func (s *Server) updateSoundByte(c *gin.Context) {
	sb, _, ok := s.loadOwnSoundByte(c)
	if !ok {
		return
	}

	var req struct {
		Artist *string `json:"artist"`
		Title  *string `json:"title"`
		Album  *string `json:"album"`
		URL    *string `json:"url"`
		Notes  *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindError(c, err)
		return
	}

	if req.Artist != nil {
		sb.Artist = strings.TrimSpace(*req.Artist)
	}
	if req.Title != nil {
		sb.Title = strings.TrimSpace(*req.Title)
	}
	if sb.Title == "" || sb.Artist == "" {
		RespondWithValidationError(c, "title/artist", "must not be empty")
		return
	}
	if req.Album != nil {
		sb.Album = *req.Album
	}
	if req.URL != nil {
		sb.URL = *req.URL
	}
	if req.Notes != nil {
		sb.Notes = *req.Notes
	}

	updated, err := s.store.UpdateSoundByte(sb.ID, sb)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			RespondWithNotFound(c, "sound byte", sb.ID)
			return
		}
		RespondWithInternalError(c, "failed to update sound byte")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// deleteSoundByte handles DELETE /soundbytes/:id
func (s *Server) deleteSoundByte(c *gin.Context) {
	sb, _, ok := s.loadOwnSoundByte(c)
	if !ok {
		return
	}

	if err := s.store.DeleteSoundByte(sb.ID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			RespondWithNotFound(c, "sound byte", sb.ID)
			return
		}
		RespondWithInternalError(c, "failed to delete sound byte")
		return
	}
	RespondWithNoContent(c)
}

// createComment handles POST /soundbytes/:id/comments
func (s *Server) createComment(c *gin.Context) {
	user, ok := servermiddleware.CurrentUser(c)
	if !ok {
		RespondWithUnauthorized(c, "not authenticated")
		return
	}

	id := c.Param("id")
	sb, err := s.store.GetSoundByteByID(id)
	if err != nil {
		RespondWithInternalError(c, "failed to load sound byte")
		return
	}
	if sb == nil {
		RespondWithNotFound(c, "sound byte", id)
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindError(c, err)
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		RespondWithValidationError(c, "text", "must not be empty")
		return
	}

	comment, err := s.store.CreateComment(id, &database.Comment{
		AuthorID: user.ID,
		Text:     req.Text,
	})
	if err != nil {
		RespondWithInternalError(c, "failed to create comment")
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// loadOwnComment resolves :commentId under :id and enforces author ownership.
func (s *Server) loadOwnComment(c *gin.Context) (*database.Comment, bool) {
	user, ok := servermiddleware.CurrentUser(c)
	if !ok {
		RespondWithUnauthorized(c, "not authenticated")
		return nil, false
	}

	soundByteID := c.Param("id")
	commentID := c.Param("commentId")

	comments, err := s.store.ListComments(soundByteID)
	if err != nil {
		RespondWithInternalError(c, "failed to load comments")
		return nil, false
	}
	for i := range comments {
		if comments[i].ID == commentID {
			if comments[i].AuthorID != user.ID {
				RespondWithForbidden(c, "cannot modify another user's comment")
				return nil, false
			}
			return &comments[i], true
		}
	}
	RespondWithNotFound(c, "comment", commentID)
	return nil, false
}

// updateComment handles PUT /soundbytes/:id/comments/:commentId
func (s *Server) updateComment(c *gin.Context) {
	comment, ok := s.loadOwnComment(c)
	if !ok {
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindError(c, err)
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		RespondWithValidationError(c, "text", "must not be empty")
		return
	}

	updated, err := s.store.UpdateComment(comment.SoundByteID, comment.ID, req.Text)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			RespondWithNotFound(c, "comment", comment.ID)
			return
		}
		RespondWithInternalError(c, "failed to update comment")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// deleteComment handles DELETE /soundbytes/:id/comments/:commentId
func (s *Server) deleteComment(c *gin.Context) {
	comment, ok := s.loadOwnComment(c)
	if !ok {
		return
	}

	if err := s.store.DeleteComment(comment.SoundByteID, comment.ID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			RespondWithNotFound(c, "comment", comment.ID)
			return
		}
		RespondWithInternalError(c, "failed to delete comment")
		return
	}
	RespondWithNoContent(c)
}
