// file: internal/server/auth_handlers.go
// version: 2.0.0
// guid: 7b0d2f4a-6c8e-4951-bf3a-9d1f3b5d7c16

package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrodavis/sound-circle-be/internal/config"
	"github.com/mrodavis/sound-circle-be/internal/database"
	servermiddleware "github.com/mrodavis/sound-circle-be/internal/server/middleware"
)

const minPasswordLength = 8

func isHTTPSRequest(c *gin.Context) bool {
	if c.Request.TLS != nil {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(c.GetHeader("X-Forwarded-Proto")), "https")
}

func setSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     servermiddleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   isHTTPSRequest(c),
		SameSite: http.SameSiteStrictMode,
	})
}

func clearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     servermiddleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isHTTPSRequest(c),
		SameSite: http.SameSiteStrictMode,
	})
}

// signUp handles POST /auth/sign-up
func (s *Server) signUp(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindError(c, err)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Username == "" || req.Email == "" {
		RespondWithValidationError(c, "username/email", "must not be empty")
		return
	}
	if len(req.Password) < minPasswordLength {
		RespondWithValidationError(c, "password", "minimum 8 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		RespondWithInternalError(c, "failed to hash password")
		return
	}

	user, err := s.store.CreateUser(req.Username, req.Email, string(hash))
	if err != nil {
		if errors.Is(err, database.ErrDuplicateKey) {
			RespondWithConflict(c, "username or email already taken")
			return
		}
		RespondWithInternalError(c, "failed to create user")
		return
	}

	session, err := s.store.CreateSession(user.ID, config.AppConfig.SessionTTL)
	if err != nil {
		RespondWithInternalError(c, "failed to create session")
		return
	}

	setSessionCookie(c, session.Token, session.ExpiresAt)
	c.JSON(http.StatusCreated, gin.H{
		"user":  user,
		"token": session.Token,
	})
}

// signIn handles POST /auth/sign-in
func (s *Server) signIn(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindError(c, err)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		RespondWithValidationError(c, "username/password", "must not be empty")
		return
	}

	user, err := s.store.GetUserByUsername(req.Username)
	if err != nil || user == nil {
		RespondWithUnauthorized(c, "invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		RespondWithUnauthorized(c, "invalid credentials")
		return
	}

	session, err := s.store.CreateSession(user.ID, config.AppConfig.SessionTTL)
	if err != nil {
		RespondWithInternalError(c, "failed to create session")
		return
	}

	setSessionCookie(c, session.Token, session.ExpiresAt)
	c.JSON(http.StatusOK, gin.H{
		"user":  user,
		"token": session.Token,
	})
}

// me handles GET /auth/me
func (s *Server) me(c *gin.Context) {
	user, ok := servermiddleware.CurrentUser(c)
	if !ok {
		RespondWithUnauthorized(c, "not authenticated")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// signOut handles POST /auth/sign-out
func (s *Server) signOut(c *gin.Context) {
	session, ok := servermiddleware.CurrentSession(c)
	if ok && session != nil {
		_ = s.store.RevokeSession(session.Token)
	}
	clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "signed out"})
}
