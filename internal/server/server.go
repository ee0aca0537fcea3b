// file: internal/server/server.go
// version: 2.1.0
// guid: 1b4d6f8a-0c2e-4593-a7b9-3d5f7a9c1e50

package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mrodavis/sound-circle-be/internal/catalog"
	"github.com/mrodavis/sound-circle-be/internal/config"
	"github.com/mrodavis/sound-circle-be/internal/database"
	"github.com/mrodavis/sound-circle-be/internal/itunes"
	"github.com/mrodavis/sound-circle-be/internal/metrics"
	"github.com/mrodavis/sound-circle-be/internal/playlist"
	servermiddleware "github.com/mrodavis/sound-circle-be/internal/server/middleware"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	store      database.Store
	catalog    *catalog.Catalog
	playlists  *playlist.Manager
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// GetDefaultServerConfig builds a ServerConfig from the application config.
func GetDefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:         config.AppConfig.Port,
		Host:         config.AppConfig.Host,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewServer creates a new server instance wired to the global store.
func NewServer() *Server {
	store := database.GlobalStore

	var provider catalog.Provider
	if config.AppConfig.EnrichmentEnabled {
		provider = itunes.NewClient(config.AppConfig.ITunesBaseURL, config.AppConfig.ITunesTimeout)
	}

	return NewServerWith(store, catalog.NewCatalog(store, provider, config.AppConfig.EnrichmentEnabled))
}

// NewServerWith creates a server around an explicit store and catalog.
// Tests use this to inject fakes.
func NewServerWith(store database.Store, cat *catalog.Catalog) *Server {
	router := gin.Default()

	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	limiter := servermiddleware.NewIPRateLimiter(
		config.AppConfig.RateLimitPerMinute, config.AppConfig.RateLimitBurst)
	router.Use(limiter.Middleware())

	// Register metrics (idempotent)
	metrics.Register()

	server := &Server{
		router:    router,
		store:     store,
		catalog:   cat,
		playlists: playlist.NewManager(store),
	}

	server.setupRoutes()

	return server
}

// Start starts the HTTP server and blocks until an interrupt signal.
func (s *Server) Start(cfg ServerConfig) error {
	s.httpServer = &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:        s.router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Periodic maintenance: refresh gauges and prune dead sessions.
	ticker := time.NewTicker(60 * time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.refreshGauges()
				if n, err := s.store.DeleteExpiredSessions(time.Now()); err != nil {
					log.Printf("[WARN] session cleanup failed: %v", err)
				} else if n > 0 {
					log.Printf("[DEBUG] pruned %d expired sessions", n)
				}
			case <-quit:
				return
			}
		}
	}()

	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("Server exited")
	return nil
}

func (s *Server) refreshGauges() {
	if tracks, err := s.store.CountTracks(); err == nil {
		metrics.SetTracks(tracks)
	} else {
		log.Printf("[DEBUG] failed to count tracks for metrics: %v", err)
	}
	if users, err := s.store.CountUsers(); err == nil {
		metrics.SetUsers(users)
	} else {
		log.Printf("[DEBUG] failed to count users for metrics: %v", err)
	}
}

// setupRoutes configures all the routes
func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint (standard path)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/health", s.healthCheck)

	// Public auth routes
	s.router.POST("/auth/sign-up", s.signUp)
	s.router.POST("/auth/sign-in", s.signIn)

	// Public catalog reads
	s.router.GET("/tracks", s.searchTracks)
	s.router.GET("/tracks/:id", s.getTrack)

	// Public sound byte reads
	s.router.GET("/soundbytes", s.listSoundBytes)
	s.router.GET("/soundbytes/:id", s.getSoundByte)

	// Everything below requires a valid session
	authed := s.router.Group("/", servermiddleware.RequireAuth(s.store))
	{
		authed.GET("/auth/me", s.me)
		authed.POST("/auth/sign-out", s.signOut)

		authed.POST("/tracks", s.submitTrack)
		authed.PUT("/tracks/:id", s.updateTrack)
		authed.PATCH("/tracks/:id", s.updateTrack)
		authed.DELETE("/tracks/:id", s.deleteTrack)
		authed.POST("/tracks/:id/like", s.likeTrack)

		authed.GET("/users", s.listUsers)
		authed.GET("/users/:userId", s.getUser)
		authed.GET("/users/:userId/playlist", s.getPlaylist)
		authed.POST("/users/:userId/playlist", s.addToPlaylist)
		authed.DELETE("/users/:userId/playlist/:trackId", s.removeFromPlaylist)

		authed.POST("/soundbytes", s.createSoundByte)
		authed.PUT("/soundbytes/:id", s.updateSoundByte)
		authed.DELETE("/soundbytes/:id", s.deleteSoundByte)
		authed.POST("/soundbytes/:id/comments", s.createComment)
		authed.PUT("/soundbytes/:id/comments/:commentId", s.updateComment)
		authed.DELETE("/soundbytes/:id/comments/:commentId", s.deleteComment)
	}
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
