// Package server exposes the editing engine and export pipeline over
// HTTP.
package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/baileyeubanks/coedit/config"
	"github.com/baileyeubanks/coedit/internal/editor"
	"github.com/baileyeubanks/coedit/internal/encoder"
	"github.com/baileyeubanks/coedit/internal/export"
	"github.com/baileyeubanks/coedit/internal/playback"
	"github.com/baileyeubanks/coedit/internal/project"
	"github.com/baileyeubanks/coedit/internal/storage"
	"github.com/baileyeubanks/coedit/internal/store"
	"github.com/baileyeubanks/coedit/internal/subtitle"
)

// Server handles HTTP requests for the composition editor
type Server struct {
	cfg    *config.Config
	router *gin.Engine

	store        *store.Store
	engine       *editor.Engine
	repo         *project.Repository
	jobManager   *export.Manager
	orchestrator *export.Orchestrator
	importer     subtitle.Importer
	player       *playback.Driver
	frames       *frameBuffer
}

// New creates a new HTTP server instance
func New(cfg *config.Config, backend storage.Storage) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	st := store.New(cfg.Editing.HistoryDepth)
	engine := editor.New(st, editor.Options{
		PixelsPerSecond: cfg.Editing.PixelsPerSecond,
		SnapThresholdPx: cfg.Editing.SnapThresholdPx,
		SnapEnabled:     cfg.Editing.SnapEnabled,
	})

	frames := &frameBuffer{}
	player := playback.NewDriver(st, playback.Options{
		Width:          cfg.Canvas.Width,
		Height:         cfg.Canvas.Height,
		Background:     cfg.Canvas.Background,
		TickInterval:   time.Duration(cfg.Playback.TickIntervalMs) * time.Millisecond,
		DriftTolerance: float64(cfg.Playback.DriftToleranceMs) / 1000,
	}, frames.set)

	server := &Server{
		cfg:          cfg,
		router:       router,
		store:        st,
		engine:       engine,
		repo:         project.NewRepository(backend),
		jobManager:   export.NewManager(),
		orchestrator: export.NewOrchestrator(encoder.NewFFmpegEncoder(), backend, cfg.Export.StagingDir),
		importer:     subtitle.NewCompositeImporter(),
		player:       player,
		frames:       frames,
	}

	server.setupRoutes()
	return server, nil
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes() {
	// Add CORS middleware
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check endpoint
	s.router.GET("/health", s.healthCheck)

	// API endpoints
	api := s.router.Group("/api/v1")
	{
		api.GET("/project", s.getProject)
		api.PUT("/project", s.putProject)
		api.GET("/projects", s.listProjects)
		api.POST("/projects/:name", s.saveProject)
		api.GET("/projects/:name", s.openProject)
		api.DELETE("/projects/:name", s.deleteProject)

		api.POST("/elements", s.createElement)
		api.PATCH("/elements/:id", s.updateElement)
		api.DELETE("/elements/:id", s.deleteElement)
		api.POST("/elements/:id/duplicate", s.duplicateElement)
		api.POST("/elements/:id/split", s.splitElement)
		api.POST("/elements/:id/materialize", s.materializeElement)

		api.POST("/undo", s.undo)
		api.POST("/redo", s.redo)
		api.GET("/snap", s.snapPreview)

		api.GET("/playback", s.getPlayback)
		api.POST("/playback/play", s.playbackPlay)
		api.POST("/playback/pause", s.playbackPause)
		api.POST("/playback/seek", s.playbackSeek)
		api.POST("/playback/rate", s.playbackRate)
		api.POST("/playback/step", s.playbackStep)
		api.GET("/playback/frame", s.playbackFrame)

		api.POST("/export", s.startExport)
		api.GET("/export/jobs/:id", s.getExportJob)
		api.DELETE("/export/jobs/:id", s.cancelExportJob)
		api.GET("/export/jobs", s.listExportJobs)

		api.POST("/subtitles/import", s.importSubtitles)
		api.GET("/subtitles/export", s.exportSubtitles)
	}
}

// Start starts the HTTP server
func (s *Server) Start(port string) error {
	return s.router.Run(":" + port)
}

// Close stops the preview driver and releases its media sources.
func (s *Server) Close() {
	s.player.Close()
}

// healthCheck handles health check requests
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
		"service":   "coedit",
	})
}
