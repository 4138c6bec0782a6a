package server

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/baileyeubanks/coedit/internal/export"
	"github.com/baileyeubanks/coedit/internal/progress"
)

// exportRequest is the body for starting an export job. Zero values
// fall back to the server configuration.
type exportRequest struct {
	OutputName string  `json:"outputName" binding:"required"`
	FPS        float64 `json:"fps"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Bitrate    string  `json:"bitrate"`
	Format     string  `json:"format"`
	AudioPath  string  `json:"audioPath"`
	Publish    bool    `json:"publish"`
}

// startExport kicks off a background export of the current composition.
func (s *Server) startExport(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	if req.FPS <= 0 {
		req.FPS = s.cfg.Export.FPS
	}
	if req.Width <= 0 {
		req.Width = s.cfg.Canvas.Width
	}
	if req.Height <= 0 {
		req.Height = s.cfg.Canvas.Height
	}
	if req.Bitrate == "" {
		req.Bitrate = s.cfg.Export.Bitrate
	}
	if req.Format == "" {
		req.Format = s.cfg.Export.Format
	}

	duration := s.store.Duration()
	if duration <= 0 {
		c.JSON(400, gin.H{"error": "composition has no duration"})
		return
	}

	outputPath := filepath.Join(s.cfg.Storage.OutputDir, req.OutputName+"."+req.Format)

	renderReq := export.Request{
		Elements:   s.store.Elements(),
		Duration:   duration,
		Width:      req.Width,
		Height:     req.Height,
		FPS:        req.FPS,
		Bitrate:    req.Bitrate,
		Format:     req.Format,
		Background: s.cfg.Canvas.Background,
		AudioPath:  req.AudioPath,
		OutputPath: outputPath,
	}
	if req.Publish {
		renderReq.PublishName = req.OutputName + "." + req.Format
	}

	job, ctx := s.jobManager.CreateJob(outputPath)
	go s.runExport(ctx, job.ID, renderReq)

	c.JSON(202, gin.H{
		"jobId":   job.ID,
		"status":  "accepted",
		"message": "Export started",
	})
}

// runExport executes one export job in the background.
func (s *Server) runExport(ctx context.Context, jobID string, req export.Request) {
	s.jobManager.MarkProcessing(jobID)

	tracker := progress.NewTracker()
	tracker.AddListener(func(e progress.Event) {
		s.jobManager.Record(jobID, e)
	})

	err := s.orchestrator.Export(ctx, req, tracker)
	if err != nil && errors.Is(err, context.Canceled) {
		slog.Info("export job cancelled", "jobId", jobID)
		return
	}

	s.jobManager.Complete(jobID, err)
	if err != nil {
		slog.Error("export job failed", "jobId", jobID, "error", err)
	}
}

// getExportJob handles job status requests
func (s *Server) getExportJob(c *gin.Context) {
	job, err := s.jobManager.GetJob(c.Param("id"))
	if err != nil {
		c.JSON(404, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, job)
}

// cancelExportJob handles job cancellation requests
func (s *Server) cancelExportJob(c *gin.Context) {
	err := s.jobManager.CancelJob(c.Param("id"))
	if err != nil {
		status := 400
		if errors.Is(err, export.ErrJobNotFound) {
			status = 404
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"message": "Job cancelled"})
}

// listExportJobs handles listing all jobs with pagination
func (s *Server) listExportJobs(c *gin.Context) {
	page := 1
	pageSize := export.DefaultPageSize

	if p := c.Query("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if ps := c.Query("pageSize"); ps != "" {
		if parsed, err := strconv.Atoi(ps); err == nil && parsed > 0 && parsed <= export.MaxPageSize {
			pageSize = parsed
		}
	}

	c.JSON(200, s.jobManager.ListJobs(page, pageSize))
}
