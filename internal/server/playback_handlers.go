package server

import (
	"image"
	"image/png"
	"log/slog"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
)

// frameBuffer holds the most recent preview frame. The playback driver
// writes from its tick goroutine while HTTP handlers read, so access
// goes through the mutex.
type frameBuffer struct {
	mu       sync.Mutex
	frame    *image.RGBA
	position float64
}

func (b *frameBuffer) set(frame *image.RGBA, position float64) {
	b.mu.Lock()
	b.frame = frame
	b.position = position
	b.mu.Unlock()
}

func (b *frameBuffer) get() (*image.RGBA, float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frame, b.position
}

func (s *Server) getPlayback(c *gin.Context) {
	c.JSON(200, gin.H{
		"position": s.player.Position(),
		"playing":  s.player.Playing(),
	})
}

func (s *Server) playbackPlay(c *gin.Context) {
	s.player.Play()
	c.JSON(200, gin.H{"playing": true, "position": s.player.Position()})
}

func (s *Server) playbackPause(c *gin.Context) {
	s.player.Pause()
	c.JSON(200, gin.H{"playing": false, "position": s.player.Position()})
}

func (s *Server) playbackSeek(c *gin.Context) {
	var req struct {
		Time *float64 `json:"time" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "time is required"})
		return
	}

	s.player.Seek(*req.Time)
	c.JSON(200, gin.H{"position": s.player.Position()})
}

func (s *Server) playbackRate(c *gin.Context) {
	var req struct {
		Rate float64 `json:"rate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Rate == 0 {
		c.JSON(400, gin.H{"error": "rate must be a non-zero number"})
		return
	}

	s.player.SetRate(req.Rate)
	c.JSON(200, gin.H{"rate": req.Rate})
}

func (s *Server) playbackStep(c *gin.Context) {
	var req struct {
		Delta *float64 `json:"delta" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "delta is required"})
		return
	}

	s.player.Step(*req.Delta)
	c.JSON(200, gin.H{"position": s.player.Position()})
}

func (s *Server) playbackFrame(c *gin.Context) {
	frame, position := s.frames.get()
	if frame == nil {
		c.JSON(404, gin.H{"error": "no frame rendered yet"})
		return
	}

	c.Header("Content-Type", "image/png")
	c.Header("X-Playback-Position", strconv.FormatFloat(position, 'f', 3, 64))
	if err := png.Encode(c.Writer, frame); err != nil {
		slog.Error("failed to write preview frame", "error", err)
	}
}
