package server

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/baileyeubanks/coedit/internal/store"
	"github.com/baileyeubanks/coedit/internal/subtitle"
	"github.com/baileyeubanks/coedit/internal/timeline"
)

// importSubtitles parses an uploaded SRT or VTT file and adds its cues
// to the composition as a subtitle element.
func (s *Server) importSubtitles(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(400, gin.H{"error": "multipart field 'file' is required"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	cues, err := s.importer.Import(c.Request.Context(), f)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	el := timeline.NewSubtitle(cues)
	// span the whole cue range so every cue can display
	if n := len(cues); n > 0 {
		el.StartTime = 0
		el.Duration = cues[n-1].EndTime
		if el.Duration < timeline.MinDuration {
			el.Duration = timeline.MinDuration
		}
	}
	s.store.Add(el)

	created, err := s.store.Element(el.ID)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(201, gin.H{"element": created, "cueCount": len(cues)})
}

// exportSubtitles serializes a subtitle element's cues as SRT or VTT.
func (s *Server) exportSubtitles(c *gin.Context) {
	id := c.Query("element")
	format := c.DefaultQuery("format", "srt")

	el, err := s.store.Element(id)
	if err != nil {
		status := 404
		if !errors.Is(err, store.ErrElementNotFound) {
			status = 500
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	if el.Type != timeline.TypeSubtitle {
		c.JSON(400, gin.H{"error": "element is not a subtitle element"})
		return
	}

	writer, err := subtitle.NewWriter(format)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	contentType := "application/x-subrip"
	if format == "vtt" {
		contentType = "text/vtt"
	}
	c.Header("Content-Disposition", "attachment; filename=subtitles."+format)
	c.Header("Content-Type", contentType)
	c.Status(200)

	if err := writer.Write(c.Writer, el.Cues); err != nil {
		// headers are already sent, logging is all that is left
		slog.Error("failed to write subtitle export", "element", id, "format", format, "error", err)
	}
}
