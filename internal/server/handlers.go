package server

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/baileyeubanks/coedit/internal/editor"
	"github.com/baileyeubanks/coedit/internal/project"
	"github.com/baileyeubanks/coedit/internal/storage"
	"github.com/baileyeubanks/coedit/internal/store"
	"github.com/baileyeubanks/coedit/internal/timeline"
)

// getProject returns the current composition as a document.
func (s *Server) getProject(c *gin.Context) {
	name := c.DefaultQuery("name", "untitled")
	c.JSON(200, project.Snapshot(s.store, name))
}

// putProject replaces the current composition with the request body.
func (s *Server) putProject(c *gin.Context) {
	var doc project.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	if doc.Version != project.CurrentVersion {
		c.JSON(400, gin.H{"error": project.ErrUnknownVersion.Error()})
		return
	}

	project.Load(s.store, doc)
	c.JSON(200, gin.H{"message": "project loaded"})
}

func (s *Server) listProjects(c *gin.Context) {
	names, err := s.repo.List(c.Request.Context())
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"projects": names})
}

// saveProject persists the current composition under the given name.
func (s *Server) saveProject(c *gin.Context) {
	doc := project.Snapshot(s.store, c.Param("name"))
	if err := s.repo.Save(c.Request.Context(), doc); err != nil {
		status := 500
		if errors.Is(err, project.ErrInvalidName) {
			status = 400
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"message": "project saved", "name": doc.Name})
}

// openProject loads a stored project into the live composition.
func (s *Server) openProject(c *gin.Context) {
	doc, err := s.repo.Open(c.Request.Context(), c.Param("name"))
	if err != nil {
		status := 500
		switch {
		case errors.Is(err, storage.ErrNotFound):
			status = 404
		case errors.Is(err, project.ErrInvalidName), errors.Is(err, project.ErrUnknownVersion):
			status = 400
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	project.Load(s.store, doc)
	c.JSON(200, doc)
}

func (s *Server) deleteProject(c *gin.Context) {
	err := s.repo.Delete(c.Request.Context(), c.Param("name"))
	if err != nil {
		status := 500
		if errors.Is(err, storage.ErrNotFound) {
			status = 404
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"message": "project deleted"})
}

// createElement adds an element to the composition. The body is a full
// element; a missing ID is generated.
func (s *Server) createElement(c *gin.Context) {
	var el timeline.Element
	if err := c.ShouldBindJSON(&el); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	if el.Type == "" {
		c.JSON(400, gin.H{"error": "element type is required"})
		return
	}

	if el.ID == "" {
		el.ID = uuid.NewString()
	}
	s.store.Add(el)

	created, err := s.store.Element(el.ID)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(201, created)
}

func (s *Server) updateElement(c *gin.Context) {
	var patch timeline.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	if err := s.store.Update(id, patch); err != nil {
		c.JSON(statusForStoreError(err), gin.H{"error": err.Error()})
		return
	}

	el, err := s.store.Element(id)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, el)
}

func (s *Server) deleteElement(c *gin.Context) {
	id := c.Param("id")
	if _, err := s.store.Element(id); err != nil {
		c.JSON(404, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.Delete(id); err != nil {
		c.JSON(statusForStoreError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"message": "element deleted"})
}

func (s *Server) duplicateElement(c *gin.Context) {
	id := c.Param("id")
	if _, err := s.store.Element(id); err != nil {
		c.JSON(404, gin.H{"error": err.Error()})
		return
	}

	ids := s.store.Duplicate(id)
	if len(ids) == 0 {
		c.JSON(500, gin.H{"error": "duplicate produced no element"})
		return
	}

	el, err := s.store.Element(ids[0])
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(201, el)
}

type splitRequest struct {
	Time float64 `json:"time"`
}

// splitElement cuts an element in two at a composition time.
func (s *Server) splitElement(c *gin.Context) {
	var req splitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	rightID, err := s.engine.Split(c.Param("id"), req.Time)
	if err != nil {
		c.JSON(statusForEditorError(err), gin.H{"error": err.Error()})
		return
	}

	right, err := s.store.Element(rightID)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"rightId": rightID, "right": right})
}

type materializeRequest struct {
	Regions []editor.Region `json:"regions" binding:"required"`
}

// materializeElement replaces an element with back-to-back clips cut
// from its source regions.
func (s *Server) materializeElement(c *gin.Context) {
	var req materializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	ids, err := s.engine.Materialize(c.Param("id"), req.Regions)
	if err != nil {
		c.JSON(statusForEditorError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"elementIds": ids})
}

func (s *Server) undo(c *gin.Context) {
	if err := s.store.Undo(); err != nil {
		c.JSON(409, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"elements": s.store.Elements()})
}

func (s *Server) redo(c *gin.Context) {
	if err := s.store.Redo(); err != nil {
		c.JSON(409, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"elements": s.store.Elements()})
}

// snapPreview returns the snapped time for a candidate without mutating
// anything.
func (s *Server) snapPreview(c *gin.Context) {
	t, err := strconv.ParseFloat(c.Query("t"), 64)
	if err != nil {
		c.JSON(400, gin.H{"error": "query parameter t must be a number"})
		return
	}

	snapped := s.engine.SnapTime(t, c.Query("exclude"))
	c.JSON(200, gin.H{"time": t, "snapped": snapped})
}

func statusForStoreError(err error) int {
	switch {
	case errors.Is(err, store.ErrElementNotFound):
		return 404
	case errors.Is(err, store.ErrElementLocked):
		return 409
	default:
		return 500
	}
}

func statusForEditorError(err error) int {
	switch {
	case errors.Is(err, store.ErrElementNotFound):
		return 404
	case errors.Is(err, store.ErrElementLocked), errors.Is(err, editor.ErrLockedElement):
		return 409
	case errors.Is(err, editor.ErrSplitOutOfRange),
		errors.Is(err, editor.ErrSplitTooSmall),
		errors.Is(err, editor.ErrNoRegions),
		errors.Is(err, editor.ErrInvalidRegion):
		return 400
	default:
		return 500
	}
}
