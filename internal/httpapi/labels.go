package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	labelservice "github.com/thenoetrevino/quadro/internal/services/label"
)

type createLabelRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type updateLabelRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

// ListLabels returns the board's labels, seeding defaults on first use
func (s *Server) ListLabels(c *gin.Context) {
	labels, err := s.app.LabelService.ListLabels(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, labels)
}

// CreateLabel adds a label to the board
func (s *Server) CreateLabel(c *gin.Context) {
	var req createLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	l, err := s.app.LabelService.CreateLabel(c.Request.Context(), currentUser(c), labelservice.CreateLabelRequest{
		BoardID: c.Param("id"),
		Name:    req.Name,
		Color:   req.Color,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

// UpdateLabel renames or recolors a label
func (s *Server) UpdateLabel(c *gin.Context) {
	var req updateLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	l, err := s.app.LabelService.UpdateLabel(c.Request.Context(), currentUser(c), labelservice.UpdateLabelRequest{
		LabelID: c.Param("id"),
		Name:    req.Name,
		Color:   req.Color,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// DeleteLabel removes a label from the board and its cards
func (s *Server) DeleteLabel(c *gin.Context) {
	if err := s.app.LabelService.DeleteLabel(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
