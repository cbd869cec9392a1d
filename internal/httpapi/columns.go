package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	columnservice "github.com/thenoetrevino/quadro/internal/services/column"
)

type createColumnRequest struct {
	Title string `json:"title"`
	Color string `json:"color"`
}

type updateColumnRequest struct {
	Title *string `json:"title"`
	Color *string `json:"color"`
}

// moveRequest targets a rank; column_id is only read for cards
type moveRequest struct {
	ColumnID string `json:"column_id"`
	ToRank   *int   `json:"to_rank" binding:"required"`
}

type reorderColumnsRequest struct {
	ColumnIDs []string `json:"column_ids" binding:"required"`
}

// CreateColumn appends a column to the board
func (s *Server) CreateColumn(c *gin.Context) {
	var req createColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	col, err := s.app.ColumnService.CreateColumn(c.Request.Context(), currentUser(c), columnservice.CreateColumnRequest{
		BoardID: c.Param("id"),
		Title:   req.Title,
		Color:   req.Color,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, col)
}

// UpdateColumn changes title or color
func (s *Server) UpdateColumn(c *gin.Context) {
	var req updateColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	col, err := s.app.ColumnService.UpdateColumn(c.Request.Context(), currentUser(c), columnservice.UpdateColumnRequest{
		ColumnID: c.Param("id"),
		Title:    req.Title,
		Color:    req.Color,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, col)
}

// DeleteColumn removes a column with its cards
func (s *Server) DeleteColumn(c *gin.Context) {
	if err := s.app.ColumnService.DeleteColumn(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MoveColumn moves a column to a new rank
func (s *Server) MoveColumn(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	col, err := s.app.ColumnService.MoveColumn(c.Request.Context(), currentUser(c), c.Param("id"), *req.ToRank)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, col)
}

// ReorderColumns applies a full permutation of the board's columns
func (s *Server) ReorderColumns(c *gin.Context) {
	var req reorderColumnsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	cols, err := s.app.ColumnService.ReorderColumns(c.Request.Context(), currentUser(c), c.Param("id"), req.ColumnIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cols)
}
