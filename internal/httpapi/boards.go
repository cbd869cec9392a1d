package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	boardservice "github.com/thenoetrevino/quadro/internal/services/board"
)

type createBoardRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

type updateBoardRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

type addMemberRequest struct {
	Email string `json:"email" binding:"required"`
}

// ListBoards returns summaries of the caller's boards
func (s *Server) ListBoards(c *gin.Context) {
	boards, err := s.app.BoardService.ListBoards(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, boards)
}

// GetBoard returns the full board view
func (s *Server) GetBoard(c *gin.Context) {
	view, err := s.app.BoardService.GetBoard(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// CreateBoard creates a board with the default columns
func (s *Server) CreateBoard(c *gin.Context) {
	var req createBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	board, err := s.app.BoardService.CreateBoard(c.Request.Context(), currentUser(c), boardservice.CreateBoardRequest{
		Title:       req.Title,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, board)
}

// UpdateBoard changes title, description or color
func (s *Server) UpdateBoard(c *gin.Context) {
	var req updateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	board, err := s.app.BoardService.UpdateBoard(c.Request.Context(), currentUser(c), boardservice.UpdateBoardRequest{
		BoardID:     c.Param("id"),
		Title:       req.Title,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// DeleteBoard removes a board and everything on it
func (s *Server) DeleteBoard(c *gin.Context) {
	if err := s.app.BoardService.DeleteBoard(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddMember adds a user, by email, to the board
func (s *Server) AddMember(c *gin.Context) {
	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	member, err := s.app.BoardService.AddMember(c.Request.Context(), currentUser(c), c.Param("id"), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

// RemoveMember removes a user from the board
func (s *Server) RemoveMember(c *gin.Context) {
	if err := s.app.BoardService.RemoveMember(c.Request.Context(), currentUser(c), c.Param("id"), c.Param("userId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
