package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thenoetrevino/quadro/internal/models"
	cardservice "github.com/thenoetrevino/quadro/internal/services/card"
)

type createCardRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Color       string     `json:"color"`
	DueDate     *time.Time `json:"due_date"`
	BudgetID    *string    `json:"budget_id"`
	AssigneeID  *string    `json:"assignee_id"`
	LabelIDs    []string   `json:"label_ids"`
}

// updateCardRequest: absent fields are left alone, null clears the
// nullable references
type updateCardRequest struct {
	Title       *string                 `json:"title"`
	Description *string                 `json:"description"`
	Color       *string                 `json:"color"`
	DueDate     models.Patch[time.Time] `json:"due_date"`
	BudgetID    models.Patch[string]    `json:"budget_id"`
	AssigneeID  models.Patch[string]    `json:"assignee_id"`
	LabelIDs    *[]string               `json:"label_ids"`
}

type reorderCardsRequest struct {
	CardIDs []string `json:"card_ids" binding:"required"`
}

// GetCard returns a card with labels and assignee
func (s *Server) GetCard(c *gin.Context) {
	card, err := s.app.CardService.GetCard(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

// CreateCard appends a card to the column
func (s *Server) CreateCard(c *gin.Context) {
	var req createCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	card, err := s.app.CardService.CreateCard(c.Request.Context(), currentUser(c), cardservice.CreateCardRequest{
		ColumnID:    c.Param("id"),
		Title:       req.Title,
		Description: req.Description,
		Color:       req.Color,
		DueDate:     req.DueDate,
		BudgetID:    req.BudgetID,
		AssigneeID:  req.AssigneeID,
		LabelIDs:    req.LabelIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, card)
}

// UpdateCard patches card fields
func (s *Server) UpdateCard(c *gin.Context) {
	var req updateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	card, err := s.app.CardService.UpdateCard(c.Request.Context(), currentUser(c), cardservice.UpdateCardRequest{
		CardID:      c.Param("id"),
		Title:       req.Title,
		Description: req.Description,
		Color:       req.Color,
		DueDate:     req.DueDate,
		BudgetID:    req.BudgetID,
		AssigneeID:  req.AssigneeID,
		LabelIDs:    req.LabelIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

// DeleteCard removes a card and compacts its column
func (s *Server) DeleteCard(c *gin.Context) {
	if err := s.app.CardService.DeleteCard(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MoveCard moves a card within its column or into another column
func (s *Server) MoveCard(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	card, err := s.app.CardService.MoveCard(c.Request.Context(), currentUser(c), cardservice.MoveCardRequest{
		CardID:   c.Param("id"),
		ColumnID: req.ColumnID,
		ToRank:   *req.ToRank,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

// ReorderCards applies a full permutation of the column's cards
func (s *Server) ReorderCards(c *gin.Context) {
	var req reorderCardsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	cards, err := s.app.CardService.ReorderCards(c.Request.Context(), currentUser(c), c.Param("id"), req.CardIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cards)
}
