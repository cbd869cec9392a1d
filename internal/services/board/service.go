package board

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/thenoetrevino/quadro/internal/database"
	"github.com/thenoetrevino/quadro/internal/events"
	"github.com/thenoetrevino/quadro/internal/models"
	"github.com/thenoetrevino/quadro/internal/mutator"
)

// Service defines all board-related business operations
type Service interface {
	// Read operations
	ListBoards(ctx context.Context, userID string) ([]*models.BoardSummary, error)
	GetBoard(ctx context.Context, userID, boardID string) (*models.BoardView, error)

	// Write operations
	CreateBoard(ctx context.Context, userID string, req CreateBoardRequest) (*models.Board, error)
	UpdateBoard(ctx context.Context, userID string, req UpdateBoardRequest) (*models.Board, error)
	DeleteBoard(ctx context.Context, userID, boardID string) error

	// Membership
	AddMember(ctx context.Context, userID, boardID, email string) (*models.UserRef, error)
	RemoveMember(ctx context.Context, userID, boardID, memberID string) error
}

// CreateBoardRequest encapsulates data for creating a board
type CreateBoardRequest struct {
	Title       string
	Description string
	Color       string // Optional: empty means DefaultBoardColor
}

// UpdateBoardRequest encapsulates data for updating a board
// Fields with pointers are optional - nil means don't update
type UpdateBoardRequest struct {
	BoardID     string
	Title       *string
	Description *string
	Color       *string
}

type service struct {
	mut *mutator.Mutator
}

// NewService creates a new board service
func NewService(mut *mutator.Mutator) Service {
	return &service{mut: mut}
}

// ListBoards returns the boards the user owns or belongs to, newest first.
// Only aggregate counts are read; cards are never materialized.
func (s *service) ListBoards(ctx context.Context, userID string) ([]*models.BoardSummary, error) {
	var out []*models.BoardSummary
	err := s.mut.View(ctx, func(tx *database.Tx) error {
		var err error
		out, err = tx.ListBoardSummaries(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*models.BoardSummary{}
	}
	return out, nil
}

// GetBoard assembles the full board view in one read transaction:
// columns by rank, each with its cards by rank
func (s *service) GetBoard(ctx context.Context, userID, boardID string) (*models.BoardView, error) {
	var view *models.BoardView
	err := s.mut.View(ctx, func(tx *database.Tx) error {
		access, err := authorize(ctx, tx, boardID, userID, models.AccessMember)
		if err != nil {
			return err
		}

		b, err := tx.GetBoard(ctx, boardID)
		if err != nil {
			return err
		}
		columns, err := tx.ListColumns(ctx, boardID)
		if err != nil {
			return err
		}
		cards, err := tx.ListCardsByBoard(ctx, boardID)
		if err != nil {
			return err
		}
		cardLabels, err := tx.ListLabelsByCard(ctx, boardID)
		if err != nil {
			return err
		}
		labels, err := tx.ListLabels(ctx, boardID)
		if err != nil {
			return err
		}
		members, err := tx.ListBoardMembers(ctx, boardID)
		if err != nil {
			return err
		}

		view = assemble(b, access, columns, cards, cardLabels)
		view.Labels = labels
		view.Members = members
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// assemble groups rank-ordered cards under rank-ordered columns
func assemble(b *models.Board, access models.Access, columns []*models.Column, cards []*models.Card, cardLabels map[string][]*models.Label) *models.BoardView {
	view := &models.BoardView{
		Board:        *b,
		Access:       access,
		Columns:      make([]*models.ColumnView, 0, len(columns)),
		TotalColumns: len(columns),
		TotalCards:   len(cards),
	}

	byColumn := make(map[string]*models.ColumnView, len(columns))
	for _, c := range columns {
		cv := &models.ColumnView{Column: *c, Cards: []*models.Card{}}
		byColumn[c.ID] = cv
		view.Columns = append(view.Columns, cv)
	}
	for _, card := range cards {
		if labels, ok := cardLabels[card.ID]; ok {
			card.Labels = labels
		}
		if cv, ok := byColumn[card.ColumnID]; ok {
			cv.Cards = append(cv.Cards, card)
		}
	}
	return view
}

// CreateBoard creates a board with the default columns at ranks 0..n-1
func (s *service) CreateBoard(ctx context.Context, userID string, req CreateBoardRequest) (*models.Board, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Color == "" {
		req.Color = models.DefaultBoardColor
	}
	if err := validateTitle(req.Title); err != nil {
		return nil, err
	}
	if !models.ValidColor(req.Color) {
		return nil, ErrInvalidColor
	}

	now := database.Now()
	b := &models.Board{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Color:       req.Color,
		OwnerID:     userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.mut.Do(ctx, "board.create", nil, func(ctx context.Context, tx *database.Tx) (*events.Event, error) {
		if err := tx.InsertBoard(ctx, b); err != nil {
			return nil, err
		}
		for i, dc := range models.DefaultColumns {
			if err := tx.InsertColumn(ctx, &models.Column{
				ID:        uuid.NewString(),
				BoardID:   b.ID,
				CreatorID: userID,
				Title:     dc.Title,
				Color:     dc.Color,
				Order:     i,
				CreatedAt: now,
				UpdatedAt: now,
			}); err != nil {
				return nil, err
			}
		}
		return events.BoardChanged(b.ID, "", b.ID), nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBoard changes board details. Only the owner may update.
func (s *service) UpdateBoard(ctx context.Context, userID string, req UpdateBoardRequest) (*models.Board, error) {
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		req.Title = &trimmed
		if err := validateTitle(trimmed); err != nil {
			return nil, err
		}
	}
	if req.Color != nil && !models.ValidColor(*req.Color) {
		return nil, ErrInvalidColor
	}

	var b *models.Board
	err := s.mut.Do(ctx, "board.update", nil, func(ctx context.Context, tx *database.Tx) (*events.Event, error) {
		if _, err := authorize(ctx, tx, req.BoardID, userID, models.AccessOwner); err != nil {
			return nil, err
		}

		var err error
		b, err = tx.GetBoard(ctx, req.BoardID)
		if err != nil {
			return nil, err
		}
		if req.Title != nil {
			b.Title = *req.Title
		}
		if req.Description != nil {
			b.Description = *req.Description
		}
		if req.Color != nil {
			b.Color = *req.Color
		}
		b.UpdatedAt = database.Now()

		if err := tx.UpdateBoard(ctx, b); err != nil {
			return nil, err
		}
		return events.BoardChanged(b.ID, "", b.ID), nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// DeleteBoard removes the board and everything under it. Only the owner may delete.
func (s *service) DeleteBoard(ctx context.Context, userID, boardID string) error {
	return s.mut.Do(ctx, "board.delete", []string{boardID}, func(ctx context.Context, tx *database.Tx) (*events.Event, error) {
		if _, err := authorize(ctx, tx, boardID, userID, models.AccessOwner); err != nil {
			return nil, err
		}
		if err := tx.DeleteBoard(ctx, boardID); err != nil {
			return nil, err
		}
		return events.BoardChanged(boardID, "", boardID), nil
	})
}

// AddMember grants the user with the given email member access
func (s *service) AddMember(ctx context.Context, userID, boardID, email string) (*models.UserRef, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var ref *models.UserRef
	err := s.mut.Do(ctx, "board.add_member", nil, func(ctx context.Context, tx *database.Tx) (*events.Event, error) {
		if _, err := authorize(ctx, tx, boardID, userID, models.AccessOwner); err != nil {
			return nil, err
		}

		u, err := tx.GetUserByEmail(ctx, email)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		if err != nil {
			return nil, err
		}
		if u.ID == userID {
			return nil, ErrOwnerIsMember
		}

		if err := tx.AddBoardMember(ctx, boardID, u.ID); err != nil {
			return nil, err
		}
		ref = u.Ref()
		return events.BoardChanged(boardID, "", u.ID), nil
	})
	if err != nil {
		return nil, err
	}
	return ref, nil
}

// RemoveMember revokes a member's access
func (s *service) RemoveMember(ctx context.Context, userID, boardID, memberID string) error {
	return s.mut.Do(ctx, "board.remove_member", nil, func(ctx context.Context, tx *database.Tx) (*events.Event, error) {
		if _, err := authorize(ctx, tx, boardID, userID, models.AccessOwner); err != nil {
			return nil, err
		}

		removed, err := tx.RemoveBoardMember(ctx, boardID, memberID)
		if err != nil {
			return nil, err
		}
		if !removed {
			return nil, ErrMemberNotFound
		}
		return events.BoardChanged(boardID, "", memberID), nil
	})
}

// authorize returns ErrBoardNotFound unless the user has at least required
// access. Missing boards and forbidden boards look the same.
func authorize(ctx context.Context, tx *database.Tx, boardID, userID string, required models.Access) (models.Access, error) {
	access, err := tx.BoardAccess(ctx, boardID, userID)
	if err != nil {
		return models.AccessNone, err
	}
	if !access.Allows(required) {
		return models.AccessNone, ErrBoardNotFound
	}
	return access, nil
}

func validateTitle(title string) error {
	if title == "" {
		return ErrEmptyTitle
	}
	if len(title) > 255 {
		return ErrTitleTooLong
	}
	return nil
}
