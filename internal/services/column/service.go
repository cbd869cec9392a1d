package column

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
	"github.com/thenoetrevino/quadro/internal/ordering"
)

// Service defines all column-related business operations.
// Every write requires board ownership.
type Service interface {
	CreateColumn(ctx context.Context, userID string, req CreateColumnRequest) (*models.Column, error)
	UpdateColumn(ctx context.Context, userID string, req UpdateColumnRequest) (*models.Column, error)
	DeleteColumn(ctx context.Context, userID, columnID string) error
	MoveColumn(ctx context.Context, userID, columnID string, toRank int) (*models.Column, error)
	ReorderColumns(ctx context.Context, userID, boardID string, columnIDs []string) ([]*models.Column, error)
}

// CreateColumnRequest encapsulates data for creating a column
type CreateColumnRequest struct {
	BoardID string
	Title   string
	Color   string // Optional: empty means DefaultColumnColor
}

// UpdateColumnRequest encapsulates data for updating a column
// Fields with pointers are optional - nil means don't update
type UpdateColumnRequest struct {
	ColumnID string
	Title    *string
	Color    *string
}

type service struct {
	mut *mutator.Mutator
}

// NewService creates a new column service
func NewService(mut *mutator.Mutator) Service {
	return &service{mut: mut}
}

// CreateColumn appends a column after the board's last column
func (s *service) CreateColumn(ctx context.Context, userID string, req CreateColumnRequest) (*models.Column, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Color == "" {
		req.Color = models.DefaultColumnColor
	}
	if err := validateTitle(req.Title); err != nil {
		return nil, err
	}
	if !models.ValidColor(req.Color) {
		return nil, ErrInvalidColor
	}

	now := database.Now()
	col := &models.Column{
		ID:        uuid.NewString(),
		BoardID:   req.BoardID,
		CreatorID: userID,
		Title:     req.Title,
		Color:     req.Color,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.mut.Do(ctx, "column.create", []string{req.BoardID}, func(ctx context.Context, tx *database.Tx) (*events.Event, error) {
		if err := authorizeBoard(ctx, tx, req.BoardID, userID); err != nil {
			return nil, err
		}

		last, err := tx.MaxColumnRank(ctx, req.BoardID)
		if err != nil {
			return nil, err
		}
		col.Order = ordering.AppendRank(last)

		if err := tx.InsertColumn(ctx, col); err != nil {
			return nil, err
		}
		return events.BoardChanged(col.BoardID, "", col.ID), nil
	})
	if err != nil {
		return nil, err
	}
	return col, nil
}

// UpdateColumn changes title and color; rank is untouched
func (s *service) UpdateColumn(ctx context.Context, userID string, req UpdateColumnRequest) (*models.Column, error) {
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

	var col *models.Column
	err := s.mut.Do(ctx, "column.update", nil, func(ctx context.Context, tx *database.Tx) (*events.Event, error) {
		var err error
		col, err = authorizeColumn(ctx, tx, req.ColumnID, userID)
		if err != nil {
			return nil, err
		}

		if req.Title != nil {
			col.Title = *req.Title
		}
		if req.Color != nil {
			col.Color = *req.Color
		}
		col.UpdatedAt = database.Now()

		if err := tx.UpdateColumn(ctx, col); err != nil {
			return nil, err
		}
		return events.BoardChanged(col.BoardID, "", col.ID), nil
	})
	if err != nil {
		return nil, err
	}
	return col, nil
}

// DeleteColumn removes a column with all of its cards and closes the rank gap
func (s *service) DeleteColumn(ctx context.Context, userID, columnID string) error {
	return s.mut.Do(ctx, "column.delete", s.lockKeys(ctx, columnID), func(ctx context.Context, tx *database.Tx) (*events.Event, error) {
		col, err := authorizeColumn(ctx, tx, columnID, userID)
		if err != nil {
			return nil, err
		}

		if err := tx.DeleteColumn(ctx, col.ID); err != nil {
			return nil, err
		}
		if err := tx.ApplyColumnPlan(ctx, ordering.RemoveAndCompact(col.BoardID, col.Order)); err != nil {
			return nil, err
		}
		return events.BoardChanged(col.BoardID, "", col.ID), nil
	})
}

// MoveColumn moves a column to toRank among its board's columns.
// toRank equal to the column count means "to the end".
func (s *service) MoveColumn(ctx context.Context, userID, columnID string, toRank int) (*models.Column, error) {
	var col *models.Column
	err := s.mut.Do(ctx, "column.move", s.lockKeys(ctx, columnID), func(ctx context.Context, tx *database.Tx) (*events.Event, error) {
		var err error
		col, err = authorizeColumn(ctx, tx, columnID, userID)
		if err != nil {
			return nil, err
		}

		n, err := tx.CountColumns(ctx, col.BoardID)
		if err != nil {
			return nil, err
		}
		plan, err := ordering.MoveWithinList(col.BoardID, col.ID, col.Order, toRank, n)
		if err != nil {
			return nil, err
		}
		if plan.Noop() {
			return nil, nil
		}

		if err := tx.ApplyColumnPlan(ctx, plan); err != nil {
			return nil, err
		}
		col, err = tx.GetColumn(ctx, col.ID)
		if err != nil {
			return nil, err
		}
		return events.BoardChanged(col.BoardID, "", col.ID), nil
	})
	if err != nil {
		return nil, err
	}
	return col, nil
}

// ReorderColumns assigns ranks from a full permutation of the board's columns
func (s *service) ReorderColumns(ctx context.Context, userID, boardID string, columnIDs []string) ([]*models.Column, error) {
	var columns []*models.Column
	err := s.mut.Do(ctx, "column.reorder", []string{boardID}, func(ctx context.Context, tx *database.Tx) (*events.Event, error) {
		if err := authorizeBoard(ctx, tx, boardID, userID); err != nil {
			return nil, err
		}

		current, err := tx.ListColumnIDs(ctx, boardID)
		if err != nil {
			return nil, err
		}
		placements, err := ordering.Reorder(boardID, columnIDs, current)
		if err != nil {
			return nil, err
		}
		if err := tx.SetColumnRanks(ctx, placements); err != nil {
			return nil, err
		}

		columns, err = tx.ListColumns(ctx, boardID)
		if err != nil {
			return nil, err
		}
		return events.BoardChanged(boardID, "", ""), nil
	})
	if err != nil {
		return nil, err
	}
	return columns, nil
}

// lockKeys returns the column's board as the lock key when a locker is
// configured. Columns never change boards, so the pre-read cannot go stale.
func (s *service) lockKeys(ctx context.Context, columnID string) []string {
	if !s.mut.NeedsKeys() {
		return nil
	}
	var boardID string
	_ = s.mut.View(ctx, func(tx *database.Tx) error {
		col, err := tx.GetColumn(ctx, columnID)
		if err != nil {
			return err
		}
		boardID = col.BoardID
		return nil
	})
	if boardID == "" {
		return nil
	}
	return []string{boardID}
}

// authorizeBoard requires ownership of boardID
func authorizeBoard(ctx context.Context, tx *database.Tx, boardID, userID string) error {
	access, err := tx.BoardAccess(ctx, boardID, userID)
	if err != nil {
		return err
	}
	if !access.Allows(models.AccessOwner) {
		return ErrBoardNotFound
	}
	return nil
}

// authorizeColumn loads the column and requires ownership of its board.
// Columns on boards the user cannot see are reported as missing.
func authorizeColumn(ctx context.Context, tx *database.Tx, columnID, userID string) (*models.Column, error) {
	col, err := tx.GetColumn(ctx, columnID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrColumnNotFound
	}
	if err != nil {
		return nil, err
	}

	access, err := tx.BoardAccess(ctx, col.BoardID, userID)
	if err != nil {
		return nil, err
	}
	if !access.Allows(models.AccessOwner) {
		return nil, ErrColumnNotFound
	}
	return col, nil
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
