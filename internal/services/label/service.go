package label

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

const maxNameLength = 50

// Service defines all label-related business operations.
// Board owners and members may manage labels.
type Service interface {
	ListLabels(ctx context.Context, userID, boardID string) ([]*models.Label, error)
	CreateLabel(ctx context.Context, userID string, req CreateLabelRequest) (*models.Label, error)
	UpdateLabel(ctx context.Context, userID string, req UpdateLabelRequest) (*models.Label, error)
	DeleteLabel(ctx context.Context, userID, labelID string) error
}

// CreateLabelRequest encapsulates data for creating a label
type CreateLabelRequest struct {
	BoardID string
	Name    string
	Color   string
}

// UpdateLabelRequest encapsulates data for updating a label
// Fields with pointers are optional - nil means don't update
type UpdateLabelRequest struct {
	LabelID string
	Name    *string
	Color   *string
}

type service struct {
	mut *mutator.Mutator
}

// NewService creates a new label service
func NewService(mut *mutator.Mutator) Service {
	return &service{mut: mut}
}

// ListLabels returns the board's labels by name. A board without labels
// is seeded with models.DefaultLabels first.
func (s *service) ListLabels(ctx context.Context, userID, boardID string) ([]*models.Label, error) {
	var labels []*models.Label
	err := s.mut.View(ctx, func(tx *database.Tx) error {
		if err := authorizeBoard(ctx, tx, boardID, userID); err != nil {
			return err
		}
		var err error
		labels, err = tx.ListLabels(ctx, boardID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(labels) > 0 {
		return labels, nil
	}

	err = s.mut.Do(ctx, "label.seed", []string{boardID}, func(ctx context.Context, tx *database.Tx) (*events.Event, error) {
		if err := authorizeBoard(ctx, tx, boardID, userID); err != nil {
			return nil, err
		}

		// another request may have seeded or created labels in between
		existing, err := tx.ListLabels(ctx, boardID)
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			labels = existing
			return nil, nil
		}

		now := database.Now()
		for _, def := range models.DefaultLabels {
			l := &models.Label{
				ID:        uuid.NewString(),
				BoardID:   boardID,
				CreatorID: userID,
				Name:      def.Name,
				Color:     def.Color,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.InsertLabel(ctx, l); err != nil {
				return nil, err
			}
		}

		labels, err = tx.ListLabels(ctx, boardID)
		if err != nil {
			return nil, err
		}
		return events.BoardChanged(boardID, "", ""), nil
	})
	if err != nil {
		return nil, err
	}
	return labels, nil
}

// CreateLabel adds a label to a board
func (s *service) CreateLabel(ctx context.Context, userID string, req CreateLabelRequest) (*models.Label, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validateName(req.Name); err != nil {
		return nil, err
	}
	if !models.ValidColor(req.Color) {
		return nil, ErrInvalidColor
	}

	now := database.Now()
	l := &models.Label{
		ID:        uuid.NewString(),
		BoardID:   req.BoardID,
		CreatorID: userID,
		Name:      req.Name,
		Color:     req.Color,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.mut.Do(ctx, "label.create", nil, func(ctx context.Context, tx *database.Tx) (*events.Event, error) {
		if err := authorizeBoard(ctx, tx, req.BoardID, userID); err != nil {
			return nil, err
		}
		if err := tx.InsertLabel(ctx, l); err != nil {
			return nil, err
		}
		return events.BoardChanged(l.BoardID, "", l.ID), nil
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

// UpdateLabel renames or recolors a label
func (s *service) UpdateLabel(ctx context.Context, userID string, req UpdateLabelRequest) (*models.Label, error) {
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
		if err := validateName(trimmed); err != nil {
			return nil, err
		}
	}
	if req.Color != nil && !models.ValidColor(*req.Color) {
		return nil, ErrInvalidColor
	}

	var l *models.Label
	err := s.mut.Do(ctx, "label.update", nil, func(ctx context.Context, tx *database.Tx) (*events.Event, error) {
		var err error
		l, err = authorizeLabel(ctx, tx, req.LabelID, userID)
		if err != nil {
			return nil, err
		}

		if req.Name != nil {
			l.Name = *req.Name
		}
		if req.Color != nil {
			l.Color = *req.Color
		}
		l.UpdatedAt = database.Now()

		if err := tx.UpdateLabel(ctx, l); err != nil {
			return nil, err
		}
		return events.BoardChanged(l.BoardID, "", l.ID), nil
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

// DeleteLabel removes a label from the board and from every card carrying it
func (s *service) DeleteLabel(ctx context.Context, userID, labelID string) error {
	return s.mut.Do(ctx, "label.delete", nil, func(ctx context.Context, tx *database.Tx) (*events.Event, error) {
		l, err := authorizeLabel(ctx, tx, labelID, userID)
		if err != nil {
			return nil, err
		}
		if err := tx.DeleteLabel(ctx, l.ID); err != nil {
			return nil, err
		}
		return events.BoardChanged(l.BoardID, "", l.ID), nil
	})
}

func authorizeBoard(ctx context.Context, tx *database.Tx, boardID, userID string) error {
	access, err := tx.BoardAccess(ctx, boardID, userID)
	if err != nil {
		return err
	}
	if !access.Allows(models.AccessMember) {
		return ErrBoardNotFound
	}
	return nil
}

func authorizeLabel(ctx context.Context, tx *database.Tx, labelID, userID string) (*models.Label, error) {
	l, err := tx.GetLabel(ctx, labelID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLabelNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := authorizeBoard(ctx, tx, l.BoardID, userID); err != nil {
		if errors.Is(err, ErrBoardNotFound) {
			return nil, ErrLabelNotFound
		}
		return nil, err
	}
	return l, nil
}

func validateName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > maxNameLength {
		return ErrNameTooLong
	}
	return nil
}
