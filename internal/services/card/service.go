package card

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thenoetrevino/quadro/internal/database"
	"github.com/thenoetrevino/quadro/internal/events"
	"github.com/thenoetrevino/quadro/internal/models"
	"github.com/thenoetrevino/quadro/internal/mutator"
	"github.com/thenoetrevino/quadro/internal/ordering"
)

// DefaultCardColor is used when a card is created without a color
const DefaultCardColor = "#ffffff"

const maxDescriptionLength = 10000

// Service defines all card-related business operations.
// Board owners and members may read and write cards.
type Service interface {
	// Read operations
	GetCard(ctx context.Context, userID, cardID string) (*models.Card, error)

	// Write operations
	CreateCard(ctx context.Context, userID string, req CreateCardRequest) (*models.Card, error)
	UpdateCard(ctx context.Context, userID string, req UpdateCardRequest) (*models.Card, error)
	DeleteCard(ctx context.Context, userID, cardID string) error

	// Card movements
	MoveCard(ctx context.Context, userID string, req MoveCardRequest) (*models.Card, error)
	ReorderCards(ctx context.Context, userID, columnID string, cardIDs []string) ([]*models.Card, error)
}

// CreateCardRequest encapsulates all data needed to create a card
type CreateCardRequest struct {
	ColumnID    string
	Title       string
	Description string
	Color       string     // Optional: empty means DefaultCardColor
	DueDate     *time.Time // Optional
	BudgetID    *string    // Optional opaque reference
	AssigneeID  *string    // Optional: must be an existing user
	LabelIDs    []string   // Optional: labels of the same board
}

// UpdateCardRequest encapsulates all data needed to update a card.
// Pointer fields are optional - nil means don't update. Patch fields
// distinguish "leave alone" from "clear".
type UpdateCardRequest struct {
	CardID      string
	Title       *string
	Description *string
	Color       *string
	DueDate     models.Patch[time.Time]
	BudgetID    models.Patch[string]
	AssigneeID  models.Patch[string]
	LabelIDs    *[]string // Replaces the full label set when non-nil
}

// MoveCardRequest places a card at ToRank in ColumnID.
// An empty ColumnID keeps the card in its current column.
type MoveCardRequest struct {
	CardID   string
	ColumnID string
	ToRank   int
}

type service struct {
	mut *mutator.Mutator
}

// NewService creates a new card service
func NewService(mut *mutator.Mutator) Service {
	return &service{mut: mut}
}

// GetCard returns a card with its labels and assignee
func (s *service) GetCard(ctx context.Context, userID, cardID string) (*models.Card, error) {
	var card *models.Card
	err := s.mut.View(ctx, func(tx *database.Tx) error {
		var err error
		card, _, err = authorizeCard(ctx, tx, cardID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

// CreateCard appends a card to the end of its column
func (s *service) CreateCard(ctx context.Context, userID string, req CreateCardRequest) (*models.Card, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Color == "" {
		req.Color = DefaultCardColor
	}
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	now := database.Now()
	card := &models.Card{
		ID:          uuid.NewString(),
		ColumnID:    req.ColumnID,
		CreatorID:   userID,
		Title:       req.Title,
		Description: req.Description,
		Color:       req.Color,
		DueDate:     utcPtr(req.DueDate),
		BudgetID:    req.BudgetID,
		AssigneeID:  req.AssigneeID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.mut.Do(ctx, "card.create", []string{req.ColumnID}, func(ctx context.Context, tx *database.Tx) (*events.Event, error) {
		col, err := authorizeColumn(ctx, tx, req.ColumnID, userID)
		if err != nil {
			return nil, err
		}

		labelIDs, err := checkLabels(ctx, tx, col.BoardID, req.LabelIDs)
		if err != nil {
			return nil, err
		}
		if err := checkAssignee(ctx, tx, req.AssigneeID); err != nil {
			return nil, err
		}

		last, err := tx.MaxCardRank(ctx, col.ID)
		if err != nil {
			return nil, err
		}
		card.Order = ordering.AppendRank(last)

		if err := tx.InsertCard(ctx, card); err != nil {
			return nil, err
		}
		if err := tx.ReplaceCardLabels(ctx, card.ID, labelIDs); err != nil {
			return nil, err
		}

		card, err = tx.GetCard(ctx, card.ID)
		if err != nil {
			return nil, err
		}
		return events.BoardChanged(col.BoardID, "", card.ID), nil
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

// UpdateCard changes card fields; rank and column are untouched
func (s *service) UpdateCard(ctx context.Context, userID string, req UpdateCardRequest) (*models.Card, error) {
	if err := validateUpdate(&req); err != nil {
		return nil, err
	}

	var card *models.Card
	err := s.mut.Do(ctx, "card.update", nil, func(ctx context.Context, tx *database.Tx) (*events.Event, error) {
		var (
			col *models.Column
			err error
		)
		card, col, err = authorizeCard(ctx, tx, req.CardID, userID)
		if err != nil {
			return nil, err
		}

		if req.Title != nil {
			card.Title = *req.Title
		}
		if req.Description != nil {
			card.Description = *req.Description
		}
		if req.Color != nil {
			card.Color = *req.Color
		}
		if req.DueDate.Set {
			card.DueDate = utcPtr(req.DueDate.Value)
		}
		if req.BudgetID.Set {
			card.BudgetID = req.BudgetID.Value
		}
		if req.AssigneeID.Set {
			if err := checkAssignee(ctx, tx, req.AssigneeID.Value); err != nil {
				return nil, err
			}
			card.AssigneeID = req.AssigneeID.Value
		}
		card.UpdatedAt = database.Now()

		if err := tx.UpdateCard(ctx, card); err != nil {
			return nil, err
		}

		if req.LabelIDs != nil {
			labelIDs, err := checkLabels(ctx, tx, col.BoardID, *req.LabelIDs)
			if err != nil {
				return nil, err
			}
			if err := tx.ReplaceCardLabels(ctx, card.ID, labelIDs); err != nil {
				return nil, err
			}
		}

		card, err = tx.GetCard(ctx, card.ID)
		if err != nil {
			return nil, err
		}
		return events.BoardChanged(col.BoardID, "", card.ID), nil
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

// DeleteCard removes a card and closes the gap in its column
func (s *service) DeleteCard(ctx context.Context, userID, cardID string) error {
	expected := s.cardColumn(ctx, cardID)
	return s.mut.Do(ctx, "card.delete", []string{expected}, func(ctx context.Context, tx *database.Tx) (*events.Event, error) {
		card, col, err := authorizeCard(ctx, tx, cardID, userID)
		if err != nil {
			return nil, err
		}
		if expected != "" && card.ColumnID != expected {
			return nil, ErrCardMoved
		}

		if err := tx.DeleteCard(ctx, card.ID); err != nil {
			return nil, err
		}
		if err := tx.ApplyCardPlan(ctx, ordering.RemoveAndCompact(card.ColumnID, card.Order)); err != nil {
			return nil, err
		}
		return events.BoardChanged(col.BoardID, "", card.ID), nil
	})
}

// MoveCard moves a card within its column or to another column of the same
// board. Within a column toRank may be 0..n-1 (n means the end); across
// columns it may be 0..n of the destination.
func (s *service) MoveCard(ctx context.Context, userID string, req MoveCardRequest) (*models.Card, error) {
	expected := s.cardColumn(ctx, req.CardID)

	var card *models.Card
	err := s.mut.Do(ctx, "card.move", []string{expected, req.ColumnID}, func(ctx context.Context, tx *database.Tx) (*events.Event, error) {
		var (
			src *models.Column
			err error
		)
		card, src, err = authorizeCard(ctx, tx, req.CardID, userID)
		if err != nil {
			return nil, err
		}
		if expected != "" && card.ColumnID != expected {
			return nil, ErrCardMoved
		}

		var plan ordering.Plan
		if req.ColumnID == "" || req.ColumnID == card.ColumnID {
			n, err := tx.CountCards(ctx, card.ColumnID)
			if err != nil {
				return nil, err
			}
			plan, err = ordering.MoveWithinList(card.ColumnID, card.ID, card.Order, req.ToRank, n)
			if err != nil {
				return nil, err
			}
		} else {
			dst, err := tx.GetColumn(ctx, req.ColumnID)
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrColumnNotFound
			}
			if err != nil {
				return nil, err
			}
			if dst.BoardID != src.BoardID {
				return nil, ErrColumnNotFound
			}

			n, err := tx.CountCards(ctx, dst.ID)
			if err != nil {
				return nil, err
			}
			plan, err = ordering.MoveAcrossLists(card.ID, card.ColumnID, card.Order, dst.ID, req.ToRank, n)
			if err != nil {
				return nil, err
			}
		}

		if plan.Noop() {
			return nil, nil
		}
		if err := tx.ApplyCardPlan(ctx, plan); err != nil {
			return nil, err
		}

		card, err = tx.GetCard(ctx, card.ID)
		if err != nil {
			return nil, err
		}
		return events.BoardChanged(src.BoardID, "", card.ID), nil
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

// ReorderCards assigns ranks from a full permutation of the column's cards
func (s *service) ReorderCards(ctx context.Context, userID, columnID string, cardIDs []string) ([]*models.Card, error) {
	var cards []*models.Card
	err := s.mut.Do(ctx, "card.reorder", []string{columnID}, func(ctx context.Context, tx *database.Tx) (*events.Event, error) {
		col, err := authorizeColumn(ctx, tx, columnID, userID)
		if err != nil {
			return nil, err
		}

		current, err := tx.ListCardIDs(ctx, columnID)
		if err != nil {
			return nil, err
		}
		placements, err := ordering.Reorder(columnID, cardIDs, current)
		if err != nil {
			return nil, err
		}
		if err := tx.SetCardRanks(ctx, placements); err != nil {
			return nil, err
		}

		all, err := tx.ListCardsByBoard(ctx, col.BoardID)
		if err != nil {
			return nil, err
		}
		cards = make([]*models.Card, 0, len(current))
		for _, c := range all {
			if c.ColumnID == columnID {
				cards = append(cards, c)
			}
		}
		return events.BoardChanged(col.BoardID, "", columnID), nil
	})
	if err != nil {
		return nil, err
	}
	return cards, nil
}

// cardColumn pre-reads the card's column for locking. It returns "" when no
// locker is configured or the card does not exist; the transaction then
// reports the real outcome.
func (s *service) cardColumn(ctx context.Context, cardID string) string {
	if !s.mut.NeedsKeys() {
		return ""
	}
	var columnID string
	_ = s.mut.View(ctx, func(tx *database.Tx) error {
		card, err := tx.GetCard(ctx, cardID)
		if err != nil {
			return err
		}
		columnID = card.ColumnID
		return nil
	})
	return columnID
}

// authorizeColumn loads a column the user may write cards in
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
	if !access.Allows(models.AccessMember) {
		return nil, ErrColumnNotFound
	}
	return col, nil
}

// authorizeCard loads a card and its column. Cards on boards the user
// cannot see are reported as missing.
func authorizeCard(ctx context.Context, tx *database.Tx, cardID, userID string) (*models.Card, *models.Column, error) {
	card, err := tx.GetCard(ctx, cardID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrCardNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	col, err := authorizeColumn(ctx, tx, card.ColumnID, userID)
	if errors.Is(err, ErrColumnNotFound) {
		return nil, nil, ErrCardNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return card, col, nil
}

// checkLabels dedups ids and requires every one to be a label of boardID
func checkLabels(ctx context.Context, tx *database.Tx, boardID string, ids []string) ([]string, error) {
	unique := slices.Clone(ids)
	slices.Sort(unique)
	unique = slices.Compact(unique)
	if len(unique) == 0 {
		return nil, nil
	}

	n, err := tx.CountBoardLabels(ctx, boardID, unique)
	if err != nil {
		return nil, err
	}
	if n != len(unique) {
		return nil, ErrInvalidLabel
	}
	return unique, nil
}

func checkAssignee(ctx context.Context, tx *database.Tx, assigneeID *string) error {
	if assigneeID == nil {
		return nil
	}
	ok, err := tx.UserExists(ctx, *assigneeID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAssigneeNotFound
	}
	return nil
}

func validateCreate(req CreateCardRequest) error {
	if err := validateTitle(req.Title); err != nil {
		return err
	}
	if len(req.Description) > maxDescriptionLength {
		return ErrDescriptionTooBig
	}
	if !models.ValidColor(req.Color) {
		return ErrInvalidColor
	}
	if req.BudgetID != nil && *req.BudgetID == "" {
		return ErrEmptyBudgetID
	}
	return nil
}

func validateUpdate(req *UpdateCardRequest) error {
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		req.Title = &trimmed
		if err := validateTitle(trimmed); err != nil {
			return err
		}
	}
	if req.Description != nil && len(*req.Description) > maxDescriptionLength {
		return ErrDescriptionTooBig
	}
	if req.Color != nil && !models.ValidColor(*req.Color) {
		return ErrInvalidColor
	}
	if req.BudgetID.Value != nil && *req.BudgetID.Value == "" {
		return ErrEmptyBudgetID
	}
	return nil
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

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC().Truncate(time.Microsecond)
	return &v
}
