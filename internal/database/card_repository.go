package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/thenoetrevino/quadro/internal/models"
)

const cardColumns = "id, column_id, user_id, title, description, color, ord, due_date, budget_id, assignee_id, created_at, updated_at"

// cardSelect joins the assignee so views can embed a user summary
const cardSelect = `
	SELECT k.id, k.column_id, k.user_id, k.title, k.description, k.color, k.ord,
	       k.due_date, k.budget_id, k.assignee_id, k.created_at, k.updated_at,
	       u.id, u.name, u.email
	FROM cards k
	LEFT JOIN users u ON u.id = k.assignee_id`

// InsertCard stores a new card at c.Order
func (t *Tx) InsertCard(ctx context.Context, c *models.Card) error {
	_, err := t.exec(ctx,
		"INSERT INTO cards ("+cardColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		c.ID, c.ColumnID, c.CreatorID, c.Title, c.Description, c.Color, c.Order,
		timeArg(c.DueDate), stringArg(c.BudgetID), stringArg(c.AssigneeID), c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert card: %w", err)
	}
	return nil
}

// GetCard returns the card with the given ID (labels included) or sql.ErrNoRows
func (t *Tx) GetCard(ctx context.Context, id string) (*models.Card, error) {
	card, err := scanCard(t.queryRow(ctx, cardSelect+" WHERE k.id = ?", id))
	if err != nil {
		return nil, err
	}

	labels, err := t.ListCardLabels(ctx, id)
	if err != nil {
		return nil, err
	}
	card.Labels = labels
	return card, nil
}

// UpdateCard writes every mutable field except rank and column
func (t *Tx) UpdateCard(ctx context.Context, c *models.Card) error {
	_, err := t.exec(ctx, `
		UPDATE cards
		SET title = ?, description = ?, color = ?, due_date = ?, budget_id = ?, assignee_id = ?, updated_at = ?
		WHERE id = ?`,
		c.Title, c.Description, c.Color, timeArg(c.DueDate), stringArg(c.BudgetID), stringArg(c.AssigneeID),
		c.UpdatedAt, c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}
	return nil
}

// DeleteCard removes a card and its label links. The caller compacts the column.
func (t *Tx) DeleteCard(ctx context.Context, id string) error {
	if _, err := t.exec(ctx, "DELETE FROM cards WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	return nil
}

// ListCardsByBoard returns every card on a board ordered by column rank, then card rank.
// Labels are not loaded; see ListLabelsByCard.
func (t *Tx) ListCardsByBoard(ctx context.Context, boardID string) ([]*models.Card, error) {
	rows, err := t.query(ctx, cardSelect+`
		JOIN columns c ON c.id = k.column_id
		WHERE c.board_id = ?
		ORDER BY c.ord, k.ord, k.id`,
		boardID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cards []*models.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// ListCardIDs returns a column's card IDs ordered by rank
func (t *Tx) ListCardIDs(ctx context.Context, columnID string) ([]string, error) {
	rows, err := t.query(ctx, "SELECT id FROM cards WHERE column_id = ? ORDER BY ord, id", columnID)
	if err != nil {
		return nil, fmt.Errorf("failed to list card ids: %w", err)
	}
	return scanIDs(rows)
}

// MaxCardRank returns the highest card rank in a column, or nil when it is empty
func (t *Tx) MaxCardRank(ctx context.Context, columnID string) (*int, error) {
	return t.maxRank(ctx, cardsTable, columnID)
}

// CountCards returns the number of cards in a column
func (t *Tx) CountCards(ctx context.Context, columnID string) (int, error) {
	return t.count(ctx, cardsTable, columnID)
}

// ReplaceCardLabels sets the card's labels to exactly labelIDs
func (t *Tx) ReplaceCardLabels(ctx context.Context, cardID string, labelIDs []string) error {
	if _, err := t.exec(ctx, "DELETE FROM card_labels WHERE card_id = ?", cardID); err != nil {
		return fmt.Errorf("failed to clear card labels: %w", err)
	}
	for _, labelID := range labelIDs {
		if _, err := t.exec(ctx, "INSERT INTO card_labels (card_id, label_id) VALUES (?, ?)", cardID, labelID); err != nil {
			return fmt.Errorf("failed to attach label: %w", err)
		}
	}
	return nil
}

// ListCardLabels returns the labels attached to a card, by name
func (t *Tx) ListCardLabels(ctx context.Context, cardID string) ([]*models.Label, error) {
	rows, err := t.query(ctx, `
		SELECT l.id, l.board_id, l.user_id, l.name, l.color, l.created_at, l.updated_at
		FROM card_labels cl JOIN labels l ON l.id = cl.label_id
		WHERE cl.card_id = ?
		ORDER BY l.name, l.id`,
		cardID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list card labels: %w", err)
	}
	defer func() { _ = rows.Close() }()

	labels := []*models.Label{}
	for rows.Next() {
		l, err := scanLabel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan label: %w", err)
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}

// ListLabelsByCard returns the labels of every card on a board keyed by card ID
func (t *Tx) ListLabelsByCard(ctx context.Context, boardID string) (map[string][]*models.Label, error) {
	rows, err := t.query(ctx, `
		SELECT cl.card_id, l.id, l.board_id, l.user_id, l.name, l.color, l.created_at, l.updated_at
		FROM card_labels cl
		JOIN labels l ON l.id = cl.label_id
		WHERE l.board_id = ?
		ORDER BY l.name, l.id`,
		boardID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list board card labels: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string][]*models.Label)
	for rows.Next() {
		var cardID string
		var l models.Label
		if err := rows.Scan(&cardID, &l.ID, &l.BoardID, &l.CreatorID, &l.Name, &l.Color, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan label: %w", err)
		}
		l.CreatedAt = l.CreatedAt.UTC()
		l.UpdatedAt = l.UpdatedAt.UTC()
		out[cardID] = append(out[cardID], &l)
	}
	return out, rows.Err()
}

func scanCard(row rowScanner) (*models.Card, error) {
	var (
		c                        models.Card
		dueDate                  sql.NullTime
		budgetID, assigneeID     sql.NullString
		userID, userName, userEm sql.NullString
	)
	if err := row.Scan(&c.ID, &c.ColumnID, &c.CreatorID, &c.Title, &c.Description, &c.Color, &c.Order,
		&dueDate, &budgetID, &assigneeID, &c.CreatedAt, &c.UpdatedAt,
		&userID, &userName, &userEm); err != nil {
		return nil, err
	}

	c.DueDate = nullTimePtr(dueDate)
	c.BudgetID = nullStringPtr(budgetID)
	c.AssigneeID = nullStringPtr(assigneeID)
	c.Assignee = userRef(userID, userName, userEm)
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	c.Labels = []*models.Label{}
	return &c, nil
}
