package database

import (
	"context"
	"fmt"

	"github.com/thenoetrevino/quadro/internal/models"
)

const labelColumns = "id, board_id, user_id, name, color, created_at, updated_at"

// InsertLabel stores a new label
func (t *Tx) InsertLabel(ctx context.Context, l *models.Label) error {
	_, err := t.exec(ctx,
		"INSERT INTO labels ("+labelColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		l.ID, l.BoardID, l.CreatorID, l.Name, l.Color, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert label: %w", err)
	}
	return nil
}

// GetLabel returns the label with the given ID or sql.ErrNoRows
func (t *Tx) GetLabel(ctx context.Context, id string) (*models.Label, error) {
	return scanLabel(t.queryRow(ctx, "SELECT "+labelColumns+" FROM labels WHERE id = ?", id))
}

// UpdateLabel writes name and color
func (t *Tx) UpdateLabel(ctx context.Context, l *models.Label) error {
	_, err := t.exec(ctx,
		"UPDATE labels SET name = ?, color = ?, updated_at = ? WHERE id = ?",
		l.Name, l.Color, l.UpdatedAt, l.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update label: %w", err)
	}
	return nil
}

// DeleteLabel removes a label; card associations cascade
func (t *Tx) DeleteLabel(ctx context.Context, id string) error {
	if _, err := t.exec(ctx, "DELETE FROM labels WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete label: %w", err)
	}
	return nil
}

// ListLabels returns a board's labels, by name
func (t *Tx) ListLabels(ctx context.Context, boardID string) ([]*models.Label, error) {
	rows, err := t.query(ctx,
		"SELECT "+labelColumns+" FROM labels WHERE board_id = ? ORDER BY name, id",
		boardID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
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

// CountBoardLabels returns how many of ids are labels of boardID
func (t *Tx) CountBoardLabels(ctx context.Context, boardID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	args := make([]any, 0, len(ids)+1)
	args = append(args, boardID)
	for _, id := range ids {
		args = append(args, id)
	}

	var n int
	query := "SELECT COUNT(*) FROM labels WHERE board_id = ? AND id IN (" + placeholders(len(ids)) + ")"
	if err := t.queryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count labels: %w", err)
	}
	return n, nil
}

func scanLabel(row rowScanner) (*models.Label, error) {
	var l models.Label
	if err := row.Scan(&l.ID, &l.BoardID, &l.CreatorID, &l.Name, &l.Color, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	l.CreatedAt = l.CreatedAt.UTC()
	l.UpdatedAt = l.UpdatedAt.UTC()
	return &l, nil
}
