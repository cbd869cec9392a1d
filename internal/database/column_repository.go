package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/thenoetrevino/quadro/internal/models"
)

const columnColumns = "id, board_id, user_id, title, color, ord, created_at, updated_at"

// InsertColumn stores a new column at c.Order
func (t *Tx) InsertColumn(ctx context.Context, c *models.Column) error {
	_, err := t.exec(ctx,
		"INSERT INTO columns ("+columnColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		c.ID, c.BoardID, c.CreatorID, c.Title, c.Color, c.Order, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert column: %w", err)
	}
	return nil
}

// GetColumn returns the column with the given ID or sql.ErrNoRows
func (t *Tx) GetColumn(ctx context.Context, id string) (*models.Column, error) {
	return scanColumn(t.queryRow(ctx, "SELECT "+columnColumns+" FROM columns WHERE id = ?", id))
}

// UpdateColumn writes title and color; ranks only change through plans
func (t *Tx) UpdateColumn(ctx context.Context, c *models.Column) error {
	_, err := t.exec(ctx,
		"UPDATE columns SET title = ?, color = ?, updated_at = ? WHERE id = ?",
		c.Title, c.Color, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update column: %w", err)
	}
	return nil
}

// DeleteColumn removes a column; its cards and their label links cascade.
// The caller compacts the remaining ranks.
func (t *Tx) DeleteColumn(ctx context.Context, id string) error {
	if _, err := t.exec(ctx, "DELETE FROM columns WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete column: %w", err)
	}
	return nil
}

// ListColumns returns a board's columns ordered by rank
func (t *Tx) ListColumns(ctx context.Context, boardID string) ([]*models.Column, error) {
	rows, err := t.query(ctx,
		"SELECT "+columnColumns+" FROM columns WHERE board_id = ? ORDER BY ord, id",
		boardID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns := []*models.Column{}
	for rows.Next() {
		c, err := scanColumn(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		columns = append(columns, c)
	}
	return columns, rows.Err()
}

// ListColumnIDs returns a board's column IDs ordered by rank
func (t *Tx) ListColumnIDs(ctx context.Context, boardID string) ([]string, error) {
	rows, err := t.query(ctx, "SELECT id FROM columns WHERE board_id = ? ORDER BY ord, id", boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list column ids: %w", err)
	}
	return scanIDs(rows)
}

// MaxColumnRank returns the highest column rank on a board, or nil when it has none
func (t *Tx) MaxColumnRank(ctx context.Context, boardID string) (*int, error) {
	return t.maxRank(ctx, columnsTable, boardID)
}

// CountColumns returns the number of columns on a board
func (t *Tx) CountColumns(ctx context.Context, boardID string) (int, error) {
	return t.count(ctx, columnsTable, boardID)
}

func scanColumn(row rowScanner) (*models.Column, error) {
	var c models.Column
	if err := row.Scan(&c.ID, &c.BoardID, &c.CreatorID, &c.Title, &c.Color, &c.Order, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}

// maxRank returns MAX(ord) under parent, nil for an empty list
func (t *Tx) maxRank(ctx context.Context, rt rankedTable, parent string) (*int, error) {
	var max sql.NullInt64
	query := fmt.Sprintf("SELECT MAX(ord) FROM %s WHERE %s = ?", rt.table, rt.parent)
	if err := t.queryRow(ctx, query, parent).Scan(&max); err != nil {
		return nil, fmt.Errorf("failed to read max rank: %w", err)
	}
	if !max.Valid {
		return nil, nil
	}
	v := int(max.Int64)
	return &v, nil
}

func (t *Tx) count(ctx context.Context, rt rankedTable, parent string) (int, error) {
	var n int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?", rt.table, rt.parent)
	if err := t.queryRow(ctx, query, parent).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", rt.table, err)
	}
	return n, nil
}
