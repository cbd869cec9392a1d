package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/thenoetrevino/quadro/internal/models"
)

const boardColumns = "id, title, description, color, user_id, created_at, updated_at"

// InsertBoard stores a new board
func (t *Tx) InsertBoard(ctx context.Context, b *models.Board) error {
	_, err := t.exec(ctx,
		"INSERT INTO boards ("+boardColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		b.ID, b.Title, b.Description, b.Color, b.OwnerID, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert board: %w", err)
	}
	return nil
}

// GetBoard returns the board with the given ID or sql.ErrNoRows.
// Callers check access separately with BoardAccess.
func (t *Tx) GetBoard(ctx context.Context, id string) (*models.Board, error) {
	return scanBoard(t.queryRow(ctx, "SELECT "+boardColumns+" FROM boards WHERE id = ?", id))
}

// UpdateBoard writes title, description and color
func (t *Tx) UpdateBoard(ctx context.Context, b *models.Board) error {
	_, err := t.exec(ctx,
		"UPDATE boards SET title = ?, description = ?, color = ?, updated_at = ? WHERE id = ?",
		b.Title, b.Description, b.Color, b.UpdatedAt, b.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update board: %w", err)
	}
	return nil
}

// DeleteBoard removes a board; columns, cards, labels and memberships cascade
func (t *Tx) DeleteBoard(ctx context.Context, id string) error {
	if _, err := t.exec(ctx, "DELETE FROM boards WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete board: %w", err)
	}
	return nil
}

// BoardAccess returns the user's access level on a board.
// A missing board yields AccessNone, the same as a board the user cannot see.
func (t *Tx) BoardAccess(ctx context.Context, boardID, userID string) (models.Access, error) {
	var ownerID string
	var member bool
	err := t.queryRow(ctx, `
		SELECT b.user_id,
		       EXISTS (SELECT 1 FROM board_members m WHERE m.board_id = b.id AND m.user_id = ?)
		FROM boards b
		WHERE b.id = ?`,
		userID, boardID,
	).Scan(&ownerID, &member)
	if err == sql.ErrNoRows {
		return models.AccessNone, nil
	}
	if err != nil {
		return models.AccessNone, fmt.Errorf("failed to check board access: %w", err)
	}

	switch {
	case ownerID == userID:
		return models.AccessOwner, nil
	case member:
		return models.AccessMember, nil
	default:
		return models.AccessNone, nil
	}
}

// ListBoardSummaries returns boards owned or joined by userID, most recently
// updated first, with column and card counts computed by aggregate queries
func (t *Tx) ListBoardSummaries(ctx context.Context, userID string) ([]*models.BoardSummary, error) {
	rows, err := t.query(ctx, `
		SELECT b.id, b.title, b.description, b.color, b.user_id, b.created_at, b.updated_at,
		       (SELECT COUNT(*) FROM columns c WHERE c.board_id = b.id),
		       (SELECT COUNT(*) FROM cards k JOIN columns c ON c.id = k.column_id WHERE c.board_id = b.id)
		FROM boards b
		WHERE b.user_id = ?
		   OR EXISTS (SELECT 1 FROM board_members m WHERE m.board_id = b.id AND m.user_id = ?)
		ORDER BY b.updated_at DESC, b.id`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list boards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*models.BoardSummary
	for rows.Next() {
		var s models.BoardSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.Description, &s.Color, &s.OwnerID,
			&s.CreatedAt, &s.UpdatedAt, &s.TotalColumns, &s.TotalCards); err != nil {
			return nil, fmt.Errorf("failed to scan board: %w", err)
		}
		s.CreatedAt = s.CreatedAt.UTC()
		s.UpdatedAt = s.UpdatedAt.UTC()
		s.Access = models.AccessMember
		if s.OwnerID == userID {
			s.Access = models.AccessOwner
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// AddBoardMember grants membership; adding an existing member is a no-op
func (t *Tx) AddBoardMember(ctx context.Context, boardID, userID string) error {
	var n int
	if err := t.queryRow(ctx,
		"SELECT COUNT(*) FROM board_members WHERE board_id = ? AND user_id = ?",
		boardID, userID,
	).Scan(&n); err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if n > 0 {
		return nil
	}

	if _, err := t.exec(ctx,
		"INSERT INTO board_members (board_id, user_id, created_at) VALUES (?, ?, ?)",
		boardID, userID, Now(),
	); err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// RemoveBoardMember revokes membership and reports whether a row was removed
func (t *Tx) RemoveBoardMember(ctx context.Context, boardID, userID string) (bool, error) {
	res, err := t.exec(ctx, "DELETE FROM board_members WHERE board_id = ? AND user_id = ?", boardID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to remove member: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to remove member: %w", err)
	}
	return n > 0, nil
}

// ListBoardMembers returns the members of a board (the owner excluded), by name
func (t *Tx) ListBoardMembers(ctx context.Context, boardID string) ([]*models.UserRef, error) {
	rows, err := t.query(ctx, `
		SELECT u.id, u.name, u.email
		FROM board_members m JOIN users u ON u.id = m.user_id
		WHERE m.board_id = ?
		ORDER BY u.name, u.id`,
		boardID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer func() { _ = rows.Close() }()

	members := []*models.UserRef{}
	for rows.Next() {
		var u models.UserRef
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, &u)
	}
	return members, rows.Err()
}

func scanBoard(row rowScanner) (*models.Board, error) {
	var b models.Board
	if err := row.Scan(&b.ID, &b.Title, &b.Description, &b.Color, &b.OwnerID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return &b, nil
}
