package database

import (
	"context"
	"fmt"

	"github.com/thenoetrevino/quadro/internal/models"
)

const userColumns = "id, name, email, password_hash, role, created_at, updated_at"

// InsertUser stores a new user
func (t *Tx) InsertUser(ctx context.Context, u *models.User) error {
	_, err := t.exec(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUser returns the user with the given ID or sql.ErrNoRows
func (t *Tx) GetUser(ctx context.Context, id string) (*models.User, error) {
	return scanUser(t.queryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
}

// GetUserByEmail returns the user with the given email or sql.ErrNoRows
func (t *Tx) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(t.queryRow(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email))
}

// UserExists reports whether a user with the given ID exists
func (t *Tx) UserExists(ctx context.Context, id string) (bool, error) {
	var n int
	if err := t.queryRow(ctx, "SELECT COUNT(*) FROM users WHERE id = ?", id).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return n > 0, nil
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}
