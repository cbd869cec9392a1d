package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// schema is shared by both backends; {{ts}} is replaced by the timestamp type.
// Sibling ranks are indexed but not unique: a range shift passes through
// transient duplicates inside its own statement.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'USER',
		created_at {{ts}} NOT NULL,
		updated_at {{ts}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS boards (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		color TEXT NOT NULL DEFAULT '#5664d2',
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at {{ts}} NOT NULL,
		updated_at {{ts}} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_boards_user ON boards(user_id)`,
	`CREATE TABLE IF NOT EXISTS board_members (
		board_id TEXT NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at {{ts}} NOT NULL,
		PRIMARY KEY (board_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_board_members_user ON board_members(user_id)`,
	`CREATE TABLE IF NOT EXISTS columns (
		id TEXT PRIMARY KEY,
		board_id TEXT NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id),
		title TEXT NOT NULL,
		color TEXT NOT NULL DEFAULT '#f8f9fa',
		ord INTEGER NOT NULL,
		created_at {{ts}} NOT NULL,
		updated_at {{ts}} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_columns_board ON columns(board_id, ord)`,
	`CREATE TABLE IF NOT EXISTS cards (
		id TEXT PRIMARY KEY,
		column_id TEXT NOT NULL REFERENCES columns(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id),
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		color TEXT NOT NULL DEFAULT '',
		ord INTEGER NOT NULL,
		due_date {{ts}},
		budget_id TEXT,
		assignee_id TEXT REFERENCES users(id) ON DELETE SET NULL,
		created_at {{ts}} NOT NULL,
		updated_at {{ts}} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cards_column ON cards(column_id, ord)`,
	`CREATE TABLE IF NOT EXISTS labels (
		id TEXT PRIMARY KEY,
		board_id TEXT NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id),
		name TEXT NOT NULL,
		color TEXT NOT NULL,
		created_at {{ts}} NOT NULL,
		updated_at {{ts}} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_labels_board ON labels(board_id)`,
	`CREATE TABLE IF NOT EXISTS card_labels (
		card_id TEXT NOT NULL REFERENCES cards(id) ON DELETE CASCADE,
		label_id TEXT NOT NULL REFERENCES labels(id) ON DELETE CASCADE,
		PRIMARY KEY (card_id, label_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_card_labels_label ON card_labels(label_id)`,
}

// runMigrations creates the database schema if needed
func runMigrations(ctx context.Context, db *sql.DB, driver Driver) error {
	ts := "TIMESTAMP"
	if driver == DriverPostgres {
		ts = "TIMESTAMPTZ"
	}

	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, strings.ReplaceAll(stmt, "{{ts}}", ts)); err != nil {
			return fmt.Errorf("migration step %d: %w", i, err)
		}
	}

	return nil
}
