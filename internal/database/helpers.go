package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/thenoetrevino/quadro/internal/models"
)

// Tx is a transaction-scoped repository. Every method runs inside the
// transaction it was created for; nothing here commits.
type Tx struct {
	tx     *sql.Tx
	driver Driver
}

// WithTx executes fn within a database transaction.
// It handles begin, rollback on error, and commit on success.
// Postgres runs SERIALIZABLE. SQLite file databases begin IMMEDIATE, which
// takes the write lock up front and serializes writers across processes.
func (s *Store) WithTx(ctx context.Context, fn func(*Tx) error) error {
	return s.withTx(ctx, s.txOptions(false), fn)
}

// View runs fn in a read-only transaction and classifies any failure
func (s *Store) View(ctx context.Context, fn func(*Tx) error) error {
	return Classify(s.withTx(ctx, s.txOptions(true), fn))
}

func (s *Store) withTx(ctx context.Context, opts *sql.TxOptions, fn func(*Tx) error) error {
	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	if err := fn(&Tx{tx: tx, driver: s.driver}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (s *Store) txOptions(readOnly bool) *sql.TxOptions {
	if s.driver != DriverPostgres {
		return nil
	}
	if readOnly {
		return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}
	return &sql.TxOptions{Isolation: sql.LevelSerializable}
}

func (t *Tx) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, t.rebind(query), args...)
}

func (t *Tx) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, t.rebind(query), args...)
}

func (t *Tx) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(ctx, t.rebind(query), args...)
}

// rebind rewrites ? placeholders as $1..$n for Postgres
func (t *Tx) rebind(query string) string {
	if t.driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// placeholders returns "?, ?, ?" for n arguments
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// Now returns the timestamp stored for created_at/updated_at.
// Microsecond precision round-trips through both backends.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// nullStringPtr converts sql.NullString to *string.
// Returns nil if the value is not valid.
func nullStringPtr(ns sql.NullString) *string {
	if ns.Valid {
		val := ns.String
		return &val
	}
	return nil
}

// nullTimePtr converts sql.NullTime to *time.Time.
// Returns nil if the value is not valid.
func nullTimePtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		val := nt.Time.UTC()
		return &val
	}
	return nil
}

// timeArg converts an optional time to a bind argument
func timeArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

// stringArg converts an optional string to a bind argument
func stringArg(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// NullStringToString converts sql.NullString to string.
// Returns empty string if the value is not valid.
func NullStringToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// scanIDs collects a single string column
func scanIDs(rows *sql.Rows) ([]string, error) {
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// userRef builds the embedded user projection from a LEFT JOIN
func userRef(id, name, email sql.NullString) *models.UserRef {
	if !id.Valid {
		return nil
	}
	return &models.UserRef{ID: id.String, Name: NullStringToString(name), Email: NullStringToString(email)}
}
