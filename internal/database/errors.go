package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/thenoetrevino/quadro/internal/models"
)

// Postgres SQLSTATE codes we classify
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
)

// Classify maps a store failure onto the models error taxonomy.
// Errors already classified pass through unchanged. Conflicts are never retried here.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var classified *models.Error
	if errors.As(err, &classified) {
		return err
	}

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return &models.Error{Kind: models.KindNotFound, Message: "not found", Err: err}
	case IsConflict(err):
		return models.Conflict("concurrent modification, retry the request", err)
	case isUniqueViolation(err):
		return models.Conflict("duplicate value", err)
	case isForeignKeyViolation(err):
		return &models.Error{Kind: models.KindValidation, Message: "referenced entity does not exist", Err: err}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return models.Storage("operation cancelled", err)
	default:
		return models.Storage("storage failure", err)
	}
}

// IsConflict reports whether err is a serialization failure, deadlock or busy lock
func IsConflict(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return true
		}
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return true
		}
	}
	return false
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return strings.Contains(se.Error(), "UNIQUE")
		}
		return false
	}

	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return strings.Contains(se.Error(), "FOREIGN KEY")
		}
		return false
	}

	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}
