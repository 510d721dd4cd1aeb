package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	sqlite3 "github.com/mattn/go-sqlite3"
	moderncsqlite "modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound indicates a requested record is missing. It is a valid empty result,
	// not a backend failure.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate indicates a primary key or unique constraint rejected a write.
	ErrDuplicate = errors.New("record already exists")
	// ErrMalformedAlias indicates a category alias without the game alias prefix.
	ErrMalformedAlias = errors.New("category alias has no game alias prefix")
	// ErrInvalidGame indicates an aggregate whose maps are not keyed by their entries' IDs.
	ErrInvalidGame = errors.New("invalid tracked game")
)

const pgUniqueViolation = "23505"

// RowError reports a stored row that could not be turned back into a model value.
type RowError struct {
	Table  string
	Key    string
	Column string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("failed to hydrate %s row %q column %s: %v", e.Table, e.Key, e.Column, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// isConstraintViolation recognises constraint failures from every supported driver.
func isConstraintViolation(err error) bool {
	var mattnErr sqlite3.Error
	if errors.As(err, &mattnErr) {
		return mattnErr.Code == sqlite3.ErrConstraint
	}
	var moderncErr *moderncsqlite.Error
	if errors.As(err, &moderncErr) {
		return moderncErr.Code()&0xff == sqlitelib.SQLITE_CONSTRAINT
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}

// classify turns driver errors into the package sentinels and wraps everything else.
func classify(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", msg, ErrNotFound)
	case isConstraintViolation(err):
		return fmt.Errorf("%s: %w: %v", msg, ErrDuplicate, err)
	default:
		return fmt.Errorf("failed to %s: %w", msg, err)
	}
}
