package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"run-tracker/model"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

func init() {
	// modernc registers itself as "sqlite".
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Store is the persistence core. It owns one connection pool and implements every
// repository over it; multi-statement writes run in their own transaction.
type Store struct {
	db      *sqlx.DB
	dialect model.Dialect
	layout  model.Layout
	games   gameLayout
	sink    model.Telemetry
}

// Open connects to the database described by sc and returns a Store. The schema is not
// created; call CreateSchema.
func Open(ctx context.Context, sc model.StoreConfig, sink model.Telemetry) (*Store, error) {
	var driverName, dsn string
	switch sc.Dialect {
	case model.DialectSQLite:
		driverName = sc.SQLiteDriver
		dsn = sc.DatabasePath
		if dir := filepath.Dir(dsn); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, os.ModePerm); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
	case model.DialectPostgres:
		driverName = "pgx"
		dsn = sc.DatabaseURL
	default:
		return nil, fmt.Errorf("unsupported dialect %q", sc.Dialect)
	}

	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", sc.Dialect, err)
	}
	if sc.Dialect == model.DialectSQLite {
		db.SetMaxOpenConns(1)
	} else if sc.MaxConns > 0 {
		db.SetMaxOpenConns(sc.MaxConns)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", sc.Dialect, err)
	}

	store, err := New(db, sc.Dialect, sc.Layout, sink)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an existing connection pool.
func New(db *sqlx.DB, dialect model.Dialect, layout model.Layout, sink model.Telemetry) (*Store, error) {
	s := &Store{db: db, dialect: dialect, layout: layout, sink: sink}
	if s.sink == nil {
		s.sink = nopTelemetry{}
	}
	switch layout {
	case model.LayoutNormalized:
		s.games = normalizedGames{}
	case model.LayoutDocument:
		s.games = documentGames{}
	default:
		return nil, fmt.Errorf("unsupported layout %q", layout)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Dialect() model.Dialect { return s.dialect }

func (s *Store) Layout() model.Layout { return s.layout }

// withTx runs fn in a transaction, committing only when fn succeeds.
func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("failed to roll back transaction: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// report forwards a failure to telemetry. Not-found results are not failures.
func (s *Store) report(err error) error {
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.sink.LogError(err)
	}
	return err
}

type nopTelemetry struct{}

func (nopTelemetry) LogEvent(string) {}
func (nopTelemetry) LogError(error)  {}
