package database

import (
	"context"
	"database/sql"
	"fmt"
	"run-tracker/model"

	"github.com/jmoiron/sqlx"
)

// gameLayout is the part of the game repository that differs between storage layouts.
type gameLayout interface {
	columns() string
	insert(ctx context.Context, tx *sqlx.Tx, game *model.TrackedGame) error
	hydrate(ctx context.Context, q queryer, rec gameRecord) (*model.TrackedGame, error)
}

// gameRecord is one tracked_games row. Categories and Moderators are only selected by
// the document layout.
type gameRecord struct {
	GameID          string         `db:"game_id"`
	GameName        string         `db:"game_name"`
	CoverURL        sql.NullString `db:"cover_url"`
	GameAlias       sql.NullString `db:"game_alias"`
	AnnounceChannel int64          `db:"announce_channel"`
	Categories      sql.NullString `db:"categories"`
	Moderators      sql.NullString `db:"moderators"`
}

func newGameRecord(game *model.TrackedGame) gameRecord {
	return gameRecord{
		GameID:          game.ID,
		GameName:        game.Name,
		CoverURL:        stringToNull(game.CoverURL),
		GameAlias:       stringToNull(game.GameAlias),
		AnnounceChannel: game.AnnounceChannel,
	}
}

func (rec gameRecord) toModel() *model.TrackedGame {
	game := model.NewTrackedGame(rec.GameID, rec.GameName, nullToString(rec.CoverURL))
	game.GameAlias = nullToString(rec.GameAlias)
	game.AnnounceChannel = rec.AnnounceChannel
	return game
}

// InsertTrackedGame writes a game with all of its categories and moderators. Either
// every row is written or none is.
func (s *Store) InsertTrackedGame(ctx context.Context, game *model.TrackedGame) error {
	if err := validateGame(game); err != nil {
		return err
	}
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		return s.games.insert(ctx, tx, game)
	})
	if err != nil {
		return s.report(classify(err, "insert tracked game %q", game.ID))
	}
	s.sink.LogEvent(fmt.Sprintf("Tracking game %s with %d categories and %d moderators",
		game.ID, len(game.Categories), len(game.Moderators)))
	return nil
}

// InsertTrackedGameWithAlias writes a game and binds alias to it in one transaction.
// When the alias is taken nothing is written and the error wraps ErrDuplicate.
func (s *Store) InsertTrackedGameWithAlias(ctx context.Context, game *model.TrackedGame, alias string) error {
	if alias == "" {
		return s.InsertTrackedGame(ctx, game)
	}
	if err := validateGame(game); err != nil {
		return err
	}
	game.GameAlias = alias
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.games.insert(ctx, tx, game); err != nil {
			return err
		}
		if _, err := tx.NamedExecContext(ctx, insertAliasSQL,
			model.Alias{Alias: alias, Type: model.AliasGame, ID: game.ID}); err != nil {
			return fmt.Errorf("bind alias %q: %w", alias, err)
		}
		return nil
	})
	if err != nil {
		return s.report(classify(err, "insert tracked game %q with alias %q", game.ID, alias))
	}
	s.sink.LogEvent(fmt.Sprintf("Tracking game %s as %s with %d categories and %d moderators",
		game.ID, alias, len(game.Categories), len(game.Moderators)))
	return nil
}

// GetTrackedGame loads one game with its categories and moderators.
func (s *Store) GetTrackedGame(ctx context.Context, gameID string) (*model.TrackedGame, error) {
	var rec gameRecord
	query := s.db.Rebind(`SELECT ` + s.games.columns() + ` FROM tracked_games WHERE game_id = ?`)
	if err := s.db.GetContext(ctx, &rec, query, gameID); err != nil {
		return nil, s.report(classify(err, "get tracked game %q", gameID))
	}
	game, err := s.games.hydrate(ctx, s.db, rec)
	if err != nil {
		return nil, s.report(err)
	}
	return game, nil
}

// GetTrackedGames loads every game ordered by ID. No games is an empty slice.
func (s *Store) GetTrackedGames(ctx context.Context) ([]*model.TrackedGame, error) {
	var recs []gameRecord
	query := `SELECT ` + s.games.columns() + ` FROM tracked_games ORDER BY game_id`
	if err := s.db.SelectContext(ctx, &recs, query); err != nil {
		return nil, s.report(classify(err, "list tracked games"))
	}

	games := make([]*model.TrackedGame, 0, len(recs))
	for _, rec := range recs {
		game, err := s.games.hydrate(ctx, s.db, rec)
		if err != nil {
			return nil, s.report(err)
		}
		games = append(games, game)
	}
	return games, nil
}

// UpdateTrackedGame updates the game's own columns. Categories and moderators are not
// touched.
func (s *Store) UpdateTrackedGame(ctx context.Context, game *model.TrackedGame) error {
	res, err := s.db.NamedExecContext(ctx, `UPDATE tracked_games
		SET game_name = :game_name,
			cover_url = :cover_url,
			game_alias = :game_alias,
			announce_channel = :announce_channel
		WHERE game_id = :game_id`, newGameRecord(game))
	if err != nil {
		return s.report(classify(err, "update tracked game %q", game.ID))
	}
	return s.report(expectRow(res, "update tracked game %q", game.ID))
}

// validateGame checks that child maps are keyed by the IDs stored in their entries,
// which is what both layouts persist and read back.
func validateGame(game *model.TrackedGame) error {
	if game == nil || game.ID == "" {
		return fmt.Errorf("%w: missing game ID", ErrInvalidGame)
	}
	for key, c := range game.Categories {
		if c == nil || c.ID != key {
			return fmt.Errorf("%w: category key %q does not match its entry", ErrInvalidGame, key)
		}
	}
	for key, m := range game.Moderators {
		if m == nil || m.ID != key {
			return fmt.Errorf("%w: moderator key %q does not match its entry", ErrInvalidGame, key)
		}
	}
	return nil
}

func expectRow(res sql.Result, format string, args ...any) error {
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
	}
	return nil
}

func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	sqlx.QueryerContext
	Rebind(query string) string
}
