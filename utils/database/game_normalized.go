package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"maps"
	"run-tracker/model"
	"slices"
	"time"

	"github.com/jmoiron/sqlx"
)

// dateLayout is how moderator dates are stored.
const dateLayout = "2006-01-02"

// normalizedGames stores categories and moderators in their own tables keyed by
// (child ID, game ID).
type normalizedGames struct{}

type categoryRow struct {
	CategoryID          string         `db:"category_id"`
	GameID              string         `db:"game_id"`
	Name                string         `db:"name"`
	Rules               sql.NullString `db:"rules"`
	Subcategories       sql.NullString `db:"subcategories"`
	CurrentWRRunID      sql.NullString `db:"current_wr_run_id"`
	CurrentWRTime       sql.NullInt64  `db:"current_wr_time"`
	LongestHeldWRID     sql.NullString `db:"longest_held_wr_id"`
	LongestHeldWRTime   sql.NullInt64  `db:"longest_held_wr_time"`
	NumberSubmittedRuns sql.NullInt64  `db:"number_submitted_runs"`
	NumberSubmittedWRs  sql.NullInt64  `db:"number_submitted_wrs"`
}

type moderatorRow struct {
	SrcID               string         `db:"src_id"`
	GameID              string         `db:"game_id"`
	SrcName             string         `db:"src_name"`
	DiscordID           int64          `db:"discord_id"`
	ShouldNotify        int64          `db:"should_notify"`
	SecretKey           string         `db:"secret_key"`
	LastVerifiedRunDate sql.NullString `db:"last_verified_run_date"`
	TotalVerifiedRuns   int64          `db:"total_verified_runs"`
	PastModerator       int64          `db:"past_moderator"`
}

const (
	insertGameSQL = `INSERT INTO tracked_games (game_id, game_name, cover_url, game_alias, announce_channel)
		VALUES (:game_id, :game_name, :cover_url, :game_alias, :announce_channel)`
	insertCategorySQL = `INSERT INTO categories (category_id, game_id, name, rules, subcategories,
			current_wr_run_id, current_wr_time, longest_held_wr_id, longest_held_wr_time,
			number_submitted_runs, number_submitted_wrs)
		VALUES (:category_id, :game_id, :name, :rules, :subcategories,
			:current_wr_run_id, :current_wr_time, :longest_held_wr_id, :longest_held_wr_time,
			:number_submitted_runs, :number_submitted_wrs)`
	insertModeratorSQL = `INSERT INTO moderators (src_id, game_id, src_name, discord_id, should_notify,
			secret_key, last_verified_run_date, total_verified_runs, past_moderator)
		VALUES (:src_id, :game_id, :src_name, :discord_id, :should_notify,
			:secret_key, :last_verified_run_date, :total_verified_runs, :past_moderator)`
)

func (normalizedGames) columns() string {
	return `game_id, game_name, cover_url, game_alias, announce_channel`
}

func (normalizedGames) insert(ctx context.Context, tx *sqlx.Tx, game *model.TrackedGame) error {
	if _, err := tx.NamedExecContext(ctx, insertGameSQL, newGameRecord(game)); err != nil {
		return fmt.Errorf("insert game row: %w", err)
	}
	for _, id := range slices.Sorted(maps.Keys(game.Categories)) {
		row, err := newCategoryRow(game.ID, game.Categories[id])
		if err != nil {
			return err
		}
		if _, err := tx.NamedExecContext(ctx, insertCategorySQL, row); err != nil {
			return fmt.Errorf("insert category %q: %w", id, err)
		}
	}
	for _, id := range slices.Sorted(maps.Keys(game.Moderators)) {
		if _, err := tx.NamedExecContext(ctx, insertModeratorSQL, newModeratorRow(game.ID, game.Moderators[id])); err != nil {
			return fmt.Errorf("insert moderator %q: %w", id, err)
		}
	}
	return nil
}

func (normalizedGames) hydrate(ctx context.Context, q queryer, rec gameRecord) (*model.TrackedGame, error) {
	game := rec.toModel()
	categories, err := getCategories(ctx, q, rec.GameID)
	if err != nil {
		return nil, err
	}
	moderators, err := getModerators(ctx, q, rec.GameID)
	if err != nil {
		return nil, err
	}
	game.Categories = categories
	game.Moderators = moderators
	return game, nil
}

func newCategoryRow(gameID string, c *model.Category) (categoryRow, error) {
	subcategories, err := model.EncodeJSON(c.Subcategories)
	if err != nil {
		return categoryRow{}, fmt.Errorf("encode subcategories of %q: %w", c.ID, err)
	}
	return categoryRow{
		CategoryID:          c.ID,
		GameID:              gameID,
		Name:                c.Name,
		Rules:               stringToNull(c.Rules),
		Subcategories:       sql.NullString{String: string(subcategories), Valid: true},
		CurrentWRRunID:      stringToNull(c.CurrentWRRunID),
		CurrentWRTime:       sql.NullInt64{Int64: c.CurrentWRTime, Valid: true},
		LongestHeldWRID:     stringToNull(c.LongestHeldWRID),
		LongestHeldWRTime:   sql.NullInt64{Int64: c.LongestHeldWRTime, Valid: true},
		NumberSubmittedRuns: sql.NullInt64{Int64: c.NumberSubmittedRuns, Valid: true},
		NumberSubmittedWRs:  sql.NullInt64{Int64: c.NumberSubmittedWRs, Valid: true},
	}, nil
}

func (row categoryRow) toModel() (*model.Category, error) {
	c := model.NewCategory(row.CategoryID, row.Name, nullToString(row.Rules))
	if err := decodeSubcategories(row.Subcategories, &c.Subcategories); err != nil {
		return nil, &RowError{Table: tableCategories, Key: row.GameID + "/" + row.CategoryID, Column: "subcategories", Err: err}
	}
	c.CurrentWRRunID = nullToString(row.CurrentWRRunID)
	c.CurrentWRTime = row.CurrentWRTime.Int64
	c.LongestHeldWRID = nullToString(row.LongestHeldWRID)
	c.LongestHeldWRTime = row.LongestHeldWRTime.Int64
	c.NumberSubmittedRuns = row.NumberSubmittedRuns.Int64
	c.NumberSubmittedWRs = row.NumberSubmittedWRs.Int64
	return c, nil
}

func decodeSubcategories(ns sql.NullString, dst *model.Subcategories) error {
	if !ns.Valid || ns.String == "" || ns.String == "null" {
		*dst = make(model.Subcategories)
		return nil
	}
	if err := json.Unmarshal([]byte(ns.String), dst); err != nil {
		return err
	}
	if *dst == nil {
		*dst = make(model.Subcategories)
	}
	return nil
}

func newModeratorRow(gameID string, m *model.Moderator) moderatorRow {
	row := moderatorRow{
		SrcID:             m.ID,
		GameID:            gameID,
		SrcName:           m.Name,
		DiscordID:         m.DiscordID,
		ShouldNotify:      boolToInt(m.ShouldNotify),
		SecretKey:         m.SecretKey,
		TotalVerifiedRuns: m.TotalVerifiedRuns,
		PastModerator:     boolToInt(m.PastModerator),
	}
	if m.LastVerifiedRunDate != nil {
		row.LastVerifiedRunDate = sql.NullString{String: m.LastVerifiedRunDate.Format(dateLayout), Valid: true}
	}
	return row
}

func (row moderatorRow) toModel() (*model.Moderator, error) {
	m := model.NewModerator(row.SrcID, row.SrcName)
	m.DiscordID = row.DiscordID
	m.ShouldNotify = row.ShouldNotify != 0
	m.SecretKey = row.SecretKey
	m.TotalVerifiedRuns = row.TotalVerifiedRuns
	m.PastModerator = row.PastModerator != 0

	date, err := parseDate(row.LastVerifiedRunDate)
	if err != nil {
		return nil, &RowError{Table: tableModerators, Key: row.GameID + "/" + row.SrcID, Column: "last_verified_run_date", Err: err}
	}
	m.LastVerifiedRunDate = date
	return m, nil
}

// parseDate leaves the date unset for NULL and empty values instead of parsing them.
func parseDate(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// getCategories returns the categories of a game keyed by category ID.
func getCategories(ctx context.Context, q queryer, gameID string) (map[string]*model.Category, error) {
	var rows []categoryRow
	query := q.Rebind(`SELECT category_id, game_id, name, rules, subcategories,
			current_wr_run_id, current_wr_time, longest_held_wr_id, longest_held_wr_time,
			number_submitted_runs, number_submitted_wrs
		FROM categories WHERE game_id = ? ORDER BY category_id`)
	if err := sqlx.SelectContext(ctx, q, &rows, query, gameID); err != nil {
		return nil, fmt.Errorf("failed to get categories for game %q: %w", gameID, err)
	}

	categories := make(map[string]*model.Category, len(rows))
	for _, row := range rows {
		c, err := row.toModel()
		if err != nil {
			return nil, err
		}
		categories[c.ID] = c
	}
	return categories, nil
}

// getModerators returns the moderators of a game keyed by moderator ID.
func getModerators(ctx context.Context, q queryer, gameID string) (map[string]*model.Moderator, error) {
	var rows []moderatorRow
	query := q.Rebind(`SELECT src_id, game_id, src_name, discord_id, should_notify, secret_key,
			last_verified_run_date, total_verified_runs, past_moderator
		FROM moderators WHERE game_id = ? ORDER BY src_id`)
	if err := sqlx.SelectContext(ctx, q, &rows, query, gameID); err != nil {
		return nil, fmt.Errorf("failed to get moderators for game %q: %w", gameID, err)
	}

	moderators := make(map[string]*model.Moderator, len(rows))
	for _, row := range rows {
		m, err := row.toModel()
		if err != nil {
			return nil, err
		}
		moderators[m.ID] = m
	}
	return moderators, nil
}
