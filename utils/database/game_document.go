package database

import (
	"cmp"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"maps"
	"run-tracker/model"
	"slices"

	"github.com/jmoiron/sqlx"
)

// documentGames stores categories and moderators as JSON arrays on the tracked_games row.
type documentGames struct{}

// moderatorDoc pins the stored date to day precision so both layouts read back the
// same value.
type moderatorDoc struct {
	ID                  string `json:"src_id"`
	Name                string `json:"src_name"`
	DiscordID           int64  `json:"discord_id"`
	ShouldNotify        bool   `json:"should_notify"`
	SecretKey           string `json:"secret_key"`
	LastVerifiedRunDate string `json:"last_verified_run_date,omitempty"`
	TotalVerifiedRuns   int64  `json:"total_verified_runs"`
	PastModerator       bool   `json:"past_moderator"`
}

func (documentGames) columns() string {
	return `game_id, game_name, cover_url, game_alias, announce_channel, categories, moderators`
}

func (documentGames) insert(ctx context.Context, tx *sqlx.Tx, game *model.TrackedGame) error {
	rec := newGameRecord(game)

	categories := slices.SortedFunc(maps.Values(game.Categories), func(a, b *model.Category) int {
		return cmp.Compare(a.ID, b.ID)
	})
	categoriesJSON, err := model.EncodeJSON(categories)
	if err != nil {
		return fmt.Errorf("encode categories: %w", err)
	}

	moderators := make([]moderatorDoc, 0, len(game.Moderators))
	for _, id := range slices.Sorted(maps.Keys(game.Moderators)) {
		m := game.Moderators[id]
		doc := moderatorDoc{
			ID:                m.ID,
			Name:              m.Name,
			DiscordID:         m.DiscordID,
			ShouldNotify:      m.ShouldNotify,
			SecretKey:         m.SecretKey,
			TotalVerifiedRuns: m.TotalVerifiedRuns,
			PastModerator:     m.PastModerator,
		}
		if m.LastVerifiedRunDate != nil {
			doc.LastVerifiedRunDate = m.LastVerifiedRunDate.Format(dateLayout)
		}
		moderators = append(moderators, doc)
	}
	moderatorsJSON, err := model.EncodeJSON(moderators)
	if err != nil {
		return fmt.Errorf("encode moderators: %w", err)
	}

	rec.Categories = sql.NullString{String: string(categoriesJSON), Valid: true}
	rec.Moderators = sql.NullString{String: string(moderatorsJSON), Valid: true}
	_, err = tx.NamedExecContext(ctx, `INSERT INTO tracked_games
			(game_id, game_name, cover_url, game_alias, announce_channel, categories, moderators)
		VALUES (:game_id, :game_name, :cover_url, :game_alias, :announce_channel, :categories, :moderators)`, rec)
	if err != nil {
		return fmt.Errorf("insert game row: %w", err)
	}
	return nil
}

func (documentGames) hydrate(_ context.Context, _ queryer, rec gameRecord) (*model.TrackedGame, error) {
	game := rec.toModel()

	var categories []*model.Category
	if err := decodeDocument(rec.Categories, &categories); err != nil {
		return nil, &RowError{Table: tableTrackedGames, Key: rec.GameID, Column: "categories", Err: err}
	}
	for _, c := range categories {
		if c.Subcategories == nil {
			c.Subcategories = make(model.Subcategories)
		}
		game.Categories[c.ID] = c
	}

	var moderators []moderatorDoc
	if err := decodeDocument(rec.Moderators, &moderators); err != nil {
		return nil, &RowError{Table: tableTrackedGames, Key: rec.GameID, Column: "moderators", Err: err}
	}
	for _, doc := range moderators {
		m := model.NewModerator(doc.ID, doc.Name)
		m.DiscordID = doc.DiscordID
		m.ShouldNotify = doc.ShouldNotify
		m.SecretKey = doc.SecretKey
		m.TotalVerifiedRuns = doc.TotalVerifiedRuns
		m.PastModerator = doc.PastModerator
		date, err := parseDate(sql.NullString{String: doc.LastVerifiedRunDate, Valid: true})
		if err != nil {
			return nil, &RowError{Table: tableTrackedGames, Key: rec.GameID, Column: "moderators", Err: err}
		}
		m.LastVerifiedRunDate = date
		game.Moderators[m.ID] = m
	}
	return game, nil
}

func decodeDocument(ns sql.NullString, dst any) error {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(ns.String), dst)
}
