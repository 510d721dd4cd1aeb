package database

import (
	"context"
	"fmt"
	"run-tracker/model"

	"github.com/jmoiron/sqlx"
)

// GetSettings returns the stored settings, or ErrNotFound when none were saved.
func (s *Store) GetSettings(ctx context.Context) (*model.Settings, error) {
	var settings model.Settings
	err := s.db.GetContext(ctx, &settings, `SELECT allowed_game_list, stream_channel_id, streamer_role,
			COALESCE(exclude_keywords, '') AS exclude_keywords
		FROM settings LIMIT 1`)
	if err != nil {
		return nil, s.report(classify(err, "get settings"))
	}
	return &settings, nil
}

// SaveSettings replaces the settings row.
func (s *Store) SaveSettings(ctx context.Context, settings *model.Settings) error {
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM settings`); err != nil {
			return fmt.Errorf("clear settings: %w", err)
		}
		_, err := tx.NamedExecContext(ctx, `INSERT INTO settings
				(allowed_game_list, stream_channel_id, streamer_role, exclude_keywords)
			VALUES (:allowed_game_list, :stream_channel_id, :streamer_role, :exclude_keywords)`, settings)
		return err
	})
	if err != nil {
		return s.report(classify(err, "save settings"))
	}
	s.sink.LogEvent("Settings updated")
	return nil
}
