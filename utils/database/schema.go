package database

import (
	"context"
	"fmt"
	"run-tracker/model"
	"strings"
)

const (
	tableTrackedGames   = "tracked_games"
	tableCategories     = "categories"
	tableModerators     = "moderators"
	tableTrackedRunners = "tracked_runners"
	tableAliases        = "aliases"
	tableResources      = "resources"
	tableManagers       = "managers"
	tableNotifications  = "notifications"
	tableAnnouncements  = "announcements"
	tableSettings       = "settings"
)

// contentTables hold tracked data; dropping them keeps authorization and run-log state.
var contentTables = []string{
	tableTrackedGames,
	tableCategories,
	tableModerators,
	tableTrackedRunners,
	tableResources,
	tableAliases,
}

var allTables = append(append([]string{}, contentTables...),
	tableManagers,
	tableNotifications,
	tableAnnouncements,
	tableSettings,
)

var (
	sqliteTypes = strings.NewReplacer(
		"{{id}}", "TEXT",
		"{{text}}", "TEXT",
		"{{int}}", "INTEGER",
		"{{json}}", "TEXT",
	)
	postgresTypes = strings.NewReplacer(
		"{{id}}", "VARCHAR(255)",
		"{{text}}", "TEXT",
		"{{int}}", "BIGINT",
		"{{json}}", "JSONB",
	)
)

const createTrackedGamesSQL = `CREATE TABLE IF NOT EXISTS tracked_games (
	game_id {{id}} NOT NULL,
	game_name {{text}} NOT NULL,
	cover_url {{text}},
	game_alias {{text}},
	announce_channel {{int}} NOT NULL,%s
	PRIMARY KEY (game_id)
)`

const gameDocumentColumns = `
	categories {{json}},
	moderators {{json}},`

var childTableSchemas = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		category_id {{id}} NOT NULL,
		game_id {{id}} NOT NULL,
		name {{text}} NOT NULL,
		rules {{text}},
		subcategories {{json}},
		current_wr_run_id {{text}},
		current_wr_time {{int}},
		longest_held_wr_id {{text}},
		longest_held_wr_time {{int}},
		number_submitted_runs {{int}},
		number_submitted_wrs {{int}},
		PRIMARY KEY (category_id, game_id)
	)`,
	`CREATE TABLE IF NOT EXISTS moderators (
		src_id {{id}} NOT NULL,
		game_id {{id}} NOT NULL,
		src_name {{text}} NOT NULL,
		discord_id {{int}} NOT NULL,
		should_notify {{int}} NOT NULL,
		secret_key {{text}} NOT NULL,
		last_verified_run_date {{text}},
		total_verified_runs {{int}} NOT NULL,
		past_moderator {{int}} NOT NULL,
		PRIMARY KEY (src_id, game_id)
	)`,
}

var sharedTableSchemas = []string{
	`CREATE TABLE IF NOT EXISTS tracked_runners (
		user_id {{id}} NOT NULL,
		user_name {{id}} NOT NULL,
		avatar_url {{text}},
		historic_runs {{text}},
		num_submitted_wrs {{int}},
		num_submitted_runs {{int}},
		total_time_overall {{int}},
		PRIMARY KEY (user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS aliases (
		alias {{id}} NOT NULL,
		type {{id}} NOT NULL,
		id {{id}} NOT NULL UNIQUE,
		PRIMARY KEY (alias, type)
	)`,
	`CREATE TABLE IF NOT EXISTS resources (
		resource {{id}} NOT NULL,
		game_alias {{id}} NOT NULL,
		content {{text}} NOT NULL,
		PRIMARY KEY (resource, game_alias)
	)`,
	`CREATE TABLE IF NOT EXISTS managers (
		user_id {{id}} NOT NULL,
		access_level {{int}} NOT NULL,
		PRIMARY KEY (user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		run_id {{id}} NOT NULL,
		PRIMARY KEY (run_id)
	)`,
	`CREATE TABLE IF NOT EXISTS announcements (
		run_id {{id}} NOT NULL,
		PRIMARY KEY (run_id)
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		allowed_game_list {{text}} NOT NULL,
		stream_channel_id {{text}} NOT NULL,
		streamer_role {{text}} NOT NULL,
		exclude_keywords {{text}}
	)`,
}

func (s *Store) typeReplacer() *strings.Replacer {
	if s.dialect == model.DialectPostgres {
		return postgresTypes
	}
	return sqliteTypes
}

// schemaStatements returns the DDL for this store's dialect and layout.
func (s *Store) schemaStatements() []string {
	types := s.typeReplacer()

	extra := ""
	if s.layout == model.LayoutDocument {
		extra = gameDocumentColumns
	}
	stmts := []string{types.Replace(fmt.Sprintf(createTrackedGamesSQL, extra))}
	if s.layout == model.LayoutNormalized {
		for _, ddl := range childTableSchemas {
			stmts = append(stmts, types.Replace(ddl))
		}
	}
	for _, ddl := range sharedTableSchemas {
		stmts = append(stmts, types.Replace(ddl))
	}
	return stmts
}

// CreateSchema creates every table that does not exist yet. Running it against an
// already provisioned database changes nothing.
func (s *Store) CreateSchema(ctx context.Context) error {
	for _, stmt := range s.schemaStatements() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return s.report(fmt.Errorf("failed to create schema: %w", err))
		}
	}
	s.sink.LogEvent("Tables Created Successfully")
	return nil
}

// DestroySchema drops every table. On postgres the whole public schema is dropped and
// recreated. There is no undo.
func (s *Store) DestroySchema(ctx context.Context) error {
	if s.dialect == model.DialectPostgres {
		for _, stmt := range []string{`DROP SCHEMA public CASCADE`, `CREATE SCHEMA public`} {
			if _, err := s.db.ExecContext(ctx, stmt); err != nil {
				return s.report(fmt.Errorf("failed to destroy schema: %w", err))
			}
		}
	} else if err := s.dropTables(ctx, allTables); err != nil {
		return s.report(fmt.Errorf("failed to destroy schema: %w", err))
	}
	s.sink.LogEvent("Tables Dropped")
	return nil
}

// DestroyExceptManagers drops the tracked content tables and keeps managers,
// notifications, announcements and settings.
func (s *Store) DestroyExceptManagers(ctx context.Context) error {
	if err := s.dropTables(ctx, contentTables); err != nil {
		return s.report(fmt.Errorf("failed to drop content tables: %w", err))
	}
	s.sink.LogEvent("Dropped Every Non-Manager & Notification Table")
	return nil
}

func (s *Store) dropTables(ctx context.Context, tables []string) error {
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS `+table); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}

// Tables lists the tables that currently exist, sorted by name.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	query := `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`
	if s.dialect == model.DialectPostgres {
		query = `SELECT table_name FROM information_schema.tables WHERE table_schema = 'public' ORDER BY table_name`
	}
	var tables []string
	if err := s.db.SelectContext(ctx, &tables, query); err != nil {
		return nil, s.report(fmt.Errorf("failed to list tables: %w", err))
	}
	return tables, nil
}
