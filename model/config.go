package model

// Dialect selects the SQL backend.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Layout selects how a tracked game's categories and moderators are stored.
type Layout string

const (
	// LayoutNormalized keeps categories and moderators in their own tables.
	LayoutNormalized Layout = "normalized"
	// LayoutDocument keeps them as JSON columns on tracked_games.
	LayoutDocument Layout = "document"
)

// StoreConfig describes how to reach and lay out the database.
type StoreConfig struct {
	Dialect      Dialect
	Layout       Layout
	SQLiteDriver string // "sqlite3" (mattn) or "sqlite" (modernc)
	DatabasePath string
	DatabaseURL  string
	MaxConns     int
}

// Config stores the application configuration.
type Config struct {
	Store         StoreConfig
	LogLevel      string
	LogWebhookURL string
}
