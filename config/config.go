package config

import (
	"fmt"
	"log/slog"
	"run-tracker/model"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultDatabasePath = "./data/database.db"
	defaultMaxConns     = 4
)

// Load loads the configuration from the environment, reading a .env file first when
// one exists.
func Load() (*model.Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug(".env file not found, relying on environment variables")
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("STORE_DIALECT", string(model.DialectSQLite))
	v.SetDefault("STORE_LAYOUT", string(model.LayoutNormalized))
	v.SetDefault("SQLITE_DRIVER", "sqlite3")
	v.SetDefault("DATABASE_PATH", defaultDatabasePath)
	v.SetDefault("DATABASE_MAX_CONNS", defaultMaxConns)
	v.SetDefault("LOG_LEVEL", "info")
	return v
}

// FromViper builds and validates a Config from v.
func FromViper(v *viper.Viper) (*model.Config, error) {
	cfg := &model.Config{
		Store: model.StoreConfig{
			Dialect:      model.Dialect(strings.ToLower(strings.TrimSpace(v.GetString("STORE_DIALECT")))),
			Layout:       model.Layout(strings.ToLower(strings.TrimSpace(v.GetString("STORE_LAYOUT")))),
			SQLiteDriver: strings.TrimSpace(v.GetString("SQLITE_DRIVER")),
			DatabasePath: v.GetString("DATABASE_PATH"),
			DatabaseURL:  strings.TrimSpace(v.GetString("DATABASE_URL")),
			MaxConns:     v.GetInt("DATABASE_MAX_CONNS"),
		},
		LogLevel:      strings.ToLower(v.GetString("LOG_LEVEL")),
		LogWebhookURL: v.GetString("LOG_WEBHOOK_URL"),
	}

	if err := Validate(cfg.Store); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that a store configuration names a known dialect, layout and driver.
func Validate(sc model.StoreConfig) error {
	switch sc.Dialect {
	case model.DialectSQLite:
		if sc.SQLiteDriver != "sqlite3" && sc.SQLiteDriver != "sqlite" {
			return fmt.Errorf("unsupported SQLITE_DRIVER %q", sc.SQLiteDriver)
		}
		if sc.DatabasePath == "" {
			return fmt.Errorf("DATABASE_PATH is required for the sqlite dialect")
		}
	case model.DialectPostgres:
		if sc.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres dialect")
		}
	default:
		return fmt.Errorf("unsupported STORE_DIALECT %q", sc.Dialect)
	}

	switch sc.Layout {
	case model.LayoutNormalized, model.LayoutDocument:
	default:
		return fmt.Errorf("unsupported STORE_LAYOUT %q", sc.Layout)
	}

	if sc.MaxConns < 1 {
		return fmt.Errorf("DATABASE_MAX_CONNS must be positive, got %d", sc.MaxConns)
	}
	return nil
}
