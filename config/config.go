package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/guttosm/quantlevels/internal/storage"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// Example ENV:
//
//	SERVER_PORT=8080
//	STORE_DRIVER=postgres
//	POSTGRES_HOST=localhost
//	POSTGRES_DB=quantlevels
//	LEVELS_TABLE=quant_lvl_data_te
//	LEVELS_WRITE_MODE=upsert
//	FEED_BASE_URL=https://tradingedge.club/api/web/v1/spaces/20140900/feed
//	FEED_COOKIE=...
//	INGEST_CRON="0 30 21 * * 1-5"
type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Store    StoreConfig
	Levels   LevelsConfig
	Feed     FeedConfig
	Ingest   IngestConfig
}

// ServerConfig holds HTTP server settings such as the port to listen on.
type ServerConfig struct {
	Port string
}

// PostgresConfig defines connection details for PostgreSQL.
//
// Fields:
//   - Host, Port, User, Password, DBName, SSLMode: connection parts.
//   - URL: computed DSN used by database/sql to connect.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string
}

// StoreConfig selects the storage engine.
type StoreConfig struct {
	Driver        string
	SQLitePath    string
	MigrationsDir string
}

// LevelsConfig describes the levels target table and how runs write to it.
type LevelsConfig struct {
	Table         string
	PrimaryKeys   []string
	Instrument    string
	WriteMode     storage.WriteMode
	StagingPrefix string
	StringWidth   int
}

// FeedConfig configures the community feed client.
type FeedConfig struct {
	BaseURL            string
	Cookie             string
	UserAgent          string
	PerPage            int
	RequestsPerSecond  float64
	Timeout            time.Duration
	AttachmentParallel int
}

// Validate reports settings the fetching modes cannot run without.
func (f FeedConfig) Validate() error {
	var missing []string
	if f.BaseURL == "" {
		missing = append(missing, "FEED_BASE_URL")
	}
	if f.Cookie == "" {
		missing = append(missing, "FEED_COOKIE")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing feed settings: %v", missing)
	}
	return nil
}

// IngestConfig holds the schedule of incremental runs.
type IngestConfig struct {
	Cron string
}

// AppConfig is the globally accessible configuration instance, populated once via LoadConfig().
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Fatal exit:
//   - validateConfig() terminates the app on missing or invalid values.
func LoadConfig() {
	setDefaults()

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()

	AppConfig = Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetInt("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		},
		Store: StoreConfig{
			Driver:        strings.ToLower(strings.TrimSpace(viper.GetString("STORE_DRIVER"))),
			SQLitePath:    viper.GetString("SQLITE_PATH"),
			MigrationsDir: viper.GetString("MIGRATIONS_DIR"),
		},
		Levels: LevelsConfig{
			Table:         viper.GetString("LEVELS_TABLE"),
			PrimaryKeys:   splitList(viper.GetString("LEVELS_PRIMARY_KEYS")),
			Instrument:    strings.ToUpper(viper.GetString("LEVELS_INSTRUMENT")),
			StagingPrefix: viper.GetString("LEVELS_STAGING_PREFIX"),
			StringWidth:   viper.GetInt("LEVELS_STRING_WIDTH"),
		},
		Feed: FeedConfig{
			BaseURL:            viper.GetString("FEED_BASE_URL"),
			Cookie:             viper.GetString("FEED_COOKIE"),
			UserAgent:          viper.GetString("FEED_USER_AGENT"),
			PerPage:            viper.GetInt("FEED_PER_PAGE"),
			RequestsPerSecond:  viper.GetFloat64("FEED_REQUESTS_PER_SECOND"),
			Timeout:            viper.GetDuration("FEED_TIMEOUT"),
			AttachmentParallel: viper.GetInt("FEED_ATTACHMENT_PARALLEL"),
		},
		Ingest: IngestConfig{
			Cron: viper.GetString("INGEST_CRON"),
		},
	}

	AppConfig.Postgres.URL = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		AppConfig.Postgres.User,
		AppConfig.Postgres.Password,
		AppConfig.Postgres.Host,
		AppConfig.Postgres.Port,
		AppConfig.Postgres.DBName,
		AppConfig.Postgres.SSLMode,
	)

	mode, err := storage.ParseWriteMode(viper.GetString("LEVELS_WRITE_MODE"))
	if err != nil {
		log.Fatalf("invalid LEVELS_WRITE_MODE: %v", err)
	}
	AppConfig.Levels.WriteMode = mode

	validateConfig()
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "quantlevels")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")

	viper.SetDefault("STORE_DRIVER", DriverPostgres)
	viper.SetDefault("SQLITE_PATH", "./data/quantlevels.db")
	viper.SetDefault("MIGRATIONS_DIR", "db/migrations")

	viper.SetDefault("LEVELS_TABLE", "quant_lvl_data_te")
	viper.SetDefault("LEVELS_PRIMARY_KEYS", "datetime,ticker,start_lvl_price")
	viper.SetDefault("LEVELS_INSTRUMENT", "SPX")
	viper.SetDefault("LEVELS_WRITE_MODE", "upsert")
	viper.SetDefault("LEVELS_STAGING_PREFIX", storage.DefaultStagingPrefix)
	viper.SetDefault("LEVELS_STRING_WIDTH", storage.DefaultStringWidth)

	viper.SetDefault("FEED_BASE_URL", "https://tradingedge.club/api/web/v1/spaces/20140900/feed")
	viper.SetDefault("FEED_USER_AGENT", "Mozilla/5.0 (X11; Linux x86_64) quantlevels")
	viper.SetDefault("FEED_PER_PAGE", 20)
	viper.SetDefault("FEED_REQUESTS_PER_SECOND", 1)
	viper.SetDefault("FEED_TIMEOUT", "10s")
	viper.SetDefault("FEED_ATTACHMENT_PARALLEL", 4)

	viper.SetDefault("INGEST_CRON", "0 30 21 * * 1-5")
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// validateConfig terminates the application when required values are missing or invalid.
func validateConfig() {
	if err := checkConfig(AppConfig); err != nil {
		log.Fatalf("❌ Invalid configuration: %v\n", err)
	}
}

func checkConfig(c Config) error {
	var missing []string

	if c.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}
	switch c.Store.Driver {
	case DriverPostgres:
		if c.Postgres.Host == "" {
			missing = append(missing, "POSTGRES_HOST")
		}
		if c.Postgres.Port == 0 {
			missing = append(missing, "POSTGRES_PORT")
		}
		if c.Postgres.User == "" {
			missing = append(missing, "POSTGRES_USER")
		}
		if c.Postgres.Password == "" {
			missing = append(missing, "POSTGRES_PASSWORD")
		}
		if c.Postgres.DBName == "" {
			missing = append(missing, "POSTGRES_DB")
		}
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			missing = append(missing, "SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Levels.Table == "" {
		missing = append(missing, "LEVELS_TABLE")
	}
	if len(c.Levels.PrimaryKeys) == 0 {
		missing = append(missing, "LEVELS_PRIMARY_KEYS")
	}
	if c.Levels.Instrument == "" {
		missing = append(missing, "LEVELS_INSTRUMENT")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missing)
	}
	if c.Levels.StringWidth <= 0 {
		return errors.New("LEVELS_STRING_WIDTH must be positive")
	}
	return nil
}
