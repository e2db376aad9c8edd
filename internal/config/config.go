package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Inventory InventoryConfig
	MongoDB   MongoDBConfig
	Sheets    SheetsConfig
	Reporting ReportingConfig
	Sessions  SessionConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// InventoryConfig points the engine at the external inventory service.
type InventoryConfig struct {
	BaseURL  string
	APIToken string
	// Timeout bounds every call to the inventory service; it is advisory on
	// the client and does not cancel work server-side.
	Timeout time.Duration
	// FetchRetries applies to batch reads only. Allocate and commit are
	// never retried automatically.
	FetchRetries int
}

// MongoDBConfig holds settings for the sales journal database.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// SheetsConfig configures the optional Google Sheets summary export. Both
// fields must be set together or the export is disabled.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	SummaryCronSchedule string
	Timezone            string
}

// SessionConfig bounds the lifetime of idle POS sessions.
type SessionConfig struct {
	IdleTimeout time.Duration
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	timeoutSeconds, err := getenvInt("INVENTORY_TIMEOUT_SECONDS", 10)
	if err != nil {
		return nil, err
	}
	fetchRetries, err := getenvInt("INVENTORY_FETCH_RETRIES", 2)
	if err != nil {
		return nil, err
	}
	idleMinutes, err := getenvInt("SESSION_IDLE_MINUTES", 120)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Inventory: InventoryConfig{
			BaseURL:      os.Getenv("INVENTORY_BASE_URL"),
			APIToken:     os.Getenv("INVENTORY_API_TOKEN"),
			Timeout:      time.Duration(timeoutSeconds) * time.Second,
			FetchRetries: fetchRetries,
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "pos_engine"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("SALES_SHEET_ID"),
		},
		Reporting: ReportingConfig{
			SummaryCronSchedule: getenvWithDefault("SUMMARY_CRON_SCHEDULE", "0 21 * * *"),
			Timezone:            getenvWithDefault("TIMEZONE", "UTC"),
		},
		Sessions: SessionConfig{
			IdleTimeout: time.Duration(idleMinutes) * time.Minute,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Inventory.BaseURL == "" {
		return errors.New("INVENTORY_BASE_URL must be provided")
	}
	if c.Inventory.Timeout <= 0 {
		return errors.New("INVENTORY_TIMEOUT_SECONDS must be positive")
	}
	if c.Inventory.FetchRetries < 0 {
		return errors.New("INVENTORY_FETCH_RETRIES must not be negative")
	}

	if c.MongoDB.URI == "" {
		return errors.New("MONGODB_URI must be provided")
	}
	if c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	// The summary export is optional, but a half-configured one is a
	// deployment mistake worth failing loudly on.
	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and SALES_SHEET_ID must be set together")
	}

	if c.Reporting.SummaryCronSchedule == "" {
		return errors.New("SUMMARY_CRON_SCHEDULE must be provided")
	}
	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	if c.Sessions.IdleTimeout <= 0 {
		return errors.New("SESSION_IDLE_MINUTES must be positive")
	}

	return nil
}

// SheetsEnabled reports whether the summary export is configured.
func (c *Config) SheetsEnabled() bool {
	return c.Sheets.CredentialsPath != "" && c.Sheets.SpreadsheetID != ""
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return parsed, nil
}
