package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends accepted by STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMongoDB  = "mongodb"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Store     StoreConfig
	Pool      PoolConfig
	Stock     StockConfig
	Audit     AuditConfig
	WhatsApp  WhatsAppConfig
	Sheets    SheetsConfig
	Reporting ReportingConfig
	MongoDB   MongoDBConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// LogConfig selects level and encoding of the zap logger.
type LogConfig struct {
	Level  string
	Format string
}

// StoreConfig selects the snapshot persistence engine.
type StoreConfig struct {
	Backend     string
	SQLitePath  string
	PostgresDSN string
}

// PoolConfig sizes the default machine pools materialized at bootstrap.
type PoolConfig struct {
	DefaultSetterCount     int
	DefaultSetterCapacity  int
	DefaultHatcherCount    int
	DefaultHatcherCapacity int
}

// StockConfig points at the inventory ledger and names its reference entities.
type StockConfig struct {
	BaseURL             string
	Token               string
	EggsProduct         string
	ChicksProduct       string
	InternalPickingType string
	SourceLocation      string
	DestinationLocation string
	// Timeout bounds each ledger request. Ledger calls run while the store
	// write lock is held, so it also bounds how long writers queue.
	Timeout time.Duration
}

// AuditConfig configures where chatter notes are published.
type AuditConfig struct {
	RedisAddr   string
	RedisStream string
}

// WhatsAppConfig contains credentials and options for the Meta WhatsApp Cloud API.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	APIVersion    string
	NotifyTo      string
}

// Enabled reports whether notifications can be sent.
func (c WhatsAppConfig) Enabled() bool {
	return c.AccessToken != "" && c.PhoneNumberID != "" && c.NotifyTo != ""
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether the report export is configured.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
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
		// Missing .env files are fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	pool, err := loadPool()
	if err != nil {
		return nil, err
	}
	stockTimeout, err := getenvDuration("STOCK_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Log: LogConfig{
			Level:  getenvWithDefault("LOG_LEVEL", "info"),
			Format: getenvWithDefault("LOG_FORMAT", "json"),
		},
		Store: StoreConfig{
			Backend:     strings.ToLower(getenvWithDefault("STORE_BACKEND", BackendMemory)),
			SQLitePath:  getenvWithDefault("SQLITE_PATH", "data/hatchery.db"),
			PostgresDSN: os.Getenv("POSTGRES_DSN"),
		},
		Pool: pool,
		Stock: StockConfig{
			BaseURL:             os.Getenv("STOCK_API_URL"),
			Token:               os.Getenv("STOCK_API_TOKEN"),
			EggsProduct:         getenvWithDefault("STOCK_EGGS_PRODUCT", "Eggs"),
			ChicksProduct:       getenvWithDefault("STOCK_CHICKS_PRODUCT", "Day-Old Chicks"),
			InternalPickingType: getenvWithDefault("STOCK_INTERNAL_PICKING_TYPE", "internal"),
			SourceLocation:      os.Getenv("STOCK_SOURCE_LOCATION"),
			DestinationLocation: os.Getenv("STOCK_DESTINATION_LOCATION"),
			Timeout:             stockTimeout,
		},
		Audit: AuditConfig{
			RedisAddr:   os.Getenv("REDIS_ADDR"),
			RedisStream: getenvWithDefault("REDIS_AUDIT_STREAM", "hatchery:chatter"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			NotifyTo:      os.Getenv("WHATSAPP_NOTIFY_TO"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "Africa/Conakry"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "hatchery"),
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

	switch c.Store.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("SQLITE_PATH must be provided for the sqlite backend")
		}
	case BackendPostgres:
		if c.Store.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN must be provided for the postgres backend")
		}
	case BackendMongoDB:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided for the mongodb backend")
		}
	default:
		return fmt.Errorf("unsupported STORE_BACKEND %q", c.Store.Backend)
	}

	switch {
	case c.Pool.DefaultSetterCount <= 0:
		return errors.New("DEFAULT_SETTER_COUNT must be positive")
	case c.Pool.DefaultSetterCapacity <= 0:
		return errors.New("DEFAULT_SETTER_CAPACITY must be positive")
	case c.Pool.DefaultHatcherCount <= 0:
		return errors.New("DEFAULT_HATCHER_COUNT must be positive")
	case c.Pool.DefaultHatcherCapacity <= 0:
		return errors.New("DEFAULT_HATCHER_CAPACITY must be positive")
	}

	if c.Stock.EggsProduct == "" {
		return errors.New("STOCK_EGGS_PRODUCT must not be empty")
	}
	if c.Stock.Timeout <= 0 {
		return errors.New("STOCK_TIMEOUT must be positive")
	}

	if c.WhatsApp.AccessToken != "" && c.WhatsApp.PhoneNumberID == "" {
		return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided with WHATSAPP_TOKEN")
	}

	if c.Sheets.Enabled() && c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}

	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	return nil
}

func loadPool() (PoolConfig, error) {
	var pool PoolConfig
	var err error
	if pool.DefaultSetterCount, err = getenvInt("DEFAULT_SETTER_COUNT", 7); err != nil {
		return pool, err
	}
	if pool.DefaultSetterCapacity, err = getenvInt("DEFAULT_SETTER_CAPACITY", 100000); err != nil {
		return pool, err
	}
	if pool.DefaultHatcherCount, err = getenvInt("DEFAULT_HATCHER_COUNT", 1); err != nil {
		return pool, err
	}
	if pool.DefaultHatcherCapacity, err = getenvInt("DEFAULT_HATCHER_CAPACITY", 100000); err != nil {
		return pool, err
	}
	return pool, nil
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
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration such as 5s: %w", key, err)
	}
	return d, nil
}
