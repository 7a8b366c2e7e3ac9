package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("DEFAULT_SETTER_COUNT", "")
	t.Setenv("STOCK_TIMEOUT", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, 7, cfg.Pool.DefaultSetterCount)
	assert.Equal(t, 100000, cfg.Pool.DefaultSetterCapacity)
	assert.Equal(t, "Eggs", cfg.Stock.EggsProduct)
	assert.Equal(t, "Day-Old Chicks", cfg.Stock.ChicksProduct)
	assert.Equal(t, 5*time.Second, cfg.Stock.Timeout)
	assert.False(t, cfg.Sheets.Enabled())
}

func TestLoadFromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "STORE_BACKEND=sqlite\nSQLITE_PATH=/tmp/h.db\nDEFAULT_SETTER_CAPACITY=5000\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("STORE_BACKEND")
		os.Unsetenv("SQLITE_PATH")
		os.Unsetenv("DEFAULT_SETTER_CAPACITY")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, "/tmp/h.db", cfg.Store.SQLitePath)
	assert.Equal(t, 5000, cfg.Pool.DefaultSetterCapacity)
}

func TestLoadRejectsBadInteger(t *testing.T) {
	t.Setenv("DEFAULT_HATCHER_CAPACITY", "lots")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEFAULT_HATCHER_CAPACITY")
}

func TestLoadStockTimeout(t *testing.T) {
	t.Setenv("STOCK_TIMEOUT", "1500ms")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, cfg.Stock.Timeout)

	t.Setenv("STOCK_TIMEOUT", "soon")
	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STOCK_TIMEOUT")

	t.Setenv("STOCK_TIMEOUT", "-2s")
	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STOCK_TIMEOUT must be positive")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:    ServerConfig{Port: "8080"},
			Store:     StoreConfig{Backend: BackendMemory},
			Pool:      PoolConfig{DefaultSetterCount: 7, DefaultSetterCapacity: 100000, DefaultHatcherCount: 1, DefaultHatcherCapacity: 100000},
			Stock:     StockConfig{EggsProduct: "Eggs", Timeout: 5 * time.Second},
			Reporting: ReportingConfig{CronSchedule: "0 20 * * *", Timezone: "UTC"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown backend", mutate: func(c *Config) { c.Store.Backend = "redis" }, wantErr: "unsupported STORE_BACKEND"},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Store.Backend = BackendPostgres }, wantErr: "POSTGRES_DSN"},
		{name: "mongodb without uri", mutate: func(c *Config) { c.Store.Backend = BackendMongoDB }, wantErr: "MONGODB_URI"},
		{name: "zero setter capacity", mutate: func(c *Config) { c.Pool.DefaultSetterCapacity = 0 }, wantErr: "DEFAULT_SETTER_CAPACITY"},
		{name: "zero stock timeout", mutate: func(c *Config) { c.Stock.Timeout = 0 }, wantErr: "STOCK_TIMEOUT"},
		{name: "whatsapp token without phone", mutate: func(c *Config) { c.WhatsApp.AccessToken = "t" }, wantErr: "WHATSAPP_PHONE_NUMBER_ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
