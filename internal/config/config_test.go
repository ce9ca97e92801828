package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 60*time.Second, cfg.FlexTimeout)
	assert.True(t, cfg.InventorySyncEnabled)
	assert.Equal(t, "0 0 3 * * *", cfg.InventorySyncCron)
	assert.Equal(t, time.Minute, cfg.InventorySyncCooldown)
	assert.Equal(t, 30*time.Minute, cfg.InventorySyncTimeout)
	assert.Equal(t, 30*24*time.Hour, cfg.SyncRunRetention)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FLEX_URL", "https://rental.flexrentalsolutions.com/")
	t.Setenv("INVENTORY_SYNC_ENABLED", "false")
	t.Setenv("FLEX_TIMEOUT", "5s")
	t.Setenv("DB_DRIVER", "SQLite")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://rental.flexrentalsolutions.com", cfg.FlexURL)
	assert.False(t, cfg.InventorySyncEnabled)
	assert.Equal(t, 5*time.Second, cfg.FlexTimeout)
	assert.Equal(t, "sqlite", cfg.DBDriver)
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("REPORT_ID=rpt-from-file\n"), 0o600))
	// godotenv 不覆盖已存在的变量；Setenv 负责测试结束后还原
	t.Setenv("REPORT_ID", "")
	require.NoError(t, os.Unsetenv("REPORT_ID"))

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "rpt-from-file", cfg.ReportID)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DBDriver:    "postgres",
			DatabaseDSN: "host=localhost",
			FlexURL:     "https://flex.test",
			FlexAPIKey:  "key",
			ReportID:    "rpt",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"完整配置", func(c *Config) {}, ""},
		{"缺少 DSN", func(c *Config) { c.DatabaseDSN = "" }, "DATABASE_DSN"},
		{"缺少多个字段", func(c *Config) { c.FlexAPIKey = ""; c.ReportID = "" }, "FLEX_API_KEY, REPORT_ID"},
		{"未知驱动", func(c *Config) { c.DBDriver = "mysql" }, "DB_DRIVER"},
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
