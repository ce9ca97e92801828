package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用配置
// 优先级: 环境变量 > .env > config.yaml > 默认值
type Config struct {
	AppEnv   string
	LogLevel string

	// --- 数据库 ---
	DBDriver    string
	DatabaseDSN string

	// --- HTTP ---
	ServerPort string

	// --- Flex ---
	FlexURL     string
	FlexAPIKey  string
	ReportID    string
	FlexTimeout time.Duration

	// --- 库存同步 ---
	InventorySyncEnabled  bool
	InventorySyncCron     string
	InventorySyncTimeout  time.Duration
	InventorySyncCooldown time.Duration
	SyncRunRetention      time.Duration
}

// Load 读取配置
// envFile 为空时尝试当前目录下的 .env，文件不存在不报错
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取 config.yaml 失败: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Config{
		AppEnv:                v.GetString("APP_ENV"),
		LogLevel:              v.GetString("LOG_LEVEL"),
		DBDriver:              strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN:           v.GetString("DATABASE_DSN"),
		ServerPort:            v.GetString("SERVER_PORT"),
		FlexURL:               strings.TrimRight(v.GetString("FLEX_URL"), "/"),
		FlexAPIKey:            v.GetString("FLEX_API_KEY"),
		ReportID:              v.GetString("REPORT_ID"),
		FlexTimeout:           v.GetDuration("FLEX_TIMEOUT"),
		InventorySyncEnabled:  v.GetBool("INVENTORY_SYNC_ENABLED"),
		InventorySyncCron:     v.GetString("INVENTORY_SYNC_CRON"),
		InventorySyncTimeout:  v.GetDuration("INVENTORY_SYNC_TIMEOUT"),
		InventorySyncCooldown: v.GetDuration("INVENTORY_SYNC_COOLDOWN"),
		SyncRunRetention:      v.GetDuration("SYNC_RUN_RETENTION"),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("FLEX_URL", "")
	v.SetDefault("FLEX_API_KEY", "")
	v.SetDefault("REPORT_ID", "")
	v.SetDefault("FLEX_TIMEOUT", "60s")
	v.SetDefault("INVENTORY_SYNC_ENABLED", true)
	v.SetDefault("INVENTORY_SYNC_CRON", "0 0 3 * * *")
	v.SetDefault("INVENTORY_SYNC_TIMEOUT", "30m")
	v.SetDefault("INVENTORY_SYNC_COOLDOWN", "1m")
	v.SetDefault("SYNC_RUN_RETENTION", "720h")
}

// IsDevelopment 是否开发环境
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development" || c.AppEnv == "dev"
}

// Validate 校验必填项
func (c *Config) Validate() error {
	var missing []string
	if c.DatabaseDSN == "" {
		missing = append(missing, "DATABASE_DSN")
	}
	if c.FlexURL == "" {
		missing = append(missing, "FLEX_URL")
	}
	if c.FlexAPIKey == "" {
		missing = append(missing, "FLEX_API_KEY")
	}
	if c.ReportID == "" {
		missing = append(missing, "REPORT_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("缺少必填配置: %s", strings.Join(missing, ", "))
	}

	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("不支持的 DB_DRIVER: %q", c.DBDriver)
	}
	return nil
}
