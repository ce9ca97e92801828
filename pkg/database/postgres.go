package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 支持的驱动
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Options 数据库连接参数
type Options struct {
	Driver  string // postgres (默认) / sqlite
	DSN     string
	LogMode logger.LogLevel
}

// Open 打开数据库连接
// 外键约束不随迁移创建：上游数据不保证分类先于商品出现
func Open(opts Options) (*gorm.DB, error) {
	if opts.LogMode == 0 {
		opts.LogMode = logger.Warn
	}

	var dialector gorm.Dialector
	switch opts.Driver {
	case "", DriverPostgres:
		dialector = postgres.Open(opts.DSN)
	case DriverSQLite:
		dialector = sqlite.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", opts.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   logger.Default.LogMode(opts.LogMode),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}

	// 获取底层的 sqlDB 对象，用于设置连接池参数
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 SQL DB 失败: %w", err)
	}

	if opts.Driver == DriverSQLite {
		// :memory: 每个连接是独立的库，只保留一个连接
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return db, nil
}

// InitDB 连接数据库并自动建表，失败直接退出
func InitDB(opts Options, log *zap.Logger, models ...interface{}) *gorm.DB {
	db, err := Open(opts)
	if err != nil {
		log.Fatal("[DB] 数据库初始化失败", zap.Error(err))
	}
	log.Info("[DB] 数据库连接成功", zap.String("driver", opts.Driver))

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			log.Fatal("[DB] 自动建表出错", zap.Error(err))
		}
	}

	return db
}
