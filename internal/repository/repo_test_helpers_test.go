package repository

import (
	"testing"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"flex_inventory_admin/internal/model"
	"flex_inventory_admin/pkg/database"
)

func setupInventoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.Options{
		Driver:  database.DriverSQLite,
		DSN:     ":memory:",
		LogMode: logger.Silent,
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

func strPtr(s string) *string { return &s }
